// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"newsportal/internal/models"
	"newsportal/internal/taxonomy"
)

// categoryTreeLock is the transaction-scoped advisory lock key held by
// every category mutation, serializing cycle checks against writes.
const categoryTreeLock int64 = 0x6e70_6361_7465

// CategoryStore manages categories in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const categoryColumns = `id, name, slug, color, active, parent_id, tags, rss_urls, created_at, updated_at`

// scanCategory scans a row into a Category struct. Array columns are
// decoded through m.
func scanCategory(m *pgtype.Map, scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.Name, &c.Slug, &c.Color, &c.Active, &c.ParentID,
		m.SQLScanner(&c.Tags), m.SQLScanner(&c.RSSFeedURLs),
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all categories ordered by name.
func (s *CategoryStore) List(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name, slug`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	m := pgtype.NewMap()
	var items []models.Category
	for rows.Next() {
		c, err := scanCategory(m, rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return findCategoryByID(ctx, s.db, id)
}

func findCategoryByID(ctx context.Context, q querier, id uuid.UUID) (*models.Category, error) {
	row := q.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(pgtype.NewMap(), row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// FindBySlug retrieves a category by slug, compared case-insensitively.
// Returns nil if not found.
func (s *CategoryStore) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE lower(slug) = lower($1)`, slug)
	c, err := scanCategory(pgtype.NewMap(), row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by slug: %w", err)
	}
	return c, nil
}

// ChildIDs returns the ids of the direct children of a category.
func (s *CategoryStore) ChildIDs(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM categories WHERE parent_id = $1 ORDER BY name`, id)
	if err != nil {
		return nil, fmt.Errorf("list child categories: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var child uuid.UUID
		if err := rows.Scan(&child); err != nil {
			return nil, fmt.Errorf("scan child category: %w", err)
		}
		ids = append(ids, child)
	}
	return ids, rows.Err()
}

// Forest loads the parent pointer of every category outside of a
// mutation. Used by the integrity check.
func (s *CategoryStore) Forest(ctx context.Context) (taxonomy.Forest, error) {
	return loadForest(ctx, s.db)
}

func loadForest(ctx context.Context, q querier) (taxonomy.Forest, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, parent_id FROM categories`)
	if err != nil {
		return nil, fmt.Errorf("load category graph: %w", err)
	}
	defer rows.Close()

	f := make(taxonomy.Forest)
	for rows.Next() {
		var (
			id     uuid.UUID
			parent *uuid.UUID
		)
		if err := rows.Scan(&id, &parent); err != nil {
			return nil, fmt.Errorf("scan category graph: %w", err)
		}
		f[id] = parent
	}
	return f, rows.Err()
}

// Atomic runs fn inside a transaction holding the category tree lock.
// The transaction commits only when fn returns nil.
func (s *CategoryStore) Atomic(ctx context.Context, fn func(taxonomy.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, categoryTreeLock); err != nil {
		return fmt.Errorf("lock category tree: %w", err)
	}

	if err := fn(&categoryTx{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// categoryTx implements taxonomy.Tx on an open transaction.
type categoryTx struct {
	q querier
}

func (t *categoryTx) Forest(ctx context.Context) (taxonomy.Forest, error) {
	return loadForest(ctx, t.q)
}

func (t *categoryTx) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return findCategoryByID(ctx, t.q, id)
}

func (t *categoryTx) SlugTaken(ctx context.Context, slug string, exclude uuid.UUID) (bool, error) {
	var taken bool
	err := t.q.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM categories WHERE lower(slug) = lower($1) AND id <> $2)
	`, slug, exclude).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("check category slug: %w", err)
	}
	return taken, nil
}

func (t *categoryTx) Insert(ctx context.Context, c *models.Category) (*models.Category, error) {
	row := t.q.QueryRowContext(ctx, `
		INSERT INTO categories (name, slug, color, active, parent_id, tags, rss_urls)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+categoryColumns,
		c.Name, c.Slug, c.Color, c.Active, c.ParentID, nonNil(c.Tags), nonNil(c.RSSFeedURLs),
	)
	result, err := scanCategory(pgtype.NewMap(), row)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return nil, &taxonomy.ConflictError{Field: "slug", Value: c.Slug}
		case isCheckViolation(err):
			return nil, &taxonomy.ValidationError{Message: "category rejected by table constraint"}
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return result, nil
}

func (t *categoryTx) Update(ctx context.Context, c *models.Category) (*models.Category, error) {
	row := t.q.QueryRowContext(ctx, `
		UPDATE categories SET
			name = $1, slug = $2, color = $3, active = $4, parent_id = $5,
			tags = $6, rss_urls = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING `+categoryColumns,
		c.Name, c.Slug, c.Color, c.Active, c.ParentID, nonNil(c.Tags), nonNil(c.RSSFeedURLs), c.ID,
	)
	result, err := scanCategory(pgtype.NewMap(), row)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return nil, &taxonomy.ConflictError{Field: "slug", Value: c.Slug}
		case isCheckViolation(err):
			return nil, &taxonomy.ValidationError{Message: "category rejected by table constraint"}
		case errors.Is(err, sql.ErrNoRows):
			return nil, &taxonomy.NotFoundError{Entity: "category", ID: c.ID}
		}
		return nil, fmt.Errorf("update category: %w", err)
	}
	return result, nil
}

func (t *categoryTx) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := t.q.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

func (t *categoryTx) MoveChildren(ctx context.Context, from uuid.UUID, to *uuid.UUID) (int64, error) {
	res, err := t.q.ExecContext(ctx, `
		UPDATE categories SET parent_id = $1, updated_at = NOW() WHERE parent_id = $2
	`, to, from)
	if err != nil {
		return 0, fmt.Errorf("move child categories: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("move child categories: %w", err)
	}
	return n, nil
}

// nonNil keeps NOT NULL array columns from receiving a SQL NULL.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
