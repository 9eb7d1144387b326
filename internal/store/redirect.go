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

	"newsportal/internal/models"
	"newsportal/internal/taxonomy"
)

// RedirectStore manages the redirect table consulted when a category path
// matches neither the tree nor the alias table.
type RedirectStore struct {
	db *sql.DB
}

// NewRedirectStore returns a new RedirectStore.
func NewRedirectStore(db *sql.DB) *RedirectStore {
	return &RedirectStore{db: db}
}

const redirectColumns = `id, origin_slug, destination_url, active, created_at, updated_at`

func scanRedirect(scanner interface{ Scan(...any) error }) (*models.Redirect, error) {
	var r models.Redirect
	if err := scanner.Scan(&r.ID, &r.OriginSlug, &r.DestinationURL, &r.Active, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

// FindActive returns the active redirect whose origin equals origin,
// compared case-insensitively. Returns nil if there is none.
func (s *RedirectStore) FindActive(ctx context.Context, origin string) (*models.Redirect, error) {
	r, err := scanRedirect(s.db.QueryRowContext(ctx, `
		SELECT `+redirectColumns+` FROM redirects
		WHERE lower(origin_slug) = lower($1) AND active
	`, origin))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find active redirect: %w", err)
	}
	return r, nil
}

// FindByID retrieves a redirect by ID. Returns nil if not found.
func (s *RedirectStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Redirect, error) {
	r, err := scanRedirect(s.db.QueryRowContext(ctx, `SELECT `+redirectColumns+` FROM redirects WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find redirect by id: %w", err)
	}
	return r, nil
}

// List returns all redirects, most recently created first.
func (s *RedirectStore) List(ctx context.Context) ([]models.Redirect, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+redirectColumns+` FROM redirects ORDER BY created_at DESC, origin_slug`)
	if err != nil {
		return nil, fmt.Errorf("list redirects: %w", err)
	}
	defer rows.Close()

	var items []models.Redirect
	for rows.Next() {
		r, err := scanRedirect(rows)
		if err != nil {
			return nil, fmt.Errorf("scan redirect: %w", err)
		}
		items = append(items, *r)
	}
	return items, rows.Err()
}

// Create inserts a redirect. A duplicate origin yields a ConflictError.
func (s *RedirectStore) Create(ctx context.Context, r *models.Redirect) (*models.Redirect, error) {
	result, err := scanRedirect(s.db.QueryRowContext(ctx, `
		INSERT INTO redirects (origin_slug, destination_url, active)
		VALUES ($1, $2, $3)
		RETURNING `+redirectColumns,
		r.OriginSlug, r.DestinationURL, r.Active,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, &taxonomy.ConflictError{Field: "origin_slug", Value: r.OriginSlug}
		}
		return nil, fmt.Errorf("create redirect: %w", err)
	}
	return result, nil
}

// Update replaces origin, destination and active flag of a redirect.
func (s *RedirectStore) Update(ctx context.Context, r *models.Redirect) (*models.Redirect, error) {
	result, err := scanRedirect(s.db.QueryRowContext(ctx, `
		UPDATE redirects SET
			origin_slug = $1, destination_url = $2, active = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING `+redirectColumns,
		r.OriginSlug, r.DestinationURL, r.Active, r.ID,
	))
	switch {
	case err == nil:
		return result, nil
	case errors.Is(err, sql.ErrNoRows):
		return nil, &taxonomy.NotFoundError{Entity: "redirect", ID: r.ID}
	case isUniqueViolation(err):
		return nil, &taxonomy.ConflictError{Field: "origin_slug", Value: r.OriginSlug}
	}
	return nil, fmt.Errorf("update redirect: %w", err)
}

// Toggle flips the active flag of a redirect and returns the new state.
func (s *RedirectStore) Toggle(ctx context.Context, id uuid.UUID) (*models.Redirect, error) {
	result, err := scanRedirect(s.db.QueryRowContext(ctx, `
		UPDATE redirects SET active = NOT active, updated_at = NOW()
		WHERE id = $1
		RETURNING `+redirectColumns, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &taxonomy.NotFoundError{Entity: "redirect", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("toggle redirect: %w", err)
	}
	return result, nil
}

// Delete removes a redirect by ID.
func (s *RedirectStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM redirects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete redirect: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &taxonomy.NotFoundError{Entity: "redirect", ID: id}
	}
	return nil
}
