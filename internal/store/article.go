// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"newsportal/internal/models"
	"newsportal/internal/taxonomy"
)

// ArticleStore handles article queries for category listings and the
// legacy category backfill.
type ArticleStore struct {
	db *sql.DB
}

// NewArticleStore creates a new ArticleStore with the given database connection.
func NewArticleStore(db *sql.DB) *ArticleStore {
	return &ArticleStore{db: db}
}

const articleColumns = `id, title, slug, excerpt, status, category_id, legacy_category,
	published_at, created_at, updated_at`

func scanArticle(scanner interface{ Scan(...any) error }) (*models.Article, error) {
	var a models.Article
	err := scanner.Scan(
		&a.ID, &a.Title, &a.Slug, &a.Excerpt, &a.Status, &a.CategoryID,
		&a.LegacyCategory, &a.PublishedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// scopeFilter turns a content scope into a WHERE fragment and its single
// array argument. Tree scopes match by category id; alias scopes match the
// legacy label case-insensitively.
func scopeFilter(scope taxonomy.Scope) (string, any) {
	if scope.ByID() {
		ids := make([]string, len(scope.CategoryIDs))
		for i, id := range scope.CategoryIDs {
			ids[i] = id.String()
		}
		return `category_id = ANY($1::uuid[])`, ids
	}
	return `lower(legacy_category) = ANY($1::text[])`, scope.LegacyNames
}

// ListByScope returns published articles inside the scope, newest first.
// An empty scope yields no rows.
func (s *ArticleStore) ListByScope(ctx context.Context, scope taxonomy.Scope, limit, offset int) ([]models.Article, error) {
	if scope.Empty() {
		return nil, nil
	}
	filter, arg := scopeFilter(scope)
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+articleColumns+`
		FROM articles
		WHERE status = 'published' AND `+filter+`
		ORDER BY published_at DESC NULLS LAST, id
		LIMIT $2 OFFSET $3
	`, arg, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list articles by scope: %w", err)
	}
	defer rows.Close()

	var items []models.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		items = append(items, *a)
	}
	return items, rows.Err()
}

// CountByScope returns the number of published articles inside the scope.
func (s *ArticleStore) CountByScope(ctx context.Context, scope taxonomy.Scope) (int, error) {
	if scope.Empty() {
		return 0, nil
	}
	filter, arg := scopeFilter(scope)
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM articles WHERE status = 'published' AND `+filter, arg,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count articles by scope: %w", err)
	}
	return count, nil
}

// UnmigratedLegacyNames lists the legacy labels of articles that have no
// category id yet, with how many articles carry each.
func (s *ArticleStore) UnmigratedLegacyNames(ctx context.Context) ([]taxonomy.LegacyCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT legacy_category, COUNT(*)
		FROM articles
		WHERE category_id IS NULL AND legacy_category IS NOT NULL AND btrim(legacy_category) <> ''
		GROUP BY legacy_category
		ORDER BY legacy_category
	`)
	if err != nil {
		return nil, fmt.Errorf("list legacy categories: %w", err)
	}
	defer rows.Close()

	var out []taxonomy.LegacyCount
	for rows.Next() {
		var lc taxonomy.LegacyCount
		if err := rows.Scan(&lc.Name, &lc.Articles); err != nil {
			return nil, fmt.Errorf("scan legacy category: %w", err)
		}
		out = append(out, lc)
	}
	return out, rows.Err()
}

// AssignCategory sets the category of every unmigrated article whose
// legacy label matches name case-insensitively.
func (s *ArticleStore) AssignCategory(ctx context.Context, name string, categoryID uuid.UUID) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE articles SET category_id = $1, updated_at = NOW()
		WHERE category_id IS NULL AND lower(legacy_category) = lower($2)
	`, categoryID, name)
	if err != nil {
		return 0, fmt.Errorf("assign category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("assign category: %w", err)
	}
	return n, nil
}
