// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"newsportal/internal/models"
	"newsportal/internal/slug"
)

// DefaultCategories are the root sections of the portal created on an
// empty database.
var DefaultCategories = []string{
	"Brasil",
	"Mundo",
	"Tech",
	"Games",
	"Entretenimento",
	"Ciência",
	"Economia",
	"Esportes",
	"Saúde",
}

// Seed populates an empty category table with the default root sections.
// It does nothing when any category already exists.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	for _, name := range DefaultCategories {
		_, err := tx.Exec(`
			INSERT INTO categories (name, slug, color, active)
			VALUES ($1, $2, $3, TRUE)
			ON CONFLICT DO NOTHING
		`, name, slug.Generate(name), models.DefaultCategoryColor)
		if err != nil {
			return fmt.Errorf("seed insert category %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with default categories", "count", len(DefaultCategories))
	return nil
}
