// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package taxonomy

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"newsportal/internal/models"
	"newsportal/internal/slug"
)

// LegacyCount is a legacy category label still used by articles that have
// no category id, with the number of such articles.
type LegacyCount struct {
	Name     string `json:"name"`
	Articles int64  `json:"articles"`
}

// BackfillStore exposes the article rows awaiting migration.
type BackfillStore interface {
	UnmigratedLegacyNames(ctx context.Context) ([]LegacyCount, error)
	// AssignCategory sets category_id on every unmigrated article whose
	// legacy label equals name case-insensitively.
	AssignCategory(ctx context.Context, name string, categoryID uuid.UUID) (int64, error)
}

// BackfillMatch records how a legacy label was mapped onto the tree.
type BackfillMatch struct {
	Name         string    `json:"name"`
	CategoryID   uuid.UUID `json:"category_id"`
	CategorySlug string    `json:"category_slug"`
	Via          string    `json:"via"`
	Articles     int64     `json:"articles"`
}

// BackfillReport summarizes a backfill run.
type BackfillReport struct {
	DryRun    bool            `json:"dry_run"`
	Matched   []BackfillMatch `json:"matched"`
	Unmatched []LegacyCount   `json:"unmatched"`
	Updated   int64           `json:"updated"`
}

// Backfiller assigns category ids to articles that only carry a legacy
// label, retiring the name-based lookup once nothing is left unmatched.
type Backfiller struct {
	categories CategoryFinder
	articles   BackfillStore
	aliases    *AliasTable
}

// NewBackfiller creates a Backfiller.
func NewBackfiller(categories CategoryFinder, articles BackfillStore, aliases *AliasTable) *Backfiller {
	return &Backfiller{categories: categories, articles: articles, aliases: aliases}
}

// Run maps every unmigrated legacy label to a category: first the category
// whose slug equals the normalized label, then the category named by the
// first alias key (in sorted order) whose group contains the label. With
// dryRun set nothing is written.
func (b *Backfiller) Run(ctx context.Context, dryRun bool) (*BackfillReport, error) {
	pending, err := b.articles.UnmigratedLegacyNames(ctx)
	if err != nil {
		return nil, storeErr("list legacy categories", err)
	}

	report := &BackfillReport{DryRun: dryRun}
	for _, lc := range pending {
		cat, via, err := b.match(ctx, lc.Name)
		if err != nil {
			return report, err
		}
		if cat == nil {
			report.Unmatched = append(report.Unmatched, lc)
			continue
		}

		m := BackfillMatch{Name: lc.Name, CategoryID: cat.ID, CategorySlug: cat.Slug, Via: via, Articles: lc.Articles}
		if !dryRun {
			n, err := b.articles.AssignCategory(ctx, lc.Name, cat.ID)
			if err != nil {
				return report, storeErr("assign category", err)
			}
			m.Articles = n
			report.Updated += n
		}
		report.Matched = append(report.Matched, m)
		slog.Info("legacy category mapped",
			"name", lc.Name,
			"category", cat.Slug,
			"via", via,
			"articles", m.Articles,
			"dry_run", dryRun,
		)
	}
	return report, nil
}

func (b *Backfiller) match(ctx context.Context, name string) (*models.Category, string, error) {
	if s := slug.Generate(name); s != "" {
		cat, err := b.categories.FindBySlug(ctx, s)
		if err != nil {
			return nil, "", storeErr("find category by slug", err)
		}
		if cat != nil {
			return cat, "slug", nil
		}
	}
	for _, key := range b.aliases.KeysContaining(name) {
		s := slug.Generate(key)
		if s == "" {
			continue
		}
		cat, err := b.categories.FindBySlug(ctx, s)
		if err != nil {
			return nil, "", storeErr("find category by slug", err)
		}
		if cat != nil {
			return cat, "alias:" + key, nil
		}
	}
	return nil, "", nil
}
