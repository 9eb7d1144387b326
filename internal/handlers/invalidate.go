// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"newsportal/internal/store"
)

// ListingPurger drops every cached public listing.
type ListingPurger interface {
	InvalidateAll(ctx context.Context)
}

// InvalidationLog records which entity caused a cache purge.
type InvalidationLog interface {
	Log(ctx context.Context, entityType string, entityID uuid.UUID, action string)
	RecentEntries(ctx context.Context, limit int) ([]store.CacheLogEntry, error)
}

// Invalidator purges the listing cache after admin mutations and records
// the event. A listing depends on the whole category tree and the
// redirect table, so every mutation clears every listing.
type Invalidator struct {
	cache ListingPurger
	log   InvalidationLog
}

// NewInvalidator creates an Invalidator. Either dependency may be nil.
func NewInvalidator(cache ListingPurger, log InvalidationLog) *Invalidator {
	return &Invalidator{cache: cache, log: log}
}

// Purge clears cached listings and logs the mutation that caused it.
func (inv *Invalidator) Purge(ctx context.Context, entityType string, entityID uuid.UUID, action string) {
	if inv == nil {
		return
	}
	if inv.cache != nil {
		inv.cache.InvalidateAll(ctx)
	}
	if inv.log != nil {
		inv.log.Log(ctx, entityType, entityID, action)
	}
}

// RecentPurges serves the latest cache invalidation events.
// GET /admin/cache-log?limit=N
func (inv *Invalidator) RecentPurges(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 500 {
		limit = v
	}
	if inv == nil || inv.log == nil {
		writeJSON(w, http.StatusOK, []store.CacheLogEntry{})
		return
	}
	entries, err := inv.log.RecentEntries(r.Context(), limit)
	if err != nil {
		slog.Error("list cache invalidations failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if entries == nil {
		entries = []store.CacheLogEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
