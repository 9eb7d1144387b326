// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"newsportal/internal/cache"
	"newsportal/internal/models"
	"newsportal/internal/taxonomy"
)

// DefaultPageSize is the number of articles per listing page.
const DefaultPageSize = 20

// maxPage bounds the page query parameter.
const maxPage = 1000

// CategoryResolver maps a public path segment to a listing or a redirect.
type CategoryResolver interface {
	Resolve(ctx context.Context, rawSegment string) taxonomy.Resolution
}

// ArticleLister fetches the published articles of a content scope.
type ArticleLister interface {
	ListByScope(ctx context.Context, scope taxonomy.Scope, limit, offset int) ([]models.Article, error)
	CountByScope(ctx context.Context, scope taxonomy.Scope) (int, error)
}

// ListingCache stores rendered listing bodies.
type ListingCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, body []byte)
}

// Public serves the category listings of the news portal. It resolves the
// path segment on every request so redirect changes apply at once, then
// checks the Valkey listing cache before querying articles.
type Public struct {
	resolver CategoryResolver
	articles ArticleLister
	cache    ListingCache
	pageSize int
}

// NewPublic creates the public handler group. A nil cache disables
// listing caching.
func NewPublic(resolver CategoryResolver, articles ArticleLister, listings ListingCache, pageSize int) *Public {
	if listings == nil {
		listings = cache.NopCache{}
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Public{resolver: resolver, articles: articles, cache: listings, pageSize: pageSize}
}

// Listing is the JSON body of a resolved category page.
type Listing struct {
	Outcome  taxonomy.Outcome `json:"outcome"`
	Segment  string           `json:"segment"`
	Category *models.Category `json:"category,omitempty"`
	Alias    *taxonomy.Alias  `json:"alias,omitempty"`
	Group    bool             `json:"group"`
	Scope    taxonomy.Scope   `json:"scope"`
	Articles []models.Article `json:"articles"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// Category serves a category listing, or a permanent redirect when the
// segment names no category or alias.
// GET /category/{slug}
func (p *Public) Category(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res := p.resolver.Resolve(ctx, chi.URLParam(r, "slug"))
	if res.IsRedirect() {
		w.Header().Set("Location", res.Location)
		w.WriteHeader(http.StatusMovedPermanently)
		return
	}

	page := pageParam(r)
	key := cache.ListingKey(res.Segment, page)
	if body, ok := p.cache.Get(ctx, key); ok {
		writeListing(w, body)
		return
	}

	articles, err := p.articles.ListByScope(ctx, res.Scope, p.pageSize, (page-1)*p.pageSize)
	if err != nil {
		slog.Error("list category articles failed", "error", err, "segment", res.Segment)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	total, err := p.articles.CountByScope(ctx, res.Scope)
	if err != nil {
		slog.Error("count category articles failed", "error", err, "segment", res.Segment)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if articles == nil {
		articles = []models.Article{}
	}

	body, err := json.Marshal(Listing{
		Outcome:  res.Outcome,
		Segment:  res.Segment,
		Category: res.Category,
		Alias:    res.Alias,
		Group:    res.Alias != nil && res.Alias.IsGroup(),
		Scope:    res.Scope,
		Articles: articles,
		Total:    total,
		Page:     page,
		PageSize: p.pageSize,
	})
	if err != nil {
		slog.Error("encode listing failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	p.cache.Set(ctx, key, body)
	writeListing(w, body)
}

func writeListing(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// pageParam reads ?page=N, falling back to 1 on absent or bad input.
func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	if page > maxPage {
		return maxPage
	}
	return page
}
