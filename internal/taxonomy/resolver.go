// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package taxonomy

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"golang.org/x/text/cases"

	"newsportal/internal/models"
)

// Outcome names the resolution step that produced an answer.
type Outcome string

const (
	OutcomeCategory Outcome = "category"
	OutcomeAlias    Outcome = "alias"
	OutcomeRedirect Outcome = "redirect"
	OutcomeDefault  Outcome = "default"
)

// Resolution is the answer for one public category path. Category and
// Alias outcomes carry a content Scope; Redirect and Default outcomes
// carry the Location the caller must redirect to permanently.
type Resolution struct {
	Outcome  Outcome          `json:"outcome"`
	Segment  string           `json:"segment"`
	Category *models.Category `json:"category,omitempty"`
	Alias    *Alias           `json:"alias,omitempty"`
	Scope    Scope            `json:"scope"`
	Location string           `json:"location,omitempty"`
}

// IsRedirect reports whether the caller must answer with a redirect.
func (r Resolution) IsRedirect() bool {
	return r.Outcome == OutcomeRedirect || r.Outcome == OutcomeDefault
}

// CategoryFinder looks categories up by slug, case-insensitively. It
// returns nil, nil on a miss.
type CategoryFinder interface {
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
}

// RedirectFinder looks up an active redirect by its origin path. It
// returns nil, nil when no active redirect exists.
type RedirectFinder interface {
	FindActive(ctx context.Context, origin string) (*models.Redirect, error)
}

// ResolverConfig holds the path settings of a Resolver.
type ResolverConfig struct {
	// PathPrefix is prepended to the segment to form the path looked up in
	// the redirect table, e.g. "/category".
	PathPrefix string
	// SiteRoot is the default redirect target.
	SiteRoot string
}

// Resolver maps a public category path segment to a Resolution through a
// fixed chain: category tree, legacy alias table, redirect table, site
// root. The first step that answers wins and later steps are not tried.
type Resolver struct {
	categories CategoryFinder
	expander   *Expander
	aliases    *AliasTable
	redirects  RedirectFinder
	cfg        ResolverConfig
}

// NewResolver creates a Resolver. aliases may be nil to disable the
// legacy step.
func NewResolver(categories CategoryFinder, expander *Expander, aliases *AliasTable, redirects RedirectFinder, cfg ResolverConfig) *Resolver {
	cfg.PathPrefix = "/" + strings.Trim(cfg.PathPrefix, "/")
	if cfg.PathPrefix == "/" {
		cfg.PathPrefix = ""
	}
	if cfg.SiteRoot == "" {
		cfg.SiteRoot = "/"
	}
	return &Resolver{
		categories: categories,
		expander:   expander,
		aliases:    aliases,
		redirects:  redirects,
		cfg:        cfg,
	}
}

// NormalizeSegment percent-decodes and case-folds a raw path segment.
// Undecodable input is folded as-is.
func NormalizeSegment(raw string) string {
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		decoded = raw
	}
	return cases.Fold().String(strings.TrimSpace(decoded))
}

// Resolve never fails: a store error in any step is logged and treated as
// a miss for that step, so every path ends in a listing or a redirect.
func (r *Resolver) Resolve(ctx context.Context, rawSegment string) Resolution {
	segment := NormalizeSegment(rawSegment)
	res := r.resolve(ctx, segment)
	resolutionTotal.WithLabelValues(string(res.Outcome)).Inc()
	return res
}

func (r *Resolver) resolve(ctx context.Context, segment string) Resolution {
	if segment != "" {
		if res, ok := r.tryTree(ctx, segment); ok {
			return res
		}
		if res, ok := r.tryAlias(segment); ok {
			return res
		}
	}
	if res, ok := r.tryRedirect(ctx, segment); ok {
		return res
	}
	return Resolution{Outcome: OutcomeDefault, Segment: segment, Location: r.cfg.SiteRoot}
}

func (r *Resolver) tryTree(ctx context.Context, segment string) (Resolution, bool) {
	cat, err := r.categories.FindBySlug(ctx, segment)
	if err != nil {
		resolutionFailures.WithLabelValues("tree").Inc()
		slog.Error("resolve category by slug failed", "error", err, "segment", segment)
		return Resolution{}, false
	}
	if cat == nil || !cat.Active {
		return Resolution{}, false
	}

	scope, err := r.expander.Expand(ctx, cat.ID)
	if err != nil {
		// Expand still returns the category itself; list that alone.
		resolutionFailures.WithLabelValues("expand").Inc()
		slog.Error("expand category scope failed", "error", err, "category_id", cat.ID)
	}
	return Resolution{Outcome: OutcomeCategory, Segment: segment, Category: cat, Scope: scope}, true
}

func (r *Resolver) tryAlias(segment string) (Resolution, bool) {
	alias, ok := r.aliases.Lookup(segment)
	if !ok {
		return Resolution{}, false
	}
	return Resolution{Outcome: OutcomeAlias, Segment: segment, Alias: &alias, Scope: AliasScope(alias)}, true
}

func (r *Resolver) tryRedirect(ctx context.Context, segment string) (Resolution, bool) {
	if r.redirects == nil {
		return Resolution{}, false
	}
	origin := r.RequestPath(segment)
	red, err := r.redirects.FindActive(ctx, origin)
	if err != nil {
		resolutionFailures.WithLabelValues("redirect").Inc()
		slog.Error("resolve redirect failed", "error", err, "origin", origin)
		return Resolution{}, false
	}
	if red == nil || !red.Active || red.DestinationURL == "" {
		return Resolution{}, false
	}
	return Resolution{Outcome: OutcomeRedirect, Segment: segment, Location: red.DestinationURL}, true
}

// RequestPath returns the public path of a segment, e.g. "/category/brasil".
func (r *Resolver) RequestPath(segment string) string {
	return r.cfg.PathPrefix + "/" + segment
}
