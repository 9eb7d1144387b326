// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package taxonomy

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Scope is the filter used to fetch content for a resolved category path.
// Exactly one of the two addressing modes is set: category ids for tree
// hits, or lower-cased legacy names for alias hits on rows that predate
// category ids.
type Scope struct {
	CategoryIDs []uuid.UUID `json:"category_ids,omitempty"`
	LegacyNames []string    `json:"legacy_names,omitempty"`
}

// ByID reports whether the scope addresses content by category id.
func (s Scope) ByID() bool {
	return len(s.CategoryIDs) > 0
}

// Empty reports whether the scope matches nothing.
func (s Scope) Empty() bool {
	return len(s.CategoryIDs) == 0 && len(s.LegacyNames) == 0
}

// ChildLister lists the direct children of a category.
type ChildLister interface {
	ChildIDs(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error)
}

// Expander turns a tree-resolved category into its content scope.
type Expander struct {
	children ChildLister
}

// NewExpander creates an Expander backed by the given child listing.
func NewExpander(children ChildLister) *Expander {
	return &Expander{children: children}
}

// Expand returns the category itself plus its direct children. Deeper
// descendants are deliberately not included: browsing a grandparent must
// not surface a grandchild's content.
func (e *Expander) Expand(ctx context.Context, id uuid.UUID) (Scope, error) {
	children, err := e.children.ChildIDs(ctx, id)
	if err != nil {
		return Scope{CategoryIDs: []uuid.UUID{id}}, storeErr("list child categories", err)
	}
	ids := make([]uuid.UUID, 0, len(children)+1)
	ids = append(ids, id)
	for _, c := range children {
		if c != id {
			ids = append(ids, c)
		}
	}
	return Scope{CategoryIDs: ids}, nil
}

// AliasScope builds a name-based scope from a legacy alias entry.
func AliasScope(a Alias) Scope {
	names := make([]string, 0, len(a.Names))
	seen := make(map[string]struct{}, len(a.Names))
	for _, n := range a.Names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		names = append(names, n)
	}
	return Scope{LegacyNames: names}
}
