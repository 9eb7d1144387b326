// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultCategoryColor is the accent used when a category is created without one.
const DefaultCategoryColor = "#ff0000"

// Category is a node in the editorial taxonomy. The parent relation,
// restricted to non-nil links, always forms a forest.
type Category struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Color       string     `json:"color"`
	Active      bool       `json:"active"`
	ParentID    *uuid.UUID `json:"parent_id"`
	Tags        []string   `json:"tags"`
	RSSFeedURLs []string   `json:"rss_urls"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Virtual fields populated when building a tree.
	Children []Category `json:"children,omitempty"`
	Depth    int        `json:"depth"`
}

// IsRoot reports whether the category has no parent.
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}
