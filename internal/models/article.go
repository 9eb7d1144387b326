// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// ArticleStatus represents the publishing state of an article.
type ArticleStatus string

const (
	ArticleStatusDraft     ArticleStatus = "draft"
	ArticleStatusPublished ArticleStatus = "published"
)

// Article is a news item listed under categories. Older rows only carry
// the free-text LegacyCategory; migrated rows reference a category by id.
type Article struct {
	ID             uuid.UUID     `json:"id"`
	Title          string        `json:"title"`
	Slug           string        `json:"slug"`
	Excerpt        *string       `json:"excerpt,omitempty"`
	Status         ArticleStatus `json:"status"`
	CategoryID     *uuid.UUID    `json:"category_id,omitempty"`
	LegacyCategory *string       `json:"legacy_category,omitempty"`
	PublishedAt    *time.Time    `json:"published_at,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// IsPublished returns true if the article is in published status.
func (a *Article) IsPublished() bool {
	return a.Status == ArticleStatusPublished
}

// IsMigrated reports whether the article is addressed by category id.
func (a *Article) IsMigrated() bool {
	return a.CategoryID != nil
}
