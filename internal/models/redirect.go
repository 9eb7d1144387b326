// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Redirect maps an old or broken path to a destination URL. It is
// independent of the category tree and only consulted when a category
// path cannot be resolved.
type Redirect struct {
	ID             uuid.UUID `json:"id"`
	OriginSlug     string    `json:"origin_slug"`
	DestinationURL string    `json:"destination_url"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
