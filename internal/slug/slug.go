// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation and validation for
// category paths.
package slug

import (
	"regexp"
	"strings"

	gosimple "github.com/gosimple/slug"
)

var (
	// valid is the only shape a stored slug may take.
	valid = regexp.MustCompile(`^[a-z0-9-]+$`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// Generate creates a URL-friendly slug from the given string. Diacritics
// are transliterated away and every run of non-alphanumerics becomes a
// single hyphen.
// Example: "Ciência, Saúde 2026" → "ciencia-saude-2026"
func Generate(s string) string {
	result := gosimple.Make(s)
	// gosimple keeps underscores; category slugs do not.
	result = strings.ReplaceAll(result, "_", "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// Valid reports whether s is a well-formed slug: non-empty, lower-case
// ASCII letters, digits and hyphens only.
func Valid(s string) bool {
	return valid.MatchString(s)
}
