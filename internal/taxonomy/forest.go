// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package taxonomy

import (
	"sort"

	"github.com/google/uuid"

	"newsportal/internal/models"
)

// Forest is the parent-pointer graph of the category table: every known
// category id mapped to its parent id, or nil for roots.
type Forest map[uuid.UUID]*uuid.UUID

// ForestOf builds a Forest from a flat list of categories.
func ForestOf(cats []models.Category) Forest {
	f := make(Forest, len(cats))
	for _, c := range cats {
		f[c.ID] = c.ParentID
	}
	return f
}

// WouldCreateCycle reports whether making parentID the parent of nodeID
// would close a loop. Detaching to root is always safe and self-parenting
// never is. The walk follows parent links upward from parentID and stops
// at a root, at an unknown id, or when it revisits an id; a revisit means
// the stored graph is already corrupt and is answered with true so the
// walk is bounded by the number of distinct ancestors.
func (f Forest) WouldCreateCycle(nodeID uuid.UUID, parentID *uuid.UUID) bool {
	if parentID == nil {
		return false
	}
	if *parentID == nodeID {
		return true
	}

	visited := make(map[uuid.UUID]struct{})
	current := *parentID
	for {
		if current == nodeID {
			return true
		}
		if _, seen := visited[current]; seen {
			return true
		}
		visited[current] = struct{}{}

		next, ok := f[current]
		if !ok || next == nil {
			return false
		}
		current = *next
	}
}

// Children returns the ids whose parent is id, sorted for stable output.
func (f Forest) Children(id uuid.UUID) []uuid.UUID {
	var out []uuid.UUID
	for child, parent := range f {
		if parent != nil && *parent == id {
			out = append(out, child)
		}
	}
	sortIDs(out)
	return out
}

// Corrupt returns every id whose ancestor walk never reaches a root:
// members of a cycle and everything hanging below one.
func (f Forest) Corrupt() []uuid.UUID {
	var out []uuid.UUID
	for id := range f {
		if !f.reachesRoot(id) {
			out = append(out, id)
		}
	}
	sortIDs(out)
	return out
}

// Dangling returns ids whose parent is not present in the forest.
func (f Forest) Dangling() []uuid.UUID {
	var out []uuid.UUID
	for id, parent := range f {
		if parent == nil {
			continue
		}
		if _, ok := f[*parent]; !ok {
			out = append(out, id)
		}
	}
	sortIDs(out)
	return out
}

func (f Forest) reachesRoot(id uuid.UUID) bool {
	visited := make(map[uuid.UUID]struct{})
	current := id
	for {
		if _, seen := visited[current]; seen {
			return false
		}
		visited[current] = struct{}{}
		parent, ok := f[current]
		if !ok || parent == nil {
			return true
		}
		current = *parent
	}
}

func sortIDs(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
}

// BuildTree nests a flat, already ordered list of categories under their
// parents, starting from the roots. Categories that cannot be reached from
// a root (corrupt or dangling links) are left out.
func BuildTree(flat []models.Category) []models.Category {
	return buildTree(flat, nil, 0, make(map[uuid.UUID]struct{}))
}

func buildTree(flat []models.Category, parentID *uuid.UUID, depth int, seen map[uuid.UUID]struct{}) []models.Category {
	var result []models.Category
	for _, c := range flat {
		if !ptrEqual(c.ParentID, parentID) {
			continue
		}
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		c.Depth = depth
		c.Children = buildTree(flat, &c.ID, depth+1, seen)
		result = append(result, c)
	}
	return result
}

// ptrEqual compares two *uuid.UUID for equality (both nil or same value).
func ptrEqual(a, b *uuid.UUID) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}
