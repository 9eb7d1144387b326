// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package taxonomy implements the category hierarchy: mutation rules that
// keep the parent graph acyclic, and resolution of public category paths
// into content scopes.
package taxonomy

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"newsportal/internal/models"
	"newsportal/internal/slug"
)

// Tx is the view of the category table available inside a mutation. All
// calls made through one Tx run in a single transaction that holds the
// tree lock, so the cycle check and the write cannot interleave with
// another mutation.
type Tx interface {
	// Forest loads the parent pointer of every category.
	Forest(ctx context.Context) (Forest, error)
	// FindByID returns nil, nil when the category does not exist.
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	// SlugTaken reports whether another category (not exclude) already
	// uses slug, compared case-insensitively.
	SlugTaken(ctx context.Context, slug string, exclude uuid.UUID) (bool, error)
	Insert(ctx context.Context, c *models.Category) (*models.Category, error)
	Update(ctx context.Context, c *models.Category) (*models.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// MoveChildren re-points every child of from to the new parent.
	MoveChildren(ctx context.Context, from uuid.UUID, to *uuid.UUID) (int64, error)
}

// Store is the persistent category repository.
type Store interface {
	List(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	// Atomic runs fn inside one locked transaction, committing only when
	// fn returns nil.
	Atomic(ctx context.Context, fn func(Tx) error) error
}

// CreateInput carries the fields accepted when creating a category. An
// empty Slug is derived from Name; a nil Active defaults to true.
type CreateInput struct {
	Name        string
	Slug        string
	Color       string
	Active      *bool
	ParentID    *uuid.UUID
	Tags        []string
	RSSFeedURLs []string
}

// OptionalID distinguishes "leave the parent alone" (Set == false) from
// "detach to root" (Set == true, ID == nil).
type OptionalID struct {
	Set bool
	ID  *uuid.UUID
}

// Patch lists the fields of an update. Nil pointers are left untouched.
type Patch struct {
	Name        *string
	Slug        *string
	Color       *string
	Active      *bool
	ParentID    OptionalID
	Tags        *[]string
	RSSFeedURLs *[]string
}

// Service applies admin mutations to the category tree.
type Service struct {
	store Store
}

// NewService creates a Service backed by the given store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// List returns every category ordered by name.
func (s *Service) List(ctx context.Context) ([]models.Category, error) {
	cats, err := s.store.List(ctx)
	if err != nil {
		return nil, storeErr("list categories", err)
	}
	return cats, nil
}

// Tree returns the categories nested under their parents.
func (s *Service) Tree(ctx context.Context) ([]models.Category, error) {
	flat, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return BuildTree(flat), nil
}

// Get returns a single category.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	c, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("find category", err)
	}
	if c == nil {
		return nil, &NotFoundError{Entity: "category", ID: id}
	}
	return c, nil
}

// Create validates and inserts a new category.
func (s *Service) Create(ctx context.Context, in CreateInput) (created *models.Category, err error) {
	defer func() { mutationTotal.WithLabelValues("create", mutationResult(err)).Inc() }()

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Message: "name is required"}
	}

	var catSlug string
	if strings.TrimSpace(in.Slug) == "" {
		catSlug = slug.Generate(name)
	} else {
		catSlug = normalizeSlugInput(in.Slug)
	}
	if err := checkSlug(catSlug); err != nil {
		return nil, err
	}

	c := &models.Category{
		Name:        name,
		Slug:        catSlug,
		Color:       colorOrDefault(in.Color),
		Active:      true,
		ParentID:    in.ParentID,
		Tags:        SanitizeList(in.Tags),
		RSSFeedURLs: SanitizeList(in.RSSFeedURLs),
	}
	if in.Active != nil {
		c.Active = *in.Active
	}

	err = s.store.Atomic(ctx, func(tx Tx) error {
		if c.ParentID != nil {
			if err := requireParent(ctx, tx, *c.ParentID); err != nil {
				return err
			}
		}
		taken, err := tx.SlugTaken(ctx, c.Slug, uuid.Nil)
		if err != nil {
			return storeErr("check slug", err)
		}
		if taken {
			return &ConflictError{Field: "slug", Value: c.Slug}
		}
		created, err = tx.Insert(ctx, c)
		return storeErr("create category", err)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("category created", "id", created.ID, "slug", created.Slug, "parent_id", created.ParentID)
	return created, nil
}

// Update applies a patch to an existing category. A parent change is
// refused with a CycleError when it would make the category its own
// ancestor.
func (s *Service) Update(ctx context.Context, id uuid.UUID, p Patch) (*models.Category, error) {
	updated, err := s.update(ctx, id, p)
	mutationTotal.WithLabelValues("update", mutationResult(err)).Inc()
	return updated, err
}

// Reparent moves a category under a new parent, or to the root when
// parentID is nil. This is the drag-and-drop operation of the admin tree.
func (s *Service) Reparent(ctx context.Context, id uuid.UUID, parentID *uuid.UUID) (*models.Category, error) {
	updated, err := s.update(ctx, id, Patch{ParentID: OptionalID{Set: true, ID: parentID}})
	mutationTotal.WithLabelValues("reparent", mutationResult(err)).Inc()
	return updated, err
}

func (s *Service) update(ctx context.Context, id uuid.UUID, p Patch) (*models.Category, error) {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return nil, &ValidationError{Field: "name", Message: "name is required"}
	}
	var newSlug string
	if p.Slug != nil {
		newSlug = normalizeSlugInput(*p.Slug)
		if err := checkSlug(newSlug); err != nil {
			return nil, err
		}
	}

	var updated *models.Category
	err := s.store.Atomic(ctx, func(tx Tx) error {
		current, err := tx.FindByID(ctx, id)
		if err != nil {
			return storeErr("find category", err)
		}
		if current == nil {
			return &NotFoundError{Entity: "category", ID: id}
		}

		next := *current
		if p.Name != nil {
			next.Name = strings.TrimSpace(*p.Name)
		}
		if p.Slug != nil && newSlug != current.Slug {
			taken, err := tx.SlugTaken(ctx, newSlug, id)
			if err != nil {
				return storeErr("check slug", err)
			}
			if taken {
				return &ConflictError{Field: "slug", Value: newSlug}
			}
			next.Slug = newSlug
		}
		if p.Color != nil {
			next.Color = colorOrDefault(*p.Color)
		}
		if p.Active != nil {
			next.Active = *p.Active
		}
		if p.Tags != nil {
			next.Tags = SanitizeList(*p.Tags)
		}
		if p.RSSFeedURLs != nil {
			next.RSSFeedURLs = SanitizeList(*p.RSSFeedURLs)
		}
		if p.ParentID.Set && !ptrEqual(p.ParentID.ID, current.ParentID) {
			if err := checkParent(ctx, tx, id, p.ParentID.ID); err != nil {
				return err
			}
			next.ParentID = p.ParentID.ID
		}

		updated, err = tx.Update(ctx, &next)
		return storeErr("update category", err)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("category updated", "id", updated.ID, "slug", updated.Slug, "parent_id", updated.ParentID)
	return updated, nil
}

// Delete removes a category. Its children are promoted to the deleted
// category's parent (or become roots) in the same transaction, so no
// parent link is ever left dangling. It returns the number of children
// that were moved.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (moved int64, err error) {
	defer func() { mutationTotal.WithLabelValues("delete", mutationResult(err)).Inc() }()

	err = s.store.Atomic(ctx, func(tx Tx) error {
		current, err := tx.FindByID(ctx, id)
		if err != nil {
			return storeErr("find category", err)
		}
		if current == nil {
			return &NotFoundError{Entity: "category", ID: id}
		}
		moved, err = tx.MoveChildren(ctx, id, current.ParentID)
		if err != nil {
			return storeErr("promote children", err)
		}
		return storeErr("delete category", tx.Delete(ctx, id))
	})
	if err != nil {
		return 0, err
	}

	slog.Info("category deleted", "id", id, "children_promoted", moved)
	return moved, nil
}

// checkParent verifies that parentID exists and that attaching id below
// it keeps the graph acyclic. Must be called inside Atomic.
func checkParent(ctx context.Context, tx Tx, id uuid.UUID, parentID *uuid.UUID) error {
	if parentID == nil {
		return nil
	}
	if *parentID == id {
		return &CycleError{ID: id, ParentID: id}
	}
	if err := requireParent(ctx, tx, *parentID); err != nil {
		return err
	}
	forest, err := tx.Forest(ctx)
	if err != nil {
		return storeErr("load category graph", err)
	}
	if forest.WouldCreateCycle(id, parentID) {
		return &CycleError{ID: id, ParentID: *parentID}
	}
	return nil
}

func requireParent(ctx context.Context, tx Tx, parentID uuid.UUID) error {
	parent, err := tx.FindByID(ctx, parentID)
	if err != nil {
		return storeErr("find parent category", err)
	}
	if parent == nil {
		return &ValidationError{Field: "parent_id", Message: "parent category " + parentID.String() + " does not exist"}
	}
	return nil
}

func normalizeSlugInput(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func checkSlug(s string) error {
	if s == "" {
		return &ValidationError{Field: "slug", Message: "slug is required"}
	}
	if !slug.Valid(s) {
		return &ValidationError{Field: "slug", Message: "slug may only contain a-z, 0-9 and '-'"}
	}
	return nil
}

func colorOrDefault(color string) string {
	if color = strings.TrimSpace(color); color == "" {
		return models.DefaultCategoryColor
	}
	return color
}

// SanitizeList trims every entry and drops the empty ones, preserving
// order. It never returns nil.
func SanitizeList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
