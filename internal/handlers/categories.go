// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"newsportal/internal/models"
	"newsportal/internal/taxonomy"
)

// CategoryService is the category tree the admin handlers operate on.
type CategoryService interface {
	List(ctx context.Context) ([]models.Category, error)
	Tree(ctx context.Context) ([]models.Category, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Category, error)
	Create(ctx context.Context, in taxonomy.CreateInput) (*models.Category, error)
	Update(ctx context.Context, id uuid.UUID, p taxonomy.Patch) (*models.Category, error)
	Reparent(ctx context.Context, id uuid.UUID, parentID *uuid.UUID) (*models.Category, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

// Categories groups the admin category endpoints.
type Categories struct {
	service CategoryService
	purge   *Invalidator
}

// NewCategories creates the admin category handlers.
func NewCategories(service CategoryService, purge *Invalidator) *Categories {
	return &Categories{service: service, purge: purge}
}

// categoryRequest is the body of POST /admin/categories. Pointer fields
// distinguish "absent" from "set to the zero value" on update.
type categoryRequest struct {
	Action   string          `json:"action"`
	ID       string          `json:"id"`
	Name     *string         `json:"name"`
	Slug     *string         `json:"slug"`
	Color    *string         `json:"color"`
	Active   *bool           `json:"active"`
	ParentID json.RawMessage `json:"parent_id"`
	Tags     *[]string       `json:"tags"`
	RSSURLs  *[]string       `json:"rss_urls"`
}

// categoryFields carries the validated shape of a request.
type categoryFields struct {
	Name    string   `json:"name" validate:"max=200"`
	Slug    string   `json:"slug" validate:"max=200,slugchars"`
	Color   string   `json:"color" validate:"max=64"`
	Tags    []string `json:"tags" validate:"max=50,dive,max=100"`
	RSSURLs []string `json:"rss_urls" validate:"max=50,dive,omitempty,url"`
}

func (req *categoryRequest) validate() error {
	f := categoryFields{}
	if req.Name != nil {
		f.Name = *req.Name
	}
	if req.Slug != nil {
		f.Slug = *req.Slug
	}
	if req.Color != nil {
		f.Color = strings.TrimSpace(*req.Color)
	}
	if req.Tags != nil {
		f.Tags = *req.Tags
	}
	if req.RSSURLs != nil {
		f.RSSURLs = taxonomy.SanitizeList(*req.RSSURLs)
	}
	return checkStruct(f)
}

// parentID decodes the parent_id field. Absent leaves the parent alone;
// null or "" means a root category.
func (req *categoryRequest) parentID() (taxonomy.OptionalID, error) {
	raw := bytes.TrimSpace(req.ParentID)
	if len(raw) == 0 {
		return taxonomy.OptionalID{}, nil
	}
	if bytes.Equal(raw, []byte("null")) {
		return taxonomy.OptionalID{Set: true}, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return taxonomy.OptionalID{}, &taxonomy.ValidationError{Field: "parent_id", Message: "must be an id or null"}
	}
	if s = strings.TrimSpace(s); s == "" {
		return taxonomy.OptionalID{Set: true}, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return taxonomy.OptionalID{}, &taxonomy.ValidationError{Field: "parent_id", Message: "must be a valid id"}
	}
	return taxonomy.OptionalID{Set: true, ID: &id}, nil
}

// List returns every category ordered by name.
// GET /admin/categories
func (c *Categories) List(w http.ResponseWriter, r *http.Request) {
	cats, err := c.service.List(r.Context())
	if err != nil {
		writeDomainError(w, r, "list categories failed", err)
		return
	}
	if cats == nil {
		cats = []models.Category{}
	}
	writeJSON(w, http.StatusOK, cats)
}

// Tree returns the categories nested under their parents.
// GET /admin/categories/tree
func (c *Categories) Tree(w http.ResponseWriter, r *http.Request) {
	tree, err := c.service.Tree(r.Context())
	if err != nil {
		writeDomainError(w, r, "build category tree failed", err)
		return
	}
	if tree == nil {
		tree = []models.Category{}
	}
	writeJSON(w, http.StatusOK, tree)
}

// Get returns one category.
// GET /admin/categories/{id}
func (c *Categories) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, "get category rejected", err)
		return
	}
	cat, err := c.service.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, "get category failed", err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

// Mutate dispatches on the action field of the request body.
// POST /admin/categories
func (c *Categories) Mutate(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDomainError(w, r, "decode category request", err)
		return
	}

	switch actionOf(req.Action) {
	case "create":
		c.create(w, r, &req)
	case "update":
		c.update(w, r, &req)
	case "delete":
		c.delete(w, r, &req)
	case "reparent":
		c.reparent(w, r, &req)
	default:
		writeError(w, http.StatusBadRequest, "invalid action")
	}
}

func (c *Categories) create(w http.ResponseWriter, r *http.Request, req *categoryRequest) {
	if err := req.validate(); err != nil {
		writeDomainError(w, r, "create category rejected", err)
		return
	}
	parent, err := req.parentID()
	if err != nil {
		writeDomainError(w, r, "create category rejected", err)
		return
	}

	in := taxonomy.CreateInput{Active: req.Active, ParentID: parent.ID}
	if req.Name != nil {
		in.Name = *req.Name
	}
	if req.Slug != nil {
		in.Slug = *req.Slug
	}
	if req.Color != nil {
		in.Color = *req.Color
	}
	if req.Tags != nil {
		in.Tags = *req.Tags
	}
	if req.RSSURLs != nil {
		in.RSSFeedURLs = *req.RSSURLs
	}

	cat, err := c.service.Create(r.Context(), in)
	if err != nil {
		writeDomainError(w, r, "create category failed", err)
		return
	}
	c.purge.Purge(r.Context(), "category", cat.ID, "create")
	writeJSON(w, http.StatusCreated, cat)
}

func (c *Categories) update(w http.ResponseWriter, r *http.Request, req *categoryRequest) {
	id, err := parseID(req.ID)
	if err != nil {
		writeDomainError(w, r, "update category rejected", err)
		return
	}
	if err := req.validate(); err != nil {
		writeDomainError(w, r, "update category rejected", err)
		return
	}
	parent, err := req.parentID()
	if err != nil {
		writeDomainError(w, r, "update category rejected", err)
		return
	}

	cat, err := c.service.Update(r.Context(), id, taxonomy.Patch{
		Name:        req.Name,
		Slug:        req.Slug,
		Color:       req.Color,
		Active:      req.Active,
		ParentID:    parent,
		Tags:        req.Tags,
		RSSFeedURLs: req.RSSURLs,
	})
	if err != nil {
		writeDomainError(w, r, "update category failed", err)
		return
	}
	c.purge.Purge(r.Context(), "category", cat.ID, "update")
	writeJSON(w, http.StatusOK, cat)
}

func (c *Categories) reparent(w http.ResponseWriter, r *http.Request, req *categoryRequest) {
	id, err := parseID(req.ID)
	if err != nil {
		writeDomainError(w, r, "reparent category rejected", err)
		return
	}
	parent, err := req.parentID()
	if err != nil {
		writeDomainError(w, r, "reparent category rejected", err)
		return
	}
	if !parent.Set {
		writeDomainError(w, r, "reparent category rejected",
			&taxonomy.ValidationError{Field: "parent_id", Message: "is required (null moves to root)"})
		return
	}

	cat, err := c.service.Reparent(r.Context(), id, parent.ID)
	if err != nil {
		writeDomainError(w, r, "reparent category failed", err)
		return
	}
	c.purge.Purge(r.Context(), "category", cat.ID, "reparent")
	writeJSON(w, http.StatusOK, cat)
}

func (c *Categories) delete(w http.ResponseWriter, r *http.Request, req *categoryRequest) {
	id, err := parseID(req.ID)
	if err != nil {
		writeDomainError(w, r, "delete category rejected", err)
		return
	}

	if _, err = c.service.Delete(r.Context(), id); err != nil {
		writeDomainError(w, r, "delete category failed", err)
		return
	}
	c.purge.Purge(r.Context(), "category", id, "delete")
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
