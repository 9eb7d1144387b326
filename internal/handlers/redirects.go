// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"newsportal/internal/models"
	"newsportal/internal/taxonomy"
)

// RedirectStore persists the redirect table.
type RedirectStore interface {
	List(ctx context.Context) ([]models.Redirect, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Redirect, error)
	Create(ctx context.Context, r *models.Redirect) (*models.Redirect, error)
	Update(ctx context.Context, r *models.Redirect) (*models.Redirect, error)
	Toggle(ctx context.Context, id uuid.UUID) (*models.Redirect, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Redirects groups the admin redirect endpoints.
type Redirects struct {
	store   RedirectStore
	purge   *Invalidator
	siteURL string
}

// NewRedirects creates the admin redirect handlers. siteURL is stripped
// from origins pasted as absolute URLs.
func NewRedirects(store RedirectStore, purge *Invalidator, siteURL string) *Redirects {
	return &Redirects{store: store, purge: purge, siteURL: strings.TrimRight(siteURL, "/")}
}

type redirectRequest struct {
	Action         string  `json:"action"`
	ID             string  `json:"id"`
	OriginSlug     *string `json:"origin_slug"`
	DestinationURL *string `json:"destination_url"`
	Active         *bool   `json:"active"`
}

type redirectFields struct {
	OriginSlug     string `json:"origin_slug" validate:"required,max=500"`
	DestinationURL string `json:"destination_url" validate:"required,max=2048,redirecttarget"`
}

// cleanOrigin turns an admin-entered origin into the request path the
// resolver looks up: site URL removed, surrounding space and trailing
// slashes trimmed, leading slash forced.
func cleanOrigin(siteURL, origin string) string {
	origin = strings.TrimSpace(origin)
	if siteURL != "" && len(origin) >= len(siteURL) && strings.EqualFold(origin[:len(siteURL)], siteURL) {
		origin = origin[len(siteURL):]
	}
	origin = strings.TrimSpace(origin)
	origin = strings.TrimRight(origin, "/")
	if origin == "" {
		return ""
	}
	if !strings.HasPrefix(origin, "/") {
		origin = "/" + origin
	}
	return origin
}

// apply validates the request and writes its fields onto r.
func (h *Redirects) apply(req *redirectRequest, r *models.Redirect) error {
	if req.OriginSlug != nil {
		r.OriginSlug = cleanOrigin(h.siteURL, *req.OriginSlug)
	}
	if req.DestinationURL != nil {
		r.DestinationURL = strings.TrimSpace(*req.DestinationURL)
	}
	if req.Active != nil {
		r.Active = *req.Active
	}
	if err := checkStruct(redirectFields{OriginSlug: r.OriginSlug, DestinationURL: r.DestinationURL}); err != nil {
		return err
	}
	if strings.EqualFold(r.OriginSlug, r.DestinationURL) {
		return &taxonomy.ValidationError{Field: "destination_url", Message: "must differ from the origin"}
	}
	return nil
}

// List returns every redirect ordered by origin.
// GET /admin/redirects
func (h *Redirects) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.List(r.Context())
	if err != nil {
		writeDomainError(w, r, "list redirects failed", err)
		return
	}
	if items == nil {
		items = []models.Redirect{}
	}
	writeJSON(w, http.StatusOK, items)
}

// Mutate dispatches on the action field of the request body.
// POST /admin/redirects
func (h *Redirects) Mutate(w http.ResponseWriter, r *http.Request) {
	var req redirectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDomainError(w, r, "decode redirect request", err)
		return
	}

	switch actionOf(req.Action) {
	case "create":
		h.create(w, r, &req)
	case "update":
		h.update(w, r, &req)
	case "toggle":
		h.toggle(w, r, &req)
	case "delete":
		h.delete(w, r, &req)
	default:
		writeError(w, http.StatusBadRequest, "invalid action")
	}
}

func (h *Redirects) create(w http.ResponseWriter, r *http.Request, req *redirectRequest) {
	red := &models.Redirect{Active: true}
	if err := h.apply(req, red); err != nil {
		writeDomainError(w, r, "create redirect rejected", err)
		return
	}

	created, err := h.store.Create(r.Context(), red)
	if err != nil {
		writeDomainError(w, r, "create redirect failed", err)
		return
	}
	h.purge.Purge(r.Context(), "redirect", created.ID, "create")
	slog.Info("redirect created", "id", created.ID, "origin", created.OriginSlug, "destination", created.DestinationURL)
	writeJSON(w, http.StatusCreated, created)
}

func (h *Redirects) update(w http.ResponseWriter, r *http.Request, req *redirectRequest) {
	id, err := parseID(req.ID)
	if err != nil {
		writeDomainError(w, r, "update redirect rejected", err)
		return
	}
	current, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, "find redirect failed", err)
		return
	}
	if current == nil {
		writeDomainError(w, r, "update redirect rejected", &taxonomy.NotFoundError{Entity: "redirect", ID: id})
		return
	}
	if err := h.apply(req, current); err != nil {
		writeDomainError(w, r, "update redirect rejected", err)
		return
	}

	updated, err := h.store.Update(r.Context(), current)
	if err != nil {
		writeDomainError(w, r, "update redirect failed", err)
		return
	}
	h.purge.Purge(r.Context(), "redirect", updated.ID, "update")
	slog.Info("redirect updated", "id", updated.ID, "origin", updated.OriginSlug)
	writeJSON(w, http.StatusOK, updated)
}

func (h *Redirects) toggle(w http.ResponseWriter, r *http.Request, req *redirectRequest) {
	id, err := parseID(req.ID)
	if err != nil {
		writeDomainError(w, r, "toggle redirect rejected", err)
		return
	}
	toggled, err := h.store.Toggle(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, "toggle redirect failed", err)
		return
	}
	h.purge.Purge(r.Context(), "redirect", toggled.ID, "toggle")
	slog.Info("redirect toggled", "id", toggled.ID, "active", toggled.Active)
	writeJSON(w, http.StatusOK, toggled)
}

func (h *Redirects) delete(w http.ResponseWriter, r *http.Request, req *redirectRequest) {
	id, err := parseID(req.ID)
	if err != nil {
		writeDomainError(w, r, "delete redirect rejected", err)
		return
	}
	if err := h.store.Delete(r.Context(), id); err != nil {
		writeDomainError(w, r, "delete redirect failed", err)
		return
	}
	h.purge.Purge(r.Context(), "redirect", id, "delete")
	slog.Info("redirect deleted", "id", id)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
