// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides the fakes shared by the handler tests and the
// database-backed helpers for integration tests. Integration tests are
// skipped when PostgreSQL is unavailable.
package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"newsportal/internal/database"
	"newsportal/internal/models"
	"newsportal/internal/store"
	"newsportal/internal/taxonomy"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "newsportal")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "newsportal")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// postJSON sends body to h as a JSON POST and returns the recorder.
func postJSON(t *testing.T, h http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

// errorBody decodes an {"error": ...} response.
func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return body.Error
}

// fakeCategories records the calls made by the category handlers.
type fakeCategories struct {
	list []models.Category
	err  error

	created  *taxonomy.CreateInput
	patched  *taxonomy.Patch
	reparent *uuid.UUID
	rootMove bool
	deleted  uuid.UUID
}

func (f *fakeCategories) List(context.Context) ([]models.Category, error) { return f.list, f.err }
func (f *fakeCategories) Tree(context.Context) ([]models.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	return taxonomy.BuildTree(f.list), nil
}

func (f *fakeCategories) Get(_ context.Context, id uuid.UUID) (*models.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.list {
		if f.list[i].ID == id {
			return &f.list[i], nil
		}
	}
	return nil, &taxonomy.NotFoundError{Entity: "category", ID: id}
}

func (f *fakeCategories) Create(_ context.Context, in taxonomy.CreateInput) (*models.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = &in
	return &models.Category{ID: uuid.New(), Name: in.Name, Slug: strings.ToLower(in.Slug), ParentID: in.ParentID}, nil
}

func (f *fakeCategories) Update(_ context.Context, id uuid.UUID, p taxonomy.Patch) (*models.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.patched = &p
	return &models.Category{ID: id}, nil
}

func (f *fakeCategories) Reparent(_ context.Context, id uuid.UUID, parentID *uuid.UUID) (*models.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.reparent = parentID
	f.rootMove = parentID == nil
	return &models.Category{ID: id, ParentID: parentID}, nil
}

func (f *fakeCategories) Delete(_ context.Context, id uuid.UUID) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.deleted = id
	return 2, nil
}

// fakePurger counts listing purges and logged invalidations.
type fakePurger struct {
	mu      sync.Mutex
	purges  int
	entries []store.CacheLogEntry
	listErr error
}

func (f *fakePurger) InvalidateAll(context.Context) {
	f.mu.Lock()
	f.purges++
	f.mu.Unlock()
}

func (f *fakePurger) Log(_ context.Context, entityType string, entityID uuid.UUID, action string) {
	f.mu.Lock()
	f.entries = append(f.entries, store.CacheLogEntry{EntityType: entityType, EntityID: entityID, Action: action})
	f.mu.Unlock()
}

func (f *fakePurger) RecentEntries(_ context.Context, limit int) ([]store.CacheLogEntry, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if limit < len(f.entries) {
		return f.entries[:limit], nil
	}
	return f.entries, nil
}

// fakeRedirects is an in-memory RedirectStore.
type fakeRedirects struct {
	items map[uuid.UUID]*models.Redirect
	err   error
}

func newFakeRedirects() *fakeRedirects {
	return &fakeRedirects{items: make(map[uuid.UUID]*models.Redirect)}
}

func (f *fakeRedirects) List(context.Context) ([]models.Redirect, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Redirect
	for _, r := range f.items {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeRedirects) FindByID(_ context.Context, id uuid.UUID) (*models.Redirect, error) {
	if f.err != nil {
		return nil, f.err
	}
	r, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRedirects) Create(_ context.Context, r *models.Redirect) (*models.Redirect, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, existing := range f.items {
		if strings.EqualFold(existing.OriginSlug, r.OriginSlug) {
			return nil, &taxonomy.ConflictError{Field: "origin_slug", Value: r.OriginSlug}
		}
	}
	cp := *r
	cp.ID = uuid.New()
	f.items[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeRedirects) Update(_ context.Context, r *models.Redirect) (*models.Redirect, error) {
	if _, ok := f.items[r.ID]; !ok {
		return nil, &taxonomy.NotFoundError{Entity: "redirect", ID: r.ID}
	}
	cp := *r
	f.items[r.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeRedirects) Toggle(_ context.Context, id uuid.UUID) (*models.Redirect, error) {
	r, ok := f.items[id]
	if !ok {
		return nil, &taxonomy.NotFoundError{Entity: "redirect", ID: id}
	}
	r.Active = !r.Active
	out := *r
	return &out, nil
}

func (f *fakeRedirects) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.items[id]; !ok {
		return &taxonomy.NotFoundError{Entity: "redirect", ID: id}
	}
	delete(f.items, id)
	return nil
}

// routeSlug runs h behind a chi route so URL params resolve.
func routeSlug(h http.HandlerFunc, target string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Get("/category/{slug}", h)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}
