package taxonomy

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"newsportal/internal/models"
)

// memStore is an in-memory Store. Atomic holds a mutex for the whole
// callback and rolls back on error, mirroring the locked transaction of
// the PostgreSQL store.
type memStore struct {
	mu        sync.Mutex
	cats      map[uuid.UUID]models.Category
	redirects map[string]models.Redirect

	findErr     error
	childrenErr error
	redirectErr error
}

func newMemStore() *memStore {
	return &memStore{
		cats:      make(map[uuid.UUID]models.Category),
		redirects: make(map[string]models.Redirect),
	}
}

// put inserts a category directly, bypassing validation. Used to build
// fixtures, including corrupt ones.
func (m *memStore) put(name, slug string, parent *uuid.UUID) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.cats[id] = models.Category{ID: id, Name: name, Slug: slug, Active: true, ParentID: parent, Color: models.DefaultCategoryColor}
	return id
}

func (m *memStore) setParent(id uuid.UUID, parent *uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.cats[id]
	c.ParentID = parent
	m.cats[id] = c
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cats)
}

func (m *memStore) get(id uuid.UUID) models.Category {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cats[id]
}

func (m *memStore) List(_ context.Context) ([]models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Category, 0, len(m.cats))
	for _, c := range m.cats {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) FindByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	c, ok := m.cats[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m *memStore) FindBySlug(_ context.Context, slug string) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, c := range m.cats {
		if strings.EqualFold(c.Slug, slug) {
			c := c
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memStore) ChildIDs(_ context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.childrenErr != nil {
		return nil, m.childrenErr
	}
	var out []uuid.UUID
	for _, c := range m.cats {
		if c.ParentID != nil && *c.ParentID == id {
			out = append(out, c.ID)
		}
	}
	return out, nil
}

func (m *memStore) FindActive(_ context.Context, origin string) (*models.Redirect, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.redirectErr != nil {
		return nil, m.redirectErr
	}
	r, ok := m.redirects[origin]
	if !ok || !r.Active {
		return nil, nil
	}
	return &r, nil
}

func (m *memStore) addRedirect(origin, dest string, active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.redirects[origin] = models.Redirect{ID: uuid.New(), OriginSlug: origin, DestinationURL: dest, Active: active}
}

func (m *memStore) Atomic(_ context.Context, fn func(Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := make(map[uuid.UUID]models.Category, len(m.cats))
	for k, v := range m.cats {
		snapshot[k] = v
	}
	if err := fn(&memTx{m: m}); err != nil {
		m.cats = snapshot
		return err
	}
	return nil
}

// memTx operates on the store while Atomic holds its lock.
type memTx struct {
	m *memStore
}

func (t *memTx) Forest(_ context.Context) (Forest, error) {
	f := make(Forest, len(t.m.cats))
	for id, c := range t.m.cats {
		f[id] = c.ParentID
	}
	return f, nil
}

func (t *memTx) FindByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	if t.m.findErr != nil {
		return nil, t.m.findErr
	}
	c, ok := t.m.cats[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (t *memTx) SlugTaken(_ context.Context, slug string, exclude uuid.UUID) (bool, error) {
	for id, c := range t.m.cats {
		if id != exclude && strings.EqualFold(c.Slug, slug) {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) Insert(_ context.Context, c *models.Category) (*models.Category, error) {
	out := *c
	out.ID = uuid.New()
	out.CreatedAt = time.Now()
	out.UpdatedAt = out.CreatedAt
	t.m.cats[out.ID] = out
	return &out, nil
}

func (t *memTx) Update(_ context.Context, c *models.Category) (*models.Category, error) {
	if _, ok := t.m.cats[c.ID]; !ok {
		return nil, errors.New("update of missing row")
	}
	out := *c
	out.UpdatedAt = time.Now()
	t.m.cats[c.ID] = out
	return &out, nil
}

func (t *memTx) Delete(_ context.Context, id uuid.UUID) error {
	delete(t.m.cats, id)
	return nil
}

func (t *memTx) MoveChildren(_ context.Context, from uuid.UUID, to *uuid.UUID) (int64, error) {
	var n int64
	for id, c := range t.m.cats {
		if c.ParentID != nil && *c.ParentID == from {
			c.ParentID = to
			t.m.cats[id] = c
			n++
		}
	}
	return n, nil
}

func idPtr(id uuid.UUID) *uuid.UUID {
	return &id
}

func strPtr(s string) *string {
	return &s
}

// Includes reports whether content tagged with categoryID falls inside s.
func (s Scope) Includes(categoryID uuid.UUID) bool {
	for _, id := range s.CategoryIDs {
		if id == categoryID {
			return true
		}
	}
	return false
}

// IncludesName reports whether content carrying the legacy name falls
// inside s, compared case-insensitively.
func (s Scope) IncludesName(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, n := range s.LegacyNames {
		if n == name {
			return true
		}
	}
	return false
}
