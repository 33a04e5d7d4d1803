package vendorcategory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/georgemunganga/vendor-categories/internal/modules/vendor"
)

// memStore is an in-memory TermStore, AssignmentStore and VendorDirectory.
type memStore struct {
	mu          sync.Mutex
	nextID      int64
	terms       map[int64]*Category
	assignments map[uuid.UUID][]int64
	vendors     map[uuid.UUID]*vendor.Vendor
	failObjects error
}

func newMemStore() *memStore {
	return &memStore{
		terms:       map[int64]*Category{},
		assignments: map[uuid.UUID][]int64{},
		vendors:     map[uuid.UUID]*vendor.Vendor{},
	}
}

func (m *memStore) addVendor(name string) *vendor.Vendor {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := &vendor.Vendor{ID: uuid.New(), OwnerID: uuid.New(), StoreName: name, StoreSlug: name}
	m.vendors[v.ID] = v
	return v
}

func (m *memStore) withCount(c *Category) *Category {
	cp := *c
	cp.Count = 0
	for _, ids := range m.assignments {
		for _, id := range ids {
			if id == c.ID {
				cp.Count++
			}
		}
	}
	return &cp
}

func (m *memStore) CreateTerm(_ context.Context, c *Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.terms {
		if t.Slug == c.Slug {
			return ErrDuplicateSlug
		}
	}
	m.nextID++
	c.ID = m.nextID
	c.CreatedAt, c.UpdatedAt = time.Now(), time.Now()
	cp := *c
	m.terms[c.ID] = &cp
	return nil
}

func (m *memStore) UpdateTerm(_ context.Context, c *Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.terms[c.ID]; !ok {
		return ErrCategoryNotFound
	}
	for _, t := range m.terms {
		if t.Slug == c.Slug && t.ID != c.ID {
			return ErrDuplicateSlug
		}
	}
	cp := *c
	m.terms[c.ID] = &cp
	return nil
}

func (m *memStore) DeleteTerm(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.terms[id]
	if !ok {
		return ErrCategoryNotFound
	}
	for _, child := range m.terms {
		if child.ParentID != nil && *child.ParentID == id {
			child.ParentID = t.ParentID
		}
	}
	delete(m.terms, id)
	for vendorID, ids := range m.assignments {
		kept := []int64{}
		for _, assigned := range ids {
			if assigned != id {
				kept = append(kept, assigned)
			}
		}
		m.assignments[vendorID] = kept
	}
	return nil
}

func (m *memStore) GetTerm(_ context.Context, id int64) (*Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.terms[id]; ok {
		return m.withCount(t), nil
	}
	return nil, ErrCategoryNotFound
}

func (m *memStore) GetTermBySlug(_ context.Context, s string) (*Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.terms {
		if t.Slug == s {
			return m.withCount(t), nil
		}
	}
	return nil, ErrCategoryNotFound
}

func (m *memStore) ListTerms(_ context.Context, f TermFilter) ([]*Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*Category{}
	for _, t := range m.terms {
		c := m.withCount(t)
		if f.HideEmpty && c.Count == 0 {
			continue
		}
		out = append(out, c)
	}
	sortByName(out)
	return out, nil
}

func (m *memStore) GetObjectsInTerm(_ context.Context, id int64) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failObjects != nil {
		return nil, m.failObjects
	}
	out := []uuid.UUID{}
	for vendorID, ids := range m.assignments {
		for _, assigned := range ids {
			if assigned == id {
				out = append(out, vendorID)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out, nil
}

func (m *memStore) GetAssignedTerms(_ context.Context, vendorID uuid.UUID) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int64{}, m.assignments[vendorID]...), nil
}

func (m *memStore) SetAssignedTerms(_ context.Context, vendorID uuid.UUID, ids []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assignments[vendorID] = append([]int64{}, ids...)
	return nil
}

func (m *memStore) GetVendor(_ context.Context, id uuid.UUID) (*vendor.Vendor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.vendors[id]; ok {
		return v, nil
	}
	return nil, vendor.ErrNotFound
}

func (m *memStore) GetVendorByOwnerID(_ context.Context, ownerID uuid.UUID) (*vendor.Vendor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.vendors {
		if v.OwnerID == ownerID {
			return v, nil
		}
	}
	return nil, vendor.ErrNotFound
}

func (m *memStore) ListStores(_ context.Context, args vendor.ListArgs) ([]*vendor.Vendor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	allowed := map[uuid.UUID]bool{}
	for _, id := range args.Include {
		allowed[id] = true
	}
	out := []*vendor.Vendor{}
	for _, v := range m.vendors {
		if args.Restricted && !allowed[v.ID] {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StoreName < out[j].StoreName })
	return out, nil
}

var errStorage = errors.New("connection reset")

func sortByName(categories []*Category) {
	sort.SliceStable(categories, func(i, j int) bool {
		if categories[i].Name != categories[j].Name {
			return categories[i].Name < categories[j].Name
		}
		return categories[i].ID < categories[j].ID
	})
}
