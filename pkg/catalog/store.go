package catalog

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mespms/clinicalforms/pkg/schema"
	"github.com/mespms/clinicalforms/pkg/session"
)

// MemoryStore keeps templates in process memory with the backend's
// versioning rules. It is safe for concurrent use; every record it returns
// is a copy.
type MemoryStore struct {
	mu     sync.RWMutex
	byID   map[int64]schema.Template
	nextID int64
	now    func() time.Time
}

// StoreOption configures a MemoryStore.
type StoreOption func(*MemoryStore)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) StoreOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMemoryStore returns an empty store.
func NewMemoryStore(opts ...StoreOption) *MemoryStore {
	s := &MemoryStore{byID: map[int64]schema.Template{}, nextID: 1, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Create stores a new root template at version 1 authored by user.
func (s *MemoryStore) Create(ctx context.Context, user session.User, t schema.Template) (schema.Template, error) {
	if err := ctx.Err(); err != nil {
		return schema.Template{}, err
	}
	if !user.IsAdmin() {
		return schema.Template{}, ErrForbidden
	}
	if err := validateRecord(t.Name, t.Category, t.Structure); err != nil {
		return schema.Template{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rec := t.Clone()
	rec.ID = s.allocID()
	rec.CreatedBy = user.ID
	rec.CreatedByName = user.DisplayName()
	if user.Clinic != nil {
		rec.Clinic = *user.Clinic
	}
	rec.Version = 1
	rec.ParentTemplate = nil
	rec.IsActive, rec.IsArchived, rec.IsLatestVersion = true, false, true
	rec.CreatedAt = s.now()
	rec.UpdatedAt = rec.CreatedAt
	s.byID[rec.ID] = rec
	return rec.Clone(), nil
}

// CreateVersion stores draft as a new record in the source's lineage. The
// version is one above the highest in the lineage; earlier versions lose
// their latest and active flags and are otherwise untouched.
func (s *MemoryStore) CreateVersion(ctx context.Context, user session.User, draft VersionDraft) (schema.Template, error) {
	if err := ctx.Err(); err != nil {
		return schema.Template{}, err
	}
	if !user.IsAdmin() {
		return schema.Template{}, ErrForbidden
	}
	if err := validateRecord(draft.Name, draft.Category, draft.Structure); err != nil {
		return schema.Template{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	source, ok := s.byID[draft.ParentTemplate]
	if !ok {
		return schema.Template{}, fmt.Errorf("%w: %d", ErrNotFound, draft.ParentTemplate)
	}
	if source.IsArchived {
		return schema.Template{}, fmt.Errorf("%w: %d", ErrArchived, source.ID)
	}

	root := s.rootLocked(source.ID)
	maxVersion := 0
	for id, t := range s.byID {
		if s.rootLocked(id) != root {
			continue
		}
		maxVersion = max(maxVersion, t.Version)
		if t.IsLatestVersion || t.IsActive {
			t.IsLatestVersion, t.IsActive = false, false
			t.UpdatedAt = s.now()
			s.byID[id] = t
		}
	}

	parent := source.ID
	rec := schema.Template{
		ID:              s.allocID(),
		Clinic:          source.Clinic,
		CreatedBy:       user.ID,
		CreatedByName:   user.DisplayName(),
		Name:            draft.Name,
		Description:     draft.Description,
		Category:        draft.Category,
		Structure:       draft.Structure.Clone(),
		Version:         maxVersion + 1,
		ParentTemplate:  &parent,
		IsActive:        true,
		IsLatestVersion: true,
		CreatedAt:       s.now(),
	}
	rec.UpdatedAt = rec.CreatedAt
	s.byID[rec.ID] = rec
	return rec.Clone(), nil
}

// Archive marks a template archived and inactive. Archiving is one-way;
// archiving an archived template is a no-op.
func (s *MemoryStore) Archive(ctx context.Context, user session.User, id int64) (schema.Template, error) {
	if err := ctx.Err(); err != nil {
		return schema.Template{}, err
	}
	if !user.IsAdmin() {
		return schema.Template{}, ErrForbidden
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.byID[id]
	if !ok {
		return schema.Template{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if !t.IsArchived {
		t.IsArchived, t.IsActive = true, false
		t.UpdatedAt = s.now()
		s.byID[id] = t
	}
	return t.Clone(), nil
}

// Get returns a copy of one template.
func (s *MemoryStore) Get(ctx context.Context, id int64) (schema.Template, error) {
	if err := ctx.Err(); err != nil {
		return schema.Template{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.byID[id]
	if !ok {
		return schema.Template{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return t.Clone(), nil
}

// List returns copies of every template, newest first.
func (s *MemoryStore) List(ctx context.Context) ([]schema.Template, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]schema.Template, 0, len(s.byID))
	for _, t := range s.byID {
		out = append(out, t.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// Active returns the active templates a note can be written against.
func (s *MemoryStore) Active(ctx context.Context) ([]schema.Template, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(all, func(t schema.Template) bool {
		return !t.IsActive || t.IsArchived
	}), nil
}

// Lineage returns every version sharing id's root, oldest first.
func (s *MemoryStore) Lineage(ctx context.Context, id int64) ([]schema.Template, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.byID[id]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	root := s.rootLocked(id)
	var out []schema.Template
	for tid, t := range s.byID {
		if s.rootLocked(tid) == root {
			out = append(out, t.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

func (s *MemoryStore) allocID() int64 {
	id := s.nextID
	s.nextID++
	return id
}

// rootLocked follows parent links to the lineage root. Parent links only
// point at earlier records, so the walk terminates.
func (s *MemoryStore) rootLocked(id int64) int64 {
	for {
		t, ok := s.byID[id]
		if !ok || t.ParentTemplate == nil {
			return id
		}
		id = *t.ParentTemplate
	}
}

func validateRecord(name string, category schema.Category, structure schema.Structure) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("catalog: template name is required")
	}
	if !category.Valid() {
		return fmt.Errorf("catalog: unknown category %q", category)
	}
	if err := schema.Check(structure); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	return nil
}
