package notes

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/mespms/clinicalforms/pkg/catalog"
	"github.com/mespms/clinicalforms/pkg/schema"
)

// Persister stores notes. The REST client and MemoryPersister implement it.
type Persister interface {
	Create(ctx context.Context, req CreateRequest) (Note, error)
	Get(ctx context.Context, id int64) (Note, error)
	Update(ctx context.Context, id int64, content map[string]any) (Note, error)
	// Autosave stores a draft without validation and returns the save time.
	Autosave(ctx context.Context, id int64, content map[string]any) (time.Time, error)
	Sign(ctx context.Context, id int64) (Note, error)
}

// TemplateLookup resolves template records by id; catalog.MemoryStore and
// the REST client implement it.
type TemplateLookup interface {
	Get(ctx context.Context, id int64) (schema.Template, error)
}

// MemoryPersister keeps notes in process memory and applies the backend's
// rules: the template version is frozen on create and signed notes refuse
// every change. It is safe for concurrent use.
type MemoryPersister struct {
	mu        sync.RWMutex
	templates TemplateLookup
	notes     map[int64]Note
	nextID    int64
	now       func() time.Time
}

// MemoryOption configures a MemoryPersister.
type MemoryOption func(*MemoryPersister)

// WithMemoryClock overrides the timestamp source.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(p *MemoryPersister) {
		if now != nil {
			p.now = now
		}
	}
}

// NewMemoryPersister returns an empty store resolving templates through
// templates.
func NewMemoryPersister(templates TemplateLookup, opts ...MemoryOption) *MemoryPersister {
	p := &MemoryPersister{templates: templates, notes: map[int64]Note{}, nextID: 1, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Create stores a draft note against the template's current version.
func (p *MemoryPersister) Create(ctx context.Context, req CreateRequest) (Note, error) {
	if err := req.Validate(); err != nil {
		return Note{}, err
	}
	tpl, err := p.templates.Get(ctx, req.Template)
	if err != nil {
		return Note{}, fmt.Errorf("notes: create: %w", err)
	}
	if tpl.IsArchived {
		return Note{}, fmt.Errorf("notes: create: %w", catalog.ErrArchived)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.now()
	note := Note{
		ID:              p.nextID,
		Patient:         req.Patient,
		Practitioner:    req.Practitioner,
		Appointment:     req.Appointment,
		Clinic:          tpl.Clinic,
		Template:        tpl.ID,
		TemplateName:    tpl.Name,
		TemplateVersion: tpl.Version,
		Date:            req.Date,
		NoteType:        string(tpl.Category),
		IsDraft:         true,
		Content:         cloneContent(req.Content),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	p.nextID++
	p.notes[note.ID] = note
	return note.Clone(), nil
}

// Get returns a copy of the note.
func (p *MemoryPersister) Get(ctx context.Context, id int64) (Note, error) {
	if err := ctx.Err(); err != nil {
		return Note{}, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	note, ok := p.notes[id]
	if !ok {
		return Note{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return note.Clone(), nil
}

// List returns the notes matching q, newest first.
func (p *MemoryPersister) List(ctx context.Context, q Query) ([]Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Note, 0, len(p.notes))
	for _, note := range p.notes {
		if q.Match(note) {
			out = append(out, note.Clone())
		}
	}
	slices.SortFunc(out, func(a, b Note) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return int(b.ID - a.ID)
	})
	return out, nil
}

// Update replaces the answer map.
func (p *MemoryPersister) Update(ctx context.Context, id int64, content map[string]any) (Note, error) {
	var out Note
	err := p.mutate(ctx, id, func(n *Note, now time.Time) {
		n.Content = cloneContent(content)
		n.UpdatedAt = now
		out = n.Clone()
	})
	return out, err
}

// Autosave stores a draft answer map and records the autosave time.
func (p *MemoryPersister) Autosave(ctx context.Context, id int64, content map[string]any) (time.Time, error) {
	var saved time.Time
	err := p.mutate(ctx, id, func(n *Note, now time.Time) {
		n.Content = cloneContent(content)
		n.LastAutosave = &now
		n.UpdatedAt = now
		saved = now
	})
	return saved, err
}

// Sign freezes the note.
func (p *MemoryPersister) Sign(ctx context.Context, id int64) (Note, error) {
	var out Note
	err := p.mutate(ctx, id, func(n *Note, now time.Time) {
		n.IsSigned = true
		n.IsDraft = false
		n.SignedAt = &now
		n.UpdatedAt = now
		out = n.Clone()
	})
	return out, err
}

func (p *MemoryPersister) mutate(ctx context.Context, id int64, fn func(*Note, time.Time)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	note, ok := p.notes[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if note.IsSigned {
		return ErrSigned
	}
	fn(&note, p.now())
	p.notes[id] = note
	return nil
}
