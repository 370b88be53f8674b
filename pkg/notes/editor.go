package notes

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mespms/clinicalforms/pkg/fields"
	"github.com/mespms/clinicalforms/pkg/form"
	"github.com/mespms/clinicalforms/pkg/render"
	"github.com/mespms/clinicalforms/pkg/schema"
	"github.com/mespms/clinicalforms/pkg/session"
)

// DefaultAutosaveInterval is how often RunAutosave saves a dirty draft.
const DefaultAutosaveInterval = 30 * time.Second

// Notifier shows toast-style messages to the user.
type Notifier interface {
	Success(message string)
	Error(message string)
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Error(string)   {}

// LogNotifier writes notifications to a logger, for hosts without a UI.
type LogNotifier struct {
	Logger zerolog.Logger
}

func (n LogNotifier) Success(message string) { n.Logger.Info().Msg(message) }
func (n LogNotifier) Error(message string)   { n.Logger.Error().Msg(message) }

// EditorOption configures an Editor.
type EditorOption func(*Editor)

// WithNotifier routes user-facing messages.
func WithNotifier(n Notifier) EditorOption {
	return func(e *Editor) {
		if n != nil {
			e.notifier = n
		}
	}
}

// WithLogger sets the editor's logger. The default discards.
func WithLogger(logger zerolog.Logger) EditorOption {
	return func(e *Editor) {
		e.logger = logger
	}
}

// WithFormOptions are passed to form.New, e.g. a checkbox policy.
func WithFormOptions(opts ...form.Option) EditorOption {
	return func(e *Editor) {
		e.formOpts = append(e.formOpts, opts...)
	}
}

// WithEditorClock overrides the timestamp source.
func WithEditorClock(now func() time.Time) EditorOption {
	return func(e *Editor) {
		if now != nil {
			e.now = now
		}
	}
}

// Editor fills one note. It is safe for concurrent use so RunAutosave can
// share it with the view making edits.
type Editor struct {
	mu         sync.Mutex
	note       Note
	template   schema.Template
	user       session.User
	form       *form.Form
	formOpts   []form.Option
	formErrors []string
	persister  Persister
	notifier   Notifier
	logger     zerolog.Logger
	now        func() time.Time
	dirty      bool
	lastSaved  time.Time
}

// NewEditor opens note for user. tpl must be the exact template record the
// note was written against. Signed notes open read-only.
func NewEditor(note Note, tpl schema.Template, user session.User, persister Persister, opts ...EditorOption) (*Editor, error) {
	if tpl.ID != note.Template || tpl.Version != note.TemplateVersion {
		return nil, fmt.Errorf("%w: note %d wants template %d v%d, got %d v%d",
			ErrTemplateMismatch, note.ID, note.Template, note.TemplateVersion, tpl.ID, tpl.Version)
	}
	e := &Editor{
		note:      note.Clone(),
		template:  tpl.Clone(),
		user:      user,
		persister: persister,
		notifier:  nopNotifier{},
		logger:    zerolog.Nop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	if note.LastAutosave != nil {
		e.lastSaved = *note.LastAutosave
	}
	f, err := e.newForm(note.Content)
	if err != nil {
		return nil, fmt.Errorf("notes: open note %d: %w", note.ID, err)
	}
	e.form = f
	return e, nil
}

// Open loads a note and its template record and returns an editor for it.
func Open(ctx context.Context, id int64, user session.User, persister Persister, templates TemplateLookup, opts ...EditorOption) (*Editor, error) {
	note, err := persister.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("notes: open note %d: %w", id, err)
	}
	tpl, err := templates.Get(ctx, note.Template)
	if err != nil {
		return nil, fmt.Errorf("notes: open note %d: %w", id, err)
	}
	return NewEditor(note, tpl, user, persister, opts...)
}

func (e *Editor) newForm(content map[string]any) (*form.Form, error) {
	opts := append([]form.Option{}, e.formOpts...)
	opts = append(opts, form.WithDisabled(e.note.IsSigned))
	return form.New(e.template.Structure, content, opts...)
}

// Note returns the note with the answers currently in the editor.
func (e *Editor) Note() Note {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := e.note.Clone()
	out.Content = e.form.Values()
	return out
}

// Template returns the template record the note is interpreted with.
func (e *Editor) Template() schema.Template {
	return e.template.Clone()
}

// Render returns the visual tree of the note's form.
func (e *Editor) Render() form.Tree {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.form.Render()
}

// Errors returns the field messages currently shown.
func (e *Editor) Errors() form.Errors {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.form.Errors()
}

// FormErrors returns backend messages that matched no field.
func (e *Editor) FormErrors() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.formErrors...)
}

// RenderOptions returns what an output renderer needs to draw the note.
func (e *Editor) RenderOptions() render.RenderOptions {
	e.mu.Lock()
	defer e.mu.Unlock()
	return render.RenderOptions{
		Title:       e.template.Name,
		Values:      e.form.Values(),
		Errors:      e.form.Errors(),
		FormErrors:  append([]string(nil), e.formErrors...),
		Disabled:    e.note.IsSigned,
		Hidden:      render.NoteHidden(e.template.ID, e.note.TemplateVersion),
		FormOptions: append([]form.Option(nil), e.formOpts...),
	}
}

// Dirty reports unsaved edits.
func (e *Editor) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirty
}

// LastSaved returns the time of the last successful save or autosave.
func (e *Editor) LastSaved() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastSaved
}

// LastSavedLabel formats LastSaved as "3:04 PM", empty before any save.
func (e *Editor) LastSavedLabel() string {
	saved := e.LastSaved()
	if saved.IsZero() {
		return ""
	}
	return saved.Format("3:04 PM")
}

// Apply delivers an edit event to the field at path.
func (e *Editor) Apply(path string, ev fields.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.note.IsSigned {
		return ErrSigned
	}
	if err := e.form.Apply(path, ev); err != nil {
		return err
	}
	e.dirty = true
	return nil
}

// Set replaces the value at path.
func (e *Editor) Set(path string, value any) error {
	return e.Apply(path, fields.SetValue{Value: value})
}

// Replace loads a whole answer map, as collected by a prompt session, and
// marks the note dirty.
func (e *Editor) Replace(answers map[string]any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.note.IsSigned {
		return ErrSigned
	}
	e.form.Load(answers)
	e.formErrors = nil
	e.dirty = true
	return nil
}

// Save validates the form and stores the answers. Invalid fields return
// ErrInvalid and keep their messages. A failed request is reported to the
// notifier once; local answers are kept either way.
func (e *Editor) Save(ctx context.Context) (Note, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.note.IsSigned {
		return Note{}, ErrSigned
	}
	if errs := e.form.Validate(); len(errs) > 0 {
		e.formErrors = nil
		return Note{}, fmt.Errorf("notes: save note %d: %w", e.note.ID, ErrInvalid)
	}
	if err := e.storeLocked(ctx); err != nil {
		e.fail(err, "Failed to save note")
		return Note{}, fmt.Errorf("notes: save note %d: %w", e.note.ID, err)
	}
	e.notifier.Success("Note saved")
	return e.snapshotLocked(), nil
}

func (e *Editor) storeLocked(ctx context.Context) error {
	updated, err := e.persister.Update(ctx, e.note.ID, e.form.Resolved())
	if err != nil {
		return err
	}
	e.adopt(updated)
	e.dirty = false
	e.lastSaved = e.now()
	e.formErrors = nil
	return nil
}

// Autosave stores the draft without validation when there are unsaved
// edits. It reports whether a save happened. Failures are logged, never
// shown to the user.
func (e *Editor) Autosave(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.note.IsSigned {
		return false, ErrSigned
	}
	if !e.dirty {
		return false, nil
	}
	saved, err := e.persister.Autosave(ctx, e.note.ID, e.form.Values())
	if err != nil {
		e.logger.Warn().Err(err).Int64("note", e.note.ID).Msg("autosave failed")
		return false, fmt.Errorf("notes: autosave note %d: %w", e.note.ID, err)
	}
	if saved.IsZero() {
		saved = e.now()
	}
	e.note.LastAutosave = &saved
	e.lastSaved = saved
	e.dirty = false
	e.logger.Debug().Int64("note", e.note.ID).Time("at", saved).Msg("autosaved")
	return true, nil
}

// RunAutosave calls Autosave every interval until ctx is done or the note
// is signed. A non-positive interval uses DefaultAutosaveInterval.
func (e *Editor) RunAutosave(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultAutosaveInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := e.Autosave(ctx); errors.Is(err, ErrSigned) {
				return
			}
		}
	}
}

// Sign validates the note, stores pending edits and signs it. Only the
// note's practitioner may sign. A signed note is read-only from then on.
func (e *Editor) Sign(ctx context.Context) (Note, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.note.IsSigned {
		return Note{}, ErrSigned
	}
	if e.user.ID != e.note.Practitioner {
		return Note{}, ErrNotAssigned
	}
	if errs := e.form.Validate(); len(errs) > 0 {
		return Note{}, fmt.Errorf("notes: sign note %d: %w", e.note.ID, ErrInvalid)
	}
	if e.dirty {
		if err := e.storeLocked(ctx); err != nil {
			e.fail(err, "Failed to save note")
			return Note{}, fmt.Errorf("notes: sign note %d: %w", e.note.ID, err)
		}
	}
	signed, err := e.persister.Sign(ctx, e.note.ID)
	if err != nil {
		e.fail(err, "Failed to sign note")
		return Note{}, fmt.Errorf("notes: sign note %d: %w", e.note.ID, err)
	}
	values := e.form.Values()
	e.adopt(signed)
	e.note.IsSigned = true
	frozen, err := e.newForm(values)
	if err != nil {
		return Note{}, fmt.Errorf("notes: sign note %d: %w", e.note.ID, err)
	}
	e.form = frozen
	e.notifier.Success("Note signed")
	e.logger.Info().Int64("note", e.note.ID).Int64("practitioner", e.user.ID).Msg("note signed")
	return e.snapshotLocked(), nil
}

// adopt takes the server's bookkeeping but keeps the local answers.
func (e *Editor) adopt(remote Note) {
	content := e.note.Content
	e.note = remote.Clone()
	e.note.Content = content
}

func (e *Editor) snapshotLocked() Note {
	out := e.note.Clone()
	out.Content = e.form.Values()
	return out
}

// fail shows one message for err and attaches any field messages it
// carries to the form.
func (e *Editor) fail(err error, fallback string) {
	message := fallback
	var um UserMessager
	if errors.As(err, &um) && um.UserMessage() != "" {
		message = um.UserMessage()
	}
	var fe FieldErrorer
	if errors.As(err, &fe) {
		mapping := render.MapErrorPayload(e.template.Structure, fe.FieldErrors())
		if len(mapping.Fields) > 0 {
			e.form.SetErrors(form.Errors(mapping.Fields))
		}
		e.formErrors = mapping.Form
	}
	e.logger.Error().Err(err).Int64("note", e.note.ID).Msg(fallback)
	e.notifier.Error(message)
}
