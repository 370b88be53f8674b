package notes_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mespms/clinicalforms/pkg/catalog"
	"github.com/mespms/clinicalforms/pkg/fields"
	"github.com/mespms/clinicalforms/pkg/format"
	"github.com/mespms/clinicalforms/pkg/notes"
	"github.com/mespms/clinicalforms/pkg/schema"
	"github.com/mespms/clinicalforms/pkg/session"
	"github.com/mespms/clinicalforms/pkg/testsupport"
)

var (
	admin        = session.User{ID: 1, FirstName: "Ana", Role: session.RoleAdmin}
	practitioner = session.User{ID: 2, FirstName: "Ben", Role: session.RolePractitioner}
	staff        = session.User{ID: 3, FirstName: "Cy", Role: session.RoleStaff}
	fixedNow     = time.Date(2026, 3, 5, 14, 5, 0, 0, time.UTC)
)

type recorder struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (r *recorder) Success(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.successes = append(r.successes, msg)
}

func (r *recorder) Error(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, msg)
}

type fixture struct {
	store     *catalog.MemoryStore
	persister *notes.MemoryPersister
	template  schema.Template
	note      notes.Note
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	clock := func() time.Time { return fixedNow }
	store := catalog.NewMemoryStore(catalog.WithClock(clock))
	tpl, err := store.Create(ctx, admin, schema.Template{
		Name:      "Knee Intake",
		Category:  schema.CategoryInitial,
		Structure: testsupport.IntakeStructure(),
	})
	require.NoError(t, err)

	persister := notes.NewMemoryPersister(store, notes.WithMemoryClock(clock))
	note, err := persister.Create(ctx, notes.CreateRequest{
		Patient:      10,
		Practitioner: practitioner.ID,
		Template:     tpl.ID,
		Date:         "2026-03-05",
		Content:      map[string]any{},
	})
	require.NoError(t, err)
	return fixture{store: store, persister: persister, template: tpl, note: note}
}

func (fx fixture) editor(t *testing.T, user session.User, opts ...notes.EditorOption) *notes.Editor {
	t.Helper()
	opts = append([]notes.EditorOption{notes.WithEditorClock(func() time.Time { return fixedNow })}, opts...)
	e, err := notes.Open(context.Background(), fx.note.ID, user, fx.persister, fx.store, opts...)
	require.NoError(t, err)
	return e
}

func fillRequired(t *testing.T, e *notes.Editor) {
	t.Helper()
	require.NoError(t, e.Set("chief_complaint", "Knee pain"))
	require.NoError(t, e.Apply("pain_level", fields.SelectStep{Step: 4}))
	require.NoError(t, e.Set("consent", true))
}

func TestCreateRequest_Validate(t *testing.T) {
	ok := notes.CreateRequest{Patient: 1, Practitioner: 2, Template: 3, Date: "2026-03-05", Content: map[string]any{}}
	require.NoError(t, ok.Validate())

	bad := notes.CreateRequest{Practitioner: 2, Template: 3, Date: "05/03/2026", Content: map[string]any{}}
	err := bad.Validate()
	require.Error(t, err)
	require.Equal(t, map[string][]string{
		"patient": {"This field is required."},
		"date":    {"Enter a valid date."},
	}, format.FieldErrors(err))
}

func TestNote_DecodesDecryptedContent(t *testing.T) {
	raw := `{"id":7,"template":3,"template_version":2,"date":"2026-03-05","is_draft":true,
		"decrypted_content":{"chief_complaint":"Knee pain"},"content":null}`
	var n notes.Note
	require.NoError(t, json.Unmarshal([]byte(raw), &n))
	require.Equal(t, int64(7), n.ID)
	require.Equal(t, 2, n.TemplateVersion)
	require.Equal(t, map[string]any{"chief_complaint": "Knee pain"}, n.Content)
	require.Equal(t, "Draft", n.Status())
	require.Equal(t, "Mar 05, 2026", n.DisplayDate())
}

func TestPersister_FreezesTemplateVersion(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	require.Equal(t, 1, fx.note.TemplateVersion)
	require.True(t, fx.note.IsDraft)

	draft, err := catalog.SeedVersion(fx.template)
	require.NoError(t, err)
	draft.Structure.Sections = draft.Structure.Sections[:1]
	v2, err := fx.store.CreateVersion(ctx, admin, draft)
	require.NoError(t, err)
	require.Equal(t, 2, v2.Version)

	// the old note still opens against the version it was written with
	e := fx.editor(t, practitioner)
	require.Equal(t, 1, e.Template().Version)
	require.Len(t, e.Render().Sections, 2)

	_, err = notes.NewEditor(fx.note, v2, practitioner, fx.persister)
	require.ErrorIs(t, err, notes.ErrTemplateMismatch)

	newer, err := fx.persister.Create(ctx, notes.CreateRequest{
		Patient: 10, Practitioner: practitioner.ID, Template: v2.ID, Date: "2026-03-06", Content: map[string]any{},
	})
	require.NoError(t, err)
	require.Equal(t, 2, newer.TemplateVersion)

	_, err = fx.store.Archive(ctx, admin, v2.ID)
	require.NoError(t, err)
	_, err = fx.persister.Create(ctx, notes.CreateRequest{
		Patient: 10, Practitioner: practitioner.ID, Template: v2.ID, Date: "2026-03-06", Content: map[string]any{},
	})
	require.ErrorIs(t, err, catalog.ErrArchived)
}

func TestPersister_ListFilters(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	other := int64(99)
	_, err := fx.persister.Create(ctx, notes.CreateRequest{
		Patient: other, Practitioner: practitioner.ID, Template: fx.template.ID, Date: "2026-03-06", Content: map[string]any{},
	})
	require.NoError(t, err)

	all, err := fx.persister.List(ctx, notes.Query{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, int64(2), all[0].ID)

	mine, err := fx.persister.List(ctx, notes.Query{Patient: &other})
	require.NoError(t, err)
	require.Len(t, mine, 1)

	signed := true
	none, err := fx.persister.List(ctx, notes.Query{IsSigned: &signed})
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestEditor_SaveValidatesFirst(t *testing.T) {
	fx := newFixture(t)
	rec := &recorder{}
	e := fx.editor(t, practitioner, notes.WithNotifier(rec))
	ctx := context.Background()

	_, err := e.Save(ctx)
	require.ErrorIs(t, err, notes.ErrInvalid)
	require.Equal(t, []string{"chief_complaint", "consent", "pain_level"}, e.Errors().Paths())
	require.Empty(t, rec.successes)
	require.Empty(t, rec.errors)

	fillRequired(t, e)
	require.True(t, e.Dirty())
	saved, err := e.Save(ctx)
	require.NoError(t, err)
	require.False(t, e.Dirty())
	require.Equal(t, "Knee pain", saved.Content["chief_complaint"])
	require.Equal(t, []string{"Note saved"}, rec.successes)
	require.Equal(t, "2:05 PM", e.LastSavedLabel())

	stored, err := fx.persister.Get(ctx, fx.note.ID)
	require.NoError(t, err)
	require.Equal(t, "Knee pain", stored.Content["chief_complaint"])
	require.Equal(t, 4, stored.Content["pain_level"])
	require.Contains(t, stored.Content, "vitals")
}

func TestEditor_Autosave(t *testing.T) {
	fx := newFixture(t)
	rec := &recorder{}
	e := fx.editor(t, practitioner, notes.WithNotifier(rec))
	ctx := context.Background()

	saved, err := e.Autosave(ctx)
	require.NoError(t, err)
	require.False(t, saved)

	// drafts autosave without validation
	require.NoError(t, e.Set("history", "Fell on stairs"))
	saved, err = e.Autosave(ctx)
	require.NoError(t, err)
	require.True(t, saved)
	require.False(t, e.Dirty())
	require.Equal(t, fixedNow, e.LastSaved())
	require.Empty(t, rec.successes)

	stored, err := fx.persister.Get(ctx, fx.note.ID)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"history": "Fell on stairs"}, stored.Content)
	require.NotNil(t, stored.LastAutosave)
}

func TestEditor_RunAutosave(t *testing.T) {
	fx := newFixture(t)
	e := fx.editor(t, practitioner)
	require.NoError(t, e.Set("history", "Fell"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e.RunAutosave(ctx, 5*time.Millisecond)
		close(done)
	}()
	require.Eventually(t, func() bool { return !e.Dirty() }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

type failingPersister struct {
	notes.Persister
	err error
}

func (p failingPersister) Update(context.Context, int64, map[string]any) (notes.Note, error) {
	return notes.Note{}, p.err
}

func (p failingPersister) Autosave(context.Context, int64, map[string]any) (time.Time, error) {
	return time.Time{}, p.err
}

type rejection struct {
	fields map[string][]string
}

func (r rejection) Error() string                    { return "400 Bad Request" }
func (r rejection) FieldErrors() map[string][]string { return r.fields }
func (r rejection) UserMessage() string              { return r.fields["detail"][0] }

func TestEditor_SaveFailureKeepsLocalState(t *testing.T) {
	fx := newFixture(t)
	rec := &recorder{}
	bad := rejection{fields: map[string][]string{
		"content.chief_complaint": {"Too short"},
		"date":                    {"Date is in the future"},
		"detail":                  {"Please fix the errors below"},
	}}
	e, err := notes.NewEditor(fx.note, fx.template, practitioner,
		failingPersister{Persister: fx.persister, err: bad}, notes.WithNotifier(rec))
	require.NoError(t, err)
	fillRequired(t, e)

	_, err = e.Save(context.Background())
	require.Error(t, err)
	require.Equal(t, []string{"Please fix the errors below"}, rec.errors)
	require.Equal(t, []string{"Too short"}, e.Errors()["chief_complaint"])
	require.ElementsMatch(t, []string{"Date is in the future", "Please fix the errors below"}, e.FormErrors())
	require.True(t, e.Dirty())
	require.Equal(t, "Knee pain", e.Note().Content["chief_complaint"])
}

func TestEditor_AutosaveFailureIsSilent(t *testing.T) {
	fx := newFixture(t)
	rec := &recorder{}
	e, err := notes.NewEditor(fx.note, fx.template, practitioner,
		failingPersister{Persister: fx.persister, err: errors.New("offline")}, notes.WithNotifier(rec))
	require.NoError(t, err)
	require.NoError(t, e.Set("history", "x"))

	saved, err := e.Autosave(context.Background())
	require.Error(t, err)
	require.False(t, saved)
	require.True(t, e.Dirty())
	require.Empty(t, rec.errors)
}

func TestEditor_SaveFailureUsesFallbackMessage(t *testing.T) {
	fx := newFixture(t)
	rec := &recorder{}
	e, err := notes.NewEditor(fx.note, fx.template, practitioner,
		failingPersister{Persister: fx.persister, err: errors.New("connection reset")}, notes.WithNotifier(rec))
	require.NoError(t, err)
	fillRequired(t, e)

	_, err = e.Save(context.Background())
	require.Error(t, err)
	require.Equal(t, []string{"Failed to save note"}, rec.errors)
	require.Empty(t, e.FormErrors())
}

func TestEditor_Sign(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	other := fx.editor(t, staff)
	fillRequired(t, other)
	_, err := other.Sign(ctx)
	require.ErrorIs(t, err, notes.ErrNotAssigned)

	rec := &recorder{}
	e := fx.editor(t, practitioner, notes.WithNotifier(rec))
	_, err = e.Sign(ctx)
	require.ErrorIs(t, err, notes.ErrInvalid)

	fillRequired(t, e)
	signed, err := e.Sign(ctx)
	require.NoError(t, err)
	require.True(t, signed.IsSigned)
	require.False(t, signed.IsDraft)
	require.NotNil(t, signed.SignedAt)
	require.Equal(t, "Knee pain", signed.Content["chief_complaint"])
	require.Equal(t, []string{"Note signed"}, rec.successes)

	require.ErrorIs(t, e.Set("history", "late edit"), notes.ErrSigned)
	_, err = e.Save(ctx)
	require.ErrorIs(t, err, notes.ErrSigned)
	_, err = e.Autosave(ctx)
	require.ErrorIs(t, err, notes.ErrSigned)
	_, err = e.Sign(ctx)
	require.ErrorIs(t, err, notes.ErrSigned)

	opts := e.RenderOptions()
	require.True(t, opts.Disabled)
	require.Equal(t, "1", opts.Hidden["template_version"])

	_, err = fx.persister.Update(ctx, fx.note.ID, map[string]any{})
	require.ErrorIs(t, err, notes.ErrSigned)

	// reopening a signed note gives a read-only form
	reopened := fx.editor(t, practitioner)
	require.ErrorIs(t, reopened.Set("history", "x"), notes.ErrSigned)
	require.True(t, reopened.RenderOptions().Disabled)
}

func TestEditor_Replace(t *testing.T) {
	fx := newFixture(t)
	e := fx.editor(t, practitioner)

	require.NoError(t, e.Replace(map[string]any{
		"chief_complaint": "Hip pain",
		"pain_level":      2,
		"consent":         true,
		"vitals":          map[string]any{"hr": "70"},
	}))
	require.True(t, e.Dirty())
	saved, err := e.Save(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Hip pain", saved.Content["chief_complaint"])
	require.Equal(t, map[string]any{"hr": "70"}, saved.Content["vitals"])
}
