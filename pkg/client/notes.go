package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mespms/clinicalforms/pkg/notes"
)

// NoteService covers /clinical-templates/notes/.
type NoteService struct {
	client *Client
}

// AuditEntry is one record of a note's audit log. The backend does not
// fix its shape.
type AuditEntry map[string]any

func notePath(format string, args ...any) string {
	return templatesPrefix + "notes/" + fmt.Sprintf(format, args...)
}

type contentBody struct {
	Content map[string]any `json:"content"`
}

// List returns the notes matching q.
func (s *NoteService) List(ctx context.Context, q notes.Query) ([]notes.Note, error) {
	query := url.Values{}
	if q.Patient != nil {
		query.Set("patient", strconv.FormatInt(*q.Patient, 10))
	}
	if q.Practitioner != nil {
		query.Set("practitioner", strconv.FormatInt(*q.Practitioner, 10))
	}
	if q.IsSigned != nil {
		query.Set("is_signed", strconv.FormatBool(*q.IsSigned))
	}
	if q.IsDraft != nil {
		query.Set("is_draft", strconv.FormatBool(*q.IsDraft))
	}
	var raw json.RawMessage
	if err := s.client.do(ctx, http.MethodGet, notePath(""), query, nil, &raw); err != nil {
		return nil, err
	}
	out, err := decodeList[notes.Note](raw)
	if err != nil {
		return nil, fmt.Errorf("client: decode notes: %w", err)
	}
	return out, nil
}

// Get returns one note with its decrypted content.
func (s *NoteService) Get(ctx context.Context, id int64) (notes.Note, error) {
	var out notes.Note
	err := s.client.do(ctx, http.MethodGet, notePath("%d/", id), nil, nil, &out)
	return out, err
}

// Create validates req and stores a new draft note.
func (s *NoteService) Create(ctx context.Context, req notes.CreateRequest) (notes.Note, error) {
	if err := req.Validate(); err != nil {
		return notes.Note{}, err
	}
	var out notes.Note
	err := s.client.do(ctx, http.MethodPost, notePath(""), nil, req, &out)
	return out, err
}

// Update replaces a note's answer map.
func (s *NoteService) Update(ctx context.Context, id int64, content map[string]any) (notes.Note, error) {
	var out notes.Note
	err := s.client.do(ctx, http.MethodPatch, notePath("%d/", id), nil, contentBody{Content: content}, &out)
	return out, err
}

// Autosave stores a draft and returns the backend's autosave time.
func (s *NoteService) Autosave(ctx context.Context, id int64, content map[string]any) (time.Time, error) {
	var out struct {
		Detail       string     `json:"detail"`
		LastAutosave *time.Time `json:"last_autosave"`
	}
	if err := s.client.do(ctx, http.MethodPost, notePath("%d/autosave/", id), nil, contentBody{Content: content}, &out); err != nil {
		return time.Time{}, err
	}
	if out.LastAutosave == nil {
		return time.Time{}, nil
	}
	return *out.LastAutosave, nil
}

// Sign signs a note. Signed notes are immutable.
func (s *NoteService) Sign(ctx context.Context, id int64) (notes.Note, error) {
	var out notes.Note
	err := s.client.do(ctx, http.MethodPost, notePath("%d/sign/", id), nil, nil, &out)
	return out, err
}

// AuditLog returns the audit entries of a note.
func (s *NoteService) AuditLog(ctx context.Context, id int64) ([]AuditEntry, error) {
	var raw json.RawMessage
	if err := s.client.do(ctx, http.MethodGet, notePath("%d/audit_log/", id), nil, nil, &raw); err != nil {
		return nil, err
	}
	out, err := decodeList[AuditEntry](raw)
	if err != nil {
		return nil, fmt.Errorf("client: decode audit log: %w", err)
	}
	return out, nil
}

var (
	_ notes.Persister      = (*NoteService)(nil)
	_ notes.TemplateLookup = (*TemplateService)(nil)
)
