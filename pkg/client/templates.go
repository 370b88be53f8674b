package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mespms/clinicalforms/pkg/schema"
)

// TemplateService covers /clinical-templates/templates/.
type TemplateService struct {
	client *Client
}

// TemplateInput is the writable part of a template record.
type TemplateInput struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Category    schema.Category  `json:"category"`
	Structure   schema.Structure `json:"structure"`
}

// TemplatePatch updates some attributes of a template. Nil fields are left
// unchanged. The backend only accepts flag changes on saved versions;
// structure edits go through CreateVersion.
type TemplatePatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

func templatePath(format string, args ...any) string {
	return templatesPrefix + "templates/" + fmt.Sprintf(format, args...)
}

// List returns every template visible to the user.
func (s *TemplateService) List(ctx context.Context) ([]schema.Template, error) {
	var raw json.RawMessage
	if err := s.client.do(ctx, http.MethodGet, templatePath(""), nil, nil, &raw); err != nil {
		return nil, err
	}
	out, err := decodeList[schema.Template](raw)
	if err != nil {
		return nil, fmt.Errorf("client: decode templates: %w", err)
	}
	return out, nil
}

// Active returns the active templates offered when starting a note.
func (s *TemplateService) Active(ctx context.Context) ([]schema.Template, error) {
	var raw json.RawMessage
	if err := s.client.do(ctx, http.MethodGet, templatePath("active/"), nil, nil, &raw); err != nil {
		return nil, err
	}
	out, err := decodeList[schema.Template](raw)
	if err != nil {
		return nil, fmt.Errorf("client: decode active templates: %w", err)
	}
	return out, nil
}

// Get returns one template record.
func (s *TemplateService) Get(ctx context.Context, id int64) (schema.Template, error) {
	var out schema.Template
	err := s.client.do(ctx, http.MethodGet, templatePath("%d/", id), nil, nil, &out)
	return out, err
}

// Create stores a new template. The structure is checked locally first so
// a broken template never reaches the backend.
func (s *TemplateService) Create(ctx context.Context, in TemplateInput) (schema.Template, error) {
	if err := schema.Check(in.Structure); err != nil {
		return schema.Template{}, fmt.Errorf("client: create template: %w", err)
	}
	var out schema.Template
	err := s.client.do(ctx, http.MethodPost, templatePath(""), nil, in, &out)
	return out, err
}

// Update patches a template.
func (s *TemplateService) Update(ctx context.Context, id int64, patch TemplatePatch) (schema.Template, error) {
	var out schema.Template
	err := s.client.do(ctx, http.MethodPatch, templatePath("%d/", id), nil, patch, &out)
	return out, err
}

// Archive archives a template. Archiving is one-way.
func (s *TemplateService) Archive(ctx context.Context, id int64) (schema.Template, error) {
	var out schema.Template
	err := s.client.do(ctx, http.MethodPost, templatePath("%d/archive/", id), nil, nil, &out)
	return out, err
}

// CreateVersion asks the backend to copy a template into a new version of
// its lineage and returns the new record.
func (s *TemplateService) CreateVersion(ctx context.Context, id int64) (schema.Template, error) {
	var out schema.Template
	err := s.client.do(ctx, http.MethodPost, templatePath("%d/create_version/", id), nil, nil, &out)
	return out, err
}
