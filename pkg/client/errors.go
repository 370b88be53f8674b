package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/mespms/clinicalforms/pkg/render"
)

// StatusError is a non-2xx response. Fields holds the decoded error body
// flattened to dotted keys; a DRF "detail" message is also in Detail.
type StatusError struct {
	Method string
	Path   string
	Status int
	Detail string
	Fields map[string][]string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("client: %s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// FieldErrors returns the error payload for mapping onto form fields.
func (e *StatusError) FieldErrors() map[string][]string {
	return e.Fields
}

// UserMessage returns the backend's detail message, if any.
func (e *StatusError) UserMessage() string {
	return e.Detail
}

const maxDetail = 200

func newStatusError(method, path string, status int, body []byte) *StatusError {
	e := &StatusError{Method: method, Path: path, Status: status}
	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err == nil {
		e.Fields = render.FlattenPayload(decoded)
		if detail := e.Fields["detail"]; len(detail) > 0 {
			e.Detail = detail[0]
		}
		return e
	}
	text := strings.TrimSpace(string(body))
	if len(text) > maxDetail {
		text = text[:maxDetail]
	}
	e.Detail = text
	return e
}
