package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/unischedule/dashboard/internal/core/domain"
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("rest: %s %s returned %d", e.Method, e.Path, e.Status)
	}
	return fmt.Sprintf("rest: %s %s returned %d: %s", e.Method, e.Path, e.Status, e.Message)
}

// UserMessage is the backend-provided message, if any.
func (e *APIError) UserMessage() string { return e.Message }

func (e *APIError) Is(target error) bool {
	switch target {
	case domain.ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case domain.ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// TransportError means the request never produced a response.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("rest: %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) UserMessage() string {
	return "could not reach the scheduling service"
}

const maxPlainMessage = 200

// errorMessage pulls a human readable message out of an error body: the
// "message" or "error" field of a JSON object, or short plain text.
func errorMessage(contentType string, body []byte) string {
	if strings.Contains(contentType, "json") {
		var payload struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return ""
		}
		if payload.Message != "" {
			return payload.Message
		}
		return payload.Error
	}
	text := strings.TrimSpace(string(body))
	if len(text) > maxPlainMessage || strings.HasPrefix(text, "<") {
		return ""
	}
	return text
}
