package services

import (
	"errors"
	"strings"

	"github.com/unischedule/dashboard/internal/core/domain"
)

var (
	ErrMutationInFlight     = errors.New("another change is still being saved")
	ErrDraftClosed          = errors.New("draft is closed")
	ErrNoTarget             = errors.New("no record selected")
	ErrGateClosed           = errors.New("confirmation is not open")
	ErrConfirmationMismatch = errors.New("confirmation text does not match")
	ErrUnknownFilter        = errors.New("unknown filter field")
	ErrReadOnly             = errors.New("collection is read only")
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

type ValidationError struct {
	Fields []FieldError
}

func (err *ValidationError) Error() string {
	msgs := make([]string, 0, len(err.Fields))
	for _, f := range err.Fields {
		msgs = append(msgs, f.Error)
	}
	return strings.Join(msgs, "; ")
}

// userMessager is implemented by adapter errors that carry a message fit
// for display, such as the backend's own error text.
type userMessager interface {
	UserMessage() string
}

// UserMessage converts err into the single line shown in a banner or on the
// command line.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	var um userMessager
	if errors.As(err, &um) {
		if msg := um.UserMessage(); msg != "" {
			return msg
		}
	}
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return "your session has expired, please sign in again"
	case errors.Is(err, domain.ErrNotFound):
		return "record not found"
	case errors.Is(err, domain.ErrUnexpectedShape):
		return "unexpected response from server"
	case errors.Is(err, ErrMutationInFlight),
		errors.Is(err, ErrConfirmationMismatch),
		errors.Is(err, ErrGateClosed),
		errors.Is(err, ErrNoTarget),
		errors.Is(err, ErrDraftClosed),
		errors.Is(err, ErrUnknownFilter),
		errors.Is(err, ErrReadOnly):
		return err.Error()
	}
	return "request failed"
}
