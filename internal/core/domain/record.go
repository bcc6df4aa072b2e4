package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ID is a server-assigned record identity. The backend hands out either
// strings or integers; an ID remembers which so it is written back the
// same way. Drafts have the zero ID.
type ID struct {
	value   string
	numeric bool
}

// NewID returns a string identity, e.g. one taken from a URL path.
func NewID(s string) ID { return ID{value: s} }

// IntID returns a numeric identity.
func IntID(n int64) ID { return ID{value: strconv.FormatInt(n, 10), numeric: true} }

func (id ID) String() string { return id.value }

// IsZero reports whether the record has not been persisted yet.
func (id ID) IsZero() bool { return id.value == "" }

// Numeric reports whether the backend sent the identity as a JSON number.
func (id ID) Numeric() bool { return id.numeric }

// Equal compares identities by value, so a numeric 42 from the backend
// matches "42" from a path.
func (id ID) Equal(other ID) bool { return id.value == other.value }

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ID{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = NewID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("domain: invalid id %s", b)
	}
	*id = ID{value: n.String(), numeric: true}
	return nil
}

func (id ID) MarshalJSON() ([]byte, error) {
	if id.numeric && json.Valid([]byte(id.value)) {
		return []byte(id.value), nil
	}
	return json.Marshal(id.value)
}

// Record is implemented by every entity a list page manages.
type Record interface {
	RecordID() ID
}

// Layouts accepted for the ISO-ish date and time strings the backend returns.
var DateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// ParseDate parses s with the first matching layout in DateLayouts.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("domain: unrecognised date %q", s)
}
