package domain

import (
	"encoding/json"
	"testing"
)

func TestID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name        string
		in          string
		want        string
		wantNumeric bool
		wantErr     bool
	}{
		{name: "string", in: `"evt-7"`, want: "evt-7"},
		{name: "numeric string", in: `"42"`, want: "42"},
		{name: "number", in: `42`, want: "42", wantNumeric: true},
		{name: "null", in: `null`, want: ""},
		{name: "bool", in: `true`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id ID
			err := json.Unmarshal([]byte(tt.in), &id)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal(%s) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if id.String() != tt.want || id.Numeric() != tt.wantNumeric {
				t.Errorf("Unmarshal(%s) = %q numeric=%v, want %q numeric=%v", tt.in, id, id.Numeric(), tt.want, tt.wantNumeric)
			}
		})
	}
}

func TestID_MarshalKeepsBackendType(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "number", in: `{"id":42}`, want: `42`},
		{name: "numeric string", in: `{"id":"42"}`, want: `"42"`},
		{name: "leading zeros", in: `{"id":"007"}`, want: `"007"`},
		{name: "sign", in: `{"id":"+5"}`, want: `"+5"`},
		{name: "text", in: `{"id":"a1"}`, want: `"a1"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var evt Event
			if err := json.Unmarshal([]byte(tt.in), &evt); err != nil {
				t.Fatal(err)
			}
			b, err := json.Marshal(evt)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			var raw map[string]json.RawMessage
			if err := json.Unmarshal(b, &raw); err != nil {
				t.Fatal(err)
			}
			if string(raw["id"]) != tt.want {
				t.Errorf("id written as %s, want %s", raw["id"], tt.want)
			}
		})
	}

	for _, id := range []ID{NewID("007"), NewID("+5"), IntID(12)} {
		if _, err := json.Marshal(Event{ID: id}); err != nil {
			t.Errorf("Marshal(%q) error = %v", id, err)
		}
	}

	b, _ := json.Marshal(Event{Title: "draft"})
	var raw map[string]any
	_ = json.Unmarshal(b, &raw)
	if _, ok := raw["id"]; ok {
		t.Error("draft should not carry an id")
	}
}

func TestID_EqualIgnoresKind(t *testing.T) {
	if !IntID(42).Equal(NewID("42")) {
		t.Error("numeric 42 should match path id \"42\"")
	}
	if NewID("42").Equal(NewID("042")) {
		t.Error("distinct values should not match")
	}
}

func TestParseDate(t *testing.T) {
	for _, s := range []string{"2024-03-20", "2024-03-20T09:30", "2024-03-20T09:30:15", "2024-03-20T09:30:15Z"} {
		if _, err := ParseDate(s); err != nil {
			t.Errorf("ParseDate(%q) error = %v", s, err)
		}
	}
	for _, s := range []string{"", "20/03/2024", "tomorrow"} {
		if _, err := ParseDate(s); err == nil {
			t.Errorf("ParseDate(%q) expected error", s)
		}
	}
}
