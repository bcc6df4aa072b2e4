package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/unischedule/dashboard/internal/core/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, creds Credentials, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL+"/", creds, opts...)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return c
}

func TestNewClient_Validation(t *testing.T) {
	if _, err := NewClient("http://localhost:8000", nil); err == nil {
		t.Error("expected an error without credentials")
	}
	if _, err := NewClient("localhost:8000/api", Anonymous()); err == nil {
		t.Error("expected an error for a relative base url")
	}
}

func TestClient_SendsBearerToken(t *testing.T) {
	var gotAuth, gotPath, gotRequestID string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotRequestID = r.Header.Get("X-Request-ID")
		w.WriteHeader(http.StatusOK)
	}, StaticToken("secret-token"))

	if err := c.Health(context.Background()); err != nil {
		t.Fatalf("Health() error = %v", err)
	}
	if gotAuth != "Bearer secret-token" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotPath != "/api/health" {
		t.Errorf("path = %q", gotPath)
	}
	if gotRequestID == "" {
		t.Error("expected an X-Request-ID header")
	}
}

func TestClient_AnonymousSendsNoHeader(t *testing.T) {
	var seen bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, seen = r.Header["Authorization"]
	}, Anonymous())

	_ = c.Health(context.Background())
	if seen {
		t.Error("anonymous requests must not carry an Authorization header")
	}
}

func TestClient_MissingTokenNeverCallsBackend(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}, StaticToken(""))

	err := c.Health(context.Background())
	if !errors.Is(err, ErrMissingToken) || !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("Health() error = %v", err)
	}
	if calls.Load() != 0 {
		t.Errorf("backend was called %d times", calls.Load())
	}
}

func TestClient_ErrorResponses(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
		wantMessage string
		wantIs      error
	}{
		{name: "json message", status: http.StatusBadRequest, contentType: "application/json", body: `{"message":"Room already booked"}`, wantMessage: "Room already booked"},
		{name: "json error field", status: http.StatusConflict, contentType: "application/json", body: `{"error":"duplicate code"}`, wantMessage: "duplicate code"},
		{name: "unauthorized", status: http.StatusUnauthorized, contentType: "application/json", body: `{}`, wantIs: domain.ErrUnauthorized},
		{name: "not found", status: http.StatusNotFound, contentType: "text/plain", body: "no such event", wantMessage: "no such event", wantIs: domain.ErrNotFound},
		{name: "html page", status: http.StatusBadGateway, contentType: "text/html", body: "<html>bad gateway</html>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}, Anonymous())

			err := c.Health(context.Background())

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %v", err)
			}
			if apiErr.Status != tt.status || apiErr.Message != tt.wantMessage {
				t.Errorf("APIError = %+v", apiErr)
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("expected error to match %v", tt.wantIs)
			}
		})
	}
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewClient(url, Anonymous())
	if err != nil {
		t.Fatal(err)
	}
	err = c.Health(context.Background())

	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("expected *TransportError, got %v", err)
	}
	if terr.UserMessage() != "could not reach the scheduling service" {
		t.Errorf("UserMessage() = %q", terr.UserMessage())
	}
}

func TestClient_ClientErrorsDoNotTripBreaker(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}, Anonymous())

	for i := 0; i < 5; i++ {
		_ = c.Health(context.Background())
	}
	if calls.Load() != 5 {
		t.Errorf("expected every request to reach the backend, got %d", calls.Load())
	}
}

func TestClient_ServerErrorsTripBreaker(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}, Anonymous())

	for i := 0; i < 5; i++ {
		_ = c.Health(context.Background())
	}
	if calls.Load() != 3 {
		t.Errorf("expected the breaker to open after 3 failures, backend saw %d calls", calls.Load())
	}
}

func TestClient_RecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}, Anonymous(), WithMetrics(NewMetrics(reg)))

	_ = c.Health(context.Background())

	expected := `
# HELP dashboard_backend_requests_total Scheduling API requests by resource, method and status code.
# TYPE dashboard_backend_requests_total counter
dashboard_backend_requests_total{code="200",method="GET",resource="health"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "dashboard_backend_requests_total"); err != nil {
		t.Error(err)
	}
}

func TestClient_SendsJSONBody(t *testing.T) {
	var got domain.Event
	var contentType string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":5,"title":"Exam"}`)
	}, Anonymous())

	var out domain.Event
	if err := c.do(context.Background(), http.MethodPost, "events", domain.Event{Title: "Exam"}, &out); err != nil {
		t.Fatal(err)
	}
	if contentType != "application/json" || got.Title != "Exam" {
		t.Errorf("request content-type=%q body=%+v", contentType, got)
	}
	if out.ID.String() != "5" {
		t.Errorf("decoded id = %q", out.ID)
	}
}
