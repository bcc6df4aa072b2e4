package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/unischedule/dashboard/internal/adapters/cache"
	"github.com/unischedule/dashboard/internal/core/domain"
	"github.com/unischedule/dashboard/internal/core/services"
	"github.com/unischedule/dashboard/test/mocks"
)

var errNetwork = errors.New("dial tcp: connection refused")

type fixture struct {
	repo     *mocks.MockCollectionRepository[domain.Event]
	probe    *mocks.MockHealthProbe
	redis    *mocks.MockRedisClient
	recorder *mocks.MockChangeRecorder
	manager  *services.Manager[domain.Event]
}

func newFixture(t *testing.T, mode services.FallbackMode) *fixture {
	t.Helper()
	f := &fixture{
		repo:     mocks.NewMockCollectionRepository(mocks.AcademicEvents()...),
		probe:    &mocks.MockHealthProbe{},
		redis:    mocks.NewMockRedisClient(),
		recorder: &mocks.MockChangeRecorder{},
	}
	seq := 100
	f.repo.CreateFunc = func(e domain.Event) domain.Event {
		seq++
		e.ID = domain.NewID(fmt.Sprint(seq))
		return e
	}
	f.manager = services.NewManager(services.EventSchema, f.repo, services.Options{
		Fallback: mode,
		Cache:    cache.NewRedisSnapshotCache(f.redis, time.Minute),
		Probe:    f.probe,
		Recorder: f.recorder,
	})
	return f
}

func TestManager_Load(t *testing.T) {
	f := newFixture(t, services.FallbackNone)

	if err := f.manager.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := len(f.manager.Items()); got != 5 {
		t.Errorf("expected 5 items, got %d", got)
	}
	if f.manager.Stale() || f.manager.Loading() || f.manager.Err() != nil {
		t.Errorf("unexpected state: stale=%v loading=%v err=%v", f.manager.Stale(), f.manager.Loading(), f.manager.Err())
	}
	if !f.redis.HasKey("dashboard:snapshot:events") {
		t.Error("expected a snapshot to be saved")
	}
}

func TestManager_LoadUnexpectedShapeClearsCollection(t *testing.T) {
	f := newFixture(t, services.FallbackSnapshot)
	ctx := context.Background()
	_ = f.manager.Load(ctx)

	f.repo.ListError = fmt.Errorf("%w: not an array", domain.ErrUnexpectedShape)
	f.probe.Err = errNetwork
	err := f.manager.Load(ctx)

	if !errors.Is(err, domain.ErrUnexpectedShape) {
		t.Fatalf("Load() error = %v", err)
	}
	if len(f.manager.Items()) != 0 {
		t.Errorf("expected empty collection, got %d", len(f.manager.Items()))
	}
	if f.manager.Stale() {
		t.Error("shape errors never serve stale data")
	}
	view, _ := f.manager.View("", nil)
	if view.Error != "unexpected response from server" {
		t.Errorf("view error = %q", view.Error)
	}
}

func TestManager_LoadFailureKeepsPreviousItems(t *testing.T) {
	f := newFixture(t, services.FallbackNone)
	ctx := context.Background()
	_ = f.manager.Load(ctx)

	f.repo.ListError = errNetwork
	if err := f.manager.Load(ctx); err == nil {
		t.Fatal("expected an error")
	}

	if len(f.manager.Items()) != 5 || !f.manager.Stale() {
		t.Errorf("items=%d stale=%v, want previous items marked stale", len(f.manager.Items()), f.manager.Stale())
	}
}

func TestManager_Fallback(t *testing.T) {
	snapshot := `[{"id":7,"title":"Cached","type":"academic"}]`

	tests := []struct {
		name      string
		mode      services.FallbackMode
		listErr   error
		probeErr  error
		wantItems int
		wantStale bool
	}{
		{name: "snapshot when backend is down", mode: services.FallbackSnapshot, listErr: errNetwork, probeErr: errNetwork, wantItems: 1, wantStale: true},
		{name: "no snapshot when backend is healthy", mode: services.FallbackSnapshot, listErr: errNetwork},
		{name: "no snapshot on unauthorized", mode: services.FallbackSnapshot, listErr: domain.ErrUnauthorized, probeErr: errNetwork},
		{name: "disabled", mode: services.FallbackNone, listErr: errNetwork, probeErr: errNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.mode)
			f.redis.Put("dashboard:snapshot:events", snapshot, 0)
			f.repo.ListError = tt.listErr
			f.probe.Err = tt.probeErr

			err := f.manager.Load(context.Background())

			if !errors.Is(err, tt.listErr) {
				t.Fatalf("Load() error = %v, want %v", err, tt.listErr)
			}
			items := f.manager.Items()
			if len(items) != tt.wantItems {
				t.Fatalf("expected %d items, got %d", tt.wantItems, len(items))
			}
			if tt.wantItems > 0 && items[0].ID.String() != "7" {
				t.Errorf("unexpected item %+v", items[0])
			}
			if f.manager.Stale() != tt.wantStale {
				t.Errorf("Stale() = %v, want %v", f.manager.Stale(), tt.wantStale)
			}
		})
	}
}

func TestManager_FallbackIsCounted(t *testing.T) {
	reg := prometheus.NewRegistry()
	redis := mocks.NewMockRedisClient()
	redis.Put("dashboard:snapshot:events", `[]`, 0)
	repo := mocks.NewMockCollectionRepository[domain.Event]()
	repo.ListError = errNetwork
	metrics := services.NewMetrics(reg)

	m := services.NewManager(services.EventSchema, repo, services.Options{
		Fallback: services.FallbackSnapshot,
		Cache:    cache.NewRedisSnapshotCache(redis, time.Minute),
		Probe:    &mocks.MockHealthProbe{Err: errNetwork},
		Metrics:  metrics,
	})
	_ = m.Load(context.Background())

	expected := `
# HELP dashboard_snapshot_fallbacks_total Collections served from the snapshot cache after a failed fetch.
# TYPE dashboard_snapshot_fallbacks_total counter
dashboard_snapshot_fallbacks_total{resource="events"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "dashboard_snapshot_fallbacks_total"); err != nil {
		t.Error(err)
	}
}

func TestManager_SubmitInvalidDraftMakesNoCall(t *testing.T) {
	f := newFixture(t, services.FallbackNone)

	d := f.manager.OpenCreate()
	d.Record = domain.Event{Title: "Missing everything"}
	_, err := f.manager.Submit(context.Background(), d)

	var verr *services.ValidationError
	if !errors.As(err, &verr) || len(verr.Fields) == 0 {
		t.Fatalf("expected validation error, got %v", err)
	}
	if f.repo.Calls() != 0 {
		t.Errorf("expected no backend calls, got %d", f.repo.Calls())
	}
	if d.Closed() {
		t.Error("draft should stay open after a validation failure")
	}
}

func TestManager_CreateRefetches(t *testing.T) {
	f := newFixture(t, services.FallbackNone)
	ctx := context.Background()
	_ = f.manager.Load(ctx)
	listCalls := f.repo.ListCalls

	d := f.manager.OpenCreate()
	d.Record = mocks.NewTestEvent("", "Orientation", domain.EventAcademic, domain.EventUpcoming)
	saved, err := f.manager.Submit(ctx, d)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if saved.ID.String() != "101" {
		t.Errorf("saved id = %q", saved.ID)
	}
	if !d.Closed() || d.Record.Title != "" {
		t.Error("draft should be closed and cleared")
	}
	if f.repo.ListCalls != listCalls+1 {
		t.Errorf("expected a refetch, list calls %d -> %d", listCalls, f.repo.ListCalls)
	}
	if len(f.manager.Items()) != 6 || f.manager.Stale() {
		t.Errorf("items=%d stale=%v", len(f.manager.Items()), f.manager.Stale())
	}

	events := f.recorder.Events()
	if len(events) != 1 || events[0].Action != domain.ChangeCreated || events[0].RecordID.String() != "101" || events[0].Resource != "events" {
		t.Errorf("recorded changes = %+v", events)
	}

	if _, err := f.manager.Submit(ctx, d); !errors.Is(err, services.ErrDraftClosed) {
		t.Errorf("resubmit = %v, want ErrDraftClosed", err)
	}
}

func TestManager_PatchesLocallyWhenRefetchFails(t *testing.T) {
	f := newFixture(t, services.FallbackNone)
	ctx := context.Background()
	_ = f.manager.Load(ctx)
	f.repo.ListError = errNetwork

	created, err := f.manager.Create(ctx, mocks.NewTestEvent("", "Hackathon", domain.EventOther, ""))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	items := f.manager.Items()
	if len(items) != 6 || items[5].ID != created.ID {
		t.Errorf("created record not appended: %v", ids(items))
	}

	edited := items[0]
	edited.Title = "Opening Ceremony (moved)"
	if _, err := f.manager.Update(ctx, edited.ID, edited); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got, _ := f.manager.Get(edited.ID); got.Title != edited.Title {
		t.Errorf("update not patched: %q", got.Title)
	}

	if err := f.manager.Delete(ctx, domain.NewID("2")); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := f.manager.Get(domain.NewID("2")); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("deleted record still present: %v", err)
	}
	if !f.manager.Stale() {
		t.Error("patched state should be stale")
	}
}

func TestManager_NoPatchAfterMalformedRefetch(t *testing.T) {
	f := newFixture(t, services.FallbackNone)
	ctx := context.Background()
	_ = f.manager.Load(ctx)
	f.repo.ListError = fmt.Errorf("%w: GET /api/events did not return an array", domain.ErrUnexpectedShape)

	if _, err := f.manager.Create(ctx, mocks.NewTestEvent("", "Hackathon", domain.EventOther, "")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if items := f.manager.Items(); len(items) != 0 {
		t.Errorf("expected the cleared collection, got %v", ids(items))
	}
	if !errors.Is(f.manager.Err(), domain.ErrUnexpectedShape) {
		t.Errorf("Err() = %v, want ErrUnexpectedShape", f.manager.Err())
	}
	if f.manager.Stale() {
		t.Error("a malformed response is an error state, not stale data")
	}
}

func TestManager_OlderLoadDoesNotOverwriteNewer(t *testing.T) {
	f := newFixture(t, services.FallbackNone)
	ctx := context.Background()

	old := mocks.AcademicEvents()[:2]
	fresh := mocks.AcademicEvents()[2:]
	entered := make(chan struct{})
	release := make(chan struct{})
	f.repo.ListFunc = func(_ context.Context, call int) ([]domain.Event, error) {
		if call == 1 {
			close(entered)
			<-release
			return old, nil
		}
		return fresh, nil
	}

	done := make(chan error, 1)
	go func() { done <- f.manager.Load(ctx) }()
	<-entered

	if err := f.manager.Load(ctx); err != nil {
		t.Fatalf("second Load() error = %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first Load() error = %v", err)
	}

	got := ids(f.manager.Items())
	if len(got) != 3 || got[0] != "3" || got[2] != "5" {
		t.Errorf("items = %v, want the newer load [3 4 5]", got)
	}
	if f.manager.Loading() {
		t.Error("manager still loading after both loads finished")
	}
}

func TestManager_UpdateUnknownRecord(t *testing.T) {
	f := newFixture(t, services.FallbackNone)
	_ = f.manager.Load(context.Background())

	_, err := f.manager.Update(context.Background(), domain.NewID("404"), mocks.NewTestEvent("404", "Ghost", domain.EventOther, ""))
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Update() = %v, want ErrNotFound", err)
	}
	if f.repo.Calls() != 0 {
		t.Error("no backend call expected")
	}
}

func TestManager_FailedMutationKeepsDraft(t *testing.T) {
	f := newFixture(t, services.FallbackNone)
	ctx := context.Background()
	_ = f.manager.Load(ctx)
	f.repo.UpdateError = errNetwork

	d, err := f.manager.OpenEdit(domain.NewID("3"))
	if err != nil {
		t.Fatal(err)
	}
	d.Record.Title = "Renamed"
	if _, err := f.manager.Submit(ctx, d); !errors.Is(err, errNetwork) {
		t.Fatalf("Submit() = %v", err)
	}
	if d.Closed() || d.Record.Title != "Renamed" || d.Mode() != services.DraftEdit {
		t.Errorf("draft should stay open with its edits: %+v", d)
	}
	if got, _ := f.manager.Get(domain.NewID("3")); got.Title != "Thesis Defense Week" {
		t.Errorf("local copy changed to %q", got.Title)
	}
	if len(f.recorder.Events()) != 0 {
		t.Error("failed mutations are not recorded")
	}
}

func TestManager_OneMutationInFlight(t *testing.T) {
	f := newFixture(t, services.FallbackNone)
	ctx := context.Background()
	_ = f.manager.Load(ctx)
	f.repo.Entered = make(chan struct{})
	f.repo.Block = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := f.manager.Create(ctx, mocks.NewTestEvent("", "Slow", domain.EventOther, ""))
		done <- err
	}()
	<-f.repo.Entered

	if err := f.manager.Delete(ctx, domain.NewID("1")); !errors.Is(err, services.ErrMutationInFlight) {
		t.Errorf("Delete() during create = %v, want ErrMutationInFlight", err)
	}

	f.repo.Entered = nil
	close(f.repo.Block)
	if err := <-done; err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := f.manager.Delete(ctx, domain.NewID("1")); err != nil {
		t.Errorf("Delete() after create = %v", err)
	}
}

func TestManager_ConfirmDelete(t *testing.T) {
	f := newFixture(t, services.FallbackNone)
	ctx := context.Background()
	_ = f.manager.Load(ctx)

	if err := f.manager.ConfirmDelete(ctx, domain.NewID("4"), "delet"); !errors.Is(err, services.ErrConfirmationMismatch) {
		t.Fatalf("ConfirmDelete(delet) = %v", err)
	}
	if f.repo.Calls() != 0 {
		t.Fatal("mismatched keyword must not call the backend")
	}
	if err := f.manager.ConfirmDelete(ctx, domain.NewID("99"), "delete"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("ConfirmDelete(unknown) = %v", err)
	}

	if err := f.manager.ConfirmDelete(ctx, domain.NewID("4"), "DELETE"); err != nil {
		t.Fatalf("ConfirmDelete() error = %v", err)
	}
	if len(f.manager.Items()) != 4 {
		t.Errorf("expected 4 items after delete, got %d", len(f.manager.Items()))
	}
	events := f.recorder.Events()
	if len(events) != 1 || events[0].Action != domain.ChangeDeleted || events[0].RecordID.String() != "4" {
		t.Errorf("recorded changes = %+v", events)
	}
}

func TestManager_ReadOnly(t *testing.T) {
	repo := mocks.NewMockCollectionRepository(domain.Degree{ID: domain.NewID("1"), Name: "Computer Science", Code: "CS"})
	m := services.NewManager(services.DegreeSchema, repo, services.Options{})
	ctx := context.Background()
	_ = m.Load(ctx)

	if _, err := m.Create(ctx, domain.Degree{Name: "Law"}); !errors.Is(err, services.ErrReadOnly) {
		t.Errorf("Create() = %v, want ErrReadOnly", err)
	}
	if err := m.Delete(ctx, domain.NewID("1")); !errors.Is(err, services.ErrReadOnly) {
		t.Errorf("Delete() = %v, want ErrReadOnly", err)
	}
	if !m.ReadOnly() {
		t.Error("ReadOnly() = false")
	}
}

func TestManager_View(t *testing.T) {
	f := newFixture(t, services.FallbackNone)
	_ = f.manager.Load(context.Background())

	view, err := f.manager.View("", map[string]string{"type": "academic"})
	if err != nil {
		t.Fatal(err)
	}
	if view.Total != 5 || view.Filtered != 3 || len(view.Items) != 3 {
		t.Errorf("view = total %d filtered %d items %d", view.Total, view.Filtered, len(view.Items))
	}

	if _, err := f.manager.View("", map[string]string{"colour": "blue"}); !errors.Is(err, services.ErrUnknownFilter) {
		t.Errorf("View() with unknown filter = %v", err)
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{domain.ErrUnauthorized, "your session has expired, please sign in again"},
		{fmt.Errorf("wrapped: %w", domain.ErrNotFound), "record not found"},
		{services.ErrMutationInFlight, services.ErrMutationInFlight.Error()},
		{errNetwork, "request failed"},
	}
	for _, tt := range tests {
		if got := services.UserMessage(tt.err); got != tt.want {
			t.Errorf("UserMessage(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
