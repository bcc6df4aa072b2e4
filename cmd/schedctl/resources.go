package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/unischedule/dashboard/internal/adapters/rest"
	"github.com/unischedule/dashboard/internal/core/domain"
	"github.com/unischedule/dashboard/internal/core/services"
)

// resource hides the record type behind the operations the CLI runs.
type resource interface {
	name() string
	readOnly() bool
	load(ctx context.Context) error
	list(ctx context.Context, w io.Writer, search string, fields map[string]string) error
	create(ctx context.Context, w io.Writer, payload []byte) error
	update(ctx context.Context, w io.Writer, id domain.ID, payload []byte) error
	confirmDelete(ctx context.Context, id domain.ID, typed string) error
}

type managed[T domain.Record] struct {
	m *services.Manager[T]
}

func newResources(client *rest.Client, opts services.Options) map[string]resource {
	out := map[string]resource{}
	add := func(r resource) { out[r.name()] = r }
	add(bind(client, services.EventSchema, opts))
	add(bind(client, services.GroupSchema, opts))
	add(bind(client, services.LessonSchema, opts))
	add(bind(client, services.LectureSchema, opts))
	add(bind(client, services.ModuleSchema, opts))
	add(bind(client, services.RoomBookingSchema, opts))
	add(bind(client, services.DegreeSchema, opts))
	return out
}

func bind[T domain.Record](client *rest.Client, schema services.Schema[T], opts services.Options) *managed[T] {
	return &managed[T]{m: services.NewManager(schema, rest.NewCollection[T](client, schema.Resource), opts)}
}

func (r *managed[T]) name() string { return r.m.Resource() }

func (r *managed[T]) readOnly() bool { return r.m.ReadOnly() }

func (r *managed[T]) load(ctx context.Context) error { return r.m.Load(ctx) }

func (r *managed[T]) list(ctx context.Context, w io.Writer, search string, fields map[string]string) error {
	if _, err := r.m.Schema().ParseFilter(search, fields); err != nil {
		return err
	}
	if err := r.m.Load(ctx); err != nil {
		return err
	}
	view, err := r.m.View(search, fields)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s: showing %d of %d\n", r.m.Resource(), view.Filtered, view.Total)
	return writeJSON(w, view.Items)
}

func (r *managed[T]) create(ctx context.Context, w io.Writer, payload []byte) error {
	var rec T
	if err := json.Unmarshal(payload, &rec); err != nil {
		return cliError("invalid record: " + err.Error())
	}
	saved, err := r.m.Create(ctx, rec)
	if err != nil {
		return err
	}
	return writeJSON(w, saved)
}

func (r *managed[T]) update(ctx context.Context, w io.Writer, id domain.ID, payload []byte) error {
	var rec T
	if err := json.Unmarshal(payload, &rec); err != nil {
		return cliError("invalid record: " + err.Error())
	}
	if err := r.m.Load(ctx); err != nil {
		return err
	}
	saved, err := r.m.Update(ctx, id, rec)
	if err != nil {
		return err
	}
	return writeJSON(w, saved)
}

func (r *managed[T]) confirmDelete(ctx context.Context, id domain.ID, typed string) error {
	return r.m.ConfirmDelete(ctx, id, typed)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
