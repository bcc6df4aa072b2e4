package services

import "github.com/unischedule/dashboard/internal/core/domain"

type DraftMode int

const (
	DraftCreate DraftMode = iota
	DraftEdit
)

func (m DraftMode) String() string {
	if m == DraftEdit {
		return "edit"
	}
	return "create"
}

// Draft is the in-progress copy of a record bound to an editor form.
// Record is edited in place; the draft closes once the backend acknowledges it.
type Draft[T domain.Record] struct {
	Record T

	mode   DraftMode
	id     domain.ID
	closed bool
}

func (d *Draft[T]) Mode() DraftMode { return d.mode }

// TargetID is the identity being edited, empty in create mode.
func (d *Draft[T]) TargetID() domain.ID { return d.id }

func (d *Draft[T]) Closed() bool { return d.closed }

// Discard drops the draft without saving. There is no dirty-state check.
func (d *Draft[T]) Discard() {
	var zero T
	d.Record = zero
	d.closed = true
}
