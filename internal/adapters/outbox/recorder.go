package outbox

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/sony/gobreaker"

	"github.com/unischedule/dashboard/internal/config"
	"github.com/unischedule/dashboard/internal/core/domain"
	"github.com/unischedule/dashboard/internal/core/ports"
)

// SQLChangeRecorder writes change events to the outbox table and wakes the
// relay with NOTIFY in the same transaction.
type SQLChangeRecorder struct {
	db *sql.DB
	cb *gobreaker.CircuitBreaker
}

var _ ports.ChangeRecorder = (*SQLChangeRecorder)(nil)

func NewSQLChangeRecorder(db *sql.DB) *SQLChangeRecorder {
	return &SQLChangeRecorder{
		db: db,
		cb: config.NewCircuitBreaker("Outbox-PostgreSQL"),
	}
}

func (r *SQLChangeRecorder) RecordChange(ctx context.Context, evt domain.ChangeEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	_, err = r.cb.Execute(func() (interface{}, error) {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, err
		}
		defer tx.Rollback()

		_, err = tx.ExecContext(ctx,
			"INSERT INTO outbox_events (id, event_type, payload, created_at) VALUES ($1, $2, $3, $4)",
			evt.ID,
			changeEventType,
			payload,
			evt.OccurredAt,
		)
		if err != nil {
			return nil, err
		}

		if _, err := tx.ExecContext(ctx, "SELECT pg_notify($1, $2)", outboxChannelName, evt.ID); err != nil {
			return nil, err
		}

		return nil, tx.Commit()
	})
	return err
}
