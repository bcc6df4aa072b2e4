package outbox

import (
	"context"
	"database/sql"
)

const (
	outboxChannelName = "outbox_channel"

	// changeEventType tags outbox rows written by SQLChangeRecorder.
	changeEventType = "dashboard.change"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS outbox_events (
	id           UUID PRIMARY KEY,
	event_type   TEXT        NOT NULL,
	payload      JSONB       NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	processed_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS outbox_events_unprocessed_idx
	ON outbox_events (created_at) WHERE processed_at IS NULL;
`

// EnsureSchema creates the outbox table if it does not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schemaDDL)
	return err
}
