package outbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/lib/pq"
	"github.com/sony/gobreaker"

	"github.com/unischedule/dashboard/internal/config"
	"github.com/unischedule/dashboard/internal/core/domain"
	"github.com/unischedule/dashboard/internal/core/ports"
)

const (
	listenerMinReconnectInterval = 10 * time.Second
	listenerMaxReconnectInterval = time.Minute

	singleEventTimeout = 30 * time.Second
	sweepTimeout       = 60 * time.Second
	sweepInterval      = 90 * time.Second

	healthCheckStaleThreshold = 5 * time.Minute

	sweepBatchSize = 100
)

const (
	claimByIDQuery = `
		SELECT id, event_type, payload
		FROM outbox_events
		WHERE id = $1 AND processed_at IS NULL
		FOR UPDATE SKIP LOCKED`

	claimBatchQuery = `
		SELECT id, event_type, payload
		FROM outbox_events
		WHERE processed_at IS NULL
		ORDER BY created_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED`

	markProcessedQuery = `UPDATE outbox_events SET processed_at = NOW() WHERE id = $1`
)

// Relay forwards recorded change events to a publisher. It wakes on
// NOTIFY outbox_channel and also sweeps for rows it missed.
type Relay struct {
	db        *sql.DB
	dbURL     string
	publisher ports.ChangeEventPublisher
	dbCB      *gobreaker.CircuitBreaker

	mu            sync.RWMutex
	lastProcessed time.Time
	isHealthy     bool
}

type outboxRow struct {
	id        string
	eventType string
	payload   []byte
}

func NewRelay(db *sql.DB, dbURL string, publisher ports.ChangeEventPublisher) *Relay {
	return &Relay{
		db:            db,
		dbURL:         dbURL,
		publisher:     publisher,
		dbCB:          config.NewCircuitBreaker("Relay-PostgreSQL"),
		lastProcessed: time.Now(),
		isHealthy:     true,
	}
}

// IsHealthy is the liveness signal: the listener is connected. An open
// breaker does not make the relay unhealthy.
func (r *Relay) IsHealthy() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.isHealthy
}

// IsReady reports whether the relay is processing events right now.
func (r *Relay) IsReady() bool {
	if r.dbCB.State() == gobreaker.StateOpen {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.isHealthy && time.Since(r.lastProcessed) <= healthCheckStaleThreshold
}

func (r *Relay) setHealthy(healthy, processed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.isHealthy = healthy
	if processed {
		r.lastProcessed = time.Now()
	}
}

// Start blocks until ctx is cancelled or the listener cannot subscribe.
func (r *Relay) Start(ctx context.Context) error {
	listener := pq.NewListener(r.dbURL, listenerMinReconnectInterval, listenerMaxReconnectInterval,
		func(_ pq.ListenerEventType, err error) {
			if err != nil {
				log.Printf("outbox relay: listener error: %v", err)
			}
		})
	defer listener.Close()

	if err := listener.Listen(outboxChannelName); err != nil {
		return err
	}
	log.Printf("outbox relay: listening on %q", outboxChannelName)

	r.sweep(ctx, "startup")

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("outbox relay: shutting down...")
			return ctx.Err()

		case n := <-listener.Notify:
			// nil after a reconnect; anything sent meanwhile is left to the sweep
			if n == nil {
				log.Println("outbox relay: listener reconnected, sweeping")
				r.setHealthy(false, false)
				r.sweep(ctx, "reconnect")
				continue
			}
			if err := r.processOne(ctx, n.Extra); err != nil {
				log.Printf("outbox relay: event %s: %v", n.Extra, err)
				continue
			}
			r.setHealthy(true, true)

		case <-ticker.C:
			go listener.Ping()
			r.sweep(ctx, "periodic")
		}
	}
}

func (r *Relay) sweep(ctx context.Context, reason string) {
	if err := r.processPending(ctx); err != nil {
		log.Printf("outbox relay: %s sweep failed: %v", reason, err)
		return
	}
	r.setHealthy(true, true)
}

func (r *Relay) processOne(ctx context.Context, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, singleEventTimeout)
	defer cancel()

	return r.inTx(ctx, func(tx *sql.Tx) error {
		rows, err := claim(ctx, tx, claimByIDQuery, eventID)
		if err != nil {
			return err
		}
		for _, row := range rows {
			if err := r.publish(ctx, row.id, row.eventType, row.payload); err != nil {
				return err
			}
			if err := markProcessed(ctx, tx, row.id); err != nil {
				return err
			}
		}
		return nil
	})
}

// processPending publishes up to one batch. A row that fails to publish
// stays unprocessed for the next sweep; the others are still committed.
func (r *Relay) processPending(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	return r.inTx(ctx, func(tx *sql.Tx) error {
		rows, err := claim(ctx, tx, claimBatchQuery, sweepBatchSize)
		if err != nil {
			return err
		}
		for _, row := range rows {
			if err := r.publish(ctx, row.id, row.eventType, row.payload); err != nil {
				log.Printf("outbox relay: publish %s failed: %v", row.id, err)
				continue
			}
			if err := markProcessed(ctx, tx, row.id); err != nil {
				return err
			}
		}
		if len(rows) > 0 {
			log.Printf("outbox relay: swept %d events", len(rows))
		}
		return nil
	})
}

func (r *Relay) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	_, err := r.dbCB.Execute(func() (interface{}, error) {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, err
		}
		defer tx.Rollback()

		if err := fn(tx); err != nil {
			return nil, err
		}
		return nil, tx.Commit()
	})
	return err
}

func claim(ctx context.Context, tx *sql.Tx, query string, arg any) ([]outboxRow, error) {
	rows, err := tx.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []outboxRow
	for rows.Next() {
		var row outboxRow
		if err := rows.Scan(&row.id, &row.eventType, &row.payload); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// publish forwards change events. Rows of other types, and payloads that
// cannot be decoded, are only marked processed so they are not retried forever.
func (r *Relay) publish(ctx context.Context, id, eventType string, payload []byte) error {
	if eventType != changeEventType {
		return nil
	}
	evt, err := DecodeChange(payload)
	if err != nil {
		log.Printf("outbox relay: invalid payload for event %s: %v", id, err)
		return nil
	}
	return r.publisher.PublishChange(ctx, evt)
}

// DecodeChange parses an outbox payload written by SQLChangeRecorder.
func DecodeChange(payload []byte) (domain.ChangeEvent, error) {
	var evt domain.ChangeEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return domain.ChangeEvent{}, err
	}
	return evt, nil
}

func markProcessed(ctx context.Context, tx *sql.Tx, id string) error {
	_, err := tx.ExecContext(ctx, markProcessedQuery, id)
	return err
}
