package config

import (
	"log"
	"time"

	"github.com/sony/gobreaker"
)

const (
	breakerTripAfter      = 3
	breakerHalfOpenProbes = 3
	breakerInterval       = 10 * time.Second
	breakerDefaultTimeout = 30 * time.Second
)

// breakerTimeouts is how long each dependency's breaker stays open.
var breakerTimeouts = map[string]time.Duration{
	"Redis-Snapshots":   5 * time.Second,
	"Scheduling-API":    10 * time.Second,
	"Outbox-PostgreSQL": 10 * time.Second,
	"Relay-PostgreSQL":  10 * time.Second,
}

// NewCircuitBreaker returns the breaker for one named dependency. It opens
// after consecutive failures; names without an entry in breakerTimeouts
// (RabbitMQ among them) wait breakerDefaultTimeout before probing again.
func NewCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	timeout, ok := breakerTimeouts[name]
	if !ok {
		timeout = breakerDefaultTimeout
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: breakerHalfOpenProbes,
		Interval:    breakerInterval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerTripAfter
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("circuit breaker %s: %s -> %s", name, from, to)
		},
	})
}
