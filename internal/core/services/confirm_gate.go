package services

import (
	"context"
	"strings"
	"sync"

	"github.com/unischedule/dashboard/internal/core/domain"
)

// DefaultConfirmKeyword is what an operator types to unlock a delete.
const DefaultConfirmKeyword = "delete"

type GateState int

const (
	GateClosed GateState = iota
	GateConfirmOpen
	GateDeleting
)

func (s GateState) String() string {
	switch s {
	case GateConfirmOpen:
		return "confirm-open"
	case GateDeleting:
		return "deleting"
	default:
		return "closed"
	}
}

// ConfirmGate guards a destructive action behind a typed keyword.
// The keyword comparison is case-insensitive and otherwise exact.
type ConfirmGate struct {
	keyword string
	action  func(ctx context.Context, id domain.ID) error

	mu      sync.Mutex
	state   GateState
	target  domain.ID
	typed   string
	lastErr error
}

func NewConfirmGate(keyword string, action func(ctx context.Context, id domain.ID) error) *ConfirmGate {
	if keyword == "" {
		keyword = DefaultConfirmKeyword
	}
	return &ConfirmGate{keyword: keyword, action: action}
}

func (g *ConfirmGate) Keyword() string { return g.keyword }

// Open starts a confirmation for target.
func (g *ConfirmGate) Open(target domain.ID) error {
	if target.IsZero() {
		return ErrNoTarget
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == GateDeleting {
		return ErrMutationInFlight
	}
	g.state = GateConfirmOpen
	g.target = target
	g.typed = ""
	g.lastErr = nil
	return nil
}

// Type records the operator's confirmation text.
func (g *ConfirmGate) Type(text string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == GateConfirmOpen {
		g.typed = text
	}
}

// Enabled reports whether Confirm would run the action.
func (g *ConfirmGate) Enabled() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state == GateConfirmOpen && strings.EqualFold(g.typed, g.keyword)
}

// Confirm runs the action for the open target. On failure the gate stays
// open with the typed text kept so the operator can retry.
func (g *ConfirmGate) Confirm(ctx context.Context) error {
	g.mu.Lock()
	if g.state != GateConfirmOpen {
		g.mu.Unlock()
		return ErrGateClosed
	}
	if !strings.EqualFold(g.typed, g.keyword) {
		g.mu.Unlock()
		return ErrConfirmationMismatch
	}
	g.state = GateDeleting
	target := g.target
	g.mu.Unlock()

	err := g.action(ctx, target)

	g.mu.Lock()
	defer g.mu.Unlock()
	if err != nil {
		g.state = GateConfirmOpen
		g.lastErr = err
		return err
	}
	g.state = GateClosed
	g.target = domain.ID{}
	g.typed = ""
	g.lastErr = nil
	return nil
}

// Cancel closes an open confirmation. A running action is not interrupted.
func (g *ConfirmGate) Cancel() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != GateConfirmOpen {
		return
	}
	g.state = GateClosed
	g.target = domain.ID{}
	g.typed = ""
	g.lastErr = nil
}

func (g *ConfirmGate) State() GateState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *ConfirmGate) Target() domain.ID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.target
}

func (g *ConfirmGate) Typed() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.typed
}

// Err is the last action failure, cleared on success or a new Open.
func (g *ConfirmGate) Err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastErr
}
