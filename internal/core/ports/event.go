package ports

import (
	"context"

	"github.com/unischedule/dashboard/internal/core/domain"
)

// ChangeRecorder stores change events for later publication.
type ChangeRecorder interface {
	RecordChange(ctx context.Context, evt domain.ChangeEvent) error
}

type ChangeEventPublisher interface {
	PublishChange(ctx context.Context, evt domain.ChangeEvent) error
}
