package ports

import (
	"context"

	"github.com/unischedule/dashboard/internal/core/domain"
)

// CollectionReader fetches a whole resource collection.
type CollectionReader[T domain.Record] interface {
	List(ctx context.Context) ([]T, error)
}

// CollectionRepository is the remote source of truth for one resource type.
type CollectionRepository[T domain.Record] interface {
	CollectionReader[T]
	Create(ctx context.Context, record T) (T, error)
	Update(ctx context.Context, id domain.ID, record T) (T, error)
	Delete(ctx context.Context, id domain.ID) error
}

// HealthProbe reports whether the backend is reachable.
type HealthProbe interface {
	Health(ctx context.Context) error
}

// SnapshotCache keeps the last successfully fetched collection per resource.
type SnapshotCache interface {
	SaveSnapshot(ctx context.Context, resource string, payload []byte) error
	LoadSnapshot(ctx context.Context, resource string) ([]byte, error)
}
