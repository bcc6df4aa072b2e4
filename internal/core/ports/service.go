package ports

import (
	"context"

	"github.com/unischedule/dashboard/internal/core/domain"
)

// ListView is the state a list page renders.
type ListView[T domain.Record] struct {
	Items    []T    `json:"items"`
	Total    int    `json:"total"`
	Filtered int    `json:"filtered"`
	Loading  bool   `json:"loading"`
	Stale    bool   `json:"stale"`
	Error    string `json:"error,omitempty"`
}

// ResourceManager is what the HTTP and CLI surfaces drive for one resource.
type ResourceManager[T domain.Record] interface {
	Resource() string
	ReadOnly() bool
	Load(ctx context.Context) error
	View(search string, fields map[string]string) (ListView[T], error)
	Get(id domain.ID) (T, error)
	Create(ctx context.Context, record T) (T, error)
	Update(ctx context.Context, id domain.ID, record T) (T, error)
	ConfirmDelete(ctx context.Context, id domain.ID, typed string) error
}
