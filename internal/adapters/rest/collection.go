package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/unischedule/dashboard/internal/core/domain"
	"github.com/unischedule/dashboard/internal/core/ports"
)

// Collection is the REST adapter for one resource, e.g. /api/events.
type Collection[T domain.Record] struct {
	client   *Client
	resource string
}

var _ ports.CollectionRepository[domain.Event] = (*Collection[domain.Event])(nil)

func NewCollection[T domain.Record](client *Client, resource string) *Collection[T] {
	return &Collection[T]{client: client, resource: resource}
}

// List fetches the whole collection. Anything but a JSON array is
// reported as domain.ErrUnexpectedShape.
func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	var raw json.RawMessage
	if err := c.client.do(ctx, http.MethodGet, c.resource, nil, &raw); err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: GET /api/%s did not return an array", domain.ErrUnexpectedShape, c.resource)
	}
	items := []T{}
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("%w: GET /api/%s: %v", domain.ErrUnexpectedShape, c.resource, err)
	}
	return items, nil
}

func (c *Collection[T]) Create(ctx context.Context, record T) (T, error) {
	var saved T
	if err := c.client.do(ctx, http.MethodPost, c.resource, record, &saved); err != nil {
		var zero T
		return zero, err
	}
	return saved, nil
}

func (c *Collection[T]) Update(ctx context.Context, id domain.ID, record T) (T, error) {
	var saved T
	if err := c.client.do(ctx, http.MethodPut, c.itemPath(id), record, &saved); err != nil {
		var zero T
		return zero, err
	}
	return saved, nil
}

func (c *Collection[T]) Delete(ctx context.Context, id domain.ID) error {
	return c.client.do(ctx, http.MethodDelete, c.itemPath(id), nil, nil)
}

func (c *Collection[T]) itemPath(id domain.ID) string {
	return c.resource + "/" + url.PathEscape(id.String())
}
