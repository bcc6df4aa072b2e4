package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/unischedule/dashboard/internal/core/domain"
)

// PublishChange sends evt as JSON and waits for the broker's confirmation.
// The AMQP type is "<resource>.<action>", e.g. "events.deleted".
func (b *RabbitMQBroker) PublishChange(ctx context.Context, evt domain.ChangeEvent) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("rabbitmq: encode change %s: %w", evt.ID, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    evt.ID,
		Type:         evt.Resource + "." + string(evt.Action),
		Timestamp:    evt.OccurredAt,
		Body:         body,
	}

	_, err = b.cb.Execute(func() (interface{}, error) {
		b.mu.Lock()
		defer b.mu.Unlock()

		confirm, err := b.ch.PublishWithDeferredConfirmWithContext(ctx, "", b.queue, false, false, msg)
		if err != nil {
			return nil, err
		}
		acked, err := confirm.WaitContext(ctx)
		if err != nil {
			return nil, err
		}
		if !acked {
			return nil, ErrNotConfirmed
		}
		return nil, nil
	})
	return err
}
