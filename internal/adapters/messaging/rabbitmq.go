package messaging

import (
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sony/gobreaker"

	"github.com/unischedule/dashboard/internal/config"
	"github.com/unischedule/dashboard/internal/core/ports"
)

// ErrNotConfirmed is returned when the broker nacks a change event.
var ErrNotConfirmed = errors.New("rabbitmq: publish was not confirmed")

// RabbitMQBroker publishes change events to one durable queue on a
// channel in confirm mode, so a returned nil means the broker has the message.
type RabbitMQBroker struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
	cb    *gobreaker.CircuitBreaker

	// one publish at a time keeps confirmations in delivery order
	mu sync.Mutex
}

var _ ports.ChangeEventPublisher = (*RabbitMQBroker)(nil)

func NewRabbitMQBroker(amqpURL, queue string) (*RabbitMQBroker, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: dial: %w", err)
	}
	ch, err := openChannel(conn, queue)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &RabbitMQBroker{
		conn:  conn,
		ch:    ch,
		queue: queue,
		cb:    config.NewCircuitBreaker("RabbitMQ-Publisher"),
	}, nil
}

func openChannel(conn *amqp.Connection, queue string) (*amqp.Channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("rabbitmq: declare %s: %w", queue, err)
	}
	if err := ch.Confirm(false); err != nil {
		ch.Close()
		return nil, fmt.Errorf("rabbitmq: enable confirms: %w", err)
	}
	return ch, nil
}

func (b *RabbitMQBroker) Close() error {
	var errs []error
	if b.ch != nil {
		errs = append(errs, b.ch.Close())
	}
	if b.conn != nil {
		errs = append(errs, b.conn.Close())
	}
	return errors.Join(errs...)
}
