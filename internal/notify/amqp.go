package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// AMQPBus publishes domain events to a durable topic exchange. The routing
// key is the event kind, e.g. "transfer.accepted".
type AMQPBus struct {
	url      string
	exchange string
	log      *zap.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewAMQPBus(url, exchange string, log *zap.Logger) (*AMQPBus, error) {
	b := &AMQPBus{
		url:      url,
		exchange: exchange,
		log:      log.With(zap.String("bus", "amqp")),
	}
	if err := b.connect(); err != nil {
		return nil, err
	}
	return b, nil
}

// connect must be called with mu held or before the bus is shared.
func (b *AMQPBus) connect() error {
	conn, err := amqp.Dial(b.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		b.exchange, // name
		"topic",    // kind
		true,       // durable
		false,      // autoDelete
		false,      // internal
		false,      // noWait
		nil,        // args
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("rabbitmq exchange declare: %w", err)
	}

	b.conn, b.ch = conn, ch
	return nil
}

func (b *AMQPBus) Publish(ctx context.Context, e DomainEvent) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", e.Kind, err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    e.OccurredAt,
		Type:         string(e.Kind),
		Body:         body,
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ch == nil || b.ch.IsClosed() {
		b.log.Warn("Channel closed, reconnecting")
		b.closeLocked()
		if err := b.connect(); err != nil {
			return err
		}
	}

	err = b.ch.PublishWithContext(ctx, b.exchange, string(e.Kind), false, false, pub)
	if err != nil && errors.Is(err, amqp.ErrClosed) {
		b.closeLocked()
		if cerr := b.connect(); cerr != nil {
			return cerr
		}
		err = b.ch.PublishWithContext(ctx, b.exchange, string(e.Kind), false, false, pub)
	}
	if err != nil {
		return fmt.Errorf("publish %s event: %w", e.Kind, err)
	}
	return nil
}

func (b *AMQPBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closeLocked()
	return nil
}

func (b *AMQPBus) closeLocked() {
	if b.ch != nil {
		_ = b.ch.Close()
		b.ch = nil
	}
	if b.conn != nil {
		_ = b.conn.Close()
		b.conn = nil
	}
}
