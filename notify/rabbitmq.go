package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeName = "registrations"
	ExchangeKind = "topic"
)

// RabbitMQPublisher publishes events to a topic exchange with the event type
// as routing key.
type RabbitMQPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	mu      sync.Mutex // amqp.Channel is not safe for concurrent publishes
}

func NewRabbitMQPublisher(url string) (*RabbitMQPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(ExchangeName, ExchangeKind, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("rabbitmq exchange declare: %w", err)
	}

	return &RabbitMQPublisher{conn: conn, channel: ch}, nil
}

func (p *RabbitMQPublisher) Notify(ctx context.Context, e Event) error {
	msg, err := amqpMessage(e)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.channel.PublishWithContext(ctx, ExchangeName, string(e.Type), false, false, msg); err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	slog.DebugContext(ctx, "event published", slog.String("exchange", ExchangeName), slog.String("routing_key", string(e.Type)))
	return nil
}

func (p *RabbitMQPublisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

func amqpMessage(e Event) (amqp.Publishing, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    e.RegistrationID + ":" + string(e.Type),
		Timestamp:    e.OccurredAt,
		Type:         string(e.Type),
		Body:         body,
	}, nil
}
