package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends domain events to downstream collaborators.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, body any) error
	Close() error
}

// RabbitPublisher publishes JSON messages to a topic exchange. The channel is
// reopened lazily after the broker closes it.
type RabbitPublisher struct {
	conn     *amqp.Connection
	exchange string

	mu sync.Mutex
	ch *amqp.Channel
}

func NewRabbitPublisher(url, exchange string) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &RabbitPublisher{conn: conn, exchange: exchange, ch: ch}, nil
}

func (p *RabbitPublisher) channel() (*amqp.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	ch, err := p.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("reopen channel: %w", err)
	}
	p.ch = ch
	slog.Info("RabbitMQ publisher channel reopened", "exchange", p.exchange)
	return ch, nil
}

func (p *RabbitPublisher) Publish(ctx context.Context, routingKey string, body any) error {
	ch, err := p.channel()
	if err != nil {
		return err
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	err = ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         payload,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}
	return nil
}

func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		p.ch.Close()
	}
	return p.conn.Close()
}

// NopPublisher drops messages. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(_ context.Context, routingKey string, _ any) error {
	slog.Debug("Message broker not configured, dropping event", "routing_key", routingKey)
	return nil
}

func (NopPublisher) Close() error { return nil }

// Fanout publishes every message to each of its publishers in order. A
// failing publisher does not stop the rest.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, routingKey string, body any) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, routingKey, body); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f Fanout) Close() error {
	var errs []error
	for _, p := range f {
		errs = append(errs, p.Close())
	}
	return errors.Join(errs...)
}

// RecordingPublisher keeps published messages in memory.
type RecordingPublisher struct {
	mu       sync.Mutex
	Messages []Message
}

type Message struct {
	RoutingKey string
	Body       any
}

func (r *RecordingPublisher) Publish(_ context.Context, routingKey string, body any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Messages = append(r.Messages, Message{RoutingKey: routingKey, Body: body})
	return nil
}

func (r *RecordingPublisher) Close() error { return nil }
