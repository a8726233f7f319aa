// Package service glues state changes to their side effects: in-app
// notifications, the durable email outbox and broker publishing.
package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/journiq/tour-booking-api/internal/queue"
)

// Publisher publishes email events to RabbitMQ.  A fresh connection is
// dialed per publish; the rate of outbox writes is low enough that the
// simplicity wins over connection pooling.  Errors are logged and
// returned so callers can ignore them: the outbox row is already
// committed, and the sweeper re-publishes anything still pending.
type Publisher struct {
	url string
}

func NewPublisher(url string) *Publisher { return &Publisher{url: url} }

// PublishEmailQueued sends an EmailQueuedEvent to the
// notification.queued queue as a persistent message.
func (p *Publisher) PublishEmailQueued(ctx context.Context, event q.EmailQueuedEvent) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(q.EmailQueueName, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, "", q.EmailQueueName, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
