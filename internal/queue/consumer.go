// Package queue contains the background consumer that drains the
// notification.queued queue and delivers email through the mailer.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/journiq/tour-booking-api/internal/mailer"
	"github.com/journiq/tour-booking-api/internal/model"
	"github.com/journiq/tour-booking-api/internal/repository"
)

// StartEmailConsumer connects to RabbitMQ, declares the durable
// notification.queued queue and consumes it forever.  Each message is
// matched against its outbox row before sending, so a redelivered or
// re-published message for an already-sent entry is acked and dropped
// rather than sent twice.  The function runs a reconnect loop with
// exponential backoff and never returns under normal operation.
func StartEmailConsumer(url string, outbox *repository.OutboxRepo, m *mailer.Mailer) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("email-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, outbox, m); err != nil {
			log.Printf("email-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection, outbox *repository.OutboxRepo, m *mailer.Mailer) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(20, 0, false); err != nil {
		log.Printf("email-consumer: set QoS failed: %v", err)
	}

	if _, err := ch.QueueDeclare(EmailQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(EmailQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(d.Body, outbox, m); err != nil {
			log.Printf("email-consumer: handle message failed: %v", err)
			_ = d.Nack(false, false) // do not requeue; the sweeper re-publishes pending entries
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleMessage(body []byte, outbox *repository.OutboxRepo, m *mailer.Mailer) error {
	var ev EmailQueuedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	entry, err := outbox.GetByUUID(ctx, ev.UUID)
	if err != nil {
		return fmt.Errorf("load outbox entry %s: %w", ev.UUID, err)
	}
	if entry.Status != model.OutboxPending {
		// Already delivered or permanently failed; drop the duplicate.
		return nil
	}

	if err := m.Send(entry.Recipient, entry.Subject, entry.Template, entry.Payload); err != nil {
		if markErr := outbox.MarkAttempt(ctx, ev.UUID); markErr != nil {
			log.Printf("email-consumer: mark attempt failed for %s: %v", ev.UUID, markErr)
		}
		return fmt.Errorf("send to %s: %w", entry.Recipient, err)
	}
	if err := outbox.MarkSent(ctx, ev.UUID); err != nil {
		return fmt.Errorf("mark sent %s: %w", ev.UUID, err)
	}
	log.Printf("email-consumer: delivered %s (%s) to %s", ev.UUID, entry.Template, entry.Recipient)
	return nil
}
