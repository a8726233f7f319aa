// Package queue defines message payloads exchanged over the message broker.
package queue

import "encoding/json"

// EmailQueueName is the durable queue carrying pending email work.
const EmailQueueName = "notification.queued"

// EmailQueuedEvent is published whenever a state change writes an
// email outbox entry.  It carries everything the delivery worker needs
// to render and send the message; the UUID ties it back to the outbox
// row so redelivery never sends a duplicate.
type EmailQueuedEvent struct {
	UUID      string          `json:"uuid"`
	Recipient string          `json:"recipient"`
	Subject   string          `json:"subject"`
	Template  string          `json:"template"`
	Payload   json.RawMessage `json:"payload"`
	QueuedAt  string          `json:"queued_at"`
}
