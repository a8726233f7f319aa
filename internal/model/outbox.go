package model

import "time"

// Outbox entry statuses.
const (
	OutboxPending = "pending"
	OutboxSent    = "sent"
	OutboxFailed  = "failed"
)

// MaxOutboxAttempts caps delivery retries per entry; beyond this the
// entry is marked failed and left for inspection.
const MaxOutboxAttempts = 5

// OutboxEntry is a durable record of an email that must be delivered
// as a consequence of a state change.  It is written in the same
// transaction as the change itself, published to the broker after
// commit, and marked sent by the delivery worker.  A periodic sweeper
// republishes entries still pending, so a lost publish or a crashed
// worker only delays delivery instead of losing it.
//
// Fields:
//  ID        – primary key identifier.
//  UUID      – stable message identifier used for broker dedupe.
//  Recipient – destination email address.
//  Subject   – email subject line.
//  Template  – template name for the rendering collaborator.
//  Payload   – JSON context object handed to the template.
//  Status    – pending, sent or failed.
//  Attempts  – delivery attempts made so far.
//  CreatedAt – creation timestamp.
//  SentAt    – when delivery succeeded (null until then).
type OutboxEntry struct {
	ID        uint64     // email_outbox.id
	UUID      string     // email_outbox.uuid
	Recipient string     // email_outbox.recipient
	Subject   string     // email_outbox.subject
	Template  string     // email_outbox.template
	Payload   []byte     // email_outbox.payload (JSON)
	Status    string     // email_outbox.status
	Attempts  uint32     // email_outbox.attempts
	CreatedAt time.Time  // email_outbox.created_at
	SentAt    *time.Time // email_outbox.sent_at (nullable)
}
