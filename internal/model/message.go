package model

import "time"

// Message statuses stored in messages.status.
const (
	MessageUnread = "unread"
	MessageRead   = "read"
)

// Message is a support message from a traveller to the admin team,
// with an optional single admin reply.
type Message struct {
	ID          uint64     // messages.id
	TravellerID uint64     // messages.traveller_id
	Subject     string     // messages.subject
	Body        string     // messages.body
	Status      string     // messages.status (unread|read)
	AdminReply  *string    // messages.admin_reply (nullable)
	RepliedAt   *time.Time // messages.replied_at (nullable)
	CreatedAt   time.Time  // messages.created_at
	UpdatedAt   time.Time  // messages.updated_at
}
