package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/journiq/tour-booking-api/internal/model"
	q "github.com/journiq/tour-booking-api/internal/queue"
	"github.com/journiq/tour-booking-api/internal/repository"
)

// Notifier writes the in-app notification and email outbox rows that
// accompany a state change.  Both rows go into the caller's
// transaction, so a rolled-back change leaves no stray notification
// and a committed change never loses its email.  Publishing to the
// broker happens after commit via Publish.
type Notifier struct {
	notifs *repository.NotificationRepo
	outbox *repository.OutboxRepo
	pub    *Publisher
}

func NewNotifier(notifs *repository.NotificationRepo, outbox *repository.OutboxRepo, pub *Publisher) *Notifier {
	return &Notifier{notifs: notifs, outbox: outbox, pub: pub}
}

// emailSpec describes one outgoing email.
type emailSpec struct {
	recipient string
	subject   string
	template  string
	payload   map[string]any
}

// notifyTx writes the notification row and, when email is non-nil, the
// outbox row.  The returned event is nil when no email was queued.
func (n *Notifier) notifyTx(ctx context.Context, tx *sql.Tx, note *model.Notification, email *emailSpec) (*q.EmailQueuedEvent, error) {
	if err := n.notifs.CreateTx(ctx, tx, note); err != nil {
		return nil, err
	}
	if email == nil {
		return nil, nil
	}
	return n.queueEmailTx(ctx, tx, email)
}

func (n *Notifier) queueEmailTx(ctx context.Context, tx *sql.Tx, email *emailSpec) (*q.EmailQueuedEvent, error) {
	payload, err := json.Marshal(email.payload)
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	if err := n.outbox.CreateTx(ctx, tx, id, email.recipient, email.subject, email.template, payload); err != nil {
		return nil, err
	}
	return &q.EmailQueuedEvent{
		UUID:      id,
		Recipient: email.recipient,
		Subject:   email.subject,
		Template:  email.template,
		Payload:   payload,
		QueuedAt:  time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// Publish sends queued events to the broker after the transaction has
// committed.  Failures are already logged by the publisher and are
// deliberately swallowed: the outbox rows are durable and the sweeper
// re-publishes whatever is still pending.
func (n *Notifier) Publish(ctx context.Context, events ...*q.EmailQueuedEvent) {
	for _, ev := range events {
		if ev == nil {
			continue
		}
		_ = n.pub.PublishEmailQueued(ctx, *ev)
	}
}

// BookingRequested notifies the guide about a fresh booking request.
func (n *Notifier) BookingRequested(ctx context.Context, tx *sql.Tx, d repository.BookingDetail) (*q.EmailQueuedEvent, error) {
	msg := fmt.Sprintf("%s requested %d spot(s) on %q for %s.",
		d.TravellerName, d.Booking.NumPeople, d.TourTitle, d.Booking.Day.Format("2006-01-02"))
	note := &model.Notification{
		RecipientID: d.GuideID,
		SenderID:    u64ptr(d.Booking.TravellerID),
		Type:        model.NotifBookingRequest,
		Message:     msg,
		BookingID:   u64ptr(d.Booking.ID),
		TourID:      u64ptr(d.Booking.TourID),
	}
	return n.notifyTx(ctx, tx, note, &emailSpec{
		recipient: d.GuideEmail,
		subject:   "New booking request: " + d.TourTitle,
		template:  "booking_update",
		payload:   bookingPayload(d.GuideName, msg, d),
	})
}

// BookingStatusChanged notifies the other party about a status change.
// Changes made by the traveller (a cancellation) go to the guide;
// changes made by the guide or an admin go to the traveller.
func (n *Notifier) BookingStatusChanged(ctx context.Context, tx *sql.Tx, d repository.BookingDetail, newStatus string, actorID uint64) (*q.EmailQueuedEvent, error) {
	toGuide := actorID == d.Booking.TravellerID

	var recipientID uint64
	var recipientName, recipientEmail string
	if toGuide {
		recipientID, recipientName, recipientEmail = d.GuideID, d.GuideName, d.GuideEmail
	} else {
		recipientID, recipientName, recipientEmail = d.Booking.TravellerID, d.TravellerName, d.TravellerEmail
	}

	msg := statusMessage(d, newStatus, toGuide)
	note := &model.Notification{
		RecipientID: recipientID,
		SenderID:    u64ptr(actorID),
		Type:        statusNotifType(newStatus),
		Message:     msg,
		BookingID:   u64ptr(d.Booking.ID),
		TourID:      u64ptr(d.Booking.TourID),
	}
	return n.notifyTx(ctx, tx, note, &emailSpec{
		recipient: recipientEmail,
		subject:   fmt.Sprintf("Booking %s: %s", newStatus, d.TourTitle),
		template:  "booking_update",
		payload:   bookingPayload(recipientName, msg, d),
	})
}

// GuideVerified tells a guide their account passed verification.
func (n *Notifier) GuideVerified(ctx context.Context, tx *sql.Tx, guideID uint64, guideName, guideEmail string, adminID uint64) (*q.EmailQueuedEvent, error) {
	msg := "Your guide account has been verified. You can now publish tours."
	note := &model.Notification{
		RecipientID: guideID,
		SenderID:    u64ptr(adminID),
		Type:        model.NotifGuideVerified,
		Message:     msg,
	}
	return n.notifyTx(ctx, tx, note, &emailSpec{
		recipient: guideEmail,
		subject:   "Your guide account is verified",
		template:  "account_update",
		payload:   map[string]any{"name": guideName, "message": msg},
	})
}

// TourBlockToggled tells the owning guide their tour was blocked or
// unblocked by moderation.  In-app only; no email.
func (n *Notifier) TourBlockToggled(ctx context.Context, tx *sql.Tx, guideID, tourID uint64, title string, blocked bool, adminID uint64) error {
	ntype := model.NotifTourUnblocked
	msg := fmt.Sprintf("Your tour %q has been unblocked and is visible again.", title)
	if blocked {
		ntype = model.NotifTourBlocked
		msg = fmt.Sprintf("Your tour %q has been blocked by moderation and is hidden from travellers.", title)
	}
	note := &model.Notification{
		RecipientID: guideID,
		SenderID:    u64ptr(adminID),
		Type:        ntype,
		Message:     msg,
		TourID:      u64ptr(tourID),
	}
	_, err := n.notifyTx(ctx, tx, note, nil)
	return err
}

// Custom writes an admin-authored notification with a matching email.
func (n *Notifier) Custom(ctx context.Context, tx *sql.Tx, recipientID uint64, recipientName, recipientEmail string, adminID uint64, message string) (*q.EmailQueuedEvent, error) {
	note := &model.Notification{
		RecipientID: recipientID,
		SenderID:    u64ptr(adminID),
		Type:        model.NotifCustom,
		Message:     message,
	}
	return n.notifyTx(ctx, tx, note, &emailSpec{
		recipient: recipientEmail,
		subject:   "A message from the Journiq team",
		template:  "custom",
		payload:   map[string]any{"name": recipientName, "message": message},
	})
}

// WelcomeEmail queues the registration greeting.  There is no in-app
// notification for it, so only the outbox row is written.
func (n *Notifier) WelcomeEmail(ctx context.Context, tx *sql.Tx, name, email string) (*q.EmailQueuedEvent, error) {
	return n.queueEmailTx(ctx, tx, &emailSpec{
		recipient: email,
		subject:   "Welcome to Journiq",
		template:  "welcome",
		payload:   map[string]any{"name": name},
	})
}

func bookingPayload(name, msg string, d repository.BookingDetail) map[string]any {
	return map[string]any{
		"name":       name,
		"message":    msg,
		"tour_title": d.TourTitle,
		"day":        d.Booking.Day.Format("2006-01-02"),
		"num_people": d.Booking.NumPeople,
	}
}

func statusNotifType(status string) string {
	switch status {
	case model.BookingConfirmed:
		return model.NotifBookingConfirmed
	case model.BookingAccepted:
		return model.NotifBookingAccepted
	case model.BookingRejected:
		return model.NotifBookingRejected
	case model.BookingCancelled:
		return model.NotifBookingCancelled
	case model.BookingCompleted:
		return model.NotifBookingCompleted
	}
	return model.NotifCustom
}

func statusMessage(d repository.BookingDetail, newStatus string, toGuide bool) string {
	day := d.Booking.Day.Format("2006-01-02")
	if toGuide {
		return fmt.Sprintf("%s cancelled their booking of %q on %s.", d.TravellerName, d.TourTitle, day)
	}
	switch newStatus {
	case model.BookingConfirmed:
		return fmt.Sprintf("Your booking of %q on %s has been confirmed.", d.TourTitle, day)
	case model.BookingAccepted:
		return fmt.Sprintf("Your booking of %q on %s has been accepted by the guide.", d.TourTitle, day)
	case model.BookingRejected:
		return fmt.Sprintf("Your booking of %q on %s has been rejected. Reserved spots were released.", d.TourTitle, day)
	case model.BookingCancelled:
		return fmt.Sprintf("Your booking of %q on %s has been cancelled.", d.TourTitle, day)
	case model.BookingCompleted:
		return fmt.Sprintf("Your booking of %q on %s is complete. You can now leave a review.", d.TourTitle, day)
	}
	return fmt.Sprintf("Your booking of %q on %s changed to %s.", d.TourTitle, day, newStatus)
}

func u64ptr(v uint64) *uint64 { return &v }
