package model

import "time"

// Notification types; every in-app notification is one of these event
// kinds.  They are produced exclusively as side effects of booking,
// tour and guide state transitions.
const (
	NotifBookingRequest   = "booking_request"
	NotifBookingConfirmed = "booking_confirmed"
	NotifBookingAccepted  = "booking_accepted"
	NotifBookingRejected  = "booking_rejected"
	NotifBookingCancelled = "booking_cancelled"
	NotifBookingCompleted = "booking_completed"
	NotifGuideVerified    = "guide_verified"
	NotifTourBlocked      = "tour_blocked"
	NotifTourUnblocked    = "tour_unblocked"
	NotifCustom           = "custom"
)

// Notification is an in-app message for a user.  After creation only
// the read and delete flags ever change.
//
// Fields:
//  ID          – primary key identifier.
//  RecipientID – user the notification is addressed to.
//  SenderID    – user whose action produced it (null for system events).
//  Type        – one of the Notif* constants.
//  Message     – human-readable text.
//  BookingID   – related booking, if any.
//  TourID      – related tour, if any.
//  IsRead      – read flag, set by the recipient.
//  IsDeleted   – soft-delete flag, set by the recipient.
//  CreatedAt   – creation timestamp.
type Notification struct {
	ID          uint64    // notifications.id
	RecipientID uint64    // notifications.recipient_id
	SenderID    *uint64   // notifications.sender_id (nullable)
	Type        string    // notifications.type
	Message     string    // notifications.message
	BookingID   *uint64   // notifications.booking_id (nullable)
	TourID      *uint64   // notifications.tour_id (nullable)
	IsRead      bool      // notifications.is_read
	IsDeleted   bool      // notifications.is_deleted
	CreatedAt   time.Time // notifications.created_at
}
