package repository

import (
	"context"
	"database/sql"

	"github.com/journiq/tour-booking-api/internal/model"
)

// NotificationRepo provides persistence for in-app notifications.
// Rows are created inside the transaction performing the originating
// state change; afterwards only the read/delete flags are mutated,
// always scoped to the recipient so users cannot touch each other's
// notifications.
type NotificationRepo struct {
	db *sql.DB
}

func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{db: db} }

// CreateTx inserts a notification within the caller's transaction.
func (r *NotificationRepo) CreateTx(ctx context.Context, tx *sql.Tx, n *model.Notification) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO notifications (recipient_id, sender_id, type, message, booking_id, tour_id)
		 VALUES (?,?,?,?,?,?)`,
		n.RecipientID, n.SenderID, n.Type, n.Message, n.BookingID, n.TourID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = uint64(id)
	return nil
}

// NotificationDetail adds the sender's display name and related tour
// title for list views.
type NotificationDetail struct {
	Notification model.Notification
	SenderName   *string
	TourTitle    *string
}

// ListForUser returns the recipient's non-deleted notifications,
// newest first, optionally unread ones only.
func (r *NotificationRepo) ListForUser(ctx context.Context, userID uint64, unreadOnly bool) ([]NotificationDetail, error) {
	q := `SELECT n.id, n.recipient_id, n.sender_id, n.type, n.message, n.booking_id, n.tour_id,
	             n.is_read, n.is_deleted, n.created_at, s.name, t.title
	        FROM notifications n
	        LEFT JOIN users s ON s.id = n.sender_id
	        LEFT JOIN tours t ON t.id = n.tour_id
	       WHERE n.recipient_id=? AND n.is_deleted=0`
	if unreadOnly {
		q += " AND n.is_read=0"
	}
	q += " ORDER BY n.created_at DESC"
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]NotificationDetail, 0)
	for rows.Next() {
		var (
			d          NotificationDetail
			senderID   sql.NullInt64
			bookingID  sql.NullInt64
			tourID     sql.NullInt64
			senderName sql.NullString
			tourTitle  sql.NullString
		)
		if err := rows.Scan(&d.Notification.ID, &d.Notification.RecipientID, &senderID,
			&d.Notification.Type, &d.Notification.Message, &bookingID, &tourID,
			&d.Notification.IsRead, &d.Notification.IsDeleted, &d.Notification.CreatedAt,
			&senderName, &tourTitle); err != nil {
			return nil, err
		}
		d.Notification.SenderID = u64Ptr(senderID)
		d.Notification.BookingID = u64Ptr(bookingID)
		d.Notification.TourID = u64Ptr(tourID)
		d.SenderName = strPtr(senderName)
		d.TourTitle = strPtr(tourTitle)
		out = append(out, d)
	}
	return out, rows.Err()
}

// MarkRead flags one of the recipient's notifications as read.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE notifications SET is_read=1 WHERE id=? AND recipient_id=? AND is_deleted=0",
		id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// MarkAllRead flags every unread notification of the recipient.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID uint64) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE notifications SET is_read=1 WHERE recipient_id=? AND is_read=0", userID)
	return err
}

// SoftDelete hides one of the recipient's notifications.
func (r *NotificationRepo) SoftDelete(ctx context.Context, id, userID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE notifications SET is_deleted=1 WHERE id=? AND recipient_id=? AND is_deleted=0",
		id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SoftDeleteAll hides all of the recipient's notifications.
func (r *NotificationRepo) SoftDeleteAll(ctx context.Context, userID uint64) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE notifications SET is_deleted=1 WHERE recipient_id=?", userID)
	return err
}
