package repository

import (
	"context"
	"database/sql"

	"github.com/journiq/tour-booking-api/internal/model"
)

// MessageRepo provides persistence for traveller support messages and
// their single admin reply.
type MessageRepo struct {
	db *sql.DB
}

func NewMessageRepo(db *sql.DB) *MessageRepo { return &MessageRepo{db: db} }

const messageCols = "id,traveller_id,subject,body,status,admin_reply,replied_at,created_at,updated_at"

func scanMessage(row interface{ Scan(...interface{}) error }) (model.Message, error) {
	var (
		m         model.Message
		reply     sql.NullString
		repliedAt sql.NullTime
	)
	err := row.Scan(&m.ID, &m.TravellerID, &m.Subject, &m.Body, &m.Status, &reply, &repliedAt,
		&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return model.Message{}, err
	}
	m.AdminReply = strPtr(reply)
	m.RepliedAt = timePtr(repliedAt)
	return m, nil
}

// Create inserts a new unread message from a traveller.
func (r *MessageRepo) Create(ctx context.Context, travellerID uint64, subject, body string) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO messages (traveller_id, subject, body, status) VALUES (?,?,?,?)",
		travellerID, subject, body, model.MessageUnread)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ListForTraveller returns the traveller's own messages, newest first.
func (r *MessageRepo) ListForTraveller(ctx context.Context, travellerID uint64) ([]model.Message, error) {
	return r.list(ctx,
		"SELECT "+messageCols+" FROM messages WHERE traveller_id=? ORDER BY created_at DESC", travellerID)
}

// ListAll returns every message for the admin inbox.
func (r *MessageRepo) ListAll(ctx context.Context) ([]model.Message, error) {
	return r.list(ctx, "SELECT "+messageCols+" FROM messages ORDER BY created_at DESC")
}

func (r *MessageRepo) list(ctx context.Context, query string, args ...interface{}) ([]model.Message, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Message, 0)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// MarkRead flags a message as read by the admin team.
func (r *MessageRepo) MarkRead(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE messages SET status=? WHERE id=?", model.MessageRead, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Reply records the admin reply, stamps the reply time and marks the
// message read.  Returns the updated message.
func (r *MessageRepo) Reply(ctx context.Context, id uint64, reply string) (model.Message, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE messages SET admin_reply=?, replied_at=NOW(), status=? WHERE id=?",
		reply, model.MessageRead, id)
	if err != nil {
		return model.Message{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.Message{}, sql.ErrNoRows
	}
	row := r.db.QueryRowContext(ctx, "SELECT "+messageCols+" FROM messages WHERE id=?", id)
	return scanMessage(row)
}
