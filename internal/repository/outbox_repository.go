package repository

import (
	"context"
	"database/sql"

	"github.com/journiq/tour-booking-api/internal/model"
)

// OutboxRepo manages the durable email outbox.  Entries are written in
// the same transaction as the state change that caused them, so an
// email is never promised without a matching record.
type OutboxRepo struct {
	db *sql.DB
}

func NewOutboxRepo(db *sql.DB) *OutboxRepo { return &OutboxRepo{db: db} }

const outboxCols = "id,uuid,recipient,subject,template,payload,status,attempts,created_at,sent_at"

func scanOutbox(row interface{ Scan(...interface{}) error }) (model.OutboxEntry, error) {
	var (
		e      model.OutboxEntry
		sentAt sql.NullTime
	)
	err := row.Scan(&e.ID, &e.UUID, &e.Recipient, &e.Subject, &e.Template, &e.Payload,
		&e.Status, &e.Attempts, &e.CreatedAt, &sentAt)
	if err != nil {
		return model.OutboxEntry{}, err
	}
	e.SentAt = timePtr(sentAt)
	return e, nil
}

// CreateTx inserts a pending entry inside the caller's transaction.
func (r *OutboxRepo) CreateTx(ctx context.Context, tx *sql.Tx, uuid, recipient, subject, template string, payload []byte) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO email_outbox (uuid, recipient, subject, template, payload, status) VALUES (?,?,?,?,?,?)",
		uuid, recipient, subject, template, payload, model.OutboxPending)
	return err
}

// GetByUUID loads an entry by its broker identifier.
func (r *OutboxRepo) GetByUUID(ctx context.Context, uuid string) (model.OutboxEntry, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+outboxCols+" FROM email_outbox WHERE uuid=?", uuid)
	return scanOutbox(row)
}

// MarkSent records a successful delivery.
func (r *OutboxRepo) MarkSent(ctx context.Context, uuid string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE email_outbox SET status=?, sent_at=NOW(), attempts=attempts+1 WHERE uuid=? AND status<>?",
		model.OutboxSent, uuid, model.OutboxSent)
	return err
}

// MarkAttempt bumps the attempt counter after a failed delivery and
// flips the entry to failed once the retry budget is spent.
func (r *OutboxRepo) MarkAttempt(ctx context.Context, uuid string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE email_outbox SET attempts=attempts+1, status=CASE WHEN attempts+1 >= ? THEN ? ELSE status END WHERE uuid=? AND status=?",
		model.MaxOutboxAttempts, model.OutboxFailed, uuid, model.OutboxPending)
	return err
}

// ListPending returns pending entries that still have retry budget,
// oldest first.  Used by the sweeper to republish entries whose
// original publish was lost.
func (r *OutboxRepo) ListPending(ctx context.Context, limit int) ([]model.OutboxEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+outboxCols+" FROM email_outbox WHERE status=? AND attempts < ? ORDER BY created_at ASC LIMIT ?",
		model.OutboxPending, model.MaxOutboxAttempts, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.OutboxEntry, 0)
	for rows.Next() {
		e, err := scanOutbox(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
