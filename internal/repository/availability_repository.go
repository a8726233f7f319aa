package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/journiq/tour-booking-api/internal/model"
)

// AvailabilityRepo maintains the per-date remaining-slot ledger in
// `tour_availability`.  The reserve operation is a single conditional
// UPDATE guarded by `slots >= n`, so two concurrent bookings for the
// last slot cannot both succeed; the loser sees zero rows affected
// and gets ErrInsufficientSlots.
type AvailabilityRepo struct {
	db *sql.DB
}

func NewAvailabilityRepo(db *sql.DB) *AvailabilityRepo { return &AvailabilityRepo{db: db} }

// ReplaceForTourTx rewrites the full ledger for a tour inside a
// transaction.  Used on tour create/update; entries are keyed by day,
// duplicates collapse onto the last value.
func (r *AvailabilityRepo) ReplaceForTourTx(ctx context.Context, tx *sql.Tx, tourID uint64, entries []model.AvailabilityEntry) error {
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM tour_availability WHERE tour_id=?", tourID); err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	query := "INSERT INTO tour_availability (tour_id, day, slots) VALUES "
	args := make([]interface{}, 0, len(entries)*3)
	for i, e := range entries {
		if i > 0 {
			query += ","
		}
		query += "(?,?,?)"
		args = append(args, tourID, dayOf(e.Day), e.Slots)
	}
	query += " ON DUPLICATE KEY UPDATE slots=VALUES(slots)"
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// ListForTour returns the ledger ordered by day.
func (r *AvailabilityRepo) ListForTour(ctx context.Context, tourID uint64) ([]model.AvailabilityEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, tour_id, day, slots FROM tour_availability WHERE tour_id=? ORDER BY day", tourID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.AvailabilityEntry, 0)
	for rows.Next() {
		var e model.AvailabilityEntry
		if err := rows.Scan(&e.ID, &e.TourID, &e.Day, &e.Slots); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Slots returns the remaining slots for a tour on a given day.
// sql.ErrNoRows means no ledger entry exists for that day.
func (r *AvailabilityRepo) Slots(ctx context.Context, tourID uint64, day time.Time) (uint32, error) {
	var slots uint32
	err := r.db.QueryRowContext(ctx,
		"SELECT slots FROM tour_availability WHERE tour_id=? AND day=? LIMIT 1",
		tourID, dayOf(day)).Scan(&slots)
	return slots, err
}

// ReserveTx atomically decrements the ledger entry by n.  The guard
// `slots >= n` makes the decrement and the capacity check one
// statement; zero rows affected means the day is missing or has too
// few slots, and the ledger is unchanged.
func (r *AvailabilityRepo) ReserveTx(ctx context.Context, tx *sql.Tx, tourID uint64, day time.Time, n uint32) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE tour_availability SET slots = slots - ? WHERE tour_id=? AND day=? AND slots >= ?",
		n, tourID, dayOf(day), n)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrInsufficientSlots
	}
	return nil
}

// ReleaseTx returns n slots to the ledger entry.  Invoked when a
// pending or confirmed booking is cancelled or rejected.  A missing
// entry is ignored: the guide may have rewritten the ledger since the
// booking was made, and restoring capacity onto a day that no longer
// exists would resurrect it.
func (r *AvailabilityRepo) ReleaseTx(ctx context.Context, tx *sql.Tx, tourID uint64, day time.Time, n uint32) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE tour_availability SET slots = slots + ? WHERE tour_id=? AND day=?",
		n, tourID, dayOf(day))
	return err
}
