package repository

import (
	"context"
	"database/sql"

	"github.com/journiq/tour-booking-api/internal/model"
)

// BookingRepo provides persistence for bookings.  Status transitions
// run inside transactions with the booking row locked, so the state
// machine check in the handler and the UPDATE that follows cannot
// interleave with a concurrent transition.
type BookingRepo struct {
	db *sql.DB
}

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying pool for handler-scoped transactions.
func (r *BookingRepo) DB() *sql.DB { return r.db }

// BookingDetail joins a booking with the tour and counterpart user
// fields every consumer of a transition needs: response shaping and
// the notification/email fan-out.
type BookingDetail struct {
	Booking        model.Booking
	TourTitle      string
	GuideID        uint64
	GuideName      string
	GuideEmail     string
	TravellerName  string
	TravellerEmail string
}

const bookingCols = `b.id, b.tour_id, b.traveller_id, b.day, b.num_people, b.total_price_cents, b.status,
b.service_quality, b.punctuality, b.satisfaction_survey, b.is_deleted, b.created_at, b.updated_at`

func scanBooking(row interface{ Scan(...interface{}) error }, dst *model.Booking, extra ...interface{}) error {
	var sq, pu, sa sql.NullInt64
	args := []interface{}{
		&dst.ID, &dst.TourID, &dst.TravellerID, &dst.Day, &dst.NumPeople, &dst.TotalPriceCents, &dst.Status,
		&sq, &pu, &sa, &dst.IsDeleted, &dst.CreatedAt, &dst.UpdatedAt,
	}
	args = append(args, extra...)
	if err := row.Scan(args...); err != nil {
		return err
	}
	if sq.Valid && pu.Valid && sa.Valid {
		dst.Experience = &model.Experience{
			ServiceQuality:     uint8(sq.Int64),
			Punctuality:        uint8(pu.Int64),
			SatisfactionSurvey: uint8(sa.Int64),
		}
	}
	return nil
}

// CreateTx inserts a booking inside the caller's transaction (the one
// that also decremented the availability ledger) and reads back the
// generated ID and timestamps.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (tour_id, traveller_id, day, num_people, total_price_cents, status)
		 VALUES (?,?,?,?,?,?)`,
		b.TourID, b.TravellerID, dayOf(b.Day), b.NumPeople, b.TotalPriceCents, b.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return tx.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM bookings WHERE id=?", b.ID).
		Scan(&b.CreatedAt, &b.UpdatedAt)
}

const detailQuery = `SELECT ` + bookingCols + `,
       t.title, t.guide_id, g.name, g.email, u.name, u.email
  FROM bookings b
  JOIN tours t ON t.id = b.tour_id
  JOIN users g ON g.id = t.guide_id
  JOIN users u ON u.id = b.traveller_id
 WHERE b.id = ?`

// GetDetail loads a booking with its tour and user context.
func (r *BookingRepo) GetDetail(ctx context.Context, id uint64) (*BookingDetail, error) {
	return r.detail(ctx, r.db.QueryRowContext(ctx, detailQuery, id))
}

// GetDetailTx is GetDetail with the booking row locked for the rest
// of the transaction.
func (r *BookingRepo) GetDetailTx(ctx context.Context, tx *sql.Tx, id uint64) (*BookingDetail, error) {
	return r.detail(ctx, tx.QueryRowContext(ctx, detailQuery+" FOR UPDATE", id))
}

func (r *BookingRepo) detail(ctx context.Context, row *sql.Row) (*BookingDetail, error) {
	var d BookingDetail
	err := scanBooking(row, &d.Booking,
		&d.TourTitle, &d.GuideID, &d.GuideName, &d.GuideEmail, &d.TravellerName, &d.TravellerEmail)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// BookingSummary is the list-view shape for traveller, guide and
// admin listings.
type BookingSummary struct {
	Booking       model.Booking
	TourTitle     string
	GuideName     string
	TravellerName string
}

const summaryQuery = `SELECT ` + bookingCols + `, t.title, g.name, u.name
  FROM bookings b
  JOIN tours t ON t.id = b.tour_id
  JOIN users g ON g.id = t.guide_id
  JOIN users u ON u.id = b.traveller_id`

// ListByTraveller returns a traveller's non-deleted bookings, newest
// first.
func (r *BookingRepo) ListByTraveller(ctx context.Context, travellerID uint64) ([]BookingSummary, error) {
	return r.listSummaries(ctx,
		summaryQuery+" WHERE b.traveller_id=? AND b.is_deleted=0 ORDER BY b.created_at DESC", travellerID)
}

// ListByGuide returns all bookings against a guide's tours.
func (r *BookingRepo) ListByGuide(ctx context.Context, guideID uint64) ([]BookingSummary, error) {
	return r.listSummaries(ctx,
		summaryQuery+" WHERE t.guide_id=? AND b.is_deleted=0 ORDER BY b.created_at DESC", guideID)
}

// ListAll returns every booking for admin moderation, including
// soft-deleted rows (they remain for audit).
func (r *BookingRepo) ListAll(ctx context.Context) ([]BookingSummary, error) {
	return r.listSummaries(ctx, summaryQuery+" ORDER BY b.created_at DESC")
}

func (r *BookingRepo) listSummaries(ctx context.Context, query string, args ...interface{}) ([]BookingSummary, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]BookingSummary, 0)
	for rows.Next() {
		var s BookingSummary
		if err := scanBooking(rows, &s.Booking, &s.TourTitle, &s.GuideName, &s.TravellerName); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// UpdateStatusTx writes the new status inside the caller's
// transaction.  The caller has already validated the transition
// against the state machine while holding the row lock.
func (r *BookingRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status string) error {
	_, err := tx.ExecContext(ctx, "UPDATE bookings SET status=? WHERE id=?", status, id)
	return err
}

// SetExperience stores the post-completion survey scores.
func (r *BookingRepo) SetExperience(ctx context.Context, id uint64, e model.Experience) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE bookings SET service_quality=?, punctuality=?, satisfaction_survey=? WHERE id=?",
		e.ServiceQuality, e.Punctuality, e.SatisfactionSurvey, id)
	return err
}

// SoftDelete marks a booking deleted.  Authority (owner, tour guide
// or admin) is established by the handler from GetDetail before the
// call.
func (r *BookingRepo) SoftDelete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE bookings SET is_deleted=1 WHERE id=? AND is_deleted=0", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CompletedBookingID returns the traveller's most recent completed
// booking on a tour.  Reviews must trace back to such a booking.
func (r *BookingRepo) CompletedBookingID(ctx context.Context, travellerID, tourID uint64) (uint64, error) {
	var id uint64
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM bookings
		  WHERE traveller_id=? AND tour_id=? AND status=? AND is_deleted=0
		  ORDER BY id DESC LIMIT 1`,
		travellerID, tourID, model.BookingCompleted).Scan(&id)
	return id, err
}

// CountByStatus returns booking counts per status (dashboard).
func (r *BookingRepo) CountByStatus(ctx context.Context) (map[string]uint64, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT status, COUNT(*) FROM bookings WHERE is_deleted=0 GROUP BY status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[string]uint64)
	for rows.Next() {
		var status string
		var n uint64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// RevenueCents sums completed booking totals (dashboard).
func (r *BookingRepo) RevenueCents(ctx context.Context) (uint64, error) {
	var total uint64
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(total_price_cents),0) FROM bookings WHERE status=? AND is_deleted=0",
		model.BookingCompleted).Scan(&total)
	return total, err
}
