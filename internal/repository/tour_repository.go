package repository

import (
	"context"
	"database/sql"

	"github.com/journiq/tour-booking-api/internal/model"
)

// TourRepo provides persistence for the `tours` table.  The derived
// rating columns are written only by RecomputeRating; everything else
// treats them as read-only.
type TourRepo struct {
	db *sql.DB
}

func NewTourRepo(db *sql.DB) *TourRepo { return &TourRepo{db: db} }

// DB exposes the underlying pool so handlers can open transactions
// spanning tours, availability, bookings and the outbox.
func (r *TourRepo) DB() *sql.DB { return r.db }

const tourCols = `id,guide_id,destination_id,title,description,itinerary,highlights,included,excluded,
meeting_point,category,duration_days,price_cents,rating,ratings_count,images,
is_active,is_blocked,is_deleted,created_at,updated_at`

func scanTour(row interface{ Scan(...interface{}) error }) (model.Tour, error) {
	var (
		t                        model.Tour
		itin, high, inc, exc, im []byte
	)
	err := row.Scan(&t.ID, &t.GuideID, &t.DestinationID, &t.Title, &t.Description,
		&itin, &high, &inc, &exc,
		&t.MeetingPoint, &t.Category, &t.DurationDays, &t.PriceCents, &t.Rating, &t.RatingsCount, &im,
		&t.IsActive, &t.IsBlocked, &t.IsDeleted, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return model.Tour{}, err
	}
	t.Itinerary = decodeList(itin)
	t.Highlights = decodeList(high)
	t.Included = decodeList(inc)
	t.Excluded = decodeList(exc)
	t.Images = decodeList(im)
	return t, nil
}

// CreateTx inserts a tour within the scope of an existing transaction
// and populates the generated ID.  The availability ledger is written
// separately by AvailabilityRepo in the same transaction.
func (r *TourRepo) CreateTx(ctx context.Context, tx *sql.Tx, t *model.Tour) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO tours (guide_id, destination_id, title, description, itinerary, highlights,
		 included, excluded, meeting_point, category, duration_days, price_cents, images)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		t.GuideID, t.DestinationID, t.Title, t.Description, encodeList(t.Itinerary), encodeList(t.Highlights),
		encodeList(t.Included), encodeList(t.Excluded), t.MeetingPoint, t.Category,
		t.DurationDays, t.PriceCents, encodeList(t.Images))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// GetByID fetches a non-deleted tour by id.
func (r *TourRepo) GetByID(ctx context.Context, id uint64) (model.Tour, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+tourCols+" FROM tours WHERE id=? AND is_deleted=0 LIMIT 1", id)
	return scanTour(row)
}

// GetPublicByID fetches a tour visible to guests: active, not blocked
// and not deleted.
func (r *TourRepo) GetPublicByID(ctx context.Context, id uint64) (model.Tour, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+tourCols+" FROM tours WHERE id=? AND is_deleted=0 AND is_blocked=0 AND is_active=1 LIMIT 1", id)
	return scanTour(row)
}

// ListPublic returns guest-visible tours, optionally filtered by
// destination and category, newest first.
func (r *TourRepo) ListPublic(ctx context.Context, destinationID uint64, category string) ([]model.Tour, error) {
	q := "SELECT " + tourCols + " FROM tours WHERE is_deleted=0 AND is_blocked=0 AND is_active=1"
	args := make([]interface{}, 0, 2)
	if destinationID != 0 {
		q += " AND destination_id=?"
		args = append(args, destinationID)
	}
	if category != "" {
		q += " AND category=?"
		args = append(args, category)
	}
	q += " ORDER BY created_at DESC"
	return r.list(ctx, q, args...)
}

// ListPublicByGuide returns a guide's guest-visible tours.
func (r *TourRepo) ListPublicByGuide(ctx context.Context, guideID uint64) ([]model.Tour, error) {
	return r.list(ctx,
		"SELECT "+tourCols+" FROM tours WHERE guide_id=? AND is_deleted=0 AND is_blocked=0 AND is_active=1 ORDER BY created_at DESC",
		guideID)
}

// ListByGuide returns all of a guide's own tours including inactive
// and blocked ones.
func (r *TourRepo) ListByGuide(ctx context.Context, guideID uint64) ([]model.Tour, error) {
	return r.list(ctx,
		"SELECT "+tourCols+" FROM tours WHERE guide_id=? AND is_deleted=0 ORDER BY created_at DESC",
		guideID)
}

// ListAll returns every non-deleted tour for moderation views.
func (r *TourRepo) ListAll(ctx context.Context) ([]model.Tour, error) {
	return r.list(ctx,
		"SELECT "+tourCols+" FROM tours WHERE is_deleted=0 ORDER BY created_at DESC")
}

func (r *TourRepo) list(ctx context.Context, query string, args ...interface{}) ([]model.Tour, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tours := make([]model.Tour, 0)
	for rows.Next() {
		t, err := scanTour(rows)
		if err != nil {
			return nil, err
		}
		tours = append(tours, t)
	}
	return tours, rows.Err()
}

// ownerCheck returns ErrForbidden when the tour exists but belongs to
// a different guide, sql.ErrNoRows when it does not exist.
func (r *TourRepo) ownerCheck(ctx context.Context, tourID, guideID uint64) error {
	var actual uint64
	err := r.db.QueryRowContext(ctx,
		"SELECT guide_id FROM tours WHERE id=? AND is_deleted=0", tourID).Scan(&actual)
	if err != nil {
		return err
	}
	if actual != guideID {
		return ErrForbidden
	}
	return nil
}

// UpdateTx rewrites a tour's editable fields after verifying that the
// caller owns it.  Derived ratings and moderation flags are untouched.
func (r *TourRepo) UpdateTx(ctx context.Context, tx *sql.Tx, t *model.Tour, guideID uint64) error {
	if err := r.ownerCheck(ctx, t.ID, guideID); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx,
		`UPDATE tours SET destination_id=?, title=?, description=?, itinerary=?, highlights=?,
		 included=?, excluded=?, meeting_point=?, category=?, duration_days=?, price_cents=?, images=?
		 WHERE id=? AND is_deleted=0`,
		t.DestinationID, t.Title, t.Description, encodeList(t.Itinerary), encodeList(t.Highlights),
		encodeList(t.Included), encodeList(t.Excluded), t.MeetingPoint, t.Category,
		t.DurationDays, t.PriceCents, encodeList(t.Images), t.ID)
	return err
}

// SoftDelete marks a guide's own tour deleted.
func (r *TourRepo) SoftDelete(ctx context.Context, tourID, guideID uint64) error {
	if err := r.ownerCheck(ctx, tourID, guideID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, "UPDATE tours SET is_deleted=1 WHERE id=?", tourID)
	return err
}

// ToggleActive flips the guide's visibility switch and returns the
// new state.
func (r *TourRepo) ToggleActive(ctx context.Context, tourID, guideID uint64) (bool, error) {
	if err := r.ownerCheck(ctx, tourID, guideID); err != nil {
		return false, err
	}
	if _, err := r.db.ExecContext(ctx,
		"UPDATE tours SET is_active = NOT is_active WHERE id=?", tourID); err != nil {
		return false, err
	}
	var active bool
	err := r.db.QueryRowContext(ctx, "SELECT is_active FROM tours WHERE id=?", tourID).Scan(&active)
	return active, err
}

// ToggleBlock flips the admin moderation switch and returns the new
// state along with the owning guide (for the notification fan-out).
func (r *TourRepo) ToggleBlock(ctx context.Context, tourID uint64) (blocked bool, guideID uint64, err error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE tours SET is_blocked = NOT is_blocked WHERE id=? AND is_deleted=0", tourID)
	if err != nil {
		return false, 0, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, 0, sql.ErrNoRows
	}
	err = r.db.QueryRowContext(ctx,
		"SELECT is_blocked, guide_id FROM tours WHERE id=?", tourID).Scan(&blocked, &guideID)
	return blocked, guideID, err
}

// RecomputeRating refreshes the derived rating columns from the
// non-deleted reviews of the tour.  Running it twice with no review
// change in between is a no-op, so callers may fire it after every
// review mutation without coordination.
func (r *TourRepo) RecomputeRating(ctx context.Context, tourID uint64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE tours SET
		   rating = COALESCE((SELECT ROUND(AVG(rating),1) FROM reviews WHERE tour_id=? AND is_deleted=0), 0),
		   ratings_count = (SELECT COUNT(*) FROM reviews WHERE tour_id=? AND is_deleted=0)
		 WHERE id=?`,
		tourID, tourID, tourID)
	return err
}

// CountPublic returns the number of guest-visible tours (dashboard).
func (r *TourRepo) CountPublic(ctx context.Context) (uint64, error) {
	var n uint64
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM tours WHERE is_deleted=0 AND is_blocked=0 AND is_active=1").Scan(&n)
	return n, err
}
