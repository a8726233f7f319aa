package repository

import (
	"context"
	"database/sql"

	"github.com/journiq/tour-booking-api/internal/model"
)

// ReviewRepo provides persistence for reviews.  The unique key on
// booking_id plus the pre-insert (user, tour) check enforce "one
// non-deleted review per tour per traveller".  Callers are expected
// to recompute the tour rating after any mutation here.
type ReviewRepo struct {
	db *sql.DB
}

func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{db: db} }

// ExistsForUserTour reports whether the user already has a
// non-deleted review for the tour.
func (r *ReviewRepo) ExistsForUserTour(ctx context.Context, userID, tourID uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM reviews WHERE user_id=? AND tour_id=? AND is_deleted=0 LIMIT 1",
		userID, tourID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Create inserts a review and populates the generated ID.  A
// duplicate booking reference yields ErrDuplicateReview.
func (r *ReviewRepo) Create(ctx context.Context, rev *model.Review) error {
	exists, err := r.ExistsForUserTour(ctx, rev.UserID, rev.TourID)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicateReview
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO reviews (tour_id, user_id, booking_id, rating, comment) VALUES (?,?,?,?,?)",
		rev.TourID, rev.UserID, rev.BookingID, rev.Rating, rev.Comment)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateReview
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rev.ID = uint64(id)
	return nil
}

// GetByID fetches a non-deleted review.
func (r *ReviewRepo) GetByID(ctx context.Context, id uint64) (model.Review, error) {
	var rev model.Review
	err := r.db.QueryRowContext(ctx,
		`SELECT id, tour_id, user_id, booking_id, rating, comment, is_deleted, created_at, updated_at
		   FROM reviews WHERE id=? AND is_deleted=0 LIMIT 1`, id).
		Scan(&rev.ID, &rev.TourID, &rev.UserID, &rev.BookingID, &rev.Rating, &rev.Comment,
			&rev.IsDeleted, &rev.CreatedAt, &rev.UpdatedAt)
	return rev, err
}

// Update rewrites rating and comment of the caller's own review and
// returns the tour ID so the aggregator can be triggered.
func (r *ReviewRepo) Update(ctx context.Context, id, userID uint64, rating float64, comment string) (uint64, error) {
	rev, err := r.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	if rev.UserID != userID {
		return 0, ErrForbidden
	}
	_, err = r.db.ExecContext(ctx,
		"UPDATE reviews SET rating=?, comment=? WHERE id=?", rating, comment, id)
	return rev.TourID, err
}

// SoftDelete marks the caller's own review deleted and returns the
// tour ID for rating recomputation.  Admins pass adminOverride to
// moderate any review.
func (r *ReviewRepo) SoftDelete(ctx context.Context, id, userID uint64, adminOverride bool) (uint64, error) {
	rev, err := r.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	if !adminOverride && rev.UserID != userID {
		return 0, ErrForbidden
	}
	_, err = r.db.ExecContext(ctx, "UPDATE reviews SET is_deleted=1 WHERE id=?", id)
	return rev.TourID, err
}

// ReviewDetail is a review joined with its author's display name and
// the tour title.
type ReviewDetail struct {
	Review     model.Review
	AuthorName string
	TourTitle  string
}

const reviewDetailQuery = `SELECT r.id, r.tour_id, r.user_id, r.booking_id, r.rating, r.comment,
       r.is_deleted, r.created_at, r.updated_at, u.name, t.title
  FROM reviews r
  JOIN users u ON u.id = r.user_id
  JOIN tours t ON t.id = r.tour_id`

// ListForTour returns non-deleted reviews of a tour, newest first.
func (r *ReviewRepo) ListForTour(ctx context.Context, tourID uint64) ([]ReviewDetail, error) {
	return r.listDetails(ctx,
		reviewDetailQuery+" WHERE r.tour_id=? AND r.is_deleted=0 ORDER BY r.created_at DESC", tourID)
}

// ListForAuthor returns a traveller's own reviews.
func (r *ReviewRepo) ListForAuthor(ctx context.Context, userID uint64) ([]ReviewDetail, error) {
	return r.listDetails(ctx,
		reviewDetailQuery+" WHERE r.user_id=? AND r.is_deleted=0 ORDER BY r.created_at DESC", userID)
}

// ListForGuide returns reviews across all tours owned by the guide.
func (r *ReviewRepo) ListForGuide(ctx context.Context, guideID uint64) ([]ReviewDetail, error) {
	return r.listDetails(ctx,
		reviewDetailQuery+" WHERE t.guide_id=? AND r.is_deleted=0 ORDER BY r.created_at DESC", guideID)
}

// ListAll returns every non-deleted review (admin moderation).
func (r *ReviewRepo) ListAll(ctx context.Context) ([]ReviewDetail, error) {
	return r.listDetails(ctx, reviewDetailQuery+" WHERE r.is_deleted=0 ORDER BY r.created_at DESC")
}

func (r *ReviewRepo) listDetails(ctx context.Context, query string, args ...interface{}) ([]ReviewDetail, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ReviewDetail, 0)
	for rows.Next() {
		var d ReviewDetail
		if err := rows.Scan(&d.Review.ID, &d.Review.TourID, &d.Review.UserID, &d.Review.BookingID,
			&d.Review.Rating, &d.Review.Comment, &d.Review.IsDeleted,
			&d.Review.CreatedAt, &d.Review.UpdatedAt, &d.AuthorName, &d.TourTitle); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
