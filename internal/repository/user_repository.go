package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/journiq/tour-booking-api/internal/model"
	"github.com/journiq/tour-booking-api/internal/utils"
)

// UserRepo provides persistence for the `users` table.  Users are
// soft-deleted only; every lookup excludes deleted rows.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = "id,name,email,password_hash,role,profile_picture,phone,bio,location,is_verified,is_blocked,is_deleted,created_at,updated_at"

func scanUser(row interface{ Scan(...interface{}) error }) (model.User, error) {
	var (
		u                  model.User
		phone, bio, locStr sql.NullString
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.ProfilePicture,
		&phone, &bio, &locStr, &u.IsVerified, &u.IsBlocked, &u.IsDeleted, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	u.Phone = strPtr(phone)
	u.Bio = strPtr(bio)
	u.Location = strPtr(locStr)
	return u, nil
}

// Create inserts a user and returns its ID.  The email is normalized
// to lowercase; a duplicate yields ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, name, email, password, role string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, role) VALUES (?,?,?,?)",
		name, email, hash, role)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a non-deleted user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE email=? AND is_deleted=0 LIMIT 1", email)
	return scanUser(row)
}

// GetByID fetches a non-deleted user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id=? AND is_deleted=0 LIMIT 1", id)
	return scanUser(row)
}

// UpdateProfile updates mutable profile fields.  Role, email and
// moderation flags are never changed here.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, name string, phone, bio, location *string, profilePicture string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET name=?, phone=?, bio=?, location=?, profile_picture=? WHERE id=? AND is_deleted=0`,
		name, phone, bio, location, profilePicture, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, password string, cost int) error {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=? WHERE id=? AND is_deleted=0", hash, id)
	return err
}

// List returns all non-deleted users, newest first.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	return r.list(ctx, "SELECT "+userCols+" FROM users WHERE is_deleted=0 ORDER BY created_at DESC")
}

// ListBlocked returns users currently blocked by an admin.
func (r *UserRepo) ListBlocked(ctx context.Context) ([]model.User, error) {
	return r.list(ctx, "SELECT "+userCols+" FROM users WHERE is_deleted=0 AND is_blocked=1 ORDER BY created_at DESC")
}

func (r *UserRepo) list(ctx context.Context, query string, args ...interface{}) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ToggleBlock flips the is_blocked flag and returns the new value.
func (r *UserRepo) ToggleBlock(ctx context.Context, id uint64) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET is_blocked = NOT is_blocked WHERE id=? AND is_deleted=0", id)
	if err != nil {
		return false, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, sql.ErrNoRows
	}
	var blocked bool
	err = r.DB.QueryRowContext(ctx, "SELECT is_blocked FROM users WHERE id=?", id).Scan(&blocked)
	return blocked, err
}

// VerifyGuide marks a guide account as verified.  Returns
// sql.ErrNoRows when the user does not exist or is not a guide.
func (r *UserRepo) VerifyGuide(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET is_verified=1 WHERE id=? AND role=? AND is_deleted=0", id, model.RoleGuide)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// distinguish "already verified" (fine) from "no such guide"
		var verified bool
		if err := r.DB.QueryRowContext(ctx,
			"SELECT is_verified FROM users WHERE id=? AND role=? AND is_deleted=0", id, model.RoleGuide).
			Scan(&verified); err != nil {
			return err
		}
	}
	return nil
}

// IsVerifiedGuide reports whether the user is a verified guide.  Used
// by the guide-gate middleware.
func (r *UserRepo) IsVerifiedGuide(ctx context.Context, id uint64) (bool, error) {
	var verified bool
	err := r.DB.QueryRowContext(ctx,
		"SELECT is_verified FROM users WHERE id=? AND role=? AND is_deleted=0 AND is_blocked=0",
		id, model.RoleGuide).Scan(&verified)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return verified, nil
}

// CountByRole returns the number of non-deleted users per role.
func (r *UserRepo) CountByRole(ctx context.Context) (map[string]uint64, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT role, COUNT(*) FROM users WHERE is_deleted=0 GROUP BY role")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[string]uint64)
	for rows.Next() {
		var role string
		var n uint64
		if err := rows.Scan(&role, &n); err != nil {
			return nil, err
		}
		counts[role] = n
	}
	return counts, rows.Err()
}
