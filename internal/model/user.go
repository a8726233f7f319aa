package model

import "time"

// Role names stored in users.role and carried in the JWT "role" claim.
const (
	RoleTraveller = "traveller"
	RoleGuide     = "guide"
	RoleAdmin     = "admin"
)

// User represents an application user record as stored in the
// `users` table.  A user is one of three roles: travellers book
// tours, guides publish them and admins moderate everything.
// Accounts are soft-deleted, never removed.
//
// Fields:
//  ID             – primary key identifier of the user.
//  Name           – display name.
//  Email          – unique email address (stored lowercase).
//  PasswordHash   – bcrypt hashed password.
//  Role           – one of traveller, guide, admin.
//  ProfilePicture – path string produced by the upload collaborator.
//  Phone          – optional contact number.
//  Bio            – optional short biography.
//  Location       – optional free-form location.
//  IsVerified     – guides only; flipped by admin action.
//  IsBlocked      – admin moderation flag.
//  IsDeleted      – soft-delete flag.
//  CreatedAt      – timestamp of creation.
//  UpdatedAt      – timestamp of last update.
type User struct {
	ID             uint64    // users.id
	Name           string    // users.name
	Email          string    // users.email
	PasswordHash   string    // users.password_hash
	Role           string    // users.role
	ProfilePicture string    // users.profile_picture
	Phone          *string   // users.phone (nullable)
	Bio            *string   // users.bio (nullable)
	Location       *string   // users.location (nullable)
	IsVerified     bool      // users.is_verified
	IsBlocked      bool      // users.is_blocked
	IsDeleted      bool      // users.is_deleted
	CreatedAt      time.Time // users.created_at
	UpdatedAt      time.Time // users.updated_at
}

// ValidRole reports whether the given string is a known role name.
func ValidRole(role string) bool {
	switch role {
	case RoleTraveller, RoleGuide, RoleAdmin:
		return true
	}
	return false
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user; only the SHA-256 hash of the raw
// token is stored.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
