package handler

import (
	"database/sql"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/journiq/tour-booking-api/internal/config"
	"github.com/journiq/tour-booking-api/internal/httperr"
	"github.com/journiq/tour-booking-api/internal/model"
	"github.com/journiq/tour-booking-api/internal/repository"
	"github.com/journiq/tour-booking-api/internal/service"
	"github.com/journiq/tour-booking-api/internal/utils"
)

// AuthHandler bundles dependencies for account endpoints.
type AuthHandler struct {
	Cfg      config.Config
	DB       *sql.DB
	Users    *repository.UserRepo
	Tokens   *repository.TokenRepo
	Notifier *service.Notifier
}

func NewAuthHandler(cfg config.Config, db *sql.DB, u *repository.UserRepo, t *repository.TokenRepo, n *service.Notifier) *AuthHandler {
	return &AuthHandler{Cfg: cfg, DB: db, Users: u, Tokens: t, Notifier: n}
}

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"` // traveller | guide
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type authResp struct {
	User    userView  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

// Register creates an account and returns a token pair immediately.
// New guides start unverified and cannot publish tours until an admin
// verifies them.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalid body")
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return httperr.Validation("name, email and password are required")
	}
	if !utils.ValidPassword(req.Password) {
		return httperr.Validation("password must be 8 to 72 characters")
	}
	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role == "" {
		role = model.RoleTraveller
	}
	if role != model.RoleTraveller && role != model.RoleGuide {
		return httperr.Validation("role must be traveller or guide")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Name, req.Email, req.Password, role, h.Cfg.BcryptCost)
	if err != nil {
		return repoErr(err, "user not found")
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, uid, role, req.Name, h.Cfg.AccessTTLMin)
	if err != nil {
		return httperr.Internal(err)
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return httperr.Internal(err)
	}
	if err := h.Tokens.StoreRefresh(ctx, uid, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return httperr.Internal(err)
	}

	h.sendWelcome(c, req.Name, req.Email)

	return c.JSON(http.StatusCreated, authResp{
		User:    userView{ID: uid, Name: req.Name, Email: req.Email, Role: role},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
	})
}

// sendWelcome queues the greeting email.  Failures only get logged;
// registration already succeeded.
func (h *AuthHandler) sendWelcome(c echo.Context, name, email string) {
	ctx, cancel := reqCtx(c)
	defer cancel()
	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Printf("auth: welcome email tx failed: %v", err)
		return
	}
	ev, err := h.Notifier.WelcomeEmail(ctx, tx, name, email)
	if err != nil {
		_ = tx.Rollback()
		log.Printf("auth: queue welcome email failed: %v", err)
		return
	}
	if err := tx.Commit(); err != nil {
		log.Printf("auth: welcome email commit failed: %v", err)
		return
	}
	h.Notifier.Publish(ctx, ev)
}

// Login verifies credentials and returns a new token pair.  Blocked
// accounts may not log in.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return httperr.Validation("email and password are required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
		}
		return httperr.Internal(err)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	if u.IsBlocked {
		return httperr.Forbidden("account is blocked")
	}

	return h.issuePair(c, http.StatusOK, u)
}

func (h *AuthHandler) issuePair(c echo.Context, status int, u model.User) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, u.Name, h.Cfg.AccessTTLMin)
	if err != nil {
		return httperr.Internal(err)
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return httperr.Internal(err)
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return httperr.Internal(err)
	}
	return c.JSON(status, authResp{
		User:    newUserView(u),
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
	})
}

// Refresh validates a refresh token by hash, revokes it and issues a
// fresh pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return httperr.BadRequest("refresh_token required")
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := reqCtx(c)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid refresh")
	}
	_ = h.Tokens.RevokeByHash(ctx, hash)

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid refresh")
		}
		return httperr.Internal(err)
	}
	if u.IsBlocked {
		return httperr.Forbidden("account is blocked")
	}
	return h.issuePair(c, http.StatusOK, u)
}

// RefreshAccess returns a new access token without rotating the
// refresh token.
func (h *AuthHandler) RefreshAccess(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return httperr.BadRequest("refresh_token required")
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := reqCtx(c)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid refresh")
	}
	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid refresh")
		}
		return httperr.Internal(err)
	}
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, u.Name, h.Cfg.AccessTTLMin)
	if err != nil {
		return httperr.Internal(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access": tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Logout revokes the supplied refresh token, or every session of the
// authenticated user when no token is given.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)
	refreshToken := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := reqCtx(c)
	defer cancel()

	if refreshToken != "" {
		hash := utils.HashRefreshRaw(refreshToken)
		if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid refresh token")
		}
		if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
			return httperr.Internal(err)
		}
		return c.NoContent(http.StatusNoContent)
	}

	uid := currentUser(c)
	if uid == 0 {
		return httperr.BadRequest("provide refresh_token or an Authorization header")
	}
	if err := h.Tokens.RevokeAllForUser(ctx, uid); err != nil {
		return httperr.Internal(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated user's full profile.
func (h *AuthHandler) Me(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, currentUser(c))
	if err != nil {
		return repoErr(err, "user not found")
	}
	return c.JSON(http.StatusOK, newUserView(u))
}

type profileReq struct {
	Name           string  `json:"name"`
	Phone          *string `json:"phone"`
	Bio            *string `json:"bio"`
	Location       *string `json:"location"`
	ProfilePicture string  `json:"profile_picture"`
}

// UpdateProfile patches the caller's profile fields.
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	var req profileReq
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalid body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return httperr.Validation("name is required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	uid := currentUser(c)
	if err := h.Users.UpdateProfile(ctx, uid, req.Name, req.Phone, req.Bio, req.Location, req.ProfilePicture); err != nil {
		return repoErr(err, "user not found")
	}
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return repoErr(err, "user not found")
	}
	return c.JSON(http.StatusOK, newUserView(u))
}

type passwordReq struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword verifies the current password, stores the new hash
// and revokes every refresh token so other sessions must log in again.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req passwordReq
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalid body")
	}
	if !utils.ValidPassword(req.NewPassword) {
		return httperr.Validation("password must be 8 to 72 characters")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	uid := currentUser(c)
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return repoErr(err, "user not found")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.CurrentPassword) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	if err := h.Users.UpdatePassword(ctx, uid, req.NewPassword, h.Cfg.BcryptCost); err != nil {
		return httperr.Internal(err)
	}
	_ = h.Tokens.RevokeAllForUser(ctx, uid)
	return c.NoContent(http.StatusNoContent)
}
