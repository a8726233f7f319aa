package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// GuideVerifier answers whether an account is a verified, unblocked
// guide.  The user repository satisfies it.
type GuideVerifier interface {
	IsVerifiedGuide(ctx context.Context, id uint64) (bool, error)
}

// RequireVerifiedGuide rejects guides whose account an admin has not
// yet verified, or has blocked since the token was issued.  It sits
// behind JWTAuth and RequireRole(guide) on the guide group, so a
// freshly registered guide can log in and browse but cannot publish
// tours or act on bookings until verification.
func RequireVerifiedGuide(users GuideVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ok, err := users.IsVerifiedGuide(c.Request().Context(), UserID(c))
			if err != nil {
				return err
			}
			if !ok {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "guide account is not verified"})
			}
			return next(c)
		}
	}
}
