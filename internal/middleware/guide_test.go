package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier struct {
	verified bool
	err      error
	askedFor uint64
}

func (s *stubVerifier) IsVerifiedGuide(_ context.Context, id uint64) (bool, error) {
	s.askedFor = id
	return s.verified, s.err
}

func runVerifiedGuide(t *testing.T, v *stubVerifier) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(CtxUserID, uint64(7))

	handler := RequireVerifiedGuide(v)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return rec, handler(c)
}

func TestRequireVerifiedGuideAllows(t *testing.T) {
	v := &stubVerifier{verified: true}
	rec, err := runVerifiedGuide(t, v)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(7), v.askedFor)
}

func TestRequireVerifiedGuideRejectsUnverified(t *testing.T) {
	rec, err := runVerifiedGuide(t, &stubVerifier{verified: false})
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"guide account is not verified"}`, rec.Body.String())
}

func TestRequireVerifiedGuidePropagatesLookupError(t *testing.T) {
	cause := errors.New("lookup failed")
	_, err := runVerifiedGuide(t, &stubVerifier{err: cause})
	assert.ErrorIs(t, err, cause)
}
