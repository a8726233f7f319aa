package httperr

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func respond(t *testing.T, method string, err error) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	Handler(err, c)
	return rec
}

func TestHandlerTypedError(t *testing.T) {
	rec := respond(t, http.MethodGet, Conflict("booking already cancelled"))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"booking already cancelled"}`, rec.Body.String())
}

func TestHandlerInternalRedactsCause(t *testing.T) {
	rec := respond(t, http.MethodGet, Internal(errors.New("dial tcp: connection refused")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"something went wrong"}`, rec.Body.String())
}

func TestHandlerEchoError(t *testing.T) {
	rec := respond(t, http.MethodGet, echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"invalid credentials"}`, rec.Body.String())
}

func TestHandlerUnknownError(t *testing.T) {
	rec := respond(t, http.MethodGet, errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"something went wrong"}`, rec.Body.String())
}

func TestHandlerHeadRequestHasNoBody(t *testing.T) {
	rec := respond(t, http.MethodHead, NotFound("tour not found"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("row lock timeout")
	err := Internal(cause)
	assert.ErrorIs(t, err, cause)
}
