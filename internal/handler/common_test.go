package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/journiq/tour-booking-api/internal/httperr"
	"github.com/journiq/tour-booking-api/internal/repository"
)

func paramCtx(name, value string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames(name)
	c.SetParamValues(value)
	return c
}

func TestPathID(t *testing.T) {
	id, err := pathID(paramCtx("id", "42"), "id")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)

	for _, bad := range []string{"0", "-1", "abc", ""} {
		_, err := pathID(paramCtx("id", bad), "id")
		require.Error(t, err, bad)
		var he *httperr.Error
		require.ErrorAs(t, err, &he)
		assert.Equal(t, http.StatusBadRequest, he.Status)
	}
}

func TestParseDay(t *testing.T) {
	d, err := parseDay("2026-07-19")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 7, 19, 0, 0, 0, 0, time.UTC), d)

	for _, bad := range []string{"19-07-2026", "2026-07-19T10:00:00Z", "tomorrow", ""} {
		_, err := parseDay(bad)
		assert.Error(t, err, bad)
	}
}

func TestRepoErr(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{sql.ErrNoRows, http.StatusNotFound},
		{repository.ErrForbidden, http.StatusForbidden},
		{repository.ErrInsufficientSlots, http.StatusConflict},
		{repository.ErrDuplicateReview, http.StatusConflict},
		{repository.ErrEmailExists, http.StatusConflict},
		{repository.ErrConflict, http.StatusConflict},
		{errors.New("mystery"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		var he *httperr.Error
		require.ErrorAs(t, repoErr(tc.err, "not found"), &he, tc.err.Error())
		assert.Equal(t, tc.status, he.Status, tc.err.Error())
	}
}

func TestRepoErrNotFoundMessage(t *testing.T) {
	var he *httperr.Error
	require.ErrorAs(t, repoErr(sql.ErrNoRows, "tour not found"), &he)
	assert.Equal(t, "tour not found", he.Message)
}
