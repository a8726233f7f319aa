package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/journiq/tour-booking-api/internal/queue"
)

// notifyAfter runs after the admin's state change has committed, so a
// failing notification transaction must be absorbed, not returned.
func TestNotifyAfterSwallowsTxFailure(t *testing.T) {
	// A handle whose connections can never be established.
	db, err := sql.Open("mysql", "user:pass@tcp(127.0.0.1:1)/none")
	require.NoError(t, err)
	defer db.Close()

	h := &AdminHandler{DB: db}

	e := echo.New()
	req := httptest.NewRequest(http.MethodPatch, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	called := false
	h.notifyAfter(c, func(ctx context.Context, tx *sql.Tx) (*queue.EmailQueuedEvent, error) {
		called = true
		return nil, nil
	})
	assert.False(t, called, "queue callback must not run without a transaction")
}
