package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/journiq/tour-booking-api/internal/httperr"
	"github.com/journiq/tour-booking-api/internal/repository"
)

// NotificationHandler serves a user's in-app notification inbox.
type NotificationHandler struct {
	Notifs *repository.NotificationRepo
}

func NewNotificationHandler(n *repository.NotificationRepo) *NotificationHandler {
	return &NotificationHandler{Notifs: n}
}

// List returns the caller's notifications, newest first.  Pass
// ?unread=1 for unread ones only.
func (h *NotificationHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	unreadOnly := c.QueryParam("unread") == "1" || c.QueryParam("unread") == "true"
	rows, err := h.Notifs.ListForUser(ctx, currentUser(c), unreadOnly)
	if err != nil {
		return httperr.Internal(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"notifications": newNotificationViews(rows)})
}

// ListUnread returns only the caller's unread notifications.
func (h *NotificationHandler) ListUnread(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	rows, err := h.Notifs.ListForUser(ctx, currentUser(c), true)
	if err != nil {
		return httperr.Internal(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"notifications": newNotificationViews(rows)})
}

// MarkRead marks one of the caller's notifications as read.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Notifs.MarkRead(ctx, id, currentUser(c)); err != nil {
		return repoErr(err, "notification not found")
	}
	return c.NoContent(http.StatusNoContent)
}

// MarkAllRead marks every notification of the caller as read.
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Notifs.MarkAllRead(ctx, currentUser(c)); err != nil {
		return httperr.Internal(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete removes one notification from the caller's inbox.
func (h *NotificationHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Notifs.SoftDelete(ctx, id, currentUser(c)); err != nil {
		return repoErr(err, "notification not found")
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteAll clears the caller's inbox.
func (h *NotificationHandler) DeleteAll(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Notifs.SoftDeleteAll(ctx, currentUser(c)); err != nil {
		return httperr.Internal(err)
	}
	return c.NoContent(http.StatusNoContent)
}
