package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/journiq/tour-booking-api/internal/httperr"
	"github.com/journiq/tour-booking-api/internal/repository"
)

// MessageHandler lets travellers contact the admin team and read the
// replies.  The admin side lives in AdminHandler.
type MessageHandler struct {
	Messages *repository.MessageRepo
}

func NewMessageHandler(m *repository.MessageRepo) *MessageHandler {
	return &MessageHandler{Messages: m}
}

type createMessageReq struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Create sends a new support message.
func (h *MessageHandler) Create(c echo.Context) error {
	var req createMessageReq
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalid body")
	}
	req.Subject = strings.TrimSpace(req.Subject)
	req.Body = strings.TrimSpace(req.Body)
	if req.Subject == "" || req.Body == "" {
		return httperr.Validation("subject and body are required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	id, err := h.Messages.Create(ctx, currentUser(c), req.Subject, req.Body)
	if err != nil {
		return httperr.Internal(err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// MyMessages lists the caller's messages with any admin replies.
func (h *MessageHandler) MyMessages(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	rows, err := h.Messages.ListForTraveller(ctx, currentUser(c))
	if err != nil {
		return httperr.Internal(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"messages": newMessageViews(rows)})
}
