package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/abhinaba-ghosh/sarodwala/pkg/errors"
	"github.com/abhinaba-ghosh/sarodwala/pkg/response"
)

type messageDispatcher interface {
	SendMessage(ctx context.Context, phone, message string) (string, error)
}

// WhatsAppHandler exposes the generic notification send.
type WhatsAppHandler struct {
	dispatcher messageDispatcher
}

// NewWhatsAppHandler constructs the handler.
func NewWhatsAppHandler(dispatcher messageDispatcher) *WhatsAppHandler {
	return &WhatsAppHandler{dispatcher: dispatcher}
}

type sendMessageRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	Message     string `json:"message"`
}

// Send handles POST /whatsapp.
func (h *WhatsAppHandler) Send(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.PhoneNumber == "" || req.Message == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "Phone number and message are required"))
		return
	}

	sid, err := h.dispatcher.SendMessage(c.Request.Context(), req.PhoneNumber, req.Message)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Failed to send WhatsApp message"))
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"success": true, "messageSid": sid})
}
