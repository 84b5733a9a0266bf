package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"insurance_intake_backend/internal/chat/service"
	"insurance_intake_backend/internal/chat/transport"
	"insurance_intake_backend/platform/httpkit"
	"insurance_intake_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for conversations.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new chat handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Chat runs one conversation turn.
// POST /chat
func (h *Handler) Chat(c *gin.Context) {
	var req transport.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.HandleTurn(c.Request.Context(), req.ThreadID, req.Query)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ChatResponse{
		Response:  result.Response,
		ThreadID:  result.ThreadID,
		Timestamp: result.Timestamp.Format(time.RFC3339),
	})
}

// History returns the transcript for a thread.
// GET /thread/:id/history
func (h *Handler) History(c *gin.Context) {
	history, err := h.svc.GetHistory(c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.HistoryResponse{
		ThreadID:     history.ThreadID,
		MessageCount: history.MessageCount,
		Messages:     history.Messages,
	})
}

// Delete removes a thread. Deleting an unknown thread still succeeds.
// DELETE /thread/:id
func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")
	h.svc.DeleteThread(c.Request.Context(), id)
	httpkit.OK(c, transport.DeleteResponse{
		Message: fmt.Sprintf("Thread %s deleted successfully", id),
	})
}
