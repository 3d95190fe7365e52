package handlers

import (
	"errors"
	"net/http"

	"musteat-service/internal/services"
	"musteat-service/pkg/response"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	messageService services.MessageService
}

func NewMessageHandler(messageService services.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// List godoc
// @Summary The caller's in-app messages
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param type query string false "Filter: all, vote, comment, reply, system"
// @Success 200 {object} response.Envelope
// @Router /messages [get]
func (h *MessageHandler) List(c *gin.Context) {
	list, err := h.messageService.List(c.Request.Context(), c.GetString("user_id"), c.DefaultQuery("type", "all"))
	if err != nil {
		messageError(c, err)
		return
	}
	response.OK(c, list)
}

// UnreadCount godoc
// @Summary Unread message count
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /messages/unread [get]
func (h *MessageHandler) UnreadCount(c *gin.Context) {
	count, err := h.messageService.UnreadCount(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		messageError(c, err)
		return
	}
	response.OK(c, gin.H{"unread": count})
}

// MarkRead godoc
// @Summary Mark one message read
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param id path string true "Message ID"
// @Success 200 {object} response.Envelope
// @Router /messages/{id}/read [put]
func (h *MessageHandler) MarkRead(c *gin.Context) {
	if err := h.messageService.MarkRead(c.Request.Context(), c.GetString("user_id"), c.Param("id")); err != nil {
		messageError(c, err)
		return
	}
	response.OK(c, nil)
}

// MarkAllRead godoc
// @Summary Mark all messages read
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /messages/read-all [put]
func (h *MessageHandler) MarkAllRead(c *gin.Context) {
	if err := h.messageService.MarkAllRead(c.Request.Context(), c.GetString("user_id")); err != nil {
		messageError(c, err)
		return
	}
	response.OK(c, nil)
}

// Delete godoc
// @Summary Delete one message
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param id path string true "Message ID"
// @Success 200 {object} response.Envelope
// @Router /messages/{id} [delete]
func (h *MessageHandler) Delete(c *gin.Context) {
	if err := h.messageService.Delete(c.Request.Context(), c.GetString("user_id"), c.Param("id")); err != nil {
		messageError(c, err)
		return
	}
	response.OK(c, nil)
}

func messageError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidArgument):
		response.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrMessageNotFound):
		response.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrNotMessageOwner):
		response.Error(c, http.StatusForbidden, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, err.Error())
	}
}
