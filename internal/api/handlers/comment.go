package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"musteat-service/internal/models"
	"musteat-service/internal/services"
	"musteat-service/pkg/response"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	commentService services.CommentService
}

func NewCommentHandler(commentService services.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// Add godoc
// @Summary Post a top-level comment
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.AddCommentRequest true "New comment"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /comments [post]
func (h *CommentHandler) Add(c *gin.Context) {
	var req models.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	comment, err := h.commentService.Add(c.Request.Context(), c.GetString("user_id"), &req)
	if err != nil {
		commentError(c, err)
		return
	}
	response.Created(c, comment)
}

// Reply godoc
// @Summary Reply to a comment
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ReplyCommentRequest true "Reply"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /comments/reply [post]
func (h *CommentHandler) Reply(c *gin.Context) {
	var req models.ReplyCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	comment, err := h.commentService.Reply(c.Request.Context(), c.GetString("user_id"), &req)
	if err != nil {
		commentError(c, err)
		return
	}
	response.Created(c, comment)
}

// List godoc
// @Summary Comments on an entry
// @Tags comments
// @Produce json
// @Param id path string true "Entry ID"
// @Param page query int false "Page" default(1)
// @Param pageSize query int false "Page size" default(10)
// @Success 200 {object} response.Envelope
// @Router /comments/entry/{id} [get]
func (h *CommentHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "10"))

	comments, err := h.commentService.List(c.Request.Context(), c.Param("id"), page, pageSize)
	if err != nil {
		commentError(c, err)
		return
	}
	response.OK(c, comments)
}

// Replies godoc
// @Summary Replies under one comment thread
// @Tags comments
// @Produce json
// @Param id path string true "Root comment ID"
// @Param page query int false "Page" default(1)
// @Param pageSize query int false "Page size" default(10)
// @Success 200 {object} response.Envelope
// @Router /comments/{id}/replies [get]
func (h *CommentHandler) Replies(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "10"))

	replies, err := h.commentService.Replies(c.Request.Context(), c.Param("id"), page, pageSize)
	if err != nil {
		commentError(c, err)
		return
	}
	response.OK(c, replies)
}

// ToggleLike godoc
// @Summary Like or unlike a comment
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /comments/{id}/like [post]
func (h *CommentHandler) ToggleLike(c *gin.Context) {
	liked, err := h.commentService.ToggleLike(c.Request.Context(), c.GetString("user_id"), c.Param("id"))
	if err != nil {
		commentError(c, err)
		return
	}
	response.OK(c, gin.H{"liked": liked})
}

// Delete godoc
// @Summary Delete the caller's comment
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /comments/{id} [delete]
func (h *CommentHandler) Delete(c *gin.Context) {
	if err := h.commentService.Delete(c.Request.Context(), c.GetString("user_id"), c.Param("id")); err != nil {
		commentError(c, err)
		return
	}
	response.OK(c, nil)
}

func commentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidArgument):
		response.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrEntryNotFound), errors.Is(err, services.ErrCommentNotFound):
		response.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrNotCommentOwner):
		response.Error(c, http.StatusForbidden, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, err.Error())
	}
}
