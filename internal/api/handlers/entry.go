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

type EntryHandler struct {
	entryService services.EntryService
}

func NewEntryHandler(entryService services.EntryService) *EntryHandler {
	return &EntryHandler{entryService: entryService}
}

// Create godoc
// @Summary Nominate a new entry
// @Tags entries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateEntryRequest true "New entry"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /entries [post]
func (h *EntryHandler) Create(c *gin.Context) {
	var req models.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	entry, err := h.entryService.Create(c.Request.Context(), c.GetString("user_id"), &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidArgument) {
			response.Error(c, http.StatusBadRequest, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.Created(c, entry)
}

// Get godoc
// @Summary Entry detail
// @Tags entries
// @Produce json
// @Param id path string true "Entry ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /entries/{id} [get]
func (h *EntryHandler) Get(c *gin.Context) {
	entry, err := h.entryService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrEntryNotFound) {
			response.Error(c, http.StatusNotFound, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.OK(c, entry)
}

// Ranking godoc
// @Summary Ranked board
// @Description Entries ordered by vote total, cache-backed for the first page.
// @Tags entries
// @Produce json
// @Param limit query int false "Page size" default(50)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} response.Envelope
// @Router /entries/ranking [get]
func (h *EntryHandler) Ranking(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	board, err := h.entryService.Ranking(c.Request.Context(), limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.OK(c, board)
}
