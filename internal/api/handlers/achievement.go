package handlers

import (
	"errors"
	"net/http"

	"musteat-service/internal/models"
	"musteat-service/internal/services"
	"musteat-service/pkg/response"

	"github.com/gin-gonic/gin"
)

type AchievementHandler struct {
	achievementService services.AchievementService
}

func NewAchievementHandler(achievementService services.AchievementService) *AchievementHandler {
	return &AchievementHandler{achievementService: achievementService}
}

// Add godoc
// @Summary Post an achievement on a user's profile
// @Tags achievements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.AddAchievementRequest true "New achievement"
// @Success 201 {object} response.Envelope
// @Router /achievements [post]
func (h *AchievementHandler) Add(c *gin.Context) {
	var req models.AddAchievementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	achievement, err := h.achievementService.Add(c.Request.Context(), c.GetString("user_id"), &req)
	if err != nil {
		achievementError(c, err)
		return
	}
	response.Created(c, achievement)
}

// ListByUser godoc
// @Summary Achievements on one profile
// @Tags achievements
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Router /achievements/user/{id} [get]
func (h *AchievementHandler) ListByUser(c *gin.Context) {
	achievements, err := h.achievementService.ListByUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		achievementError(c, err)
		return
	}
	response.OK(c, achievements)
}

// Delete godoc
// @Summary Delete an achievement
// @Tags achievements
// @Produce json
// @Security BearerAuth
// @Param id path string true "Achievement ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /achievements/{id} [delete]
func (h *AchievementHandler) Delete(c *gin.Context) {
	if err := h.achievementService.Delete(c.Request.Context(), c.GetString("user_id"), c.Param("id")); err != nil {
		achievementError(c, err)
		return
	}
	response.OK(c, nil)
}

func achievementError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidArgument):
		response.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrAchievementNotFound):
		response.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrNotAchievementOwner):
		response.Error(c, http.StatusForbidden, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, err.Error())
	}
}
