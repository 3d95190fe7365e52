package handlers

import (
	"errors"
	"net/http"

	"musteat-service/internal/services"
	"musteat-service/pkg/response"

	"github.com/gin-gonic/gin"
)

type SoundHandler struct {
	soundService services.SoundService
}

func NewSoundHandler(soundService services.SoundService) *SoundHandler {
	return &SoundHandler{soundService: soundService}
}

// Upload godoc
// @Summary Upload a custom action sound
// @Description Multipart upload of a short audio clip bound to a vote action.
// @Tags sounds
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param action formData string true "Action: vote or downvote"
// @Param name formData string false "Display name"
// @Param file formData file true "Audio clip"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /sounds [post]
func (h *SoundHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "audio file is required")
		return
	}

	sound, err := h.soundService.Upload(
		c.Request.Context(),
		c.GetString("user_id"),
		c.PostForm("action"),
		c.PostForm("name"),
		file,
	)
	if err != nil {
		soundError(c, err)
		return
	}
	response.Created(c, sound)
}

// List godoc
// @Summary The caller's sound bindings
// @Tags sounds
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /sounds [get]
func (h *SoundHandler) List(c *gin.Context) {
	sounds, err := h.soundService.ListByUser(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		soundError(c, err)
		return
	}
	response.OK(c, sounds)
}

// Delete godoc
// @Summary Remove a sound binding
// @Tags sounds
// @Produce json
// @Security BearerAuth
// @Param id path string true "Sound ID"
// @Success 200 {object} response.Envelope
// @Router /sounds/{id} [delete]
func (h *SoundHandler) Delete(c *gin.Context) {
	if err := h.soundService.Delete(c.Request.Context(), c.GetString("user_id"), c.Param("id")); err != nil {
		soundError(c, err)
		return
	}
	response.OK(c, nil)
}

func soundError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidArgument),
		errors.Is(err, services.ErrInvalidAction),
		errors.Is(err, services.ErrClipTooLarge),
		errors.Is(err, services.ErrUnsupportedClip):
		response.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrSoundNotFound):
		response.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrNotSoundOwner):
		response.Error(c, http.StatusForbidden, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, err.Error())
	}
}
