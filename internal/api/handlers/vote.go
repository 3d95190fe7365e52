package handlers

import (
	"errors"
	"net/http"

	"musteat-service/internal/models"
	"musteat-service/internal/services"
	"musteat-service/pkg/response"

	"github.com/gin-gonic/gin"
)

type VoteHandler struct {
	voteService services.VoteService
}

func NewVoteHandler(voteService services.VoteService) *VoteHandler {
	return &VoteHandler{voteService: voteService}
}

// CastUpvote godoc
// @Summary Cast an upvote
// @Description Cast today's free upvote on an entry. Returns NEED_SHARE when the free vote is already spent.
// @Tags votes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.VoteRequest true "Vote target"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /votes/up [post]
func (h *VoteHandler) CastUpvote(c *gin.Context) {
	h.cast(c, models.DirectionUp)
}

// CastDownvote godoc
// @Summary Cast a downvote
// @Description Cast today's free downvote on an entry.
// @Tags votes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.VoteRequest true "Vote target"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /votes/down [post]
func (h *VoteHandler) CastDownvote(c *gin.Context) {
	h.cast(c, models.DirectionDown)
}

func (h *VoteHandler) cast(c *gin.Context, direction models.Direction) {
	var req models.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	outcome, err := h.voteService.CastVote(c.Request.Context(), c.GetString("user_id"), req.EntryID, direction)
	if err != nil {
		voteError(c, err)
		return
	}
	writeOutcome(c, outcome)
}

// RedeemShareReward godoc
// @Summary Redeem a share reward
// @Description Exchange a completed share for one extra vote on an already-voted entry. Capped per day.
// @Tags votes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ShareRewardRequest true "Share reward claim"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /votes/share-reward [post]
func (h *VoteHandler) RedeemShareReward(c *gin.Context) {
	var req models.ShareRewardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	outcome, err := h.voteService.RedeemShareReward(c.Request.Context(), c.GetString("user_id"), req.EntryID, req.Direction)
	if err != nil {
		voteError(c, err)
		return
	}
	writeOutcome(c, outcome)
}

// TodayStatus godoc
// @Summary Today's vote status for one entry
// @Tags votes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Entry ID"
// @Success 200 {object} response.Envelope
// @Router /votes/status/{id} [get]
func (h *VoteHandler) TodayStatus(c *gin.Context) {
	status, err := h.voteService.TodayStatus(c.Request.Context(), c.GetString("user_id"), c.Param("id"))
	if err != nil {
		voteError(c, err)
		return
	}
	response.OK(c, status)
}

// MyVotes godoc
// @Summary The caller's vote history
// @Tags votes
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /votes/mine [get]
func (h *VoteHandler) MyVotes(c *gin.Context) {
	votes, err := h.voteService.UserVotes(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		voteError(c, err)
		return
	}
	response.OK(c, votes)
}

// Summary godoc
// @Summary Vote statistics for one entry
// @Tags votes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Entry ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /votes/summary/{id} [get]
func (h *VoteHandler) Summary(c *gin.Context) {
	summary, err := h.voteService.VoteSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		voteError(c, err)
		return
	}
	response.OK(c, summary)
}

// writeOutcome maps the engine's outcome to the wire envelope.
func writeOutcome(c *gin.Context, outcome services.VoteOutcome) {
	switch o := outcome.(type) {
	case services.Granted:
		response.OK(c, gin.H{"granted": true, "rewardCount": o.RewardCount})
	case services.NeedsShare:
		response.NeedShare(c, gin.H{"rewardCount": o.RewardCount})
	case services.NotYetVoted:
		response.Error(c, http.StatusBadRequest, "vote today before claiming a share reward")
	case services.RewardLimitReached:
		response.RewardLimit(c)
	default:
		response.Error(c, http.StatusInternalServerError, "unknown vote outcome")
	}
}

func voteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidArgument), errors.Is(err, services.ErrInvalidDirection):
		response.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrUserNotFound), errors.Is(err, services.ErrEntryNotFound):
		response.Error(c, http.StatusNotFound, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, err.Error())
	}
}
