package qa

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Manoranjanhere/EDUUB/pkg/response"
)

// AskRequest is the body for POST /qa.
type AskRequest struct {
	VideoID  string `json:"videoId" binding:"required"`
	Question string `json:"question" binding:"required"`
}

// Handler handles QA HTTP endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a QA handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// Ask handles POST /qa.
func (h *Handler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	videoID, err := uuid.Parse(req.VideoID)
	if err != nil {
		response.BadRequest(c, "invalid video id")
		return
	}

	answer, err := h.svc.Ask(c.Request.Context(), videoID, req.Question)
	if err != nil {
		switch {
		case errors.Is(err, ErrVideoNotFound):
			response.NotFound(c, "video not found")
		case errors.Is(err, ErrModel):
			h.logger.Error("model call failed", zap.Error(err), zap.String("video_id", req.VideoID))
			response.Internal(c, "failed to answer question")
		default:
			h.logger.Error("qa failed", zap.Error(err), zap.String("video_id", req.VideoID))
			response.Internal(c, "failed to answer question")
		}
		return
	}
	response.OK(c, answer)
}
