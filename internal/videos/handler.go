package videos

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Manoranjanhere/EDUUB/pkg/response"
)

// UploadData is the public subset of a video record returned from POST /upload.
// Storage object keys are internal and never leave the server.
type UploadData struct {
	ID         uuid.UUID `json:"id"`
	VideoURL   string    `json:"videoUrl"`
	AudioURL   string    `json:"audioUrl"`
	Transcript string    `json:"transcript"`
	Language   string    `json:"language"`
}

// Handler handles video HTTP endpoints.
type Handler struct {
	svc     *Service
	tempDir string
	logger  *zap.Logger
}

// NewHandler creates a videos handler.
func NewHandler(svc *Service, tempDir string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, tempDir: tempDir, logger: logger}
}

// Upload handles POST /upload (multipart form field "video").
func (h *Handler) Upload(c *gin.Context) {
	file, err := c.FormFile("video")
	if err != nil {
		response.BadRequest(c, "missing video file")
		return
	}

	// Unique local name: nanosecond timestamp + original filename. Concurrent
	// uploads share the temp directory without colliding.
	name := fmt.Sprintf("%d-%s", time.Now().UnixNano(), filepath.Base(file.Filename))
	videoPath := filepath.Join(h.tempDir, name)
	if err := c.SaveUploadedFile(file, videoPath); err != nil {
		h.logger.Error("buffer upload failed", zap.Error(err), zap.String("path", videoPath))
		response.Internal(c, "failed to store uploaded file")
		return
	}

	v, err := h.svc.Upload(c.Request.Context(), videoPath)
	if err != nil {
		h.logger.Error("upload pipeline failed", zap.Error(err), zap.String("filename", file.Filename))
		response.Internal(c, err.Error())
		return
	}
	response.OK(c, UploadData{
		ID:         v.ID,
		VideoURL:   v.VideoURL,
		AudioURL:   v.AudioURL,
		Transcript: v.Transcript,
		Language:   v.Language,
	})
}

// List handles GET /videos.
func (h *Handler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list videos failed", zap.Error(err))
		response.Internal(c, "failed to list videos")
		return
	}
	response.OK(c, list)
}

// Delete handles DELETE /videos/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid video id")
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.NotFound(c, "video not found")
		case errors.Is(err, ErrStorageDelete):
			h.logger.Error("remote media deletion failed", zap.Error(err), zap.String("id", id.String()))
			response.Internal(c, "failed to delete remote media")
		default:
			h.logger.Error("delete video failed", zap.Error(err), zap.String("id", id.String()))
			response.Internal(c, "failed to delete video")
		}
		return
	}
	response.Message(c, "video deleted")
}
