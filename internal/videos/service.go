package videos

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Manoranjanhere/EDUUB/internal/models"
	"github.com/Manoranjanhere/EDUUB/internal/transcoder"
	"github.com/Manoranjanhere/EDUUB/internal/transcriber"
)

var (
	// ErrNotFound reports an unknown video id.
	ErrNotFound = errors.New("video not found")
	// ErrStorageDelete reports a failed remote media deletion. The metadata record
	// is left intact so the delete can be retried.
	ErrStorageDelete = errors.New("remote media deletion failed")
)

// MediaStore relays local media files to remote object storage and deletes them
// by the returned object key.
type MediaStore interface {
	UploadVideo(ctx context.Context, localPath string) (url, key string, err error)
	UploadAudio(ctx context.Context, localPath string) (url, key string, err error)
	DeleteObject(ctx context.Context, key string) error
}

// VideoRepository persists video metadata records.
type VideoRepository interface {
	Create(ctx context.Context, v *models.Video) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Video, error)
	List(ctx context.Context) ([]models.Video, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

// Service sequences the upload pipeline (relay, extract, relay, transcribe, persist)
// and the deletion flow for one video.
type Service struct {
	repo      VideoRepository
	media     MediaStore
	extractor transcoder.Extractor
	stt       transcriber.Transcriber
	tempDir   string
	logger    *zap.Logger
}

// NewService creates a video service.
func NewService(repo VideoRepository, media MediaStore, extractor transcoder.Extractor, stt transcriber.Transcriber, tempDir string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, media: media, extractor: extractor, stt: stt, tempDir: tempDir, logger: logger}
}

// Upload runs the pipeline for one locally buffered video file and returns the
// persisted record. The local video file and the derived audio file are removed
// before returning, whatever the outcome.
func (s *Service) Upload(ctx context.Context, videoPath string) (*models.Video, error) {
	audioPath := filepath.Join(s.tempDir, fmt.Sprintf("%d-audio.mp3", time.Now().UnixNano()))
	defer s.cleanup(videoPath, audioPath)

	videoURL, videoKey, err := s.media.UploadVideo(ctx, videoPath)
	if err != nil {
		return nil, fmt.Errorf("relay video: %w", err)
	}

	// On extraction or audio-relay failure the already-relayed video stays in the
	// store; no record points at it and no compensating delete is attempted.
	if err := s.extractor.Extract(ctx, videoPath, audioPath); err != nil {
		return nil, fmt.Errorf("extract audio: %w", err)
	}

	audioURL, audioKey, err := s.media.UploadAudio(ctx, audioPath)
	if err != nil {
		return nil, fmt.Errorf("relay audio: %w", err)
	}

	transcript, language := "", "en"
	result, err := s.stt.Transcribe(ctx, audioPath, "")
	if err != nil {
		// Degraded success: the record is persisted with an empty transcript.
		s.logger.Warn("transcription failed, continuing with empty transcript", zap.Error(err))
	} else {
		transcript = result.Text
		if result.Language != "" {
			language = result.Language
		}
	}

	v := &models.Video{
		VideoURL:   videoURL,
		AudioURL:   audioURL,
		Transcript: transcript,
		Language:   language,
	}
	// Keep object keys only for records that carry a transcript.
	if transcript != "" {
		v.StorageVideoID = &videoKey
		v.StorageAudioID = &audioKey
	}

	if err := s.repo.Create(ctx, v); err != nil {
		return nil, fmt.Errorf("persist video record: %w", err)
	}
	s.logger.Info("video uploaded",
		zap.String("id", v.ID.String()),
		zap.String("language", v.Language),
		zap.Bool("transcribed", transcript != ""),
	)
	return v, nil
}

// GetByID returns a video record, or ErrNotFound.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.Video, error) {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get video: %w", err)
	}
	if v == nil {
		return nil, ErrNotFound
	}
	return v, nil
}

// List returns all video records, newest first.
func (s *Service) List(ctx context.Context) ([]models.Video, error) {
	return s.repo.List(ctx)
}

// Delete removes a video's remote media and then its metadata record. When the
// record holds no storage keys (empty transcript at upload time) there is nothing
// to delete remotely and the flow goes straight to metadata removal. A remote
// deletion failure aborts before the metadata store is touched.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get video: %w", err)
	}
	if v == nil {
		return ErrNotFound
	}

	if v.HasStorageIDs() {
		if err := s.media.DeleteObject(ctx, *v.StorageVideoID); err != nil {
			return fmt.Errorf("%w: video %s: %v", ErrStorageDelete, *v.StorageVideoID, err)
		}
		if err := s.media.DeleteObject(ctx, *v.StorageAudioID); err != nil {
			return fmt.Errorf("%w: audio %s: %v", ErrStorageDelete, *v.StorageAudioID, err)
		}
	}

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("delete video record: %w", err)
	}
	s.logger.Info("video deleted", zap.String("id", id.String()))
	return nil
}

// cleanup removes local temp files produced for one upload. Failures are logged,
// never propagated.
func (s *Service) cleanup(paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := os.Remove(p); err != nil {
			s.logger.Warn("temp file cleanup failed", zap.String("path", p), zap.Error(err))
		}
	}
}
