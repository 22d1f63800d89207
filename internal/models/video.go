package models

import (
	"time"

	"github.com/google/uuid"
)

// Video is an uploaded video with its relayed media artifacts and transcript.
//
// StorageVideoID and StorageAudioID hold the media store's object keys, needed to
// delete the remote artifacts later. They are set together and only when the
// transcript is non-empty; nil means remote deletion is skipped for this record.
type Video struct {
	ID             uuid.UUID `json:"id"`
	VideoURL       string    `json:"videoUrl"`
	AudioURL       string    `json:"audioUrl"`
	Transcript     string    `json:"transcript"` // empty when transcription failed or produced nothing
	Language       string    `json:"language"`
	StorageVideoID *string   `json:"storageVideoId,omitempty"`
	StorageAudioID *string   `json:"storageAudioId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// HasStorageIDs reports whether the record retains media-store object keys.
func (v *Video) HasStorageIDs() bool {
	return v.StorageVideoID != nil && v.StorageAudioID != nil
}
