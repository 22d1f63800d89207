package videos

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Manoranjanhere/EDUUB/internal/models"
)

// Pool is the subset of pgxpool.Pool the repository needs (satisfied by pgxmock in tests).
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository handles video metadata persistence.
type Repository struct {
	pool Pool
}

// NewRepository creates a videos repository.
func NewRepository(pool Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new video record and fills in the generated id and timestamp.
func (r *Repository) Create(ctx context.Context, v *models.Video) error {
	const q = `INSERT INTO videos (video_url, audio_url, transcript, language, storage_video_id, storage_audio_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, v.VideoURL, v.AudioURL, v.Transcript, v.Language, v.StorageVideoID, v.StorageAudioID).
		Scan(&v.ID, &v.CreatedAt)
}

// GetByID returns a video by ID, or nil when no such record exists.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Video, error) {
	const q = `SELECT id, video_url, audio_url, transcript, language, storage_video_id, storage_audio_id, created_at
		FROM videos WHERE id = $1`
	var v models.Video
	err := r.pool.QueryRow(ctx, q, id).
		Scan(&v.ID, &v.VideoURL, &v.AudioURL, &v.Transcript, &v.Language, &v.StorageVideoID, &v.StorageAudioID, &v.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

// List returns all videos ordered by creation time, newest first.
func (r *Repository) List(ctx context.Context) ([]models.Video, error) {
	const q = `SELECT id, video_url, audio_url, transcript, language, storage_video_id, storage_audio_id, created_at
		FROM videos ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []models.Video{}
	for rows.Next() {
		var v models.Video
		if err := rows.Scan(&v.ID, &v.VideoURL, &v.AudioURL, &v.Transcript, &v.Language, &v.StorageVideoID, &v.StorageAudioID, &v.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, v)
	}
	return list, rows.Err()
}

// DeleteByID removes a video record.
func (r *Repository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM videos WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, id)
	return err
}
