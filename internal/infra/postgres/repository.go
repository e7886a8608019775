package postgres

import (
	"context"
	"fmt"

	"github.com/DanielSensual/Videoeditor/internal/domain/entity"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type JobRepository struct {
	pool *pgxpool.Pool
}

func NewJobRepository(pool *pgxpool.Pool) *JobRepository {
	return &JobRepository{pool: pool}
}

func (r *JobRepository) Create(ctx context.Context, job *entity.Job) error {
	query := `
		INSERT INTO edit_jobs (
			id, user_id, video_key, output_key, status, frame_count,
			range_count, file_size, video_duration, retained_duration,
			compression_ratio, attempt, max_attempts, error_message,
			created_at, updated_at, completed_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`

	_, err := r.pool.Exec(ctx, query,
		job.ID, job.UserID, job.VideoKey, job.OutputKey, string(job.Status),
		job.FrameCount, job.RangeCount, job.FileSize, job.VideoDuration,
		job.RetainedDuration, job.CompressionRatio,
		job.Attempt, job.MaxAttempts, job.ErrorMessage,
		job.CreatedAt, job.UpdatedAt, job.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

func (r *JobRepository) Update(ctx context.Context, job *entity.Job) error {
	query := `
		UPDATE edit_jobs SET
			status=$2, output_key=$3, frame_count=$4, range_count=$5,
			video_duration=$6, retained_duration=$7, compression_ratio=$8,
			attempt=$9, error_message=$10, updated_at=$11, completed_at=$12
		WHERE id=$1`

	_, err := r.pool.Exec(ctx, query,
		job.ID, string(job.Status), job.OutputKey, job.FrameCount,
		job.RangeCount, job.VideoDuration, job.RetainedDuration,
		job.CompressionRatio, job.Attempt, job.ErrorMessage,
		job.UpdatedAt, job.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	return nil
}

func (r *JobRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Job, error) {
	query := `
		SELECT id, user_id, video_key, output_key, status, frame_count,
			range_count, file_size, video_duration, retained_duration,
			compression_ratio, attempt, max_attempts, error_message,
			created_at, updated_at, completed_at
		FROM edit_jobs WHERE id=$1`

	job := &entity.Job{}
	var status string
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&job.ID, &job.UserID, &job.VideoKey, &job.OutputKey, &status,
		&job.FrameCount, &job.RangeCount, &job.FileSize, &job.VideoDuration,
		&job.RetainedDuration, &job.CompressionRatio,
		&job.Attempt, &job.MaxAttempts, &job.ErrorMessage,
		&job.CreatedAt, &job.UpdatedAt, &job.CompletedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("find job by id: %w", err)
	}
	job.Status = entity.JobStatus(status)
	return job, nil
}
