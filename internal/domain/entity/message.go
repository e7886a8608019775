package entity

import "github.com/google/uuid"

// EditRequestMessage is the inbound message from the edit.request queue.
type EditRequestMessage struct {
	JobID       uuid.UUID `json:"job_id"`
	UserID      string    `json:"user_id"`
	VideoKey    string    `json:"video_key"`
	FileSize    int64     `json:"file_size"`
	UserEmail   string    `json:"user_email"`
	MaxDuration float64   `json:"max_duration_seconds,omitempty"`
}

// EditStatusMessage is the outbound message published to the edit.status queue.
type EditStatusMessage struct {
	JobID            uuid.UUID `json:"job_id"`
	UserID           string    `json:"user_id"`
	Status           JobStatus `json:"status"`
	VideoKey         string    `json:"video_key"`
	OutputKey        string    `json:"output_key,omitempty"`
	FrameCount       int       `json:"frame_count,omitempty"`
	RangeCount       int       `json:"range_count,omitempty"`
	Duration         float64   `json:"duration_seconds,omitempty"`
	RetainedDuration float64   `json:"retained_seconds,omitempty"`
	CompressionRatio float64   `json:"compression_ratio,omitempty"`
	ErrorMessage     string    `json:"error_message,omitempty"`
	Attempt          int       `json:"attempt"`
	MaxAttempts      int       `json:"max_attempts"`
}
