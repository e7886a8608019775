package entity

type Stage string

const (
	StageLoading    Stage = "loading"
	StageExtracting Stage = "extracting"
	StageAnalyzing  Stage = "analyzing"
	StageDeciding   Stage = "deciding"
	StageComplete   Stage = "complete"
)

// ProgressEvent is delivered synchronously to the caller-supplied sink.
// Progress is 0-100 across the whole pipeline and non-decreasing within
// a stage. CurrentFrame/TotalFrames are zero outside the per-frame
// stages.
type ProgressEvent struct {
	Stage        Stage   `json:"stage"`
	Progress     float64 `json:"progress"`
	Message      string  `json:"message"`
	CurrentFrame int     `json:"current_frame,omitempty"`
	TotalFrames  int     `json:"total_frames,omitempty"`
}
