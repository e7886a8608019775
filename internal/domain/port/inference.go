package port

import "context"

// Annotation is the model's read of one frame. Labels are ordered by
// descending relevance and may be empty.
type Annotation struct {
	Labels         []string
	Confidence     float64
	AestheticScore float64
}

// InferenceModel must be loaded before the first Annotate call. Load is
// idempotent once it has succeeded. The model instance is created by the
// caller and shared across runs; there is no hidden process-wide cache.
type InferenceModel interface {
	Load(ctx context.Context) error
	Annotate(ctx context.Context, payload []byte) (Annotation, error)
}
