package entity

// FrameMetadata is one sampled instant of the source video, annotated by
// the inference model. Values are immutable once produced.
type FrameMetadata struct {
	Timestamp      float64
	FrameIndex     int
	VideoDuration  float64
	AestheticScore float64
	Confidence     float64
	Labels         []string
	// PreviewPath points at an on-disk thumbnail when one was kept.
	// It is the only field safe to persist; raw payloads never are.
	PreviewPath string
}
