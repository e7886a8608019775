package entity

// AnalysisStats aggregates one pipeline run.
type AnalysisStats struct {
	TotalFrames       int
	KeptFrames        int
	HighlightedFrames int
	DiscardedFrames   int
	SourceDuration    float64
	RetainedDuration  float64
	// CompressionRatio is source duration over retained duration,
	// defaulting to 1 when nothing was retained.
	CompressionRatio float64
}

// AnalysisResult is the complete outcome of a pipeline run. A failed run
// yields no AnalysisResult at all, never a partial one.
type AnalysisResult struct {
	Ranges    []TimeRange
	Frames    []FrameMetadata
	Decisions []FrameDecision
	Stats     AnalysisStats
}
