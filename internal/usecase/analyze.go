package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/DanielSensual/Videoeditor/internal/domain/entity"
	"github.com/DanielSensual/Videoeditor/internal/domain/port"
	"github.com/DanielSensual/Videoeditor/internal/editorial"
	"github.com/DanielSensual/Videoeditor/internal/infra/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// AnalyzeVideoUseCase drives one source video through the editorial
// pipeline: load model, probe, sample frames one at a time, decide per
// frame, coalesce verdicts into ranges, apply the duration budget,
// compute stats. Frames are never processed concurrently; that keeps
// peak memory and inference load bounded.
type AnalyzeVideoUseCase struct {
	source            port.FrameSource
	model             port.InferenceModel
	engine            *editorial.Engine
	cfg               editorial.Config
	maxOutputDuration float64
	logger            *zap.Logger
}

func NewAnalyzeVideoUseCase(
	source port.FrameSource,
	model port.InferenceModel,
	cfg editorial.Config,
	maxOutputDuration float64,
	logger *zap.Logger,
) *AnalyzeVideoUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyzeVideoUseCase{
		source:            source,
		model:             model,
		engine:            editorial.NewEngine(cfg, logger),
		cfg:               cfg,
		maxOutputDuration: maxOutputDuration,
		logger:            logger,
	}
}

type nopSink struct{}

func (nopSink) Publish(entity.ProgressEvent) {}

// Analyze runs the whole pipeline over one video. Any collaborator
// error aborts the run; there is no retry and no partial result.
func (uc *AnalyzeVideoUseCase) Analyze(ctx context.Context, videoPath string, sink port.ProgressSink) (*entity.AnalysisResult, error) {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "AnalyzeVideoUseCase.Analyze")
	defer span.End()

	if sink == nil {
		sink = nopSink{}
	}

	loadStart := time.Now()
	sink.Publish(entity.ProgressEvent{Stage: entity.StageLoading, Progress: 0, Message: "loading inference model"})
	if err := uc.model.Load(ctx); err != nil {
		return nil, fmt.Errorf("load inference model: %w", err)
	}
	sink.Publish(entity.ProgressEvent{Stage: entity.StageLoading, Progress: 100, Message: "inference model ready"})
	metrics.StageDuration.WithLabelValues("loading").Observe(time.Since(loadStart).Seconds())

	info, err := uc.source.Probe(ctx, videoPath)
	if err != nil {
		return nil, fmt.Errorf("probe video: %w", err)
	}
	span.SetAttributes(attribute.Float64("video.duration", info.Duration))

	expected := uc.expectedFrames(info)
	frames, decisions, err := uc.analyzeFrames(ctx, videoPath, info, expected, sink)
	if err != nil {
		return nil, err
	}

	decideStart := time.Now()
	_, spanDecide := tracer.Start(ctx, "coalesce_ranges")
	sink.Publish(entity.ProgressEvent{Stage: entity.StageDeciding, Progress: 95, Message: "coalescing retained ranges"})

	ranges, err := editorial.Coalesce(decisions, uc.cfg)
	if err != nil {
		spanDecide.End()
		return nil, fmt.Errorf("coalesce verdicts: %w", err)
	}
	if uc.maxOutputDuration > 0 {
		ranges = editorial.LimitDuration(ranges, uc.maxOutputDuration)
	}
	spanDecide.End()
	metrics.StageDuration.WithLabelValues("deciding").Observe(time.Since(decideStart).Seconds())
	metrics.RangesRetainedTotal.Add(float64(len(ranges)))

	stats := buildStats(info.Duration, decisions, ranges)
	metrics.CompressionRatio.Observe(stats.CompressionRatio)

	summary := fmt.Sprintf("retained %d ranges (%.1fs of %.1fs, ratio %.1fx)",
		len(ranges), stats.RetainedDuration, stats.SourceDuration, stats.CompressionRatio)
	sink.Publish(entity.ProgressEvent{Stage: entity.StageComplete, Progress: 100, Message: summary})

	uc.logger.Info("analysis complete",
		zap.Int("frames", stats.TotalFrames),
		zap.Int("ranges", len(ranges)),
		zap.Float64("retained_seconds", stats.RetainedDuration),
		zap.Float64("compression_ratio", stats.CompressionRatio),
	)

	return &entity.AnalysisResult{
		Ranges:    ranges,
		Frames:    frames,
		Decisions: decisions,
		Stats:     stats,
	}, nil
}

func (uc *AnalyzeVideoUseCase) analyzeFrames(
	ctx context.Context,
	videoPath string,
	info port.VideoInfo,
	expected int,
	sink port.ProgressSink,
) ([]entity.FrameMetadata, []entity.FrameDecision, error) {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "analyze_frames")
	defer span.End()

	stageStart := time.Now()
	stream, err := uc.source.Stream(ctx, videoPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open frame stream: %w", err)
	}
	defer stream.Close()

	var (
		frames    []entity.FrameMetadata
		decisions []entity.FrameDecision
		produced  int
	)

	for {
		frame, err := stream.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("next frame: %w", err)
		}

		produced++
		sink.Publish(entity.ProgressEvent{
			Stage:        entity.StageExtracting,
			Progress:     math.Min(50, float64(produced)/float64(expected)*50),
			Message:      fmt.Sprintf("extracted frame %d/%d", produced, expected),
			CurrentFrame: produced,
			TotalFrames:  expected,
		})

		annotation, err := uc.model.Annotate(ctx, frame.Payload)
		if err != nil {
			frame.Release()
			return nil, nil, fmt.Errorf("annotate frame %d: %w", frame.Index, err)
		}
		metrics.FramesAnalyzedTotal.Inc()

		sink.Publish(entity.ProgressEvent{
			Stage:        entity.StageAnalyzing,
			Progress:     math.Min(90, 50+float64(produced)/float64(expected)*40),
			Message:      fmt.Sprintf("analyzed frame %d/%d", produced, expected),
			CurrentFrame: produced,
			TotalFrames:  expected,
		})

		meta := entity.FrameMetadata{
			Timestamp:      frame.Timestamp,
			FrameIndex:     frame.Index,
			VideoDuration:  info.Duration,
			AestheticScore: annotation.AestheticScore,
			Confidence:     annotation.Confidence,
			Labels:         annotation.Labels,
		}
		decision := uc.engine.Decide(meta)
		metrics.DecisionsTotal.WithLabelValues(string(decision.Decision)).Inc()

		frames = append(frames, meta)
		decisions = append(decisions, decision)

		// The raw payload is owned by this iteration only; release it
		// before pulling the next frame.
		if err := frame.Release(); err != nil {
			uc.logger.Warn("frame release failed", zap.Int("frame", frame.Index), zap.Error(err))
		}
	}

	metrics.StageDuration.WithLabelValues("analyzing").Observe(time.Since(stageStart).Seconds())
	return frames, decisions, nil
}

func (uc *AnalyzeVideoUseCase) expectedFrames(info port.VideoInfo) int {
	expected := int(math.Ceil(info.Duration / uc.cfg.FrameWindow))
	if expected < 1 {
		expected = 1
	}
	return expected
}

func buildStats(sourceDuration float64, decisions []entity.FrameDecision, ranges []entity.TimeRange) entity.AnalysisStats {
	stats := entity.AnalysisStats{
		TotalFrames:    len(decisions),
		SourceDuration: sourceDuration,
	}
	for _, d := range decisions {
		switch d.Decision {
		case entity.DecisionKeep:
			stats.KeptFrames++
		case entity.DecisionHighlight:
			stats.HighlightedFrames++
		default:
			stats.DiscardedFrames++
		}
	}
	for _, r := range ranges {
		stats.RetainedDuration += r.Duration()
	}
	if stats.RetainedDuration > 0 {
		stats.CompressionRatio = stats.SourceDuration / stats.RetainedDuration
	} else {
		stats.CompressionRatio = 1
	}
	return stats
}
