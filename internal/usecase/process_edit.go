package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/DanielSensual/Videoeditor/internal/domain/entity"
	"github.com/DanielSensual/Videoeditor/internal/domain/port"
	"github.com/DanielSensual/Videoeditor/internal/editorial"
	"github.com/DanielSensual/Videoeditor/internal/infra/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ProcessEditUseCase is the queue-facing wrapper around the analysis
// pipeline: download source, analyze, compose the highlight, upload,
// persist the job, publish status. Retry and DLQ semantics belong here,
// never inside the pipeline itself.
type ProcessEditUseCase struct {
	repo      port.JobRepository
	storage   port.VideoStorage
	source    port.FrameSource
	model     port.InferenceModel
	composer  port.Composer
	publisher port.StatusPublisher
	dlq       port.DLQPublisher
	notifier  port.FailureNotifier
	logger    *zap.Logger
	editorial editorial.Config
	tempDir   string
	maxRetry  int
	maxOutput float64
}

type ProcessEditConfig struct {
	Editorial         editorial.Config
	TempDir           string
	MaxRetries        int
	MaxOutputDuration float64
}

func NewProcessEditUseCase(
	repo port.JobRepository,
	storage port.VideoStorage,
	source port.FrameSource,
	model port.InferenceModel,
	composer port.Composer,
	publisher port.StatusPublisher,
	dlq port.DLQPublisher,
	notifier port.FailureNotifier,
	logger *zap.Logger,
	cfg ProcessEditConfig,
) *ProcessEditUseCase {
	return &ProcessEditUseCase{
		repo:      repo,
		storage:   storage,
		source:    source,
		model:     model,
		composer:  composer,
		publisher: publisher,
		dlq:       dlq,
		notifier:  notifier,
		logger:    logger,
		editorial: cfg.Editorial,
		tempDir:   cfg.TempDir,
		maxRetry:  cfg.MaxRetries,
		maxOutput: cfg.MaxOutputDuration,
	}
}

func (uc *ProcessEditUseCase) Execute(ctx context.Context, rawMsg []byte) error {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "ProcessEditUseCase.Execute")
	defer span.End()

	totalTimer := time.Now()

	var msg entity.EditRequestMessage
	if err := json.Unmarshal(rawMsg, &msg); err != nil {
		uc.logger.Error("failed to unmarshal message", zap.Error(err), zap.ByteString("body", rawMsg))
		_ = uc.dlq.PublishToDLQ(ctx, rawMsg, "unmarshal_error: "+err.Error())
		return nil
	}

	span.SetAttributes(
		attribute.String("job.id", msg.JobID.String()),
		attribute.String("job.video_key", msg.VideoKey),
	)

	log := uc.logger.With(zap.String("job_id", msg.JobID.String()), zap.String("video_key", msg.VideoKey))

	job, err := uc.repo.FindByID(ctx, msg.JobID)
	if err != nil {
		job = entity.NewJob(msg.UserID, msg.VideoKey, msg.FileSize, uc.maxRetry)
		job.ID = msg.JobID
		if err := uc.repo.Create(ctx, job); err != nil {
			log.Error("failed to create job record", zap.Error(err))
			return fmt.Errorf("create job: %w", err)
		}
	}

	if !job.CanRetry() {
		log.Warn("job exhausted retries, sending to DLQ")
		_ = uc.handlePermanentFailure(ctx, job, msg, rawMsg, "max retries exceeded")
		return nil
	}

	job.MarkProcessing()
	if err := uc.repo.Update(ctx, job); err != nil {
		log.Error("failed to update job to PROCESSING", zap.Error(err))
		return fmt.Errorf("update job: %w", err)
	}

	metrics.ActiveWorkers.Inc()
	defer metrics.ActiveWorkers.Dec()

	if err := uc.runEditPipeline(ctx, job, msg, rawMsg, log); err != nil {
		return err
	}

	metrics.JobsProcessedTotal.WithLabelValues("completed").Inc()
	metrics.StageDuration.WithLabelValues("total").Observe(time.Since(totalTimer).Seconds())

	return nil
}

func (uc *ProcessEditUseCase) runEditPipeline(
	ctx context.Context,
	job *entity.Job,
	msg entity.EditRequestMessage,
	rawMsg []byte,
	log *zap.Logger,
) error {
	tracer := otel.Tracer("usecase")

	workDir := filepath.Join(uc.tempDir, job.ID.String())
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return fmt.Errorf("create workdir: %w", err)
	}
	defer os.RemoveAll(workDir)

	// Download source from object storage.
	dlStart := time.Now()
	ctxDl, spanDl := tracer.Start(ctx, "download_video")
	sourcePath := filepath.Join(workDir, "source.mp4")
	if err := uc.storage.DownloadVideo(ctxDl, msg.VideoKey, sourcePath); err != nil {
		spanDl.End()
		log.Error("failed to download video", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "download_video: "+err.Error(), log)
	}
	spanDl.End()
	metrics.StageDuration.WithLabelValues("download").Observe(time.Since(dlStart).Seconds())

	// Per-job duration budget overrides the worker default when set.
	maxOutput := uc.maxOutput
	if msg.MaxDuration > 0 {
		maxOutput = msg.MaxDuration
	}

	analyzer := NewAnalyzeVideoUseCase(uc.source, uc.model, uc.editorial, maxOutput, log)
	result, err := analyzer.Analyze(ctx, sourcePath, &progressSink{log: log})
	if err != nil {
		log.Error("analysis failed", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "analyze: "+err.Error(), log)
	}

	if len(result.Ranges) == 0 {
		log.Warn("no segments retained, completing without output")
		job.MarkCompleted("", 0, result.Stats)
		if err := uc.repo.Update(ctx, job); err != nil {
			log.Error("failed to update job to COMPLETED", zap.Error(err))
			return fmt.Errorf("update job completed: %w", err)
		}
		uc.publishStatus(ctx, job, log)
		return nil
	}

	// Compose the highlight reel from the retained ranges.
	compStart := time.Now()
	ctxComp, spanComp := tracer.Start(ctx, "compose_highlight")
	outputPath := filepath.Join(workDir, "highlight.mp4")
	if err := uc.composer.Compose(ctxComp, sourcePath, result.Ranges, outputPath); err != nil {
		spanComp.End()
		log.Error("composition failed", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "compose: "+err.Error(), log)
	}
	spanComp.End()
	metrics.StageDuration.WithLabelValues("compose").Observe(time.Since(compStart).Seconds())

	// Upload the rendered highlight.
	upStart := time.Now()
	ctxUp, spanUp := tracer.Start(ctx, "upload_render")
	outputKey := fmt.Sprintf("%s/highlight_%s.mp4", msg.UserID, job.ID.String())
	outFile, err := os.Open(outputPath)
	if err != nil {
		spanUp.End()
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "open_render: "+err.Error(), log)
	}
	outStat, _ := outFile.Stat()
	if err := uc.storage.UploadRender(ctxUp, outputKey, outFile, outStat.Size()); err != nil {
		outFile.Close()
		spanUp.End()
		log.Error("render upload failed", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "upload_render: "+err.Error(), log)
	}
	outFile.Close()
	spanUp.End()
	metrics.StageDuration.WithLabelValues("upload").Observe(time.Since(upStart).Seconds())

	job.MarkCompleted(outputKey, len(result.Ranges), result.Stats)
	if err := uc.repo.Update(ctx, job); err != nil {
		log.Error("failed to update job to COMPLETED", zap.Error(err))
		return fmt.Errorf("update job completed: %w", err)
	}

	uc.publishStatus(ctx, job, log)

	log.Info("job completed successfully",
		zap.Int("frame_count", job.FrameCount),
		zap.Int("range_count", job.RangeCount),
		zap.Float64("retained_seconds", job.RetainedDuration),
		zap.Float64("compression_ratio", job.CompressionRatio),
		zap.String("output_key", outputKey),
	)

	return nil
}

func (uc *ProcessEditUseCase) handleRetryableFailure(
	ctx context.Context,
	job *entity.Job,
	msg entity.EditRequestMessage,
	rawMsg []byte,
	errMsg string,
	log *zap.Logger,
) error {
	job.MarkFailed(errMsg)
	_ = uc.repo.Update(ctx, job)

	if !job.CanRetry() {
		return uc.handlePermanentFailure(ctx, job, msg, rawMsg, errMsg)
	}

	metrics.RetryTotal.WithLabelValues(strconv.Itoa(job.Attempt)).Inc()
	uc.publishStatus(ctx, job, log)

	return fmt.Errorf("retryable failure (attempt %d/%d): %s", job.Attempt, job.MaxAttempts, errMsg)
}

func (uc *ProcessEditUseCase) handlePermanentFailure(
	ctx context.Context,
	job *entity.Job,
	msg entity.EditRequestMessage,
	rawMsg []byte,
	errMsg string,
) error {
	job.MarkFailed(errMsg)
	_ = uc.repo.Update(ctx, job)

	_ = uc.dlq.PublishToDLQ(ctx, rawMsg, errMsg)

	uc.publishStatus(ctx, job, uc.logger)

	metrics.JobsProcessedTotal.WithLabelValues("dlq").Inc()

	if msg.UserEmail != "" {
		_ = uc.notifier.NotifyFailure(ctx, msg.UserEmail, job.ID.String(), msg.VideoKey, errMsg)
	}

	return nil
}

func (uc *ProcessEditUseCase) publishStatus(ctx context.Context, job *entity.Job, log *zap.Logger) {
	statusMsg := entity.EditStatusMessage{
		JobID:            job.ID,
		UserID:           job.UserID,
		Status:           job.Status,
		VideoKey:         job.VideoKey,
		OutputKey:        job.OutputKey,
		FrameCount:       job.FrameCount,
		RangeCount:       job.RangeCount,
		Duration:         job.VideoDuration,
		RetainedDuration: job.RetainedDuration,
		CompressionRatio: job.CompressionRatio,
		ErrorMessage:     job.ErrorMessage,
		Attempt:          job.Attempt,
		MaxAttempts:      job.MaxAttempts,
	}
	data, _ := json.Marshal(statusMsg)
	if err := uc.publisher.PublishStatus(ctx, data); err != nil {
		log.Error("failed to publish status", zap.Error(err))
	}
}

// progressSink mirrors pipeline progress into the log and the progress
// gauge. It must stay cheap; it runs inline with the pipeline.
type progressSink struct {
	log *zap.Logger
}

func (s *progressSink) Publish(event entity.ProgressEvent) {
	metrics.PipelineProgress.Set(event.Progress)
	s.log.Debug("pipeline progress",
		zap.String("stage", string(event.Stage)),
		zap.Float64("progress", event.Progress),
		zap.String("message", event.Message),
	)
}
