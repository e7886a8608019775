package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DanielSensual/Videoeditor/internal/domain/port"
	"github.com/DanielSensual/Videoeditor/internal/editorial"
	"github.com/DanielSensual/Videoeditor/internal/infra/config"
	"github.com/DanielSensual/Videoeditor/internal/infra/email"
	"github.com/DanielSensual/Videoeditor/internal/infra/ffmpeg"
	"github.com/DanielSensual/Videoeditor/internal/infra/inference"
	"github.com/DanielSensual/Videoeditor/internal/infra/metrics"
	miniostorage "github.com/DanielSensual/Videoeditor/internal/infra/minio"
	"github.com/DanielSensual/Videoeditor/internal/infra/postgres"
	"github.com/DanielSensual/Videoeditor/internal/infra/rabbitmq"
	"github.com/DanielSensual/Videoeditor/internal/infra/tracing"
	"github.com/DanielSensual/Videoeditor/internal/usecase"
	"github.com/DanielSensual/Videoeditor/pkg/logger"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	fatalOnErr(err, "load config")

	log, err := logger.New(cfg.LogLevel)
	fatalOnErr(err, "init logger")
	defer log.Sync()

	log.Info("starting videoeditor worker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tracing (non-fatal if Jaeger unavailable)
	tp, err := tracing.InitTracer(ctx, cfg.JaegerEndpoint)
	if err != nil {
		log.Warn("tracing init failed, continuing without tracing", zap.Error(err))
	} else {
		defer tp.Shutdown(ctx)
	}

	// Database
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	fatalOnErr(err, "connect to postgres")
	defer pool.Close()

	err = postgres.RunMigrations(cfg.DatabaseURL, "migrations")
	if err != nil {
		log.Warn("migration warning", zap.Error(err))
	}

	// MinIO
	storage, err := miniostorage.NewStorage(miniostorage.StorageConfig{
		Endpoint:     cfg.MinIOEndpoint,
		AccessKey:    cfg.MinIOAccessKey,
		SecretKey:    cfg.MinIOSecretKey,
		UseSSL:       cfg.MinIOUseSSL,
		SourceBucket: cfg.MinIOSourceBucket,
		RenderBucket: cfg.MinIORenderBucket,
	})
	fatalOnErr(err, "create minio storage")
	fatalOnErr(storage.EnsureBuckets(ctx), "ensure minio buckets")

	// RabbitMQ publisher connection
	rmqConn, err := amqp.Dial(cfg.RabbitMQURL)
	fatalOnErr(err, "connect to rabbitmq for publisher")
	defer rmqConn.Close()

	pub, err := rabbitmq.NewPublisher(rmqConn, cfg.RabbitMQExchange)
	fatalOnErr(err, "create rabbitmq publisher")

	statusPub := rabbitmq.NewStatusPublisher(pub)
	dlqPub := rabbitmq.NewDLQPublisher(pub, cfg.RabbitMQDLQ)

	// Editorial config, validated once at startup.
	editorialCfg, err := editorial.NewConfig(
		editorial.WithAestheticThreshold(cfg.AestheticThreshold),
		editorial.WithConfidenceThreshold(cfg.ConfidenceThreshold),
		editorial.WithDomainMode(cfg.DomainMode),
		editorial.WithFrameWindow(cfg.SampleStride),
		editorial.WithMergeGap(cfg.MergeGap),
		editorial.WithMinSegmentDuration(cfg.MinSegmentDuration),
	)
	fatalOnErr(err, "build editorial config")

	// Infra adapters
	repo := postgres.NewJobRepository(pool)
	sampler := ffmpeg.NewSampler(cfg.SampleStride, cfg.MaxFrames, cfg.FrameFormat, cfg.TempDir, log)
	composer := ffmpeg.NewComposer("", "", 0, log)
	notifier := email.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, log)

	// The model instance is created here, owned by the caller, and
	// shared across every run.
	var model port.InferenceModel
	switch cfg.InferenceBackend {
	case "http":
		model = inference.NewHTTPModel(cfg.InferenceURL, time.Duration(cfg.InferenceTimeoutMs)*time.Millisecond, log)
	default:
		model = inference.NewHeuristicModel(log)
	}
	log.Info("inference backend selected", zap.String("backend", cfg.InferenceBackend))

	// Use case
	uc := usecase.NewProcessEditUseCase(
		repo, storage, sampler, model, composer,
		statusPub, dlqPub, notifier,
		log,
		usecase.ProcessEditConfig{
			Editorial:         editorialCfg,
			TempDir:           cfg.TempDir,
			MaxRetries:        cfg.MaxRetries,
			MaxOutputDuration: cfg.MaxOutputDuration,
		},
	)

	// Metrics server
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, log)

	// Consumer (worker pool)
	consumer, err := rabbitmq.NewConsumer(rabbitmq.ConsumerConfig{
		URL:         cfg.RabbitMQURL,
		Queue:       cfg.RabbitMQRequestQueue,
		Exchange:    cfg.RabbitMQExchange,
		DLQ:         cfg.RabbitMQDLQ,
		StatusQueue: cfg.RabbitMQStatusQueue,
		Prefetch:    cfg.RabbitMQPrefetch,
		WorkerCount: cfg.WorkerCount,
		BaseDelayMs: cfg.RetryBaseDelayMs,
	}, uc.Execute, log)
	fatalOnErr(err, "create consumer")

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	log.Info("videoeditor worker started, consuming messages")

	if err := consumer.Start(ctx); err != nil {
		log.Error("consumer error", zap.Error(err))
	}

	// Shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	metricsSrv.Shutdown(shutdownCtx)

	consumer.Close()
	log.Info("videoeditor worker stopped")
}

func fatalOnErr(err error, msg string) {
	if err != nil {
		panic(msg + ": " + err.Error())
	}
}
