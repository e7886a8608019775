package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	JobsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "videoeditor_jobs_processed_total",
		Help: "Total number of edit jobs processed, by status",
	}, []string{"status"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "videoeditor_stage_duration_seconds",
		Help:    "Duration of each pipeline stage",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
	}, []string{"stage"})

	FramesAnalyzedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "videoeditor_frames_analyzed_total",
		Help: "Total number of frames run through the inference model",
	})

	DecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "videoeditor_decisions_total",
		Help: "Total editorial verdicts, by decision",
	}, []string{"decision"})

	RangesRetainedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "videoeditor_ranges_retained_total",
		Help: "Total number of time ranges retained across all jobs",
	})

	CompressionRatio = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "videoeditor_compression_ratio",
		Help:    "Source duration over retained duration per job",
		Buckets: []float64{1, 2, 4, 8, 16, 32, 64},
	})

	PipelineProgress = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "videoeditor_pipeline_progress",
		Help: "Progress of the currently running pipeline, 0-100",
	})

	ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "videoeditor_active_workers",
		Help: "Number of currently active workers processing jobs",
	})

	RetryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "videoeditor_retry_total",
		Help: "Total number of retries",
	}, []string{"attempt"})
)
