package usecase

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/DanielSensual/Videoeditor/internal/domain/entity"
	"github.com/DanielSensual/Videoeditor/internal/domain/port"
	"github.com/DanielSensual/Videoeditor/internal/editorial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStream struct {
	frames   []*port.RawFrame
	idx      int
	released map[int]bool
	nextErr  error
}

func (s *fakeStream) Next(ctx context.Context) (*port.RawFrame, error) {
	if s.nextErr != nil && s.idx == len(s.frames) {
		return nil, s.nextErr
	}
	if s.idx >= len(s.frames) {
		return nil, io.EOF
	}
	frame := s.frames[s.idx]
	index := frame.Index
	frame.ReleaseFunc = func() error {
		s.released[index] = true
		return nil
	}
	s.idx++
	return frame, nil
}

func (s *fakeStream) Close() error { return nil }

type fakeSource struct {
	info   port.VideoInfo
	stream *fakeStream
}

func (s *fakeSource) Probe(ctx context.Context, videoPath string) (port.VideoInfo, error) {
	return s.info, nil
}

func (s *fakeSource) Stream(ctx context.Context, videoPath string) (port.FrameStream, error) {
	return s.stream, nil
}

type fakeModel struct {
	annotations []port.Annotation
	loadCalls   int
	loadErr     error
	annotateErr error
}

func (m *fakeModel) Load(ctx context.Context) error {
	m.loadCalls++
	return m.loadErr
}

func (m *fakeModel) Annotate(ctx context.Context, payload []byte) (port.Annotation, error) {
	if m.annotateErr != nil {
		return port.Annotation{}, m.annotateErr
	}
	a := m.annotations[0]
	if len(m.annotations) > 1 {
		m.annotations = m.annotations[1:]
	}
	return a, nil
}

type captureSink struct {
	events []entity.ProgressEvent
}

func (s *captureSink) Publish(event entity.ProgressEvent) {
	s.events = append(s.events, event)
}

func newFakeSource(duration float64, n int) *fakeSource {
	frames := make([]*port.RawFrame, 0, n)
	for i := 0; i < n; i++ {
		frames = append(frames, &port.RawFrame{
			Payload:       []byte{0xff},
			Timestamp:     float64(i),
			Index:         i,
			VideoDuration: duration,
		})
	}
	return &fakeSource{
		info:   port.VideoInfo{Duration: duration, Width: 1280, Height: 720},
		stream: &fakeStream{frames: frames, released: map[int]bool{}},
	}
}

func testConfig(t *testing.T) editorial.Config {
	t.Helper()
	cfg, err := editorial.NewConfig()
	require.NoError(t, err)
	return cfg
}

func TestAnalyzeHappyPath(t *testing.T) {
	source := newFakeSource(100, 4)
	model := &fakeModel{annotations: []port.Annotation{
		{Confidence: 0.9, AestheticScore: 0.8},
		{Confidence: 0.9, AestheticScore: 0.7},
		{Confidence: 0.9, AestheticScore: 0.1},
		{Labels: []string{"pool"}, Confidence: 0.9, AestheticScore: 0.9},
	}}
	sink := &captureSink{}

	uc := NewAnalyzeVideoUseCase(source, model, testConfig(t), 0, nil)
	result, err := uc.Analyze(context.Background(), "source.mp4", sink)
	require.NoError(t, err)

	assert.Equal(t, 1, model.loadCalls)
	assert.Equal(t, 4, result.Stats.TotalFrames)
	assert.Equal(t, 2, result.Stats.KeptFrames)
	assert.Equal(t, 1, result.Stats.HighlightedFrames)
	assert.Equal(t, 1, result.Stats.DiscardedFrames)
	assert.Len(t, result.Frames, 4)
	assert.Len(t, result.Decisions, 4)

	// Frames 0-1 merge to [0,2); frame 3 alone is [3,4).
	require.Len(t, result.Ranges, 2)
	assert.InDelta(t, 0.0, result.Ranges[0].Start, 1e-9)
	assert.InDelta(t, 2.0, result.Ranges[0].End, 1e-9)
	assert.InDelta(t, 3.0, result.Ranges[1].Start, 1e-9)
	assert.InDelta(t, 4.0, result.Ranges[1].End, 1e-9)

	// 3 retained seconds of a 100 second source.
	assert.InDelta(t, 3.0, result.Stats.RetainedDuration, 1e-9)
	assert.InDelta(t, 100.0/3.0, result.Stats.CompressionRatio, 1e-9)

	// Every raw payload was released during its own iteration.
	for i := 0; i < 4; i++ {
		assert.True(t, source.stream.released[i], "frame %d not released", i)
	}
}

func TestAnalyzeCompressionRatioDefaultsToOne(t *testing.T) {
	source := newFakeSource(100, 2)
	model := &fakeModel{annotations: []port.Annotation{
		{Confidence: 0.9, AestheticScore: 0.0},
	}}

	uc := NewAnalyzeVideoUseCase(source, model, testConfig(t), 0, nil)
	result, err := uc.Analyze(context.Background(), "source.mp4", nil)
	require.NoError(t, err)

	assert.Empty(t, result.Ranges)
	assert.InDelta(t, 0.0, result.Stats.RetainedDuration, 1e-9)
	assert.InDelta(t, 1.0, result.Stats.CompressionRatio, 1e-9)
}

func TestAnalyzeAppliesDurationBudget(t *testing.T) {
	source := newFakeSource(100, 6)
	model := &fakeModel{annotations: []port.Annotation{
		{Confidence: 0.9, AestheticScore: 0.5},
		{Confidence: 0.9, AestheticScore: 0.5},
		{Confidence: 0.9, AestheticScore: 0.0},
		{Labels: []string{"garden"}, Confidence: 0.9, AestheticScore: 0.9},
		{Labels: []string{"garden"}, Confidence: 0.9, AestheticScore: 0.9},
		{Confidence: 0.9, AestheticScore: 0.0},
	}}

	uc := NewAnalyzeVideoUseCase(source, model, testConfig(t), 2, nil)
	result, err := uc.Analyze(context.Background(), "source.mp4", nil)
	require.NoError(t, err)

	// Without a budget there would be [0,2) and [3,5); only the boosted
	// range fits the 2 second budget.
	require.Len(t, result.Ranges, 1)
	assert.InDelta(t, 3.0, result.Ranges[0].Start, 1e-9)
	assert.InDelta(t, 5.0, result.Ranges[0].End, 1e-9)
	assert.InDelta(t, 2.0, result.Stats.RetainedDuration, 1e-9)
}

func TestAnalyzeProgressOrderingAndMonotonicity(t *testing.T) {
	source := newFakeSource(4, 4)
	model := &fakeModel{annotations: []port.Annotation{
		{Confidence: 0.9, AestheticScore: 0.8},
	}}
	sink := &captureSink{}

	uc := NewAnalyzeVideoUseCase(source, model, testConfig(t), 0, nil)
	_, err := uc.Analyze(context.Background(), "source.mp4", sink)
	require.NoError(t, err)

	require.NotEmpty(t, sink.events)
	assert.Equal(t, entity.StageLoading, sink.events[0].Stage)
	assert.Equal(t, entity.StageComplete, sink.events[len(sink.events)-1].Stage)
	assert.InDelta(t, 100.0, sink.events[len(sink.events)-1].Progress, 1e-9)

	last := map[entity.Stage]float64{}
	stageOrder := map[entity.Stage]int{
		entity.StageLoading:    0,
		entity.StageExtracting: 1,
		entity.StageAnalyzing:  2,
		entity.StageDeciding:   3,
		entity.StageComplete:   4,
	}
	maxStage := 0
	for _, ev := range sink.events {
		assert.GreaterOrEqual(t, ev.Progress, last[ev.Stage],
			"stage %s progress went backwards", ev.Stage)
		last[ev.Stage] = ev.Progress

		// Stages only move forward, except the extract/analyze
		// interleaving inside the frame loop.
		rank := stageOrder[ev.Stage]
		if rank < maxStage {
			assert.True(t,
				(ev.Stage == entity.StageExtracting || ev.Stage == entity.StageAnalyzing) && maxStage <= 2,
				"stage %s revisited after rank %d", ev.Stage, maxStage)
		} else {
			maxStage = rank
		}
	}
}

func TestAnalyzeLoadErrorPropagates(t *testing.T) {
	loadErr := errors.New("model backend unreachable")
	source := newFakeSource(10, 1)
	model := &fakeModel{loadErr: loadErr, annotations: []port.Annotation{{}}}

	uc := NewAnalyzeVideoUseCase(source, model, testConfig(t), 0, nil)
	result, err := uc.Analyze(context.Background(), "source.mp4", nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, loadErr)
	assert.Nil(t, result)
}

func TestAnalyzeInferenceErrorAbortsRun(t *testing.T) {
	inferErr := errors.New("inference timeout")
	source := newFakeSource(10, 3)
	model := &fakeModel{annotateErr: inferErr, annotations: []port.Annotation{{}}}

	uc := NewAnalyzeVideoUseCase(source, model, testConfig(t), 0, nil)
	result, err := uc.Analyze(context.Background(), "source.mp4", nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, inferErr)
	assert.Nil(t, result)
	// The frame in flight was still released on the error path.
	assert.True(t, source.stream.released[0])
}

func TestAnalyzeFrameSourceErrorPropagates(t *testing.T) {
	srcErr := errors.New("decoder crashed")
	source := newFakeSource(10, 2)
	source.stream.nextErr = srcErr
	model := &fakeModel{annotations: []port.Annotation{
		{Confidence: 0.9, AestheticScore: 0.8},
	}}

	uc := NewAnalyzeVideoUseCase(source, model, testConfig(t), 0, nil)
	result, err := uc.Analyze(context.Background(), "source.mp4", nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, srcErr)
	assert.Nil(t, result)
}
