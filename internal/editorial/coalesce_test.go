package editorial

import (
	"testing"

	"github.com/DanielSensual/Videoeditor/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keep(ts, priority float64) entity.FrameDecision {
	return entity.FrameDecision{Timestamp: ts, Decision: entity.DecisionKeep, Priority: priority}
}

func discard(ts float64) entity.FrameDecision {
	return entity.FrameDecision{Timestamp: ts, Decision: entity.DecisionDiscard}
}

func highlight(ts, priority float64) entity.FrameDecision {
	return entity.FrameDecision{Timestamp: ts, Decision: entity.DecisionHighlight, Priority: priority}
}

func TestCoalesceMergesAcrossDiscardGap(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)

	decisions := []entity.FrameDecision{
		keep(0, 5),
		keep(1, 5),
		discard(2),
		highlight(3, 12),
		keep(4, 5.2),
	}

	ranges, err := Coalesce(decisions, cfg)
	require.NoError(t, err)
	require.Len(t, ranges, 2)

	assert.InDelta(t, 0.0, ranges[0].Start, 1e-9)
	assert.InDelta(t, 2.0, ranges[0].End, 1e-9)
	assert.InDelta(t, 5.0, ranges[0].Priority, 1e-9)

	assert.InDelta(t, 3.0, ranges[1].Start, 1e-9)
	assert.InDelta(t, 5.0, ranges[1].End, 1e-9)
	assert.InDelta(t, 12.0, ranges[1].Priority, 1e-9)
}

func TestCoalesceGapThreshold(t *testing.T) {
	decisions := []entity.FrameDecision{
		keep(0, 5),
		keep(1.3, 5),
	}

	// Gap between [0,1) and [1.3,2.3) is 0.3 seconds.
	wide, err := NewConfig(WithMergeGap(0.3))
	require.NoError(t, err)
	ranges, err := Coalesce(decisions, wide)
	require.NoError(t, err)
	require.Len(t, ranges, 1)
	assert.InDelta(t, 0.0, ranges[0].Start, 1e-9)
	assert.InDelta(t, 2.3, ranges[0].End, 1e-9)

	narrow, err := NewConfig(WithMergeGap(0.2))
	require.NoError(t, err)
	ranges, err = Coalesce(decisions, narrow)
	require.NoError(t, err)
	// Both singleton ranges survive only if they meet the duration floor.
	assert.Len(t, ranges, 2)
}

func TestCoalesceEmptyAndAllDiscard(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)

	ranges, err := Coalesce(nil, cfg)
	require.NoError(t, err)
	assert.Empty(t, ranges)

	ranges, err = Coalesce([]entity.FrameDecision{discard(0), discard(1)}, cfg)
	require.NoError(t, err)
	assert.Empty(t, ranges)
}

func TestCoalesceDropsShortSegments(t *testing.T) {
	cfg, err := NewConfig(WithFrameWindow(0.5), WithMergeGap(0))
	require.NoError(t, err)

	// A lone 0.5s range is below the 1.0s floor.
	ranges, err := Coalesce([]entity.FrameDecision{keep(0, 5)}, cfg)
	require.NoError(t, err)
	assert.Empty(t, ranges)

	// Two adjacent windows reach the floor exactly.
	ranges, err = Coalesce([]entity.FrameDecision{keep(0, 5), keep(0.5, 5)}, cfg)
	require.NoError(t, err)
	require.Len(t, ranges, 1)
	assert.InDelta(t, 1.0, ranges[0].Duration(), 1e-9)
}

func TestCoalesceSortsUnorderedInput(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)

	ranges, err := Coalesce([]entity.FrameDecision{keep(4, 5), keep(0, 5), keep(1, 7), keep(3, 5)}, cfg)
	require.NoError(t, err)
	require.Len(t, ranges, 1)
	assert.InDelta(t, 0.0, ranges[0].Start, 1e-9)
	assert.InDelta(t, 5.0, ranges[0].End, 1e-9)
	assert.InDelta(t, 7.0, ranges[0].Priority, 1e-9)
}

func TestCoalesceCarriesFirstLabel(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)

	decisions := []entity.FrameDecision{
		{Timestamp: 0, Decision: entity.DecisionKeep, Priority: 5, Reason: ""},
		{Timestamp: 1, Decision: entity.DecisionHighlight, Priority: 12, Reason: "boosted content: pool"},
	}

	ranges, err := Coalesce(decisions, cfg)
	require.NoError(t, err)
	require.Len(t, ranges, 1)
	assert.Equal(t, "boosted content: pool", ranges[0].Label)
}

func TestCoalesceRejectsNegativeTimestamp(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)

	_, err = Coalesce([]entity.FrameDecision{keep(-1, 5)}, cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrInvalidTimeRange)
}

func TestCoalesceOutputNeverOverlaps(t *testing.T) {
	cfg, err := NewConfig(WithMergeGap(0.25))
	require.NoError(t, err)

	var decisions []entity.FrameDecision
	for i := 0; i < 40; i++ {
		ts := float64(i) * 1.2
		if i%3 == 0 {
			decisions = append(decisions, discard(ts))
			continue
		}
		decisions = append(decisions, keep(ts, float64(i%7)))
	}

	ranges, err := Coalesce(decisions, cfg)
	require.NoError(t, err)
	for i := 0; i < len(ranges); i++ {
		assert.GreaterOrEqual(t, ranges[i].Duration(), cfg.MinSegmentDuration)
		for j := i + 1; j < len(ranges); j++ {
			assert.False(t, ranges[i].Overlaps(ranges[j]),
				"ranges %d and %d overlap", i, j)
		}
	}
}

func TestCoalesceIdempotent(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)

	decisions := []entity.FrameDecision{
		keep(0, 5), keep(1, 5), discard(2), highlight(3, 12), keep(4, 5.2), keep(10, 6),
	}

	first, err := Coalesce(decisions, cfg)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	// Rebuild a synthetic verdict set that reconstructs the output one
	// window per range-start; re-coalescing must not merge further.
	var synthetic []entity.FrameDecision
	for _, r := range first {
		for ts := r.Start; ts < r.End-1e-9; ts += cfg.FrameWindow {
			synthetic = append(synthetic, entity.FrameDecision{
				Timestamp: ts,
				Decision:  entity.DecisionKeep,
				Priority:  r.Priority,
				Reason:    r.Label,
			})
		}
	}

	second, err := Coalesce(synthetic, cfg)
	require.NoError(t, err)
	require.Len(t, second, len(first))
	for i := range first {
		assert.InDelta(t, first[i].Start, second[i].Start, 1e-9)
		assert.InDelta(t, first[i].End, second[i].End, 1e-9)
		assert.InDelta(t, first[i].Priority, second[i].Priority, 1e-9)
	}
}
