package editorial

import (
	"fmt"
	"math"
	"sort"

	"github.com/DanielSensual/Videoeditor/internal/domain/entity"
)

// Coalesce merges per-frame verdicts into non-overlapping playable
// ranges. Discards are dropped, the survivors expand to
// [timestamp, timestamp+FrameWindow), adjacent ranges within MergeGap
// seconds merge, and anything shorter than MinSegmentDuration is
// discarded at the end.
func Coalesce(decisions []entity.FrameDecision, cfg Config) ([]entity.TimeRange, error) {
	if len(decisions) == 0 {
		return nil, nil
	}

	sorted := make([]entity.FrameDecision, len(decisions))
	copy(sorted, decisions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})

	var provisional []entity.TimeRange
	for _, d := range sorted {
		if d.Decision == entity.DecisionDiscard {
			continue
		}
		r, err := entity.NewTimeRange(d.Timestamp, d.Timestamp+cfg.FrameWindow, d.Priority, d.Reason)
		if err != nil {
			return nil, fmt.Errorf("expand verdict at %.3fs: %w", d.Timestamp, err)
		}
		provisional = append(provisional, r)
	}
	if len(provisional) == 0 {
		return nil, nil
	}

	// Single left-to-right sweep over the time-sorted provisional
	// ranges, folding each into the current accumulator while it starts
	// within MergeGap of the accumulator's end.
	merged := make([]entity.TimeRange, 0, len(provisional))
	current := provisional[0]
	for _, next := range provisional[1:] {
		if next.Start <= current.End+cfg.MergeGap {
			current.Start = math.Min(current.Start, next.Start)
			current.End = math.Max(current.End, next.End)
			current.Priority = math.Max(current.Priority, next.Priority)
			if current.Label == "" {
				current.Label = next.Label
			}
			continue
		}
		merged = append(merged, current)
		current = next
	}
	merged = append(merged, current)

	result := merged[:0]
	for _, r := range merged {
		if r.Duration() >= cfg.MinSegmentDuration {
			result = append(result, r)
		}
	}
	if len(result) == 0 {
		return nil, nil
	}
	return result, nil
}
