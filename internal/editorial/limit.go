package editorial

import (
	"sort"

	"github.com/DanielSensual/Videoeditor/internal/domain/entity"
)

// LimitDuration selects a subset of ranges whose cumulative duration
// fits maxDuration. Selection is greedy by priority (ties keep their
// original relative order); a range that would bust the budget is
// skipped permanently. The accepted set comes back sorted by start for
// playback. Callers interpret maxDuration <= 0 as "no limit" and skip
// the call entirely.
func LimitDuration(ranges []entity.TimeRange, maxDuration float64) []entity.TimeRange {
	byPriority := make([]entity.TimeRange, len(ranges))
	copy(byPriority, ranges)
	sort.SliceStable(byPriority, func(i, j int) bool {
		return byPriority[i].Priority > byPriority[j].Priority
	})

	var selected []entity.TimeRange
	var total float64
	for _, r := range byPriority {
		if total+r.Duration() > maxDuration {
			continue
		}
		selected = append(selected, r)
		total += r.Duration()
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Start < selected[j].Start
	})
	return selected
}
