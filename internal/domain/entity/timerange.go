package entity

import (
	"errors"
	"fmt"
)

// ErrInvalidTimeRange is wrapped by every range construction failure.
var ErrInvalidTimeRange = errors.New("invalid time range")

// TimeRange is a contiguous interval of the source timeline to retain.
// Priority is the max priority of any verdict the range absorbed.
type TimeRange struct {
	Start    float64
	End      float64
	Priority float64
	Label    string
}

// NewTimeRange validates bounds at construction. Invalid ranges are
// never observable downstream; callers must check the error.
func NewTimeRange(start, end, priority float64, label string) (TimeRange, error) {
	if start < 0 {
		return TimeRange{}, fmt.Errorf("%w: start %.3f is negative", ErrInvalidTimeRange, start)
	}
	if end <= start {
		return TimeRange{}, fmt.Errorf("%w: end %.3f must be after start %.3f", ErrInvalidTimeRange, end, start)
	}
	return TimeRange{Start: start, End: end, Priority: priority, Label: label}, nil
}

func (r TimeRange) Duration() float64 {
	return r.End - r.Start
}

func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Start < other.End && other.Start < r.End
}
