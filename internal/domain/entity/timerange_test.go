package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeRangeValidation(t *testing.T) {
	r, err := NewTimeRange(1.5, 4, 7, "boosted content: pool")
	require.NoError(t, err)
	assert.InDelta(t, 2.5, r.Duration(), 1e-9)

	_, err = NewTimeRange(-0.1, 4, 0, "")
	assert.ErrorIs(t, err, ErrInvalidTimeRange)

	_, err = NewTimeRange(4, 4, 0, "")
	assert.ErrorIs(t, err, ErrInvalidTimeRange)

	_, err = NewTimeRange(4, 2, 0, "")
	assert.ErrorIs(t, err, ErrInvalidTimeRange)
}

func TestTimeRangeOverlaps(t *testing.T) {
	a, err := NewTimeRange(0, 2, 0, "")
	require.NoError(t, err)
	b, err := NewTimeRange(1.5, 3, 0, "")
	require.NoError(t, err)
	c, err := NewTimeRange(2, 4, 0, "")
	require.NoError(t, err)

	assert.True(t, a.Overlaps(b))
	assert.True(t, b.Overlaps(a))
	// Half-open intervals: touching ends do not overlap.
	assert.False(t, a.Overlaps(c))
	assert.False(t, c.Overlaps(a))
}
