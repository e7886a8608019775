package editorial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.InDelta(t, 0.3, cfg.AestheticThreshold, 1e-9)
	assert.InDelta(t, 0.3, cfg.ConfidenceThreshold, 1e-9)
	assert.True(t, cfg.DomainMode)
	assert.InDelta(t, 1.0, cfg.FrameWindow, 1e-9)
	assert.InDelta(t, 0.5, cfg.MergeGap, 1e-9)
	assert.InDelta(t, 1.0, cfg.MinSegmentDuration, 1e-9)
}

func TestNewConfigOverrides(t *testing.T) {
	cfg, err := NewConfig(
		WithAestheticThreshold(0.5),
		WithFrameWindow(2),
		WithDomainMode(false),
	)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, cfg.AestheticThreshold, 1e-9)
	assert.InDelta(t, 2.0, cfg.FrameWindow, 1e-9)
	assert.False(t, cfg.DomainMode)
	// Untouched fields keep their defaults.
	assert.InDelta(t, 0.5, cfg.MergeGap, 1e-9)
}

func TestNewConfigRejectsOutOfRange(t *testing.T) {
	cases := []struct {
		name string
		opt  Option
	}{
		{"negative aesthetic threshold", WithAestheticThreshold(-0.1)},
		{"negative confidence threshold", WithConfidenceThreshold(-1)},
		{"zero frame window", WithFrameWindow(0)},
		{"negative merge gap", WithMergeGap(-0.5)},
		{"negative min segment duration", WithMinSegmentDuration(-1)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewConfig(tc.opt)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}
