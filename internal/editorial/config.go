package editorial

import (
	"errors"
	"fmt"
)

var ErrInvalidConfig = errors.New("invalid editorial config")

// Config holds every knob of the editorial pipeline. Build one with
// NewConfig so out-of-range values are rejected up front instead of
// surfacing mid-run.
type Config struct {
	// Decision engine.
	AestheticThreshold  float64
	ConfidenceThreshold float64
	DomainMode          bool

	// Range coalescing. FrameWindow should equal the sampling stride.
	FrameWindow        float64
	MergeGap           float64
	MinSegmentDuration float64
}

func DefaultConfig() Config {
	return Config{
		AestheticThreshold:  0.3,
		ConfidenceThreshold: 0.3,
		DomainMode:          true,
		FrameWindow:         1.0,
		MergeGap:            0.5,
		MinSegmentDuration:  1.0,
	}
}

type Option func(*Config)

func WithAestheticThreshold(v float64) Option {
	return func(c *Config) { c.AestheticThreshold = v }
}

func WithConfidenceThreshold(v float64) Option {
	return func(c *Config) { c.ConfidenceThreshold = v }
}

func WithDomainMode(enabled bool) Option {
	return func(c *Config) { c.DomainMode = enabled }
}

func WithFrameWindow(seconds float64) Option {
	return func(c *Config) { c.FrameWindow = seconds }
}

func WithMergeGap(seconds float64) Option {
	return func(c *Config) { c.MergeGap = seconds }
}

func WithMinSegmentDuration(seconds float64) Option {
	return func(c *Config) { c.MinSegmentDuration = seconds }
}

// NewConfig applies overrides on top of the defaults and validates the
// merged result once.
func NewConfig(opts ...Option) (Config, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.AestheticThreshold < 0 {
		return fmt.Errorf("%w: aesthetic threshold %.3f is negative", ErrInvalidConfig, c.AestheticThreshold)
	}
	if c.ConfidenceThreshold < 0 {
		return fmt.Errorf("%w: confidence threshold %.3f is negative", ErrInvalidConfig, c.ConfidenceThreshold)
	}
	if c.FrameWindow <= 0 {
		return fmt.Errorf("%w: frame window %.3f must be positive", ErrInvalidConfig, c.FrameWindow)
	}
	if c.MergeGap < 0 {
		return fmt.Errorf("%w: merge gap %.3f is negative", ErrInvalidConfig, c.MergeGap)
	}
	if c.MinSegmentDuration < 0 {
		return fmt.Errorf("%w: min segment duration %.3f is negative", ErrInvalidConfig, c.MinSegmentDuration)
	}
	return nil
}
