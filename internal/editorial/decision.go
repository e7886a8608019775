package editorial

import (
	"fmt"
	"strings"

	"github.com/DanielSensual/Videoeditor/internal/domain/entity"
	"go.uber.org/zap"
)

// Fixed vocabularies for the domain-mode override rules. Matching is
// case-insensitive substring between each frame label and each entry.
var (
	discardLabels = []string{"toilet", "bathroom"}
	boostLabels   = []string{"kitchen", "pool", "garden"}
)

const (
	keepBaseWeight           = 5.0
	highlightBaseWeight      = 10.0
	highlightAestheticFactor = 2.0
)

// Engine turns one frame's signals into a keep/discard/highlight
// verdict. Decide is pure and deterministic.
type Engine struct {
	cfg    Config
	logger *zap.Logger
}

func NewEngine(cfg Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{cfg: cfg, logger: logger}
}

// Decide evaluates the rules in strict priority order: confidence gate,
// blacklist override, boost override, aesthetic keep, default discard.
// First match wins.
func (e *Engine) Decide(frame entity.FrameMetadata) entity.FrameDecision {
	// Labels below the confidence threshold are not trusted and the
	// override rules see an empty set instead.
	trusted := frame.Labels
	if frame.Confidence < e.cfg.ConfidenceThreshold {
		trusted = nil
	}

	if e.cfg.DomainMode {
		if matched := matchAny(trusted, discardLabels); len(matched) > 0 {
			return e.verdict(frame, entity.DecisionDiscard, 0,
				fmt.Sprintf("blacklisted content: %s", strings.Join(matched, ", ")))
		}
		if matched := matchAny(trusted, boostLabels); len(matched) > 0 {
			priority := highlightBaseWeight + frame.AestheticScore*highlightAestheticFactor
			return e.verdict(frame, entity.DecisionHighlight, priority,
				fmt.Sprintf("boosted content: %s", strings.Join(matched, ", ")))
		}
	}

	if frame.AestheticScore >= e.cfg.AestheticThreshold {
		return e.verdict(frame, entity.DecisionKeep, keepBaseWeight+frame.AestheticScore,
			fmt.Sprintf("aesthetic score %.2f meets threshold", frame.AestheticScore))
	}

	return e.verdict(frame, entity.DecisionDiscard, 0, "no retention rule matched")
}

// DecideAll applies Decide to every frame independently, preserving order.
func (e *Engine) DecideAll(frames []entity.FrameMetadata) []entity.FrameDecision {
	decisions := make([]entity.FrameDecision, 0, len(frames))
	for _, frame := range frames {
		decisions = append(decisions, e.Decide(frame))
	}
	return decisions
}

func (e *Engine) verdict(frame entity.FrameMetadata, d entity.Decision, priority float64, reason string) entity.FrameDecision {
	e.logger.Debug("frame decided",
		zap.Float64("timestamp", frame.Timestamp),
		zap.String("decision", string(d)),
		zap.Float64("priority", priority),
		zap.String("reason", reason),
	)
	return entity.FrameDecision{
		Timestamp: frame.Timestamp,
		Decision:  d,
		Reason:    reason,
		Priority:  priority,
	}
}

// matchAny returns the frame labels that contain any vocabulary entry,
// in label order.
func matchAny(labels, vocabulary []string) []string {
	var matched []string
	for _, label := range labels {
		lower := strings.ToLower(label)
		for _, entry := range vocabulary {
			if strings.Contains(lower, entry) {
				matched = append(matched, label)
				break
			}
		}
	}
	return matched
}
