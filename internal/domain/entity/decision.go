package entity

type Decision string

const (
	DecisionKeep      Decision = "keep"
	DecisionDiscard   Decision = "discard"
	DecisionHighlight Decision = "highlight"
)

// FrameDecision is the editorial verdict for a single frame. Reason is
// human-readable and never machine-parsed. Priority is >= 0; higher
// means more valuable to retain.
type FrameDecision struct {
	Timestamp float64
	Decision  Decision
	Reason    string
	Priority  float64
}
