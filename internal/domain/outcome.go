package domain

// OutcomeKind classifies what happened to one source record or occurrence.
type OutcomeKind string

const (
	OutcomeOK      OutcomeKind = "ok"
	OutcomeSkipped OutcomeKind = "skipped"
	OutcomeFatal   OutcomeKind = "fatal"
)

// Outcome lets callers tell an expected drop apart from a defect.
type Outcome struct {
	Kind     OutcomeKind
	SourceID string
	Reason   string
}

func Ok(sourceID string) Outcome { return Outcome{Kind: OutcomeOK, SourceID: sourceID} }

func Skipped(sourceID, reason string) Outcome {
	return Outcome{Kind: OutcomeSkipped, SourceID: sourceID, Reason: reason}
}

func Fatal(sourceID, reason string) Outcome {
	return Outcome{Kind: OutcomeFatal, SourceID: sourceID, Reason: reason}
}

// Skip reasons reported by the expansion pipeline.
const (
	ReasonInactive           = "inactive"
	ReasonMissingCoordinates = "missing coordinates"
	ReasonPeriodExceedsRange = "period longer than planning window"
)
