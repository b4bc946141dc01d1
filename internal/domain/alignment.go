package domain

// Alignment scores range from -5 (far left) to +5 (far right).
const (
	MinAlignmentScore = -5
	MaxAlignmentScore = 5
)

// AlignmentChangeEvent is the inbound payload emitted by the scoring
// process when a source's editorial-alignment score changes.
// OldLabel is nil for a first-ever classification. Labels travel with the
// event: the enqueuer copies them through unchanged rather than recomputing
// them, so historical notifications are never re-labelled.
type AlignmentChangeEvent struct {
	SourceID   string  `json:"source_id"`
	SourceName string  `json:"source_name"`
	OldScore   int     `json:"old_score"`
	NewScore   int     `json:"new_score"`
	OldLabel   *string `json:"old_label,omitempty"`
	NewLabel   string  `json:"new_label"`
	Reason     string  `json:"reason"`
}

func (e *AlignmentChangeEvent) Validate() error {
	if e.SourceID == "" {
		return ErrInvalidSource
	}
	if e.SourceName == "" {
		return ErrInvalidSourceName
	}
	if !scoreInRange(e.OldScore) || !scoreInRange(e.NewScore) {
		return ErrInvalidScore
	}
	if e.NewLabel == "" {
		return ErrInvalidLabel
	}
	if e.Reason == "" {
		return ErrInvalidReason
	}
	return nil
}

func scoreInRange(score int) bool {
	return score >= MinAlignmentScore && score <= MaxAlignmentScore
}

// LabelForScore maps an alignment score to its display label.
// Callers that already carry a label (the scoring process) keep their own;
// this is the fallback for entry points that only know the score.
func LabelForScore(score int) string {
	switch {
	case score <= -4:
		return "far left"
	case score <= -2:
		return "left"
	case score == -1:
		return "lean left"
	case score == 0:
		return "center"
	case score == 1:
		return "lean right"
	case score <= 3:
		return "right"
	default:
		return "far right"
	}
}
