package classifier

// Prediction is one ranked candidate type for a document.
type Prediction struct {
	TypeCode        string   `json:"type_code"`
	RawScore        float64  `json:"raw_score"`
	NormalizedScore float64  `json:"normalized_score"`
	Threshold       float64  `json:"threshold"`
	MatchedKeywords []string `json:"matched_keywords,omitempty"`
	MatchedSignals  []string `json:"matched_signals,omitempty"`
}

// Result is the full outcome of a classification run: candidates ranked by
// normalized score, the auto-assign decision, and human-readable evidence.
type Result struct {
	Predictions  []Prediction `json:"predictions"`
	AutoAssigned bool         `json:"auto_assigned"`
	Evidence     []string     `json:"evidence"`
}

// Top returns the best-ranked prediction, or nil for an empty result.
func (r *Result) Top() *Prediction {
	if len(r.Predictions) == 0 {
		return nil
	}
	return &r.Predictions[0]
}
