// Package classifier implements the rule-driven document type classification
// engine. Classification is a pure function over an input and a catalog
// snapshot: deterministic, stateless, and safe to run in parallel across
// documents.
package classifier

import (
	"fmt"
	"sort"

	"github.com/proprio/docintake/internal/catalog"
)

const (
	// lockScore is the dominant sentinel assigned when a lock rule matches,
	// short-circuiting competition from other types.
	lockScore = 1e6

	// contextPriorScore is the weak base score granted to a type that is the
	// contextual default when none of its rules fired.
	contextPriorScore = 1.0

	fallbackConfidence          = 0.1
	fallbackAlternateConfidence = 0.05
)

// Evidence tags for degraded results.
const (
	EvidenceNoMatch = "no_match"
	EvidenceError   = "classification_error"
)

// fallbackAlternates pads the fallback suggestion list when the catalog is
// too small to supply alternatives.
var fallbackAlternates = []string{"CONTRACT", "INVOICE"}

// Input carries everything the engine needs to classify one upload.
// Text holds the extracted OCR text and may be empty.
type Input struct {
	Filename string          `json:"filename"`
	Mime     string          `json:"mime"`
	Context  catalog.Context `json:"context"`
	Text     string          `json:"text,omitempty"`
}

// Classify scores the input against every active type in the snapshot and
// returns ranked predictions. It never fails: internal errors degrade to the
// MISC fallback with an error evidence tag.
func Classify(in Input, snap *catalog.Snapshot) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = fallback(snap, EvidenceError, fmt.Sprintf("%v", r))
		}
	}()

	scores := make([]typeScore, 0, len(snap.Types))
	for i := range snap.Types {
		ts := scoreType(in, &snap.Types[i], snap)
		if ts.raw > 0 {
			scores = append(scores, ts)
		}
	}

	if len(scores) == 0 {
		return fallback(snap, EvidenceNoMatch)
	}

	maxRaw := 0.0
	for _, ts := range scores {
		if ts.raw > maxRaw {
			maxRaw = ts.raw
		}
	}

	// Snapshot types are pre-sorted by order then code, so a stable sort on
	// normalized score alone keeps tie-breaks deterministic.
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].raw/maxRaw > scores[j].raw/maxRaw
	})

	result.Predictions = make([]Prediction, 0, len(scores))
	for _, ts := range scores {
		result.Predictions = append(result.Predictions, Prediction{
			TypeCode:        ts.code,
			RawScore:        ts.raw,
			NormalizedScore: ts.raw / maxRaw,
			Threshold:       ts.threshold,
			MatchedKeywords: ts.keywords,
			MatchedSignals:  ts.signals,
		})
	}

	top := result.Predictions[0]
	result.AutoAssigned = top.NormalizedScore >= top.Threshold
	result.Evidence = evidenceFor(top)

	return result
}

func evidenceFor(p Prediction) []string {
	evidence := make([]string, 0, len(p.MatchedKeywords)+len(p.MatchedSignals))
	for _, kw := range p.MatchedKeywords {
		evidence = append(evidence, "keyword:"+kw)
	}
	for _, sig := range p.MatchedSignals {
		evidence = append(evidence, "signal:"+sig)
	}
	if p.RawScore >= lockScore {
		evidence = append(evidence, "rule:lock")
	}
	return evidence
}

// fallback builds the degraded result returned when no type scores positive
// or classification itself fails: MISC at a token confidence plus at least
// two weaker alternatives so the user always has a choice to confirm.
func fallback(snap *catalog.Snapshot, tags ...string) Result {
	predictions := []Prediction{{
		TypeCode:        catalog.FallbackTypeCode,
		RawScore:        0,
		NormalizedScore: fallbackConfidence,
		Threshold:       1,
	}}
	seen := map[string]bool{catalog.FallbackTypeCode: true}

	alternate := func(code string) {
		if len(predictions) >= 3 || seen[code] {
			return
		}
		seen[code] = true
		predictions = append(predictions, Prediction{
			TypeCode:        code,
			NormalizedScore: fallbackAlternateConfidence,
			Threshold:       1,
		})
	}

	for i := range snap.Types {
		alternate(snap.Types[i].Code)
	}
	for _, code := range fallbackAlternates {
		alternate(code)
	}

	return Result{
		Predictions:  predictions,
		AutoAssigned: false,
		Evidence:     tags,
	}
}
