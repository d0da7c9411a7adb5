package classifier

import (
	"strings"

	"github.com/proprio/docintake/internal/catalog"
)

type typeScore struct {
	code      string
	raw       float64
	threshold float64
	keywords  []string
	signals   []string
}

// scoreType computes the raw score for a single document type:
// keyword hits + signal hits + suggestion rule hits + contextual prior.
func scoreType(in Input, dt *catalog.CompiledType, snap *catalog.Snapshot) typeScore {
	ts := typeScore{
		code:      dt.Code,
		threshold: dt.AutoAssignThreshold,
	}

	text := strings.ToLower(in.Text)

	for _, kw := range dt.Keywords {
		if kw.Context != nil && *kw.Context != in.Context {
			continue
		}
		if text != "" && strings.Contains(text, strings.ToLower(kw.Term)) {
			ts.raw += kw.Weight
			ts.keywords = append(ts.keywords, kw.Term)
		}
	}

	for _, ref := range dt.Signals {
		if !ref.Enabled {
			continue
		}
		sig, ok := snap.Signal(ref.Code)
		if !ok {
			// Signal skipped at compile time or undefined; contributes nothing.
			continue
		}
		if in.Text != "" && sig.Detector.MatchString(in.Text) {
			ts.raw += ref.Weight
			ts.signals = append(ts.signals, ref.Code)
		}
	}

	ruleFired := false
	for i := range dt.CompiledRules {
		rule := &dt.CompiledRules[i]
		if !ruleMatches(in, rule, text) {
			continue
		}
		ruleFired = true
		if rule.Lock {
			ts.raw = lockScore
			break
		}
		ts.raw += rule.Weight
	}

	if !ruleFired && dt.HasDefaultContext(in.Context) {
		ts.raw += contextPriorScore
	}

	return ts
}

func ruleMatches(in Input, rule *catalog.CompiledRule, loweredText string) bool {
	if !rule.Filename.MatchString(in.Filename) {
		return false
	}

	if len(rule.Contexts) > 0 && !containsContext(rule.Contexts, in.Context) {
		return false
	}

	if len(rule.MimeIn) > 0 && !containsFold(rule.MimeIn, in.Mime) {
		return false
	}

	if len(rule.OCRKeywords) > 0 {
		if !matchKeywords(rule.OCRKeywords, loweredText, rule.MatchAllKeywords) {
			return false
		}
	}

	return true
}

func matchKeywords(keywords []string, loweredText string, all bool) bool {
	if loweredText == "" {
		return false
	}

	for _, kw := range keywords {
		found := strings.Contains(loweredText, strings.ToLower(kw))
		if all && !found {
			return false
		}
		if !all && found {
			return true
		}
	}

	return all
}

func containsContext(contexts []catalog.Context, c catalog.Context) bool {
	for _, candidate := range contexts {
		if candidate == c {
			return true
		}
	}
	return false
}

func containsFold(values []string, v string) bool {
	for _, candidate := range values {
		if strings.EqualFold(candidate, v) {
			return true
		}
	}
	return false
}
