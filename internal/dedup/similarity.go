package dedup

import "strings"

// Similarity computes token-set Jaccard similarity between two extracted
// texts. Tokens are lowercased runs of letters and digits; result is in
// [0,1]. Empty token sets yield 0, never a match.
func Similarity(a, b string) float64 {
	setA := tokenSet(a)
	if len(setA) == 0 {
		return 0
	}
	setB := tokenSet(b)
	if len(setB) == 0 {
		return 0
	}

	intersection := 0
	for token := range setA {
		if setB[token] {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]bool {
	tokens := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !isAlphanumeric(r)
	})

	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}
	return set
}

func isAlphanumeric(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= '0' && r <= '9' ||
		r >= 'A' && r <= 'Z' || r > 127
}
