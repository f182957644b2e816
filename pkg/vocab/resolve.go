package vocab

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// TokenSortRatio scores a against b on a 0-100 scale. Both sides are
// lowercased, split on whitespace, sorted and rejoined before computing a
// normalised edit-distance ratio, so word order does not matter. The
// Levenshtein distance is divided by the longer side's rune count.
func TokenSortRatio(a, b string) float64 {
	sa, sb := sortTokens(a), sortTokens(b)
	if sa == sb {
		return 100
	}
	la, lb := utf8.RuneCountInString(sa), utf8.RuneCountInString(sb)
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 100
	}
	d := levenshtein.ComputeDistance(sa, sb)
	return 100 * (1 - float64(d)/float64(longest))
}

func sortTokens(s string) string {
	f := strings.Fields(strings.ToLower(s))
	sort.Strings(f)
	return strings.Join(f, " ")
}

// Resolver maps noisy OCR candidates onto a vocabulary.
type Resolver struct{}

// Resolve picks the longest candidate (first on ties), lowercases it and
// returns the best scoring vocabulary term when its score reaches threshold.
// Otherwise the lowercased candidate itself is returned. No candidates yields
// "".
func (Resolver) Resolve(candidates []string, v Vocabulary, threshold float64) string {
	cand, ok := longest(candidates)
	if !ok {
		return ""
	}
	cand = strings.ToLower(strings.TrimSpace(cand))
	if v.Contains(cand) {
		return cand
	}
	best, bestScore := "", -1.0
	for _, term := range v.terms {
		if s := TokenSortRatio(cand, term); s > bestScore {
			best, bestScore = term, s
		}
	}
	if best != "" && bestScore >= threshold {
		return best
	}
	return cand
}

// Match is the scored counterpart of Resolve, used by diagnostics.
func (Resolver) Match(candidate string, v Vocabulary) (string, float64) {
	candidate = strings.ToLower(strings.TrimSpace(candidate))
	best, bestScore := "", 0.0
	for _, term := range v.terms {
		if s := TokenSortRatio(candidate, term); s > bestScore {
			best, bestScore = term, s
		}
	}
	return best, bestScore
}

func longest(candidates []string) (string, bool) {
	if len(candidates) == 0 {
		return "", false
	}
	pick := candidates[0]
	for _, c := range candidates[1:] {
		if utf8.RuneCountInString(c) > utf8.RuneCountInString(pick) {
			pick = c
		}
	}
	return pick, true
}
