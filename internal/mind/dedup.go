package mind

import "strings"

// Near-duplicate detection: containment after normalization, or high word
// overlap. Intentionally crude; it only needs to stop twin thoughts about
// the same fact, not measure semantic distance.

const overlapThreshold = 0.6

func normalizeContent(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// NearDuplicate reports whether a and b are about the same thing.
func NearDuplicate(a, b string) bool {
	na, nb := normalizeContent(a), normalizeContent(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb || strings.Contains(na, nb) || strings.Contains(nb, na) {
		return true
	}
	return wordOverlap(na, nb) >= overlapThreshold
}

// wordOverlap returns |A∩B| / min(|A|,|B|) over distinct word sets.
func wordOverlap(a, b string) float64 {
	sa := wordSet(a)
	sb := wordSet(b)
	if len(sa) == 0 || len(sb) == 0 {
		return 0
	}
	var shared int
	for w := range sb {
		if sa[w] {
			shared++
		}
	}
	minLen := len(sa)
	if len(sb) < minLen {
		minLen = len(sb)
	}
	return float64(shared) / float64(minLen)
}

func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(s) {
		set[w] = true
	}
	return set
}

// Deduplicate keeps the first of each near-duplicate pair, preserving order.
func Deduplicate(items []CandidateItem) []CandidateItem {
	out := make([]CandidateItem, 0, len(items))
	for _, it := range items {
		dup := false
		for _, kept := range out {
			if NearDuplicate(it.Content, kept.Content) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, it)
		}
	}
	return out
}
