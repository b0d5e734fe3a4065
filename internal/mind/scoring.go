package mind

import (
	"strconv"
	"time"
)

// Score floor and metadata fallback. The floor keeps every candidate
// mathematically selectable by the weighted sampler; a zero score would
// starve an item forever.
const (
	scoreFloor    = 0.3
	scoreFallback = 0.5
)

// Score assigns an interest score in [scoreFloor, 1] using provenance
// rules. Pure: no randomness, no clock reads beyond the passed now.
func Score(item CandidateItem, now time.Time) float64 {
	switch item.Provenance {
	case ProvUserNarrative:
		return clampScore(metaFloat(item, MetaInterest))

	case ProvCharacterNarrative:
		switch item.Meta[MetaStatus] {
		case "active":
			return 0.8
		case "ongoing":
			return 0.6
		case "dormant":
			return scoreFloor
		default:
			return scoreFallback
		}

	case ProvMentalThread:
		return clampScore(metaFloat(item, MetaIntensity))

	case ProvConversationTopic:
		s := 0.7 - 0.1*float64(item.RecencyRank)
		return clampScore(s)

	case ProvCalendarEvent:
		at, err := time.Parse(time.RFC3339, item.Meta[MetaEventAt])
		if err != nil {
			return scoreFallback
		}
		hoursUntil := at.Sub(now).Hours()
		if hoursUntil < 0 {
			hoursUntil = 0
		}
		return clampScore(1.0 - hoursUntil/48)

	default:
		// presence snapshot and anything unknown
		return scoreFallback
	}
}

// ScoreAll recomputes scores for a whole aggregation pass.
func ScoreAll(items []CandidateItem, now time.Time) []ScoredItem {
	out := make([]ScoredItem, 0, len(items))
	for _, it := range items {
		out = append(out, ScoredItem{CandidateItem: it, Score: Score(it, now)})
	}
	return out
}

func metaFloat(item CandidateItem, key string) float64 {
	v, ok := item.Meta[key]
	if !ok {
		return scoreFallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return scoreFallback
	}
	return f
}

func clampScore(x float64) float64 {
	if x < scoreFloor {
		return scoreFloor
	}
	if x > 1 {
		return 1
	}
	return x
}
