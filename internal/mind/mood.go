package mind

import "time"

// Mood thresholds for the rule table. Energy is -1..1, warmth 0..1.
const (
	energyHigh = 0.3
	energyLow  = -0.3
	warmthHigh = 0.6
	warmthLow  = 0.35

	anticipatoryAbsence   = 24 * time.Hour
	anticipatoryMinWeight = 0.3
)

// CategoryWeight is one entry of the classifier's output distribution.
type CategoryWeight struct {
	Category ThoughtCategory
	Weight   float64
}

// ClassifyMood maps mood signals plus absence into a thought-category
// distribution. Deterministic rule table; the synthesizer samples from it so
// identical moods still produce varied categories.
// hasUpcomingEvent means a calendar candidate exists within the next 48h.
func ClassifyMood(m MoodSignals, absence time.Duration, hasUpcomingEvent bool) []CategoryWeight {
	var weights []CategoryWeight

	switch {
	case m.Energy <= energyLow && m.Warmth <= warmthLow:
		weights = []CategoryWeight{
			{CategoryReflective, 0.7},
			{CategorySelfReferential, 0.3},
		}
	case m.Energy >= energyHigh && m.Warmth >= warmthHigh:
		weights = []CategoryWeight{
			{CategoryEngaging, 0.6},
			{CategoryAnticipatory, 0.4},
		}
	default:
		weights = []CategoryWeight{
			{CategoryReflective, 0.4},
			{CategoryEngaging, 0.3},
			{CategoryAnticipatory, 0.15},
			{CategorySelfReferential, 0.15},
		}
	}

	weights = normalizeWeights(weights)
	if absence > anticipatoryAbsence && hasUpcomingEvent {
		weights = forceInclude(weights, CategoryAnticipatory, anticipatoryMinWeight)
	}

	return weights
}

// forceInclude guarantees category holds at least minWeight of the final
// distribution, scaling the rest down to keep the total at 1.
func forceInclude(weights []CategoryWeight, cat ThoughtCategory, minWeight float64) []CategoryWeight {
	current := 0.0
	found := false
	for _, w := range weights {
		if w.Category == cat {
			current = w.Weight
			found = true
		}
	}
	if found && current >= minWeight {
		return weights
	}

	restSum := 1.0 - current
	scale := (1.0 - minWeight) / restSum
	out := make([]CategoryWeight, 0, len(weights)+1)
	for _, w := range weights {
		if w.Category == cat {
			continue
		}
		out = append(out, CategoryWeight{w.Category, w.Weight * scale})
	}
	out = append(out, CategoryWeight{cat, minWeight})
	return out
}

func normalizeWeights(weights []CategoryWeight) []CategoryWeight {
	var sum float64
	for _, w := range weights {
		sum += w.Weight
	}
	if sum <= 0 {
		return weights
	}
	out := make([]CategoryWeight, len(weights))
	for i, w := range weights {
		out[i] = CategoryWeight{w.Category, w.Weight / sum}
	}
	return out
}
