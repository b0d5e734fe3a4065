package mind

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// categoryProvenance restricts which candidates a sampled category may seed
// from, so an anticipatory thought never grows out of, say, a stale chat
// topic. This is the guard against incoherent seed/category pairings.
var categoryProvenance = map[ThoughtCategory][]Provenance{
	CategoryReflective:      {ProvConversationTopic, ProvUserNarrative, ProvMentalThread},
	CategoryEngaging:        {ProvConversationTopic, ProvUserNarrative, ProvPresenceSnapshot},
	CategoryAnticipatory:    {ProvCalendarEvent, ProvUserNarrative},
	CategorySelfReferential: {ProvCharacterNarrative, ProvMentalThread},
}

// SampleCategory draws a category from the classifier's distribution.
func SampleCategory(weights []CategoryWeight, rng *rand.Rand) ThoughtCategory {
	var sum float64
	for _, w := range weights {
		sum += w.Weight
	}
	if sum <= 0 || len(weights) == 0 {
		return CategoryReflective
	}
	r := rng.Float64() * sum
	for _, w := range weights {
		r -= w.Weight
		if r < 0 {
			return w.Category
		}
	}
	return weights[len(weights)-1].Category
}

// PickWeighted selects one item with probability proportional to score.
// Favors interesting items without always picking the maximum.
func PickWeighted(items []ScoredItem, rng *rand.Rand) (ScoredItem, bool) {
	if len(items) == 0 {
		return ScoredItem{}, false
	}
	var sum float64
	for _, it := range items {
		sum += it.Score
	}
	if sum <= 0 {
		return items[rng.Intn(len(items))], true
	}
	r := rng.Float64() * sum
	for _, it := range items {
		r -= it.Score
		if r < 0 {
			return it, true
		}
	}
	return items[len(items)-1], true
}

// Synthesizer turns scored candidates plus a category distribution into a
// pending thought. Holds the only randomness in the pipeline.
type Synthesizer struct {
	rng *rand.Rand
}

func NewSynthesizer(rng *rand.Rand) *Synthesizer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Synthesizer{rng: rng}
}

// Synthesize returns a new pending thought, or nil when this tick should
// stay silent (no compatible candidates, or everything near-duplicates an
// already pending thought after one resample).
func (s *Synthesizer) Synthesize(userID string, scored []ScoredItem, weights []CategoryWeight, pending []Thought, now time.Time) *Thought {
	if len(scored) == 0 {
		return nil
	}

	category := SampleCategory(weights, s.rng)
	compatible := filterCompatible(scored, category)
	if len(compatible) == 0 {
		// One category resample before giving up; the mood table can land
		// on a category none of today's candidates fit.
		category = SampleCategory(weights, s.rng)
		compatible = filterCompatible(scored, category)
		if len(compatible) == 0 {
			return nil
		}
	}

	pick, ok := PickWeighted(compatible, s.rng)
	if !ok {
		return nil
	}
	if duplicatesPending(pick.Content, pending) {
		pick, ok = PickWeighted(compatible, s.rng)
		if !ok || duplicatesPending(pick.Content, pending) {
			return nil
		}
	}

	return &Thought{
		ID:             uuid.NewString(),
		UserID:         userID,
		Category:       category,
		SeedContent:    pick.Content,
		SeedProvenance: pick.Provenance,
		Score:          pick.Score,
		CreatedAt:      now,
		State:          StatePending,
	}
}

func filterCompatible(items []ScoredItem, cat ThoughtCategory) []ScoredItem {
	allowed := categoryProvenance[cat]
	var out []ScoredItem
	for _, it := range items {
		for _, p := range allowed {
			if it.Provenance == p {
				out = append(out, it)
				break
			}
		}
	}
	return out
}

func duplicatesPending(content string, pending []Thought) bool {
	for _, t := range pending {
		if NearDuplicate(content, t.SeedContent) {
			return true
		}
	}
	return false
}
