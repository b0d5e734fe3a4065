package mind

import (
	"math/rand"
	"testing"
	"time"
)

func TestPickWeightedFavorsHighScores(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	items := []ScoredItem{
		{CandidateItem: CandidateItem{Content: "low"}, Score: 0.3},
		{CandidateItem: CandidateItem{Content: "high"}, Score: 0.9},
	}
	counts := map[string]int{}
	for i := 0; i < 2000; i++ {
		pick, ok := PickWeighted(items, rng)
		if !ok {
			t.Fatal("pick failed")
		}
		counts[pick.Content]++
	}
	if counts["high"] <= counts["low"] {
		t.Errorf("high-score item picked %d times vs %d; weighting broken", counts["high"], counts["low"])
	}
	if counts["low"] == 0 {
		t.Error("low-score item never picked; selection degenerated to max")
	}
}

func TestSampleCategoryCoversDistribution(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	weights := []CategoryWeight{
		{CategoryReflective, 0.7},
		{CategorySelfReferential, 0.3},
	}
	counts := map[ThoughtCategory]int{}
	for i := 0; i < 2000; i++ {
		counts[SampleCategory(weights, rng)]++
	}
	if counts[CategoryReflective] <= counts[CategorySelfReferential] {
		t.Error("sampling does not follow weights")
	}
	if counts[CategorySelfReferential] == 0 {
		t.Error("minor category never sampled")
	}
}

func TestSynthesizeCreatesPendingThought(t *testing.T) {
	s := NewSynthesizer(rand.New(rand.NewSource(3)))
	now := time.Now()
	scored := []ScoredItem{
		{CandidateItem: CandidateItem{Content: "authentication bug", Provenance: ProvConversationTopic}, Score: 0.7},
	}
	weights := []CategoryWeight{{CategoryReflective, 0.6}, {CategoryEngaging, 0.4}}

	th := s.Synthesize("u1", scored, weights, nil, now)
	if th == nil {
		t.Fatal("expected a thought")
	}
	if th.State != StatePending {
		t.Errorf("state %s, want pending", th.State)
	}
	if th.SeedContent != "authentication bug" {
		t.Errorf("seed %q", th.SeedContent)
	}
	if th.Category != CategoryReflective && th.Category != CategoryEngaging {
		t.Errorf("category %s incompatible with a conversation topic", th.Category)
	}
	if th.ID == "" || th.UserID != "u1" {
		t.Errorf("bad identity: id=%q user=%q", th.ID, th.UserID)
	}
}

func TestSynthesizeRespectsCompatibility(t *testing.T) {
	s := NewSynthesizer(rand.New(rand.NewSource(4)))
	now := time.Now()
	// Only a character narrative available; engaging/anticipatory can't use it.
	scored := []ScoredItem{
		{CandidateItem: CandidateItem{Content: "my unfinished novel", Provenance: ProvCharacterNarrative}, Score: 0.8},
	}
	weights := []CategoryWeight{{CategorySelfReferential, 1.0}}

	th := s.Synthesize("u1", scored, weights, nil, now)
	if th == nil {
		t.Fatal("expected a thought")
	}
	if th.Category != CategorySelfReferential {
		t.Errorf("category %s, want self_referential", th.Category)
	}
}

func TestSynthesizeGivesUpOnPendingDuplicate(t *testing.T) {
	s := NewSynthesizer(rand.New(rand.NewSource(5)))
	now := time.Now()
	scored := []ScoredItem{
		{CandidateItem: CandidateItem{Content: "authentication bug", Provenance: ProvConversationTopic}, Score: 0.7},
	}
	weights := []CategoryWeight{{CategoryReflective, 1.0}}
	pending := []Thought{{SeedContent: "the authentication bug", State: StatePending}}

	if th := s.Synthesize("u1", scored, weights, pending, now); th != nil {
		t.Errorf("expected silent give-up, got thought about %q", th.SeedContent)
	}
}

func TestSynthesizeEmptyCandidates(t *testing.T) {
	s := NewSynthesizer(rand.New(rand.NewSource(6)))
	if th := s.Synthesize("u1", nil, []CategoryWeight{{CategoryReflective, 1}}, nil, time.Now()); th != nil {
		t.Error("expected nil for empty candidate set")
	}
}
