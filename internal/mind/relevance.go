package mind

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/keshon/reverie/internal/ai"
)

// RelevanceFilter asks the external classifier whether pending thoughts
// still match the user's very recent activity. One batched call for the
// whole pending set; per-thought calls are a contract violation, not just
// waste. Any failure fails open: all thoughts treated as relevant.
type RelevanceFilter struct {
	provider ai.Provider
	store    ThoughtStore
	limiter  *CallLimiter
}

func NewRelevanceFilter(provider ai.Provider, store ThoughtStore, limiter *CallLimiter) *RelevanceFilter {
	return &RelevanceFilter{provider: provider, store: store, limiter: limiter}
}

// Filter returns the still-relevant subset of pending. Stale thoughts are
// expired with reason no_longer_relevant before returning.
func (f *RelevanceFilter) Filter(userID string, pending []Thought, recentContext string, now time.Time) []Thought {
	if len(pending) == 0 || strings.TrimSpace(recentContext) == "" {
		return pending
	}
	if f.limiter != nil && !f.limiter.Allow(userID, now) {
		return pending
	}

	verdicts, err := f.classify(pending, recentContext)
	if err != nil {
		log.Printf("[MIND] relevance classify failed for %s, failing open: %v", userID, err)
		return pending
	}
	if f.limiter != nil {
		f.limiter.Record(userID, now)
	}
	if len(verdicts) != len(pending) {
		log.Printf("[MIND] relevance verdict count %d != pending %d, failing open", len(verdicts), len(pending))
		return pending
	}

	kept := pending[:0:0]
	for i, relevant := range verdicts {
		if relevant {
			kept = append(kept, pending[i])
			continue
		}
		if err := f.store.MarkExpired(pending[i].ID, ReasonNoLongerRelevant); err != nil {
			log.Printf("[ERR] expire stale thought %s: %v", pending[i].ID, err)
			kept = append(kept, pending[i])
			continue
		}
		log.Printf("[MIND] thought %s expired: no longer relevant (%s)", pending[i].ID, previewForLog(pending[i].SeedContent, 60))
	}
	return kept
}

func (f *RelevanceFilter) classify(pending []Thought, recentContext string) ([]bool, error) {
	var b strings.Builder
	b.WriteString("You judge whether queued inner thoughts of a conversational character still fit the user's current conversation.\n")
	b.WriteString("Recent conversation:\n")
	b.WriteString(recentContext)
	b.WriteString("\n\nQueued thoughts:\n")
	for i, t := range pending {
		b.WriteString(fmt.Sprintf("%d. [%s] %s\n", i+1, t.Category, t.SeedContent))
	}
	b.WriteString("\nAnswer with ONLY a JSON array of booleans, one per thought in order, true when the thought is still worth bringing up. No other text.")

	msgs := []ai.Message{
		{Role: "system", Content: b.String()},
		{Role: "user", Content: "Judge now."},
	}
	reply, err := f.provider.Generate(msgs)
	if err != nil {
		return nil, err
	}
	return parseVerdicts(reply)
}

// parseVerdicts extracts a bare JSON boolean array from a model reply.
func parseVerdicts(reply string) ([]bool, error) {
	start := strings.Index(reply, "[")
	end := strings.LastIndex(reply, "]")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no json array in reply: %s", previewForLog(reply, 120))
	}
	var verdicts []bool
	if err := json.Unmarshal([]byte(reply[start:end+1]), &verdicts); err != nil {
		return nil, fmt.Errorf("parse verdicts: %w", err)
	}
	return verdicts, nil
}
