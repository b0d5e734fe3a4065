package mind

import (
	"log"
	"strings"
	"time"

	"github.com/keshon/reverie/internal/ai"
)

// categoryTone maps a thought category to authoring instructions. Tone only;
// the engine never decides the final wording.
var categoryTone = map[ThoughtCategory]string{
	CategoryReflective:      "Quietly reflective. You have been mulling this over while they were away.",
	CategoryEngaging:        "Warm and curious. You want to pull them back into this.",
	CategoryAnticipatory:    "Looking forward. Something is coming up and it is on your mind.",
	CategorySelfReferential: "Inward-looking. This is about your own ongoing story, shared in passing.",
}

// Author delegates the natural-language phrasing of a thought to the
// generation collaborator. On any failure it falls back to the raw seed
// content; silence beats blocking the chat path.
type Author struct {
	provider ai.Provider
	limiter  *CallLimiter
	identity string
}

func NewAuthor(provider ai.Provider, limiter *CallLimiter, identity string) *Author {
	if identity == "" {
		identity = "You are a conversational character with an inner life."
	}
	return &Author{provider: provider, limiter: limiter, identity: identity}
}

// AuthorThoughtText returns a single sentence voicing the thought.
func (a *Author) AuthorThoughtText(userID string, t *Thought) string {
	if t == nil {
		return ""
	}
	now := time.Now()
	if a.limiter != nil && !a.limiter.Allow(userID, now) {
		return t.SeedContent
	}

	var b strings.Builder
	b.WriteString(a.identity)
	b.WriteString("\n\nTask: voice one spontaneous thought you had while the user was away. ")
	b.WriteString(categoryTone[t.Category])
	b.WriteString("\nOne or two sentences. No preamble, no quotes.")

	msgs := []ai.Message{
		{Role: "system", Content: b.String()},
		{Role: "user", Content: "The thought is about: " + t.SeedContent},
	}
	LogModelCall("author", msgs, map[string]string{"user": userID, "category": string(t.Category)})

	reply, err := a.provider.Generate(msgs)
	if err != nil || strings.TrimSpace(reply) == "" {
		if err != nil {
			log.Printf("[MIND] author failed for thought %s, using seed: %v", t.ID, err)
		}
		return t.SeedContent
	}
	if a.limiter != nil {
		a.limiter.Record(userID, time.Now())
	}
	return strings.TrimSpace(reply)
}
