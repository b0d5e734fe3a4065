package ai

import (
	"fmt"
	"strings"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider generates a single reply for a chat-style message list. Both the
// thought-authoring and relevance-classification calls go through this.
type Provider interface {
	Generate(messages []Message) (string, error)
}

// NewProvider returns a provider for the configured engine string.
// timeoutSec applies to the whole HTTP round trip.
func NewProvider(engine string, timeoutSec int) (Provider, error) {
	switch {
	case engine == "pollinations" || engine == "":
		return NewPollinationsProvider(timeoutSec), nil
	case engine == "g4f" || strings.HasPrefix(engine, "g4f:"):
		return NewG4FProvider(engine, timeoutSec), nil
	default:
		return nil, fmt.Errorf("ai: unsupported provider %q", engine)
	}
}
