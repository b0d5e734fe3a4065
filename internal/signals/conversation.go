package signals

import (
	"context"

	"github.com/keshon/reverie/internal/mind"
	"github.com/keshon/reverie/internal/storage"
)

// ConversationReader turns the most recent user messages into topic
// candidates. Rank 0 is the newest message.
type ConversationReader struct {
	st *storage.Storage
}

func NewConversationReader(st *storage.Storage) *ConversationReader {
	return &ConversationReader{st: st}
}

func (r *ConversationReader) Provenance() mind.Provenance {
	return mind.ProvConversationTopic
}

func (r *ConversationReader) Read(_ context.Context, userID string, window int) ([]mind.CandidateItem, error) {
	lines, err := r.st.RecentDialogue(userID, window)
	if err != nil {
		return nil, err
	}
	var out []mind.CandidateItem
	// newest last in the log; rank from the tail
	rank := 0
	for i := len(lines) - 1; i >= 0; i-- {
		l := lines[i]
		if l.Role != "user" || l.Content == "" {
			continue
		}
		out = append(out, mind.CandidateItem{
			Content:     topicFromMessage(l.Content),
			Provenance:  mind.ProvConversationTopic,
			RecencyRank: rank,
			Meta:        map[string]string{},
		})
		rank++
	}
	return out, nil
}

// topicFromMessage trims a message down to a topic-sized string.
func topicFromMessage(s string) string {
	const maxTopic = 80
	if len(s) > maxTopic {
		return s[:maxTopic]
	}
	return s
}
