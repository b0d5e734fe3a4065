package signals

import (
	"context"

	"github.com/keshon/reverie/internal/mind"
	"github.com/keshon/reverie/internal/storage"
)

// PresenceReader surfaces the latest demeanor note as a single candidate.
type PresenceReader struct {
	st *storage.Storage
}

func NewPresenceReader(st *storage.Storage) *PresenceReader {
	return &PresenceReader{st: st}
}

func (r *PresenceReader) Provenance() mind.Provenance {
	return mind.ProvPresenceSnapshot
}

func (r *PresenceReader) Read(_ context.Context, userID string, _ int) ([]mind.CandidateItem, error) {
	p, err := r.st.Presence(userID)
	if err != nil {
		return nil, err
	}
	if p == nil || p.Note == "" {
		return nil, nil
	}
	return []mind.CandidateItem{{
		Content:     p.Note,
		Provenance:  mind.ProvPresenceSnapshot,
		RecencyRank: 0,
		Meta:        map[string]string{},
	}}, nil
}
