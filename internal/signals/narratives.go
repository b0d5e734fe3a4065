package signals

import (
	"context"
	"strconv"

	"github.com/keshon/reverie/internal/mind"
)

// Narrative is one tracked story line, either about the user or about the
// character's own life.
type Narrative struct {
	Title     string  `json:"title"`
	Interest  float64 `json:"interest"` // 0..1, user narratives
	Status    string  `json:"status"`   // active|ongoing|dormant, character narratives
	UpdatedAt string  `json:"updated_at,omitempty"`
}

// UserNarrativeReader reads tracked narratives about the user.
type UserNarrativeReader struct {
	lib *Library
}

func NewUserNarrativeReader(lib *Library) *UserNarrativeReader {
	return &UserNarrativeReader{lib: lib}
}

func (r *UserNarrativeReader) Provenance() mind.Provenance {
	return mind.ProvUserNarrative
}

func (r *UserNarrativeReader) Read(_ context.Context, userID string, window int) ([]mind.CandidateItem, error) {
	var list []Narrative
	if !r.lib.loadJSON(userID, FileUserNarratives, &list) {
		return nil, nil
	}
	return narrativeItems(list, mind.ProvUserNarrative, window), nil
}

// CharacterNarrativeReader reads the character's own story lines.
type CharacterNarrativeReader struct {
	lib *Library
}

func NewCharacterNarrativeReader(lib *Library) *CharacterNarrativeReader {
	return &CharacterNarrativeReader{lib: lib}
}

func (r *CharacterNarrativeReader) Provenance() mind.Provenance {
	return mind.ProvCharacterNarrative
}

func (r *CharacterNarrativeReader) Read(_ context.Context, userID string, window int) ([]mind.CandidateItem, error) {
	var list []Narrative
	if !r.lib.loadJSON(userID, FileCharacterNarratives, &list) {
		return nil, nil
	}
	return narrativeItems(list, mind.ProvCharacterNarrative, window), nil
}

func narrativeItems(list []Narrative, prov mind.Provenance, window int) []mind.CandidateItem {
	if window > 0 && len(list) > window {
		list = list[:window]
	}
	out := make([]mind.CandidateItem, 0, len(list))
	for i, n := range list {
		if n.Title == "" {
			continue
		}
		meta := map[string]string{}
		if prov == mind.ProvUserNarrative {
			meta[mind.MetaInterest] = strconv.FormatFloat(n.Interest, 'f', -1, 64)
		} else if n.Status != "" {
			meta[mind.MetaStatus] = n.Status
		}
		out = append(out, mind.CandidateItem{
			Content:     n.Title,
			Provenance:  prov,
			RecencyRank: i,
			Meta:        meta,
		})
	}
	return out
}
