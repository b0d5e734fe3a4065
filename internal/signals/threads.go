package signals

import (
	"context"
	"strconv"

	"github.com/keshon/reverie/internal/mind"
)

// Thread is one lingering mental thread with its current intensity.
type Thread struct {
	Topic     string  `json:"topic"`
	Intensity float64 `json:"intensity"` // 0..1
	UpdatedAt string  `json:"updated_at,omitempty"`
}

type MentalThreadReader struct {
	lib *Library
}

func NewMentalThreadReader(lib *Library) *MentalThreadReader {
	return &MentalThreadReader{lib: lib}
}

func (r *MentalThreadReader) Provenance() mind.Provenance {
	return mind.ProvMentalThread
}

func (r *MentalThreadReader) Read(_ context.Context, userID string, window int) ([]mind.CandidateItem, error) {
	var list []Thread
	if !r.lib.loadJSON(userID, FileMentalThreads, &list) {
		return nil, nil
	}
	if window > 0 && len(list) > window {
		list = list[:window]
	}
	out := make([]mind.CandidateItem, 0, len(list))
	for i, t := range list {
		if t.Topic == "" {
			continue
		}
		out = append(out, mind.CandidateItem{
			Content:     t.Topic,
			Provenance:  mind.ProvMentalThread,
			RecencyRank: i,
			Meta: map[string]string{
				mind.MetaIntensity: strconv.FormatFloat(t.Intensity, 'f', -1, 64),
			},
		})
	}
	return out, nil
}
