package signals

import (
	"context"
	"time"

	"github.com/keshon/reverie/internal/mind"
)

// Event is one upcoming calendar entry.
type Event struct {
	Title string    `json:"title"`
	At    time.Time `json:"at"`
}

type CalendarReader struct {
	lib *Library
}

func NewCalendarReader(lib *Library) *CalendarReader {
	return &CalendarReader{lib: lib}
}

func (r *CalendarReader) Provenance() mind.Provenance {
	return mind.ProvCalendarEvent
}

// Read returns upcoming events only; past events are not thought material.
func (r *CalendarReader) Read(_ context.Context, userID string, window int) ([]mind.CandidateItem, error) {
	var list []Event
	if !r.lib.loadJSON(userID, FileCalendar, &list) {
		return nil, nil
	}
	now := time.Now()
	out := make([]mind.CandidateItem, 0, len(list))
	for _, e := range list {
		if e.Title == "" || e.At.Before(now) {
			continue
		}
		out = append(out, mind.CandidateItem{
			Content:     e.Title,
			Provenance:  mind.ProvCalendarEvent,
			RecencyRank: len(out),
			Meta: map[string]string{
				mind.MetaEventAt: e.At.UTC().Format(time.RFC3339),
			},
		})
		if window > 0 && len(out) >= window {
			break
		}
	}
	return out, nil
}
