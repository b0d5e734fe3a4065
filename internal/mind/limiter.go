package mind

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// CallLimiter bounds outbound model calls (authoring, relevance
// classification) with per-minute and per-hour budgets plus a per-user
// cooldown. Callers treat a denial as fail-open or fall back to seed text;
// it is never an error.
type CallLimiter struct {
	mu         sync.Mutex
	perMinute  *rate.Limiter
	perHour    *rate.Limiter
	cooldown   time.Duration
	lastByUser map[string]time.Time
}

// DefaultCallLimiter returns a limiter: 6/min, 30/hour, 20s per-user cooldown.
func DefaultCallLimiter() *CallLimiter {
	return NewCallLimiter(6, 30, 20*time.Second)
}

func NewCallLimiter(maxPerMinute, maxPerHour int, cooldown time.Duration) *CallLimiter {
	return &CallLimiter{
		perMinute:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(maxPerMinute)), maxPerMinute),
		perHour:    rate.NewLimiter(rate.Every(time.Hour/time.Duration(maxPerHour)), maxPerHour),
		cooldown:   cooldown,
		lastByUser: make(map[string]time.Time),
	}
}

// Allow reports whether a model call may be made for this user at now, and
// consumes budget when it may.
func (l *CallLimiter) Allow(userID string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if last, ok := l.lastByUser[userID]; ok && now.Sub(last) < l.cooldown {
		return false
	}
	if !l.perMinute.AllowN(now, 1) {
		return false
	}
	if !l.perHour.AllowN(now, 1) {
		return false
	}
	return true
}

// Record marks that a call was actually made. Call after a successful
// Generate so a failed call does not start the cooldown.
func (l *CallLimiter) Record(userID string, now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastByUser[userID] = now
}
