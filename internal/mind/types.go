package mind

import "time"

// Provenance names which signal store a candidate item came from.
type Provenance string

const (
	ProvConversationTopic  Provenance = "conversation_topic"
	ProvUserNarrative      Provenance = "user_narrative"
	ProvCharacterNarrative Provenance = "character_narrative"
	ProvMentalThread       Provenance = "mental_thread"
	ProvPresenceSnapshot   Provenance = "presence_snapshot"
	ProvCalendarEvent      Provenance = "calendar_event"
)

// Candidate metadata keys. Values are strings; numeric ones are parsed at
// scoring time and fall back to a neutral score when absent or malformed.
const (
	MetaInterest  = "interest"  // user narratives, 0..1
	MetaStatus    = "status"    // character narratives: active|ongoing|dormant
	MetaIntensity = "intensity" // mental threads, 0..1
	MetaEventAt   = "event_at"  // calendar events, RFC3339
)

// CandidateItem is one thing the character could think about. Transient:
// produced by the aggregator, consumed by scoring, never persisted.
type CandidateItem struct {
	Content     string
	Provenance  Provenance
	RecencyRank int // 0 = newest within its store
	Meta        map[string]string
}

// ScoredItem pairs a candidate with its freshly computed interest score.
// Scores are recomputed every tick; never cached.
type ScoredItem struct {
	CandidateItem
	Score float64 // 0..1
}

// ThoughtCategory is the emotional register a thought is authored in.
type ThoughtCategory string

const (
	CategoryReflective      ThoughtCategory = "reflective"
	CategoryEngaging        ThoughtCategory = "engaging"
	CategoryAnticipatory    ThoughtCategory = "anticipatory"
	CategorySelfReferential ThoughtCategory = "self_referential"
)

// ThoughtState is the lifecycle state of a durable thought.
type ThoughtState string

const (
	StatePending  ThoughtState = "pending"
	StateSurfaced ThoughtState = "surfaced"
	StateExpired  ThoughtState = "expired"
)

// ExpireReason records why a thought left the pending set.
type ExpireReason string

const (
	ReasonAge              ExpireReason = "age"
	ReasonCapacityExceeded ExpireReason = "capacity_exceeded"
	ReasonNoLongerRelevant ExpireReason = "no_longer_relevant"
)

// Thought is the durable unit: what to possibly say, and in what register.
// The actual phrasing is delegated to the generation collaborator; only the
// seed and category are owned here. A thought makes at most one terminal
// transition (pending→surfaced or pending→expired).
type Thought struct {
	ID             string          `json:"id"`
	UserID         string          `json:"user_id"`
	Category       ThoughtCategory `json:"category"`
	SeedContent    string          `json:"seed_content"`
	SeedProvenance Provenance      `json:"seed_provenance"`
	Score          float64         `json:"score"` // score at creation time
	CreatedAt      time.Time       `json:"created_at"`
	State          ThoughtState    `json:"state"`
	ExpiredReason  ExpireReason    `json:"expired_reason,omitempty"`
	SurfacedAt     *time.Time      `json:"surfaced_at,omitempty"`
}

// SessionSurfaceState counts surfaced thoughts in the current inferred
// session. A session ends implicitly when the gap since LastSurfacedAt
// exceeds the gate's cooldown window.
type SessionSurfaceState struct {
	Count            int       `json:"count"`
	SessionStartedAt time.Time `json:"session_started_at"`
	LastSurfacedAt   time.Time `json:"last_surfaced_at"`
}

// MoodSignals are the two mood-model outputs this engine consumes.
type MoodSignals struct {
	Energy float64 // -1..1
	Warmth float64 // 0..1
}
