package types

import "time"

// Character is the persisted persona profile. Immutable after creation except
// for Backstory and PortraitURL, which are filled in asynchronously.
type Character struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Personality string    `json:"personality"`
	Backstory   string    `json:"backstory,omitempty"`
	PortraitURL string    `json:"portrait_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Vital bounds shared by state math and persistence.
const (
	VitalMin = 0
	VitalMax = 100
)

// CharacterState is the mutable simulated snapshot tied 1:1 to a Character.
// Version guards concurrent saves: a save only succeeds against the version it
// was loaded with.
type CharacterState struct {
	CharacterID string    `json:"character_id"`
	Health      int       `json:"health"`
	Energy      int       `json:"energy"`
	Happiness   int       `json:"happiness"`
	Hunger      int       `json:"hunger"`
	Fatigue     int       `json:"fatigue"`
	Stress      int       `json:"stress"`
	Location    string    `json:"location"`
	Activity    string    `json:"activity"`
	Version     int64     `json:"version"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// GeneratedReply is the structured output of one generation cycle. Emotion and
// Action are nil when the model produced no usable tag.
type GeneratedReply struct {
	Text    string         `json:"text"`
	Emotion *string        `json:"emotion,omitempty"`
	Action  *string        `json:"action,omitempty"`
	Effects map[string]int `json:"effects,omitempty"`
}

// Interaction is one logged user/character exchange. Append-only, ordered by
// Timestamp.
type Interaction struct {
	ID          string         `json:"id"`
	CharacterID string         `json:"character_id"`
	Content     string         `json:"content"`
	Reply       GeneratedReply `json:"response"`
	Timestamp   time.Time      `json:"timestamp"`
}

// MemoryFragment is an immutable recollection unit owned by a Character.
type MemoryFragment struct {
	ID            string    `json:"id"`
	CharacterID   string    `json:"character_id"`
	InteractionID string    `json:"interaction_id,omitempty"`
	Content       string    `json:"content"`
	Embedding     []float32 `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
}

// RetrievedFragment is a memory fragment scored against a query.
type RetrievedFragment struct {
	Content    string    `json:"content"`
	Similarity float64   `json:"similarity"`
	CreatedAt  time.Time `json:"created_at"`
}
