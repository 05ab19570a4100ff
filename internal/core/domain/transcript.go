package domain

import "time"

// TranscriptEntry is one completed turn written to the append-only
// conversation transcript. The transcript is an audit log; it never feeds
// back into the in-memory conversational state.
type TranscriptEntry struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id"`
	UserText   string    `json:"user_text"`
	Standalone string    `json:"standalone"`
	Answer     string    `json:"answer"`
	Category   Category  `json:"category"`
	Sources    int       `json:"sources"`
	CreatedAt  time.Time `json:"created_at"`
}
