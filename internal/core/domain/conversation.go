package domain

// Turn is an immutable user/assistant exchange. It is created after a
// completed generation and never mutated afterwards.
type Turn struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

// MemoryMode selects what conversational state is presented to the final
// generation call. It never changes retrieval or classification behavior.
type MemoryMode string

const (
	// MemoryModeWindow presents only the recent turn window.
	MemoryModeWindow MemoryMode = "window"
	// MemoryModeSummary presents the running summary plus the turn window.
	MemoryModeSummary MemoryMode = "summary"
)

// ParseMemoryMode maps raw configuration input to a MemoryMode, defaulting
// to MemoryModeWindow.
func ParseMemoryMode(raw string) MemoryMode {
	if MemoryMode(raw) == MemoryModeSummary {
		return MemoryModeSummary
	}
	return MemoryModeWindow
}

// DefaultMemoryWindow is the default sliding-window size W.
const DefaultMemoryWindow = 5

// ConversationMemory holds a bounded sliding window of turns plus a running
// free-text summary. The window is a ring buffer so eviction is O(1).
// After any mutation completes, len(turns) <= window.
//
// ConversationMemory is not safe for concurrent use; each session owns one
// exclusively.
type ConversationMemory struct {
	ring    []Turn
	head    int
	count   int
	window  int
	summary string
}

// NewConversationMemory creates an empty memory bounded to the given window
// size. Non-positive sizes fall back to DefaultMemoryWindow.
func NewConversationMemory(window int) *ConversationMemory {
	if window <= 0 {
		window = DefaultMemoryWindow
	}
	return &ConversationMemory{
		ring:   make([]Turn, window),
		window: window,
	}
}

// Append adds a turn to the tail of the window. When the bound is crossed it
// evicts the single oldest turn and returns it with evicted=true. At most one
// turn is evicted per call.
func (m *ConversationMemory) Append(t Turn) (oldest Turn, evicted bool) {
	if m.count == m.window {
		oldest = m.ring[m.head]
		evicted = true
		m.ring[m.head] = t
		m.head = (m.head + 1) % m.window
		return oldest, true
	}
	m.ring[(m.head+m.count)%m.window] = t
	m.count++
	return Turn{}, false
}

// Turns returns the window contents in chronological order as a copy.
func (m *ConversationMemory) Turns() []Turn {
	out := make([]Turn, 0, m.count)
	for i := 0; i < m.count; i++ {
		out = append(out, m.ring[(m.head+i)%m.window])
	}
	return out
}

// Len reports the number of turns currently held.
func (m *ConversationMemory) Len() int { return m.count }

// Window reports the configured bound W.
func (m *ConversationMemory) Window() int { return m.window }

// Summary returns the running summary; empty until the first compaction.
func (m *ConversationMemory) Summary() string { return m.summary }

// SetSummary unconditionally replaces the running summary. Only compaction
// calls this.
func (m *ConversationMemory) SetSummary(s string) { m.summary = s }

// Empty reports whether the memory carries no state at all, which makes the
// session's next query its first.
func (m *ConversationMemory) Empty() bool {
	return m.count == 0 && m.summary == ""
}
