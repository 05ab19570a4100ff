package domain

// RetrievedChunk is a passage produced by one of the indexes, plus routing
// metadata. Chunks are immutable once retrieved.
//
// For fusion purposes the identity of a chunk is its exact text content: two
// chunks with byte-identical text are treated as the same document even if
// they come from different sources. Distinct documents sharing a passage
// will collapse into one fused entry.
type RetrievedChunk struct {
	Text     string   `json:"text"`
	Category Category `json:"category"`
	Source   string   `json:"source"`
	Score    float64  `json:"score,omitempty"`
}

// Answer is the outcome of one request/response cycle.
type Answer struct {
	Text     string           `json:"text"`
	Category Category         `json:"category"`
	Sources  []RetrievedChunk `json:"sources,omitempty"`
}

// NoRelevantDocumentsMessage is the fixed sentinel answer for the empty
// retrieval path. It is a terminal state of retrieval, not an error.
const NoRelevantDocumentsMessage = "No relevant documents found in this category."
