// Package domain holds the core data model shared by the chunking,
// ingestion, and answering components.
package domain

import "strconv"

// Document is one talk as loaded from the corpus source. Documents are
// read once and immutable; the corpus source owns them.
type Document struct {
	ID            string
	Title         string
	Speaker       string
	URL           string
	Topics        []string
	Description   string
	Views         int
	PublishedDate string
	Transcript    string
}

// Chunk is a bounded, header-annotated excerpt of a document's transcript.
// Seq is the chunk's zero-based position within the document's full chunk
// sequence, assigned once at creation time, so the composite upload key
// {ID}_{Seq} is stable regardless of batch boundaries.
type Chunk struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Speaker string `json:"speaker"`
	URL     string `json:"url"`
	Topics  string `json:"topics"`
	Views   int    `json:"views"`
	Text    string `json:"text"`
	Size    int    `json:"chunk_size"`
	Seq     int    `json:"seq"`
}

// Key returns the globally unique vector-store id for the chunk.
func (c Chunk) Key() string {
	return c.ID + "_" + strconv.Itoa(c.Seq)
}

// ContextItem is the retrieval-time view of a stored chunk. Constructed
// fresh per query; never persisted.
type ContextItem struct {
	TalkID string  `json:"talk_id"`
	Title  string  `json:"title"`
	Chunk  string  `json:"chunk"`
	Score  float32 `json:"score"`
}
