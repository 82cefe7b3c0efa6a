// Package chunker splits a document's transcript into overlapping,
// token-bounded windows, each carrying a duplicated metadata header so a
// retrieved chunk is self-describing.
package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/talkrag/talkrag/engine/domain"
	"github.com/talkrag/talkrag/engine/token"
)

const (
	// DefaultChunkSize is the token budget per window.
	DefaultChunkSize = 1000
	// DefaultOverlap is the token overlap between consecutive windows.
	DefaultOverlap = 200
	// MinChunkChars is the minimum raw window length. Shorter windows are
	// noise (headers, applause markers, artifacts) and are dropped.
	MinChunkChars = 50
	// ContentPrefix separates the metadata header from the window text.
	ContentPrefix = "Content: "
)

// Config bounds the splitter. Zero values fall back to the defaults.
type Config struct {
	ChunkSize int
	Overlap   int
}

// Chunker turns Documents into Chunks.
type Chunker struct {
	split *splitter
	cfg   Config
}

// New creates a Chunker sized by the given token counter.
func New(counter token.Counter, cfg Config) *Chunker {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.Overlap < 0 {
		cfg.Overlap = DefaultOverlap
	}
	if cfg.Overlap >= cfg.ChunkSize {
		cfg.Overlap = cfg.ChunkSize / 5
	}
	return &Chunker{
		split: &splitter{
			counter:    counter,
			chunkSize:  cfg.ChunkSize,
			overlap:    cfg.Overlap,
			separators: DefaultSeparators,
		},
		cfg: cfg,
	}
}

// Header renders the context header prepended to every chunk of doc. The
// output is deterministic: identical metadata yields byte-identical text.
func Header(doc domain.Document) string {
	return fmt.Sprintf(
		"Title: %s\nSpeaker: %s\nTopics: %s\nDescription: %s\nStats: %d views, Published: %s\n",
		doc.Title,
		doc.Speaker,
		strings.Join(doc.Topics, ", "),
		doc.Description,
		doc.Views,
		doc.PublishedDate,
	)
}

// Chunk splits one document into its full chunk sequence. A transcript
// shorter than the chunk size yields exactly one chunk; a document whose
// windows are all under MinChunkChars yields none, which is not an error.
func (c *Chunker) Chunk(doc domain.Document) []domain.Chunk {
	header := Header(doc)
	topics := strings.Join(doc.Topics, ", ")

	var out []domain.Chunk
	seq := 0
	for _, window := range c.split.Split(doc.Transcript) {
		if utf8.RuneCountInString(window) < MinChunkChars {
			continue
		}
		text := header + ContentPrefix + window
		out = append(out, domain.Chunk{
			ID:      doc.ID,
			Title:   doc.Title,
			Speaker: doc.Speaker,
			URL:     doc.URL,
			Topics:  topics,
			Views:   doc.Views,
			Text:    text,
			Size:    len(text),
			Seq:     seq,
		})
		seq++
	}
	return out
}

// Content returns the window portion of a chunk's text, without the
// header. Used by tests and the quality report.
func Content(text string) string {
	if i := strings.Index(text, ContentPrefix); i >= 0 {
		return text[i+len(ContentPrefix):]
	}
	return text
}
