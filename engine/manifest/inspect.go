package manifest

import (
	"strings"
	"unicode/utf8"

	"github.com/talkrag/talkrag/engine/chunker"
	"github.com/talkrag/talkrag/engine/domain"
)

// Report is the quality check run before ingestion. Problems are surfaced
// for a human to act on; nothing is auto-repaired.
type Report struct {
	Total       int
	EmptyText   int
	ShortText   int
	MissingMeta int
	ShortSample string
}

// Clean reports whether the manifest is safe to upload.
func (r Report) Clean() bool {
	return r.EmptyText == 0 && r.MissingMeta == 0
}

// Inspect scans a manifest for degenerate chunks: empty text, content
// under the minimum chunk length, or missing title/speaker metadata.
func Inspect(chunks []domain.Chunk) Report {
	r := Report{Total: len(chunks)}
	for _, c := range chunks {
		if strings.TrimSpace(c.Text) == "" {
			r.EmptyText++
			continue
		}
		if utf8.RuneCountInString(chunker.Content(c.Text)) < chunker.MinChunkChars {
			r.ShortText++
			if r.ShortSample == "" {
				r.ShortSample = c.Text
			}
		}
		if c.Title == "" || c.Speaker == "" {
			r.MissingMeta++
		}
	}
	return r
}
