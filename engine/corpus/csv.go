// Package corpus loads the talk corpus from its tabular source file.
package corpus

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/talkrag/talkrag/engine/domain"
)

// LoadCSV reads the talks table and maps each row to a Document. The file
// must have a header row; columns are resolved by name so column order
// does not matter. A missing or unreadable file is a fatal error for the
// caller: no partial corpus is returned.
func LoadCSV(path string) ([]domain.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("corpus: open %s: %w", path, err)
	}
	defer f.Close()

	docs, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("corpus: read %s: %w", path, err)
	}
	return docs, nil
}

// Read parses CSV talk rows from r.
func Read(r io.Reader) ([]domain.Document, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"talk_id", "title", "speaker_1", "transcript"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var docs []domain.Document
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		docs = append(docs, domain.Document{
			ID:            field(row, "talk_id"),
			Title:         field(row, "title"),
			Speaker:       field(row, "speaker_1"),
			URL:           field(row, "url"),
			Topics:        ParseTopics(field(row, "topics")),
			Description:   field(row, "description"),
			Views:         parseViews(field(row, "views")),
			PublishedDate: field(row, "published_date"),
			Transcript:    field(row, "transcript"),
		})
	}
	return docs, nil
}

// ParseTopics parses the topics column, which holds a Python-style list
// literal such as "['technology', 'culture']". Quoted elements may
// themselves contain commas, so the list is scanned element by element
// rather than split on commas. Anything unparseable is kept as a single
// raw topic rather than discarded.
func ParseTopics(raw string) []string {
	s := strings.TrimSpace(raw)
	if s == "" || s == "[]" {
		return nil
	}
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return []string{s}
	}
	inner := s[1 : len(s)-1]

	var topics []string
	i := 0
	for i < len(inner) {
		for i < len(inner) && (inner[i] == ' ' || inner[i] == ',') {
			i++
		}
		if i >= len(inner) {
			break
		}

		var t string
		if q := inner[i]; q == '\'' || q == '"' {
			end := strings.IndexByte(inner[i+1:], q)
			if end < 0 {
				// Unterminated quote, take the rest as-is.
				t = strings.TrimSpace(inner[i+1:])
				i = len(inner)
			} else {
				t = inner[i+1 : i+1+end]
				i += end + 2
			}
		} else {
			end := strings.IndexByte(inner[i:], ',')
			if end < 0 {
				t = strings.TrimSpace(inner[i:])
				i = len(inner)
			} else {
				t = strings.TrimSpace(inner[i : i+end])
				i += end
			}
		}
		if t != "" {
			topics = append(topics, t)
		}
	}
	return topics
}

func parseViews(raw string) int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 {
		return int(f)
	}
	return 0
}
