package domain

import "strings"

// ValidateDocument checks a Document before chunking. Documents with an
// empty or whitespace-only transcript, or missing title or speaker, are
// excluded from chunking entirely.
func ValidateDocument(doc Document) error {
	if doc.ID == "" {
		return NewValidationError(doc.ID, ErrMissingID)
	}
	if strings.TrimSpace(doc.Transcript) == "" {
		return NewValidationError(doc.ID, ErrEmptyTranscript)
	}
	if strings.TrimSpace(doc.Title) == "" {
		return NewValidationError(doc.ID, ErrMissingTitle)
	}
	if strings.TrimSpace(doc.Speaker) == "" {
		return NewValidationError(doc.ID, ErrMissingSpeaker)
	}
	return nil
}

// FilterValid returns only the documents that pass ValidateDocument,
// preserving order.
func FilterValid(docs []Document) []Document {
	var out []Document
	for _, d := range docs {
		if ValidateDocument(d) == nil {
			out = append(out, d)
		}
	}
	return out
}
