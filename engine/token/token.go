// Package token provides deterministic token counting used to size chunks
// and estimate embedding cost.
package token

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Counter maps text to a token count. Implementations must be
// deterministic: chunk boundaries and cost estimates depend on it.
type Counter interface {
	Count(text string) int
}

// Tiktoken counts tokens with a tiktoken BPE encoding. This is the
// production counter; cl100k_base matches the embedding model family the
// corpus is priced against.
type Tiktoken struct {
	enc *tiktoken.Tiktoken
}

// DefaultEncoding is the encoding used unless configured otherwise.
const DefaultEncoding = "cl100k_base"

// NewTiktoken loads the named encoding.
func NewTiktoken(encoding string) (*Tiktoken, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("token: load encoding %s: %w", encoding, err)
	}
	return &Tiktoken{enc: enc}, nil
}

// Count implements Counter.
func (t *Tiktoken) Count(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}

// Words approximates tokens as whitespace-separated fields. It exists for
// offline runs and tests where the BPE tables are not available.
type Words struct{}

// Count implements Counter.
func (Words) Count(text string) int {
	return len(strings.Fields(text))
}
