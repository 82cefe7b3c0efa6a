package chunker

import (
	"strings"

	"github.com/talkrag/talkrag/engine/token"
)

// DefaultSeparators order boundary preference from paragraph down to
// sentence and word breaks. The empty separator is the rune-level
// fallback for text with no natural breaks at all.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// splitter produces overlapping windows bounded by a token budget. Sizing
// and overlap are measured in tokens via the Counter, never in characters.
type splitter struct {
	counter    token.Counter
	chunkSize  int
	overlap    int
	separators []string
}

// Split returns windows of at most chunkSize tokens each, consecutive
// windows sharing at least overlap tokens when the text is long enough.
func (s *splitter) Split(text string) []string {
	atoms := s.atoms(text, s.separators, s.atomBudget())
	merged := s.merge(atoms)

	windows := make([]string, 0, len(merged))
	for _, w := range merged {
		if t := strings.TrimSpace(w); t != "" {
			windows = append(windows, t)
		}
	}
	return windows
}

// atomBudget is the maximum token size of an indivisible piece. Keeping
// atoms within the overlap budget lets merge retain at least that many
// tokens between windows without blowing the chunk budget.
func (s *splitter) atomBudget() int {
	if s.overlap > 0 {
		return s.overlap
	}
	return s.chunkSize
}

// atoms recursively breaks text on the coarsest separator that occurs in
// it, descending to finer separators only for parts still over budget.
// Separators stay attached to the preceding part, so atoms rejoin
// losslessly.
func (s *splitter) atoms(text string, seps []string, budget int) []string {
	if text == "" {
		return nil
	}
	if s.counter.Count(text) <= budget {
		return []string{text}
	}

	sep, rest := pickSeparator(text, seps)
	var parts []string
	if sep == "" {
		return s.splitRunes(text, budget)
	}
	parts = splitAfter(text, sep)

	var out []string
	for _, p := range parts {
		if s.counter.Count(p) <= budget {
			out = append(out, p)
		} else {
			out = append(out, s.atoms(p, rest, budget)...)
		}
	}
	return out
}

// merge greedily accumulates atoms into windows up to the token budget.
// When a window is emitted, tail atoms totalling at least the overlap
// budget are carried into the next window.
func (s *splitter) merge(atoms []string) []string {
	var out []string
	var cur []string
	total := 0

	for _, a := range atoms {
		n := s.counter.Count(a)
		if total+n > s.chunkSize && total > 0 {
			out = append(out, strings.Join(cur, ""))

			if s.overlap == 0 {
				cur = cur[:0]
				total = 0
			} else {
				// Drop leading atoms while the remainder still covers the
				// overlap budget, then enforce the size bound.
				for len(cur) > 1 && total-s.counter.Count(cur[0]) >= s.overlap {
					total -= s.counter.Count(cur[0])
					cur = cur[1:]
				}
				for len(cur) > 0 && total+n > s.chunkSize {
					total -= s.counter.Count(cur[0])
					cur = cur[1:]
				}
			}
		}
		cur = append(cur, a)
		total += n
	}
	if len(cur) > 0 {
		out = append(out, strings.Join(cur, ""))
	}
	return out
}

// splitRunes bisects text until every part fits the budget. Only reached
// for text with no separator at all.
func (s *splitter) splitRunes(text string, budget int) []string {
	r := []rune(text)
	if len(r) <= 1 || s.counter.Count(text) <= budget {
		return []string{text}
	}
	mid := len(r) / 2
	left := s.splitRunes(string(r[:mid]), budget)
	return append(left, s.splitRunes(string(r[mid:]), budget)...)
}

// pickSeparator returns the first separator present in text and the finer
// separators below it.
func pickSeparator(text string, seps []string) (string, []string) {
	for i, sp := range seps {
		if sp == "" {
			return "", nil
		}
		if strings.Contains(text, sp) {
			return sp, seps[i+1:]
		}
	}
	return "", nil
}

// splitAfter splits text on sep, keeping the separator attached to the
// preceding part.
func splitAfter(text, sep string) []string {
	var parts []string
	for {
		i := strings.Index(text, sep)
		if i < 0 {
			break
		}
		parts = append(parts, text[:i+len(sep)])
		text = text[i+len(sep):]
	}
	if text != "" {
		parts = append(parts, text)
	}
	return parts
}
