// Package mask builds forbidden-word matchers and the display-text masking transform.
package mask

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Replacement is the fixed-length run substituted for every matched word.
const Replacement = "******"

// Set is an ordered, case-insensitive, duplicate-free forbidden-word collection.
// Insertion order is preserved for display; matching ignores it.
type Set struct {
	words []string
	index map[string]struct{}
}

// NewSet builds a set from the given words, dropping blanks and duplicates.
func NewSet(words ...string) *Set {
	s := &Set{index: make(map[string]struct{})}
	for _, word := range words {
		s.Add(word)
	}
	return s
}

// Add inserts one word and reports whether the set changed.
func (s *Set) Add(word string) bool {
	word = strings.TrimSpace(word)
	if word == "" {
		return false
	}
	key := strings.ToLower(word)
	if _, ok := s.index[key]; ok {
		return false
	}
	s.index[key] = struct{}{}
	s.words = append(s.words, word)
	return true
}

// Remove deletes one word (case-insensitive) and reports whether the set changed.
func (s *Set) Remove(word string) bool {
	key := strings.ToLower(strings.TrimSpace(word))
	if _, ok := s.index[key]; !ok {
		return false
	}
	delete(s.index, key)
	for i, existing := range s.words {
		if strings.ToLower(existing) == key {
			s.words = append(s.words[:i], s.words[i+1:]...)
			break
		}
	}
	return true
}

// Contains reports case-insensitive membership.
func (s *Set) Contains(word string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[strings.ToLower(strings.TrimSpace(word))]
	return ok
}

// Words returns the words in insertion order.
func (s *Set) Words() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.words))
	copy(out, s.words)
	return out
}

// Len returns the number of words in the set.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.words)
}

// Matcher locates forbidden-word occurrences in raw text.
type Matcher struct {
	re *regexp.Regexp
}

// Build compiles a case-insensitive whole-word matcher for the set.
// An empty or nil set yields nil, meaning "mask nothing".
func Build(s *Set) *Matcher {
	if s == nil || len(s.words) == 0 {
		return nil
	}
	escaped := make([]string, 0, len(s.words))
	for _, word := range s.words {
		escaped = append(escaped, regexp.QuoteMeta(word))
	}
	re := regexp.MustCompile(`(?i)(` + strings.Join(escaped, "|") + `)`)
	return &Matcher{re: re}
}

// Mask replaces every whole-word match in text with Replacement. Matching is
// greedy left-to-right and non-overlapping; it only ever runs against raw
// text, never against previously masked output. Word boundaries are checked
// per rune, since regexp's \b is ASCII-only and the word lists here are full
// of accented letters.
func Mask(text string, m *Matcher) string {
	if m == nil || m.re == nil {
		return text
	}

	spans := m.re.FindAllStringIndex(text, -1)
	if len(spans) == 0 {
		return text
	}

	var b strings.Builder
	last := 0
	for _, span := range spans {
		if !onWordBoundary(text, span[0], span[1]) {
			continue
		}
		b.WriteString(text[last:span[0]])
		b.WriteString(Replacement)
		last = span[1]
	}
	b.WriteString(text[last:])
	return b.String()
}

// onWordBoundary reports whether the match at [start, end) is a whole word:
// the adjacent runes, when present, are not letters, digits, or underscore.
func onWordBoundary(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
