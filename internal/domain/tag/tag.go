package tag

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)
	word     = regexp.MustCompile(`[A-Za-z0-9]+`)
)

// minWordLen is the shortest word Extract keeps. Shorter words are dropped
// before normalization.
const minWordLen = 3

// Tag is a normalized token: lowercase, [a-z0-9_], no leading or trailing
// underscore. The empty Tag is a valid value.
type Tag string

// Normalize lowercases s, collapses every run of characters outside [a-z0-9]
// into a single underscore and trims underscores from both ends.
// Lowercasing applies full Unicode special casing, so "İ" becomes "i" plus a
// combining dot rather than a bare "i".
func Normalize(s string) Tag {
	// A Caser carries state and must not be shared between goroutines.
	s = cases.Lower(language.Und).String(s)
	s = nonAlnum.ReplaceAllString(s, "_")
	return Tag(strings.Trim(s, "_"))
}

// Set is an unordered, deduplicated collection of tags.
type Set map[Tag]struct{}

func NewSet(tags ...Tag) Set {
	s := make(Set, len(tags))
	for _, t := range tags {
		s[t] = struct{}{}
	}
	return s
}

func (s Set) Add(t Tag) { s[t] = struct{}{} }

func (s Set) Has(t Tag) bool {
	_, ok := s[t]
	return ok
}

func (s Set) Len() int { return len(s) }

// Sorted returns the tags in ascending order. Callers that need a stable
// iteration order must go through Sorted; ranging over the map is random.
func (s Set) Sorted() []Tag {
	out := make([]Tag, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Extract builds the tag set for a ticket from its title and description.
// Words are maximal ASCII letter/digit runs; words shorter than three
// characters are discarded. No stemming or stopword removal.
func Extract(title, description string) Set {
	words := word.FindAllString(title+" "+description, -1)
	set := make(Set, len(words))
	for _, w := range words {
		if len(w) < minWordLen {
			continue
		}
		set.Add(Normalize(w))
	}
	return set
}

// Strings converts tags to plain strings, preserving order.
func Strings(tags []Tag) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = string(t)
	}
	return out
}
