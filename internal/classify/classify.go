package classify

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pfrederiksen/venue-events/internal/event"
)

// Reason explains a classification result
type Reason string

const (
	ReasonAccepted       Reason = "accepted"
	ReasonEmptyTitle     Reason = "empty_title"
	ReasonTooShort       Reason = "title_too_short"
	ReasonTooLong        Reason = "title_too_long"
	ReasonBoilerplate    Reason = "boilerplate"
	ReasonNavigation     Reason = "navigation"
	ReasonGenericProgram Reason = "generic_program"
)

// Reasons lists every Reason, accepted first.
var Reasons = []Reason{
	ReasonAccepted,
	ReasonEmptyTitle,
	ReasonTooShort,
	ReasonTooLong,
	ReasonBoilerplate,
	ReasonNavigation,
	ReasonGenericProgram,
}

// Result is the outcome of classifying one candidate
type Result struct {
	Accept bool   `json:"accept"`
	Reason Reason `json:"reason"`
	Match  string `json:"match,omitempty"` // vocabulary entry that rejected the title
}

// Classifier matches candidate titles against a compiled Vocabulary. It holds no mutable
// state and is safe for concurrent use.
type Classifier struct {
	minLength int
	maxLength int
	terms     map[string]string // folded term → original entry
	markers   []entry
	patterns  []compiledPattern
	generic   []compiledPattern
}

type entry struct {
	folded   string
	original string
}

type compiledPattern struct {
	re       *regexp.Regexp
	original string
}

// New compiles v. An invalid regular expression is reported here so that Classify itself
// cannot fail. Zero length bounds fall back to the defaults.
func New(v Vocabulary) (*Classifier, error) {
	c := &Classifier{
		minLength: v.MinTitleLength,
		maxLength: v.MaxTitleLength,
		terms:     make(map[string]string, len(v.NavigationTerms)),
	}
	if c.minLength <= 0 {
		c.minLength = DefaultMinTitleLength
	}
	if c.maxLength <= 0 {
		c.maxLength = DefaultMaxTitleLength
	}
	if c.minLength > c.maxLength {
		return nil, fmt.Errorf("title length bounds: min %d exceeds max %d", c.minLength, c.maxLength)
	}

	for _, term := range v.NavigationTerms {
		if key := matchKey(term); key != "" {
			c.terms[key] = term
		}
	}

	for _, marker := range v.BoilerplateMarkers {
		if folded := event.FoldText(strings.TrimSpace(marker)); folded != "" {
			c.markers = append(c.markers, entry{folded: folded, original: marker})
		}
	}

	var err error
	if c.patterns, err = compilePatterns(v.NavigationPatterns); err != nil {
		return nil, fmt.Errorf("navigation patterns: %w", err)
	}
	if c.generic, err = compilePatterns(v.GenericPrograms); err != nil {
		return nil, fmt.Errorf("generic programs: %w", err)
	}

	return c, nil
}

var defaultClassifier = mustNew(DefaultVocabulary())

// Default returns a classifier for the built-in vocabulary.
func Default() *Classifier {
	return defaultClassifier
}

func mustNew(v Vocabulary) *Classifier {
	c, err := New(v)
	if err != nil {
		panic(fmt.Sprintf("classify: built-in vocabulary: %v", err))
	}
	return c
}

func compilePatterns(patterns []string) ([]compiledPattern, error) {
	compiled := make([]compiledPattern, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("compiling %q: %w", p, err)
		}
		compiled = append(compiled, compiledPattern{re: re, original: p})
	}
	return compiled, nil
}

// Classify decides whether cand is a genuine event listing. Only the title is consulted;
// a missing date is never a reason to reject.
func (c *Classifier) Classify(cand event.Candidate) Result {
	title := event.CleanText(cand.Title)
	if title == "" {
		return reject(ReasonEmptyTitle, "")
	}

	length := utf8.RuneCountInString(title)
	if length < c.minLength {
		return reject(ReasonTooShort, "")
	}
	if length > c.maxLength {
		return reject(ReasonTooLong, "")
	}

	folded := event.FoldText(title)

	for _, m := range c.markers {
		if strings.Contains(folded, m.folded) {
			return reject(ReasonBoilerplate, m.original)
		}
	}

	key := matchKey(title)
	if term, ok := c.terms[key]; ok {
		return reject(ReasonNavigation, term)
	}
	for _, p := range c.patterns {
		if p.re.MatchString(key) {
			return reject(ReasonNavigation, p.original)
		}
	}

	for _, p := range c.generic {
		if p.re.MatchString(key) {
			return reject(ReasonGenericProgram, p.original)
		}
	}

	return Result{Accept: true, Reason: ReasonAccepted}
}

func reject(reason Reason, match string) Result {
	return Result{Accept: false, Reason: reason, Match: match}
}

// chromeCutset is stripped from both ends of a title before term and pattern matching,
// so "Home »", "> View All" and "Menu:" match their plain entries.
const chromeCutset = " .,:;|-–—»«›‹<>→←↓↑*!?•·+"

func matchKey(s string) string {
	return strings.Trim(event.FoldText(event.CleanText(s)), chromeCutset)
}
