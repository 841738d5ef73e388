package event

import (
	"sort"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// monthTable lists accent-folded, lowercase month names and abbreviations, English
// followed by French. French spellings are stored folded ("fevrier", "aout") and FoldText
// applies the same folding to input text.
var monthTable = []struct {
	month time.Month
	names []string
}{
	{time.January, []string{"january", "jan", "janvier", "janv"}},
	{time.February, []string{"february", "feb", "fevrier", "fevr", "fev"}},
	{time.March, []string{"march", "mar", "mars"}},
	{time.April, []string{"april", "apr", "avril", "avr"}},
	{time.May, []string{"may", "mai"}},
	{time.June, []string{"june", "jun", "juin"}},
	{time.July, []string{"july", "jul", "juillet", "juil"}},
	{time.August, []string{"august", "aug", "aout"}},
	{time.September, []string{"september", "sept", "sep", "septembre"}},
	{time.October, []string{"october", "oct", "octobre"}},
	{time.November, []string{"november", "nov", "novembre"}},
	{time.December, []string{"december", "dec", "decembre"}},
}

var monthNames = buildMonthNames()

func buildMonthNames() map[string]time.Month {
	m := make(map[string]time.Month)
	for _, row := range monthTable {
		for _, name := range row.names {
			m[name] = row.month
		}
	}
	return m
}

// LookupMonth resolves an English or French month name or abbreviation, ignoring case,
// accents and a trailing period. It returns 0 for anything else.
func LookupMonth(name string) time.Month {
	key := strings.TrimSuffix(FoldText(strings.TrimSpace(name)), ".")
	return monthNames[key]
}

// monthAlternation returns the month names as a regexp alternation, longest first so
// that "mars" wins over "mar" and "june" over "jun".
func monthAlternation() string {
	names := make([]string, 0, len(monthNames))
	for name := range monthNames {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	return strings.Join(names, "|")
}

// FoldText lowercases s and strips combining marks, so "Décembre" becomes "decembre".
func FoldText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return strings.ToLower(folded)
}
