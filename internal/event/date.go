package event

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Date is a calendar date without a time of day
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate returns the date for year/month/day and reports whether it exists on the
// calendar (Feb 30 does not).
func NewDate(year int, month time.Month, day int) (Date, bool) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return Date{}, false
	}
	return Date{Year: year, Month: month, Day: day}, true
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Today returns the current UTC date.
func Today() Date {
	return DateOf(time.Now().UTC())
}

// ParseISODate parses a strict "2006-01-02" string.
func ParseISODate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// Time returns midnight UTC on d.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// Before reports whether d is earlier than other.
func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}

// After reports whether d is later than other.
func (d Date) After(other Date) bool {
	return d.Time().After(other.Time())
}

// Weekday returns the day of the week of d.
func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// MarshalText encodes d as "2006-01-02".
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes a "2006-01-02" date.
func (d *Date) UnmarshalText(data []byte) error {
	parsed, err := ParseISODate(string(data))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Clock is a time of day attached to an event when the date text carries one
type Clock struct {
	Hour   int
	Minute int
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// MarshalText encodes c as "15:04".
func (c Clock) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a "15:04" clock.
func (c *Clock) UnmarshalText(data []byte) error {
	t, err := time.Parse("15:04", string(data))
	if err != nil {
		return fmt.Errorf("parsing clock %q: %w", string(data), err)
	}
	*c = Clock{Hour: t.Hour(), Minute: t.Minute()}
	return nil
}

var (
	// "2025-12-20", "2025/12/20", "2025-12-20T19:30:00"
	isoDatePattern = regexp.MustCompile(`\b(\d{4})[-/](\d{1,2})[-/](\d{1,2})(?:[Tt ](\d{2}):(\d{2}))?`)

	// "12/20/2025", "02/15/26", "4.4.26" (month first unless the first part is > 12)
	numericDatePattern = regexp.MustCompile(`\b(\d{1,2})[/.](\d{1,2})[/.](\d{4}|\d{2})\b`)

	// "Dec 14", "December 14th, 2025", "sat, dec. 14 2025"
	monthFirstPattern = regexp.MustCompile(`\b(` + monthAlternation() + `)\.?\s+(\d{1,2})(?:st|nd|rd|th|er)?\b(?:\s*,?\s*(\d{4})\b)?`)

	// "14 December 2025", "1er mars", "samedi 14 decembre", "14th of March"
	dayFirstPattern = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th|er)?\s+(?:de\s+|of\s+)?(` + monthAlternation() + `)\b\.?(?:\s*,?\s*(\d{4})\b)?`)

	looseYearPattern = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)

	twelveHourPattern = regexp.MustCompile(`\b(\d{1,2})(?::(\d{2}))?\s*([ap])\.?m\b\.?`)
	frenchHourPattern = regexp.MustCompile(`\b(\d{1,2})h(\d{2})?\b`)
	colonTimePattern  = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
)

// NormalizeDate resolves free-text date text to a calendar date, or nil when the text
// holds no recognizable date.
//
// Supported forms, tried in order:
//   - ISO: "2025-12-20", "2025-12-20T19:00:00"
//   - numeric: "12/20/2025", "02/15/26", "4.4.26", and "20.12.2025" when the
//     first part cannot be a month
//   - month name: "Nov 4", "November 4, 2025", "Sat, Dec 14", "14 December 2025",
//     and the French names ("11 novembre 2025", "samedi 14 décembre")
//
// A 4-digit year in the text is used as is. Without one, the year is the first one in
// which month/day falls on or after ref.
func NormalizeDate(text string, ref Date) *Date {
	folded := FoldText(CleanText(text))
	if folded == "" {
		return nil
	}

	if m := isoDatePattern.FindStringSubmatch(folded); m != nil {
		return explicitDate(atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}

	if m := numericDatePattern.FindStringSubmatch(folded); m != nil {
		year := atoi(m[3])
		if len(m[3]) == 2 {
			year = expandTwoDigitYear(year)
		}
		month, day := atoi(m[1]), atoi(m[2])
		if month > 12 && day <= 12 {
			month, day = day, month
		}
		return explicitDate(year, month, day)
	}

	month, day, year, end, ok := matchMonthName(folded)
	if !ok {
		return nil
	}
	if year == 0 {
		year = looseYear(folded[end:], month)
	}
	if year != 0 {
		return explicitDate(year, int(month), day)
	}
	return inferYear(month, day, ref)
}

// matchMonthName finds the earliest month-name date in folded text. year is 0 when no year
// sits next to the day; end is the offset just past the match.
func matchMonthName(folded string) (month time.Month, day, year, end int, ok bool) {
	first := monthFirstPattern.FindStringSubmatchIndex(folded)
	second := dayFirstPattern.FindStringSubmatchIndex(folded)

	useFirst := first != nil && (second == nil || first[0] <= second[0])
	switch {
	case useFirst:
		month = monthNames[folded[first[2]:first[3]]]
		day = atoi(folded[first[4]:first[5]])
		if first[6] >= 0 {
			year = atoi(folded[first[6]:first[7]])
		}
		end = first[1]
	case second != nil:
		day = atoi(folded[second[2]:second[3]])
		month = monthNames[folded[second[4]:second[5]]]
		if second[6] >= 0 {
			year = atoi(folded[second[6]:second[7]])
		}
		end = second[1]
	default:
		return 0, 0, 0, 0, false
	}
	return month, day, year, end, month != 0
}

// looseYear returns the first 4-digit year in rest, the text after a date of month that
// carries no year of its own, or 0. When another month-name date sits before that year it
// owns it: "Dec 14 - Jan 3, 2026" puts Dec 14 in 2025, "Dec 14 - Dec 20, 2025" in 2025.
func looseYear(rest string, month time.Month) int {
	loc := looseYearPattern.FindStringIndex(rest)
	if loc == nil {
		return 0
	}
	year := atoi(rest[loc[0]:loc[1]])

	// the owning date's own match includes the year, so search up to the year's end
	head := rest[:loc[1]]
	owner := time.Month(0)
	for _, p := range []*regexp.Regexp{monthFirstPattern, dayFirstPattern} {
		for _, m := range p.FindAllStringSubmatch(head, -1) {
			name := m[1]
			if p == dayFirstPattern {
				name = m[2]
			}
			if mo := monthNames[name]; mo != 0 {
				owner = mo
			}
		}
	}
	if owner != 0 && owner < month {
		return year - 1
	}
	return year
}

func explicitDate(year, month, day int) *Date {
	if year < 1000 {
		return nil
	}
	d, ok := NewDate(year, time.Month(month), day)
	if !ok {
		return nil
	}
	return &d
}

// inferYear picks the first occurrence of month/day on or after ref. Feb 29 can take up
// to eight years to come around; anything that never exists returns nil.
func inferYear(month time.Month, day int, ref Date) *Date {
	if ref.Year < 1000 {
		return nil
	}
	for year := ref.Year; year <= ref.Year+8; year++ {
		d, ok := NewDate(year, month, day)
		if !ok {
			continue
		}
		if !d.Before(ref) {
			return &d
		}
	}
	return nil
}

// expandTwoDigitYear follows time.Parse: 69-99 are 19xx, 00-68 are 20xx.
func expandTwoDigitYear(yy int) int {
	if yy >= 69 {
		return 1900 + yy
	}
	return 2000 + yy
}

// ParseClock extracts a time of day from date text: "8pm", "8:30 PM", "20h", "20h30",
// "20:00" or the time part of an ISO date-time. Returns nil when there is none.
func ParseClock(text string) *Clock {
	folded := FoldText(CleanText(text))

	if m := isoDatePattern.FindStringSubmatch(folded); m != nil && m[4] != "" {
		return newClock(atoi(m[4]), atoi(m[5]))
	}

	if m := twelveHourPattern.FindStringSubmatch(folded); m != nil {
		hour := atoi(m[1])
		if hour < 1 || hour > 12 {
			return nil
		}
		hour %= 12
		if m[3] == "p" {
			hour += 12
		}
		return newClock(hour, atoi(m[2]))
	}

	if m := frenchHourPattern.FindStringSubmatch(folded); m != nil {
		return newClock(atoi(m[1]), atoi(m[2]))
	}

	if m := colonTimePattern.FindStringSubmatch(folded); m != nil {
		return newClock(atoi(m[1]), atoi(m[2]))
	}

	return nil
}

func newClock(hour, minute int) *Clock {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return nil
	}
	return &Clock{Hour: hour, Minute: minute}
}

// atoi returns 0 for empty or malformed input; the patterns only capture digits.
func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
