package filter

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/pfrederiksen/venue-events/internal/event"
)

var (
	// "Mar 1-15", "March 1 - 15", "décembre 1-15"
	sameMonthRange = regexp.MustCompile(`^(\p{L}+)\.?\s+(\d{1,2})\s*-\s*(\d{1,2})$`)

	// "Mar 1 - Apr 15", "Dec 25 - Jan 5"
	crossMonthRange = regexp.MustCompile(`^(\p{L}+)\.?\s+(\d{1,2})\s*-\s*(\p{L}+)\.?\s+(\d{1,2})$`)

	// "March"
	wholeMonth = regexp.MustCompile(`^(\p{L}+)\.?$`)
)

// ParseDateRange parses a date range string into inclusive start and end dates.
//
// Supported formats:
//   - "Mar 1-15" or "March 1-15" - Same month, different days
//   - "March 1 - April 15" - Different months
//   - "March" - Entire month
//
// Month names are the ones NormalizeDate understands, French included. The year is
// inferred the same way: the range is the first one that has not ended before ref. A
// range that wraps past December ends in the following year.
func ParseDateRange(input string, ref event.Date) (*event.Date, *event.Date, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil, fmt.Errorf("date range cannot be empty")
	}
	if ref.Year < 1000 {
		return nil, nil, fmt.Errorf("invalid reference date %s", ref)
	}

	if m := sameMonthRange.FindStringSubmatch(input); m != nil {
		month, err := parseMonth(m[1])
		if err != nil {
			return nil, nil, err
		}
		day1, day2, err := parseDays(m[2], m[3])
		if err != nil {
			return nil, nil, err
		}
		if day1 > day2 {
			return nil, nil, fmt.Errorf("start date must be before end date")
		}

		to, ok := nextOccurrence(month, day2, ref)
		if !ok {
			return nil, nil, fmt.Errorf("invalid day: %d %s", day2, month)
		}
		from, ok := event.NewDate(to.Year, month, day1)
		if !ok {
			return nil, nil, fmt.Errorf("invalid day: %d %s", day1, month)
		}
		return &from, &to, nil
	}

	if m := crossMonthRange.FindStringSubmatch(input); m != nil {
		month1, err := parseMonth(m[1])
		if err != nil {
			return nil, nil, err
		}
		month2, err := parseMonth(m[3])
		if err != nil {
			return nil, nil, err
		}
		day1, day2, err := parseDays(m[2], m[4])
		if err != nil {
			return nil, nil, err
		}

		to, ok := nextOccurrence(month2, day2, ref)
		if !ok {
			return nil, nil, fmt.Errorf("invalid day: %d %s", day2, month2)
		}
		year1 := to.Year
		if month1 > month2 || (month1 == month2 && day1 > day2) {
			year1--
		}
		from, ok := event.NewDate(year1, month1, day1)
		if !ok {
			return nil, nil, fmt.Errorf("invalid day: %d %s", day1, month1)
		}
		return &from, &to, nil
	}

	if m := wholeMonth.FindStringSubmatch(input); m != nil {
		month, err := parseMonth(m[1])
		if err != nil {
			return nil, nil, err
		}

		year := ref.Year
		if month < ref.Month {
			year++
		}
		from, _ := event.NewDate(year, month, 1)
		to := event.DateOf(time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC))
		return &from, &to, nil
	}

	return nil, nil, fmt.Errorf("invalid date range format. Use 'Mar 1-15', 'March 1 - March 15', or 'March'")
}

func parseMonth(name string) (time.Month, error) {
	month := event.LookupMonth(name)
	if month == 0 {
		return 0, fmt.Errorf("invalid month: %s", name)
	}
	return month, nil
}

func parseDays(a, b string) (int, int, error) {
	var day1, day2 int
	if _, err := fmt.Sscanf(a, "%d", &day1); err != nil || day1 < 1 || day1 > 31 {
		return 0, 0, fmt.Errorf("invalid day: %s", a)
	}
	if _, err := fmt.Sscanf(b, "%d", &day2); err != nil || day2 < 1 || day2 > 31 {
		return 0, 0, fmt.Errorf("invalid day: %s", b)
	}
	return day1, day2, nil
}

// nextOccurrence is the first month/day on or after ref.
func nextOccurrence(month time.Month, day int, ref event.Date) (event.Date, bool) {
	for year := ref.Year; year <= ref.Year+8; year++ {
		if d, ok := event.NewDate(year, month, day); ok && !d.Before(ref) {
			return d, true
		}
	}
	return event.Date{}, false
}
