package period

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/tj/go-naturaldate"
)

// DateLayout is the canonical YYYY-MM-DD form used by both upstream APIs.
const DateLayout = "2006-01-02"

// Range is an inclusive report window.
type Range struct {
	Start time.Time
	End   time.Time
}

func (r Range) StartDate() string { return Format(r.Start) }
func (r Range) EndDate() string   { return Format(r.End) }

func (r Range) String() string {
	return r.StartDate() + " – " + r.EndDate()
}

// WeekBounds returns the Monday of ref's week through the Sunday of the
// following week, a 13-day inclusive window.
func WeekBounds(ref time.Time) Range {
	day := truncateDay(ref)
	offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
	monday := day.AddDate(0, 0, -offset)
	return Range{
		Start: monday,
		End:   monday.AddDate(0, 0, 13),
	}
}

// Format renders t as YYYY-MM-DD.
func Format(t time.Time) string {
	return t.Format(DateLayout)
}

// CanonicalDate formats t, or returns nil when no date was supplied.
func CanonicalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := Format(*t)
	return &s
}

// BusinessDaysInclusive approximates the working days between two dates:
// whole calendar days between them, minus two weekend days for every full
// five, plus one for the inclusive end. The divisor feeds allocation math,
// so the approximation must not be replaced with an exact weekday count.
func BusinessDaysInclusive(start, end string) (int, error) {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return 0, fmt.Errorf("parsing start date %q: %w", start, err)
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return 0, fmt.Errorf("parsing end date %q: %w", end, err)
	}

	calc := int(math.Round(e.Sub(s).Hours() / 24))
	weekend := (calc / 5) * 2
	return calc - weekend + 1, nil
}

// Resolve picks the report window from positional arguments. With at least
// two arguments the last two are start and end; otherwise the default
// WeekBounds window around now is used.
func Resolve(args []string, now time.Time) (Range, error) {
	if len(args) < 2 {
		return WeekBounds(now), nil
	}

	start, err := ParseDate(args[len(args)-2], now)
	if err != nil {
		return Range{}, fmt.Errorf("invalid start date: %w", err)
	}
	end, err := ParseDate(args[len(args)-1], now)
	if err != nil {
		return Range{}, fmt.Errorf("invalid end date: %w", err)
	}
	return Range{Start: start, End: end}, nil
}

// absoluteLayouts are tried in order before any natural-language parsing.
var absoluteLayouts = []string{
	DateLayout,
	"01/02/2006",
	"1/2/2006",
	"Jan 2 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	time.RFC3339,
}

// looksAbsolute matches input that names a calendar date rather than a
// relative phrase: a year, a month name, or date/time separators.
var looksAbsolute = regexp.MustCompile(`(?i)\d{4}|[/:]|\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\b`)

// ParseDate accepts a calendar date in one of absoluteLayouts or a relative
// phrase such as "yesterday" or "last monday", resolved against now.
// Absolute dates that match no layout are an error and never fall through
// to the relative parser, which would read only part of them.
func ParseDate(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range absoluteLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return truncateDay(t), nil
		}
	}
	if looksAbsolute.MatchString(s) {
		return time.Time{}, fmt.Errorf("unrecognised date %q: use YYYY-MM-DD, MM/DD/YYYY or \"Jan 2 2006\"", s)
	}

	ref := truncateDay(now)
	t, err := naturaldate.Parse(s, ref, naturaldate.WithDirection(naturaldate.Past))
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %q: %w", s, err)
	}
	// naturaldate echoes the reference time back for input it cannot read.
	if t.Equal(ref) && !isToday(s) {
		return time.Time{}, fmt.Errorf("unrecognised date %q", s)
	}
	return truncateDay(t), nil
}

func isToday(s string) bool {
	s = strings.ToLower(s)
	return s == "today" || s == "now"
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
