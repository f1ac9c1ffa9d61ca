// Package daterange parses partial date specifications and resolves them
// into concrete half-open [start, end) intervals.
//
// A spec is a string of the form "YYYY", "YYYYMM" or "YYYYMMDD", with
// optional dashes between units. Units left out of a spec are unknown and
// resolve differently per constructor: the covering range of "2024-06" is
// the whole month, while as the end of a span it marks the first day after
// the period.
package daterange

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Bounds for open-ended intervals.
const (
	YearMin = 1900
	YearMax = 2100
)

// Any marks a calendar unit as unconstrained in Of.
const Any = 0

// ErrBadSpec marks an unparseable or inconsistent date specification.
var ErrBadSpec = errors.New("daterange: invalid date spec")

// Partial is a date with possibly unknown units. A zero unit is unknown;
// parsing guarantees that known units are contiguous from the year down.
type Partial struct {
	Year  int
	Month int
	Day   int
}

// ParsePartial parses "YYYY", "YYYYMM" or "YYYYMMDD", dashes allowed.
func ParsePartial(spec string) (Partial, error) {
	s := strings.ReplaceAll(strings.TrimSpace(spec), "-", "")
	var layout string
	switch len(s) {
	case 8:
		layout = "20060102"
	case 6:
		layout = "200601"
	case 4:
		layout = "2006"
	default:
		return Partial{}, fmt.Errorf("%w: %q", ErrBadSpec, spec)
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return Partial{}, fmt.Errorf("%w: %q", ErrBadSpec, spec)
	}
	p := Partial{Year: t.Year()}
	if len(s) >= 6 {
		p.Month = int(t.Month())
	}
	if len(s) == 8 {
		p.Day = t.Day()
	}
	return p, nil
}

// start resolves unknown units to their minimum.
func (p Partial) start() time.Time {
	y, m, d := p.Year, p.Month, p.Day
	if y == 0 {
		y = YearMin
	}
	if m == 0 {
		m = 1
	}
	if d == 0 {
		d = 1
	}
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

// endExclusive resolves the spec to the first instant after its period:
// full dates resolve to the date itself (an exclusive span endpoint),
// partial specs to the start of the following period.
func (p Partial) endExclusive() time.Time {
	switch {
	case p.Day != 0:
		return time.Date(p.Year, time.Month(p.Month), p.Day, 0, 0, 0, 0, time.UTC)
	case p.Month != 0:
		return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	default:
		return time.Date(p.Year, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(1, 0, 0)
	}
}

// addUnit shifts t by n of the spec's finest known unit.
func (p Partial) addUnit(t time.Time, n int) time.Time {
	switch {
	case p.Day != 0:
		return t.AddDate(0, 0, n)
	case p.Month != 0:
		return t.AddDate(0, n, 0)
	default:
		return t.AddDate(n, 0, 0)
	}
}

// Range is a half-open [start, end) interval of days.
type Range struct {
	start time.Time
	end   time.Time
}

func (r Range) Start() time.Time { return r.start }
func (r Range) End() time.Time   { return r.end }

// Interval returns both endpoints.
func (r Range) Interval() (start, end time.Time) { return r.start, r.end }

// Contains reports whether start <= t < end.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.start) && t.Before(r.end)
}

func (r Range) IsZero() bool { return r.start.IsZero() && r.end.IsZero() }

func (r Range) String() string {
	return fmt.Sprintf("[%s, %s)", r.start.Format("2006-01-02"), r.end.Format("2006-01-02"))
}

// Parse returns the covering range of a single spec: the whole day, month
// or year it names.
func Parse(spec string) (Range, error) {
	p, err := ParsePartial(spec)
	if err != nil {
		return Range{}, err
	}
	start := p.start()
	return Range{start, p.addUnit(start, 1)}, nil
}

// New builds a range from explicit bounds; end is exclusive.
func New(start, end time.Time) Range {
	return Range{start, end}
}

// Min and Max are the resolved bounds of fully open interval sides.
func Min() time.Time { return time.Date(YearMin, 1, 1, 0, 0, 0, 0, time.UTC) }
func Max() time.Time { return time.Date(YearMax+1, 1, 1, 0, 0, 0, 0, time.UTC) }

// FromTime returns the single-day range covering t.
func FromTime(t time.Time) Range {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return Range{day, day.AddDate(0, 0, 1)}
}

// Span builds an explicit interval from two specs. An empty spec leaves
// that side open: the start falls back to YearMin, the end to the day
// after YearMax.
func Span(startSpec, endSpec string) (Range, error) {
	start := time.Date(YearMin, 1, 1, 0, 0, 0, 0, time.UTC)
	if startSpec != "" {
		p, err := ParsePartial(startSpec)
		if err != nil {
			return Range{}, err
		}
		start = p.start()
	}
	end := time.Date(YearMax+1, 1, 1, 0, 0, 0, 0, time.UTC)
	if endSpec != "" {
		p, err := ParsePartial(endSpec)
		if err != nil {
			return Range{}, err
		}
		end = p.endExclusive()
	}
	return Range{start, end}, nil
}

// Before returns the window of exactly one unit ending where the spec
// begins: Before("2024-06") is May 2024, Before("20240101") is the last
// day of 2023. The unit is the spec's finest known one.
func Before(endSpec string) (Range, error) {
	p, err := ParsePartial(endSpec)
	if err != nil {
		return Range{}, err
	}
	end := p.start()
	return Range{p.addUnit(end, -1), end}, nil
}

// Of builds a range from calendar units, with Any leaving a unit
// unconstrained: Of(2024, Any, 15) covers the 15th of every month of
// 2024, from Jan 15 through Dec 15 inclusive.
func Of(year, month, day int) (Range, error) {
	if year == Any && month == Any && day == Any {
		return Range{}, fmt.Errorf("%w: all units unconstrained", ErrBadSpec)
	}
	if month != Any && (month < 1 || month > 12) {
		return Range{}, fmt.Errorf("%w: month %d", ErrBadSpec, month)
	}
	if day != Any && (day < 1 || day > 31) {
		return Range{}, fmt.Errorf("%w: day %d", ErrBadSpec, day)
	}

	y0, m0, d0 := year, month, day
	if y0 == Any {
		y0 = YearMin
	}
	if m0 == Any {
		m0 = 1
	}
	if d0 == Any {
		d0 = 1
	}

	y1, m1 := year, month
	if y1 == Any {
		y1 = YearMax
	}
	if m1 == Any {
		m1 = 12
	}
	d1 := day
	if d1 == Any {
		d1 = daysIn(y1, time.Month(m1))
	}

	start := time.Date(y0, time.Month(m0), d0, 0, 0, 0, 0, time.UTC)
	end := time.Date(y1, time.Month(m1), d1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return Range{start, end}, nil
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ParseStoreDate parses the legacy store's YYYYMMDD date column.
func ParseStoreDate(s string) (time.Time, error) {
	t, err := time.Parse("20060102", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadSpec, s)
	}
	return t, nil
}

// FormatStoreDate renders a date in the legacy store's YYYYMMDD form.
func FormatStoreDate(t time.Time) string {
	return t.Format("20060102")
}
