package model

import (
	"fmt"
	"time"
)

// View selects which resource grouping the planning board shows.
type View string

const (
	ViewEmployee View = "employee"
	ViewProject  View = "project"
)

// Valid reports whether v is one of the known groupings.
func (v View) Valid() bool {
	return v == ViewEmployee || v == ViewProject
}

// SourceType records which external record an Event was derived from.
type SourceType string

const (
	SourceAssignment SourceType = "einsatz"
	SourceAbsence    SourceType = "urlaub"
)

// EventKind distinguishes the milestones an Assignment can expand into.
type EventKind string

const (
	KindSetup     EventKind = "setup"
	KindDismantle EventKind = "dismantle"
	KindSpan      EventKind = "span"
	KindAbsence   EventKind = "absence"
)

// Date is a calendar date without time of day. Its text form is YYYY-MM-DD,
// which is used for both JSON and YAML.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

const dateLayout = "2006-01-02"

// NewDate builds a Date, normalizing overflowing values the way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// In returns local midnight of d in loc. A nil loc means time.Local.
func (d Date) In(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// AddDays returns d shifted by n calendar days.
func (d Date) AddDays(n int) Date {
	return NewDate(d.Year, d.Month, d.Day+n)
}

func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

func (d Date) Before(o Date) bool {
	return d.compare(o) < 0
}

func (d Date) compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return d.Year - o.Year
	case d.Month != o.Month:
		return int(d.Month) - int(o.Month)
	default:
		return d.Day - o.Day
	}
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Date{}
		return nil
	}
	// Accept full timestamps from older exports; only the date part matters.
	s := string(b)
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DatePtr is a small helper for building optional dates in literals.
func DatePtr(d Date) *Date { return &d }

// TimePtr is a small helper for building optional instants in literals.
func TimePtr(t time.Time) *time.Time { return &t }
