package model

import "time"

type AbsenceStatus string

const (
	AbsenceRequested AbsenceStatus = "requested"
	AbsenceApproved  AbsenceStatus = "approved"
	AbsenceRejected  AbsenceStatus = "rejected"
)

type AbsenceKind string

const (
	AbsenceVacation AbsenceKind = "vacation"
	AbsenceIllness  AbsenceKind = "illness"
	AbsenceSpecial  AbsenceKind = "special"
	AbsenceUnpaid   AbsenceKind = "unpaid"
	AbsenceOther    AbsenceKind = "other"
)

// Absence is a time-off record ("Urlaub") for one employee. From and To are
// both inclusive calendar dates.
type Absence struct {
	ID           string        `json:"id" yaml:"id"`
	EmployeeID   string        `json:"mitarbeiterId" yaml:"mitarbeiterId"`
	EmployeeName string        `json:"mitarbeiterName,omitempty" yaml:"mitarbeiterName,omitempty"`
	From         Date          `json:"von" yaml:"von"`
	To           Date          `json:"bis" yaml:"bis"`
	Status       AbsenceStatus `json:"status" yaml:"status"`
	Kind         AbsenceKind   `json:"typ" yaml:"typ"`

	// RRule optionally repeats the absence (RFC 5545 RRULE body, e.g.
	// "FREQ=WEEKLY;BYDAY=FR"). Each repetition keeps the From..To length.
	RRule string `json:"rrule,omitempty" yaml:"rrule,omitempty"`
}

// Blocking reports whether the absence takes part in conflict detection:
// only approved vacation and illness do.
func (a Absence) Blocking() bool {
	if a.Status != AbsenceApproved {
		return false
	}
	return a.Kind == AbsenceVacation || a.Kind == AbsenceIllness
}

// FirstDay returns the start date. A record with only To set is a
// single-day absence on To.
func (a Absence) FirstDay() Date {
	if a.From.IsZero() {
		return a.To
	}
	return a.From
}

// LastDay returns the inclusive end date, tolerating records whose To is
// missing or before From.
func (a Absence) LastDay() Date {
	first := a.FirstDay()
	if a.To.IsZero() || a.To.Before(first) {
		return first
	}
	return a.To
}

// Interval returns the absence as instants in loc: From at local midnight up
// to the last millisecond of the last day.
func (a Absence) Interval(loc *time.Location) (time.Time, time.Time) {
	start := a.FirstDay().In(loc)
	end := a.LastDay().AddDays(1).In(loc).Add(-time.Millisecond)
	return start, end
}
