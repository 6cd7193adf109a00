package model

import "time"

type ConflictType string

const (
	ConflictDoubleBooking     ConflictType = "double_booking"
	ConflictWorkDuringAbsence ConflictType = "work_during_absence"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ConflictSide identifies one participant of a conflict.
type ConflictSide struct {
	EventID    string     `json:"eventId"`
	SourceType SourceType `json:"sourceType"`
	SourceID   string     `json:"sourceId"`
	Title      string     `json:"title"`
	Hard       bool       `json:"hard"`
}

// Conflict is an overlap of two events on the same employee, or of an event
// and an approved absence of that employee.
type Conflict struct {
	ID         string       `json:"id"`
	Type       ConflictType `json:"type"`
	Severity   Severity     `json:"severity"`
	EmployeeID string       `json:"employeeId"`
	A          ConflictSide `json:"a"`
	B          ConflictSide `json:"b"`

	OverlapStart time.Time `json:"overlapStart"`
	OverlapEnd   time.Time `json:"overlapEnd"`
}

// Involves reports whether the event id takes part in the conflict.
func (c Conflict) Involves(eventID string) bool {
	return c.A.EventID == eventID || c.B.EventID == eventID
}
