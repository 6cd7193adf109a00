package model

import "time"

// Event is a calendar item derived from an Assignment (or Absence) for one
// grouping view. Events are never persisted; they are recomputed on every
// read and only HasConflict is ever set after construction.
type Event struct {
	ID     string    `json:"id"`
	Title  string    `json:"title"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	AllDay bool      `json:"allDay"`
	Kind   EventKind `json:"kind"`

	// ResourceID is the grouping key in the view the event was mapped for.
	ResourceID string `json:"resourceId"`

	EmployeeID   string `json:"employeeId,omitempty"`
	EmployeeName string `json:"employeeName,omitempty"`
	ProjectID    string `json:"projectId,omitempty"`
	ProjectName  string `json:"projectName,omitempty"`
	Confirmed    bool   `json:"confirmed"`

	HasConflict bool `json:"hasConflict"`

	SourceType SourceType `json:"sourceType"`
	SourceID   string     `json:"sourceId"`
}

// Duration is End-Start. All-day markers report one millisecond.
func (e Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}
