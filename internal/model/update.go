package model

import (
	"encoding/json"
	"sort"
	"time"
)

// RefChange is an optional write to a resource reference. An untouched
// RefChange is omitted from the payload; a touched one with an empty ID is
// the API's "clear this field" instruction and is encoded as null.
type RefChange struct {
	Set bool
	ID  string
}

// SetRef returns a touched reference; an empty id clears the field.
func SetRef(id string) RefChange {
	return RefChange{Set: true, ID: id}
}

func (r RefChange) value() any {
	if r.ID == "" {
		return nil
	}
	return r.ID
}

// AssignmentUpdate is a partial update payload for the assignment API. Nil
// pointers and untouched references are not sent.
type AssignmentUpdate struct {
	Start         *time.Time
	End           *time.Time
	EmployeeID    RefChange
	ProjectID     RefChange
	SetupDate     *Date
	DismantleDate *Date
	Notes         *string
	Confirmed     *bool
	Role          *string
}

// Empty reports whether the update would write nothing.
func (u AssignmentUpdate) Empty() bool {
	return len(u.fields()) == 0
}

// Fields lists the wire names of the touched fields in sorted order.
func (u AssignmentUpdate) Fields() []string {
	m := u.fields()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (u AssignmentUpdate) fields() map[string]any {
	m := make(map[string]any)
	if u.Start != nil {
		m["von"] = u.Start.Format(time.RFC3339)
	}
	if u.End != nil {
		m["bis"] = u.End.Format(time.RFC3339)
	}
	if u.EmployeeID.Set {
		m["mitarbeiterId"] = u.EmployeeID.value()
	}
	if u.ProjectID.Set {
		m["projektId"] = u.ProjectID.value()
	}
	if u.SetupDate != nil {
		m["setupDate"] = u.SetupDate.String()
	}
	if u.DismantleDate != nil {
		m["dismantleDate"] = u.DismantleDate.String()
	}
	if u.Notes != nil {
		m["notizen"] = *u.Notes
	}
	if u.Confirmed != nil {
		m["bestaetigt"] = *u.Confirmed
	}
	if u.Role != nil {
		m["rolle"] = *u.Role
	}
	return m
}

func (u AssignmentUpdate) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.fields())
}

// Apply returns a copy of a with the update written over it.
func (u AssignmentUpdate) Apply(a Assignment) Assignment {
	if u.Start != nil {
		a.Start = TimePtr(*u.Start)
	}
	if u.End != nil {
		a.End = TimePtr(*u.End)
	}
	if u.EmployeeID.Set {
		a.EmployeeID = u.EmployeeID.ID
		if u.EmployeeID.ID == "" {
			a.EmployeeName = ""
		}
	}
	if u.ProjectID.Set {
		a.ProjectID = u.ProjectID.ID
		if u.ProjectID.ID == "" {
			a.ProjectName = ""
		}
	}
	if u.SetupDate != nil {
		a.SetupDate = DatePtr(*u.SetupDate)
	}
	if u.DismantleDate != nil {
		a.DismantleDate = DatePtr(*u.DismantleDate)
	}
	if u.Notes != nil {
		a.Notes = *u.Notes
	}
	if u.Confirmed != nil {
		a.Confirmed = *u.Confirmed
	}
	if u.Role != nil {
		a.Role = *u.Role
	}
	return a
}
