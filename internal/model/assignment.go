package model

import "time"

// Assignment is one scheduled deployment ("Einsatz") of zero-or-one employee
// to zero-or-one project, as read from the assignment API.
//
// Two time representations coexist. Current records carry date-only
// SetupDate/DismantleDate milestones; legacy records carry timed setup and
// dismantle spans with explicit hour counts. Start/End is the generic span
// every record may have.
type Assignment struct {
	ID           string `json:"id" yaml:"id"`
	EmployeeID   string `json:"mitarbeiterId,omitempty" yaml:"mitarbeiterId,omitempty"`
	EmployeeName string `json:"mitarbeiterName,omitempty" yaml:"mitarbeiterName,omitempty"`
	ProjectID    string `json:"projektId,omitempty" yaml:"projektId,omitempty"`
	ProjectName  string `json:"projektName,omitempty" yaml:"projektName,omitempty"`

	SetupDate     *Date `json:"setupDate,omitempty" yaml:"setupDate,omitempty"`
	DismantleDate *Date `json:"dismantleDate,omitempty" yaml:"dismantleDate,omitempty"`

	SetupStart     *time.Time `json:"setupStart,omitempty" yaml:"setupStart,omitempty"`
	SetupHours     float64    `json:"setupHours,omitempty" yaml:"setupHours,omitempty"`
	DismantleStart *time.Time `json:"dismantleStart,omitempty" yaml:"dismantleStart,omitempty"`
	DismantleHours float64    `json:"dismantleHours,omitempty" yaml:"dismantleHours,omitempty"`

	Start *time.Time `json:"von,omitempty" yaml:"von,omitempty"`
	End   *time.Time `json:"bis,omitempty" yaml:"bis,omitempty"`

	Confirmed bool   `json:"bestaetigt" yaml:"bestaetigt"`
	Role      string `json:"rolle,omitempty" yaml:"rolle,omitempty"`
	Notes     string `json:"notizen,omitempty" yaml:"notizen,omitempty"`
}

// UnassignedID is the sentinel some records store instead of an empty
// reference.
const UnassignedID = "__unassigned__"

// Degenerate reports an Assignment with neither employee nor project. Such
// records are tolerated and mapped, only flagged.
func (a Assignment) Degenerate() bool {
	return noRef(a.EmployeeID) && noRef(a.ProjectID)
}

func noRef(id string) bool {
	return id == "" || id == UnassignedID
}

// LegacySetupSpan returns the timed setup span if it has a positive duration.
func (a Assignment) LegacySetupSpan() (time.Time, time.Time, bool) {
	return legacySpan(a.SetupStart, a.SetupHours)
}

// LegacyDismantleSpan returns the timed dismantle span if it has a positive duration.
func (a Assignment) LegacyDismantleSpan() (time.Time, time.Time, bool) {
	return legacySpan(a.DismantleStart, a.DismantleHours)
}

func legacySpan(start *time.Time, hours float64) (time.Time, time.Time, bool) {
	if start == nil || start.IsZero() || hours <= 0 {
		return time.Time{}, time.Time{}, false
	}
	end := start.Add(time.Duration(hours * float64(time.Hour)))
	return *start, end, true
}

// Span returns the generic start/end span when both ends are present and
// ordered.
func (a Assignment) Span() (time.Time, time.Time, bool) {
	if a.Start == nil || a.End == nil || a.Start.IsZero() || a.End.Before(*a.Start) {
		return time.Time{}, time.Time{}, false
	}
	return *a.Start, *a.End, true
}
