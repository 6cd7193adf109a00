// Package dragdrop validates drag-and-drop moves on the planning board and
// computes the update payload to send to the assignment API.
//
// The protocol is validate, compute payload, persist (caller), re-map and
// re-detect conflicts. Nothing here keeps state between calls.
package dragdrop

import (
	"strings"
	"time"

	"plantafel/internal/mapping"
	"plantafel/internal/model"
	"plantafel/internal/resource"
)

// Rejection reasons reported by ValidateDrop.
const (
	ReasonAbsence   = "absences cannot be moved"
	ReasonMissingID = "missing identifier"
	ReasonNoTarget  = "no valid target"
)

// Validation is the outcome of ValidateDrop. Rejections are values, not
// errors; the caller shows Reason and does not submit an update.
type Validation struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// ValidateDrop checks whether ev may be dropped onto targetID in view. The
// sentinel is a valid target meaning "unassign"; an empty target is not.
func ValidateDrop(ev model.Event, targetID string, view model.View) Validation {
	if ev.SourceType == model.SourceAbsence {
		return Validation{Reason: ReasonAbsence}
	}
	if strings.TrimSpace(ev.SourceID) == "" {
		return Validation{Reason: ReasonMissingID}
	}
	if targetID == "" {
		return Validation{Reason: ReasonNoTarget}
	}
	return Validation{Valid: true}
}

// currentResourceID recomputes the event's grouping key from its employee
// and project fields the same way mapping.ResourceIDFor does.
func currentResourceID(ev model.Event, view model.View) string {
	return mapping.ResourceIDFor(model.Assignment{EmployeeID: ev.EmployeeID, ProjectID: ev.ProjectID}, view)
}

// HasResourceChanged reports whether dropping ev on targetID would move it to
// another row. Both sides are normalized first.
func HasResourceChanged(ev model.Event, targetID string, view model.View) bool {
	return resource.Normalize(currentResourceID(ev, view)) != resource.Normalize(targetID)
}

// Planner computes update payloads. DayStart and DayEnd are offsets from
// local midnight used for the generic start/end span of a dropped event.
type Planner struct {
	Location *time.Location
	DayStart time.Duration
	DayEnd   time.Duration
}

// NewPlanner returns a Planner with the historical 08:00-17:00 workday.
func NewPlanner(loc *time.Location) *Planner {
	if loc == nil {
		loc = time.Local
	}
	return &Planner{Location: loc, DayStart: 8 * time.Hour, DayEnd: 17 * time.Hour}
}

func (p *Planner) loc() *time.Location {
	if p.Location == nil {
		return time.Local
	}
	return p.Location
}

// wallClock returns the instant at which the local clock on day shows
// offset past midnight. Elapsed time from midnight differs on DST change days.
func wallClock(day model.Date, offset time.Duration, loc *time.Location) time.Time {
	return time.Date(day.Year, day.Month, day.Day, 0, 0, 0, int(offset), loc)
}

// CalculateUpdates builds the payload for dropping ev on newDate and, when
// targetID is not empty, onto the targetID row of view.
//
// When source (the assignment ev was mapped from) is given, fields whose new
// value equals the current one are left out. Without a source every candidate
// field is sent.
func (p *Planner) CalculateUpdates(ev model.Event, source *model.Assignment, newDate time.Time, targetID string, view model.View) model.AssignmentUpdate {
	var u model.AssignmentUpdate

	day := model.DateOf(newDate.In(p.loc()))
	start := wallClock(day, p.DayStart, p.loc())
	end := wallClock(day, p.DayEnd, p.loc())
	u.Start = &start
	u.End = &end

	switch {
	case strings.HasSuffix(ev.ID, mapping.SetupIDSuffix):
		u.SetupDate = model.DatePtr(day)
	case strings.HasSuffix(ev.ID, mapping.DismantleIDSuffix):
		u.DismantleDate = model.DatePtr(day)
	case source != nil:
		// An un-suffixed event moves whichever milestones the record has.
		if source.SetupDate != nil {
			u.SetupDate = model.DatePtr(day)
		}
		if source.DismantleDate != nil {
			u.DismantleDate = model.DatePtr(day)
		}
	}

	if targetID != "" {
		ref := model.SetRef(resource.ToExternalID(resource.Normalize(targetID)))
		if view == model.ViewProject {
			u.ProjectID = ref
		} else {
			u.EmployeeID = ref
		}
	}

	if source != nil {
		u = Prune(u, *source)
	}
	return u
}

// CalculateResizeUpdates builds the payload for resizing a timed event. It
// only touches the generic start/end span; all-day milestones, empty or
// inverted ranges produce an empty update.
func (p *Planner) CalculateResizeUpdates(ev model.Event, source *model.Assignment, newStart, newEnd time.Time) model.AssignmentUpdate {
	if ev.AllDay || newStart.IsZero() || !newEnd.After(newStart) {
		return model.AssignmentUpdate{}
	}
	u := model.AssignmentUpdate{Start: &newStart, End: &newEnd}
	if source != nil {
		u = Prune(u, *source)
	}
	return u
}

// Prune drops the fields of u that would not change a.
func Prune(u model.AssignmentUpdate, a model.Assignment) model.AssignmentUpdate {
	if u.Start != nil && a.Start != nil && u.Start.Equal(*a.Start) {
		u.Start = nil
	}
	if u.End != nil && a.End != nil && u.End.Equal(*a.End) {
		u.End = nil
	}
	if u.EmployeeID.Set && resource.Normalize(u.EmployeeID.ID) == resource.Normalize(a.EmployeeID) {
		u.EmployeeID = model.RefChange{}
	}
	if u.ProjectID.Set && u.ProjectID.ID == a.ProjectID {
		u.ProjectID = model.RefChange{}
	}
	if u.SetupDate != nil && a.SetupDate != nil && *u.SetupDate == *a.SetupDate {
		u.SetupDate = nil
	}
	if u.DismantleDate != nil && a.DismantleDate != nil && *u.DismantleDate == *a.DismantleDate {
		u.DismantleDate = nil
	}
	if u.Notes != nil && *u.Notes == a.Notes {
		u.Notes = nil
	}
	if u.Confirmed != nil && *u.Confirmed == a.Confirmed {
		u.Confirmed = nil
	}
	if u.Role != nil && *u.Role == a.Role {
		u.Role = nil
	}
	return u
}
