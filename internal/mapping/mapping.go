// Package mapping turns assignment records into planning-board events for
// one grouping view. Events are derived data: the same (assignment, view,
// location) always yields the same events.
package mapping

import (
	"sort"
	"strings"
	"time"

	"plantafel/internal/model"
	"plantafel/internal/resource"
)

const (
	SetupIDSuffix     = "-setup"
	DismantleIDSuffix = "-dismantle"

	SetupTitleSuffix     = "(setup)"
	DismantleTitleSuffix = "(dismantle)"

	// FallbackTitle is shown when an event has no real project name.
	FallbackTitle = "no project"
	// PlaceholderProjectName is written by old clients instead of leaving the
	// project empty. It is treated as no project.
	PlaceholderProjectName = "unassigned"

	// AbsenceIDPrefix prefixes ids of events derived from absences.
	AbsenceIDPrefix = "urlaub-"
)

// markerDuration is the length of an all-day milestone. It only needs to land
// the event in the right day bucket; it is not meant for duration math.
const markerDuration = time.Millisecond

// ResourceIDFor returns the grouping key of a in view. The employee view
// falls back to the unassigned sentinel; the project view returns "" for
// assignments without a project, which excludes them from the project board.
func ResourceIDFor(a model.Assignment, view model.View) string {
	if view == model.ViewProject {
		return a.ProjectID
	}
	return resource.Normalize(a.EmployeeID)
}

func hasRealEmployee(a model.Assignment) bool {
	return !resource.IsUnassigned(a.EmployeeID) && strings.TrimSpace(a.EmployeeName) != ""
}

func realProjectName(a model.Assignment) (string, bool) {
	name := strings.TrimSpace(a.ProjectName)
	if name == "" || strings.EqualFold(name, PlaceholderProjectName) {
		return "", false
	}
	return name, true
}

// TitleFor returns the display title of a in view, with an optional suffix
// such as "(setup)" appended after a space.
func TitleFor(a model.Assignment, view model.View, suffix string) string {
	var title string
	switch {
	case view == model.ViewEmployee && hasRealEmployee(a):
		title = strings.TrimSpace(a.EmployeeName)
	default:
		if name, ok := realProjectName(a); ok {
			title = name
		} else {
			title = FallbackTitle
		}
	}
	if suffix != "" {
		title += " " + suffix
	}
	return title
}

// MapToEvents expands one assignment into zero, one or two events. The
// fallback chain is evaluated once, in order:
//
//  1. date-only setup/dismantle milestones (all-day markers); stop here
//  2. legacy timed setup and/or dismantle spans with positive duration
//  3. the generic start/end span as a single un-suffixed event
//  4. nothing
//
// Date milestones are placed at local midnight in loc (nil means time.Local).
func MapToEvents(a model.Assignment, view model.View, loc *time.Location) []model.Event {
	if loc == nil {
		loc = time.Local
	}

	if a.SetupDate != nil || a.DismantleDate != nil {
		out := make([]model.Event, 0, 2)
		if a.SetupDate != nil && !a.SetupDate.IsZero() {
			start := a.SetupDate.In(loc)
			out = append(out, newEvent(a, view, model.KindSetup, start, start.Add(markerDuration), true))
		}
		if a.DismantleDate != nil && !a.DismantleDate.IsZero() {
			start := a.DismantleDate.In(loc)
			out = append(out, newEvent(a, view, model.KindDismantle, start, start.Add(markerDuration), true))
		}
		if len(out) > 0 {
			return out
		}
	}

	out := make([]model.Event, 0, 2)
	if start, end, ok := a.LegacySetupSpan(); ok {
		out = append(out, newEvent(a, view, model.KindSetup, start.In(loc), end.In(loc), false))
	}
	if start, end, ok := a.LegacyDismantleSpan(); ok {
		out = append(out, newEvent(a, view, model.KindDismantle, start.In(loc), end.In(loc), false))
	}
	if len(out) > 0 {
		return out
	}

	if start, end, ok := a.Span(); ok {
		return []model.Event{newEvent(a, view, model.KindSpan, start.In(loc), end.In(loc), false)}
	}
	return nil
}

func newEvent(a model.Assignment, view model.View, kind model.EventKind, start, end time.Time, allDay bool) model.Event {
	id := a.ID
	var suffix string
	switch kind {
	case model.KindSetup:
		id += SetupIDSuffix
		suffix = SetupTitleSuffix
	case model.KindDismantle:
		id += DismantleIDSuffix
		suffix = DismantleTitleSuffix
	}
	return model.Event{
		ID:           id,
		Title:        TitleFor(a, view, suffix),
		Start:        start,
		End:          end,
		AllDay:       allDay,
		Kind:         kind,
		ResourceID:   ResourceIDFor(a, view),
		EmployeeID:   a.EmployeeID,
		EmployeeName: a.EmployeeName,
		ProjectID:    a.ProjectID,
		ProjectName:  a.ProjectName,
		Confirmed:    a.Confirmed,
		SourceType:   model.SourceAssignment,
		SourceID:     a.ID,
	}
}

// MapAll maps every assignment and returns the events ordered by start, then
// id, so repeated passes over the same snapshot compare equal.
func MapAll(assignments []model.Assignment, view model.View, loc *time.Location) []model.Event {
	out := make([]model.Event, 0, len(assignments))
	for _, a := range assignments {
		out = append(out, MapToEvents(a, view, loc)...)
	}
	SortEvents(out)
	return out
}

// SortEvents orders events by start, then id.
func SortEvents(events []model.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Start.Equal(events[j].Start) {
			return events[i].Start.Before(events[j].Start)
		}
		return events[i].ID < events[j].ID
	})
}

// AbsenceToEvent renders an absence as a read-only all-day event on its
// employee's row. It spans every day of the absence.
func AbsenceToEvent(ab model.Absence, loc *time.Location) model.Event {
	start, end := ab.Interval(loc)
	title := string(ab.Kind)
	if name := strings.TrimSpace(ab.EmployeeName); name != "" {
		title = name + " (" + title + ")"
	}
	return model.Event{
		ID:           AbsenceIDPrefix + ab.ID,
		Title:        title,
		Start:        start,
		End:          end,
		AllDay:       true,
		Kind:         model.KindAbsence,
		ResourceID:   resource.Normalize(ab.EmployeeID),
		EmployeeID:   ab.EmployeeID,
		EmployeeName: ab.EmployeeName,
		Confirmed:    ab.Status == model.AbsenceApproved,
		SourceType:   model.SourceAbsence,
		SourceID:     ab.ID,
	}
}

// EventBelongsToResource compares the event's grouping key with id after
// normalization.
func EventBelongsToResource(ev model.Event, id string) bool {
	return resource.Normalize(ev.ResourceID) == resource.Normalize(id)
}

// FilterByResource keeps events whose resource is in the visible set. In the
// project view an empty resource id means "not on this board" and is dropped
// before normalization can turn it into the sentinel.
func FilterByResource(events []model.Event, visible resource.IDSet, view model.View) []model.Event {
	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if view == model.ViewProject && ev.ResourceID == "" {
			continue
		}
		if visible.Has(ev.ResourceID) {
			out = append(out, ev)
		}
	}
	return out
}

// InDateRange reports whether ev overlaps [start, end], inclusive on both
// ends.
func InDateRange(ev model.Event, start, end time.Time) bool {
	return Overlaps(ev.Start, ev.End, start, end)
}

// Overlaps is the inclusive interval overlap rule shared by the board and the
// conflict detector.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	if aEnd.Before(bStart) {
		return false
	}
	if bEnd.Before(aStart) {
		return false
	}
	return true
}

// EventsInRange keeps the events overlapping [start, end].
func EventsInRange(events []model.Event, start, end time.Time) []model.Event {
	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if InDateRange(ev, start, end) {
			out = append(out, ev)
		}
	}
	return out
}
