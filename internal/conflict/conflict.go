// Package conflict finds double bookings and work scheduled during approved
// absences on the planning board.
package conflict

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"plantafel/internal/mapping"
	"plantafel/internal/model"
	"plantafel/internal/resource"
)

// namespace seeds the name-based conflict ids.
var namespace = uuid.MustParse("6f1c3a5e-2b7d-4c1e-9a40-8d2f5b7e1c03")

// Detect returns every conflict among events and absences, grouped by
// employee. Only assignment events on a real employee take part; absences
// count only when Blocking. Each unordered pair is reported at most once and
// the setup/dismantle events of one assignment never pair with each other.
//
// The result is sorted by employee, overlap start and id, so the same input
// always produces the same output.
func Detect(events []model.Event, absences []model.Absence, loc *time.Location) []model.Conflict {
	if loc == nil {
		loc = time.Local
	}

	byEmployee := make(map[string][]model.Event)
	for _, ev := range events {
		if ev.SourceType != model.SourceAssignment || resource.IsUnassigned(ev.EmployeeID) {
			continue
		}
		byEmployee[ev.EmployeeID] = append(byEmployee[ev.EmployeeID], ev)
	}

	absByEmployee := make(map[string][]model.Absence)
	for _, ab := range absences {
		if !ab.Blocking() || resource.IsUnassigned(ab.EmployeeID) {
			continue
		}
		absByEmployee[ab.EmployeeID] = append(absByEmployee[ab.EmployeeID], ab)
	}

	out := make([]model.Conflict, 0)
	for emp, evs := range byEmployee {
		sort.Slice(evs, func(i, j int) bool { return evs[i].ID < evs[j].ID })

		for i := 0; i < len(evs); i++ {
			for j := i + 1; j < len(evs); j++ {
				a, b := evs[i], evs[j]
				if a.SourceID == b.SourceID || a.ID == b.ID {
					continue
				}
				if c, ok := doubleBooking(emp, a, b); ok {
					out = append(out, c)
				}
			}
			for _, ab := range absByEmployee[emp] {
				if c, ok := workDuringAbsence(emp, evs[i], ab, loc); ok {
					out = append(out, c)
				}
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].EmployeeID != out[j].EmployeeID {
			return out[i].EmployeeID < out[j].EmployeeID
		}
		if !out[i].OverlapStart.Equal(out[j].OverlapStart) {
			return out[i].OverlapStart.Before(out[j].OverlapStart)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func doubleBooking(emp string, a, b model.Event) (model.Conflict, bool) {
	aStart, aEnd := span(a)
	bStart, bEnd := span(b)
	start, end, ok := overlap(aStart, aEnd, bStart, bEnd)
	if !ok {
		return model.Conflict{}, false
	}
	sideA, sideB := eventSide(a), eventSide(b)
	return model.Conflict{
		ID:           conflictID(model.ConflictDoubleBooking, sideA.EventID, sideB.EventID),
		Type:         model.ConflictDoubleBooking,
		Severity:     severity(sideA.Hard, sideB.Hard),
		EmployeeID:   emp,
		A:            sideA,
		B:            sideB,
		OverlapStart: start,
		OverlapEnd:   end,
	}, true
}

func workDuringAbsence(emp string, ev model.Event, ab model.Absence, loc *time.Location) (model.Conflict, bool) {
	absStart, absEnd := ab.Interval(loc)
	evStart, evEnd := span(ev)
	start, end, ok := overlap(evStart, evEnd, absStart, absEnd)
	if !ok {
		return model.Conflict{}, false
	}
	sideA := eventSide(ev)
	sideB := model.ConflictSide{
		EventID:    mapping.AbsenceIDPrefix + ab.ID,
		SourceType: model.SourceAbsence,
		SourceID:   ab.ID,
		Title:      string(ab.Kind),
		Hard:       true,
	}
	return model.Conflict{
		ID:           conflictID(model.ConflictWorkDuringAbsence, sideA.EventID, sideB.EventID+"@"+ab.FirstDay().String()),
		Type:         model.ConflictWorkDuringAbsence,
		Severity:     severity(sideA.Hard, sideB.Hard),
		EmployeeID:   emp,
		A:            sideA,
		B:            sideB,
		OverlapStart: start,
		OverlapEnd:   end,
	}, true
}

func eventSide(ev model.Event) model.ConflictSide {
	return model.ConflictSide{
		EventID:    ev.ID,
		SourceType: ev.SourceType,
		SourceID:   ev.SourceID,
		Title:      ev.Title,
		Hard:       ev.Confirmed,
	}
}

// span is the interval an event blocks. All-day milestones are stored as
// one-millisecond markers; for conflicts they occupy their whole local day.
func span(ev model.Event) (time.Time, time.Time) {
	if !ev.AllDay {
		return ev.Start, ev.End
	}
	day := model.DateOf(ev.Start)
	end := day.AddDays(1).In(ev.Start.Location()).Add(-time.Millisecond)
	if ev.End.After(end) {
		end = ev.End
	}
	return day.In(ev.Start.Location()), end
}

// severity is error only when both sides are hard.
func severity(a, b bool) model.Severity {
	if a && b {
		return model.SeverityError
	}
	return model.SeverityWarning
}

// overlap applies the board's inclusive overlap rule and returns the shared
// interval.
func overlap(aStart, aEnd, bStart, bEnd time.Time) (time.Time, time.Time, bool) {
	if !mapping.Overlaps(aStart, aEnd, bStart, bEnd) {
		return time.Time{}, time.Time{}, false
	}
	start := aStart
	if bStart.After(start) {
		start = bStart
	}
	end := aEnd
	if bEnd.Before(end) {
		end = bEnd
	}
	return start, end, true
}

// conflictID is order independent for the two keys.
func conflictID(typ model.ConflictType, a, b string) string {
	if b < a {
		a, b = b, a
	}
	return uuid.NewSHA1(namespace, []byte(string(typ)+"|"+a+"|"+b)).String()
}

// Mark returns a copy of events with HasConflict set on every event that
// takes part in at least one conflict. Absence events are matched by their
// derived ids.
func Mark(events []model.Event, conflicts []model.Conflict) []model.Event {
	involved := make(map[string]struct{}, 2*len(conflicts))
	for _, c := range conflicts {
		involved[c.A.EventID] = struct{}{}
		involved[c.B.EventID] = struct{}{}
	}
	out := make([]model.Event, len(events))
	for i, ev := range events {
		_, ev.HasConflict = involved[ev.ID]
		out[i] = ev
	}
	return out
}

// Summary counts conflicts per type and severity.
type Summary struct {
	Total      int
	ByType     map[model.ConflictType]int
	BySeverity map[model.Severity]int
}

// Summarize counts conflicts for reporting.
func Summarize(conflicts []model.Conflict) Summary {
	s := Summary{
		Total:      len(conflicts),
		ByType:     make(map[model.ConflictType]int),
		BySeverity: make(map[model.Severity]int),
	}
	for _, c := range conflicts {
		s.ByType[c.Type]++
		s.BySeverity[c.Severity]++
	}
	return s
}
