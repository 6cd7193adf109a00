package dragdrop

import (
	"encoding/json"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plantafel/internal/mapping"
	"plantafel/internal/model"
	"plantafel/internal/resource"
)

var loc = time.FixedZone("CET", 3600)

func setupAssignment() model.Assignment {
	return model.Assignment{
		ID:           "a1",
		EmployeeID:   "e1",
		EmployeeName: "Anna",
		ProjectID:    "p1",
		ProjectName:  "Site 12",
		SetupDate:    model.DatePtr(model.NewDate(2026, 1, 27)),
		Confirmed:    true,
	}
}

func TestValidateDrop(t *testing.T) {
	ev := model.Event{ID: "a1-setup", SourceType: model.SourceAssignment, SourceID: "a1"}

	assert.Equal(t, Validation{Valid: true}, ValidateDrop(ev, "e2", model.ViewEmployee))
	assert.True(t, ValidateDrop(ev, resource.UnassignedID, model.ViewEmployee).Valid, "sentinel is a valid target")
	assert.Equal(t, Validation{Reason: ReasonNoTarget}, ValidateDrop(ev, "", model.ViewEmployee))

	noID := ev
	noID.SourceID = ""
	assert.Equal(t, ReasonMissingID, ValidateDrop(noID, "e2", model.ViewEmployee).Reason)

	absence := model.Event{ID: "urlaub-u1", SourceType: model.SourceAbsence, SourceID: "u1"}
	for _, target := range []string{"e1", "", resource.UnassignedID} {
		v := ValidateDrop(absence, target, model.ViewEmployee)
		assert.False(t, v.Valid)
		assert.Equal(t, ReasonAbsence, v.Reason)
	}
}

func TestDropSetupOnSentinel(t *testing.T) {
	a := setupAssignment()
	ev := mapping.MapToEvents(a, model.ViewEmployee, loc)[0]
	p := NewPlanner(loc)

	u := p.CalculateUpdates(ev, &a, time.Date(2026, 2, 1, 15, 30, 0, 0, loc), resource.UnassignedID, model.ViewEmployee)

	require.NotNil(t, u.SetupDate)
	assert.Equal(t, "2026-02-01", u.SetupDate.String())
	assert.Nil(t, u.DismantleDate)
	assert.Equal(t, model.SetRef(""), u.EmployeeID)
	assert.False(t, u.ProjectID.Set)
	require.NotNil(t, u.Start)
	require.NotNil(t, u.End)
	assert.Equal(t, time.Date(2026, 2, 1, 8, 0, 0, 0, loc), *u.Start)
	assert.Equal(t, time.Date(2026, 2, 1, 17, 0, 0, 0, loc), *u.End)

	b, err := json.Marshal(u)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"von": "2026-02-01T08:00:00+01:00",
		"bis": "2026-02-01T17:00:00+01:00",
		"mitarbeiterId": null,
		"setupDate": "2026-02-01"
	}`, string(b))
}

func TestUnchangedFieldsArePruned(t *testing.T) {
	a := setupAssignment()
	start := time.Date(2026, 1, 27, 8, 0, 0, 0, loc)
	end := time.Date(2026, 1, 27, 17, 0, 0, 0, loc)
	a.Start, a.End = &start, &end
	ev := mapping.MapToEvents(a, model.ViewEmployee, loc)[0]

	u := NewPlanner(loc).CalculateUpdates(ev, &a, start, "e1", model.ViewEmployee)
	assert.True(t, u.Empty(), "fields: %v", u.Fields())

	// Without the source record every candidate is sent.
	u = NewPlanner(loc).CalculateUpdates(ev, nil, start, "e1", model.ViewEmployee)
	assert.Equal(t, []string{"bis", "mitarbeiterId", "setupDate", "von"}, u.Fields())
}

func TestProjectViewWritesProjectField(t *testing.T) {
	a := setupAssignment()
	ev := mapping.MapToEvents(a, model.ViewProject, loc)[0]
	u := NewPlanner(loc).CalculateUpdates(ev, &a, time.Date(2026, 1, 27, 0, 0, 0, 0, loc), "p2", model.ViewProject)

	assert.Equal(t, model.SetRef("p2"), u.ProjectID)
	assert.False(t, u.EmployeeID.Set)
	assert.Nil(t, u.SetupDate, "same day is not a change")
}

func TestGenericEventMovesExistingMilestones(t *testing.T) {
	start := time.Date(2026, 1, 5, 8, 0, 0, 0, loc)
	ev := model.Event{ID: "a9", SourceType: model.SourceAssignment, SourceID: "a9", EmployeeID: "e1"}
	src := model.Assignment{ID: "a9", EmployeeID: "e1", DismantleDate: model.DatePtr(model.NewDate(2026, 1, 5)), Start: &start}

	u := NewPlanner(loc).CalculateUpdates(ev, &src, time.Date(2026, 1, 9, 0, 0, 0, 0, loc), "", model.ViewEmployee)
	assert.Nil(t, u.SetupDate)
	require.NotNil(t, u.DismantleDate)
	assert.Equal(t, "2026-01-09", u.DismantleDate.String())
	assert.False(t, u.EmployeeID.Set, "no target means no reassignment")
}

func TestCustomWorkday(t *testing.T) {
	p := &Planner{Location: time.UTC, DayStart: 7 * time.Hour, DayEnd: 16*time.Hour + 30*time.Minute}
	u := p.CalculateUpdates(model.Event{ID: "x", SourceID: "x"}, nil, time.Date(2026, 4, 1, 23, 0, 0, 0, time.UTC), "", model.ViewEmployee)
	assert.Equal(t, time.Date(2026, 4, 1, 7, 0, 0, 0, time.UTC), *u.Start)
	assert.Equal(t, time.Date(2026, 4, 1, 16, 30, 0, 0, time.UTC), *u.End)
}

func TestWorkdayFollowsLocalClockAcrossDST(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	p := NewPlanner(berlin)
	ev := model.Event{ID: "a1-setup", SourceType: model.SourceAssignment, SourceID: "a1"}

	for _, day := range []time.Time{
		time.Date(2026, 3, 29, 0, 0, 0, 0, berlin),
		time.Date(2026, 10, 25, 0, 0, 0, 0, berlin),
		time.Date(2026, 2, 1, 0, 0, 0, 0, berlin),
	} {
		u := p.CalculateUpdates(ev, nil, day, "", model.ViewEmployee)
		require.NotNil(t, u.Start)
		require.NotNil(t, u.End)
		assert.Equal(t, "08:00", u.Start.In(berlin).Format("15:04"), day.Format("2006-01-02"))
		assert.Equal(t, "17:00", u.End.In(berlin).Format("15:04"), day.Format("2006-01-02"))
		assert.Equal(t, day.Day(), u.Start.In(berlin).Day())
	}
}

func TestResizeOnlyForTimedEvents(t *testing.T) {
	p := NewPlanner(loc)
	s := time.Date(2026, 1, 27, 7, 0, 0, 0, loc)
	e := s.Add(6 * time.Hour)

	allDay := model.Event{ID: "a1-setup", AllDay: true}
	assert.True(t, p.CalculateResizeUpdates(allDay, nil, s, e).Empty())

	timed := model.Event{ID: "a1", AllDay: false}
	u := p.CalculateResizeUpdates(timed, nil, s, e)
	assert.Equal(t, []string{"bis", "von"}, u.Fields())
	assert.Nil(t, u.SetupDate)

	assert.True(t, p.CalculateResizeUpdates(timed, nil, e, s).Empty(), "inverted range")

	src := model.Assignment{Start: &s, End: model.TimePtr(s.Add(time.Hour))}
	u = p.CalculateResizeUpdates(timed, &src, s, e)
	assert.Equal(t, []string{"bis"}, u.Fields())
}

func TestHasResourceChanged(t *testing.T) {
	ev := model.Event{ID: "a1-setup", ResourceID: "stale", EmployeeID: "", ProjectID: "p1"}

	assert.False(t, HasResourceChanged(ev, resource.UnassignedID, model.ViewEmployee))
	assert.False(t, HasResourceChanged(ev, "", model.ViewEmployee))
	assert.True(t, HasResourceChanged(ev, "e2", model.ViewEmployee))
	assert.False(t, HasResourceChanged(ev, "p1", model.ViewProject), "cached ResourceID is ignored")
	assert.True(t, HasResourceChanged(ev, "p2", model.ViewProject))
}

func TestAuditPatchListsOnlyChanges(t *testing.T) {
	a := setupAssignment()
	u := model.AssignmentUpdate{EmployeeID: model.SetRef(""), SetupDate: model.DatePtr(model.NewDate(2026, 2, 1))}

	patch, err := AuditPatch(a, u)
	require.NoError(t, err)
	paths := make([]string, 0, len(patch))
	for _, op := range patch {
		paths = append(paths, op.Path)
	}
	assert.ElementsMatch(t, []string{"/mitarbeiterId", "/mitarbeiterName", "/setupDate"}, paths)

	empty, err := AuditPatch(a, Prune(model.AssignmentUpdate{ProjectID: model.SetRef("p1")}, a))
	require.NoError(t, err)
	assert.Empty(t, empty)
}
