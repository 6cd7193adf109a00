package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDateDecodesFromJSONAndYAML(t *testing.T) {
	var a Assignment
	require.NoError(t, json.Unmarshal([]byte(`{"id":"a1","setupDate":"2026-01-27"}`), &a))
	require.NotNil(t, a.SetupDate)
	assert.Equal(t, NewDate(2026, time.January, 27), *a.SetupDate)

	var b Assignment
	require.NoError(t, yaml.Unmarshal([]byte("id: a2\nsetupDate: 2026-01-28\n"), &b))
	require.NotNil(t, b.SetupDate)
	assert.Equal(t, "2026-01-28", b.SetupDate.String())

	var c Assignment
	require.NoError(t, json.Unmarshal([]byte(`{"id":"a3","dismantleDate":"2026-02-01T00:00:00.000Z"}`), &c))
	assert.Equal(t, "2026-02-01", c.DismantleDate.String())
}

func TestDateArithmetic(t *testing.T) {
	d := NewDate(2026, time.January, 31)
	assert.Equal(t, NewDate(2026, time.February, 1), d.AddDays(1))
	assert.True(t, d.Before(d.AddDays(1)))
	assert.False(t, d.Before(d))

	loc := time.FixedZone("CET", 3600)
	mid := d.In(loc)
	assert.Equal(t, 0, mid.Hour())
	assert.Equal(t, loc, mid.Location())
}

func TestAbsenceBlocking(t *testing.T) {
	tests := []struct {
		status AbsenceStatus
		kind   AbsenceKind
		want   bool
	}{
		{AbsenceApproved, AbsenceVacation, true},
		{AbsenceApproved, AbsenceIllness, true},
		{AbsenceApproved, AbsenceSpecial, false},
		{AbsenceRequested, AbsenceVacation, false},
		{AbsenceRejected, AbsenceIllness, false},
	}
	for _, tt := range tests {
		a := Absence{Status: tt.status, Kind: tt.kind}
		assert.Equal(t, tt.want, a.Blocking(), "%s/%s", tt.status, tt.kind)
	}
}

func TestAbsenceIntervalIsInclusive(t *testing.T) {
	a := Absence{From: NewDate(2026, 3, 2), To: NewDate(2026, 3, 4)}
	start, end := a.Interval(time.UTC)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 3, 4, 23, 59, 59, int(999*time.Millisecond), time.UTC), end)

	// Missing end date degrades to a single day.
	single := Absence{From: NewDate(2026, 3, 2)}
	_, end = single.Interval(time.UTC)
	assert.Equal(t, 2, end.Day())

	// Missing start date degrades to a single day on To.
	onlyTo := Absence{To: NewDate(2026, 1, 30)}
	start, end = onlyTo.Interval(time.UTC)
	assert.Equal(t, time.Date(2026, 1, 30, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, 30, end.Day())
	assert.Equal(t, NewDate(2026, 1, 30), onlyTo.FirstDay())
	assert.Equal(t, NewDate(2026, 1, 30), onlyTo.LastDay())
}

func TestUpdateEncodesOnlyTouchedFields(t *testing.T) {
	start := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	u := AssignmentUpdate{
		Start:      &start,
		EmployeeID: SetRef(""),
		SetupDate:  DatePtr(NewDate(2026, 2, 1)),
	}
	b, err := json.Marshal(u)
	require.NoError(t, err)
	assert.JSONEq(t, `{"von":"2026-02-01T08:00:00Z","mitarbeiterId":null,"setupDate":"2026-02-01"}`, string(b))
	assert.Equal(t, []string{"mitarbeiterId", "setupDate", "von"}, u.Fields())
	assert.True(t, AssignmentUpdate{}.Empty())
}

func TestUpdateApply(t *testing.T) {
	a := Assignment{ID: "a1", EmployeeID: "e1", EmployeeName: "Anna", ProjectID: "p1"}
	confirmed := true
	got := AssignmentUpdate{EmployeeID: SetRef(""), ProjectID: SetRef("p2"), Confirmed: &confirmed}.Apply(a)

	assert.Empty(t, got.EmployeeID)
	assert.Empty(t, got.EmployeeName)
	assert.Equal(t, "p2", got.ProjectID)
	assert.True(t, got.Confirmed)
	assert.Equal(t, "e1", a.EmployeeID, "input must not be modified")
}

func TestAssignmentSpans(t *testing.T) {
	s := time.Date(2026, 1, 5, 7, 0, 0, 0, time.UTC)
	a := Assignment{SetupStart: &s, SetupHours: 2.5}
	start, end, ok := a.LegacySetupSpan()
	require.True(t, ok)
	assert.Equal(t, s, start)
	assert.Equal(t, 150*time.Minute, end.Sub(start))

	_, _, ok = Assignment{SetupStart: &s}.LegacySetupSpan()
	assert.False(t, ok, "zero hours is not a span")

	before := s.Add(-time.Hour)
	_, _, ok = Assignment{Start: &s, End: &before}.Span()
	assert.False(t, ok)
	assert.True(t, Assignment{}.Degenerate())
	assert.True(t, Assignment{EmployeeID: UnassignedID}.Degenerate(), "stored sentinel is no employee")
	assert.True(t, Assignment{EmployeeID: UnassignedID, ProjectID: UnassignedID}.Degenerate())
	assert.False(t, Assignment{EmployeeID: UnassignedID, ProjectID: "p1"}.Degenerate())
	assert.False(t, Assignment{EmployeeID: "e1"}.Degenerate())
}
