package absence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plantafel/internal/model"
)

func window(from, to model.Date) ExpandConfig {
	return ExpandConfig{
		Location:   time.UTC,
		RangeStart: from.In(time.UTC),
		RangeEnd:   to.In(time.UTC).Add(24*time.Hour - time.Millisecond),
	}
}

func TestPlainAbsencesAreWindowed(t *testing.T) {
	abs := []model.Absence{
		{ID: "in", From: model.NewDate(2026, 3, 1), To: model.NewDate(2026, 3, 3)},
		{ID: "edge", From: model.NewDate(2026, 2, 20), To: model.NewDate(2026, 3, 2)},
		{ID: "out", From: model.NewDate(2026, 4, 1), To: model.NewDate(2026, 4, 3)},
	}
	got, err := Expand(abs, window(model.NewDate(2026, 3, 2), model.NewDate(2026, 3, 8)))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "in", got[0].ID)
	assert.Equal(t, "edge", got[1].ID)
}

func TestWeeklyAbsenceExpands(t *testing.T) {
	// Part-time: every Friday off, starting Friday 2026-03-06.
	ab := model.Absence{
		ID: "pt", EmployeeID: "E1",
		From: model.NewDate(2026, 3, 6), To: model.NewDate(2026, 3, 6),
		Status: model.AbsenceApproved, Kind: model.AbsenceOther,
		RRule: "FREQ=WEEKLY;BYDAY=FR",
	}
	got, err := Expand([]model.Absence{ab}, window(model.NewDate(2026, 3, 9), model.NewDate(2026, 3, 31)))
	require.NoError(t, err)

	var days []string
	for _, occ := range got {
		days = append(days, occ.From.String())
		assert.Equal(t, occ.From, occ.To)
		assert.Empty(t, occ.RRule)
		assert.Equal(t, "E1", occ.EmployeeID)
	}
	assert.Equal(t, []string{"2026-03-13", "2026-03-20", "2026-03-27"}, days)
	assert.Equal(t, "pt@2026-03-13", got[0].ID)
}

func TestMultiDayOccurrenceReachingIntoWindow(t *testing.T) {
	ab := model.Absence{
		ID:   "block",
		From: model.NewDate(2026, 1, 5), To: model.NewDate(2026, 1, 7),
		RRule: "FREQ=MONTHLY;COUNT=3",
	}
	// Second occurrence is Feb 5-7; the window starts on Feb 6.
	got, err := Expand([]model.Absence{ab}, window(model.NewDate(2026, 2, 6), model.NewDate(2026, 2, 10)))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2026-02-05", got[0].From.String())
	assert.Equal(t, "2026-02-07", got[0].To.String())
}

func TestBrokenRRuleKeepsBase(t *testing.T) {
	ab := model.Absence{ID: "x", From: model.NewDate(2026, 3, 2), To: model.NewDate(2026, 3, 2), RRule: "FREQ=SOMETIMES"}
	got, err := Expand([]model.Absence{ab}, window(model.NewDate(2026, 3, 1), model.NewDate(2026, 3, 8)))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "x", got[0].ID)
}

func TestInvertedWindow(t *testing.T) {
	_, err := Expand(nil, window(model.NewDate(2026, 3, 8), model.NewDate(2026, 3, 1)))
	assert.Error(t, err)
}

func TestFilters(t *testing.T) {
	abs := []model.Absence{
		{ID: "1", EmployeeID: "E1", Status: model.AbsenceApproved, Kind: model.AbsenceVacation},
		{ID: "2", EmployeeID: "E1", Status: model.AbsenceRequested, Kind: model.AbsenceVacation},
		{ID: "3", EmployeeID: "E2", Status: model.AbsenceApproved, Kind: model.AbsenceIllness},
	}
	assert.Len(t, Blocking(abs), 2)
	assert.Len(t, ForEmployee(abs, "E1"), 2)
	assert.Empty(t, ForEmployee(abs, "E3"))
}
