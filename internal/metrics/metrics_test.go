package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plantafel/internal/board"
	"plantafel/internal/conflict"
	"plantafel/internal/model"
)

func TestObserveSetsGauges(t *testing.T) {
	r := NewRecorder()
	at := time.Date(2026, 1, 27, 12, 0, 0, 0, time.UTC)
	v := &board.View{
		View:      model.ViewEmployee,
		Resources: make([]model.Resource, 3),
		Events:    make([]model.Event, 5),
		Conflicts: []model.Conflict{
			{Type: model.ConflictDoubleBooking, Severity: model.SeverityError},
			{Type: model.ConflictDoubleBooking, Severity: model.SeverityError},
			{Type: model.ConflictWorkDuringAbsence, Severity: model.SeverityWarning},
		},
	}
	r.Observe(v, at)

	assert.Equal(t, 5.0, testutil.ToFloat64(r.events.WithLabelValues("employee")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.resources.WithLabelValues("employee")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.conflicts.WithLabelValues("double_booking", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.conflicts.WithLabelValues("work_during_absence", "warning")))
	assert.Equal(t, float64(at.Unix()), testutil.ToFloat64(r.lastRefresh))

	v.Conflicts = nil
	r.Observe(v, at)
	assert.Equal(t, 0.0, testutil.ToFloat64(r.conflicts.WithLabelValues("double_booking", "error")), "resolved conflicts drop to zero")
}

func TestWriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.Observe(&board.View{View: model.ViewProject}, time.Unix(1700000000, 0))
	r.RefreshFailed()

	path := filepath.Join(t.TempDir(), "plantafel.prom")
	require.NoError(t, r.WriteTextfile(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	body := string(raw)
	assert.Contains(t, body, `plantafel_events{view="project"} 0`)
	assert.Contains(t, body, "plantafel_refresh_errors_total 1")
	assert.Contains(t, body, "plantafel_last_refresh_timestamp_seconds 1.7e+09")

	assert.NoError(t, r.WriteTextfile(""), "no path disables the textfile")
}

func TestLogFields(t *testing.T) {
	s := conflict.Summarize([]model.Conflict{{Type: model.ConflictDoubleBooking, Severity: model.SeverityWarning}})
	kv := LogFields(s)
	assert.Equal(t, []any{"conflicts", 1, "double_booking", 1, "work_during_absence", 0, "error", 0, "warning", 1}, kv)
}
