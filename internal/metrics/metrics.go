// Package metrics exposes board gauges in Prometheus format. There is no
// HTTP listener; gauges are written to a node_exporter textfile.
package metrics

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"plantafel/internal/board"
	"plantafel/internal/conflict"
	"plantafel/internal/model"
)

// Recorder owns a private registry so repeated construction (tests, multiple
// boards) never collides with the default registry.
type Recorder struct {
	reg *prometheus.Registry

	events      *prometheus.GaugeVec
	resources   *prometheus.GaugeVec
	conflicts   *prometheus.GaugeVec
	lastRefresh prometheus.Gauge
	refreshErrs prometheus.Counter
}

// NewRecorder registers the board gauges.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		reg: reg,
		events: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "plantafel_events",
			Help: "Events on the board in the last refresh.",
		}, []string{"view"}),
		resources: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "plantafel_resources",
			Help: "Visible board rows in the last refresh.",
		}, []string{"view"}),
		conflicts: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "plantafel_conflicts",
			Help: "Detected conflicts by type and severity.",
		}, []string{"type", "severity"}),
		lastRefresh: f.NewGauge(prometheus.GaugeOpts{
			Name: "plantafel_last_refresh_timestamp_seconds",
			Help: "Unix time of the last successful refresh.",
		}),
		refreshErrs: f.NewCounter(prometheus.CounterOpts{
			Name: "plantafel_refresh_errors_total",
			Help: "Refreshes that failed.",
		}),
	}
}

// Observe records one rendered board.
func (r *Recorder) Observe(v *board.View, at time.Time) {
	view := string(v.View)
	r.events.WithLabelValues(view).Set(float64(len(v.Events)))
	r.resources.WithLabelValues(view).Set(float64(len(v.Resources)))

	// Conflicts do not depend on the view; reset so resolved kinds drop to 0.
	r.conflicts.Reset()
	for _, typ := range []model.ConflictType{model.ConflictDoubleBooking, model.ConflictWorkDuringAbsence} {
		for _, sev := range []model.Severity{model.SeverityError, model.SeverityWarning} {
			r.conflicts.WithLabelValues(string(typ), string(sev)).Set(0)
		}
	}
	counts := make(map[[2]string]int)
	for _, c := range v.Conflicts {
		counts[[2]string{string(c.Type), string(c.Severity)}]++
	}
	for k, n := range counts {
		r.conflicts.WithLabelValues(k[0], k[1]).Set(float64(n))
	}
	r.lastRefresh.Set(float64(at.Unix()))
}

// RefreshFailed counts a failed refresh.
func (r *Recorder) RefreshFailed() {
	r.refreshErrs.Inc()
}

// Registry exposes the private registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.reg
}

// WriteTextfile writes all gauges to path in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return errors.Wrap(err, "write metrics textfile")
	}
	return nil
}

// LogFields flattens a summary into key/value pairs for the logger.
func LogFields(s conflict.Summary) []any {
	kv := []any{"conflicts", s.Total}
	for _, typ := range []model.ConflictType{model.ConflictDoubleBooking, model.ConflictWorkDuringAbsence} {
		kv = append(kv, string(typ), s.ByType[typ])
	}
	for _, sev := range []model.Severity{model.SeverityError, model.SeverityWarning} {
		kv = append(kv, string(sev), s.BySeverity[sev])
	}
	return kv
}
