// Package absence prepares absence records for the board: it expands
// recurring absences into concrete occurrences inside the inspected window
// and drops what cannot matter there.
package absence

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/teambition/rrule-go"

	appLog "plantafel/internal/log"
	"plantafel/internal/model"
)

const defaultMaxOccurrences = 500

// ExpandConfig controls recurrence expansion.
type ExpandConfig struct {
	// Location is the board's display timezone. If nil, time.Local is used.
	Location *time.Location

	// RangeStart / RangeEnd define the inclusive window.
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxOccurrences caps one recurring absence. Zero means defaultMaxOccurrences.
	MaxOccurrences int
}

// Expand returns the absences overlapping the window. Recurring absences are
// replaced by one record per occurrence, each keeping the original length
// and an id of the form "<id>@<date>". An unparseable RRULE is logged and the
// base record is kept as a plain absence.
func Expand(absences []model.Absence, cfg ExpandConfig) ([]model.Absence, error) {
	if cfg.RangeEnd.Before(cfg.RangeStart) {
		return nil, errors.New("expand: RangeEnd is before RangeStart")
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.MaxOccurrences <= 0 {
		cfg.MaxOccurrences = defaultMaxOccurrences
	}

	out := make([]model.Absence, 0, len(absences))
	for _, ab := range absences {
		if ab.RRule == "" {
			if overlapsWindow(ab, cfg) {
				out = append(out, ab)
			}
			continue
		}
		occ, err := expandRecurring(ab, cfg)
		if err != nil {
			appLog.Error("expand: failed to parse RRULE", err, "absence", ab.ID, "rrule", ab.RRule)
			ab.RRule = ""
			if overlapsWindow(ab, cfg) {
				out = append(out, ab)
			}
			continue
		}
		out = append(out, occ...)
	}
	return out, nil
}

func expandRecurring(ab model.Absence, cfg ExpandConfig) ([]model.Absence, error) {
	r, err := rrule.StrToRRule(ab.RRule)
	if err != nil {
		return nil, err
	}
	r.DTStart(ab.FirstDay().In(cfg.Location))

	// Length in days beyond the first one; occurrences starting before the
	// window can still reach into it.
	extra := daysBetween(ab.FirstDay(), ab.LastDay())
	after := cfg.RangeStart.In(cfg.Location).AddDate(0, 0, -extra-1)
	before := cfg.RangeEnd.In(cfg.Location)

	times := r.Between(after, before, true)
	if len(times) > cfg.MaxOccurrences {
		appLog.Warn("expand: truncated absence occurrences", "absence", ab.ID, "cap", cfg.MaxOccurrences)
		times = times[:cfg.MaxOccurrences]
	}

	out := make([]model.Absence, 0, len(times))
	for _, t := range times {
		from := model.DateOf(t.In(cfg.Location))
		occ := ab
		occ.ID = ab.ID + "@" + from.String()
		occ.From = from
		occ.To = from.AddDays(extra)
		occ.RRule = ""
		if overlapsWindow(occ, cfg) {
			out = append(out, occ)
		}
	}
	return out, nil
}

func overlapsWindow(ab model.Absence, cfg ExpandConfig) bool {
	start, end := ab.Interval(cfg.Location)
	return !end.Before(cfg.RangeStart) && !cfg.RangeEnd.Before(start)
}

func daysBetween(a, b model.Date) int {
	d := b.In(time.UTC).Sub(a.In(time.UTC))
	return int(d.Hours() / 24)
}

// Blocking keeps only the absences that take part in conflict detection.
func Blocking(absences []model.Absence) []model.Absence {
	out := make([]model.Absence, 0, len(absences))
	for _, ab := range absences {
		if ab.Blocking() {
			out = append(out, ab)
		}
	}
	return out
}

// ForEmployee keeps the absences of one employee.
func ForEmployee(absences []model.Absence, employeeID string) []model.Absence {
	out := make([]model.Absence, 0)
	for _, ab := range absences {
		if ab.EmployeeID == employeeID {
			out = append(out, ab)
		}
	}
	return out
}
