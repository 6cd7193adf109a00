package ics

import (
	"bytes"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/go-faster/errors"

	appLog "plantafel/internal/log"
	"plantafel/internal/model"
)

// Custom VEVENT properties used by HR absence calendars.
const (
	PropEmployeeID   = "X-EMPLOYEE-ID"
	PropEmployeeName = "X-EMPLOYEE-NAME"
)

// ParseAbsences parses an ICS absence calendar into Absence records.
//
//   - Every VEVENT needs a UID and an X-EMPLOYEE-ID; others are logged and
//     skipped.
//   - DTEND of an all-day event is exclusive and becomes the previous day.
//   - STATUS maps CONFIRMED/TENTATIVE/CANCELLED to approved/requested/rejected;
//     a missing STATUS counts as approved.
//   - CATEGORIES picks the absence kind (English or German names).
//   - RRULE is kept raw; expansion happens in internal/absence.
func ParseAbsences(src Source, body []byte) ([]model.Absence, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		appLog.Error("ics parse failed", err, "feed", src.ID, "url", redactURL(src.URL))
		return nil, errors.Wrap(err, "parse calendar")
	}

	out := make([]model.Absence, 0)
	for _, ve := range cal.Events() {
		ab, perr := parseVEvent(ve)
		if perr != nil {
			appLog.Error("ics vevent skipped", perr, "feed", src.ID)
			continue
		}
		out = append(out, ab)
	}

	appLog.Info("ics parse completed", "feed", src.ID, "url", redactURL(src.URL), "absence_count", len(out))
	return out, nil
}

func parseVEvent(ve *ical.VEvent) (model.Absence, error) {
	var out model.Absence

	uid := propValue(ve, ical.ComponentPropertyUniqueId)
	if uid == "" {
		return out, errors.New("missing UID")
	}
	out.ID = uid

	out.EmployeeID = propValue(ve, ical.ComponentProperty(PropEmployeeID))
	if out.EmployeeID == "" {
		return out, errors.Errorf("event %s: missing %s", uid, PropEmployeeID)
	}
	out.EmployeeName = propValue(ve, ical.ComponentProperty(PropEmployeeName))
	if out.EmployeeName == "" {
		out.EmployeeName = propValue(ve, ical.ComponentPropertySummary)
	}

	startRaw := propValue(ve, ical.ComponentPropertyDtStart)
	start, allDay, err := parseICSTime(startRaw)
	if err != nil {
		return out, errors.Wrapf(err, "event %s: DTSTART", uid)
	}
	out.From = model.DateOf(start)
	out.To = out.From

	if endRaw := propValue(ve, ical.ComponentPropertyDtEnd); endRaw != "" {
		end, _, err := parseICSTime(endRaw)
		if err != nil {
			return out, errors.Wrapf(err, "event %s: DTEND", uid)
		}
		last := model.DateOf(end)
		// All-day DTEND is exclusive; so is a timed end at exactly midnight.
		if allDay || (end.Hour() == 0 && end.Minute() == 0 && end.Second() == 0) {
			last = last.AddDays(-1)
		}
		if !last.Before(out.From) {
			out.To = last
		}
	}

	out.Status = parseStatus(propValue(ve, ical.ComponentPropertyStatus))
	out.Kind = parseKind(propValue(ve, ical.ComponentPropertyCategories))
	out.RRule = propValue(ve, ical.ComponentPropertyRrule)
	return out, nil
}

func propValue(ve *ical.VEvent, p ical.ComponentProperty) string {
	prop := ve.GetProperty(p)
	if prop == nil {
		return ""
	}
	return strings.TrimSpace(prop.Value)
}

func parseStatus(v string) model.AbsenceStatus {
	switch strings.ToUpper(v) {
	case "TENTATIVE":
		return model.AbsenceRequested
	case "CANCELLED":
		return model.AbsenceRejected
	default:
		return model.AbsenceApproved
	}
}

var kindNames = map[string]model.AbsenceKind{
	"vacation":     model.AbsenceVacation,
	"urlaub":       model.AbsenceVacation,
	"illness":      model.AbsenceIllness,
	"sick":         model.AbsenceIllness,
	"krank":        model.AbsenceIllness,
	"krankheit":    model.AbsenceIllness,
	"special":      model.AbsenceSpecial,
	"sonderurlaub": model.AbsenceSpecial,
	"unpaid":       model.AbsenceUnpaid,
	"unbezahlt":    model.AbsenceUnpaid,
}

func parseKind(categories string) model.AbsenceKind {
	for _, c := range strings.Split(categories, ",") {
		if k, ok := kindNames[strings.ToLower(strings.TrimSpace(c))]; ok {
			return k
		}
	}
	return model.AbsenceOther
}

// parseICSTime parses a basic ICS DATE or DATE-TIME value and reports
// whether it was a date-only value. TZID parameters are not consulted; only
// the calendar date is used for absences.
func parseICSTime(v string) (time.Time, bool, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false, errors.New("empty time value")
	}

	// UTC form, e.g., 20250101T090000Z
	if strings.HasSuffix(v, "Z") {
		t, err := time.Parse("20060102T150405Z", v)
		return t, false, err
	}

	// Local date-time, e.g., 20250101T090000
	if strings.Contains(v, "T") {
		t, err := time.ParseInLocation("20060102T150405", v, time.Local)
		return t, false, err
	}

	// Date-only (all-day), e.g., 20250101
	t, err := time.ParseInLocation("20060102", v, time.Local)
	return t, true, err
}
