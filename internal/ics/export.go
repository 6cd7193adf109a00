package ics

import (
	"io"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/go-faster/errors"

	"plantafel/internal/model"
)

// Custom properties written on exported board events.
const (
	PropConflict   = "X-PLANTAFEL-CONFLICT"
	PropResourceID = "X-PLANTAFEL-RESOURCE"
	PropSource     = "X-PLANTAFEL-SOURCE"
)

// ExportOptions names the calendar and fixes DTSTAMP.
type ExportOptions struct {
	Name  string
	Stamp time.Time
}

// ExportEvents writes events as a PUBLISH calendar to w. All-day markers
// become DATE events spanning their day; everything else keeps its exact
// bounds. Confirmed assignments are CONFIRMED, the rest TENTATIVE, and events
// in a conflict carry X-PLANTAFEL-CONFLICT:TRUE.
func ExportEvents(w io.Writer, events []model.Event, opts ExportOptions) error {
	if opts.Stamp.IsZero() {
		opts.Stamp = time.Now()
	}
	if opts.Name == "" {
		opts.Name = "Plantafel"
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//plantafel//board export//EN")
	cal.SetXWRCalName(opts.Name)

	for _, ev := range events {
		if ev.ID == "" {
			return errors.New("export: event without id")
		}
		ve := cal.AddEvent(ev.ID)
		ve.SetDtStampTime(opts.Stamp.UTC())
		ve.SetSummary(ev.Title)

		if ev.AllDay {
			day := model.DateOf(ev.Start)
			last := model.DateOf(ev.End)
			if last.Before(day) {
				last = day
			}
			ve.SetAllDayStartAt(day.In(time.UTC))
			ve.SetAllDayEndAt(last.AddDays(1).In(time.UTC))
		} else {
			ve.SetStartAt(ev.Start)
			ve.SetEndAt(ev.End)
		}

		if ev.Confirmed || ev.SourceType == model.SourceAbsence {
			ve.SetStatus(ical.ObjectStatusConfirmed)
		} else {
			ve.SetStatus(ical.ObjectStatusTentative)
		}
		if ev.ResourceID != "" {
			ve.SetProperty(ical.ComponentProperty(PropResourceID), ev.ResourceID)
		}
		ve.SetProperty(ical.ComponentProperty(PropSource), string(ev.SourceType)+":"+ev.SourceID)
		if ev.HasConflict {
			ve.SetProperty(ical.ComponentProperty(PropConflict), "TRUE")
		}
	}

	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return errors.Wrap(err, "write calendar")
	}
	return nil
}
