// Package board assembles the planning board: it reads the collaborator data,
// maps assignments to events, filters and sorts the rows, detects conflicts
// and runs drag/drop and resize through validate, persist, re-map and
// re-detect.
package board

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"golang.org/x/sync/errgroup"

	"plantafel/internal/absence"
	"plantafel/internal/conflict"
	"plantafel/internal/dragdrop"
	appLog "plantafel/internal/log"
	"plantafel/internal/mapping"
	"plantafel/internal/model"
	"plantafel/internal/resource"
)

// Source is the set of collaborator APIs the board reads and writes.
type Source interface {
	Employees(ctx context.Context) ([]model.Employee, error)
	Projects(ctx context.Context) ([]model.Project, error)
	Assignments(ctx context.Context) ([]model.Assignment, error)
	Absences(ctx context.Context) ([]model.Absence, error)
	UpdateAssignment(ctx context.Context, id string, u model.AssignmentUpdate) (model.Assignment, error)
}

// AbsenceFeed is an optional second absence source, such as HR calendars.
type AbsenceFeed interface {
	Absences(ctx context.Context) ([]model.Absence, error)
}

var (
	// ErrEventNotFound is returned when a drop or resize names an unknown event.
	ErrEventNotFound = errors.New("event not found")
	// ErrRejected wraps the reason of a refused drop.
	ErrRejected = errors.New("drop rejected")
)

// Options configures a Board.
type Options struct {
	Location *time.Location
	Locale   string
	// DayStart / DayEnd are the workday bounds used for dropped events. Zero
	// values keep the planner defaults.
	DayStart time.Duration
	DayEnd   time.Duration
	Feed     AbsenceFeed
}

// Board is safe for concurrent use as long as its Source is.
type Board struct {
	src     Source
	feed    AbsenceFeed
	loc     *time.Location
	sorter  *resource.Sorter
	planner *dragdrop.Planner
}

// New creates a Board over src.
func New(src Source, opts Options) *Board {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	planner := dragdrop.NewPlanner(loc)
	if opts.DayStart > 0 || opts.DayEnd > 0 {
		planner.DayStart, planner.DayEnd = opts.DayStart, opts.DayEnd
	}
	return &Board{
		src:     src,
		feed:    opts.Feed,
		loc:     loc,
		sorter:  resource.NewSorter(opts.Locale),
		planner: planner,
	}
}

// Location is the board's calendar timezone.
func (b *Board) Location() *time.Location { return b.loc }

// Query selects what Load returns. From and To bound the window inclusively.
type Query struct {
	View       model.View
	From       time.Time
	To         time.Time
	Search     string
	ActiveOnly bool
}

// View is one rendered board.
type View struct {
	View      model.View       `json:"view"`
	From      time.Time        `json:"from"`
	To        time.Time        `json:"to"`
	Resources []model.Resource `json:"resources"`
	Events    []model.Event    `json:"events"`
	Conflicts []model.Conflict `json:"conflicts"`
}

type inputs struct {
	employees   []model.Employee
	projects    []model.Project
	assignments []model.Assignment
	absences    []model.Absence
}

// fetch reads all collaborators concurrently. A failing absence feed is
// logged and ignored; any other failure aborts.
func (b *Board) fetch(ctx context.Context) (*inputs, error) {
	var (
		in       inputs
		stored   []model.Absence
		external []model.Absence
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		emps, err := b.src.Employees(gctx)
		if err != nil {
			return errors.Wrap(err, "employees")
		}
		in.employees = emps
		return nil
	})
	g.Go(func() error {
		projects, err := b.src.Projects(gctx)
		if err != nil {
			return errors.Wrap(err, "projects")
		}
		in.projects = projects
		return nil
	})
	g.Go(func() error {
		assignments, err := b.src.Assignments(gctx)
		if err != nil {
			return errors.Wrap(err, "assignments")
		}
		in.assignments = assignments
		return nil
	})
	g.Go(func() error {
		abs, err := b.src.Absences(gctx)
		if err != nil {
			return errors.Wrap(err, "absences")
		}
		stored = abs
		return nil
	})
	if b.feed != nil {
		g.Go(func() error {
			abs, err := b.feed.Absences(gctx)
			if err != nil {
				appLog.Error("absence feed unavailable", err)
				return nil
			}
			external = abs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	in.absences = mergeAbsences(stored, external)
	return &in, nil
}

// mergeAbsences appends extra to base, skipping ids already present.
func mergeAbsences(base, extra []model.Absence) []model.Absence {
	seen := make(map[string]struct{}, len(base)+len(extra))
	out := make([]model.Absence, 0, len(base)+len(extra))
	for _, list := range [][]model.Absence{base, extra} {
		for _, ab := range list {
			if _, dup := seen[ab.ID]; dup {
				continue
			}
			seen[ab.ID] = struct{}{}
			out = append(out, ab)
		}
	}
	return out
}

// Load renders the board for q.
func (b *Board) Load(ctx context.Context, q Query) (*View, error) {
	if !q.View.Valid() {
		return nil, errors.Errorf("unknown view %q", q.View)
	}
	if q.To.Before(q.From) {
		return nil, errors.New("window end is before start")
	}
	in, err := b.fetch(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fetch board data")
	}

	absences, err := absence.Expand(in.absences, absence.ExpandConfig{Location: b.loc, RangeStart: q.From, RangeEnd: q.To})
	if err != nil {
		return nil, errors.Wrap(err, "expand absences")
	}

	rows := b.resources(in, q)
	visible := resource.BuildIDSet(rows)

	events := mapping.EventsInRange(mapping.MapAll(in.assignments, q.View, b.loc), q.From, q.To)
	if q.View == model.ViewEmployee {
		for _, ab := range absences {
			if ab.Status == model.AbsenceRejected {
				continue
			}
			events = append(events, mapping.AbsenceToEvent(ab, b.loc))
		}
	}
	events = mapping.FilterByResource(events, visible, q.View)
	mapping.SortEvents(events)

	// Conflicts are per employee, independent of the row filter.
	work := mapping.EventsInRange(mapping.MapAll(in.assignments, model.ViewEmployee, b.loc), q.From, q.To)
	conflicts := conflict.Detect(work, absence.Blocking(absences), b.loc)

	appLog.Debug("board loaded", "view", q.View, "resources", len(rows), "events", len(events), "conflicts", len(conflicts))
	return &View{
		View:      q.View,
		From:      q.From,
		To:        q.To,
		Resources: rows,
		Events:    conflict.Mark(events, conflicts),
		Conflicts: conflicts,
	}, nil
}

func (b *Board) resources(in *inputs, q Query) []model.Resource {
	var rows []model.Resource
	if q.View == model.ViewProject {
		rows = resource.FromProjects(in.projects)
	} else {
		rows = resource.FromEmployees(in.employees)
	}
	if q.ActiveOnly {
		rows = resource.ActiveOnly(rows)
	}
	if q.Search != "" {
		// Best matches first; Search keeps the sentinel at the end.
		return resource.Search(resource.AddUnassignedIfMissing(rows), q.Search)
	}
	return resource.AddUnassignedIfMissing(b.sorter.Sort(rows))
}

// DropRequest moves one event to NewDate and, when TargetID is set, onto
// another row of View.
type DropRequest struct {
	EventID  string
	View     model.View
	TargetID string
	NewDate  time.Time
}

// ResizeRequest changes the bounds of a timed event.
type ResizeRequest struct {
	EventID string
	Start   time.Time
	End     time.Time
}

// Result reports what a drop or resize changed.
type Result struct {
	Event      model.Event            `json:"event"`
	Update     model.AssignmentUpdate `json:"update"`
	Changed    bool                   `json:"changed"`
	Assignment model.Assignment       `json:"assignment"`
	Conflicts  []model.Conflict       `json:"conflicts"`
}

// Drop validates the request, sends the pruned update and returns the
// conflicts the moved assignment takes part in afterwards. A refused drop
// returns an error wrapping ErrRejected; nothing is written then.
func (b *Board) Drop(ctx context.Context, req DropRequest) (*Result, error) {
	if !req.View.Valid() {
		return nil, errors.Errorf("unknown view %q", req.View)
	}
	in, err := b.fetch(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fetch board data")
	}
	ev, src, err := b.findEvent(in, req.EventID, req.View)
	if err != nil {
		return nil, err
	}

	target := req.TargetID
	if target == "" {
		// Dropped on the same row.
		target = resource.Normalize(ev.ResourceID)
	}
	if v := dragdrop.ValidateDrop(ev, target, req.View); !v.Valid {
		appLog.Warn("drop rejected", "event", req.EventID, "reason", v.Reason)
		return nil, errors.Wrap(ErrRejected, v.Reason)
	}
	if !dragdrop.HasResourceChanged(ev, target, req.View) {
		target = ""
	}

	u := b.planner.CalculateUpdates(ev, src, req.NewDate, target, req.View)
	return b.commit(ctx, in, ev, *src, u)
}

// Resize sends the new bounds of a timed event. All-day events and inverted
// ranges produce no change.
func (b *Board) Resize(ctx context.Context, req ResizeRequest) (*Result, error) {
	in, err := b.fetch(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fetch board data")
	}
	ev, src, err := b.findEvent(in, req.EventID, model.ViewEmployee)
	if err != nil {
		return nil, err
	}
	if ev.SourceType == model.SourceAbsence {
		return nil, errors.Wrap(ErrRejected, dragdrop.ReasonAbsence)
	}
	u := b.planner.CalculateResizeUpdates(ev, src, req.Start, req.End)
	return b.commit(ctx, in, ev, *src, u)
}

func (b *Board) commit(ctx context.Context, in *inputs, ev model.Event, src model.Assignment, u model.AssignmentUpdate) (*Result, error) {
	res := &Result{Event: ev, Update: u, Assignment: src}
	if !u.Empty() {
		after, err := b.src.UpdateAssignment(ctx, src.ID, u)
		if err != nil {
			return nil, errors.Wrapf(err, "update assignment %s", src.ID)
		}
		res.Assignment = after
		res.Changed = true
		for i := range in.assignments {
			if in.assignments[i].ID == src.ID {
				in.assignments[i] = after
			}
		}
	}

	conflicts, err := b.conflictsFor(in, res.Assignment)
	if err != nil {
		return nil, err
	}
	res.Conflicts = conflicts
	return res, nil
}

// findEvent locates an event by id in the given view. Absence events are
// returned with a nil assignment.
func (b *Board) findEvent(in *inputs, id string, view model.View) (model.Event, *model.Assignment, error) {
	for i := range in.assignments {
		for _, ev := range mapping.MapToEvents(in.assignments[i], view, b.loc) {
			if ev.ID == id {
				a := in.assignments[i]
				return ev, &a, nil
			}
		}
	}
	for _, ab := range in.absences {
		ev := mapping.AbsenceToEvent(ab, b.loc)
		if ev.ID == id {
			return ev, &model.Assignment{}, nil
		}
	}
	return model.Event{}, nil, errors.Wrap(ErrEventNotFound, id)
}

// conflictsFor re-detects conflicts over the days a's events cover and keeps
// those a takes part in.
func (b *Board) conflictsFor(in *inputs, a model.Assignment) ([]model.Conflict, error) {
	own := mapping.MapToEvents(a, model.ViewEmployee, b.loc)
	if len(own) == 0 {
		return []model.Conflict{}, nil
	}
	from, to := own[0].Start, own[0].End
	for _, ev := range own[1:] {
		if ev.Start.Before(from) {
			from = ev.Start
		}
		if ev.End.After(to) {
			to = ev.End
		}
	}
	from = model.DateOf(from.In(b.loc)).In(b.loc)
	to = model.DateOf(to.In(b.loc)).AddDays(1).In(b.loc).Add(-time.Millisecond)

	absences, err := absence.Expand(in.absences, absence.ExpandConfig{Location: b.loc, RangeStart: from, RangeEnd: to})
	if err != nil {
		return nil, errors.Wrap(err, "expand absences")
	}
	work := mapping.EventsInRange(mapping.MapAll(in.assignments, model.ViewEmployee, b.loc), from, to)

	out := make([]model.Conflict, 0)
	for _, c := range conflict.Detect(work, absence.Blocking(absences), b.loc) {
		if c.A.SourceID == a.ID || (c.B.SourceType == model.SourceAssignment && c.B.SourceID == a.ID) {
			out = append(out, c)
		}
	}
	return out, nil
}
