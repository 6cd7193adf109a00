// Package resource is the registry of planning-board rows: employees or
// projects plus the synthetic "unassigned" row that hosts assignments without
// an employee.
//
// Legacy records spell "no resource" as an empty string, current ones as the
// sentinel id. Every comparison, lookup and write-back goes through Normalize
// and ToExternalID so both spellings behave the same.
package resource

import (
	"slices"
	"sort"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"plantafel/internal/model"
)

const (
	// UnassignedID is the sentinel id of the unassigned row.
	UnassignedID = model.UnassignedID
	// UnassignedName is the display label of the unassigned row.
	UnassignedName = "Unassigned"
)

// Unassigned returns the canonical sentinel resource.
func Unassigned() model.Resource {
	return model.Resource{
		ID:     UnassignedID,
		Name:   UnassignedName,
		Type:   model.ResourceEmployee,
		Active: true,
	}
}

// IsUnassigned reports whether id denotes "no resource": the sentinel or the
// empty string.
func IsUnassigned(id string) bool {
	return id == "" || id == UnassignedID
}

// Normalize collapses every "no resource" spelling to the sentinel id.
func Normalize(id string) string {
	if IsUnassigned(id) {
		return UnassignedID
	}
	return id
}

// ToExternalID converts an id for the collaborator API, whose own "no
// resource" value is an absent field. The sentinel becomes "".
func ToExternalID(id string) string {
	if IsUnassigned(id) {
		return ""
	}
	return id
}

// FindByID returns the resource with the given id. Both spellings of "no
// resource" find the sentinel even when the list does not contain it.
func FindByID(list []model.Resource, id string) (model.Resource, bool) {
	id = Normalize(id)
	if id == UnassignedID {
		return Unassigned(), true
	}
	for _, r := range list {
		if r.ID == id {
			return r, true
		}
	}
	return model.Resource{}, false
}

// Contains reports list membership. The sentinel is always contained.
func Contains(list []model.Resource, id string) bool {
	_, ok := FindByID(list, id)
	return ok
}

// AddUnassignedIfMissing appends the sentinel unless it is already present.
func AddUnassignedIfMissing(list []model.Resource) []model.Resource {
	for _, r := range list {
		if r.ID == UnassignedID {
			return list
		}
	}
	out := make([]model.Resource, 0, len(list)+1)
	out = append(out, list...)
	return append(out, Unassigned())
}

// IDSet is a membership set of normalized resource ids.
type IDSet map[string]struct{}

// Has reports membership after normalization.
func (s IDSet) Has(id string) bool {
	_, ok := s[Normalize(id)]
	return ok
}

// BuildIDSet builds the visible-resource set; the sentinel is always in it.
func BuildIDSet(list []model.Resource) IDSet {
	set := make(IDSet, len(list)+1)
	for _, r := range list {
		set[Normalize(r.ID)] = struct{}{}
	}
	set[UnassignedID] = struct{}{}
	return set
}

// Sorter orders resources by display name using a locale's collation. It is
// safe for concurrent use.
type Sorter struct {
	mu  sync.Mutex
	col *collate.Collator
}

// NewSorter builds a Sorter for a BCP 47 locale such as "de" or "en-GB".
// Unparseable locales fall back to German, the board's home locale.
func NewSorter(locale string) *Sorter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.German
	}
	return &Sorter{col: collate.New(tag, collate.IgnoreCase)}
}

// Sort returns a stably sorted copy with the sentinel always last.
func (s *Sorter) Sort(list []model.Resource) []model.Resource {
	out := slices.Clone(list)
	s.mu.Lock()
	defer s.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool {
		ui, uj := out[i].ID == UnassignedID, out[j].ID == UnassignedID
		if ui || uj {
			return !ui && uj
		}
		return s.col.CompareString(out[i].Name, out[j].Name) < 0
	})
	return out
}

var defaultSorter = NewSorter("de")

// Sort orders by display name with German collation, sentinel last.
func Sort(list []model.Resource) []model.Resource {
	return defaultSorter.Sort(list)
}

// FromEmployees turns directory employees into board rows.
func FromEmployees(emps []model.Employee) []model.Resource {
	out := make([]model.Resource, 0, len(emps))
	for _, e := range emps {
		if IsUnassigned(e.ID) {
			continue
		}
		out = append(out, model.Resource{ID: e.ID, Name: e.Name, Type: model.ResourceEmployee, Active: e.Active})
	}
	return out
}

// FromProjects turns directory projects into board rows.
func FromProjects(projects []model.Project) []model.Resource {
	out := make([]model.Resource, 0, len(projects))
	for _, p := range projects {
		if p.ID == "" {
			continue
		}
		out = append(out, model.Resource{ID: p.ID, Name: p.Name, Type: model.ResourceProject, Active: true, Status: p.Status})
	}
	return out
}

// ActiveOnly drops inactive rows. The sentinel is always active.
func ActiveOnly(list []model.Resource) []model.Resource {
	out := make([]model.Resource, 0, len(list))
	for _, r := range list {
		if r.Active || r.ID == UnassignedID {
			out = append(out, r)
		}
	}
	return out
}

// Search keeps rows whose name fuzzily matches query, best match first. An
// empty query returns the list unchanged; the sentinel is never filtered out.
func Search(list []model.Resource, query string) []model.Resource {
	if query == "" {
		return list
	}
	names := make([]string, len(list))
	for i, r := range list {
		names[i] = r.Name
	}
	ranks := fuzzy.RankFindNormalizedFold(query, names)
	sort.Stable(ranks)

	out := make([]model.Resource, 0, len(ranks)+1)
	for _, rank := range ranks {
		if list[rank.OriginalIndex].ID == UnassignedID {
			continue
		}
		out = append(out, list[rank.OriginalIndex])
	}
	for _, r := range list {
		if r.ID == UnassignedID {
			out = append(out, r)
			break
		}
	}
	return out
}
