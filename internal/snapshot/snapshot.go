// Package snapshot keeps the board's collaborator data (employees, projects,
// assignments and absences) in one JSON or YAML file and serves it to the
// board as if it were the remote APIs.
package snapshot

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-faster/errors"
	"gopkg.in/yaml.v3"

	"plantafel/internal/config"
	"plantafel/internal/dragdrop"
	appLog "plantafel/internal/log"
	"plantafel/internal/model"
)

// ErrNotFound is returned when an update names an unknown assignment.
var ErrNotFound = errors.New("assignment not found")

// Data is the file layout.
type Data struct {
	Employees   []model.Employee   `json:"mitarbeiter" yaml:"mitarbeiter"`
	Projects    []model.Project    `json:"projekte" yaml:"projekte"`
	Assignments []model.Assignment `json:"einsaetze" yaml:"einsaetze"`
	Absences    []model.Absence    `json:"abwesenheiten" yaml:"abwesenheiten"`
}

type format int

const (
	formatYAML format = iota
	formatJSON
)

func formatOf(path string) (format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML, nil
	case ".json":
		return formatJSON, nil
	default:
		return 0, errors.Errorf("unsupported snapshot format: %s", filepath.Ext(path))
	}
}

// Load reads a snapshot. A missing file yields empty data.
func Load(path string) (*Data, error) {
	f, err := formatOf(path)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Data{}, nil
		}
		return nil, errors.Wrap(err, "read snapshot")
	}

	var d Data
	switch f {
	case formatJSON:
		err = json.Unmarshal(raw, &d)
	default:
		err = yaml.Unmarshal(raw, &d)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "decode snapshot %s", path)
	}
	return &d, nil
}

// Save writes d atomically in the format implied by the extension.
func Save(path string, d *Data) error {
	f, err := formatOf(path)
	if err != nil {
		return err
	}
	var raw []byte
	switch f {
	case formatJSON:
		raw, err = json.MarshalIndent(d, "", "  ")
	default:
		raw, err = yaml.Marshal(d)
	}
	if err != nil {
		return errors.Wrap(err, "encode snapshot")
	}
	if err := config.WriteFileAtomic(path, raw, ".plantafel-snapshot-*.tmp"); err != nil {
		return errors.Wrap(err, "write snapshot")
	}
	return nil
}

// Store serves a snapshot file and writes assignment updates back to it.
// It is safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	path string
	data Data
}

// Open loads the snapshot at path.
func Open(path string) (*Store, error) {
	d, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Store{path: path, data: *d}, nil
}

func (s *Store) Employees(ctx context.Context) ([]model.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Employee(nil), s.data.Employees...), ctx.Err()
}

func (s *Store) Projects(ctx context.Context) ([]model.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Project(nil), s.data.Projects...), ctx.Err()
}

func (s *Store) Assignments(ctx context.Context) ([]model.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Assignment(nil), s.data.Assignments...), ctx.Err()
}

func (s *Store) Absences(ctx context.Context) ([]model.Absence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Absence(nil), s.data.Absences...), ctx.Err()
}

// Assignment returns one assignment by id.
func (s *Store) Assignment(ctx context.Context, id string) (model.Assignment, error) {
	if err := ctx.Err(); err != nil {
		return model.Assignment{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.data.Assignments {
		if a.ID == id {
			return a, nil
		}
	}
	return model.Assignment{}, errors.Wrap(ErrNotFound, id)
}

// UpdateAssignment applies u to the assignment id, fills the display names
// of newly set references from the directories and persists the file. The
// change is logged as a JSON patch. If the file cannot be written the
// in-memory state is left untouched.
func (s *Store) UpdateAssignment(ctx context.Context, id string, u model.AssignmentUpdate) (model.Assignment, error) {
	if err := ctx.Err(); err != nil {
		return model.Assignment{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, a := range s.data.Assignments {
		if a.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return model.Assignment{}, errors.Wrap(ErrNotFound, id)
	}
	before := s.data.Assignments[idx]

	if u.Empty() {
		return before, nil
	}

	patch, err := dragdrop.AuditPatch(before, u)
	if err != nil {
		return model.Assignment{}, err
	}

	after := u.Apply(before)
	if u.EmployeeID.Set && u.EmployeeID.ID != "" {
		after.EmployeeName = s.employeeName(u.EmployeeID.ID)
	}
	if u.ProjectID.Set && u.ProjectID.ID != "" {
		after.ProjectName = s.projectName(u.ProjectID.ID)
	}

	next := s.data
	next.Assignments = append([]model.Assignment(nil), s.data.Assignments...)
	next.Assignments[idx] = after
	if err := Save(s.path, &next); err != nil {
		return model.Assignment{}, err
	}
	s.data = next

	appLog.Info("assignment updated", "id", id, "fields", u.Fields(), "patch", patch.String())
	return after, nil
}

func (s *Store) employeeName(id string) string {
	for _, e := range s.data.Employees {
		if e.ID == id {
			return e.Name
		}
	}
	return ""
}

func (s *Store) projectName(id string) string {
	for _, p := range s.data.Projects {
		if p.ID == id {
			return p.Name
		}
	}
	return ""
}
