package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plantafel/internal/model"
)

const boardYAML = `mitarbeiter:
  - id: E1
    name: Anna Schmidt
    aktiv: true
  - id: E2
    name: Ben Weber
    aktiv: true
projekte:
  - id: P1
    name: Site 12
einsaetze:
  - id: a1
    mitarbeiterId: E1
    mitarbeiterName: Anna Schmidt
    projektId: P1
    projektName: Site 12
    setupDate: "2026-01-27"
    bestaetigt: true
abwesenheiten:
  - id: u1
    mitarbeiterId: E2
    von: "2026-02-02"
    bis: "2026-02-06"
    status: approved
    typ: vacation
`

func writeBoard(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadYAML(t *testing.T) {
	d, err := Load(writeBoard(t, "board.yaml", boardYAML))
	require.NoError(t, err)
	require.Len(t, d.Employees, 2)
	require.Len(t, d.Assignments, 1)
	require.NotNil(t, d.Assignments[0].SetupDate)
	assert.Equal(t, "2026-01-27", d.Assignments[0].SetupDate.String())
	require.Len(t, d.Absences, 1)
	assert.True(t, d.Absences[0].Blocking())
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	d, err := Load(filepath.Join(t.TempDir(), "none.json"))
	require.NoError(t, err)
	assert.Empty(t, d.Assignments)
}

func TestLoadRejectsUnknownExtension(t *testing.T) {
	_, err := Load("board.toml")
	assert.Error(t, err)
}

func TestSaveJSONRoundTrip(t *testing.T) {
	src, err := Load(writeBoard(t, "board.yaml", boardYAML))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "board.json")
	require.NoError(t, Save(path, src))
	back, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, src, back)
}

func TestUpdateAssignmentPersists(t *testing.T) {
	path := writeBoard(t, "board.yaml", boardYAML)
	st, err := Open(path)
	require.NoError(t, err)
	ctx := context.Background()

	start := time.Date(2026, 1, 28, 8, 0, 0, 0, time.UTC)
	u := model.AssignmentUpdate{
		Start:      model.TimePtr(start),
		End:        model.TimePtr(start.Add(9 * time.Hour)),
		EmployeeID: model.SetRef("E2"),
		SetupDate:  model.DatePtr(model.NewDate(2026, 1, 28)),
	}
	got, err := st.UpdateAssignment(ctx, "a1", u)
	require.NoError(t, err)
	assert.Equal(t, "E2", got.EmployeeID)
	assert.Equal(t, "Ben Weber", got.EmployeeName)
	assert.Equal(t, "2026-01-28", got.SetupDate.String())

	reopened, err := Open(path)
	require.NoError(t, err)
	a, err := reopened.Assignment(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "Ben Weber", a.EmployeeName)
	require.NotNil(t, a.Start)
	assert.True(t, start.Equal(*a.Start))
}

func TestUpdateAssignmentClearsReference(t *testing.T) {
	st, err := Open(writeBoard(t, "board.yaml", boardYAML))
	require.NoError(t, err)

	got, err := st.UpdateAssignment(context.Background(), "a1", model.AssignmentUpdate{EmployeeID: model.SetRef("")})
	require.NoError(t, err)
	assert.Empty(t, got.EmployeeID)
	assert.Empty(t, got.EmployeeName)
}

func TestUpdateAssignmentUnknownID(t *testing.T) {
	st, err := Open(writeBoard(t, "board.yaml", boardYAML))
	require.NoError(t, err)

	_, err = st.UpdateAssignment(context.Background(), "zz", model.AssignmentUpdate{EmployeeID: model.SetRef("E2")})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestEmptyUpdateDoesNotWrite(t *testing.T) {
	path := writeBoard(t, "board.yaml", boardYAML)
	st, err := Open(path)
	require.NoError(t, err)

	got, err := st.UpdateAssignment(context.Background(), "a1", model.AssignmentUpdate{})
	require.NoError(t, err)
	assert.Equal(t, "E1", got.EmployeeID)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, boardYAML, string(raw))
}

func TestReadsHonourCancelledContext(t *testing.T) {
	st, err := Open(writeBoard(t, "board.yaml", boardYAML))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = st.Assignments(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
