package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"safety-analytics-go/internal/logger"
	"safety-analytics-go/internal/state"
	"safety-analytics-go/internal/types"
)

type stubFetcher struct {
	rows []types.Row
	err  error
}

func (s stubFetcher) Fetch(context.Context, string) ([]types.Row, error) { return s.rows, s.err }

const nearMissCSV = `Incident ID,Site,Potential Severity,Likelihood,Location
NM-100,DFW7,High,Likely,Dock 3
,SEA1,Low,Rare,Yard
`

func TestImportReader(t *testing.T) {
	store := state.New()
	im := NewImporter(store, nil)

	res, err := im.ImportReader(types.KindNearMiss, "near_misses.csv", strings.NewReader(nearMissCSV))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Rows)
	assert.Empty(t, res.Error)

	got := store.All().NearMisses
	require.Len(t, got, 2)
	assert.Equal(t, "NM-100", got[0].IncidentID)
	assert.Equal(t, types.SeverityB, got[0].Severity)
	assert.InDelta(t, 6.4, got[0].Risk, 1e-9)
	assert.Equal(t, "NM-2", got[1].IncidentID)
}

func TestFailedImportKeepsState(t *testing.T) {
	store := state.New()
	im := NewImporter(store, nil)
	_, err := im.ImportRows(types.KindInjury, "seed", []types.Row{{"Site": "DFW7"}})
	require.NoError(t, err)

	res, err := im.ImportReader(types.KindInjury, "empty.csv", strings.NewReader(""))
	require.Error(t, err)
	assert.NotEmpty(t, res.Error)
	assert.Len(t, store.All().Injuries, 1)

	_, err = im.ImportReader(types.KindInjury, "scan.pdf", strings.NewReader("%PDF"))
	require.Error(t, err)
	assert.Len(t, store.All().Injuries, 1)
}

func TestUnknownKind(t *testing.T) {
	im := NewImporter(state.New(), nil)
	_, err := im.ImportRows("audits", "x", nil)
	assert.ErrorIs(t, err, ErrUnknownKind)
	_, err = im.ImportReader("audits", "x.csv", strings.NewReader("a\n1"))
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestImportURL(t *testing.T) {
	store := state.New()

	_, err := NewImporter(store, nil).ImportURL(context.Background(), types.KindInspection, "http://x/y.csv")
	assert.Error(t, err)

	im := NewImporter(store, stubFetcher{rows: []types.Row{{"Inspection ID": "I-1", "Status": "done"}}})
	res, err := im.ImportURL(context.Background(), types.KindInspection, "http://x/y.csv")
	require.NoError(t, err)
	assert.Equal(t, "http://x/y.csv", res.Source)
	require.Len(t, store.All().Inspections, 1)
	assert.Equal(t, types.InspectionCompleted, store.All().Inspections[0].Status)

	boom := errors.New("boom")
	_, err = NewImporter(store, stubFetcher{err: boom}).ImportURL(context.Background(), types.KindInspection, "http://x")
	assert.ErrorIs(t, err, boom)
	assert.Len(t, store.All().Inspections, 1)
}

func TestImportDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "near-misses.csv"), []byte(nearMissCSV), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "inspections.pdf"), []byte("%PDF"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.csv"), []byte("a\n1\n"), 0o600))

	store := state.New()
	results, err := NewImporter(store, nil).ImportDir(dir)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, types.KindNearMiss, results[0].Kind)
	assert.Equal(t, 2, results[0].Rows)
	assert.Equal(t, types.KindInspection, results[1].Kind)
	assert.NotEmpty(t, results[1].Error)
	assert.Len(t, store.All().NearMisses, 2)

	_, err = NewImporter(store, nil).ImportDir(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	im := NewImporter(state.New(), nil).WithLogger(logger.NewWith("production", "info", &buf))
	_, err := im.ImportRows(types.KindInjury, "inline", []types.Row{{"Case Number": "C-1"}})
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "processor", entry["component"])
	assert.Equal(t, "import finished", entry["msg"])
}
