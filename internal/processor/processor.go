package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"safety-analytics-go/internal/dataset"
	"safety-analytics-go/internal/logger"
	"safety-analytics-go/internal/normalize"
	"safety-analytics-go/internal/state"
	"safety-analytics-go/internal/types"
)

var ErrUnknownKind = errors.New("unknown record kind")

// RowFetcher downloads and parses a remote export.
type RowFetcher interface {
	Fetch(ctx context.Context, url string) ([]types.Row, error)
}

// ImportResult is returned for every upload, fetch and scheduled import.
type ImportResult struct {
	Kind       types.RecordKind `json:"kind"`
	Source     string           `json:"source"`
	Rows       int              `json:"rows"`
	DurationMs int64            `json:"duration_ms"`
	Error      string           `json:"error,omitempty"`
}

// Importer parses raw rows into canonical records and swaps them into the
// store. A failed parse leaves the store untouched.
type Importer struct {
	store   *state.Store
	fetcher RowFetcher
	log     *logger.Logger
}

func NewImporter(store *state.Store, fetcher RowFetcher) *Importer {
	return &Importer{
		store:   store,
		fetcher: fetcher,
		log:     logger.New().WithComponent("processor"),
	}
}

// WithLogger replaces the importer's logger.
func (im *Importer) WithLogger(l *logger.Logger) *Importer {
	im.log = l.WithComponent("processor")
	return im
}

// ImportReader parses r, whose format is implied by name.
func (im *Importer) ImportReader(kind types.RecordKind, name string, r io.Reader) (ImportResult, error) {
	start := time.Now()
	res := ImportResult{Kind: kind, Source: name}
	if !state.ValidKind(kind) {
		return im.fail(res, start, fmt.Errorf("%w: %q", ErrUnknownKind, kind))
	}
	rows, err := dataset.Read(name, r)
	if err != nil {
		return im.fail(res, start, fmt.Errorf("parse %s: %w", name, err))
	}
	return im.apply(res, start, rows)
}

// ImportURL fetches a remote export and imports it.
func (im *Importer) ImportURL(ctx context.Context, kind types.RecordKind, url string) (ImportResult, error) {
	start := time.Now()
	res := ImportResult{Kind: kind, Source: url}
	if !state.ValidKind(kind) {
		return im.fail(res, start, fmt.Errorf("%w: %q", ErrUnknownKind, kind))
	}
	if im.fetcher == nil {
		return im.fail(res, start, errors.New("remote import not configured"))
	}
	rows, err := im.fetcher.Fetch(ctx, url)
	if err != nil {
		return im.fail(res, start, err)
	}
	return im.apply(res, start, rows)
}

// ImportDir imports, for each record kind, the first file in dir named
// after it (injuries.csv, near-misses.xlsx, inspections.csv). Kinds with no
// matching file are skipped. Parse failures are reported per result and do
// not stop the scan.
func (im *Importer) ImportDir(dir string) ([]ImportResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read data dir: %w", err)
	}
	var out []ImportResult
	for _, kind := range state.Kinds() {
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || strings.TrimSuffix(name, filepath.Ext(name)) != string(kind) {
				continue
			}
			res, _ := im.importFile(kind, filepath.Join(dir, name))
			out = append(out, res)
			break
		}
	}
	return out, nil
}

func (im *Importer) importFile(kind types.RecordKind, path string) (ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return im.fail(ImportResult{Kind: kind, Source: path}, time.Now(), err)
	}
	defer f.Close()
	return im.ImportReader(kind, path, f)
}

// ImportRows normalizes already-parsed rows.
func (im *Importer) ImportRows(kind types.RecordKind, source string, rows []types.Row) (ImportResult, error) {
	start := time.Now()
	res := ImportResult{Kind: kind, Source: source}
	if !state.ValidKind(kind) {
		return im.fail(res, start, fmt.Errorf("%w: %q", ErrUnknownKind, kind))
	}
	return im.apply(res, start, rows)
}

func (im *Importer) apply(res ImportResult, start time.Time, rows []types.Row) (ImportResult, error) {
	switch res.Kind {
	case types.KindInjury:
		im.store.SetInjuries(normalize.Injuries(rows))
	case types.KindNearMiss:
		im.store.SetNearMisses(normalize.NearMisses(rows))
	case types.KindInspection:
		im.store.SetInspections(normalize.Inspections(rows))
	}
	res.Rows = len(rows)
	res.DurationMs = time.Since(start).Milliseconds()
	im.log.WithField("kind", res.Kind).WithField("source", res.Source).
		WithField("rows", res.Rows).WithField("duration_ms", res.DurationMs).Info("import finished")
	return res, nil
}

func (im *Importer) fail(res ImportResult, start time.Time, err error) (ImportResult, error) {
	res.Error = err.Error()
	res.DurationMs = time.Since(start).Milliseconds()
	im.log.WithError(err).WithField("kind", res.Kind).WithField("source", res.Source).Warn("import failed")
	return res, err
}
