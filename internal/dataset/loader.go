package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"safety-analytics-go/internal/types"
)

var (
	ErrNoHeader       = errors.New("no header row")
	ErrUnsupportedExt = errors.New("unsupported file type")
)

// Load reads a CSV or XLSX export from disk, chosen by extension.
func Load(path string) ([]types.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()
	return Read(filepath.Base(path), f)
}

// Read parses r as the format implied by name's extension. Names without
// a known extension are read as CSV.
func Read(name string, r io.Reader) ([]types.Row, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return ReadXLSX(r)
	case ".csv", ".txt", "":
		return ReadCSV(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedExt, filepath.Ext(name))
	}
}

// ReadCSV parses a header-first CSV into rows keyed by header. Blank lines
// are skipped and short rows padded with "".
func ReadCSV(r io.Reader) ([]types.Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rowsFrom(records)
}

// ReadXLSX reads the first sheet of a workbook the same way as ReadCSV.
func ReadXLSX(r io.Reader) ([]types.Row, error) {
	// excelize needs a seekable source for the zip container
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read workbook: %w", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets")
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return rowsFrom(records)
}

func rowsFrom(records [][]string) ([]types.Row, error) {
	start := 0
	for start < len(records) && blank(records[start]) {
		start++
	}
	if start == len(records) {
		return nil, ErrNoHeader
	}
	header := make([]string, len(records[start]))
	for i, h := range records[start] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	out := make([]types.Row, 0, len(records)-start-1)
	for _, rec := range records[start+1:] {
		if blank(rec) {
			continue
		}
		row := make(types.Row, len(header))
		for i, h := range header {
			if h == "" {
				continue
			}
			if i < len(rec) {
				row[h] = strings.TrimSpace(rec[i])
			} else {
				row[h] = ""
			}
		}
		out = append(out, row)
	}
	return out, nil
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
