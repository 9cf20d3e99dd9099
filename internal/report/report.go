// Package report renders the filtered collections and their KPIs as an
// Excel workbook or CSV.
package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"safety-analytics-go/internal/state"
	"safety-analytics-go/internal/types"
)

type Type string

const (
	TypeInjury   Type = "injury"
	TypeNearMiss Type = "nearMiss"
	TypeCombined Type = "combined"
)

var ErrUnknownType = errors.New("unknown report type")

// ParseType accepts the report type case-insensitively; "" is combined.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "combined":
		return TypeCombined, nil
	case "injury", "injuries":
		return TypeInjury, nil
	case "nearmiss", "near-miss", "near-misses":
		return TypeNearMiss, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// Filename is safety_report_<type>_<yyyymmdd>.xlsx.
func Filename(t Type, now time.Time) string {
	return fmt.Sprintf("safety_report_%s_%s.xlsx", t, now.Format("20060102"))
}

// Input is what a workbook is built from. KPIs must already be computed
// over the sets the report type includes.
type Input struct {
	Type       Type
	Injuries   []types.InjuryRecord
	NearMisses []types.NearMissRecord
	KPIs       types.SafetyKPIs
	Insights   []types.PredictiveInsight
}

// Scope trims a snapshot to the sets the report type covers.
func Scope(t Type, snap state.Snapshot) ([]types.InjuryRecord, []types.NearMissRecord) {
	switch t {
	case TypeInjury:
		return snap.Injuries, nil
	case TypeNearMiss:
		return nil, snap.NearMisses
	}
	return snap.Injuries, snap.NearMisses
}

const (
	sheetKPIs     = "KPIs"
	sheetInjury   = "Injury Data"
	sheetNearMiss = "Near Miss Data"
	sheetInsights = "Insights"
)

// WriteExcel builds the workbook and writes it to w. Data sheets are only
// added for non-empty sets.
func WriteExcel(w io.Writer, in Input) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetKPIs); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	k := in.KPIs
	kpiRows := [][]interface{}{
		{"Key Performance Indicators"},
		{},
		{"Metric", "Value"},
		{"TRIR", fmt.Sprintf("%.2f", k.TRIR)},
		{"LTIR", fmt.Sprintf("%.2f", k.LTIR)},
		{"DAFWR", fmt.Sprintf("%.2f", k.DAFWR)},
		{"NMFR", fmt.Sprintf("%.2f", k.NMFR)},
		{"Recordable Rate %", fmt.Sprintf("%.1f", k.RecordableRate)},
		{"Safety Index", fmt.Sprintf("%.1f", k.SafetyIndex)},
		{"Total Incidents", k.TotalInjuries},
		{"Near Misses", k.NearMisses},
		{"Average Risk Score", fmt.Sprintf("%.1f", k.AvgRiskScore)},
		{"Critical Events", k.CriticalEvents},
		{"Baseline Hours", k.BaselineHours},
	}
	if err := writeRows(f, sheetKPIs, kpiRows); err != nil {
		return err
	}
	_ = f.SetCellStyle(sheetKPIs, "A1", "A1", bold)
	_ = f.SetCellStyle(sheetKPIs, "A3", "B3", bold)

	if in.Type != TypeNearMiss && len(in.Injuries) > 0 {
		if err := dataSheet(f, sheetInjury, injuryColumns, in.Injuries, bold); err != nil {
			return err
		}
	}
	if in.Type != TypeInjury && len(in.NearMisses) > 0 {
		if err := dataSheet(f, sheetNearMiss, nearMissColumns, in.NearMisses, bold); err != nil {
			return err
		}
	}
	if len(in.Insights) > 0 {
		rows := [][]interface{}{{"Severity", "Title", "Description", "Confidence", "Suggested Actions"}}
		for _, i := range in.Insights {
			rows = append(rows, []interface{}{string(i.Severity), i.Title, i.Description, i.Confidence, strings.Join(i.SuggestedActions, "; ")})
		}
		if _, err := f.NewSheet(sheetInsights); err != nil {
			return err
		}
		if err := writeRows(f, sheetInsights, rows); err != nil {
			return err
		}
		_ = f.SetCellStyle(sheetInsights, "A1", "E1", bold)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func dataSheet[T any](f *excelize.File, name string, cols []column[T], records []T, style int) error {
	if _, err := f.NewSheet(name); err != nil {
		return err
	}
	rows := make([][]interface{}, 0, len(records)+1)
	rows = append(rows, toRow(headers(cols)))
	for _, r := range records {
		rows = append(rows, toRow(values(cols, r)))
	}
	if err := writeRows(f, name, rows); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(cols), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(name, "A1", last, style)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func toRow(vals []string) []interface{} {
	out := make([]interface{}, len(vals))
	for i, v := range vals {
		out[i] = v
	}
	return out
}

// WriteCSV exports one collection of snap with a header row.
func WriteCSV(w io.Writer, kind types.RecordKind, snap state.Snapshot) error {
	cw := csv.NewWriter(w)
	var err error
	switch kind {
	case types.KindInjury:
		err = writeCSV(cw, injuryColumns, snap.Injuries)
	case types.KindNearMiss:
		err = writeCSV(cw, nearMissColumns, snap.NearMisses)
	case types.KindInspection:
		err = writeCSV(cw, inspectionColumns, snap.Inspections)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownType, kind)
	}
	if err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func writeCSV[T any](cw *csv.Writer, cols []column[T], records []T) error {
	if err := cw.Write(headers(cols)); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(values(cols, r)); err != nil {
			return err
		}
	}
	return nil
}
