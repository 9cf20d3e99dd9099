package normalize

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// dateLayouts is tried in order. Slash dates are read month-first, as the
// incident exports are US-formatted; day-first only applies when the
// month-first reading is impossible.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04",
	"1/2/2006 15:04",
	"02/01/2006",
	"2/1/2006",
	"2006/01/02",
	"2006/1/2",
	"02-01-2006",
	"01-02-2006",
	"01-02-06",
	"Jan 2, 2006",
	"2 Jan 2006",
	"January 2, 2006",
}

// ParseDate reads the date formats seen in safety exports, plus spreadsheet
// serial day numbers. ok is false when nothing matches; callers decide what
// an unknown date means for them.
func ParseDate(raw string) (time.Time, bool) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	// spreadsheet serial dates (days since 1899-12-30)
	if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 && f < 2958466 {
		if t, err := excelize.ExcelDateToTime(f, false); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// RecordDate returns the cached parsed date, re-parsing raw when absent.
func RecordDate(parsed time.Time, raw string) (time.Time, bool) {
	if !parsed.IsZero() {
		return parsed, true
	}
	return ParseDate(raw)
}
