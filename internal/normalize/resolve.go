// Package normalize maps loosely-typed export rows onto canonical safety
// records. Nothing in here fails: missing or garbled cells degrade to the
// zero value of the field.
package normalize

import (
	"math"
	"strconv"
	"strings"

	"safety-analytics-go/internal/types"
)

// Resolve returns the first non-blank value among aliases, in priority
// order. Exact header matches are tried before a loose match that ignores
// case, spaces, dashes and underscores.
func Resolve(row types.Row, aliases ...string) string {
	for _, a := range aliases {
		if v, ok := row[a]; ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	if len(row) == 0 {
		return ""
	}
	loose := make(map[string]string, len(row))
	for k, v := range row {
		lk := looseKey(k)
		if _, seen := loose[lk]; seen && strings.TrimSpace(loose[lk]) != "" {
			continue
		}
		loose[lk] = v
	}
	for _, a := range aliases {
		if v := strings.TrimSpace(loose[looseKey(a)]); v != "" {
			return v
		}
	}
	return ""
}

func looseKey(k string) string {
	k = strings.TrimPrefix(k, "\ufeff")
	var b strings.Builder
	b.Grow(len(k))
	for _, r := range strings.ToLower(k) {
		switch r {
		case ' ', '_', '-', '.', '\t':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Int parses a whole-number cell; "3.0" style values are truncated.
// Values outside the int range are treated as garbled.
func Int(v string) int {
	v = strings.TrimSpace(strings.ReplaceAll(v, ",", ""))
	if v == "" {
		return 0
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	f := Float(v)
	if f >= math.MaxInt64 || f <= math.MinInt64 {
		return 0
	}
	return int(f)
}

// Float parses a decimal cell, 0 when blank, garbled, NaN or infinite.
func Float(v string) float64 {
	v = strings.TrimSpace(strings.ReplaceAll(v, ",", ""))
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Bool accepts the spellings recordable/OTR columns show up with.
func Bool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "1.0", "y", "yes", "true", "t", "x":
		return true
	}
	return false
}
