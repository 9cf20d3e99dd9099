// Package filter subsets record collections by a sparse FilterState.
package filter

import (
	"strings"
	"time"

	"github.com/samber/lo"
	"safety-analytics-go/internal/normalize"
	"safety-analytics-go/internal/types"
)

// Record is anything that can expose its filterable facets.
type Record interface {
	Facets() types.Facets
}

type predicate func(types.Facets) bool

// Apply returns the records that satisfy every active predicate in f, in
// their original order. Records with unknown dates are dropped only when a
// date bound is set.
func Apply[T Record](records []T, f types.FilterState) []T {
	preds := compile(f)
	if len(preds) == 0 {
		return append(make([]T, 0, len(records)), records...)
	}
	return lo.Filter(records, func(r T, _ int) bool {
		facets := r.Facets()
		for _, p := range preds {
			if !p(facets) {
				return false
			}
		}
		return true
	})
}

// compile turns f into predicates. Facet predicates pass records whose
// collection does not carry that facet.
func compile(f types.FilterState) []predicate {
	var preds []predicate
	if types.Active(f.Site) {
		site := strings.TrimSpace(f.Site)
		preds = append(preds, func(x types.Facets) bool { return x.Site == site })
	}
	if types.Active(f.Severity) {
		sev := normalize.Severity(f.Severity)
		preds = append(preds, func(x types.Facets) bool { return !x.HasSeverity || x.Severity == sev })
	}
	if types.Active(f.BodyPart) {
		part := strings.TrimSpace(f.BodyPart)
		preds = append(preds, func(x types.Facets) bool { return !x.HasBodyPart || x.BodyPart == part })
	}
	if types.Active(f.ProcessPath) {
		path := strings.TrimSpace(f.ProcessPath)
		preds = append(preds, func(x types.Facets) bool { return !x.HasProcessPath || x.ProcessPath == path })
	}
	if p := dateRange(f.DateFrom, f.DateTo); p != nil {
		preds = append(preds, p)
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		preds = append(preds, func(x types.Facets) bool {
			return lo.SomeBy(x.Text, func(s string) bool {
				return strings.Contains(strings.ToLower(s), q)
			})
		})
	}
	return preds
}

// dateRange builds an inclusive bound check. A bound that cannot be parsed
// is ignored rather than excluding everything.
func dateRange(fromRaw, toRaw string) predicate {
	var from, to time.Time
	var hasFrom, hasTo bool
	if types.Active(fromRaw) {
		from, hasFrom = normalize.ParseDate(fromRaw)
	}
	if types.Active(toRaw) {
		to, hasTo = normalize.ParseDate(toRaw)
	}
	if !hasFrom && !hasTo {
		return nil
	}
	return func(x types.Facets) bool {
		d, ok := normalize.RecordDate(x.ParsedDate, x.RawDate)
		if !ok {
			return false
		}
		if hasFrom && d.Before(from) {
			return false
		}
		if hasTo && d.After(to) {
			return false
		}
		return true
	}
}
