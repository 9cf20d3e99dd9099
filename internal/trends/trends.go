// Package trends holds the time-window and regression heuristics behind the
// dashboard trend tiles.
package trends

import (
	"math"
	"sort"
	"time"

	"safety-analytics-go/internal/filter"
	"safety-analytics-go/internal/normalize"
	"safety-analytics-go/internal/types"
)

// DirectionThreshold is the predicted change (percent) a series must
// exceed before it counts as moving.
const DirectionThreshold = 5.0

// Dates extracts the parseable dates of records, skipping unknown ones.
func Dates[T filter.Record](records []T) []time.Time {
	out := make([]time.Time, 0, len(records))
	for _, r := range records {
		f := r.Facets()
		if d, ok := normalize.RecordDate(f.ParsedDate, f.RawDate); ok {
			out = append(out, d)
		}
	}
	return out
}

// WindowCounts counts dates in (now-days, now] and in the equally long
// window immediately before it.
func WindowCounts(dates []time.Time, days int, now time.Time) (current, previous int) {
	span := time.Duration(days) * 24 * time.Hour
	start := now.Add(-span)
	prevStart := start.Add(-span)
	for _, d := range dates {
		switch {
		case d.After(start) && !d.After(now):
			current++
		case d.After(prevStart) && !d.After(start):
			previous++
		}
	}
	return current, previous
}

// PercentChange is the change from the previous window to the current one.
// An empty previous window yields 0.
func PercentChange[T filter.Record](records []T, days int, now time.Time) float64 {
	cur, prev := WindowCounts(Dates(records), days, now)
	return Change(float64(prev), float64(cur))
}

// Change is (current-previous)/previous*100, 0 when previous is 0.
func Change(previous, current float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}

// Analyze fits a least-squares line through values (one per period) and
// classifies the direction. Falling counts are improving.
func Analyze(values []float64, metric string) types.TrendAnalysis {
	if len(values) < 2 {
		pred := 0.0
		if len(values) == 1 {
			pred = values[0]
		}
		return types.TrendAnalysis{
			Metric:     metric,
			Direction:  types.TrendStable,
			Prediction: pred,
			Factors:    []string{},
		}
	}

	n := float64(len(values))
	xMean := (n - 1) / 2
	yMean := mean(values)

	var num, den float64
	for i, y := range values {
		dx := float64(i) - xMean
		num += dx * (y - yMean)
		den += dx * dx
	}
	slope := 0.0
	if den != 0 {
		slope = num / den
	}
	intercept := yMean - slope*xMean
	prediction := slope*n + intercept

	var ssRes, ssTot float64
	for i, y := range values {
		fit := slope*float64(i) + intercept
		ssRes += (y - fit) * (y - fit)
		ssTot += (y - yMean) * (y - yMean)
	}
	rSquared := 0.0
	if ssTot != 0 {
		rSquared = 1 - ssRes/ssTot
	}
	confidence := math.Max(0, math.Min(100, rSquared*100))

	change := 0.0
	if yMean != 0 {
		change = (prediction - yMean) / yMean * 100
	}
	dir := types.TrendStable
	if math.Abs(change) > DirectionThreshold {
		dir = types.TrendWorsening
		if change < 0 {
			dir = types.TrendImproving
		}
	}

	return types.TrendAnalysis{
		Metric:        metric,
		Direction:     dir,
		ChangePercent: round(change, 1),
		Prediction:    round(prediction, 2),
		Confidence:    round(confidence, 1),
		Factors:       factors(values, dir),
	}
}

func factors(values []float64, dir types.TrendDirection) []string {
	out := []string{}
	if Volatility(values) > 0.3 {
		out = append(out, "High variability in data")
	}
	if k := len(values); k >= 3 {
		recent := values[k-1] - values[k-2]
		before := values[k-2] - values[k-3]
		if sign(recent) != sign(before) {
			out = append(out, "Trend reversal detected")
		}
	}
	switch dir {
	case types.TrendWorsening:
		out = append(out, "Increasing incident rate", "Review control measures")
	case types.TrendImproving:
		out = append(out, "Positive safety trend", "Continue current practices")
	}
	return out
}

// Volatility is the coefficient of variation (population stddev / mean).
func Volatility(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	if m == 0 {
		return 0
	}
	var variance float64
	for _, v := range values {
		variance += (v - m) * (v - m)
	}
	variance /= float64(len(values))
	return math.Sqrt(variance) / m
}

// MonthlyCounts counts records per calendar month for the months months
// ending with now's month, oldest first. Dates after now are not counted.
func MonthlyCounts[T filter.Record](records []T, now time.Time, months int) []float64 {
	if months <= 0 {
		return []float64{}
	}
	out := make([]float64, months)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	origin := first.AddDate(0, -(months - 1), 0)
	for _, d := range Dates(records) {
		if d.Before(origin) || d.After(now) {
			continue
		}
		i := (d.Year()-origin.Year())*12 + int(d.Month()) - int(origin.Month())
		if i >= 0 && i < months {
			out[i]++
		}
	}
	return out
}

// ByMonth groups records by calendar month, ascending. Unknown dates are
// skipped.
func ByMonth[T filter.Record](records []T) []types.MonthCount {
	counts := map[string]int{}
	for _, d := range Dates(records) {
		counts[d.Format("2006-01")]++
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]types.MonthCount, 0, len(keys))
	for _, k := range keys {
		t, _ := time.Parse("2006-01", k)
		out = append(out, types.MonthCount{Month: k, Label: t.Format("Jan 2006"), Count: counts[k]})
	}
	return out
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
