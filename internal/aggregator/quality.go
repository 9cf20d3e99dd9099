package aggregator

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"safety-analytics-go/internal/normalize"
	"safety-analytics-go/internal/types"
)

// Fielder exposes canonical fields by name for quality scoring.
type Fielder interface {
	Field(name string) string
}

var (
	InjuryRequiredFields   = []string{"site", "date", "severity", "bodyPart", "description", "rootCause"}
	NearMissRequiredFields = []string{"site", "date", "severity", "location", "description"}

	descriptiveFields = []string{"description", "rootCause", "correctiveAction", "primaryImpact"}
)

// Quality scores completeness, descriptive accuracy, duplicate consistency
// and reporting timeliness, weighted 30/30/20/20.
func Quality[T Fielder](records []T, required []string) types.QualityMetrics {
	if len(records) == 0 {
		return types.QualityMetrics{MissingFields: []string{}}
	}

	var total, filled int
	missing := map[string]bool{}
	for _, r := range records {
		for _, f := range required {
			total++
			v := strings.TrimSpace(r.Field(f))
			if v != "" && v != string(types.SeverityUnknown) {
				filled++
			} else {
				missing[f] = true
			}
		}
	}
	completeness := Percent(filled, total)
	missingFields := make([]string, 0, len(missing))
	for _, f := range required {
		if missing[f] {
			missingFields = append(missingFields, f)
		}
	}

	var words, described int
	for _, r := range records {
		for _, f := range descriptiveFields {
			if text := r.Field(f); strings.TrimSpace(text) != "" {
				words += len(strings.Fields(text))
				described++
			}
		}
	}
	avgWords := 0.0
	if described > 0 {
		avgWords = float64(words) / float64(described)
	}
	// 20 words of narrative per field counts as fully descriptive
	accuracy := math.Min(100, avgWords/20*100)

	dupes := duplicates(records)
	consistency := math.Max(0, 100-float64(dupes)/float64(len(records))*100)

	timeliness := 100.0
	var delays []float64
	for _, r := range records {
		occurred, ok1 := normalize.ParseDate(r.Field("date"))
		reported, ok2 := normalize.ParseDate(r.Field("dateReported"))
		if ok1 && ok2 {
			delays = append(delays, math.Floor(reported.Sub(occurred).Hours()/24))
		}
	}
	if len(delays) > 0 {
		var sum float64
		for _, d := range delays {
			sum += d
		}
		timeliness = math.Max(0, 100-sum/float64(len(delays))*10)
	}

	overall := completeness*0.3 + accuracy*0.3 + consistency*0.2 + timeliness*0.2
	return types.QualityMetrics{
		Completeness:    round1(completeness),
		Accuracy:        round1(accuracy),
		Consistency:     round1(consistency),
		Timeliness:      round1(timeliness),
		OverallScore:    round1(overall),
		MissingFields:   missingFields,
		DuplicateCount:  dupes,
		AvgWordCount:    round1(avgWords),
		RecordsAssessed: len(records),
	}
}

// duplicates counts records repeating an earlier site/date/description
// prefix.
func duplicates[T Fielder](records []T) int {
	seen := map[string]bool{}
	n := 0
	for _, r := range records {
		desc := r.Field("description")
		if len(desc) > 50 {
			desc = desc[:50]
		}
		key := fmt.Sprintf("%s\x00%s\x00%s", r.Field("site"), r.Field("date"), desc)
		if seen[key] {
			n++
			continue
		}
		seen[key] = true
	}
	return n
}

// Frequency tallies values (blank counted as "Unknown"), most common first;
// ties keep first-seen order.
func Frequency(values []string) []types.FrequencyBucket {
	counts := map[string]int{}
	var order []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			v = "Unknown"
		}
		if _, ok := counts[v]; !ok {
			order = append(order, v)
		}
		counts[v]++
	}
	out := make([]types.FrequencyBucket, 0, len(order))
	for _, label := range order {
		out = append(out, types.FrequencyBucket{
			Label:      label,
			Count:      counts[label],
			Percentage: Percent(counts[label], len(values)),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
