package trends

import (
	"fmt"
	"strings"

	"safety-analytics-go/internal/types"
)

// MinPatternOccurrences is how many records must share a key before the
// group is reported as recurring.
var MinPatternOccurrences = 3

// DetectPatterns flags recurring (body part, process path) and
// (site, incident type) combinations. Groups are reported in the order
// their first record appears; groups with a blank key part are skipped.
func DetectPatterns(injuries []types.InjuryRecord) []types.Pattern {
	return DetectPatternsMin(injuries, MinPatternOccurrences)
}

func DetectPatternsMin(injuries []types.InjuryRecord, threshold int) []types.Pattern {
	out := []types.Pattern{}
	for _, g := range groupPairs(injuries, func(r types.InjuryRecord) [2]string {
		return [2]string{r.BodyPart, r.ProcessPath}
	}) {
		if g.count >= threshold {
			out = append(out, types.Pattern{
				Kind:        "body_part_process_path",
				Keys:        g.keys,
				Count:       g.count,
				Description: fmt.Sprintf("%s injuries in %s (%d occurrences)", g.keys[0], g.keys[1], g.count),
			})
		}
	}
	for _, g := range groupPairs(injuries, func(r types.InjuryRecord) [2]string {
		return [2]string{r.Site, r.IncidentType}
	}) {
		if g.count >= threshold {
			out = append(out, types.Pattern{
				Kind:        "site_incident_type",
				Keys:        g.keys,
				Count:       g.count,
				Description: fmt.Sprintf("%s at %s (%d occurrences)", g.keys[1], g.keys[0], g.count),
			})
		}
	}
	return out
}

type pairGroup struct {
	keys  [2]string
	count int
}

func groupPairs(injuries []types.InjuryRecord, key func(types.InjuryRecord) [2]string) []*pairGroup {
	index := map[[2]string]*pairGroup{}
	var order []*pairGroup
	for _, r := range injuries {
		k := key(r)
		k[0], k[1] = strings.TrimSpace(k[0]), strings.TrimSpace(k[1])
		if k[0] == "" || k[1] == "" {
			continue
		}
		g, ok := index[k]
		if !ok {
			g = &pairGroup{keys: k}
			index[k] = g
			order = append(order, g)
		}
		g.count++
	}
	return order
}

type category struct {
	name     string
	keywords []string
}

// categories is ordered; on equal hit counts the earlier entry wins.
var categories = []category{
	{"Slip/Trip/Fall", []string{"slip", "trip", "fall", "floor", "wet", "stairs", "ladder"}},
	{"Ergonomic", []string{"lift", "strain", "back", "ergonomic", "repetitive", "posture"}},
	{"Struck By", []string{"struck", "hit", "impact", "falling object", "collision"}},
	{"Caught In/Between", []string{"caught", "pinch", "crush", "trapped", "between"}},
	{"Cut/Laceration", []string{"cut", "laceration", "sharp", "knife", "blade"}},
	{"Chemical", []string{"chemical", "spill", "exposure", "burn", "corrosive"}},
	{"Electrical", []string{"electrical", "shock", "electric", "power", "voltage"}},
}

// Categorize suggests an incident category from free text by keyword hits.
// Confidence is min(95, hits*30+10).
func Categorize(description, rootCause string) types.Categorization {
	text := strings.ToLower(description + " " + rootCause)
	best := types.Categorization{SuggestedCategory: "Other", Keywords: []string{}}
	bestHits := 0
	for _, c := range categories {
		var matched []string
		for _, kw := range c.keywords {
			if strings.Contains(text, kw) {
				matched = append(matched, kw)
			}
		}
		if len(matched) > bestHits {
			bestHits = len(matched)
			best = types.Categorization{SuggestedCategory: c.name, Keywords: matched}
		}
	}
	best.Confidence = min(95, bestHits*30+10)
	return best
}
