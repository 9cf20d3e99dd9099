package risk

import (
	"sort"

	"safety-analytics-go/internal/types"
)

var severityWeights = map[types.Severity]int{
	types.SeverityA:       5,
	types.SeverityB:       4,
	types.SeverityC:       3,
	types.SeverityD:       2,
	types.SeverityUnknown: 1,
}

var likelihoodWeights = map[types.Likelihood]int{
	types.LikelihoodRare:          1,
	types.LikelihoodUnlikely:      2,
	types.LikelihoodPossible:      3,
	types.LikelihoodLikely:        4,
	types.LikelihoodAlmostCertain: 5,
}

// SeverityWeight is 5 for A down to 1 for Unknown or anything off-scale.
func SeverityWeight(s types.Severity) int {
	if w, ok := severityWeights[s]; ok {
		return w
	}
	return 1
}

// LikelihoodWeight is 1 for Rare up to 5 for Almost Certain; off-scale
// values weigh as Possible.
func LikelihoodWeight(l types.Likelihood) int {
	if w, ok := likelihoodWeights[l]; ok {
		return w
	}
	return 3
}

// Score scales severity × likelihood onto 0–10: 10 for A/Almost Certain,
// 0.4 for Unknown/Rare.
func Score(s types.Severity, l types.Likelihood) float64 {
	return float64(SeverityWeight(s)*LikelihoodWeight(l)) / 5 * 2
}

// Level labels a severity × likelihood product the way a 5×5 matrix is
// usually shaded.
func Level(product int) string {
	switch {
	case product >= 20:
		return "Critical"
	case product >= 10:
		return "High"
	case product >= 5:
		return "Medium"
	}
	return "Low"
}

// Matrix buckets near misses into severity × likelihood cells, ordered by
// severity then likelihood, most severe first.
func Matrix(records []types.NearMissRecord) []types.RiskMatrixCell {
	cells := map[[2]int]*types.RiskMatrixCell{}
	for _, r := range records {
		key := [2]int{SeverityWeight(r.Severity), LikelihoodWeight(r.Likelihood)}
		c, ok := cells[key]
		if !ok {
			c = &types.RiskMatrixCell{
				Severity:   key[0],
				Likelihood: key[1],
				RiskLevel:  Level(key[0] * key[1]),
			}
			cells[key] = c
		}
		c.Count++
		c.RecordIDs = append(c.RecordIDs, r.IncidentID)
	}
	out := make([]types.RiskMatrixCell, 0, len(cells))
	for _, c := range cells {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Severity != out[j].Severity {
			return out[i].Severity > out[j].Severity
		}
		return out[i].Likelihood > out[j].Likelihood
	})
	return out
}
