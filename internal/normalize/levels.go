package normalize

import (
	"strconv"
	"strings"

	"safety-analytics-go/internal/types"
)

// severityKeywords is checked in order; the first keyword contained in the
// input decides.
var severityKeywords = []struct {
	word  string
	level types.Severity
}{
	{"critical", types.SeverityA},
	{"severe", types.SeverityA},
	{"high", types.SeverityB},
	{"major", types.SeverityB},
	{"medium", types.SeverityC},
	{"moderate", types.SeverityC},
	{"low", types.SeverityD},
	{"minor", types.SeverityD},
}

// Severity maps any source representation onto the closed A–D/Unknown
// scale. A bare letter wins over keyword matching, keywords win over the
// numeric 1–5 scale.
func Severity(raw string) types.Severity {
	v := strings.TrimSpace(raw)
	switch strings.ToUpper(v) {
	case "A":
		return types.SeverityA
	case "B":
		return types.SeverityB
	case "C":
		return types.SeverityC
	case "D":
		return types.SeverityD
	}
	lower := strings.ToLower(v)
	for _, k := range severityKeywords {
		if strings.Contains(lower, k.word) {
			return k.level
		}
	}
	if n, ok := scale(v); ok {
		switch n {
		case 5:
			return types.SeverityA
		case 4:
			return types.SeverityB
		case 3:
			return types.SeverityC
		case 1, 2:
			return types.SeverityD
		}
	}
	return types.SeverityUnknown
}

// likelihoodKeywords puts the longer phrases ahead of the substrings they
// contain: "almost certain" before "likely", "unlikely" before "likely".
var likelihoodKeywords = []struct {
	word  string
	level types.Likelihood
}{
	{"almost certain", types.LikelihoodAlmostCertain},
	{"almost_certain", types.LikelihoodAlmostCertain},
	{"almostcertain", types.LikelihoodAlmostCertain},
	{"unlikely", types.LikelihoodUnlikely},
	{"likely", types.LikelihoodLikely},
	{"possible", types.LikelihoodPossible},
	{"rare", types.LikelihoodRare},
}

var likelihoodScale = map[int]types.Likelihood{
	1: types.LikelihoodRare,
	2: types.LikelihoodUnlikely,
	3: types.LikelihoodPossible,
	4: types.LikelihoodLikely,
	5: types.LikelihoodAlmostCertain,
}

// Likelihood maps a rating onto the five named levels, Possible when the
// input is blank or unrecognised.
func Likelihood(raw string) types.Likelihood {
	v := strings.TrimSpace(raw)
	lower := strings.ToLower(v)
	for _, k := range likelihoodKeywords {
		if strings.Contains(lower, k.word) {
			return k.level
		}
	}
	if n, ok := scale(v); ok {
		if l, ok := likelihoodScale[n]; ok {
			return l
		}
	}
	return types.LikelihoodPossible
}

// scale reads integral 1–5 ratings, tolerating "4.0".
func scale(v string) (int, bool) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != float64(int(f)) {
		return 0, false
	}
	n := int(f)
	if n < 1 || n > 5 {
		return 0, false
	}
	return n, true
}
