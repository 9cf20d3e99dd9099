package actionable

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"safety-analytics-go/internal/aggregator"
	"safety-analytics-go/internal/normalize"
	"safety-analytics-go/internal/risk"
	"safety-analytics-go/internal/trends"
	"safety-analytics-go/internal/types"
)

// Thresholds the insight rules fire on.
const (
	highRiskAreaMinIncidents = 3
	highRiskAreaAvgRisk      = 8.0
	recentShareAlert         = 0.4
	lowNearMissRatio         = 3.0
	severeRiskAlert          = 60
	highRiskTypeShare        = 0.3
)

var highRiskIncidentTypes = []string{"Falls", "Struck by", "Caught in/between", "Electrical"}

// Generate builds the predictive insight list for a snapshot, critical
// first.
func Generate(injuries []types.InjuryRecord, nearMisses []types.NearMissRecord, now time.Time) []types.PredictiveInsight {
	if now.IsZero() {
		now = time.Now()
	}
	var out []types.PredictiveInsight
	add := func(in types.PredictiveInsight) {
		in.ID = uuid.New().String()
		in.Timestamp = now
		out = append(out, in)
	}

	if areas := HighRiskAreas(injuries, nearMisses); len(areas) > 0 {
		add(types.PredictiveInsight{
			Type:        "risk-prediction",
			Severity:    types.InsightCritical,
			Title:       "High-Risk Areas Identified",
			Description: fmt.Sprintf("%d location(s) showing elevated incident rates: %s", len(areas), strings.Join(first(areas, 3), ", ")),
			Confidence:  85,
			RelatedData: areas,
			SuggestedActions: []string{
				"Conduct safety audits in identified areas",
				"Review and update risk assessments",
				"Implement additional control measures",
				"Increase supervisor presence",
			},
		})
	}

	recent, _ := trends.WindowCounts(trends.Dates(injuries), 30, now)
	if float64(recent) > float64(len(injuries))*recentShareAlert {
		add(types.PredictiveInsight{
			Type:        "trend-alert",
			Severity:    types.InsightWarning,
			Title:       "Increasing Incident Trend",
			Description: fmt.Sprintf("%.0f%% of incidents occurred in the last 30 days, indicating a concerning trend", aggregator.Percent(recent, len(injuries))),
			Confidence:  90,
			RelatedData: []string{"trend-increase"},
			SuggestedActions: []string{
				"Investigate recent operational changes",
				"Review training effectiveness",
				"Conduct safety stand-down meetings",
				"Analyze common factors in recent incidents",
			},
		})
	}

	if patterns := trends.DetectPatterns(injuries); len(patterns) > 0 {
		related := make([]string, 0, len(patterns))
		for _, p := range patterns {
			related = append(related, p.Description)
		}
		add(types.PredictiveInsight{
			Type:        "pattern-detection",
			Severity:    types.InsightWarning,
			Title:       "Recurring Incident Patterns",
			Description: fmt.Sprintf("%d pattern(s) detected in incident data suggesting systemic issues", len(patterns)),
			Confidence:  75,
			RelatedData: related,
			SuggestedActions: []string{
				"Investigate root causes of recurring patterns",
				"Update standard operating procedures",
				"Implement preventive measures",
				"Conduct targeted training",
			},
		})
	}

	if len(injuries) > 0 && nearMissRatio(nearMisses, injuries) < lowNearMissRatio {
		add(types.PredictiveInsight{
			Type:        "recommendation",
			Severity:    types.InsightInfo,
			Title:       "Low Near Miss Reporting",
			Description: "Near miss to injury ratio is below optimal levels, suggesting underreporting",
			Confidence:  70,
			RelatedData: []string{"reporting-culture"},
			SuggestedActions: []string{
				"Launch near miss awareness campaign",
				"Simplify reporting process",
				"Recognize and reward proactive reporting",
				"Communicate importance of near miss data",
			},
		})
	}

	if p := PredictSevere(injuries, now); p.Risk > severeRiskAlert {
		add(types.PredictiveInsight{
			Type:        "risk-prediction",
			Severity:    types.InsightCritical,
			Title:       "Elevated Risk of Severe Incident",
			Description: fmt.Sprintf("Analysis suggests %d%% likelihood of severe incident in next 30 days", p.Risk),
			Confidence:  p.Confidence,
			RelatedData: p.Factors,
			SuggestedActions: []string{
				"Increase safety inspections",
				"Review high-risk activities",
				"Conduct safety refresher training",
				"Implement additional monitoring",
			},
		})
	}

	rank := map[types.InsightSeverity]int{types.InsightCritical: 0, types.InsightWarning: 1, types.InsightInfo: 2}
	sort.SliceStable(out, func(i, j int) bool { return rank[out[i].Severity] < rank[out[j].Severity] })
	if out == nil {
		out = []types.PredictiveInsight{}
	}
	return out
}

// HighRiskAreas returns locations with at least three incidents across
// both sets whose mean risk score exceeds 8. Injuries carry no likelihood
// and are scored as Possible.
func HighRiskAreas(injuries []types.InjuryRecord, nearMisses []types.NearMissRecord) []string {
	type acc struct {
		n     int
		total float64
	}
	groups := map[string]*acc{}
	var order []string
	note := func(loc string, score float64) {
		loc = strings.TrimSpace(loc)
		if loc == "" {
			return
		}
		g, ok := groups[loc]
		if !ok {
			g = &acc{}
			groups[loc] = g
			order = append(order, loc)
		}
		g.n++
		g.total += score
	}
	for _, r := range injuries {
		note(r.Location, risk.Score(r.Severity, types.LikelihoodPossible))
	}
	for _, r := range nearMisses {
		note(r.Location, risk.Score(r.Severity, r.Likelihood))
	}
	out := []string{}
	for _, loc := range order {
		g := groups[loc]
		if g.n >= highRiskAreaMinIncidents && g.total/float64(g.n) > highRiskAreaAvgRisk {
			out = append(out, loc)
		}
	}
	return out
}

type SeverePrediction struct {
	Risk       int      `json:"risk"`
	Confidence int      `json:"confidence"`
	Factors    []string `json:"factors"`
}

// PredictSevere is an additive score: recent A/B injuries +30, a worsening
// six-month trend +25, a high share of high-risk incident types +20.
func PredictSevere(injuries []types.InjuryRecord, now time.Time) SeverePrediction {
	factors := []string{}
	score := 0

	start := now.AddDate(0, 0, -60)
	severe := 0
	for _, r := range injuries {
		d, ok := normalize.RecordDate(r.ParsedDate, r.IncidentDate)
		if !ok || d.Before(start) || d.After(now) {
			continue
		}
		if r.Severity == types.SeverityA || r.Severity == types.SeverityB {
			severe++
		}
	}
	if severe > 0 {
		score += 30
		factors = append(factors, fmt.Sprintf("%d severe incident(s) in last 60 days", severe))
	}

	if monthly := trends.MonthlyCounts(injuries, now, 6); len(monthly) >= 3 {
		if trends.Analyze(monthly, "incidents").Direction == types.TrendWorsening {
			score += 25
			factors = append(factors, "Worsening incident trend")
		}
	}

	highRisk := 0
	for _, r := range injuries {
		for _, typ := range highRiskIncidentTypes {
			if strings.Contains(r.IncidentType, typ) {
				highRisk++
				break
			}
		}
	}
	if float64(highRisk) > float64(len(injuries))*highRiskTypeShare {
		score += 20
		factors = append(factors, "High proportion of high-risk incident types")
	}

	return SeverePrediction{
		Risk:       min(100, score),
		Confidence: min(90, len(factors)*25+10),
		Factors:    factors,
	}
}

// Recommend derives prioritized recommendations from frequency and
// reporting ratios.
func Recommend(injuries []types.InjuryRecord, nearMisses []types.NearMissRecord) []types.SmartRecommendation {
	out := []types.SmartRecommendation{}
	add := func(r types.SmartRecommendation) {
		r.ID = uuid.New().String()
		out = append(out, r)
	}
	column := func(get func(types.InjuryRecord) string) []types.FrequencyBucket {
		vals := make([]string, 0, len(injuries))
		for _, r := range injuries {
			vals = append(vals, get(r))
		}
		return aggregator.Frequency(vals)
	}

	if loc := column(func(r types.InjuryRecord) string { return r.Location }); len(loc) > 0 && loc[0].Count >= 5 {
		add(types.SmartRecommendation{
			Category:             "Focus Area",
			Recommendation:       fmt.Sprintf("Prioritize safety improvements in %s", loc[0].Label),
			Reasoning:            fmt.Sprintf("This location accounts for %.1f%% of all incidents (%d incidents)", loc[0].Percentage, loc[0].Count),
			Priority:             1,
			Impact:               "high",
			ImplementationEffort: "medium",
		})
	}

	if bp := column(func(r types.InjuryRecord) string { return r.BodyPart }); len(bp) > 0 && bp[0].Count >= 3 {
		add(types.SmartRecommendation{
			Category:             "Training",
			Recommendation:       fmt.Sprintf("Develop targeted training for preventing %s injuries", bp[0].Label),
			Reasoning:            fmt.Sprintf("%s injuries are the most common, occurring %d times", bp[0].Label, bp[0].Count),
			Priority:             2,
			Impact:               "high",
			ImplementationEffort: "low",
		})
	}

	if pp := column(func(r types.InjuryRecord) string { return r.ProcessPath }); len(pp) > 0 && pp[0].Count >= 4 {
		add(types.SmartRecommendation{
			Category:             "Process Improvement",
			Recommendation:       fmt.Sprintf("Review and improve safety controls in %s process", pp[0].Label),
			Reasoning:            fmt.Sprintf("This process path has the highest incident rate with %d incidents", pp[0].Count),
			Priority:             1,
			Impact:               "high",
			ImplementationEffort: "high",
		})
	}

	poor := 0
	for _, r := range injuries {
		if len(strings.Fields(r.Description)) < 10 {
			poor++
		}
	}
	if float64(poor) > float64(len(injuries))*0.3 {
		add(types.SmartRecommendation{
			Category:             "Data Quality",
			Recommendation:       "Improve incident investigation documentation quality",
			Reasoning:            fmt.Sprintf("%d incidents (%.0f%%) have insufficient description detail", poor, aggregator.Percent(poor, len(injuries))),
			Priority:             3,
			Impact:               "medium",
			ImplementationEffort: "low",
		})
	}

	if ratio := nearMissRatio(nearMisses, injuries); len(injuries) > 0 && ratio < 5 {
		add(types.SmartRecommendation{
			Category:             "Safety Culture",
			Recommendation:       "Promote near miss reporting to strengthen safety culture",
			Reasoning:            fmt.Sprintf("Current near miss ratio (%.1f:1) is below industry best practice (10:1)", ratio),
			Priority:             2,
			Impact:               "high",
			ImplementationEffort: "medium",
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out
}

func nearMissRatio(nearMisses []types.NearMissRecord, injuries []types.InjuryRecord) float64 {
	if len(injuries) == 0 {
		return 0
	}
	return float64(len(nearMisses)) / float64(len(injuries))
}

func first(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
