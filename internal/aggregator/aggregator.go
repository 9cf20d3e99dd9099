package aggregator

import (
	"math"
	"time"

	"github.com/samber/lo"
	"safety-analytics-go/internal/risk"
	"safety-analytics-go/internal/trends"
	"safety-analytics-go/internal/types"
)

// StandardHours is the OSHA rate denominator: 100 full-time workers for a
// year.
const StandardHours = 200000.0

type Options struct {
	// BaselineHours is the hours worked the counts were observed over.
	// Zero means StandardHours.
	BaselineHours float64
	// Now anchors the trend windows; zero means time.Now().
	Now time.Time
}

// Calculate computes the KPI block for one snapshot. Every ratio with an
// empty denominator is 0.
func Calculate(injuries []types.InjuryRecord, nearMisses []types.NearMissRecord, opts Options) types.SafetyKPIs {
	baseline := opts.BaselineHours
	if baseline == 0 {
		baseline = StandardHours
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	recordable := lo.CountBy(injuries, func(r types.InjuryRecord) bool { return r.Recordable })
	lostTime := lo.CountBy(injuries, func(r types.InjuryRecord) bool { return r.DaysAway > 0 })
	daysAway := lo.SumBy(injuries, func(r types.InjuryRecord) int { return max(r.DaysAway, 0) })
	critical := lo.CountBy(injuries, func(r types.InjuryRecord) bool { return isCritical(r.Severity) }) +
		lo.CountBy(nearMisses, func(r types.NearMissRecord) bool { return isCritical(r.Severity) })

	k := types.SafetyKPIs{
		TRIR:               Rate(recordable, baseline),
		LTIR:               Rate(lostTime, baseline),
		DAFWR:              Rate(daysAway, baseline),
		NMFR:               Rate(len(nearMisses), baseline),
		RecordableRate:     Percent(recordable, len(injuries)),
		TotalInjuries:      len(injuries),
		RecordableInjuries: recordable,
		LostTimeCases:      lostTime,
		TotalDaysAway:      daysAway,
		NearMisses:         len(nearMisses),
		CriticalEvents:     critical,
		AvgRiskScore:       averageRisk(nearMisses),
		SeverityScore:      averageSeverity(injuries),
		LeadIndicatorScore: leadIndicator(len(nearMisses), len(injuries)),
		LagIndicatorScore:  lagIndicator(injuries),
		Trend30Days:        trends.PercentChange(injuries, 30, now),
		Trend60Days:        trends.PercentChange(injuries, 60, now),
		Trend90Days:        trends.PercentChange(injuries, 90, now),
		BaselineHours:      baseline,
	}
	k.SafetyIndex = SafetyIndex(k.TRIR, k.LTIR, k.NMFR)
	return k
}

// Rate normalizes a count to events per StandardHours worked.
func Rate(count int, baselineHours float64) float64 {
	if baselineHours <= 0 {
		return 0
	}
	return float64(count) / baselineHours * StandardHours
}

// Percent is part/total*100, 0 for an empty total.
func Percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// SafetyIndex is a 0–100 composite, higher is better. Near-miss reporting
// counts in its favour.
func SafetyIndex(trir, ltir, nmfr float64) float64 {
	trirScore := math.Max(0, 100-trir*10)
	ltirScore := math.Max(0, 100-ltir*15)
	nmfrScore := math.Min(100, nmfr*2)
	return trirScore*0.4 + ltirScore*0.4 + nmfrScore*0.2
}

func isCritical(s types.Severity) bool {
	return s == types.SeverityA || s == types.SeverityB
}

func averageRisk(nearMisses []types.NearMissRecord) float64 {
	if len(nearMisses) == 0 {
		return 0
	}
	return lo.SumBy(nearMisses, func(r types.NearMissRecord) float64 { return r.Risk }) / float64(len(nearMisses))
}

func averageSeverity(injuries []types.InjuryRecord) float64 {
	if len(injuries) == 0 {
		return 0
	}
	total := lo.SumBy(injuries, func(r types.InjuryRecord) int { return risk.SeverityWeight(r.Severity) })
	return float64(total) / float64(len(injuries))
}

// leadIndicator bands the near-miss:injury ratio; 10:1 or better is ideal.
func leadIndicator(nearMisses, injuries int) float64 {
	if injuries == 0 {
		return 100
	}
	ratio := float64(nearMisses) / float64(injuries)
	switch {
	case ratio >= 10:
		return 100
	case ratio >= 5:
		return 80
	case ratio >= 3:
		return 60
	case ratio >= 1:
		return 40
	}
	return 20
}

// lagIndicator is the share of injuries at the lowest severity.
func lagIndicator(injuries []types.InjuryRecord) float64 {
	if len(injuries) == 0 {
		return 100
	}
	minor := lo.CountBy(injuries, func(r types.InjuryRecord) bool { return r.Severity == types.SeverityD })
	return math.Min(100, Percent(minor, len(injuries)))
}
