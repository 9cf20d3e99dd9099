package trends

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"safety-analytics-go/internal/types"
)

func injuryOn(date string) types.InjuryRecord {
	return types.InjuryRecord{IncidentDate: date}
}

func TestAnalyze(t *testing.T) {
	t.Run("falling counts are improving", func(t *testing.T) {
		got := Analyze([]float64{10, 8, 6, 4, 2}, "injuries")
		assert.Equal(t, types.TrendImproving, got.Direction)
		assert.InDelta(t, -100.0, got.ChangePercent, 1e-9)
		assert.InDelta(t, 0.0, got.Prediction, 1e-9)
		assert.InDelta(t, 100.0, got.Confidence, 1e-9)
		assert.Contains(t, got.Factors, "Positive safety trend")
		assert.Contains(t, got.Factors, "High variability in data")
		assert.NotContains(t, got.Factors, "Trend reversal detected")
	})

	t.Run("rising counts are worsening", func(t *testing.T) {
		got := Analyze([]float64{2, 4, 6}, "injuries")
		assert.Equal(t, types.TrendWorsening, got.Direction)
		assert.InDelta(t, 8.0, got.Prediction, 1e-9)
		assert.InDelta(t, 100.0, got.ChangePercent, 1e-9)
		assert.Contains(t, got.Factors, "Review control measures")
	})

	t.Run("small moves are stable", func(t *testing.T) {
		got := Analyze([]float64{100, 101, 100, 101}, "injuries")
		assert.Equal(t, types.TrendStable, got.Direction)
		assert.Contains(t, got.Factors, "Trend reversal detected")
	})

	t.Run("flat series", func(t *testing.T) {
		got := Analyze([]float64{5, 5, 5, 5}, "injuries")
		assert.Equal(t, types.TrendStable, got.Direction)
		assert.Zero(t, got.Confidence)
		assert.InDelta(t, 5.0, got.Prediction, 1e-9)
	})

	t.Run("too short", func(t *testing.T) {
		assert.Equal(t, types.TrendStable, Analyze(nil, "x").Direction)
		assert.InDelta(t, 7.0, Analyze([]float64{7}, "x").Prediction, 1e-9)
	})
}

func TestPercentChange(t *testing.T) {
	now := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

	t.Run("current versus previous window", func(t *testing.T) {
		records := []types.InjuryRecord{
			injuryOn("2024-05-10"), injuryOn("2024-05-20"),
			injuryOn("2024-06-01"), injuryOn("2024-06-15"), injuryOn("2024-06-29"),
			injuryOn("garbled"),
		}
		assert.InDelta(t, 50.0, PercentChange(records, 30, now), 1e-9)
	})

	t.Run("empty previous window is zero", func(t *testing.T) {
		records := []types.InjuryRecord{injuryOn("2024-06-15"), injuryOn("2024-06-16")}
		assert.Zero(t, PercentChange(records, 30, now))
	})

	t.Run("change helper", func(t *testing.T) {
		assert.Zero(t, Change(0, 12))
		assert.InDelta(t, -50.0, Change(4, 2), 1e-9)
	})
}

func TestMonthlyCounts(t *testing.T) {
	now := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	records := []types.InjuryRecord{
		injuryOn("2024-03-31"),
		injuryOn("2024-04-05"),
		injuryOn("2024-05-01"),
		injuryOn("2024-05-31"),
		injuryOn("2024-06-30"),
		injuryOn(""),
	}
	assert.Equal(t, []float64{1, 2, 1}, MonthlyCounts(records, now, 3))

	t.Run("month-end anchor keeps calendar months", func(t *testing.T) {
		now := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
		records := []types.InjuryRecord{
			injuryOn("2024-01-31"),
			injuryOn("2024-02-29"),
			injuryOn("2024-03-01"),
			injuryOn("2024-03-31"),
		}
		assert.Equal(t, []float64{1, 2}, MonthlyCounts(records, now, 2))
	})

	t.Run("dates after now are skipped", func(t *testing.T) {
		now := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
		records := []types.InjuryRecord{injuryOn("2024-03-10"), injuryOn("2024-03-20"), injuryOn("2024-04-02")}
		assert.Equal(t, []float64{0, 1}, MonthlyCounts(records, now, 2))
	})

	assert.Empty(t, MonthlyCounts(records, now, 0))
}

func TestByMonth(t *testing.T) {
	records := []types.InjuryRecord{injuryOn("2024-02-03"), injuryOn("2024-01-09"), injuryOn("2024-02-28"), injuryOn("?")}
	got := ByMonth(records)
	require.Len(t, got, 2)
	assert.Equal(t, types.MonthCount{Month: "2024-01", Label: "Jan 2024", Count: 1}, got[0])
	assert.Equal(t, types.MonthCount{Month: "2024-02", Label: "Feb 2024", Count: 2}, got[1])
}

func TestDetectPatterns(t *testing.T) {
	hand := types.InjuryRecord{BodyPart: "Hand", ProcessPath: "Pick"}

	t.Run("three shared records flag one pattern", func(t *testing.T) {
		got := DetectPatterns([]types.InjuryRecord{hand, hand, hand, {BodyPart: "Back", ProcessPath: "Stow"}})
		require.Len(t, got, 1)
		assert.Equal(t, 3, got[0].Count)
		assert.Equal(t, [2]string{"Hand", "Pick"}, got[0].Keys)
		assert.Equal(t, "Hand injuries in Pick (3 occurrences)", got[0].Description)
	})

	t.Run("two shared records flag nothing", func(t *testing.T) {
		assert.Empty(t, DetectPatterns([]types.InjuryRecord{hand, hand}))
	})

	t.Run("site and incident type", func(t *testing.T) {
		r := types.InjuryRecord{Site: "DFW7", IncidentType: "Struck by"}
		got := DetectPatterns([]types.InjuryRecord{r, r, r, r})
		require.Len(t, got, 1)
		assert.Equal(t, "Struck by at DFW7 (4 occurrences)", got[0].Description)
	})

	t.Run("threshold is tunable", func(t *testing.T) {
		assert.Len(t, DetectPatternsMin([]types.InjuryRecord{hand, hand}, 2), 1)
	})
}

func TestCategorize(t *testing.T) {
	cases := []struct {
		desc, cause string
		want        string
		confidence  int
	}{
		{"Worker slipped on wet floor", "", "Slip/Trip/Fall", 95},
		{"Back strain", "improper lift", "Ergonomic", 95},
		{"cut while lifting", "", "Ergonomic", 40},
		{"nothing here", "", "Other", 10},
		{"Minor shock from panel", "", "Electrical", 40},
	}
	for _, tc := range cases {
		got := Categorize(tc.desc, tc.cause)
		assert.Equal(t, tc.want, got.SuggestedCategory, tc.desc)
		assert.Equal(t, tc.confidence, got.Confidence, tc.desc)
	}
}
