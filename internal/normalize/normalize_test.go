package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"safety-analytics-go/internal/types"
)

func TestSeverity(t *testing.T) {
	cases := []struct {
		in   string
		want types.Severity
	}{
		{"A", types.SeverityA},
		{" a ", types.SeverityA},
		{"critical", types.SeverityA},
		{"Critical", types.SeverityA},
		{"SEVERE injury", types.SeverityA},
		{"5", types.SeverityA},
		{"B", types.SeverityB},
		{"High", types.SeverityB},
		{"major", types.SeverityB},
		{"4", types.SeverityB},
		{"c", types.SeverityC},
		{"Medium", types.SeverityC},
		{"moderate", types.SeverityC},
		{"3", types.SeverityC},
		{"D", types.SeverityD},
		{"low", types.SeverityD},
		{"Minor", types.SeverityD},
		{"2", types.SeverityD},
		{"1", types.SeverityD},
		{"", types.SeverityUnknown},
		{"Unknown", types.SeverityUnknown},
		{"E", types.SeverityUnknown},
		{"9", types.SeverityUnknown},
		{"banana", types.SeverityUnknown},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Severity(tc.in), "input %q", tc.in)
	}
}

func TestLikelihood(t *testing.T) {
	t.Run("named levels", func(t *testing.T) {
		cases := map[string]types.Likelihood{
			"rare":           types.LikelihoodRare,
			"Unlikely":       types.LikelihoodUnlikely,
			"possible":       types.LikelihoodPossible,
			"Likely":         types.LikelihoodLikely,
			"almost certain": types.LikelihoodAlmostCertain,
			"Almost Certain": types.LikelihoodAlmostCertain,
			"almost_certain": types.LikelihoodAlmostCertain,
			"very unlikely":  types.LikelihoodUnlikely,
		}
		for in, want := range cases {
			assert.Equal(t, want, Likelihood(in), "input %q", in)
		}
	})

	t.Run("numeric scale", func(t *testing.T) {
		want := []types.Likelihood{
			types.LikelihoodRare,
			types.LikelihoodUnlikely,
			types.LikelihoodPossible,
			types.LikelihoodLikely,
			types.LikelihoodAlmostCertain,
		}
		for i, w := range want {
			assert.Equal(t, w, Likelihood(string(rune('1'+i))))
		}
		assert.Equal(t, types.LikelihoodLikely, Likelihood("4.0"))
	})

	t.Run("defaults to possible", func(t *testing.T) {
		for _, in := range []string{"", "0", "6", "often", "2.5", "uncertain", "not certain", "NaN", "Inf"} {
			assert.Equal(t, types.LikelihoodPossible, Likelihood(in), "input %q", in)
		}
	})
}

func TestNumericCells(t *testing.T) {
	floats := map[string]float64{
		"":        0,
		"3.5":     3.5,
		"1,250.5": 1250.5,
		"n/a":     0,
		"NaN":     0,
		"nan":     0,
		"Inf":     0,
		"-Inf":    0,
		"1e400":   0,
	}
	for in, want := range floats {
		assert.Equal(t, want, Float(in), "Float(%q)", in)
	}

	ints := map[string]int{
		"":      0,
		"7":     7,
		"3.0":   3,
		"4.9":   4,
		"1,200": 1200,
		"NaN":   0,
		"Inf":   0,
		"1e30":  0,
		"-1e30": 0,
		"abc":   0,
	}
	for in, want := range ints {
		assert.Equal(t, want, Int(in), "Int(%q)", in)
	}

	rec := Injury(types.Row{"days_away": "1e30"}, 0)
	assert.Zero(t, rec.DaysAway)
}

func TestResolve(t *testing.T) {
	row := types.Row{"Body Part": "Hand", "site": "  ", "Site": "DFW7", "PROCESS_PATH": "Pick"}
	assert.Equal(t, "Hand", Resolve(row, "bodyPart", "Body Part"))
	assert.Equal(t, "DFW7", Resolve(row, "site", "Site"))
	assert.Equal(t, "Pick", Resolve(row, "processPath", "process_path"))
	assert.Equal(t, "", Resolve(row, "missing"))
	assert.Equal(t, "", Resolve(nil, "site"))
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2024-03-15", "03/15/2024", "3/15/2024", "15/03/2024", "2024/03/15", "15-03-2024"} {
		got, ok := ParseDate(in)
		require.True(t, ok, "input %q", in)
		assert.True(t, want.Equal(got), "input %q got %s", in, got)
	}

	got, ok := ParseDate("45366")
	require.True(t, ok)
	assert.Equal(t, "2024-03-15", got.Format("2006-01-02"))

	for _, in := range []string{"", "not a date", "2024-13-45"} {
		_, ok := ParseDate(in)
		assert.False(t, ok, "input %q", in)
	}
}

func TestInjury(t *testing.T) {
	t.Run("maps aliases and types", func(t *testing.T) {
		rec := Injury(types.Row{
			"Case Number":   "C-77",
			"Site":          "DFW7",
			"Incident Date": "2024-01-10",
			"Severity":      "major",
			"Recordable":    "1",
			"OTR":           "Yes",
			"DAFW Days":     "5",
			"RWA Days":      "2.0",
			"Body Part":     "Back",
			"Root Cause":    "Lifting",
			"Process Path":  "Stow",
		}, 0)
		assert.Equal(t, "C-77", rec.CaseNumber)
		assert.Equal(t, "DFW7", rec.Site)
		assert.Equal(t, types.SeverityB, rec.Severity)
		assert.True(t, rec.Recordable)
		assert.True(t, rec.OnTheRoad)
		assert.Equal(t, 5, rec.DaysAway)
		assert.Equal(t, 2, rec.DaysRestricted)
		assert.Equal(t, "Back", rec.BodyPart)
		assert.Equal(t, "Lifting", rec.RootCause)
		assert.Equal(t, "Stow", rec.ProcessPath)
		assert.Equal(t, "Open", rec.Status)
		assert.Equal(t, "2024-01-10", rec.ParsedDate.Format("2006-01-02"))
	})

	t.Run("malformed row degrades to defaults", func(t *testing.T) {
		rec := Injury(types.Row{"garbage": "x"}, 4)
		assert.Equal(t, "CASE-5", rec.CaseNumber)
		assert.Equal(t, types.SeverityUnknown, rec.Severity)
		assert.False(t, rec.Recordable)
		assert.Zero(t, rec.DaysAway)
		assert.True(t, rec.ParsedDate.IsZero())
	})

	t.Run("ids are deterministic", func(t *testing.T) {
		rows := []types.Row{{}, {"case_number": "X"}, {}}
		first := Injuries(rows)
		second := Injuries(rows)
		assert.Equal(t, first, second)
		assert.Equal(t, "CASE-1", first[0].CaseNumber)
		assert.Equal(t, "X", first[1].CaseNumber)
		assert.Equal(t, "CASE-3", first[2].CaseNumber)
	})
}

func TestNearMiss(t *testing.T) {
	t.Run("back-fills missing risk", func(t *testing.T) {
		rec := NearMiss(types.Row{"severity": "B", "likelihood": "Likely"}, 0)
		assert.InDelta(t, 6.4, rec.Risk, 1e-9)
		assert.Equal(t, "NM-1", rec.IncidentID)
		assert.Equal(t, types.LikelihoodLikely, rec.Likelihood)
	})

	t.Run("zero or blank risk is recomputed", func(t *testing.T) {
		for _, raw := range []string{"0", "", "n/a"} {
			rec := NearMiss(types.Row{"severity": "A", "likelihood": "5", "risk": raw}, 0)
			assert.InDelta(t, 10.0, rec.Risk, 1e-9, "risk %q", raw)
		}
	})

	t.Run("non-finite risk is recomputed", func(t *testing.T) {
		for _, raw := range []string{"NaN", "nan", "Inf", "-Inf", "+inf"} {
			rec := NearMiss(types.Row{"severity": "B", "likelihood": "Likely", "risk": raw}, 0)
			assert.InDelta(t, 6.4, rec.Risk, 1e-9, "risk %q", raw)
		}
	})

	t.Run("explicit risk wins", func(t *testing.T) {
		rec := NearMiss(types.Row{"severity": "A", "likelihood": "5", "risk": "3.5"}, 0)
		assert.InDelta(t, 3.5, rec.Risk, 1e-9)
	})

	t.Run("potential severity takes priority", func(t *testing.T) {
		rec := NearMiss(types.Row{"potential_severity": "critical", "severity": "D"}, 2)
		assert.Equal(t, types.SeverityA, rec.Severity)
		assert.Equal(t, types.LikelihoodPossible, rec.Likelihood)
		assert.InDelta(t, 6.0, rec.Risk, 1e-9)
	})
}

func TestInspection(t *testing.T) {
	rec := Inspection(types.Row{"Site": "SEA1", "Inspection Type": "Forklift", "status": "completed", "score": "92.5", "findings": "3"}, 1)
	assert.Equal(t, "INSP-2", rec.InspectionID)
	assert.Equal(t, types.InspectionCompleted, rec.Status)
	assert.InDelta(t, 92.5, rec.Score, 1e-9)
	assert.Equal(t, 3, rec.Findings)
	assert.Equal(t, types.InspectionUpcoming, Inspection(types.Row{}, 0).Status)
}
