package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"safety-analytics-go/internal/actionable"
	"safety-analytics-go/internal/aggregator"
	"safety-analytics-go/internal/report"
	"safety-analytics-go/internal/risk"
	"safety-analytics-go/internal/trends"
	"safety-analytics-go/internal/types"
)

const maxJSONBody = 1 << 20

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("trailing data")
	}
	return nil
}

func (h *Handler) baseline(r *http.Request) (float64, bool) {
	raw := r.URL.Query().Get("baseline_hours")
	if raw == "" {
		return h.BaselineHours, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

func (h *Handler) handleKPIs(w http.ResponseWriter, r *http.Request) {
	baseline, ok := h.baseline(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "baseline_hours must be a positive number")
		return
	}
	v := h.Store.View()
	h.writeJSON(w, r, http.StatusOK, aggregator.Calculate(v.Injuries, v.NearMisses, aggregator.Options{
		BaselineHours: baseline,
		Now:           h.Now(),
	}))
}

type trendsResponse struct {
	Months            int                 `json:"months"`
	InjuryMonthly     []types.MonthCount  `json:"injury_monthly"`
	NearMissMonthly   []types.MonthCount  `json:"near_miss_monthly"`
	InjuryTrend       types.TrendAnalysis `json:"injury_trend"`
	NearMissTrend     types.TrendAnalysis `json:"near_miss_trend"`
	InjuryChange30d   float64             `json:"injury_change_30d"`
	InjuryChange90d   float64             `json:"injury_change_90d"`
	NearMissChange30d float64             `json:"near_miss_change_30d"`
}

func (h *Handler) handleTrends(w http.ResponseWriter, r *http.Request) {
	months, ok := intParam(r, "months", 6, 2, 36)
	if !ok {
		writeError(w, http.StatusBadRequest, "months must be between 2 and 36")
		return
	}
	v := h.Store.View()
	now := h.Now()
	h.writeJSON(w, r, http.StatusOK, trendsResponse{
		Months:            months,
		InjuryMonthly:     trends.ByMonth(v.Injuries),
		NearMissMonthly:   trends.ByMonth(v.NearMisses),
		InjuryTrend:       trends.Analyze(trends.MonthlyCounts(v.Injuries, now, months), "injuries"),
		NearMissTrend:     trends.Analyze(trends.MonthlyCounts(v.NearMisses, now, months), "near-misses"),
		InjuryChange30d:   trends.PercentChange(v.Injuries, 30, now),
		InjuryChange90d:   trends.PercentChange(v.Injuries, 90, now),
		NearMissChange30d: trends.PercentChange(v.NearMisses, 30, now),
	})
}

func (h *Handler) handlePatterns(w http.ResponseWriter, r *http.Request) {
	threshold, ok := intParam(r, "min", trends.MinPatternOccurrences, 1, 1000)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid min")
		return
	}
	h.writeJSON(w, r, http.StatusOK, trends.DetectPatternsMin(h.Store.View().Injuries, threshold))
}

func (h *Handler) handleInsights(w http.ResponseWriter, r *http.Request) {
	v := h.Store.View()
	h.writeJSON(w, r, http.StatusOK, actionable.Generate(v.Injuries, v.NearMisses, h.Now()))
}

func (h *Handler) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	v := h.Store.View()
	h.writeJSON(w, r, http.StatusOK, actionable.Recommend(v.Injuries, v.NearMisses))
}

func (h *Handler) handleRiskMatrix(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, risk.Matrix(h.Store.View().NearMisses))
}

type qualityResponse struct {
	Injuries   types.QualityMetrics               `json:"injuries"`
	NearMisses types.QualityMetrics               `json:"near_misses"`
	Frequency  map[string][]types.FrequencyBucket `json:"frequency"`
}

func (h *Handler) handleQuality(w http.ResponseWriter, r *http.Request) {
	v := h.Store.View()
	column := func(get func(types.InjuryRecord) string) []types.FrequencyBucket {
		vals := make([]string, 0, len(v.Injuries))
		for _, rec := range v.Injuries {
			vals = append(vals, get(rec))
		}
		return aggregator.Frequency(vals)
	}
	h.writeJSON(w, r, http.StatusOK, qualityResponse{
		Injuries:   aggregator.Quality(v.Injuries, aggregator.InjuryRequiredFields),
		NearMisses: aggregator.Quality(v.NearMisses, aggregator.NearMissRequiredFields),
		Frequency: map[string][]types.FrequencyBucket{
			"body_part":     column(func(r types.InjuryRecord) string { return r.BodyPart }),
			"location":      column(func(r types.InjuryRecord) string { return r.Location }),
			"process_path":  column(func(r types.InjuryRecord) string { return r.ProcessPath }),
			"incident_type": column(func(r types.InjuryRecord) string { return r.IncidentType }),
		},
	})
}

type categorizeRequest struct {
	Description string `json:"description"`
	RootCause   string `json:"root_cause"`
}

func (h *Handler) handleCategorize(w http.ResponseWriter, r *http.Request) {
	var req categorizeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	h.writeJSON(w, r, http.StatusOK, trends.Categorize(req.Description, req.RootCause))
}

func (h *Handler) handleExcelReport(w http.ResponseWriter, r *http.Request) {
	typ, err := report.ParseType(r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	baseline, ok := h.baseline(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "baseline_hours must be a positive number")
		return
	}
	now := h.Now()
	injuries, nearMisses := report.Scope(typ, h.Store.View())
	in := report.Input{
		Type:       typ,
		Injuries:   injuries,
		NearMisses: nearMisses,
		KPIs:       aggregator.Calculate(injuries, nearMisses, aggregator.Options{BaselineHours: baseline, Now: now}),
		Insights:   actionable.Generate(injuries, nearMisses, now),
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.Filename(typ, now)+`"`)
	if err := report.WriteExcel(w, in); err != nil {
		h.log.WithRequest(r).WithError(err).Error("excel report failed")
	}
}
