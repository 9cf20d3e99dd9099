// Package httpapi exposes the store, importer and analytics over JSON.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"safety-analytics-go/internal/logger"
	"safety-analytics-go/internal/pipeline"
	"safety-analytics-go/internal/prefs"
	"safety-analytics-go/internal/processor"
	"safety-analytics-go/internal/state"
)

// Preferences is the subset of prefs.Store the handlers use.
type Preferences interface {
	Get(ctx context.Context) (prefs.Preferences, error)
	Update(ctx context.Context, values map[string]string) error
}

// Deps are the collaborators built in the composition root. Feeds may be
// nil when no feeds are configured; Log defaults to logger.New().
type Deps struct {
	Store          *state.Store
	Importer       *processor.Importer
	Prefs          Preferences
	Feeds          *pipeline.Scheduler
	BaselineHours  float64
	MaxUploadBytes int64
	Now            func() time.Time
	Log            *logger.Logger
}

type Handler struct {
	Deps
	log *logger.Logger
}

func NewRouter(d Deps) http.Handler {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Log == nil {
		d.Log = logger.New()
	}
	h := &Handler{Deps: d, log: d.Log.WithComponent("httpapi")}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(h.requestLog)

	r.Get("/healthz", h.handleHealth)

	r.Route("/api", func(api chi.Router) {
		api.Get("/kpis", h.handleKPIs)
		api.Get("/trends", h.handleTrends)
		api.Get("/patterns", h.handlePatterns)
		api.Get("/insights", h.handleInsights)
		api.Get("/recommendations", h.handleRecommendations)
		api.Get("/risk-matrix", h.handleRiskMatrix)
		api.Get("/quality", h.handleQuality)
		api.Post("/categorize", h.handleCategorize)

		api.Get("/actions", h.handleListActions)
		api.Post("/actions", h.handleCreateAction)
		api.Get("/actions/stats", h.handleActionStats)
		api.Patch("/actions/{id}", h.handleUpdateAction)

		api.Get("/preferences", h.handleGetPreferences)
		api.Put("/preferences", h.handlePutPreferences)

		api.Get("/reports/excel", h.handleExcelReport)
		api.Get("/export/{kind}.csv", h.handleExportCSV)
		api.Get("/feeds", h.handleFeeds)
		api.Delete("/data", h.handleClear)

		api.Route("/{kind}", func(k chi.Router) {
			k.Use(requireKind)
			k.Get("/", h.handleList)
			k.Post("/upload", h.handleUpload)
			k.Post("/import", h.handleImport)
			k.Put("/filters", h.handlePutFilters)
			k.Delete("/filters", h.handleResetFilters)
		})
	})

	return r
}

// requestLog tags the request with an id, echoes it, and logs completion.
func (h *Handler) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := logger.RequestID(r)
		r.Header.Set(logger.RequestIDHeader, id)
		w.Header().Set(logger.RequestIDHeader, id)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		entry := h.log.WithRequest(r).
			WithField("status", status).
			WithField("duration_ms", time.Since(start).Milliseconds())
		if status >= http.StatusInternalServerError {
			entry.Warn("request failed")
			return
		}
		entry.Info("request handled")
	})
}

// writeJSON encodes v before committing the status so an unencodable
// payload becomes a logged 500 instead of an empty 200.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		h.log.WithRequest(r).WithError(err).Error("failed to encode response")
		writeError(w, http.StatusInternalServerError, "could not encode response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.log.WithRequest(r).WithError(err).Warn("failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func intParam(r *http.Request, name string, def, lo, hi int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < lo || n > hi {
		return 0, false
	}
	return n, true
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, map[string]any{
		"status":      "ok",
		"collections": h.Store.Status(),
	})
}

func (h *Handler) handleFeeds(w http.ResponseWriter, r *http.Request) {
	if h.Feeds == nil {
		h.writeJSON(w, r, http.StatusOK, []pipeline.FeedStatus{})
		return
	}
	h.writeJSON(w, r, http.StatusOK, h.Feeds.Status())
}
