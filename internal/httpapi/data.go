package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"safety-analytics-go/internal/filter"
	"safety-analytics-go/internal/prefs"
	"safety-analytics-go/internal/report"
	"safety-analytics-go/internal/state"
	"safety-analytics-go/internal/types"
)

func kindParam(r *http.Request) types.RecordKind {
	return types.RecordKind(chi.URLParam(r, "kind"))
}

func requireKind(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !state.ValidKind(kindParam(r)) {
			writeError(w, http.StatusNotFound, "unknown record kind")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	kind := kindParam(r)
	if h.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload exceeds size limit")
			return
		}
		writeError(w, http.StatusBadRequest, "multipart field \"file\" is required")
		return
	}
	defer file.Close()

	res, err := h.Importer.ImportReader(kind, header.Filename, file)
	if err != nil {
		h.writeJSON(w, r, http.StatusBadRequest, res)
		return
	}
	h.writeJSON(w, r, http.StatusOK, res)
}

func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	url := strings.TrimSpace(r.URL.Query().Get("url"))
	if url == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}
	res, err := h.Importer.ImportURL(r.Context(), kindParam(r), url)
	if err != nil {
		h.writeJSON(w, r, http.StatusBadGateway, res)
		return
	}
	h.writeJSON(w, r, http.StatusOK, res)
}

type page[T any] struct {
	Items      []T               `json:"items"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	Total      int               `json:"total"`
	TotalPages int               `json:"total_pages"`
	Filters    types.FilterState `json:"filters"`
}

func paginate[T any](items []T, p, size int, f types.FilterState) page[T] {
	total := len(items)
	pages := (total + size - 1) / size
	start := min((p-1)*size, total)
	end := min(start+size, total)
	return page[T]{
		Items:      items[start:end],
		Page:       p,
		PageSize:   size,
		Total:      total,
		TotalPages: pages,
		Filters:    f,
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	kind := kindParam(r)
	p, ok := intParam(r, "page", 1, 1, 1<<20)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid page")
		return
	}
	size := prefs.Defaults().ItemsPerPage
	if h.Prefs != nil {
		if pr, err := h.Prefs.Get(r.Context()); err == nil && pr.ItemsPerPage > 0 {
			size = pr.ItemsPerPage
		} else if err != nil {
			h.log.WithError(err).Warn("load preferences failed")
		}
	}
	if size, ok = intParam(r, "page_size", size, 1, prefs.MaxItemsPerPage); !ok {
		writeError(w, http.StatusBadRequest, "invalid page_size")
		return
	}

	// ad-hoc query filters narrow the stored filter for this request only
	f := h.Store.Filters(kind).Merge(queryFilters(r))
	all := h.Store.All()
	switch kind {
	case types.KindInjury:
		h.writeJSON(w, r, http.StatusOK, paginate(filter.Apply(all.Injuries, f), p, size, f))
	case types.KindNearMiss:
		h.writeJSON(w, r, http.StatusOK, paginate(filter.Apply(all.NearMisses, f), p, size, f))
	case types.KindInspection:
		h.writeJSON(w, r, http.StatusOK, paginate(filter.Apply(all.Inspections, f), p, size, f))
	}
}

func queryFilters(r *http.Request) types.FilterState {
	q := r.URL.Query()
	return types.FilterState{
		Site:        q.Get("site"),
		Severity:    q.Get("severity"),
		DateFrom:    q.Get("date_from"),
		DateTo:      q.Get("date_to"),
		BodyPart:    q.Get("body_part"),
		ProcessPath: q.Get("process_path"),
		Search:      q.Get("search"),
	}
}

func (h *Handler) handlePutFilters(w http.ResponseWriter, r *http.Request) {
	var f types.FilterState
	if err := decodeJSON(r, &f); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	h.writeJSON(w, r, http.StatusOK, h.Store.MergeFilters(kindParam(r), f))
}

func (h *Handler) handleResetFilters(w http.ResponseWriter, r *http.Request) {
	h.Store.ResetFilters(kindParam(r))
	h.writeJSON(w, r, http.StatusOK, types.FilterState{})
}

func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	h.Store.Clear()
	h.log.WithRequest(r).Info("all data cleared")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	kind := kindParam(r)
	if !state.ValidKind(kind) {
		writeError(w, http.StatusNotFound, "unknown record kind")
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+string(kind)+`.csv"`)
	if err := report.WriteCSV(w, kind, h.Store.View()); err != nil {
		h.log.WithRequest(r).WithError(err).Error("csv export failed")
	}
}
