package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"safety-analytics-go/internal/actions"
	"safety-analytics-go/internal/prefs"
	"safety-analytics-go/internal/types"
)

func (h *Handler) handleListActions(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, h.Store.Actions.List())
}

func (h *Handler) handleCreateAction(w http.ResponseWriter, r *http.Request) {
	var req actions.NewAction
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	item, err := h.Store.Actions.Create(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeJSON(w, r, http.StatusCreated, item)
}

type statusRequest struct {
	Status types.ActionStatus `json:"status"`
}

func (h *Handler) handleUpdateAction(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	item, err := h.Store.Actions.UpdateStatus(chi.URLParam(r, "id"), req.Status)
	switch {
	case errors.Is(err, actions.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, actions.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		h.writeJSON(w, r, http.StatusOK, item)
	}
}

func (h *Handler) handleActionStats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, h.Store.Actions.Stats())
}

func (h *Handler) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	if h.Prefs == nil {
		h.writeJSON(w, r, http.StatusOK, prefs.Defaults())
		return
	}
	p, err := h.Prefs.Get(r.Context())
	if err != nil {
		h.log.WithRequest(r).WithError(err).Error("load preferences failed")
		writeError(w, http.StatusInternalServerError, "could not load preferences")
		return
	}
	h.writeJSON(w, r, http.StatusOK, p)
}

func (h *Handler) handlePutPreferences(w http.ResponseWriter, r *http.Request) {
	if h.Prefs == nil {
		writeError(w, http.StatusServiceUnavailable, "preferences store not configured")
		return
	}
	var body map[string]any
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	values := make(map[string]string, len(body))
	for k, v := range body {
		values[k] = fmt.Sprint(v)
	}
	if err := h.Prefs.Update(r.Context(), values); err != nil {
		if errors.Is(err, prefs.ErrUnknownKey) || errors.Is(err, prefs.ErrInvalidValue) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.WithRequest(r).WithError(err).Error("save preferences failed")
		writeError(w, http.StatusInternalServerError, "could not save preferences")
		return
	}
	h.handleGetPreferences(w, r)
}
