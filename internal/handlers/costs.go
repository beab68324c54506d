package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	applog "larder/internal/log"
)

type recalculateRequest struct {
	IDs []string `json:"ids"`
}

// RecalculateIngredients propagates ingredient price changes for the posted ids.
func RecalculateIngredients(w http.ResponseWriter, r *http.Request) {
	if engine == nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}
	payload, ok := decodeRecalculateRequest(w, r)
	if !ok {
		return
	}

	result, err := engine.RecalculateIngredientChain(r.Context(), payload.IDs)
	if err != nil {
		applog.Error(r.Context(), "ingredient chain failed", "ids", payload.IDs, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to recalculate ingredient costs")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// RecalculatePackaging propagates packaging price changes for the posted ids.
func RecalculatePackaging(w http.ResponseWriter, r *http.Request) {
	if engine == nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}
	payload, ok := decodeRecalculateRequest(w, r)
	if !ok {
		return
	}

	result, err := engine.RecalculatePackagingChain(r.Context(), payload.IDs)
	if err != nil {
		applog.Error(r.Context(), "packaging chain failed", "ids", payload.IDs, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to recalculate packaging costs")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// RecalculateAll rebuilds every derived cost.
func RecalculateAll(w http.ResponseWriter, r *http.Request) {
	if engine == nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	result, err := engine.RecalculateAllCosts(r.Context())
	if err != nil {
		applog.Error(r.Context(), "full recalculation failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to recalculate costs")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// CostRuns lists recent recalculation runs, newest first.
func CostRuns(w http.ResponseWriter, r *http.Request) {
	if engine == nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeJSONError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	runs, err := engine.Runs(r.Context(), limit)
	if err != nil {
		applog.Error(r.Context(), "failed to list cost runs", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load cost runs")
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// decodeRecalculateRequest accepts an empty body as an empty id list.
func decodeRecalculateRequest(w http.ResponseWriter, r *http.Request) (recalculateRequest, bool) {
	var payload recalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		applog.Debug(r.Context(), "invalid recalculate payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return recalculateRequest{}, false
	}
	return payload, true
}
