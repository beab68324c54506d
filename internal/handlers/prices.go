package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"larder/internal/costupdate"
	applog "larder/internal/log"
	"larder/internal/store"
)

type priceUpdateRequest struct {
	UnitCost decimal.NullDecimal `json:"unit_cost"`
}

type priceChangeFunc func(ctx context.Context, id string, unitCost decimal.Decimal) (costupdate.ChainResult, error)

// UpdateIngredientPrice stores a new ingredient price and propagates it.
func UpdateIngredientPrice(w http.ResponseWriter, r *http.Request) {
	if engine == nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}
	updatePrice(w, r, "ingredient", engine.ChangeIngredientPrice)
}

// UpdatePackagingPrice stores a new packaging price and propagates it.
func UpdatePackagingPrice(w http.ResponseWriter, r *http.Request) {
	if engine == nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}
	updatePrice(w, r, "packaging", engine.ChangePackagingPrice)
}

func updatePrice(w http.ResponseWriter, r *http.Request, label string, change priceChangeFunc) {
	ctx := r.Context()
	id := strings.TrimSpace(r.PathValue("id"))

	var payload priceUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid price payload", "kind", label, "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if !payload.UnitCost.Valid {
		writeJSONError(w, http.StatusBadRequest, "unit_cost is required")
		return
	}

	result, err := change(ctx, id, payload.UnitCost.Decimal)
	switch {
	case err == nil:
		applog.Info(ctx, "price updated", "kind", label, "id", id, "unit_cost", payload.UnitCost.Decimal.String())
		writeJSON(w, http.StatusOK, result)
	case errors.Is(err, costupdate.ErrNoIDs), errors.Is(err, costupdate.ErrNegativePrice):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, label+" not found")
	default:
		applog.Error(ctx, "price update failed", "kind", label, "id", id, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to update "+label+" price")
	}
}
