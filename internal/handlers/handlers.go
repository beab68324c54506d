package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"larder/internal/costupdate"
	applog "larder/internal/log"
	"larder/models"
)

// CostEngine is the part of the recalculation service the HTTP layer drives.
type CostEngine interface {
	RecalculateIngredientChain(ctx context.Context, ingredientIDs []string) (costupdate.ChainResult, error)
	RecalculatePackagingChain(ctx context.Context, packagingIDs []string) (costupdate.ChainResult, error)
	RecalculateAllCosts(ctx context.Context) (costupdate.BulkResult, error)
	ChangeIngredientPrice(ctx context.Context, ingredientID string, unitCost decimal.Decimal) (costupdate.ChainResult, error)
	ChangePackagingPrice(ctx context.Context, packagingID string, unitCost decimal.Decimal) (costupdate.ChainResult, error)
	Runs(ctx context.Context, limit int) ([]models.CostRun, error)
}

// Catalog loads recipes and products with their current costs.
type Catalog interface {
	Recipe(ctx context.Context, id string) (*models.Recipe, error)
	Product(ctx context.Context, id string) (*models.Product, error)
}

var (
	engine  CostEngine
	catalog Catalog
)

// Configure installs the shared dependencies used by the HTTP handlers.
func Configure(e CostEngine, c Catalog) {
	engine = e
	catalog = c
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		applog.Error(context.Background(), "failed to encode json response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
