package server

import (
	"context"
	"net/http"

	"larder/internal/handlers"
	applog "larder/internal/log"
)

func newRouter() http.Handler {
	mux := http.NewServeMux()
	applog.Debug(context.Background(), "registering http routes")

	routes := []struct {
		pattern string
		handler http.HandlerFunc
	}{
		{"GET /healthz", handlers.Health},
		{"POST /api/costs/ingredients/recalculate", handlers.RecalculateIngredients},
		{"POST /api/costs/packaging/recalculate", handlers.RecalculatePackaging},
		{"POST /api/costs/recalculate", handlers.RecalculateAll},
		{"GET /api/costs/runs", handlers.CostRuns},
		{"PUT /api/ingredients/{id}/price", handlers.UpdateIngredientPrice},
		{"PUT /api/packaging/{id}/price", handlers.UpdatePackagingPrice},
		{"GET /api/recipes/{id}", handlers.ShowRecipe},
		{"GET /api/products/{id}", handlers.ShowProduct},
	}
	for _, route := range routes {
		mux.HandleFunc(route.pattern, route.handler)
		applog.Debug(context.Background(), "route registered", "pattern", route.pattern)
	}
	return mux
}
