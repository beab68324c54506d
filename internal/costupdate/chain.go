package costupdate

import (
	"context"
	"fmt"

	"larder/internal/costgraph"
	applog "larder/internal/log"
	"larder/internal/store"
	"larder/models"
)

// ChainResult summarises a targeted recalculation.
type ChainResult struct {
	AffectedRecipes  int      `json:"affected_recipes"`
	AffectedProducts int      `json:"affected_products"`
	RecipeIDs        []string `json:"recipe_ids"`
	ProductIDs       []string `json:"product_ids"`
}

// BulkResult summarises a full recalculation. Errors holds per-entity
// failures from the aggregate phase; they do not abort the run.
type BulkResult struct {
	UpdatedRecipes  int      `json:"updated_recipes"`
	UpdatedProducts int      `json:"updated_products"`
	Errors          []string `json:"errors"`
}

func emptyChainResult() ChainResult {
	return ChainResult{RecipeIDs: []string{}, ProductIDs: []string{}}
}

// RecalculateIngredientChain propagates ingredient price changes: it refreshes
// the usages of ingredientIDs, recomputes every recipe using them (which
// cascades into the products built from those recipes) and reports what was
// touched. The whole chain commits or rolls back as one unit.
func (s *Service) RecalculateIngredientChain(ctx context.Context, ingredientIDs []string) (ChainResult, error) {
	ids := normalizeIDs(ingredientIDs)
	return s.runChain(ctx, models.RunIngredientChain, ids, func(tx store.Store) (ChainResult, error) {
		return ingredientChain(ctx, tx, ids)
	})
}

// RecalculatePackagingChain propagates packaging price changes into the
// products that use the packaging.
func (s *Service) RecalculatePackagingChain(ctx context.Context, packagingIDs []string) (ChainResult, error) {
	ids := normalizeIDs(packagingIDs)
	return s.runChain(ctx, models.RunPackagingChain, ids, func(tx store.Store) (ChainResult, error) {
		return packagingChain(ctx, tx, ids)
	})
}

func (s *Service) runChain(ctx context.Context, kind string, ids []string, chain func(tx store.Store) (ChainResult, error)) (ChainResult, error) {
	run := s.beginRun(kind, ids)

	var result ChainResult
	err := s.atomically(ctx, func(tx store.Store) error {
		var err error
		result, err = chain(tx)
		return err
	})

	if err != nil {
		s.finishRun(ctx, run, models.RunFailed, nil, nil, []string{err.Error()})
		return ChainResult{}, err
	}
	s.finishRun(ctx, run, models.RunSucceeded, result.RecipeIDs, result.ProductIDs, nil)

	applog.Info(ctx, "cost chain recalculated",
		"kind", kind,
		"triggers", len(ids),
		"affected_recipes", result.AffectedRecipes,
		"affected_products", result.AffectedProducts,
	)
	return result, nil
}

func ingredientChain(ctx context.Context, st store.Store, ids []string) (ChainResult, error) {
	if len(ids) == 0 {
		return emptyChainResult(), nil
	}

	applog.Debug(ctx, "ingredient chain: updating usages", "ingredients", len(ids))
	if _, err := updateIngredientCosts(ctx, st, ids); err != nil {
		return ChainResult{}, fmt.Errorf("update ingredient usages: %w", err)
	}

	graph, err := loadGraph(ctx, st)
	if err != nil {
		return ChainResult{}, err
	}
	start := costgraph.Nodes(costgraph.Ingredient, ids)
	recipeIDs := costgraph.IDs(graph.Affected(start, costgraph.Recipe), costgraph.Recipe)

	applog.Debug(ctx, "ingredient chain: recalculating recipes", "recipes", len(recipeIDs))
	for _, recipeID := range recipeIDs {
		if _, err := recalculateRecipe(ctx, st, recipeID); err != nil {
			return ChainResult{}, fmt.Errorf("recalculate recipe %s: %w", recipeID, err)
		}
	}

	productIDs := costgraph.IDs(graph.Affected(costgraph.Nodes(costgraph.Recipe, recipeIDs), costgraph.Product), costgraph.Product)

	return ChainResult{
		AffectedRecipes:  len(recipeIDs),
		AffectedProducts: len(productIDs),
		RecipeIDs:        recipeIDs,
		ProductIDs:       productIDs,
	}, nil
}

func packagingChain(ctx context.Context, st store.Store, ids []string) (ChainResult, error) {
	if len(ids) == 0 {
		return emptyChainResult(), nil
	}

	applog.Debug(ctx, "packaging chain: updating usages", "packaging", len(ids))
	if _, err := refreshUsages(ctx, st, store.PackagingItem, store.UsageFilter{SourceIDs: ids}); err != nil {
		return ChainResult{}, fmt.Errorf("update packaging usages: %w", err)
	}

	graph, err := loadGraph(ctx, st)
	if err != nil {
		return ChainResult{}, err
	}
	start := costgraph.Nodes(costgraph.Packaging, ids)
	productIDs := costgraph.IDs(graph.Affected(start, costgraph.Product), costgraph.Product)

	applog.Debug(ctx, "packaging chain: recalculating products", "products", len(productIDs))
	for _, productID := range productIDs {
		if _, err := productCost(ctx, st, productID); err != nil {
			return ChainResult{}, fmt.Errorf("recalculate product %s: %w", productID, err)
		}
	}

	return ChainResult{
		AffectedRecipes:  0,
		AffectedProducts: len(productIDs),
		RecipeIDs:        []string{},
		ProductIDs:       productIDs,
	}, nil
}

var linkKinds = map[store.UsageKind][2]costgraph.Kind{
	store.BaseIngredient:    {costgraph.Ingredient, costgraph.Recipe},
	store.PortionIngredient: {costgraph.Ingredient, costgraph.Recipe},
	store.RecipeItem:        {costgraph.Recipe, costgraph.Product},
	store.PackagingItem:     {costgraph.Packaging, costgraph.Product},
}

func loadGraph(ctx context.Context, st store.Store) (*costgraph.Graph, error) {
	links, err := st.Links(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cost dependencies: %w", err)
	}
	graph := costgraph.New()
	for _, link := range links {
		kinds, ok := linkKinds[link.Kind]
		if !ok {
			continue
		}
		graph.Link(costgraph.Node{Kind: kinds[0], ID: link.SourceID}, costgraph.Node{Kind: kinds[1], ID: link.ParentID})
	}
	return graph, nil
}

// RecalculateAllCosts rebuilds every derived cost. Usage rows are refreshed
// first in one transaction; any failure there aborts. Recipes are then
// recomputed, followed by products (refreshing their items from the new
// recipe unit costs), each entity in its own transaction with failures
// collected into the result.
func (s *Service) RecalculateAllCosts(ctx context.Context) (BulkResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run := s.beginRun(models.RunAll, nil)

	err := s.store.Transaction(ctx, func(tx store.Store) error {
		applog.Debug(ctx, "full recalculation: updating usages")
		if _, err := updateIngredientCosts(ctx, tx, nil); err != nil {
			return fmt.Errorf("update ingredient usages: %w", err)
		}
		if _, err := refreshUsages(ctx, tx, store.PackagingItem, store.UsageFilter{}); err != nil {
			return fmt.Errorf("update packaging usages: %w", err)
		}
		return nil
	})
	if err != nil {
		s.finishRun(ctx, run, models.RunFailed, nil, nil, []string{err.Error()})
		return BulkResult{}, err
	}

	result, recipeIDs, productIDs, err := s.recalculateAggregates(ctx)
	if err != nil {
		s.finishRun(ctx, run, models.RunFailed, nil, nil, []string{err.Error()})
		return BulkResult{}, err
	}
	s.finishRun(ctx, run, models.RunSucceeded, recipeIDs, productIDs, result.Errors)

	applog.Info(ctx, "all costs recalculated",
		"updated_recipes", result.UpdatedRecipes,
		"updated_products", result.UpdatedProducts,
		"errors", len(result.Errors),
	)
	return result, nil
}

func (s *Service) recalculateAggregates(ctx context.Context) (BulkResult, []string, []string, error) {
	result := BulkResult{Errors: []string{}}

	recipeIDs, err := s.store.RecipeIDs(ctx)
	if err != nil {
		return BulkResult{}, nil, nil, err
	}
	productIDs, err := s.store.ProductIDs(ctx)
	if err != nil {
		return BulkResult{}, nil, nil, err
	}

	updatedRecipes := make([]string, 0, len(recipeIDs))
	for _, recipeID := range recipeIDs {
		err := s.store.Transaction(ctx, func(tx store.Store) error {
			_, err := recipeCost(ctx, tx, recipeID)
			return err
		})
		if err != nil {
			applog.Error(ctx, "recipe recalculation failed", "recipe_id", recipeID, "error", err)
			result.Errors = append(result.Errors, fmt.Sprintf("recipe %s: %v", recipeID, err))
			continue
		}
		updatedRecipes = append(updatedRecipes, recipeID)
	}

	updatedProducts := make([]string, 0, len(productIDs))
	for _, productID := range productIDs {
		err := s.store.Transaction(ctx, func(tx store.Store) error {
			filter := store.UsageFilter{ParentIDs: []string{productID}}
			if _, err := refreshUsages(ctx, tx, store.RecipeItem, filter); err != nil {
				return err
			}
			_, err := productCost(ctx, tx, productID)
			return err
		})
		if err != nil {
			applog.Error(ctx, "product recalculation failed", "product_id", productID, "error", err)
			result.Errors = append(result.Errors, fmt.Sprintf("product %s: %v", productID, err))
			continue
		}
		updatedProducts = append(updatedProducts, productID)
	}

	result.UpdatedRecipes = len(updatedRecipes)
	result.UpdatedProducts = len(updatedProducts)
	return result, updatedRecipes, updatedProducts, nil
}
