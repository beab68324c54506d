package costupdate

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	applog "larder/internal/log"
	"larder/internal/store"
	"larder/models"
)

// RecipeCost is the outcome of one recipe recalculation.
type RecipeCost struct {
	RecipeID   string          `json:"recipe_id"`
	Portions   int             `json:"portions"`
	TotalCost  decimal.Decimal `json:"total_cost"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	ProductIDs []string        `json:"product_ids"`
}

// RecalculateRecipeCost recomputes a recipe's total and unit cost from its
// usage rows, then pushes the new unit cost into every product item using
// the recipe and recomputes those products.
func (s *Service) RecalculateRecipeCost(ctx context.Context, recipeID string) (RecipeCost, error) {
	var out RecipeCost
	err := s.atomically(ctx, func(tx store.Store) error {
		var err error
		out, err = recalculateRecipe(ctx, tx, recipeID)
		return err
	})
	return out, err
}

// RecalculateProductCost recomputes a product's total cost from its item and
// packaging usage rows.
func (s *Service) RecalculateProductCost(ctx context.Context, productID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.atomically(ctx, func(tx store.Store) error {
		var err error
		total, err = productCost(ctx, tx, productID)
		return err
	})
	return total, err
}

func recalculateRecipe(ctx context.Context, st store.Store, recipeID string) (RecipeCost, error) {
	out, err := recipeCost(ctx, st, recipeID)
	if err != nil {
		return RecipeCost{}, err
	}

	items, err := st.Usages(ctx, store.RecipeItem, store.UsageFilter{SourceIDs: []string{recipeID}})
	if err != nil {
		return RecipeCost{}, fmt.Errorf("load items using recipe %s: %w", recipeID, err)
	}

	products := make(map[string]bool)
	for _, item := range items {
		if err := st.SetUsageCost(ctx, store.RecipeItem, item.ID, item.Quantity.Mul(out.UnitCost)); err != nil {
			return RecipeCost{}, err
		}
		products[item.ParentID] = true
	}

	out.ProductIDs = make([]string, 0, len(products))
	for id := range products {
		out.ProductIDs = append(out.ProductIDs, id)
	}
	sort.Strings(out.ProductIDs)

	for _, productID := range out.ProductIDs {
		if _, err := productCost(ctx, st, productID); err != nil {
			return RecipeCost{}, err
		}
	}
	return out, nil
}

// recipeCost computes and saves one recipe's aggregate without cascading.
func recipeCost(ctx context.Context, st store.Store, recipeID string) (RecipeCost, error) {
	stored, err := st.RecipePortions(ctx, recipeID)
	if err != nil {
		return RecipeCost{}, err
	}
	portions := models.EffectivePortions(stored)
	if stored != portions {
		applog.Warn(ctx, "recipe portions not positive, using 1", "recipe_id", recipeID, "portions", stored)
	}

	base, err := sumUsageCosts(ctx, st, store.BaseIngredient, recipeID)
	if err != nil {
		return RecipeCost{}, err
	}
	perPortion, err := sumUsageCosts(ctx, st, store.PortionIngredient, recipeID)
	if err != nil {
		return RecipeCost{}, err
	}

	total, unit := recipeTotals(base, perPortion, portions)
	if err := st.SaveRecipeCost(ctx, recipeID, total, unit); err != nil {
		return RecipeCost{}, err
	}

	applog.Debug(ctx, "recipe cost saved", "recipe_id", recipeID, "total_cost", total.String(), "unit_cost", unit.String())
	return RecipeCost{RecipeID: recipeID, Portions: portions, TotalCost: total, UnitCost: unit}, nil
}

func productCost(ctx context.Context, st store.Store, productID string) (decimal.Decimal, error) {
	items, err := sumUsageCosts(ctx, st, store.RecipeItem, productID)
	if err != nil {
		return decimal.Zero, err
	}
	packaging, err := sumUsageCosts(ctx, st, store.PackagingItem, productID)
	if err != nil {
		return decimal.Zero, err
	}

	total := items.Add(packaging)
	if err := st.SaveProductCost(ctx, productID, total); err != nil {
		return decimal.Zero, err
	}

	applog.Debug(ctx, "product cost saved", "product_id", productID, "total_cost", total.String())
	return total, nil
}

func sumUsageCosts(ctx context.Context, st store.Store, kind store.UsageKind, parentID string) (decimal.Decimal, error) {
	usages, err := st.Usages(ctx, kind, store.UsageFilter{ParentIDs: []string{parentID}})
	if err != nil {
		return decimal.Zero, fmt.Errorf("load %s for %s: %w", kind, parentID, err)
	}
	sum := decimal.Zero
	for _, usage := range usages {
		sum = sum.Add(usage.Cost)
	}
	return sum, nil
}

// recipeTotals applies the recipe cost formula: base usages count once per
// batch, portion usages once per portion. portions below one count as one.
func recipeTotals(base, perPortion decimal.Decimal, portions int) (total, unit decimal.Decimal) {
	p := decimal.NewFromInt(int64(models.EffectivePortions(portions)))
	total = base.Add(p.Mul(perPortion))
	unit = total.Div(p)
	return total, unit
}
