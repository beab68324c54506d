package costupdate

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"larder/internal/store"
	"larder/models"
)

// ChangeIngredientPrice stores a new unit cost for an ingredient and runs the
// ingredient chain for it in the same transaction.
func (s *Service) ChangeIngredientPrice(ctx context.Context, ingredientID string, unitCost decimal.Decimal) (ChainResult, error) {
	id := strings.TrimSpace(ingredientID)
	if id == "" {
		return ChainResult{}, ErrNoIDs
	}
	if unitCost.IsNegative() {
		return ChainResult{}, ErrNegativePrice
	}

	ids := []string{id}
	return s.runChain(ctx, models.RunIngredientChain, ids, func(tx store.Store) (ChainResult, error) {
		if err := tx.SetIngredientUnitCost(ctx, id, unitCost); err != nil {
			return ChainResult{}, err
		}
		return ingredientChain(ctx, tx, ids)
	})
}

// ChangePackagingPrice stores a new unit cost for a packaging and runs the
// packaging chain for it in the same transaction.
func (s *Service) ChangePackagingPrice(ctx context.Context, packagingID string, unitCost decimal.Decimal) (ChainResult, error) {
	id := strings.TrimSpace(packagingID)
	if id == "" {
		return ChainResult{}, ErrNoIDs
	}
	if unitCost.IsNegative() {
		return ChainResult{}, ErrNegativePrice
	}

	ids := []string{id}
	return s.runChain(ctx, models.RunPackagingChain, ids, func(tx store.Store) (ChainResult, error) {
		if err := tx.SetPackagingUnitCost(ctx, id, unitCost); err != nil {
			return ChainResult{}, err
		}
		return packagingChain(ctx, tx, ids)
	})
}
