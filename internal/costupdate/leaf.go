package costupdate

import (
	"context"
	"fmt"

	applog "larder/internal/log"
	"larder/internal/store"
)

var ingredientUsageKinds = []store.UsageKind{store.BaseIngredient, store.PortionIngredient}

// UpdateAllIngredientCosts refreshes the cost of every base and portion
// ingredient usage. It returns the number of rows written.
func (s *Service) UpdateAllIngredientCosts(ctx context.Context) (int, error) {
	var n int
	err := s.atomically(ctx, func(tx store.Store) error {
		var err error
		n, err = updateIngredientCosts(ctx, tx, nil)
		return err
	})
	return n, err
}

// UpdateSpecificIngredientCosts refreshes usages referencing ingredientIDs.
// An empty set writes nothing.
func (s *Service) UpdateSpecificIngredientCosts(ctx context.Context, ingredientIDs []string) (int, error) {
	ids := normalizeIDs(ingredientIDs)
	if len(ids) == 0 {
		return 0, nil
	}
	var n int
	err := s.atomically(ctx, func(tx store.Store) error {
		var err error
		n, err = updateIngredientCosts(ctx, tx, ids)
		return err
	})
	return n, err
}

// UpdateAllPackagingCosts refreshes the cost of every product packaging usage.
func (s *Service) UpdateAllPackagingCosts(ctx context.Context) (int, error) {
	var n int
	err := s.atomically(ctx, func(tx store.Store) error {
		var err error
		n, err = refreshUsages(ctx, tx, store.PackagingItem, store.UsageFilter{})
		return err
	})
	return n, err
}

// UpdateSpecificPackagingCosts refreshes packaging usages referencing packagingIDs.
func (s *Service) UpdateSpecificPackagingCosts(ctx context.Context, packagingIDs []string) (int, error) {
	ids := normalizeIDs(packagingIDs)
	if len(ids) == 0 {
		return 0, nil
	}
	var n int
	err := s.atomically(ctx, func(tx store.Store) error {
		var err error
		n, err = refreshUsages(ctx, tx, store.PackagingItem, store.UsageFilter{SourceIDs: ids})
		return err
	})
	return n, err
}

// updateIngredientCosts covers both ingredient usage tables. A nil ids slice
// means every row.
func updateIngredientCosts(ctx context.Context, st store.Store, ids []string) (int, error) {
	total := 0
	for _, kind := range ingredientUsageKinds {
		n, err := refreshUsages(ctx, st, kind, store.UsageFilter{SourceIDs: ids})
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// refreshUsages reads the matching usage rows once, then writes
// quantity × unit cost back row by row. The first failure aborts.
func refreshUsages(ctx context.Context, st store.Store, kind store.UsageKind, filter store.UsageFilter) (int, error) {
	usages, err := st.Usages(ctx, kind, filter)
	if err != nil {
		return 0, fmt.Errorf("load %s: %w", kind, err)
	}

	for i, usage := range usages {
		cost := usage.Quantity.Mul(usage.UnitCost)
		if err := st.SetUsageCost(ctx, kind, usage.ID, cost); err != nil {
			return i, err
		}
	}

	applog.Debug(ctx, "usage costs refreshed", "table", kind.String(), "rows", len(usages))
	return len(usages), nil
}
