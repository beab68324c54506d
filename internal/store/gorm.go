package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"larder/models"
)

var _ Store = (*GormStore)(nil)

// GormStore implements Store on top of a gorm handle.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps db.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Usages(ctx context.Context, kind UsageKind, filter UsageFilter) ([]Usage, error) {
	t, err := kind.spec()
	if err != nil {
		return nil, err
	}
	if (filter.SourceIDs != nil && len(filter.SourceIDs) == 0) || (filter.ParentIDs != nil && len(filter.ParentIDs) == 0) {
		return []Usage{}, nil
	}

	query := s.db.WithContext(ctx).
		Table(t.table+" AS u").
		Select(fmt.Sprintf(
			"u.id AS id, u.%s AS parent_id, u.%s AS source_id, u.quantity AS quantity, u.cost AS cost, COALESCE(src.unit_cost, 0) AS unit_cost",
			t.parentCol, t.sourceCol,
		)).
		Joins(fmt.Sprintf("LEFT JOIN %s src ON src.id = u.%s", t.sourceTable, t.sourceCol)).
		Order("u.id asc")

	if filter.SourceIDs != nil {
		query = query.Where(fmt.Sprintf("u.%s IN ?", t.sourceCol), filter.SourceIDs)
	}
	if filter.ParentIDs != nil {
		query = query.Where(fmt.Sprintf("u.%s IN ?", t.parentCol), filter.ParentIDs)
	}

	var usages []Usage
	if err := query.Scan(&usages).Error; err != nil {
		return nil, fmt.Errorf("query %s: %w", t.table, err)
	}
	return usages, nil
}

func (s *GormStore) SetUsageCost(ctx context.Context, kind UsageKind, id string, cost decimal.Decimal) error {
	t, err := kind.spec()
	if err != nil {
		return err
	}
	result := s.db.WithContext(ctx).Table(t.table).Where("id = ?", id).Update("cost", cost)
	if result.Error != nil {
		return fmt.Errorf("update %s %s: %w", t.table, id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("update %s %s: %w", t.table, id, ErrNotFound)
	}
	return nil
}

type linkRow struct {
	ParentID string
	SourceID string
}

func (s *GormStore) Links(ctx context.Context) ([]Link, error) {
	var links []Link
	for _, kind := range UsageKinds {
		t, _ := kind.spec()
		var rows []linkRow
		err := s.db.WithContext(ctx).
			Table(t.table+" AS u").
			Select(fmt.Sprintf("DISTINCT u.%s AS parent_id, u.%s AS source_id", t.parentCol, t.sourceCol)).
			Joins(fmt.Sprintf("JOIN %s p ON p.id = u.%s", t.parentTable, t.parentCol)).
			Order("parent_id asc, source_id asc").
			Scan(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("query %s links: %w", t.table, err)
		}
		for _, row := range rows {
			links = append(links, Link{Kind: kind, ParentID: row.ParentID, SourceID: row.SourceID})
		}
	}
	return links, nil
}

func (s *GormStore) RecipePortions(ctx context.Context, recipeID string) (int, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).Select("id", "portions").First(&recipe, "id = ?", recipeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("recipe %s: %w", recipeID, ErrNotFound)
		}
		return 0, fmt.Errorf("load recipe %s: %w", recipeID, err)
	}
	return recipe.Portions, nil
}

func (s *GormStore) SaveRecipeCost(ctx context.Context, recipeID string, total, unit decimal.Decimal) error {
	result := s.db.WithContext(ctx).
		Model(&models.Recipe{}).
		Where("id = ?", recipeID).
		Updates(map[string]any{"total_cost": total, "unit_cost": unit})
	if result.Error != nil {
		return fmt.Errorf("save recipe %s cost: %w", recipeID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("save recipe %s cost: %w", recipeID, ErrNotFound)
	}
	return nil
}

func (s *GormStore) SaveProductCost(ctx context.Context, productID string, total decimal.Decimal) error {
	result := s.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Update("total_cost", total)
	if result.Error != nil {
		return fmt.Errorf("save product %s cost: %w", productID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("save product %s cost: %w", productID, ErrNotFound)
	}
	return nil
}

func (s *GormStore) RecipeIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).Order("id asc").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list recipe ids: %w", err)
	}
	return ids, nil
}

func (s *GormStore) ProductIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := s.db.WithContext(ctx).Model(&models.Product{}).Order("id asc").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list product ids: %w", err)
	}
	return ids, nil
}

func (s *GormStore) Recipe(ctx context.Context, id string) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("BaseIngredients", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("BaseIngredients.Ingredient").
		Preload("PortionIngredients", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("PortionIngredients.Ingredient").
		First(&recipe, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("recipe %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("load recipe %s: %w", id, err)
	}
	return &recipe, nil
}

func (s *GormStore) Product(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("Items.Recipe").
		Preload("Packaging", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("Packaging.Packaging").
		First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("load product %s: %w", id, err)
	}
	return &product, nil
}

func (s *GormStore) SetIngredientUnitCost(ctx context.Context, id string, cost decimal.Decimal) error {
	return s.setUnitCost(ctx, &models.Ingredient{}, "ingredient", id, cost)
}

func (s *GormStore) SetPackagingUnitCost(ctx context.Context, id string, cost decimal.Decimal) error {
	return s.setUnitCost(ctx, &models.Packaging{}, "packaging", id, cost)
}

func (s *GormStore) setUnitCost(ctx context.Context, model any, label, id string, cost decimal.Decimal) error {
	result := s.db.WithContext(ctx).Model(model).Where("id = ?", id).Update("unit_cost", cost)
	if result.Error != nil {
		return fmt.Errorf("update %s %s price: %w", label, id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%s %s: %w", label, id, ErrNotFound)
	}
	return nil
}

func (s *GormStore) RecordRun(ctx context.Context, run *models.CostRun) error {
	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("record cost run: %w", err)
	}
	return nil
}

func (s *GormStore) Runs(ctx context.Context, limit int) ([]models.CostRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []models.CostRun
	if err := s.db.WithContext(ctx).Order("started_at desc, id asc").Limit(limit).Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("list cost runs: %w", err)
	}
	return runs, nil
}

func (s *GormStore) Transaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}
