// Package store is the data access layer of the cost engine. It reads and
// writes cost records and knows nothing about how costs are derived.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"larder/models"
)

// ErrNotFound is returned when a targeted row does not exist.
var ErrNotFound = errors.New("record not found")

// UsageKind identifies one of the four usage tables whose cost column is
// derived as quantity × source unit cost.
type UsageKind int

const (
	BaseIngredient UsageKind = iota
	PortionIngredient
	RecipeItem
	PackagingItem
)

// UsageKinds lists every usage kind.
var UsageKinds = []UsageKind{BaseIngredient, PortionIngredient, RecipeItem, PackagingItem}

type usageTable struct {
	table       string
	parentCol   string
	parentTable string
	sourceCol   string
	sourceTable string
}

var usageTables = map[UsageKind]usageTable{
	BaseIngredient:    {"recipe_base_ingredients", "recipe_id", "recipes", "ingredient_id", "ingredients"},
	PortionIngredient: {"recipe_portion_ingredients", "recipe_id", "recipes", "ingredient_id", "ingredients"},
	RecipeItem:        {"product_items", "product_id", "products", "recipe_id", "recipes"},
	PackagingItem:     {"product_packagings", "product_id", "products", "packaging_id", "packagings"},
}

func (k UsageKind) String() string {
	if t, ok := usageTables[k]; ok {
		return t.table
	}
	return fmt.Sprintf("usage(%d)", int(k))
}

func (k UsageKind) spec() (usageTable, error) {
	t, ok := usageTables[k]
	if !ok {
		return usageTable{}, fmt.Errorf("unknown usage kind %d", int(k))
	}
	return t, nil
}

// Usage is one usage row together with the current unit cost of the row it
// references. ParentID is the owning recipe or product; SourceID the
// referenced ingredient, packaging or recipe.
type Usage struct {
	ID       string
	ParentID string
	SourceID string
	Quantity decimal.Decimal
	Cost     decimal.Decimal
	UnitCost decimal.Decimal
}

// UsageFilter narrows a usage query. A nil slice does not filter; an empty
// non-nil slice matches nothing.
type UsageFilter struct {
	SourceIDs []string
	ParentIDs []string
}

// Link is a dependency edge: the parent's cost depends on the source's.
type Link struct {
	Kind     UsageKind
	ParentID string
	SourceID string
}

// Store is the repository the cost engine runs against.
type Store interface {
	Usages(ctx context.Context, kind UsageKind, filter UsageFilter) ([]Usage, error)
	SetUsageCost(ctx context.Context, kind UsageKind, id string, cost decimal.Decimal) error
	Links(ctx context.Context) ([]Link, error)

	RecipePortions(ctx context.Context, recipeID string) (int, error)
	SaveRecipeCost(ctx context.Context, recipeID string, total, unit decimal.Decimal) error
	SaveProductCost(ctx context.Context, productID string, total decimal.Decimal) error
	RecipeIDs(ctx context.Context) ([]string, error)
	ProductIDs(ctx context.Context) ([]string, error)
	Recipe(ctx context.Context, id string) (*models.Recipe, error)
	Product(ctx context.Context, id string) (*models.Product, error)

	SetIngredientUnitCost(ctx context.Context, id string, cost decimal.Decimal) error
	SetPackagingUnitCost(ctx context.Context, id string, cost decimal.Decimal) error

	RecordRun(ctx context.Context, run *models.CostRun) error
	Runs(ctx context.Context, limit int) ([]models.CostRun, error)

	// Transaction runs fn against a store bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	Transaction(ctx context.Context, fn func(Store) error) error
}
