package mock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"larder/internal/db"
	applog "larder/internal/log"
	"larder/models"
)

// Open returns an empty, migrated in-memory sqlite database. Every call gets
// its own database so tests do not share rows.
func Open(ctx context.Context) (*gorm.DB, error) {
	applog.Debug(ctx, "initialising mock database")

	dsn := fmt.Sprintf("file:larder-mock-%s?mode=memory&cache=shared", uuid.NewString())
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		PrepareStmt:                              true,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	// A single connection keeps the shared-cache database free of table locks.
	sqlDB, err := database.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(database); err != nil {
		return nil, err
	}

	return database, nil
}

// New returns an in-memory sqlite database seeded with a small bakery catalogue
// whose derived costs are already consistent.
func New(ctx context.Context) (*gorm.DB, error) {
	database, err := Open(ctx)
	if err != nil {
		return nil, err
	}

	if err := seed(ctx, database); err != nil {
		return nil, err
	}

	applog.Debug(ctx, "mock database ready")
	return database, nil
}

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func seed(ctx context.Context, database *gorm.DB) error {
	applog.Debug(ctx, "seeding mock database")
	tx := database.WithContext(ctx)

	ingredients := []models.Ingredient{
		{ID: "flour", Name: "Flour", UnitCost: dec("2.00"), Unit: "kg", Brand: "Mill & Co"},
		{ID: "sugar", Name: "Icing Sugar", UnitCost: dec("1.50"), Unit: "kg", Brand: "Sweetfield"},
		{ID: "butter", Name: "Butter", UnitCost: dec("4.00"), Unit: "kg", Brand: "Dairyvale"},
	}
	if err := tx.Create(&ingredients).Error; err != nil {
		return err
	}

	packaging := []models.Packaging{
		{ID: "box", Name: "Kraft Box", UnitCost: dec("0.50"), Type: "box"},
	}
	if err := tx.Create(&packaging).Error; err != nil {
		return err
	}

	recipes := []models.Recipe{
		{ID: "dough", Name: "Dough", Portions: 2, TotalCost: dec("6.00"), UnitCost: dec("3.00")},
		{ID: "glaze", Name: "Butter Glaze", Portions: 4, TotalCost: dec("7.00"), UnitCost: dec("1.75")},
	}
	if err := tx.Create(&recipes).Error; err != nil {
		return err
	}

	base := []models.RecipeBaseIngredient{
		{ID: "dough-flour", RecipeID: "dough", IngredientID: "flour", Quantity: dec("3"), Cost: dec("6.00")},
		{ID: "glaze-sugar", RecipeID: "glaze", IngredientID: "sugar", Quantity: dec("2"), Cost: dec("3.00")},
	}
	if err := tx.Create(&base).Error; err != nil {
		return err
	}

	portion := []models.RecipePortionIngredient{
		{ID: "glaze-butter", RecipeID: "glaze", IngredientID: "butter", Quantity: dec("0.25"), Cost: dec("1.00")},
	}
	if err := tx.Create(&portion).Error; err != nil {
		return err
	}

	products := []models.Product{
		{ID: "bread", Name: "Bread", TotalCost: dec("3.00")},
		{ID: "bun", Name: "Glazed Bun Box", TotalCost: dec("8.25")},
	}
	if err := tx.Create(&products).Error; err != nil {
		return err
	}

	items := []models.ProductItem{
		{ID: "bread-dough", ProductID: "bread", RecipeID: "dough", Quantity: dec("1"), Cost: dec("3.00")},
		{ID: "bun-dough", ProductID: "bun", RecipeID: "dough", Quantity: dec("2"), Cost: dec("6.00")},
		{ID: "bun-glaze", ProductID: "bun", RecipeID: "glaze", Quantity: dec("1"), Cost: dec("1.75")},
	}
	if err := tx.Create(&items).Error; err != nil {
		return err
	}

	boxes := []models.ProductPackaging{
		{ID: "bun-box", ProductID: "bun", PackagingID: "box", Quantity: dec("1"), Cost: dec("0.50")},
	}
	if err := tx.Create(&boxes).Error; err != nil {
		return err
	}

	applog.Debug(ctx, "mock database seeded")
	return nil
}
