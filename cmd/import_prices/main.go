package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"larder/internal/config"
	"larder/internal/costupdate"
	"larder/internal/db"
	"larder/internal/db/mock"
	"larder/internal/store"
)

var (
	// A lone comma followed by two digits is a decimal comma, not a
	// thousands separator.
	decimalCommaPattern = regexp.MustCompile(`^[-+]?\d+,\d{2}$`)

	openDatabase = func(ctx context.Context) (*gorm.DB, config.CostingConfig, func(), error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, config.CostingConfig{}, nil, fmt.Errorf("load config: %w", err)
		}

		var database *gorm.DB
		if cfg.Database.UseMock {
			database, err = mock.New(ctx)
		} else {
			database, err = db.Initialize(cfg.Database)
			if err == nil {
				err = db.AutoMigrate(database)
			}
		}
		if err != nil {
			return nil, config.CostingConfig{}, nil, fmt.Errorf("open database: %w", err)
		}
		return database, cfg.Costing, func() {
			if sqlDB, err := database.DB(); err == nil {
				sqlDB.Close()
			}
		}, nil
	}
)

const (
	kindIngredient = "ingredient"
	kindPackaging  = "packaging"
)

type priceRow struct {
	Kind     string
	ID       string
	UnitCost decimal.Decimal
}

func main() {
	csvPath := "prices.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}

	if err := run(context.Background(), csvPath, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
}

// run applies a supplier price list: every price is written in one
// transaction, then the ingredient and packaging chains propagate them.
func run(ctx context.Context, csvPath string, out io.Writer) error {
	if strings.TrimSpace(csvPath) == "" {
		return fmt.Errorf("csv path must not be empty")
	}

	records, err := readCSV(csvPath)
	if err != nil {
		return fmt.Errorf("read csv: %w", err)
	}
	rows, err := parsePriceRows(records)
	if err != nil {
		return err
	}

	database, costing, closeDatabase, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer closeDatabase()

	st := store.NewGormStore(database)
	err = st.Transaction(ctx, func(tx store.Store) error {
		for idx, row := range rows {
			var err error
			if row.Kind == kindIngredient {
				err = tx.SetIngredientUnitCost(ctx, row.ID, row.UnitCost)
			} else {
				err = tx.SetPackagingUnitCost(ctx, row.ID, row.UnitCost)
			}
			if err != nil {
				return fmt.Errorf("record %d (%s): %w", idx+1, row.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	var ingredientIDs, packagingIDs []string
	for _, row := range rows {
		if row.Kind == kindIngredient {
			ingredientIDs = append(ingredientIDs, row.ID)
		} else {
			packagingIDs = append(packagingIDs, row.ID)
		}
	}

	svc := costupdate.New(st, costupdate.WithJournal(costing.Journal))
	ingredients, err := svc.RecalculateIngredientChain(ctx, ingredientIDs)
	if err != nil {
		return fmt.Errorf("propagate ingredient prices: %w", err)
	}
	packaging, err := svc.RecalculatePackagingChain(ctx, packagingIDs)
	if err != nil {
		return fmt.Errorf("propagate packaging prices: %w", err)
	}

	products := make(map[string]bool)
	for _, id := range append(ingredients.ProductIDs, packaging.ProductIDs...) {
		products[id] = true
	}
	fmt.Fprintf(out, "Imported %d prices from %s: %d recipes and %d products recalculated\n",
		len(rows), filepath.Base(csvPath), ingredients.AffectedRecipes, len(products))
	return nil
}

func readCSV(path string) ([]map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, errors.New("csv is empty")
	}

	header := rows[0]
	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}

		record := make(map[string]string, len(header))
		for idx, key := range header {
			if idx >= len(row) {
				continue
			}
			record[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(row[idx])
		}
		records = append(records, record)
	}

	return records, nil
}

// parsePriceRows validates the kind, id and unit cost columns. Rows without
// a price are skipped.
func parsePriceRows(records []map[string]string) ([]priceRow, error) {
	rows := make([]priceRow, 0, len(records))
	for idx, record := range records {
		raw := normalizeValue(record["unit cost"])
		if raw == "" {
			continue
		}

		kind := strings.ToLower(normalizeValue(record["kind"]))
		if kind != kindIngredient && kind != kindPackaging {
			return nil, fmt.Errorf("record %d: unknown kind %q", idx+1, record["kind"])
		}
		id := normalizeValue(record["id"])
		if id == "" {
			return nil, fmt.Errorf("record %d: id is required", idx+1)
		}

		cost, err := parsePrice(raw)
		if err != nil {
			return nil, fmt.Errorf("record %d (%s): %w", idx+1, id, err)
		}
		rows = append(rows, priceRow{Kind: kind, ID: id, UnitCost: cost})
	}
	return rows, nil
}

// parsePrice keeps digits, signs and separators, so currency symbols and
// units are ignored. Prices use dot decimals; commas group thousands.
func parsePrice(value string) (decimal.Decimal, error) {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || strings.ContainsRune(".,+-", r) {
			return r
		}
		return -1
	}, value)
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("invalid unit cost %q", value)
	}
	if decimalCommaPattern.MatchString(cleaned) {
		return decimal.Zero, fmt.Errorf("unit cost %q uses a decimal comma", value)
	}

	cost, err := decimal.NewFromString(strings.ReplaceAll(cleaned, ",", ""))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid unit cost %q: %w", value, err)
	}
	if cost.IsNegative() {
		return decimal.Zero, costupdate.ErrNegativePrice
	}
	return cost, nil
}

func normalizeValue(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, "N/A") {
		return ""
	}
	return value
}
