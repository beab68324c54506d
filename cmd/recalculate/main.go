package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"gorm.io/gorm"

	"larder/internal/config"
	"larder/internal/costupdate"
	"larder/internal/db"
	"larder/internal/db/mock"
	applog "larder/internal/log"
	"larder/internal/store"
)

const usage = "usage: recalculate all | ingredients ID... | packaging ID..."

var openDatabase = func(ctx context.Context) (*gorm.DB, config.CostingConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, config.CostingConfig{}, fmt.Errorf("load config: %w", err)
	}
	if err := applog.SetLevel(cfg.Logging.Level); err != nil {
		return nil, config.CostingConfig{}, err
	}

	if cfg.Database.UseMock {
		database, err := mock.New(ctx)
		return database, cfg.Costing, err
	}

	database, err := db.Initialize(cfg.Database)
	if err != nil {
		return nil, config.CostingConfig{}, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(database); err != nil {
		return nil, config.CostingConfig{}, fmt.Errorf("auto migrate: %w", err)
	}
	return database, cfg.Costing, nil
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "recalculate failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New(usage)
	}

	var action func(*costupdate.Service) (any, error)
	switch args[0] {
	case "all":
		action = func(svc *costupdate.Service) (any, error) {
			return svc.RecalculateAllCosts(ctx)
		}
	case "ingredients":
		if len(args) < 2 {
			return errors.New(usage)
		}
		action = func(svc *costupdate.Service) (any, error) {
			return svc.RecalculateIngredientChain(ctx, args[1:])
		}
	case "packaging":
		if len(args) < 2 {
			return errors.New(usage)
		}
		action = func(svc *costupdate.Service) (any, error) {
			return svc.RecalculatePackagingChain(ctx, args[1:])
		}
	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}

	database, costing, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	if sqlDB, err := database.DB(); err == nil {
		defer sqlDB.Close()
	}

	svc := costupdate.New(store.NewGormStore(database), costupdate.WithJournal(costing.Journal))
	result, err := action(svc)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}
