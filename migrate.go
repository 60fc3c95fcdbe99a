package main

import (
	"context"
	"fmt"
	"time"

	"finance-tracker-backend/internal/config"
)

// setupDatabase creates tables and seeds the category list
func setupDatabase(cfg *config.Config) error {
	db, err := openDB(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	logger.Info().Msg("Creating database schema...")
	if err := ensureSchema(ctx, db); err != nil {
		return err
	}
	logger.Info().Msg("Schema created successfully")

	logger.Info().Msg("Seeding categories...")
	n, err := seedDefaultCategories(ctx, db)
	if err != nil {
		return err
	}
	logger.Info().Int64("rows_affected", n).Msg("Categories seeded successfully")
	return nil
}

// seedDemo prepares the schema and inserts demo records for the default owner
func seedDemo(cfg *config.Config) error {
	db, err := openDB(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := ensureSchema(ctx, db); err != nil {
		return err
	}
	if _, err := seedDefaultCategories(ctx, db); err != nil {
		return err
	}
	if err := seedDemoData(ctx, db, cfg.Server.DefaultOwner); err != nil {
		return fmt.Errorf("seeding demo data for %q: %w", cfg.Server.DefaultOwner, err)
	}
	return nil
}
