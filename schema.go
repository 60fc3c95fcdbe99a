package main

import (
	"context"
	"database/sql"
	"fmt"

	"finance-tracker-backend/internal/store"
)

const seedSQL = `
	INSERT INTO categories (name, type, color) VALUES
		('Groceries', 'expense', '#4caf50'),
		('Food', 'expense', '#ff9800'),
		('Transportation', 'expense', '#2196f3'),
		('Entertainment', 'expense', '#9c27b0'),
		('Utilities', 'expense', '#607d8b'),
		('Housing', 'expense', '#795548'),
		('Healthcare', 'expense', '#f44336'),
		('Education', 'expense', '#3f51b5'),
		('Shopping', 'expense', '#e91e63'),
		('Other', 'expense', '#9e9e9e'),
		('Salary', 'income', '#4caf50'),
		('Freelance', 'income', '#ff9800'),
		('Business', 'income', '#2196f3'),
		('Investment', 'income', '#9c27b0'),
		('Interest', 'income', '#607d8b'),
		('Gift', 'income', '#e91e63')
	ON CONFLICT (name, type) DO NOTHING;
`

func ensureSchema(ctx context.Context, db *sql.DB) error {
	return store.NewPostgresStore(db).EnsureSchema(ctx)
}

func seedDefaultCategories(ctx context.Context, db *sql.DB) (int64, error) {
	result, err := db.ExecContext(ctx, seedSQL)
	if err != nil {
		return 0, fmt.Errorf("failed to seed categories: %w", err)
	}
	n, _ := result.RowsAffected()
	return n, nil
}

// Seed a month of demo expenses, income and trades for owner.
// Idempotent: will only run if the owner has no records yet.
func seedDemoData(ctx context.Context, db *sql.DB, owner string) error {
	var cnt int
	err := db.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM expenses WHERE owner_id = $1)
		     + (SELECT COUNT(*) FROM income WHERE owner_id = $1)
		     + (SELECT COUNT(*) FROM shares WHERE owner_id = $1)
	`, owner).Scan(&cnt)
	if err != nil {
		return fmt.Errorf("checking record count: %w", err)
	}
	if cnt > 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const demoExpenses = `
	INSERT INTO expenses (id, owner_id, amount, category, description, date, location, recipient) VALUES
	(gen_random_uuid(), $1, 1500.00, 'Housing', 'Rent - Apartment', CURRENT_DATE - 24, '', 'Landlord'),
	(gen_random_uuid(), $1, 120.45, 'Utilities', 'Electricity', CURRENT_DATE - 22, '', 'City Power'),
	(gen_random_uuid(), $1, 96.72, 'Groceries', 'Weekly shop', CURRENT_DATE - 20, 'Downtown', 'Whole Foods'),
	(gen_random_uuid(), $1, 45.00, 'Transportation', 'Subway pass', CURRENT_DATE - 19, '', 'Metro'),
	(gen_random_uuid(), $1, 28.50, 'Entertainment', 'Movie night', CURRENT_DATE - 16, '', ''),
	(gen_random_uuid(), $1, 64.11, 'Groceries', 'Weekly shop', CURRENT_DATE - 14, 'Downtown', 'Trader Joes'),
	(gen_random_uuid(), $1, 60.00, 'Utilities', 'Internet', CURRENT_DATE - 11, '', 'FiberNet'),
	(gen_random_uuid(), $1, 140.00, 'Entertainment', 'Concert tickets', CURRENT_DATE - 8, '', ''),
	(gen_random_uuid(), $1, 132.39, 'Groceries', 'Bulk shop', CURRENT_DATE - 6, 'Mall', 'Costco'),
	(gen_random_uuid(), $1, 22.30, 'Transportation', 'Rideshare', CURRENT_DATE - 4, '', ''),
	(gen_random_uuid(), $1, 54.80, 'Food', 'Dinner out', CURRENT_DATE - 1, '', '')
	`
	if _, err := tx.ExecContext(ctx, demoExpenses, owner); err != nil {
		return fmt.Errorf("seeding demo expenses: %w", err)
	}

	const demoIncome = `
	INSERT INTO income (id, owner_id, amount, source, description, date) VALUES
	(gen_random_uuid(), $1, 3200.00, 'Salary', 'Monthly salary', CURRENT_DATE - 28),
	(gen_random_uuid(), $1, 850.00, 'Freelance', 'Landing page', CURRENT_DATE - 25),
	(gen_random_uuid(), $1, 600.00, 'Freelance', 'Dashboard charts', CURRENT_DATE - 13),
	(gen_random_uuid(), $1, 12.40, 'Interest', 'Savings interest', CURRENT_DATE - 2)
	`
	if _, err := tx.ExecContext(ctx, demoIncome, owner); err != nil {
		return fmt.Errorf("seeding demo income: %w", err)
	}

	const demoShares = `
	INSERT INTO shares (id, owner_id, symbol, type, quantity, price, date, notes) VALUES
	(gen_random_uuid(), $1, 'ACME', 'buy', 10, 100.00, CURRENT_DATE - 27, 'Initial position'),
	(gen_random_uuid(), $1, 'GLOBEX', 'buy', 5, 240.50, CURRENT_DATE - 21, ''),
	(gen_random_uuid(), $1, 'ACME', 'sell', 4, 112.00, CURRENT_DATE - 9, 'Took some profit'),
	(gen_random_uuid(), $1, 'INITECH', 'buy', 20, 18.75, CURRENT_DATE - 3, '')
	`
	if _, err := tx.ExecContext(ctx, demoShares, owner); err != nil {
		return fmt.Errorf("seeding demo shares: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	return nil
}
