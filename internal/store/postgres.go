package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"finance-tracker-backend/internal/records"
)

// Schema creates the tables the PostgresStore reads and writes.
const Schema = `
	CREATE TABLE IF NOT EXISTS categories (
		id SERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		type VARCHAR(20) NOT NULL,
		color VARCHAR(7) DEFAULT '#9e9e9e',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_name_type ON categories(name, type);

	CREATE TABLE IF NOT EXISTS expenses (
		id UUID PRIMARY KEY,
		owner_id VARCHAR(128) NOT NULL,
		amount NUMERIC(14,2) NOT NULL CHECK (amount >= 0),
		category VARCHAR(100) NOT NULL,
		description VARCHAR(255) NOT NULL DEFAULT '',
		date DATE NOT NULL,
		location VARCHAR(255) NOT NULL DEFAULT '',
		recipient VARCHAR(255) NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_expenses_owner_date ON expenses(owner_id, date DESC);

	CREATE TABLE IF NOT EXISTS income (
		id UUID PRIMARY KEY,
		owner_id VARCHAR(128) NOT NULL,
		amount NUMERIC(14,2) NOT NULL CHECK (amount >= 0),
		source VARCHAR(100) NOT NULL,
		description VARCHAR(255) NOT NULL DEFAULT '',
		date DATE NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_income_owner_date ON income(owner_id, date DESC);

	CREATE TABLE IF NOT EXISTS shares (
		id UUID PRIMARY KEY,
		owner_id VARCHAR(128) NOT NULL,
		symbol VARCHAR(20) NOT NULL,
		type VARCHAR(4) NOT NULL CHECK (type IN ('buy', 'sell')),
		quantity NUMERIC(18,6) NOT NULL CHECK (quantity > 0),
		price NUMERIC(14,4) NOT NULL CHECK (price > 0),
		date DATE NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_shares_owner_date ON shares(owner_id, date DESC);

	CREATE TABLE IF NOT EXISTS quotes (
		symbol VARCHAR(20) PRIMARY KEY,
		price NUMERIC(14,4) NOT NULL CHECK (price > 0),
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
`

// Category is a seeded expense category or income source.
type Category struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Type  string `json:"type"`
	Color string `json:"color"`
}

// PostgresStore is the remote RecordStore.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Expenses(ctx context.Context, owner string) ([]records.Expense, error) {
	if err := checkOwner(owner); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id::text, amount, category, description, to_char(date, 'YYYY-MM-DD'), location, recipient
		FROM expenses
		WHERE owner_id = $1
		ORDER BY date DESC, created_at DESC
	`, owner)
	if err != nil {
		return nil, fmt.Errorf("querying expenses: %w", err)
	}
	defer rows.Close()

	expenses := make([]records.Expense, 0)
	for rows.Next() {
		var (
			e      records.Expense
			amount decimal.Decimal
		)
		if err := rows.Scan(&e.ID, &amount, &e.Category, &e.Description, &e.Date, &e.Location, &e.Recipient); err != nil {
			return nil, fmt.Errorf("scanning expense: %w", err)
		}
		e.Amount = amount.InexactFloat64()
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (s *PostgresStore) Incomes(ctx context.Context, owner string) ([]records.Income, error) {
	if err := checkOwner(owner); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id::text, amount, source, description, to_char(date, 'YYYY-MM-DD')
		FROM income
		WHERE owner_id = $1
		ORDER BY date DESC, created_at DESC
	`, owner)
	if err != nil {
		return nil, fmt.Errorf("querying income: %w", err)
	}
	defer rows.Close()

	incomes := make([]records.Income, 0)
	for rows.Next() {
		var (
			i      records.Income
			amount decimal.Decimal
		)
		if err := rows.Scan(&i.ID, &amount, &i.Source, &i.Description, &i.Date); err != nil {
			return nil, fmt.Errorf("scanning income: %w", err)
		}
		i.Amount = amount.InexactFloat64()
		incomes = append(incomes, i)
	}
	return incomes, rows.Err()
}

func (s *PostgresStore) Shares(ctx context.Context, owner string) ([]records.ShareTransaction, error) {
	if err := checkOwner(owner); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id::text, symbol, type, quantity, price, to_char(date, 'YYYY-MM-DD'), notes
		FROM shares
		WHERE owner_id = $1
		ORDER BY date DESC, created_at DESC
	`, owner)
	if err != nil {
		return nil, fmt.Errorf("querying shares: %w", err)
	}
	defer rows.Close()

	shares := make([]records.ShareTransaction, 0)
	for rows.Next() {
		var (
			tx              records.ShareTransaction
			kind            string
			quantity, price decimal.Decimal
		)
		if err := rows.Scan(&tx.ID, &tx.Symbol, &kind, &quantity, &price, &tx.Date, &tx.Notes); err != nil {
			return nil, fmt.Errorf("scanning share transaction: %w", err)
		}
		tx.Type = records.TradeType(kind)
		tx.Quantity = quantity.InexactFloat64()
		tx.Price = price.InexactFloat64()
		shares = append(shares, tx)
	}
	return shares, rows.Err()
}

func (s *PostgresStore) AddExpense(ctx context.Context, owner string, e records.Expense) error {
	if err := checkOwner(owner); err != nil {
		return err
	}
	if err := e.Validate(); err != nil {
		return err
	}
	date, _ := records.ParseDate(e.Date)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO expenses (id, owner_id, amount, category, description, date, location, recipient)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, idOrNew(e.ID), owner, decimal.NewFromFloat(e.Amount).Round(2), e.Category, e.Description, date, e.Location, e.Recipient)
	if err != nil {
		return fmt.Errorf("inserting expense: %w", err)
	}
	return nil
}

func (s *PostgresStore) AddIncome(ctx context.Context, owner string, i records.Income) error {
	if err := checkOwner(owner); err != nil {
		return err
	}
	if err := i.Validate(); err != nil {
		return err
	}
	date, _ := records.ParseDate(i.Date)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO income (id, owner_id, amount, source, description, date)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, idOrNew(i.ID), owner, decimal.NewFromFloat(i.Amount).Round(2), i.Source, i.Description, date)
	if err != nil {
		return fmt.Errorf("inserting income: %w", err)
	}
	return nil
}

func (s *PostgresStore) AddShare(ctx context.Context, owner string, tx records.ShareTransaction) error {
	if err := checkOwner(owner); err != nil {
		return err
	}
	if err := tx.Validate(); err != nil {
		return err
	}
	date, _ := records.ParseDate(tx.Date)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO shares (id, owner_id, symbol, type, quantity, price, date, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, idOrNew(tx.ID), owner, tx.Symbol, string(tx.Type),
		decimal.NewFromFloat(tx.Quantity), decimal.NewFromFloat(tx.Price), date, tx.Notes)
	if err != nil {
		return fmt.Errorf("inserting share transaction: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteExpense(ctx context.Context, owner, id string) error {
	return s.delete(ctx, "expenses", owner, id)
}

func (s *PostgresStore) DeleteIncome(ctx context.Context, owner, id string) error {
	return s.delete(ctx, "income", owner, id)
}

func (s *PostgresStore) DeleteShare(ctx context.Context, owner, id string) error {
	return s.delete(ctx, "shares", owner, id)
}

// table is one of the fixed table names above, never user input.
func (s *PostgresStore) delete(ctx context.Context, table, owner, id string) error {
	if err := checkOwner(owner); err != nil {
		return err
	}
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	res, err := s.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = $1 AND owner_id = $2", id, owner)
	if err != nil {
		return fmt.Errorf("deleting from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Quotes returns the manually maintained current prices keyed by symbol.
func (s *PostgresStore) Quotes(ctx context.Context) (map[string]float64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT symbol, price FROM quotes`)
	if err != nil {
		return nil, fmt.Errorf("querying quotes: %w", err)
	}
	defer rows.Close()

	quotes := make(map[string]float64)
	for rows.Next() {
		var (
			symbol string
			price  decimal.Decimal
		)
		if err := rows.Scan(&symbol, &price); err != nil {
			return nil, fmt.Errorf("scanning quote: %w", err)
		}
		quotes[symbol] = price.InexactFloat64()
	}
	return quotes, rows.Err()
}

func (s *PostgresStore) SetQuote(ctx context.Context, symbol string, price float64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO quotes (symbol, price, updated_at) VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (symbol) DO UPDATE SET price = EXCLUDED.price, updated_at = EXCLUDED.updated_at
	`, symbol, decimal.NewFromFloat(price))
	if err != nil {
		return fmt.Errorf("saving quote: %w", err)
	}
	return nil
}

// Owners lists every owner id that has at least one record.
func (s *PostgresStore) Owners(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT owner_id FROM expenses
		UNION SELECT owner_id FROM income
		UNION SELECT owner_id FROM shares
		ORDER BY 1
	`)
	if err != nil {
		return nil, fmt.Errorf("querying owners: %w", err)
	}
	defer rows.Close()

	owners := make([]string, 0)
	for rows.Next() {
		var owner string
		if err := rows.Scan(&owner); err != nil {
			return nil, err
		}
		owners = append(owners, owner)
	}
	return owners, rows.Err()
}

func (s *PostgresStore) Categories(ctx context.Context) ([]Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, type, color FROM categories ORDER BY type, name`)
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	defer rows.Close()

	categories := make([]Category, 0)
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &c.Color); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func idOrNew(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

var _ RecordStore = (*PostgresStore)(nil)
