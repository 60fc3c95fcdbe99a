// Package store persists transaction records per owner. The remote store is
// PostgreSQL; a local JSON file store keeps a copy that answers when the
// remote is unreachable.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"finance-tracker-backend/internal/records"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "store").Logger()

// MaxOwnerLength is the width of the owner_id columns.
const MaxOwnerLength = 128

var (
	ErrNotFound      = errors.New("record not found")
	ErrOwnerRequired = errors.New("owner id is required")
	ErrOwnerTooLong  = fmt.Errorf("owner id must be at most %d characters", MaxOwnerLength)
)

// IsRejected reports whether err is PostgreSQL refusing the data itself: a
// data exception (SQLSTATE class 22) or an integrity constraint violation
// (class 23).
func IsRejected(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || len(pgErr.Code) < 2 {
		return false
	}
	class := pgErr.Code[:2]
	return class == "22" || class == "23"
}

// RecordStore is the data-access collaborator of the dashboard. Lists are
// ordered by date, newest first.
type RecordStore interface {
	Expenses(ctx context.Context, owner string) ([]records.Expense, error)
	Incomes(ctx context.Context, owner string) ([]records.Income, error)
	Shares(ctx context.Context, owner string) ([]records.ShareTransaction, error)

	AddExpense(ctx context.Context, owner string, e records.Expense) error
	AddIncome(ctx context.Context, owner string, i records.Income) error
	AddShare(ctx context.Context, owner string, s records.ShareTransaction) error

	DeleteExpense(ctx context.Context, owner, id string) error
	DeleteIncome(ctx context.Context, owner, id string) error
	DeleteShare(ctx context.Context, owner, id string) error
}

// Source tells where a read was served from.
type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
)

// Snapshot is the full record set of one owner.
type Snapshot struct {
	Expenses []records.Expense          `json:"expenses"`
	Incomes  []records.Income           `json:"incomes"`
	Shares   []records.ShareTransaction `json:"shares"`
}

// LoadSnapshot reads all three record kinds of owner from s.
func LoadSnapshot(ctx context.Context, s RecordStore, owner string) (Snapshot, error) {
	expenses, err := s.Expenses(ctx, owner)
	if err != nil {
		return Snapshot{}, err
	}
	incomes, err := s.Incomes(ctx, owner)
	if err != nil {
		return Snapshot{}, err
	}
	shares, err := s.Shares(ctx, owner)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Expenses: expenses, Incomes: incomes, Shares: shares}, nil
}

func checkOwner(owner string) error {
	if strings.TrimSpace(owner) == "" {
		return ErrOwnerRequired
	}
	if utf8.RuneCountInString(owner) > MaxOwnerLength {
		return ErrOwnerTooLong
	}
	return nil
}
