package store

import (
	"context"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finance-tracker-backend/internal/records"
)

func newFallback(t *testing.T) (*FallbackStore, *memStore, *[]string) {
	t.Helper()
	remote := newMemStore()
	var ops []string
	f := &FallbackStore{
		Remote:     remote,
		Local:      newLocal(t),
		OnFallback: func(op string) { ops = append(ops, op) },
	}
	return f, remote, &ops
}

func TestFallbackMirrorsRemoteReads(t *testing.T) {
	ctx := context.Background()
	f, remote, ops := newFallback(t)
	require.NoError(t, remote.AddExpense(ctx, "alice", records.Expense{ID: "e1", Amount: 3, Category: "Food", Date: "2024-01-01"}))

	expenses, source, err := f.ReadExpenses(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, SourceRemote, source)
	assert.Len(t, expenses, 1)
	assert.Empty(t, *ops)

	local, err := f.Local.Expenses(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, local, 1)
	assert.Equal(t, "e1", local[0].ID)
}

func TestFallbackServesLocalWhenRemoteFails(t *testing.T) {
	ctx := context.Background()
	f, remote, ops := newFallback(t)
	require.NoError(t, remote.AddIncome(ctx, "alice", records.Income{ID: "i1", Amount: 50, Source: "Salary", Date: "2024-01-01"}))
	_, _, err := f.ReadSnapshot(ctx, "alice")
	require.NoError(t, err)

	remote.setDown(true)
	snap, source, err := f.ReadSnapshot(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, SourceLocal, source)
	require.Len(t, snap.Incomes, 1)
	assert.Equal(t, "i1", snap.Incomes[0].ID)
	assert.Equal(t, []string{"snapshot"}, *ops)
}

func TestFallbackWritesGoLocalWhenRemoteFails(t *testing.T) {
	ctx := context.Background()
	f, remote, ops := newFallback(t)
	remote.setDown(true)

	tx := records.ShareTransaction{ID: "s1", Symbol: "ACME", Type: records.Buy, Quantity: 2, Price: 10, Date: "2024-03-01"}
	require.NoError(t, f.AddShare(ctx, "alice", tx))
	assert.Equal(t, []string{"add_share"}, *ops)

	shares, source, err := f.ReadShares(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, SourceLocal, source)
	require.Len(t, shares, 1)
	assert.Equal(t, "s1", shares[0].ID)
}

func TestFallbackWriteMirrorsOnSuccess(t *testing.T) {
	ctx := context.Background()
	f, remote, _ := newFallback(t)

	require.NoError(t, f.AddExpense(ctx, "alice", records.Expense{Amount: 4, Category: "Food", Date: "2024-01-01"}))
	remoteExpenses, err := remote.Expenses(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, remoteExpenses, 1)
	assert.NotEmpty(t, remoteExpenses[0].ID)

	local, err := f.Local.Expenses(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, local, 1)
	assert.Equal(t, remoteExpenses[0].ID, local[0].ID)

	require.NoError(t, f.DeleteExpense(ctx, "alice", local[0].ID))
	local, err = f.Local.Expenses(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, local)
}

func TestFallbackDoesNotMaskRequestErrors(t *testing.T) {
	ctx := context.Background()
	f, _, ops := newFallback(t)

	assert.ErrorIs(t, f.DeleteIncome(ctx, "alice", "missing"), ErrNotFound)

	err := f.AddIncome(ctx, "alice", records.Income{Amount: 1, Date: "2024-01-01"})
	assert.True(t, records.IsValidationError(err))

	_, _, err = f.ReadExpenses(ctx, " ")
	assert.ErrorIs(t, err, ErrOwnerRequired)
	assert.Empty(t, *ops)
}

func TestFallbackReportsBothFailures(t *testing.T) {
	ctx := context.Background()
	f, remote, _ := newFallback(t)
	remote.setDown(true)
	f.Local.Dir = "/nonexistent/dir/for/test"

	err := f.AddExpense(ctx, "alice", records.Expense{Amount: 1, Category: "Food", Date: "2024-01-01"})
	require.Error(t, err)
	assert.ErrorIs(t, err, errUnavailable)
}

func TestMirrorCopiesRemoteSnapshot(t *testing.T) {
	ctx := context.Background()
	f, remote, _ := newFallback(t)
	require.NoError(t, remote.AddShare(ctx, "bob", records.ShareTransaction{ID: "s", Symbol: "X", Type: records.Buy, Quantity: 1, Price: 1, Date: "2024-01-01"}))

	require.NoError(t, f.Mirror(ctx, "bob"))
	snap, err := f.Local.Load(ctx, "bob")
	require.NoError(t, err)
	assert.Len(t, snap.Shares, 1)

	remote.setDown(true)
	assert.ErrorIs(t, f.Mirror(ctx, "bob"), errUnavailable)
}

func TestFallbackDoesNotKeepRowsTheDatabaseRejects(t *testing.T) {
	ctx := context.Background()
	for _, code := range []string{"22001", "22003", "23514"} {
		t.Run(code, func(t *testing.T) {
			f, remote, ops := newFallback(t)
			remote.reject = &pgconn.PgError{Code: code, Message: "rejected"}

			tx := records.ShareTransaction{ID: "s1", Symbol: "ACME", Type: records.Buy, Quantity: 1, Price: 10, Date: "2024-03-01"}
			err := f.AddShare(ctx, "alice", tx)
			require.Error(t, err)
			assert.True(t, IsRejected(err))
			assert.Empty(t, *ops)

			local, err := f.Local.Shares(ctx, "alice")
			require.NoError(t, err)
			assert.Empty(t, local)
		})
	}
}

func TestFallbackStillCoversServerSideFailures(t *testing.T) {
	ctx := context.Background()
	f, remote, ops := newFallback(t)
	remote.reject = &pgconn.PgError{Code: "57P01", Message: "terminating connection due to administrator command"}

	require.NoError(t, f.AddIncome(ctx, "alice", records.Income{ID: "i1", Amount: 1, Source: "Salary", Date: "2024-01-01"}))
	assert.Equal(t, []string{"add_income"}, *ops)
}

func TestFallbackRejectsOversizedOwner(t *testing.T) {
	ctx := context.Background()
	f, _, ops := newFallback(t)
	owner := strings.Repeat("o", MaxOwnerLength+1)

	_, _, err := f.ReadExpenses(ctx, owner)
	require.ErrorIs(t, err, ErrOwnerTooLong)
	require.ErrorIs(t, f.AddExpense(ctx, owner, records.Expense{Amount: 1, Category: "Food", Date: "2024-01-01"}), ErrOwnerTooLong)
	assert.Empty(t, *ops)
}
