package store

import (
	"context"
	"errors"

	"finance-tracker-backend/internal/records"
)

// FallbackStore reads and writes Remote first. Successful remote reads are
// mirrored into Local; when Remote fails, Local answers instead.
type FallbackStore struct {
	Remote RecordStore
	Local  *LocalStore

	// OnFallback, if set, is called with the operation name each time Local
	// answers for Remote.
	OnFallback func(operation string)
}

// fallsBack reports whether err is a remote failure rather than a rejection of
// the request itself. Rows the database refuses must not land in Local: the
// next remote read would mirror over them.
func fallsBack(err error) bool {
	switch {
	case err == nil,
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrOwnerRequired),
		errors.Is(err, ErrOwnerTooLong),
		errors.Is(err, context.Canceled),
		records.IsValidationError(err),
		IsRejected(err):
		return false
	}
	return true
}

func (f *FallbackStore) fellBack(op, owner string, err error) {
	logger.Warn().Err(err).Str("operation", op).Str("owner", owner).Msg("remote store failed, using local data")
	if f.OnFallback != nil {
		f.OnFallback(op)
	}
}

func read[T any](ctx context.Context, f *FallbackStore, op, owner string,
	remote func() (T, error), mirror func(T) error, local func() (T, error)) (T, Source, error) {
	if err := checkOwner(owner); err != nil {
		var zero T
		return zero, SourceRemote, err
	}
	v, err := remote()
	if err == nil {
		if merr := mirror(v); merr != nil {
			logger.Warn().Err(merr).Str("operation", op).Str("owner", owner).Msg("failed to mirror remote data locally")
		}
		return v, SourceRemote, nil
	}
	if !fallsBack(err) {
		return v, SourceRemote, err
	}
	f.fellBack(op, owner, err)
	lv, lerr := local()
	if lerr != nil {
		return lv, SourceLocal, errors.Join(err, lerr)
	}
	return lv, SourceLocal, nil
}

func (f *FallbackStore) write(ctx context.Context, op, owner string, remote, mirror, local func() error) error {
	if err := checkOwner(owner); err != nil {
		return err
	}
	err := remote()
	if err == nil {
		if merr := mirror(); merr != nil && !errors.Is(merr, ErrNotFound) {
			logger.Warn().Err(merr).Str("operation", op).Str("owner", owner).Msg("failed to mirror write locally")
		}
		return nil
	}
	if !fallsBack(err) {
		return err
	}
	f.fellBack(op, owner, err)
	if lerr := local(); lerr != nil {
		if !fallsBack(lerr) {
			return lerr
		}
		return errors.Join(err, lerr)
	}
	return nil
}

func (f *FallbackStore) ReadExpenses(ctx context.Context, owner string) ([]records.Expense, Source, error) {
	return read(ctx, f, "expenses", owner,
		func() ([]records.Expense, error) { return f.Remote.Expenses(ctx, owner) },
		func(v []records.Expense) error { return f.Local.SetExpenses(ctx, owner, v) },
		func() ([]records.Expense, error) { return f.Local.Expenses(ctx, owner) })
}

func (f *FallbackStore) ReadIncomes(ctx context.Context, owner string) ([]records.Income, Source, error) {
	return read(ctx, f, "income", owner,
		func() ([]records.Income, error) { return f.Remote.Incomes(ctx, owner) },
		func(v []records.Income) error { return f.Local.SetIncomes(ctx, owner, v) },
		func() ([]records.Income, error) { return f.Local.Incomes(ctx, owner) })
}

func (f *FallbackStore) ReadShares(ctx context.Context, owner string) ([]records.ShareTransaction, Source, error) {
	return read(ctx, f, "shares", owner,
		func() ([]records.ShareTransaction, error) { return f.Remote.Shares(ctx, owner) },
		func(v []records.ShareTransaction) error { return f.Local.SetShares(ctx, owner, v) },
		func() ([]records.ShareTransaction, error) { return f.Local.Shares(ctx, owner) })
}

// ReadSnapshot loads all records of owner and reports which store served them.
func (f *FallbackStore) ReadSnapshot(ctx context.Context, owner string) (Snapshot, Source, error) {
	return read(ctx, f, "snapshot", owner,
		func() (Snapshot, error) { return LoadSnapshot(ctx, f.Remote, owner) },
		func(v Snapshot) error { return f.Local.Save(ctx, owner, v) },
		func() (Snapshot, error) { return f.Local.Load(ctx, owner) })
}

// Mirror copies the owner's remote records into the local store. Unlike the
// reads it never falls back.
func (f *FallbackStore) Mirror(ctx context.Context, owner string) error {
	snap, err := LoadSnapshot(ctx, f.Remote, owner)
	if err != nil {
		return err
	}
	return f.Local.Save(ctx, owner, snap)
}

func (f *FallbackStore) Expenses(ctx context.Context, owner string) ([]records.Expense, error) {
	v, _, err := f.ReadExpenses(ctx, owner)
	return v, err
}

func (f *FallbackStore) Incomes(ctx context.Context, owner string) ([]records.Income, error) {
	v, _, err := f.ReadIncomes(ctx, owner)
	return v, err
}

func (f *FallbackStore) Shares(ctx context.Context, owner string) ([]records.ShareTransaction, error) {
	v, _, err := f.ReadShares(ctx, owner)
	return v, err
}

func (f *FallbackStore) AddExpense(ctx context.Context, owner string, e records.Expense) error {
	e.ID = idOrNew(e.ID)
	add := func() error { return f.Local.AddExpense(ctx, owner, e) }
	return f.write(ctx, "add_expense", owner, func() error { return f.Remote.AddExpense(ctx, owner, e) }, add, add)
}

func (f *FallbackStore) AddIncome(ctx context.Context, owner string, i records.Income) error {
	i.ID = idOrNew(i.ID)
	add := func() error { return f.Local.AddIncome(ctx, owner, i) }
	return f.write(ctx, "add_income", owner, func() error { return f.Remote.AddIncome(ctx, owner, i) }, add, add)
}

func (f *FallbackStore) AddShare(ctx context.Context, owner string, tx records.ShareTransaction) error {
	tx.ID = idOrNew(tx.ID)
	add := func() error { return f.Local.AddShare(ctx, owner, tx) }
	return f.write(ctx, "add_share", owner, func() error { return f.Remote.AddShare(ctx, owner, tx) }, add, add)
}

func (f *FallbackStore) DeleteExpense(ctx context.Context, owner, id string) error {
	del := func() error { return f.Local.DeleteExpense(ctx, owner, id) }
	return f.write(ctx, "delete_expense", owner, func() error { return f.Remote.DeleteExpense(ctx, owner, id) }, del, del)
}

func (f *FallbackStore) DeleteIncome(ctx context.Context, owner, id string) error {
	del := func() error { return f.Local.DeleteIncome(ctx, owner, id) }
	return f.write(ctx, "delete_income", owner, func() error { return f.Remote.DeleteIncome(ctx, owner, id) }, del, del)
}

func (f *FallbackStore) DeleteShare(ctx context.Context, owner, id string) error {
	del := func() error { return f.Local.DeleteShare(ctx, owner, id) }
	return f.write(ctx, "delete_share", owner, func() error { return f.Remote.DeleteShare(ctx, owner, id) }, del, del)
}

var _ RecordStore = (*FallbackStore)(nil)
