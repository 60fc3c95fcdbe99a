package store

import (
	"context"
	"errors"
	"sync"

	"finance-tracker-backend/internal/records"
)

var errUnavailable = errors.New("connection refused")

// memStore is an in-memory RecordStore that can be switched off to simulate
// an unreachable database.
type memStore struct {
	mu     sync.Mutex
	down   bool
	reject error
	data   map[string]*Snapshot
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]*Snapshot)}
}

func (m *memStore) owner(owner string) *Snapshot {
	snap, ok := m.data[owner]
	if !ok {
		s := emptySnapshot()
		snap = &s
		m.data[owner] = snap
	}
	return snap
}

func (m *memStore) check(owner string) error {
	if m.down {
		return errUnavailable
	}
	return checkOwner(owner)
}

func (m *memStore) Expenses(ctx context.Context, owner string) ([]records.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(owner); err != nil {
		return nil, err
	}
	return append([]records.Expense{}, m.owner(owner).Expenses...), nil
}

func (m *memStore) Incomes(ctx context.Context, owner string) ([]records.Income, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(owner); err != nil {
		return nil, err
	}
	return append([]records.Income{}, m.owner(owner).Incomes...), nil
}

func (m *memStore) Shares(ctx context.Context, owner string) ([]records.ShareTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(owner); err != nil {
		return nil, err
	}
	return append([]records.ShareTransaction{}, m.owner(owner).Shares...), nil
}

func (m *memStore) AddExpense(ctx context.Context, owner string, e records.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(owner); err != nil {
		return err
	}
	if err := e.Validate(); err != nil {
		return err
	}
	if m.reject != nil {
		return m.reject
	}
	snap := m.owner(owner)
	snap.Expenses = append(snap.Expenses, e)
	return nil
}

func (m *memStore) AddIncome(ctx context.Context, owner string, i records.Income) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(owner); err != nil {
		return err
	}
	if err := i.Validate(); err != nil {
		return err
	}
	if m.reject != nil {
		return m.reject
	}
	snap := m.owner(owner)
	snap.Incomes = append(snap.Incomes, i)
	return nil
}

func (m *memStore) AddShare(ctx context.Context, owner string, tx records.ShareTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(owner); err != nil {
		return err
	}
	if err := tx.Validate(); err != nil {
		return err
	}
	if m.reject != nil {
		return m.reject
	}
	snap := m.owner(owner)
	snap.Shares = append(snap.Shares, tx)
	return nil
}

func (m *memStore) DeleteExpense(ctx context.Context, owner, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(owner); err != nil {
		return err
	}
	snap := m.owner(owner)
	kept := withoutID(snap.Expenses, id, func(x records.Expense) string { return x.ID })
	if len(kept) == len(snap.Expenses) {
		return ErrNotFound
	}
	snap.Expenses = kept
	return nil
}

func (m *memStore) DeleteIncome(ctx context.Context, owner, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(owner); err != nil {
		return err
	}
	snap := m.owner(owner)
	kept := withoutID(snap.Incomes, id, func(x records.Income) string { return x.ID })
	if len(kept) == len(snap.Incomes) {
		return ErrNotFound
	}
	snap.Incomes = kept
	return nil
}

func (m *memStore) DeleteShare(ctx context.Context, owner, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(owner); err != nil {
		return err
	}
	snap := m.owner(owner)
	kept := withoutID(snap.Shares, id, func(x records.ShareTransaction) string { return x.ID })
	if len(kept) == len(snap.Shares) {
		return ErrNotFound
	}
	snap.Shares = kept
	return nil
}

func (m *memStore) setDown(down bool) {
	m.mu.Lock()
	m.down = down
	m.mu.Unlock()
}
