package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"finance-tracker-backend/internal/records"
)

// LocalStore keeps one JSON snapshot file per owner under Dir. Files are
// validated on every read and replaced atomically on every write.
type LocalStore struct {
	Dir string
	mu  sync.Mutex
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating local store dir: %w", err)
	}
	return &LocalStore{Dir: dir}, nil
}

func (s *LocalStore) path(owner string) string {
	return filepath.Join(s.Dir, url.PathEscape(owner)+".json")
}

// Load returns the owner's snapshot. A missing file is an empty snapshot.
func (s *LocalStore) Load(ctx context.Context, owner string) (Snapshot, error) {
	if err := checkOwner(owner); err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(owner)
}

// Save replaces the owner's snapshot.
func (s *LocalStore) Save(ctx context.Context, owner string, snap Snapshot) error {
	if err := checkOwner(owner); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(owner, snap)
}

func (s *LocalStore) read(owner string) (Snapshot, error) {
	data, err := os.ReadFile(s.path(owner))
	if errors.Is(err, fs.ErrNotExist) {
		return emptySnapshot(), nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("reading local snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decoding local snapshot %s: %w", filepath.Base(s.path(owner)), err)
	}
	if err := records.ValidateExpenses(snap.Expenses); err != nil {
		return Snapshot{}, fmt.Errorf("local expenses: %w", err)
	}
	if err := records.ValidateIncomes(snap.Incomes); err != nil {
		return Snapshot{}, fmt.Errorf("local income: %w", err)
	}
	if err := records.ValidateShares(snap.Shares); err != nil {
		return Snapshot{}, fmt.Errorf("local shares: %w", err)
	}
	return normalize(snap), nil
}

func (s *LocalStore) write(owner string, snap Snapshot) error {
	data, err := json.MarshalIndent(normalize(snap), "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.Dir, ".snapshot-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), s.path(owner)); err != nil {
		return fmt.Errorf("replacing local snapshot: %w", err)
	}
	return nil
}

func (s *LocalStore) update(owner string, fn func(*Snapshot) error) error {
	if err := checkOwner(owner); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.read(owner)
	if err != nil {
		return err
	}
	if err := fn(&snap); err != nil {
		return err
	}
	return s.write(owner, snap)
}

func (s *LocalStore) Expenses(ctx context.Context, owner string) ([]records.Expense, error) {
	snap, err := s.Load(ctx, owner)
	return snap.Expenses, err
}

func (s *LocalStore) Incomes(ctx context.Context, owner string) ([]records.Income, error) {
	snap, err := s.Load(ctx, owner)
	return snap.Incomes, err
}

func (s *LocalStore) Shares(ctx context.Context, owner string) ([]records.ShareTransaction, error) {
	snap, err := s.Load(ctx, owner)
	return snap.Shares, err
}

func (s *LocalStore) AddExpense(ctx context.Context, owner string, e records.Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	e.ID = idOrNew(e.ID)
	return s.update(owner, func(snap *Snapshot) error {
		snap.Expenses = append(withoutID(snap.Expenses, e.ID, func(x records.Expense) string { return x.ID }), e)
		return nil
	})
}

func (s *LocalStore) AddIncome(ctx context.Context, owner string, i records.Income) error {
	if err := i.Validate(); err != nil {
		return err
	}
	i.ID = idOrNew(i.ID)
	return s.update(owner, func(snap *Snapshot) error {
		snap.Incomes = append(withoutID(snap.Incomes, i.ID, func(x records.Income) string { return x.ID }), i)
		return nil
	})
}

func (s *LocalStore) AddShare(ctx context.Context, owner string, tx records.ShareTransaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	tx.ID = idOrNew(tx.ID)
	return s.update(owner, func(snap *Snapshot) error {
		snap.Shares = append(withoutID(snap.Shares, tx.ID, func(x records.ShareTransaction) string { return x.ID }), tx)
		return nil
	})
}

func (s *LocalStore) DeleteExpense(ctx context.Context, owner, id string) error {
	return s.update(owner, func(snap *Snapshot) error {
		kept := withoutID(snap.Expenses, id, func(x records.Expense) string { return x.ID })
		if len(kept) == len(snap.Expenses) {
			return ErrNotFound
		}
		snap.Expenses = kept
		return nil
	})
}

func (s *LocalStore) DeleteIncome(ctx context.Context, owner, id string) error {
	return s.update(owner, func(snap *Snapshot) error {
		kept := withoutID(snap.Incomes, id, func(x records.Income) string { return x.ID })
		if len(kept) == len(snap.Incomes) {
			return ErrNotFound
		}
		snap.Incomes = kept
		return nil
	})
}

func (s *LocalStore) DeleteShare(ctx context.Context, owner, id string) error {
	return s.update(owner, func(snap *Snapshot) error {
		kept := withoutID(snap.Shares, id, func(x records.ShareTransaction) string { return x.ID })
		if len(kept) == len(snap.Shares) {
			return ErrNotFound
		}
		snap.Shares = kept
		return nil
	})
}

// SetExpenses, SetIncomes and SetShares replace one record kind, keeping the others.
func (s *LocalStore) SetExpenses(ctx context.Context, owner string, expenses []records.Expense) error {
	return s.update(owner, func(snap *Snapshot) error {
		snap.Expenses = expenses
		return nil
	})
}

func (s *LocalStore) SetIncomes(ctx context.Context, owner string, incomes []records.Income) error {
	return s.update(owner, func(snap *Snapshot) error {
		snap.Incomes = incomes
		return nil
	})
}

func (s *LocalStore) SetShares(ctx context.Context, owner string, shares []records.ShareTransaction) error {
	return s.update(owner, func(snap *Snapshot) error {
		snap.Shares = shares
		return nil
	})
}

func withoutID[T any](items []T, id string, idOf func(T) string) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if idOf(item) != id {
			out = append(out, item)
		}
	}
	return out
}

func emptySnapshot() Snapshot {
	return Snapshot{
		Expenses: make([]records.Expense, 0),
		Incomes:  make([]records.Income, 0),
		Shares:   make([]records.ShareTransaction, 0),
	}
}

// normalize orders every list newest first and replaces nil lists with empty ones.
func normalize(snap Snapshot) Snapshot {
	out := emptySnapshot()
	out.Expenses = append(out.Expenses, snap.Expenses...)
	out.Incomes = append(out.Incomes, snap.Incomes...)
	out.Shares = append(out.Shares, snap.Shares...)
	sort.SliceStable(out.Expenses, func(i, j int) bool { return out.Expenses[i].Date > out.Expenses[j].Date })
	sort.SliceStable(out.Incomes, func(i, j int) bool { return out.Incomes[i].Date > out.Incomes[j].Date })
	sort.SliceStable(out.Shares, func(i, j int) bool { return out.Shares[i].Date > out.Shares[j].Date })
	return out
}

var _ RecordStore = (*LocalStore)(nil)
