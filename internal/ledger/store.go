// Package ledger owns the list of transactions and the category taxonomy.
//
// A Store is created once per process with an injected Persister. Every
// mutation writes the complete snapshot through to the persister; if that
// write fails the in-memory change is rolled back so memory and storage
// never diverge.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"tracker/internal/core"
	"tracker/internal/log"
)

// Snapshot is the complete persisted state: the two logical records.
type Snapshot struct {
	Transactions []core.Transaction
	Taxonomy     core.Taxonomy
}

// Persister is the storage collaborator. Load returns an empty snapshot when
// nothing was stored yet, and an error wrapping core.ErrImportFormat when the
// stored document cannot be parsed.
type Persister interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, s Snapshot) error
}

type Store struct {
	mu        sync.RWMutex
	persister Persister
	txs       []core.Transaction
	taxonomy  core.Taxonomy

	now    func() time.Time
	newID  func() string
	logger *log.Logger
}

type Option func(*Store)

// WithClock overrides the time source used for default dates.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides id minting.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l.WithComponent(log.ComponentLedger) }
}

// Open loads the persisted state or falls back to an empty ledger and the
// default taxonomy when nothing usable is stored.
func Open(ctx context.Context, p Persister, opts ...Option) (*Store, error) {
	s := &Store{
		persister: p,
		now:       time.Now,
		newID:     uuid.NewString,
		logger:    log.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}

	snap, err := p.Load(ctx)
	switch {
	case errors.Is(err, core.ErrImportFormat):
		s.logger.WarnContext(ctx, "Stored ledger unreadable, starting empty",
			log.FieldOperation, log.OpLoad, log.FieldError, err)
		snap = Snapshot{}
	case err != nil:
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	s.txs = s.normalize(ctx, snap.Transactions)
	s.taxonomy = snap.Taxonomy.Normalize()
	if s.taxonomy.Empty() {
		s.taxonomy = core.DefaultTaxonomy()
	}

	s.logger.InfoContext(ctx, "Ledger loaded",
		log.FieldOperation, log.OpLoad,
		log.FieldCount, len(s.txs))
	return s, nil
}

// normalize makes loaded records addressable: missing or repeated ids get a
// fresh one and invalid records are dropped with a warning.
func (s *Store) normalize(ctx context.Context, txs []core.Transaction) []core.Transaction {
	seen := make(map[string]struct{}, len(txs))
	out := make([]core.Transaction, 0, len(txs))
	for i, t := range txs {
		t.Amount = core.NewMoney(t.Amount.Decimal())
		t.Date = t.Date.UTC()
		if err := t.Validate(); err != nil {
			s.logger.WarnContext(ctx, "Skipping invalid stored transaction",
				log.FieldOperation, log.OpLoad, log.FieldTxID, t.ID, "position", i+1, log.FieldError, err)
			continue
		}
		if _, dup := seen[t.ID]; t.ID == "" || dup {
			old := t.ID
			t.ID = s.newID()
			s.logger.WarnContext(ctx, "Assigned id to stored transaction",
				log.FieldOperation, log.OpLoad, log.FieldTxID, t.ID, "previous_id", old)
		}
		seen[t.ID] = struct{}{}
		out = append(out, t)
	}
	return out
}

// commit persists the candidate state and swaps it in only on success.
// Callers must hold s.mu.
func (s *Store) commit(ctx context.Context, op string, txs []core.Transaction, tax core.Taxonomy) error {
	if err := s.persister.Save(ctx, Snapshot{Transactions: txs, Taxonomy: tax}); err != nil {
		s.logger.ErrorContext(ctx, "Persist failed, mutation rolled back",
			log.FieldOperation, op, log.FieldError, err)
		return fmt.Errorf("%w: %s: %v", core.ErrPersistence, op, err)
	}
	s.txs = txs
	s.taxonomy = tax
	return nil
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.txs, func(t core.Transaction) bool { return t.ID == id })
}

// Add validates the draft, assigns a fresh id and appends it.
func (s *Store) Add(ctx context.Context, d core.Draft) (string, error) {
	if err := d.Validate(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := d.Transaction(s.newID(), s.now())
	txs := append(slices.Clip(s.txs), tx)
	if err := s.commit(ctx, log.OpCreate, txs, s.taxonomy); err != nil {
		return "", err
	}

	s.logger.InfoContext(ctx, "Transaction added", log.NewFields().
		WithOperation(log.OpCreate).
		WithTransaction(tx.ID, tx.Kind.String(), tx.Category, tx.Amount.String()).
		ToSlice()...)
	return tx.ID, nil
}

// Edit replaces every editable field of the transaction with id.
func (s *Store) Edit(ctx context.Context, id string, d core.Draft) error {
	if err := d.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: transaction %q", core.ErrNotFound, id)
	}

	txs := slices.Clone(s.txs)
	txs[i] = d.Transaction(id, s.now())
	if err := s.commit(ctx, log.OpUpdate, txs, s.taxonomy); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Transaction updated",
		log.FieldOperation, log.OpUpdate, log.FieldTxID, id)
	return nil
}

// Delete removes the transaction with id. Unknown ids are an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: transaction %q", core.ErrNotFound, id)
	}

	txs := slices.Delete(slices.Clone(s.txs), i, i+1)
	if err := s.commit(ctx, log.OpDelete, txs, s.taxonomy); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Transaction deleted",
		log.FieldOperation, log.OpDelete, log.FieldTxID, id)
	return nil
}

func (s *Store) Get(_ context.Context, id string) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return core.Transaction{}, fmt.Errorf("%w: transaction %q", core.ErrNotFound, id)
	}
	return s.txs[i], nil
}

// List returns a copy of all transactions in insertion order.
func (s *Store) List(_ context.Context) []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.txs)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.txs)
}

// Replace swaps the whole ledger, as done by an import. Every record must be
// valid and ids unique; otherwise nothing changes.
func (s *Store) Replace(ctx context.Context, txs []core.Transaction) error {
	seen := make(map[string]struct{}, len(txs))
	next := make([]core.Transaction, 0, len(txs))
	for i, t := range txs {
		t.Amount = core.NewMoney(t.Amount.Decimal())
		t.Date = t.Date.UTC()
		if err := t.Validate(); err != nil {
			return fmt.Errorf("record %d: %w", i+1, err)
		}
		if t.ID == "" {
			t.ID = s.newID()
		}
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("%w: record %d: duplicate id %q", core.ErrValidation, i+1, t.ID)
		}
		seen[t.ID] = struct{}{}
		next = append(next, t)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.commit(ctx, log.OpImport, next, s.taxonomy); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Ledger replaced",
		log.FieldOperation, log.OpImport, log.FieldCount, len(next))
	return nil
}

// Taxonomy returns a copy of the category taxonomy.
func (s *Store) Taxonomy() core.Taxonomy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.taxonomy.Clone()
}

func (s *Store) Categories(kind core.Kind) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.taxonomy.Names(kind)
}

// AddCategory appends name to kind's taxonomy; case-insensitive duplicates
// fail with core.ErrDuplicate.
func (s *Store) AddCategory(ctx context.Context, kind core.Kind, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tax := s.taxonomy.Clone()
	if err := tax.Add(kind, name); err != nil {
		return err
	}
	if err := s.commit(ctx, log.OpCategoryAdd, s.txs, tax); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Category added",
		log.FieldOperation, log.OpCategoryAdd, log.FieldKind, kind, log.FieldCategory, name)
	return nil
}

// DeleteCategory removes name from kind's taxonomy. Transactions that
// reference it keep their category text.
func (s *Store) DeleteCategory(ctx context.Context, kind core.Kind, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tax := s.taxonomy.Clone()
	if err := tax.Remove(kind, name); err != nil {
		return err
	}
	if err := s.commit(ctx, log.OpCategoryDelete, s.txs, tax); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Category deleted",
		log.FieldOperation, log.OpCategoryDelete, log.FieldKind, kind, log.FieldCategory, name)
	return nil
}
