package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"tracker/internal/core"
	"tracker/internal/ledger"
)

const (
	TransactionsFile = "transactions.json"
	CategoriesFile   = "categories.json"
)

// FilePersister stores the two logical records as UTF-8 JSON documents in a
// directory.
type FilePersister struct {
	dir string
}

func NewFilePersister(dir string) (*FilePersister, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FilePersister{dir: dir}, nil
}

func (f *FilePersister) Dir() string { return f.dir }

// Load reads both documents. Missing files yield an empty snapshot; a document
// that fails to parse yields an error wrapping core.ErrImportFormat.
func (f *FilePersister) Load(ctx context.Context) (ledger.Snapshot, error) {
	var snap ledger.Snapshot

	if err := f.readJSON(TransactionsFile, &snap.Transactions); err != nil {
		return ledger.Snapshot{}, err
	}
	if err := f.readJSON(CategoriesFile, &snap.Taxonomy); err != nil {
		return ledger.Snapshot{}, err
	}

	slog.DebugContext(ctx, "Loaded ledger files",
		"dir", f.dir,
		"transactions", len(snap.Transactions))
	return snap, nil
}

func (f *FilePersister) readJSON(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(f.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: parse %s: %v", core.ErrImportFormat, name, err)
	}
	return nil
}

// Save writes both documents, each atomically via a temp file and rename.
func (f *FilePersister) Save(_ context.Context, s ledger.Snapshot) error {
	txs := s.Transactions
	if txs == nil {
		txs = []core.Transaction{}
	}
	if err := f.writeJSON(TransactionsFile, txs); err != nil {
		return err
	}
	return f.writeJSON(CategoriesFile, s.Taxonomy)
}

func (f *FilePersister) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(f.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(f.dir, name)); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}
