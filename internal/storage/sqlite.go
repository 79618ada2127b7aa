package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"tracker/internal/core"
	"tracker/internal/ledger"

	_ "modernc.org/sqlite"
)

// SQLitePersister keeps the ledger in a SQLite database. Save rewrites both
// tables inside one SQL transaction.
type SQLitePersister struct {
	db *sql.DB
}

func NewSQLitePersister(dbPath string) (*SQLitePersister, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single writer avoids SQLITE_BUSY between pooled connections.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLitePersister{db: db}, nil
}

func (p *SQLitePersister) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

func (p *SQLitePersister) Load(ctx context.Context) (ledger.Snapshot, error) {
	var snap ledger.Snapshot

	rows, err := p.db.QueryContext(ctx,
		`SELECT id, kind, category, source, amount, occurred_at FROM transactions ORDER BY position`)
	if err != nil {
		return snap, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			tx             core.Transaction
			kind, amount   string
			occurredAtText string
		)
		if err := rows.Scan(&tx.ID, &kind, &tx.Category, &tx.Source, &amount, &occurredAtText); err != nil {
			return snap, fmt.Errorf("scan transaction: %w", err)
		}
		if tx.Kind, err = core.ParseKind(kind); err != nil {
			return snap, fmt.Errorf("%w: transaction %s: %v", core.ErrImportFormat, tx.ID, err)
		}
		if tx.Amount, err = core.ParseMoney(amount); err != nil {
			return snap, fmt.Errorf("%w: transaction %s: %v", core.ErrImportFormat, tx.ID, err)
		}
		if tx.Date, err = time.Parse(time.RFC3339Nano, occurredAtText); err != nil {
			return snap, fmt.Errorf("%w: transaction %s: %v", core.ErrImportFormat, tx.ID, err)
		}
		snap.Transactions = append(snap.Transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return snap, fmt.Errorf("iterate transactions: %w", err)
	}

	catRows, err := p.db.QueryContext(ctx, `SELECT kind, name FROM categories ORDER BY kind, position`)
	if err != nil {
		return snap, fmt.Errorf("query categories: %w", err)
	}
	defer catRows.Close()

	snap.Taxonomy = core.Taxonomy{}
	for catRows.Next() {
		var kind, name string
		if err := catRows.Scan(&kind, &name); err != nil {
			return snap, fmt.Errorf("scan category: %w", err)
		}
		k := core.Kind(kind)
		snap.Taxonomy[k] = append(snap.Taxonomy[k], name)
	}
	if err := catRows.Err(); err != nil {
		return snap, fmt.Errorf("iterate categories: %w", err)
	}

	return snap, nil
}

func (p *SQLitePersister) Save(ctx context.Context, s ledger.Snapshot) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM categories`); err != nil {
		return fmt.Errorf("clear categories: %w", err)
	}

	insTx, err := tx.PrepareContext(ctx,
		`INSERT INTO transactions (position, id, kind, category, source, amount, occurred_at) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare transaction insert: %w", err)
	}
	defer insTx.Close()

	for i, t := range s.Transactions {
		if _, err := insTx.ExecContext(ctx, i, t.ID, string(t.Kind), t.Category, t.Source,
			t.Amount.String(), t.Date.UTC().Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("insert transaction %s: %w", t.ID, err)
		}
	}

	insCat, err := tx.PrepareContext(ctx, `INSERT INTO categories (kind, position, name) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare category insert: %w", err)
	}
	defer insCat.Close()

	for kind, names := range s.Taxonomy {
		for i, name := range names {
			if _, err := insCat.ExecContext(ctx, string(kind), i, name); err != nil {
				return fmt.Errorf("insert category %s/%s: %w", kind, name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	slog.DebugContext(ctx, "Ledger saved to SQLite", "transactions", len(s.Transactions))
	return nil
}
