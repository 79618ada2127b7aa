// Package postgres persists the ledger in PostgreSQL through a pgx pool.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tracker/internal/core"
	"tracker/internal/ledger"
)

const schema = `
CREATE TABLE IF NOT EXISTS ledger_transactions (
    position    INTEGER     PRIMARY KEY,
    id          TEXT        NOT NULL UNIQUE,
    kind        TEXT        NOT NULL CHECK (kind IN ('income', 'expense')),
    category    TEXT        NOT NULL,
    source      TEXT        NOT NULL DEFAULT '',
    amount      NUMERIC(14,2) NOT NULL,
    occurred_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS ledger_categories (
    kind     TEXT    NOT NULL CHECK (kind IN ('income', 'expense')),
    position INTEGER NOT NULL,
    name     TEXT    NOT NULL,
    PRIMARY KEY (kind, position)
);`

type Persister struct {
	pool *pgxpool.Pool
}

// Connect opens a pool for databaseURL and makes sure the schema exists.
func Connect(ctx context.Context, databaseURL string) (*Persister, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Persister{pool: pool}, nil
}

func (p *Persister) Close() error {
	p.pool.Close()
	return nil
}

func (p *Persister) Load(ctx context.Context) (ledger.Snapshot, error) {
	var snap ledger.Snapshot

	rows, err := p.pool.Query(ctx,
		`SELECT id, kind, category, source, amount::text, occurred_at FROM ledger_transactions ORDER BY position`)
	if err != nil {
		return snap, fmt.Errorf("query transactions: %w", err)
	}
	txs, err := pgx.CollectRows(rows, scanTransaction)
	if err != nil {
		return snap, err
	}
	snap.Transactions = txs

	rows, err = p.pool.Query(ctx, `SELECT kind, name FROM ledger_categories ORDER BY kind, position`)
	if err != nil {
		return snap, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	snap.Taxonomy = core.Taxonomy{}
	for rows.Next() {
		var kind, name string
		if err := rows.Scan(&kind, &name); err != nil {
			return snap, fmt.Errorf("scan category: %w", err)
		}
		k := core.Kind(kind)
		snap.Taxonomy[k] = append(snap.Taxonomy[k], name)
	}
	if err := rows.Err(); err != nil {
		return snap, fmt.Errorf("iterate categories: %w", err)
	}
	return snap, nil
}

func scanTransaction(row pgx.CollectableRow) (core.Transaction, error) {
	var (
		tx           core.Transaction
		kind, amount string
		occurredAt   time.Time
	)
	if err := row.Scan(&tx.ID, &kind, &tx.Category, &tx.Source, &amount, &occurredAt); err != nil {
		return tx, fmt.Errorf("scan transaction: %w", err)
	}
	var err error
	if tx.Kind, err = core.ParseKind(kind); err != nil {
		return tx, fmt.Errorf("%w: transaction %s: %v", core.ErrImportFormat, tx.ID, err)
	}
	if tx.Amount, err = core.ParseMoney(amount); err != nil {
		return tx, fmt.Errorf("%w: transaction %s: %v", core.ErrImportFormat, tx.ID, err)
	}
	tx.Date = occurredAt.UTC()
	return tx, nil
}

// Save replaces both tables in a single database transaction.
func (p *Persister) Save(ctx context.Context, s ledger.Snapshot) error {
	err := pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM ledger_transactions`); err != nil {
			return fmt.Errorf("clear transactions: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM ledger_categories`); err != nil {
			return fmt.Errorf("clear categories: %w", err)
		}

		batch := &pgx.Batch{}
		for i, t := range s.Transactions {
			batch.Queue(
				`INSERT INTO ledger_transactions (position, id, kind, category, source, amount, occurred_at)
				 VALUES ($1, $2, $3, $4, $5, $6::numeric, $7)`,
				i, t.ID, string(t.Kind), t.Category, t.Source, t.Amount.String(), t.Date.UTC())
		}
		for kind, names := range s.Taxonomy {
			for i, name := range names {
				batch.Queue(`INSERT INTO ledger_categories (kind, position, name) VALUES ($1, $2, $3)`,
					string(kind), i, name)
			}
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert snapshot: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.DebugContext(ctx, "Ledger saved to Postgres", "transactions", len(s.Transactions))
	return nil
}
