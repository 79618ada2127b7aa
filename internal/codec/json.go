// Package codec exports the ledger to JSON or CSV and parses imports back.
// Every import failure wraps core.ErrImportFormat; a failed import yields no
// records at all.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"tracker/internal/core"
)

// record is the exchange shape shared by both formats.
type record struct {
	ID       string     `json:"id"`
	Type     string     `json:"type"`
	Category string     `json:"category"`
	Source   string     `json:"source"`
	Amount   core.Money `json:"amount"`
	Date     string     `json:"date"`
}

func toRecord(tx core.Transaction) record {
	return record{
		ID:       tx.ID,
		Type:     tx.Kind.String(),
		Category: tx.Category,
		Source:   tx.Source,
		Amount:   tx.Amount,
		Date:     tx.Date.UTC().Format(time.RFC3339),
	}
}

func (r record) transaction(loc *time.Location) (core.Transaction, error) {
	kind, err := core.ParseKind(r.Type)
	if err != nil {
		return core.Transaction{}, err
	}
	date, err := parseDate(r.Date, loc)
	if err != nil {
		return core.Transaction{}, err
	}
	tx := core.Draft{
		Kind:     kind,
		Category: r.Category,
		Source:   r.Source,
		Amount:   r.Amount,
		Date:     date,
	}.Transaction(r.ID, date)
	return tx, tx.Validate()
}

// parseDate accepts an RFC 3339 instant or a bare YYYY-MM-DD day, read as
// midnight in loc.
func parseDate(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.ParseInLocation(time.DateOnly, s, loc); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%w: invalid date %q", core.ErrValidation, s)
}

func WriteJSON(w io.Writer, txs []core.Transaction) error {
	records := make([]record, len(txs))
	for i, tx := range txs {
		records[i] = toRecord(tx)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode json export: %w", err)
	}
	return nil
}

// ReadJSON parses an exported array. Records without an id get a fresh one.
// Bare dates are midnight in loc; nil means UTC.
func ReadJSON(r io.Reader, loc *time.Location) ([]core.Transaction, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read json import: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		return nil, fmt.Errorf("%w: expected a JSON array", core.ErrImportFormat)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrImportFormat, err)
	}

	c := newCollector(len(raw), loc)
	for i, msg := range raw {
		var rec record
		if err := json.Unmarshal(msg, &rec); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", core.ErrImportFormat, i+1, err)
		}
		if err := c.add(i+1, rec); err != nil {
			return nil, err
		}
	}
	return c.txs, nil
}

// collector validates records and enforces id uniqueness across an import.
type collector struct {
	txs  []core.Transaction
	seen map[string]struct{}
	loc  *time.Location
}

func newCollector(n int, loc *time.Location) *collector {
	if loc == nil {
		loc = time.UTC
	}
	return &collector{
		txs:  make([]core.Transaction, 0, n),
		seen: make(map[string]struct{}, n),
		loc:  loc,
	}
}

func (c *collector) add(n int, rec record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if _, dup := c.seen[rec.ID]; dup {
		return fmt.Errorf("%w: record %d: duplicate id %q", core.ErrImportFormat, n, rec.ID)
	}
	tx, err := rec.transaction(c.loc)
	if err != nil {
		return fmt.Errorf("%w: record %d: %v", core.ErrImportFormat, n, err)
	}
	c.seen[rec.ID] = struct{}{}
	c.txs = append(c.txs, tx)
	return nil
}
