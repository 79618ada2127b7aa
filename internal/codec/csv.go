package codec

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"tracker/internal/core"
)

// CSVHeader is the column order written by WriteCSV.
var CSVHeader = []string{"type", "category", "source", "amount", "date"}

// WriteCSV writes one row per transaction. Text columns are always quoted so
// spreadsheets never reinterpret them; amount and date are written bare.
func WriteCSV(w io.Writer, txs []core.Transaction) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(strings.Join(CSVHeader, ",") + "\n")
	for _, tx := range txs {
		rec := toRecord(tx)
		fmt.Fprintf(bw, "%s,%s,%s,%s,%s\n",
			quote(rec.Type), quote(rec.Category), quote(rec.Source), rec.Amount, rec.Date)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write csv export: %w", err)
	}
	return nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// ReadCSV parses a CSV export. Columns are matched by header name; id and
// source are optional, the rest are required. Bare dates are midnight in loc.
func ReadCSV(r io.Reader, loc *time.Location) ([]core.Transaction, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: missing csv header", core.ErrImportFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrImportFormat, err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, required := range []string{"type", "category", "amount", "date"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: csv header lacks %q column", core.ErrImportFormat, required)
		}
	}

	c := newCollector(0, loc)
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrImportFormat, err)
		}
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}

		field := func(name string) string {
			if i, ok := cols[name]; ok && i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}
		amount, err := core.ParseMoney(field("amount"))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", core.ErrImportFormat, line, err)
		}
		rec := record{
			ID:       field("id"),
			Type:     field("type"),
			Category: field("category"),
			Source:   field("source"),
			Amount:   amount,
			Date:     field("date"),
		}
		if err := c.add(line, rec); err != nil {
			return nil, err
		}
	}
	return c.txs, nil
}
