// Package report derives totals, trends, category breakdowns and monthly
// series from a ledger snapshot. Everything here is a pure function of its
// inputs; nothing is cached between calls.
package report

import (
	"cmp"
	"slices"
	"time"

	"tracker/internal/core"
)

// DefaultSeriesMonths is the length of the balance series when the caller
// does not ask for one.
const DefaultSeriesMonths = 12

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
	Flat Direction = "flat"
)

type (
	Totals struct {
		Income  core.Money `json:"income"`
		Expense core.Money `json:"expense"`
		Balance core.Money `json:"balance"`
	}

	Trend struct {
		Current   core.Period `json:"-"`
		Previous  core.Period `json:"-"`
		Delta     core.Money  `json:"delta"`
		Direction Direction   `json:"direction"`
	}

	CategoryTotal struct {
		Category string     `json:"category"`
		Total    core.Money `json:"total"`
	}

	SeriesPoint struct {
		Period  core.Period `json:"-"`
		Label   string      `json:"period"`
		Balance core.Money  `json:"balance"`
	}

	// Summary bundles everything a dashboard render needs.
	Summary struct {
		Period    string          `json:"period"`
		Overall   Totals          `json:"overall"`
		Month     Totals          `json:"month"`
		Trend     Trend           `json:"trend"`
		Breakdown []CategoryTotal `json:"breakdown"`
		Series    []SeriesPoint   `json:"series"`
	}
)

func (t *Totals) add(tx core.Transaction) {
	switch tx.Kind {
	case core.Income:
		t.Income = t.Income.Add(tx.Amount)
	case core.Expense:
		t.Expense = t.Expense.Add(tx.Amount)
	}
	t.Balance = t.Income.Sub(t.Expense)
}

// OverallTotals sums the whole ledger regardless of date.
func OverallTotals(txs []core.Transaction) Totals {
	var t Totals
	for _, tx := range txs {
		t.add(tx)
	}
	return t
}

// PeriodTotals sums income and expense of the transactions falling in period
// when bucketed in loc. Balance is always Income - Expense.
func PeriodTotals(txs []core.Transaction, period core.Period, loc *time.Location) Totals {
	var t Totals
	for _, tx := range txs {
		if period.Contains(tx.Date, loc) {
			t.add(tx)
		}
	}
	return t
}

// TrendDelta compares the balance of now's month with the month before.
func TrendDelta(txs []core.Transaction, now time.Time, loc *time.Location) Trend {
	cur := core.PeriodOf(now, loc)
	prev := cur.Prev()
	delta := PeriodTotals(txs, cur, loc).Balance.Sub(PeriodTotals(txs, prev, loc).Balance)

	dir := Flat
	switch delta.Sign() {
	case 1:
		dir = Up
	case -1:
		dir = Down
	}
	return Trend{Current: cur, Previous: prev, Delta: delta, Direction: dir}
}

// CategoryBreakdown sums expenses per category for period. Categories with a
// zero total are left out. Order follows the taxonomy; categories missing
// from the taxonomy come last in order of first appearance.
func CategoryBreakdown(txs []core.Transaction, period core.Period, tax core.Taxonomy, loc *time.Location) []CategoryTotal {
	sums := map[string]core.Money{}
	var orphans []string
	for _, tx := range txs {
		if tx.Kind != core.Expense || !period.Contains(tx.Date, loc) {
			continue
		}
		if _, seen := sums[tx.Category]; !seen && !slices.Contains(tax[core.Expense], tx.Category) {
			orphans = append(orphans, tx.Category)
		}
		sums[tx.Category] = sums[tx.Category].Add(tx.Amount)
	}

	out := make([]CategoryTotal, 0, len(sums))
	for _, name := range append(tax.Names(core.Expense), orphans...) {
		total, ok := sums[name]
		if !ok || total.IsZero() {
			continue
		}
		out = append(out, CategoryTotal{Category: name, Total: total})
		delete(sums, name)
	}
	return out
}

// SortByTotal orders a breakdown by descending total, keeping ties stable.
func SortByTotal(items []CategoryTotal) []CategoryTotal {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b CategoryTotal) int {
		return cmp.Compare(b.Total.Cents(), a.Total.Cents())
	})
	return out
}

// MonthlySeries returns the balance of the trailing count months ending with
// now's month, oldest first. Months without transactions are zero.
func MonthlySeries(txs []core.Transaction, now time.Time, count int, loc *time.Location) []SeriesPoint {
	if count <= 0 {
		count = DefaultSeriesMonths
	}
	last := core.PeriodOf(now, loc)
	first := last.AddMonths(-(count - 1))

	balances := make([]core.Money, count)
	for _, tx := range txs {
		p := core.PeriodOf(tx.Date, loc)
		if p.Before(first) || last.Before(p) {
			continue
		}
		i := (p.Year-first.Year)*12 + int(p.Month-first.Month)
		if tx.Kind == core.Income {
			balances[i] = balances[i].Add(tx.Amount)
		} else {
			balances[i] = balances[i].Sub(tx.Amount)
		}
	}

	out := make([]SeriesPoint, count)
	for i := range out {
		p := first.AddMonths(i)
		out[i] = SeriesPoint{Period: p, Label: p.String(), Balance: balances[i]}
	}
	return out
}

// Summarize computes the full dashboard for now's month.
func Summarize(txs []core.Transaction, now time.Time, tax core.Taxonomy, loc *time.Location) Summary {
	period := core.PeriodOf(now, loc)
	return Summary{
		Period:    period.String(),
		Overall:   OverallTotals(txs),
		Month:     PeriodTotals(txs, period, loc),
		Trend:     TrendDelta(txs, now, loc),
		Breakdown: CategoryBreakdown(txs, period, tax, loc),
		Series:    MonthlySeries(txs, now, DefaultSeriesMonths, loc),
	}
}
