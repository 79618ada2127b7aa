// Package calendar builds the month grid of the dashboard heatmap.
package calendar

import (
	"time"

	"tracker/internal/core"
)

type Options struct {
	// Loc buckets transactions into days. Nil means time.Local.
	Loc *time.Location
	// Today is highlighted when it falls in the month. Zero disables it.
	Today time.Time
	// Selected is the day picked by the user, if any.
	Selected time.Time
}

type Day struct {
	Date     time.Time  `json:"date"`
	Day      int        `json:"day"`
	Income   core.Money `json:"income"`
	Expense  core.Money `json:"expense"`
	Count    int        `json:"count"`
	Today    bool       `json:"today"`
	Selected bool       `json:"selected"`
}

// Grid is one month. Leading is the number of blank cells before the 1st,
// i.e. its weekday with Sunday as 0.
type Grid struct {
	Period  core.Period `json:"-"`
	Month   string      `json:"month"`
	Label   string      `json:"label"`
	Leading int         `json:"leading"`
	Days    []Day       `json:"days"`
}

// Build annotates every day of month with that day's totals.
func Build(txs []core.Transaction, month core.Period, opts Options) Grid {
	loc := opts.Loc
	if loc == nil {
		loc = time.Local
	}

	first := month.First(loc)
	g := Grid{
		Period:  month,
		Month:   month.String(),
		Label:   month.Label(),
		Leading: int(first.Weekday()),
		Days:    make([]Day, month.Days()),
	}
	for i := range g.Days {
		date := time.Date(month.Year, month.Month, i+1, 0, 0, 0, 0, loc)
		g.Days[i] = Day{
			Date:     date,
			Day:      i + 1,
			Today:    !opts.Today.IsZero() && core.SameDay(opts.Today, date, loc),
			Selected: !opts.Selected.IsZero() && core.SameDay(opts.Selected, date, loc),
		}
	}

	for _, tx := range txs {
		if !month.Contains(tx.Date, loc) {
			continue
		}
		d := &g.Days[tx.Date.In(loc).Day()-1]
		switch tx.Kind {
		case core.Income:
			d.Income = d.Income.Add(tx.Amount)
		case core.Expense:
			d.Expense = d.Expense.Add(tx.Amount)
		}
		d.Count++
	}
	return g
}

// Cells flattens the grid for row-major rendering; blanks are nil.
func (g Grid) Cells() []*Day {
	cells := make([]*Day, g.Leading, g.Leading+len(g.Days))
	for i := range g.Days {
		cells = append(cells, &g.Days[i])
	}
	return cells
}

// Weeks splits the cells into rows of seven, padding the last row.
func (g Grid) Weeks() [][]*Day {
	cells := g.Cells()
	for len(cells)%7 != 0 {
		cells = append(cells, nil)
	}
	weeks := make([][]*Day, 0, len(cells)/7)
	for i := 0; i < len(cells); i += 7 {
		weeks = append(weeks, cells[i:i+7])
	}
	return weeks
}
