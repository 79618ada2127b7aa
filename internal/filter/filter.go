// Package filter selects the subset of the ledger shown in the recent
// transactions list.
package filter

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"tracker/internal/core"
)

type Timeframe string

const (
	Today     Timeframe = "today"
	ThisMonth Timeframe = "month"
	ThisYear  Timeframe = "year"
	All       Timeframe = "all"
)

// ParseTimeframe accepts the timeframe names case-insensitively. An empty
// string means All.
func ParseTimeframe(s string) (Timeframe, error) {
	switch tf := Timeframe(strings.ToLower(strings.TrimSpace(s))); tf {
	case "":
		return All, nil
	case Today, ThisMonth, ThisYear, All:
		return tf, nil
	}
	return "", fmt.Errorf("%w: unknown timeframe %q", core.ErrValidation, s)
}

func (tf Timeframe) contains(t, now time.Time, loc *time.Location) bool {
	t, now = t.In(loc), now.In(loc)
	switch tf {
	case Today:
		return core.SameDay(t, now, loc)
	case ThisMonth:
		return t.Year() == now.Year() && t.Month() == now.Month()
	case ThisYear:
		return t.Year() == now.Year()
	}
	return true
}

type mode int

const (
	modeNone mode = iota
	modeDate
	modeCategory
)

// Spec describes which transactions to keep. The zero value keeps everything.
type Spec struct {
	mode      mode
	day       time.Time
	category  string
	timeframe Timeframe
}

func None() Spec { return Spec{} }

// ByExactDate keeps transactions whose local calendar day equals day's.
func ByExactDate(day time.Time) Spec {
	return Spec{mode: modeDate, day: day}
}

// ByCategoryAndTimeframe keeps expenses of exactly category inside tf.
func ByCategoryAndTimeframe(category string, tf Timeframe) Spec {
	return Spec{mode: modeCategory, category: category, timeframe: tf}
}

func (s Spec) IsNone() bool { return s.mode == modeNone }

// Day returns the selected day of a ByExactDate spec.
func (s Spec) Day() (time.Time, bool) {
	return s.day, s.mode == modeDate
}

func (s Spec) String() string {
	switch s.mode {
	case modeDate:
		return "date=" + s.day.Format(time.DateOnly)
	case modeCategory:
		return fmt.Sprintf("category=%s timeframe=%s", s.category, s.timeframe)
	}
	return "none"
}

func (s Spec) match(tx core.Transaction, now time.Time, loc *time.Location) bool {
	switch s.mode {
	case modeDate:
		return core.SameDay(tx.Date, s.day, loc)
	case modeCategory:
		return tx.Kind == core.Expense &&
			tx.Category == s.category &&
			s.timeframe.contains(tx.Date, now, loc)
	}
	return true
}

// Apply returns the transactions matching spec in their original order.
func Apply(txs []core.Transaction, spec Spec, now time.Time, loc *time.Location) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if spec.match(tx, now, loc) {
			out = append(out, tx)
		}
	}
	return out
}

// Toggle is the calendar click: selecting the already selected day clears
// the filter, any other click selects that day.
func Toggle(current Spec, day time.Time, loc *time.Location) Spec {
	if selected, ok := current.Day(); ok && core.SameDay(selected, day, loc) {
		return None()
	}
	return ByExactDate(core.LocalDay(day, loc))
}

// MostRecentFirst returns a reversed copy for display.
func MostRecentFirst(txs []core.Transaction) []core.Transaction {
	out := slices.Clone(txs)
	slices.Reverse(out)
	return out
}
