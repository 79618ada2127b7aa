package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

type (
	// Kind is the sign convention for aggregation.
	Kind string

	Transaction struct {
		ID       string    `json:"id"`
		Kind     Kind      `json:"type"`
		Category string    `json:"category"`
		Source   string    `json:"source"`
		Amount   Money     `json:"amount"`
		Date     time.Time `json:"date"`
	}

	// Draft is user input for creating or replacing a transaction.
	// A zero Date means "now" at write time.
	Draft struct {
		Kind     Kind
		Category string
		Source   string
		Amount   Money
		Date     time.Time
	}
)

// Kinds lists the transaction kinds in display order.
func Kinds() []Kind { return []Kind{Income, Expense} }

// ParseKind parses a kind case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case Income:
		return Income, nil
	case Expense:
		return Expense, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

func (k Kind) Valid() bool { return k == Income || k == Expense }

func (k Kind) String() string { return string(k) }

func (d Draft) Validate() error {
	if !d.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, d.Kind)
	}
	if strings.TrimSpace(d.Category) == "" {
		return ErrEmptyCategory
	}
	// Validate what will be stored, i.e. after rounding to two digits.
	return NewMoney(d.Amount.Decimal()).Validate()
}

// Transaction builds the stored record for id. The amount is fixed to two
// decimals, text is trimmed and the date normalised to a UTC instant.
func (d Draft) Transaction(id string, now time.Time) Transaction {
	date := d.Date
	if date.IsZero() {
		date = now
	}
	return Transaction{
		ID:       id,
		Kind:     d.Kind,
		Category: strings.TrimSpace(d.Category),
		Source:   strings.TrimSpace(d.Source),
		Amount:   NewMoney(d.Amount.Decimal()),
		Date:     date.UTC(),
	}
}

func (t Transaction) Validate() error {
	if !t.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, t.Kind)
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if t.Date.IsZero() {
		return ErrMissingDate
	}
	return nil
}

// Draft returns the editable fields of t.
func (t Transaction) Draft() Draft {
	return Draft{Kind: t.Kind, Category: t.Category, Source: t.Source, Amount: t.Amount, Date: t.Date}
}

// SameRecord compares every field except ID.
func (t Transaction) SameRecord(o Transaction) bool {
	return t.Kind == o.Kind &&
		t.Category == o.Category &&
		t.Source == o.Source &&
		t.Amount.Equal(o.Amount) &&
		t.Date.Equal(o.Date)
}

// LocalDay truncates t to midnight of its calendar day in loc.
func LocalDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	a, b = a.In(loc), b.In(loc)
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
