package core

import (
	"errors"
	"testing"
	"time"
)

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{"income": Income, "EXPENSE": Expense, " Income ": Income} {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Fatalf("%q: got %q err=%v", in, got, err)
		}
	}
	if _, err := ParseKind("transfer"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDraftValidate(t *testing.T) {
	good := Draft{Kind: Expense, Category: "Food", Amount: MustMoney("1.50")}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Draft{
		{Kind: "gift", Category: "Food", Amount: MustMoney("1")},
		{Kind: Expense, Category: "  ", Amount: MustMoney("1")},
		{Kind: Expense, Category: "Food", Amount: MustMoney("0")},
		{Kind: Expense, Category: "Food", Amount: MustMoney("-5")},
	}
	for i, d := range bads {
		if err := d.Validate(); !errors.Is(err, ErrValidation) {
			t.Fatalf("case %d expected validation error, got %v", i, err)
		}
	}
}

func TestDraftTransactionNormalises(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.FixedZone("CET", 3600))
	tx := Draft{Kind: Income, Category: " Salary ", Source: " ACME ", Amount: MustMoney("10.005")}.Transaction("id-1", now)

	if tx.ID != "id-1" || tx.Category != "Salary" || tx.Source != "ACME" {
		t.Fatalf("unexpected record %+v", tx)
	}
	if tx.Amount.String() != "10.01" {
		t.Fatalf("expected amount rounded to 10.01, got %s", tx.Amount)
	}
	if tx.Date.Location() != time.UTC || !tx.Date.Equal(now) {
		t.Fatalf("expected UTC instant of now, got %v", tx.Date)
	}
	if err := tx.Validate(); err != nil {
		t.Fatalf("expected valid transaction, got %v", err)
	}
}

func TestSameDay(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)
	a := time.Date(2024, 1, 9, 23, 0, 0, 0, time.UTC) // 2024-01-10 01:00 in loc
	b := time.Date(2024, 1, 10, 12, 0, 0, 0, loc)
	if !SameDay(a, b, loc) {
		t.Fatalf("expected same local day")
	}
	if SameDay(a, b, time.UTC) {
		t.Fatalf("expected different UTC days")
	}
	if got := LocalDay(a, loc); got.Day() != 10 || got.Hour() != 0 {
		t.Fatalf("unexpected local day %v", got)
	}
}
