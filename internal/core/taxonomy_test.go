package core

import (
	"errors"
	"testing"
)

func TestTaxonomyAddIsCaseInsensitive(t *testing.T) {
	tax := Taxonomy{}
	if err := tax.Add(Expense, "Food"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tax.Add(Expense, "food"); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if names := tax.Names(Expense); len(names) != 1 || names[0] != "Food" {
		t.Fatalf("expected exactly one Food, got %v", names)
	}
	// Same name under the other kind is fine.
	if err := tax.Add(Income, "FOOD"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTaxonomyFoldsUnicode(t *testing.T) {
	tax := Taxonomy{Expense: {"École"}}
	if !tax.Contains(Expense, "ÉCOLE") || !tax.Contains(Expense, "école") {
		t.Fatalf("expected case-folded match")
	}
}

func TestTaxonomyAddRejectsBlank(t *testing.T) {
	tax := DefaultTaxonomy()
	if err := tax.Add(Expense, "   "); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := tax.Add("other", "X"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for kind, got %v", err)
	}
}

func TestTaxonomyRemove(t *testing.T) {
	tax := DefaultTaxonomy()
	clone := tax.Clone()
	if err := tax.Remove(Expense, "bills"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tax.Contains(Expense, "Bills") {
		t.Fatalf("expected Bills removed")
	}
	if !clone.Contains(Expense, "Bills") {
		t.Fatalf("clone must not be affected")
	}
	if err := tax.Remove(Expense, "Bills"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	want := []string{"Food", "Transport", "Shopping", "Other"}
	got := tax.Names(Expense)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order changed: %v", got)
		}
	}
}

func TestTaxonomyNormalize(t *testing.T) {
	tax := Taxonomy{Expense: {"Food", " ", "FOOD", "Rent"}, "bogus": {"x"}}.Normalize()
	if got := tax.Names(Expense); len(got) != 2 || got[0] != "Food" || got[1] != "Rent" {
		t.Fatalf("unexpected %v", got)
	}
	if _, ok := tax["bogus"]; ok {
		t.Fatalf("unknown kinds must be dropped")
	}
	if (Taxonomy{}).Empty() != true || DefaultTaxonomy().Empty() {
		t.Fatalf("Empty mismatch")
	}
}
