package core

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// Taxonomy maps each kind to its ordered list of category names.
// Names are unique per kind under Unicode case folding.
type Taxonomy map[Kind][]string

// DefaultTaxonomy is the seed used when nothing has been persisted yet.
func DefaultTaxonomy() Taxonomy {
	return Taxonomy{
		Income:  {"Salary", "Freelance", "Gift"},
		Expense: {"Food", "Transport", "Bills", "Shopping", "Other"},
	}
}

func foldName(s string) string {
	// Casers are stateful; build one per call.
	return cases.Fold().String(strings.TrimSpace(s))
}

// Names returns a copy of the categories for kind.
func (t Taxonomy) Names(kind Kind) []string {
	return append([]string(nil), t[kind]...)
}

// IndexOf returns the position of name under case folding, or -1.
func (t Taxonomy) IndexOf(kind Kind, name string) int {
	key := foldName(name)
	for i, n := range t[kind] {
		if foldName(n) == key {
			return i
		}
	}
	return -1
}

func (t Taxonomy) Contains(kind Kind, name string) bool {
	return t.IndexOf(kind, name) >= 0
}

// Add appends name to kind's list.
func (t Taxonomy) Add(kind Kind, name string) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyCategory
	}
	if t.Contains(kind, name) {
		return fmt.Errorf("%w: category %q already exists for %s", ErrDuplicate, name, kind)
	}
	t[kind] = append(t[kind], name)
	return nil
}

// Remove deletes name (matched case-insensitively) from kind's list.
func (t Taxonomy) Remove(kind Kind, name string) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	i := t.IndexOf(kind, name)
	if i < 0 {
		return fmt.Errorf("%w: category %q for %s", ErrNotFound, name, kind)
	}
	names := t[kind]
	t[kind] = append(names[:i:i], names[i+1:]...)
	return nil
}

func (t Taxonomy) Clone() Taxonomy {
	out := make(Taxonomy, len(t))
	for k, v := range t {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Empty reports whether no kind has any category.
func (t Taxonomy) Empty() bool {
	for _, v := range t {
		if len(v) > 0 {
			return false
		}
	}
	return true
}

// Normalize drops blanks, unknown kinds and case-folded duplicates while
// keeping first occurrences in order.
func (t Taxonomy) Normalize() Taxonomy {
	out := make(Taxonomy, 2)
	for _, k := range Kinds() {
		seen := map[string]struct{}{}
		names := make([]string, 0, len(t[k]))
		for _, n := range t[k] {
			n = strings.TrimSpace(n)
			if n == "" {
				continue
			}
			key := foldName(n)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			names = append(names, n)
		}
		out[k] = names
	}
	return out
}
