package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1.00", true},
		{"1.0", "1.00", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{"0.01", "0.01", true},
		{"1.005", "1.01", true}, // half-up rounding
		{"1.004", "1.00", true},
		{" 2.50 ", "2.50", true},
		{"-5", "-5.00", true},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseMoney(tc.in)
		if tc.ok {
			if err != nil || got.String() != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if !errors.Is(err, ErrValidation) {
			t.Fatalf("%q expected validation error, got %v", tc.in, err)
		}
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := MustMoney("0.01").Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	for _, s := range []string{"0", "-5", "0.004"} {
		if err := MustMoney(s).Validate(); !errors.Is(err, ErrValidation) {
			t.Fatalf("%s: expected validation error, got %v", s, err)
		}
	}
}

func TestMoneyArithmeticIsExact(t *testing.T) {
	sum := Zero
	for i := 0; i < 10; i++ {
		sum = sum.Add(MustMoney("0.10"))
	}
	if !sum.Equal(MustMoney("1")) {
		t.Fatalf("expected 1.00, got %s", sum)
	}
	if got := MustMoney("800").Sub(MustMoney("850.5")); got.String() != "-50.50" {
		t.Fatalf("unexpected difference %s", got)
	}
	if MoneyFromCents(1234).String() != "12.34" || MustMoney("12.34").Cents() != 1234 {
		t.Fatalf("cents conversion mismatch")
	}
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Amount Money `json:"amount"`
	}{MustMoney("1000")})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"amount":1000.00}` {
		t.Fatalf("unexpected json %s", b)
	}

	for _, in := range []string{`12.345`, `"12.345"`} {
		var m Money
		if err := json.Unmarshal([]byte(in), &m); err != nil {
			t.Fatalf("%s: %v", in, err)
		}
		if m.String() != "12.35" {
			t.Fatalf("%s: expected 12.35, got %s", in, m)
		}
	}

	var m Money
	if err := json.Unmarshal([]byte(`"abc"`), &m); err == nil {
		t.Fatalf("expected error for non-numeric amount")
	}
}
