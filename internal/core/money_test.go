package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{".5", 50, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
		{"1.٣", 0, false},
		{"1.٣٣", 0, false},
		{"٣", 0, false},
		{"１２", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := []struct {
		m    Money
		want string
	}{
		{Money{Cents: 0}, "0,00 €"},
		{Money{Cents: 5}, "0,05 €"},
		{Money{Cents: 1234}, "12,34 €"},
		{Money{Cents: -250}, "-2,50 €"},
	}
	for _, tc := range cases {
		if got := tc.m.String(); got != tc.want {
			t.Fatalf("Money{%d}.String() = %q, want %q", tc.m.Cents, got, tc.want)
		}
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a := Money{Cents: 1000}
	b := Money{Cents: 250}
	if got := a.Add(b).Cents; got != 1250 {
		t.Fatalf("Add = %d", got)
	}
	if got := b.Sub(a).Cents; got != -750 {
		t.Fatalf("Sub = %d", got)
	}
	if got := b.Times(3).Cents; got != 750 {
		t.Fatalf("Times = %d", got)
	}
}
