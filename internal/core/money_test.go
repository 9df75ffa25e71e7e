package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"199,90", 19990, true},
		{"0", 0, true},
		{"0.01", 1, true},
		{"12.345", 1235, true}, // half-up rounding
		{"12.344", 1234, true},
		{" 2.50 ", 250, true},
		{"-5", -500, true},
		{"-0,015", -2, true},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"1.234,56", 0, false},
		{"1e3", 0, false},
		{"--1", 0, false},
		{"-", 0, false},
		{".", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.Cents != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error, got %d", tc.in, got.Cents)
		}
	}
}

func TestMoneyArithmeticIsExact(t *testing.T) {
	salary, _ := ParseAmount("3000.00")
	total := Money{}
	for _, s := range []string{"199.90", "50.00", "25.50"} {
		m, err := ParseAmount(s)
		if err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}
		total = total.Add(m)
	}
	if total.String() != "275.40" {
		t.Fatalf("total = %s, want 275.40", total)
	}
	if got := salary.Sub(total).String(); got != "2724.60" {
		t.Fatalf("balance = %s, want 2724.60", got)
	}
}

func TestMoneyString(t *testing.T) {
	cases := map[int64]string{
		0:     "0.00",
		5:     "0.05",
		12345: "123.45",
		-250:  "-2.50",
	}
	for cents, want := range cases {
		if got := (Money{Cents: cents}).String(); got != want {
			t.Errorf("Money{%d}.String() = %q, want %q", cents, got, want)
		}
	}
}
