package core

import (
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"12.34", "12.34", true},
		{"12,34", "12.34", true},
		{" 100 ", "100", true},
		{"0", "0", true},
		{"0,00", "0", true},
		{"1850.00", "1850", true},
		{"", "", false},
		{"abc", "", false},
		{"-1", "", false},
		{"-0,50", "", false},
		{"12.34.56", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil {
				t.Fatalf("ParseAmount(%q): unexpected error %v", tc.in, err)
			}
			if got.String() != tc.want {
				t.Fatalf("ParseAmount(%q) = %s, want %s", tc.in, got, tc.want)
			}
			continue
		}
		if err == nil {
			t.Fatalf("ParseAmount(%q): expected error, got %s", tc.in, got)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	d, err := ParseAmount("1234.5")
	if err != nil {
		t.Fatal(err)
	}
	if got := FormatAmount(d); got != "1234,50" {
		t.Fatalf("FormatAmount = %q, want %q", got, "1234,50")
	}
}

func TestMaskCardNumber(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"1234567812345678", "**** 5678"},
		{"  1234 ", "**** 1234"},
		{"123", "123"},
		{"**** 5678", "**** 5678"}, // re-saving an already masked number
	}
	for _, tc := range cases {
		if got := MaskCardNumber(tc.in); got != tc.want {
			t.Fatalf("MaskCardNumber(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
