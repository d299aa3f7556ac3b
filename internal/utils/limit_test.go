package utils

import "testing"

func TestAtoiDefault(t *testing.T) {
	cases := []struct {
		s    string
		def  int
		want int
	}{
		{"", 10, 10},
		{"42", 0, 42},
		{"-13", 1, -13},
		{"0012", 99, 12},
		{"x", 5, 5},
		{" 42", 7, 7},
		{"999999999999999999999999", -1, -1},
	}

	for _, tc := range cases {
		if got := AtoiDefault(tc.s, tc.def); got != tc.want {
			t.Fatalf("AtoiDefault(%q, %d) = %d; want %d", tc.s, tc.def, got, tc.want)
		}
	}
}

func TestParseLimit(t *testing.T) {
	cases := []struct {
		s        string
		def, max int
		want     int
	}{
		{"", 50, 200, 50},
		{"abc", 50, 200, 50},
		{" 20 ", 50, 200, 20},
		{"0", 50, 200, 1},
		{"-4", 50, 200, 1},
		{"1000", 50, 200, 200},
		{"1000", 50, 0, 1000},
	}
	for _, tc := range cases {
		if got := ParseLimit(tc.s, tc.def, tc.max); got != tc.want {
			t.Fatalf("ParseLimit(%q, %d, %d) = %d; want %d", tc.s, tc.def, tc.max, got, tc.want)
		}
	}
}
