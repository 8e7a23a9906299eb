package utils

import "testing"

func TestParsePrice(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected float64
	}{
		{"Dot As Thousands", "$1.234", 1234},
		{"Colombian Price", "$150.000", 150000},
		{"Two Decimals Kept", "1.23", 1.23},
		{"Cents", "$12.50", 12.5},
		{"Comma Thousands", "$1,500", 1500},
		{"Comma And Decimals", "2,550.50", 2550.50},
		{"Leading Space", " $ 99", 99},
		{"Integer Price", "99", 99},
		{"Trailing Text", "120000 COP", 120000},
		{"Two Dots Keeps Prefix", "$1.234.567", 1.234},
		{"Negative Clamped", "-50", 0},
		{"Empty String", "", 0},
		{"Invalid String", "Consultar", 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := ParsePrice(tc.input)
			if result != tc.expected {
				t.Errorf("ParsePrice(%q) = %f; want %f", tc.input, result, tc.expected)
			}
		})
	}
}

func TestParseLeadingInt(t *testing.T) {
	testCases := []struct {
		input  string
		want   int
		wantOK bool
	}{
		{"5", 5, true},
		{" 12 unidades", 12, true},
		{"3.9", 3, true},
		{"-2", -2, true},
		{"0", 0, true},
		{"", 0, false},
		{"agotado", 0, false},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, ok := ParseLeadingInt(tc.input)
			if got != tc.want || ok != tc.wantOK {
				t.Errorf("ParseLeadingInt(%q) = (%d, %v); want (%d, %v)", tc.input, got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestFormatCOP(t *testing.T) {
	testCases := []struct {
		input    float64
		expected string
	}{
		{0, "$0"},
		{999, "$999"},
		{250000, "$250.000"},
		{1234567, "$1.234.567"},
		{12.5, "$13"},
		{12.49, "$12"},
		{1234.56, "$1.235"},
	}

	for _, tc := range testCases {
		if got := FormatCOP(tc.input); got != tc.expected {
			t.Errorf("FormatCOP(%v) = %q; want %q", tc.input, got, tc.expected)
		}
	}
}
