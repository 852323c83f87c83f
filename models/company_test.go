package models

import "testing"

func TestNormalizeTicker_Idempotent(t *testing.T) {
	inputs := []string{"aapl", " MSFT ", "brk", "Goog1", "x", "  nvda\t"}
	for _, in := range inputs {
		once := NormalizeTicker(in)
		twice := NormalizeTicker(once)
		if once != twice {
			t.Errorf("NormalizeTicker(%q) = %q, second pass = %q", in, once, twice)
		}
	}
}

func TestIsTicker(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"AAPL", true},
		{"A", true},
		{"BRK1", true},
		{"ABCDEFGHIJ", true},
		{"ABCDEFGHIJK", false},
		{"aapl", false},
		{"123", false},
		{"BRK.B", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := IsTicker(tt.in); got != tt.want {
				t.Errorf("IsTicker(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLooksLikeTicker(t *testing.T) {
	if !LooksLikeTicker(" msft ") {
		t.Error("expected lowercase padded ticker to look like a ticker")
	}
	if LooksLikeTicker("Apple Inc") {
		t.Error("names with spaces should not look like a ticker")
	}
}
