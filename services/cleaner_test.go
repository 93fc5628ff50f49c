package services

import (
	"io"
	"testing"

	"airbnb-analyzer/utils"
)

func newTestLogger() *utils.Logger {
	l := utils.NewLogger()
	l.SetOutput(io.Discard)
	return l
}

func TestCleanerAmount(t *testing.T) {
	c := NewCleaner(newTestLogger())

	tests := []struct {
		raw    string
		want   float64
		wantOK bool
	}{
		{"120", 120, true},
		{" -3.5 ", -3.5, true},
		{"$1,200.50", 1200.50, true},
		{"฿3,500", 3500, true},
		{"USD 99", 99, true},
		{"(25.00)", -25, true},
		{"-$10", -10, true},
		{"$-10", -10, true},
		{"", 0, false},
		{"late", 0, false},
		{"Reference 123", 0, false},
		{"1,2", 0, false},
		{"(25.00", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"03/01/2024", 0, false},
	}

	for _, tt := range tests {
		got, ok := c.Amount(tt.raw)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("Amount(%q) = %.2f, %v; want %.2f, %v", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestCleanerText(t *testing.T) {
	c := NewCleaner(newTestLogger())

	tests := []struct {
		raw  string
		want string
	}{
		{"  Sea   view\tloft ", "Sea view loft"},
		{"Ann", "Ann"},
		{"   ", ""},
	}

	for _, tt := range tests {
		if got := c.Text(tt.raw); got != tt.want {
			t.Errorf("Text(%q) = %q; want %q", tt.raw, got, tt.want)
		}
	}
}
