package utils

import "testing"

func TestParseAmountMinor(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"45.00", 4500, false},
		{"45", 4500, false},
		{"45.5", 4550, false},
		{"0.05", 5, false},
		{".99", 99, false},
		{"  12.34 ", 1234, false},
		{"-10.00", -1000, false},
		{"0", 0, false},
		{"", 0, true},
		{"abc", 0, true},
		{"10.123", 0, true},
		{"10.x5", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseAmountMinor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseAmountMinor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseAmountMinor(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFormatAmountMinor(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{4500, "45.00"},
		{5, "0.05"},
		{99, "0.99"},
		{0, "0.00"},
		{-1000, "-10.00"},
		{123456, "1234.56"},
	}
	for _, tt := range tests {
		if got := FormatAmountMinor(tt.in); got != tt.want {
			t.Errorf("FormatAmountMinor(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	for _, minor := range []int64{0, 1, 99, 100, 4500, 333, 999999} {
		got, err := ParseAmountMinor(FormatAmountMinor(minor))
		if err != nil || got != minor {
			t.Errorf("round trip of %d: got (%d, %v)", minor, got, err)
		}
	}
}

func TestApplyPercent(t *testing.T) {
	tests := []struct {
		minor   int64
		percent int64
		want    int64
	}{
		{4500, 100, 4500},
		{4500, 75, 3375},
		{4500, 50, 2250},
		{4500, 25, 1125},
		{4500, 0, 0},
		{3333, 25, 833},  // 833.25 rounds down
		{3333, 75, 2500}, // 2499.75 rounds up
		{1, 50, 1},       // 0.5 rounds half up
	}
	for _, tt := range tests {
		if got := ApplyPercent(tt.minor, tt.percent); got != tt.want {
			t.Errorf("ApplyPercent(%d, %d) = %d, want %d", tt.minor, tt.percent, got, tt.want)
		}
	}
}
