package chart

import (
	"regexp"
	"testing"
)

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		name  string
		price float64
		want  string
	}{
		{name: "zero", price: 0, want: "0"},
		{name: "large grouped integer", price: 12345.678, want: "12,346"},
		{name: "threshold large", price: 10000, want: "10,000"},
		{name: "just below large", price: 9999.99, want: "9999.99"},
		{name: "hundreds two decimals", price: 150.5, want: "150.50"},
		{name: "units four decimals", price: 2.5, want: "2.5000"},
		{name: "exactly one", price: 1, want: "1.0000"},
		{name: "sub-unit compact zeros", price: 0.0000012345, want: "0.0(5)1234"},
		{name: "sub-unit single leading zero", price: 0.05, want: "0.0(1)5"},
		{name: "sub-unit no leading zeros", price: 0.1234567, want: "0.1235"},
		{name: "half", price: 0.5, want: "0.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatPrice(tt.price); got != tt.want {
				t.Errorf("FormatPrice(%v) = %q, want %q", tt.price, got, tt.want)
			}
		})
	}
}

func TestFormatMarketCap(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  string
	}{
		{name: "zero", value: 0, want: "$0"},
		{name: "billions", value: 2.5e9, want: "$2.50B"},
		{name: "millions", value: 3.25e6, want: "$3.25M"},
		{name: "thousands", value: 1500, want: "$1.5K"},
		{name: "small", value: 12.34, want: "$12.34"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatMarketCap(tt.value); got != tt.want {
				t.Errorf("FormatMarketCap(%v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	// The exact output depends on the local timezone, so only the shape is
	// asserted: "Jan 2, 15:04".
	pattern := regexp.MustCompile(`^[A-Z][a-z]{2} \d{1,2}, \d{2}:\d{2}$`)
	got := FormatTimestamp(1700000000)
	if !pattern.MatchString(got) {
		t.Errorf("FormatTimestamp(1700000000) = %q, want month-day hour:minute shape", got)
	}
}
