package chart

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatPrice renders a price for display. The rules depend on magnitude:
// zero is the literal "0", large prices are grouped integers, mid-range
// prices carry 2 or 4 decimals, and sub-unit prices use a compact
// leading-zero notation so long runs of zeros stay readable.
func FormatPrice(price float64) string {
	switch {
	case price == 0:
		return "0"
	case price >= 10000:
		return humanize.Comma(int64(math.Round(price)))
	case price >= 100:
		return strconv.FormatFloat(price, 'f', 2, 64)
	case price >= 1:
		return strconv.FormatFloat(price, 'f', 4, 64)
	default:
		return formatSubUnit(price)
	}
}

// formatSubUnit compacts prices below 1. A value like 0.0000012345 renders
// as "0.0(5)1234": the count of leading zero digits after the decimal point
// in parentheses, followed by the next four significant digits. Values with
// no leading-zero run fall back to four significant digits.
func formatSubUnit(price float64) string {
	fixed := strconv.FormatFloat(price, 'f', -1, 64)
	dot := strings.IndexByte(fixed, '.')
	if dot < 0 {
		return strconv.FormatFloat(price, 'g', 4, 64)
	}
	frac := fixed[dot+1:]
	zeros := 0
	for zeros < len(frac) && frac[zeros] == '0' {
		zeros++
	}
	if zeros == 0 || zeros == len(frac) {
		return strconv.FormatFloat(price, 'g', 4, 64)
	}
	digits := frac[zeros:]
	if len(digits) > 4 {
		digits = digits[:4]
	}
	return fmt.Sprintf("0.0(%d)%s", zeros, digits)
}

// FormatMarketCap renders a market-cap dollar amount with a magnitude
// suffix: billions and millions with 2 decimals, thousands with 1.
func FormatMarketCap(value float64) string {
	switch {
	case value == 0:
		return "$0"
	case value >= 1e9:
		return fmt.Sprintf("$%.2fB", value/1e9)
	case value >= 1e6:
		return fmt.Sprintf("$%.2fM", value/1e6)
	case value >= 1e3:
		return fmt.Sprintf("$%.1fK", value/1e3)
	default:
		return fmt.Sprintf("$%.2f", value)
	}
}

// FormatTimestamp renders seconds-since-epoch as a local month/day
// hour:minute display, e.g. "Mar 7, 14:05".
func FormatTimestamp(ts int64) string {
	return time.Unix(ts, 0).Format("Jan 2, 15:04")
}
