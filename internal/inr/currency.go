// Package inr formats rupee amounts the way printed Indian invoices expect them.
package inr

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Glyph is the rupee sign prefixed to formatted amounts.
const Glyph = "₹"

// FormatCurrency renders amount with Indian digit grouping, e.g. 12345678.5 → "₹1,23,45,678.50".
// Whole amounts drop the decimals ("₹1,00,000"); negatives read "-₹500".
func FormatCurrency(amount float64) string {
	d := decimal.NewFromFloat(amount)
	negative := d.IsNegative()
	fixed := d.Abs().StringFixed(2)

	intPart, decPart, _ := strings.Cut(fixed, ".")
	grouped := GroupDigits(intPart)

	var b strings.Builder
	if negative && fixed != "0.00" {
		b.WriteByte('-')
	}
	b.WriteString(Glyph)
	b.WriteString(grouped)
	if decPart != "00" {
		b.WriteByte('.')
		b.WriteString(decPart)
	}
	return b.String()
}

// GroupDigits inserts commas into a string of digits: the last three digits form
// one group, everything before it is grouped in pairs.
func GroupDigits(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	last3 := digits[len(digits)-3:]
	rest := digits[:len(digits)-3]

	var groups []string
	for len(rest) > 2 {
		groups = append([]string{rest[len(rest)-2:]}, groups...)
		rest = rest[:len(rest)-2]
	}
	groups = append([]string{rest}, groups...)
	return strings.Join(groups, ",") + "," + last3
}
