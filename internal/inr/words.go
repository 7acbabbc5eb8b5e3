package inr

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	crore    = 10000000
	lakh     = 100000
	thousand = 1000
)

var (
	ones = []string{
		"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
		"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen",
		"Seventeen", "Eighteen", "Nineteen",
	}
	tens = []string{
		"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety",
	}
)

// AmountInWords spells amount on the Indian scale.
//
//	2700    → "Two Thousand Seven Hundred Rupees Only"
//	1050.75 → "One Thousand Fifty Rupees and Seventy Five Paise Only"
//	0       → "Zero Rupees Only"
//
// Only the magnitude is spelled; callers print the sign themselves.
func AmountInWords(amount float64) string {
	d := decimal.NewFromFloat(amount)
	if d.IsZero() {
		return "Zero Rupees Only"
	}

	floor := d.Floor()
	rupees := floor.Abs().IntPart()
	paise := d.Sub(floor).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	if paise >= 100 {
		rupees++
		paise = 0
	}

	words := spell(rupees)
	if words == "" {
		words = "Zero"
	}
	if paise > 0 {
		return words + " Rupees and " + group(paise) + " Paise Only"
	}
	return words + " Rupees Only"
}

// spell converts n using crore, lakh, thousand and hundred groups.
func spell(n int64) string {
	var parts []string
	if n >= crore {
		parts = append(parts, spell(n/crore)+" Crore")
		n %= crore
	}
	if n >= lakh {
		parts = append(parts, group(n/lakh)+" Lakh")
		n %= lakh
	}
	if n >= thousand {
		parts = append(parts, group(n/thousand)+" Thousand")
		n %= thousand
	}
	if n > 0 {
		parts = append(parts, group(n))
	}
	return strings.Join(parts, " ")
}

// group spells 1..999 without inserting "and".
func group(n int64) string {
	switch {
	case n == 0:
		return ""
	case n < 20:
		return ones[n]
	case n < 100:
		if n%10 == 0 {
			return tens[n/10]
		}
		return tens[n/10] + " " + ones[n%10]
	default:
		if n%100 == 0 {
			return ones[n/100] + " Hundred"
		}
		return ones[n/100] + " Hundred " + group(n%100)
	}
}
