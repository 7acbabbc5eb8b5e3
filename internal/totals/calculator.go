// Package totals derives invoice amounts from line items, GST, discount and payments.
package totals

import (
	"github.com/shopspring/decimal"
)

// GSTRates lists the GST slabs an invoice may carry.
var GSTRates = []int{0, 5, 12, 18, 28}

// Line is the priced part of an invoice item.
type Line struct {
	PricePerUnit float64
	Qty          float64
}

// Totals is the computed financial breakdown of an invoice.
type Totals struct {
	LineTotals []float64 `json:"lineTotals"`
	Subtotal   float64   `json:"subtotal"`
	GSTPercent int       `json:"gstPercent"`
	GSTAmount  float64   `json:"gstAmount"`
	Discount   float64   `json:"discount"`
	GrandTotal float64   `json:"grandTotal"`
	Received   float64   `json:"receivedAmount"`
	BalanceDue float64   `json:"balanceDue"`
}

// PartiallyPaid reports the derived display state: something received, something still due.
func (t Totals) PartiallyPaid() bool {
	return t.Received > 0 && t.BalanceDue > 0
}

// ValidGSTPercent reports whether p is one of GSTRates.
func ValidGSTPercent(p int) bool {
	for _, rate := range GSTRates {
		if rate == p {
			return true
		}
	}
	return false
}

var hundred = decimal.NewFromInt(100)

// Compute recalculates every line total and the invoice aggregates.
// A discount larger than subtotal plus tax yields a negative grand total; the balance
// due never goes below zero.
func Compute(lines []Line, gstPercent int, discount, received float64) Totals {
	lineTotals := make([]float64, len(lines))
	subtotal := decimal.Zero
	for i, line := range lines {
		total := LineTotal(line)
		lineTotals[i] = total.InexactFloat64()
		subtotal = subtotal.Add(total)
	}

	gst := subtotal.Mul(decimal.NewFromInt(int64(gstPercent))).Div(hundred).Round(2)
	disc := decimal.NewFromFloat(discount)
	grand := subtotal.Add(gst).Sub(disc)
	recv := decimal.NewFromFloat(received)
	balance := decimal.Max(decimal.Zero, grand.Sub(recv))

	return Totals{
		LineTotals: lineTotals,
		Subtotal:   subtotal.InexactFloat64(),
		GSTPercent: gstPercent,
		GSTAmount:  gst.InexactFloat64(),
		Discount:   disc.InexactFloat64(),
		GrandTotal: grand.InexactFloat64(),
		Received:   recv.InexactFloat64(),
		BalanceDue: balance.InexactFloat64(),
	}
}

// LineTotal multiplies the raw pricePerUnit and qty and rounds only the product to paise.
func LineTotal(line Line) decimal.Decimal {
	return decimal.NewFromFloat(line.PricePerUnit).Mul(decimal.NewFromFloat(line.Qty)).Round(2)
}
