package invoices

import (
	"fmt"

	"github.com/gstbill/gstbill/internal/inr"
	"github.com/gstbill/gstbill/internal/shared"
	"github.com/gstbill/gstbill/internal/totals"
)

// PreviewInput carries the amount inputs of an invoice form that is still being edited.
type PreviewInput struct {
	Items          []Item  `json:"items"`
	GSTPercent     int     `json:"gstPercent"`
	Discount       float64 `json:"discount"`
	ReceivedAmount float64 `json:"receivedAmount"`
}

// Preview is the live breakdown shown under the form, with display strings.
type Preview struct {
	totals.Totals
	PartiallyPaid bool   `json:"partiallyPaid"`
	AmountInWords string `json:"amountInWords"`
	Display       struct {
		Subtotal   string `json:"subtotal"`
		GSTAmount  string `json:"gstAmount"`
		Discount   string `json:"discount"`
		GrandTotal string `json:"grandTotal"`
		Received   string `json:"receivedAmount"`
		BalanceDue string `json:"balanceDue"`
	} `json:"display"`
}

// ComputePreview derives totals for in without persisting anything. Blank-name items are
// still counted so the preview follows the form as it is typed.
func ComputePreview(in PreviewInput) (Preview, error) {
	if !totals.ValidGSTPercent(in.GSTPercent) {
		return Preview{}, fmt.Errorf("%w: gst percent %d not in %v", shared.ErrInvalidInput, in.GSTPercent, totals.GSTRates)
	}
	lines := make([]totals.Line, len(in.Items))
	for i, it := range in.Items {
		lines[i] = totals.Line{PricePerUnit: it.PricePerUnit, Qty: it.Qty}
	}
	t := totals.Compute(lines, in.GSTPercent, in.Discount, in.ReceivedAmount)

	p := Preview{
		Totals:        t,
		PartiallyPaid: t.PartiallyPaid(),
		AmountInWords: inr.AmountInWords(t.GrandTotal),
	}
	p.Display.Subtotal = inr.FormatCurrency(t.Subtotal)
	p.Display.GSTAmount = inr.FormatCurrency(t.GSTAmount)
	p.Display.Discount = inr.FormatCurrency(t.Discount)
	p.Display.GrandTotal = inr.FormatCurrency(t.GrandTotal)
	p.Display.Received = inr.FormatCurrency(t.Received)
	p.Display.BalanceDue = inr.FormatCurrency(t.BalanceDue)
	return p, nil
}
