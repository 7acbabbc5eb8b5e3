package invoices

import (
	"github.com/gstbill/gstbill/internal/dataset"
)

type (
	Invoice     = dataset.Invoice
	Item        = dataset.Item
	Status      = dataset.Status
	PaymentMode = dataset.PaymentMode
)

// Patch is a field-level update. Nil fields keep the stored value; Items, when present,
// replaces the whole item list. Identity and lifecycle timestamps cannot be patched.
type Patch struct {
	InvoiceNumber *int    `json:"invoiceNumber,omitempty"`
	Date          *string `json:"date,omitempty"`

	CustomerID    *string `json:"customerId,omitempty"`
	CustomerName  *string `json:"customerName,omitempty"`
	CustomerPhone *string `json:"customerPhone,omitempty"`
	CustomerGSTIN *string `json:"customerGstin,omitempty"`

	Items          *[]Item  `json:"items,omitempty"`
	Subtotal       *float64 `json:"subtotal,omitempty"`
	GSTPercent     *int     `json:"gstPercent,omitempty"`
	GSTAmount      *float64 `json:"gstAmount,omitempty"`
	Discount       *float64 `json:"discount,omitempty"`
	GrandTotal     *float64 `json:"grandTotal,omitempty"`
	ReceivedAmount *float64 `json:"receivedAmount,omitempty"`
	ReceivedDate   *string  `json:"receivedDate,omitempty"`
	BalanceDue     *float64 `json:"balanceDue,omitempty"`
	AmountInWords  *string  `json:"amountInWords,omitempty"`

	Status      *Status            `json:"status,omitempty"`
	PaymentDate *string            `json:"paymentDate,omitempty"`
	PaymentMode *PaymentMode       `json:"paymentMode,omitempty"`
	PaymentQrID *string            `json:"paymentQrId,omitempty"`
	PaymentQr   *dataset.PaymentQR `json:"paymentQr,omitempty"`
	Notes       *string            `json:"notes,omitempty"`
}

// Apply merges p into inv.
func (p Patch) Apply(inv *Invoice) {
	setInt(&inv.InvoiceNumber, p.InvoiceNumber)
	setString(&inv.Date, p.Date)
	setString(&inv.CustomerID, p.CustomerID)
	setString(&inv.CustomerName, p.CustomerName)
	setString(&inv.CustomerPhone, p.CustomerPhone)
	setString(&inv.CustomerGSTIN, p.CustomerGSTIN)
	if p.Items != nil {
		inv.Items = append([]Item(nil), (*p.Items)...)
	}
	setFloat(&inv.Subtotal, p.Subtotal)
	setInt(&inv.GSTPercent, p.GSTPercent)
	setFloat(&inv.GSTAmount, p.GSTAmount)
	setFloat(&inv.Discount, p.Discount)
	setFloat(&inv.GrandTotal, p.GrandTotal)
	setFloat(&inv.ReceivedAmount, p.ReceivedAmount)
	setString(&inv.ReceivedDate, p.ReceivedDate)
	setFloat(&inv.BalanceDue, p.BalanceDue)
	setString(&inv.AmountInWords, p.AmountInWords)
	if p.Status != nil {
		inv.Status = *p.Status
	}
	setString(&inv.PaymentDate, p.PaymentDate)
	if p.PaymentMode != nil {
		inv.PaymentMode = *p.PaymentMode
	}
	setString(&inv.PaymentQrID, p.PaymentQrID)
	if p.PaymentQr != nil {
		qr := *p.PaymentQr
		inv.PaymentQr = &qr
	}
	setString(&inv.Notes, p.Notes)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

// Criteria narrows the active invoice list. Empty or "all" leaves a field unconstrained;
// Month only applies together with Year.
type Criteria struct {
	Status      string `json:"status"`
	PaymentMode string `json:"paymentMode"`
	Customer    string `json:"customer"`
	Year        string `json:"year"`
	Month       string `json:"month"`
}

// Stats aggregates active invoices by payment status.
type Stats struct {
	TotalRevenue   float64 `json:"totalRevenue"`
	InvoiceCount   int     `json:"invoiceCount"`
	PaidCount      int     `json:"paidCount"`
	PaidAmount     float64 `json:"paidAmount"`
	UnpaidCount    int     `json:"unpaidCount"`
	UnpaidAmount   float64 `json:"unpaidAmount"`
	PartialCount   int     `json:"partialCount"`
	PartialBalance float64 `json:"partialBalance"`
}

// DisplayState is the payment state shown to users, including the derived partial state.
func DisplayState(inv Invoice) string {
	switch {
	case inv.Status == dataset.StatusPaid:
		return "paid"
	case inv.ReceivedAmount > 0 && inv.BalanceDue > 0:
		return "partial"
	default:
		return "unpaid"
	}
}
