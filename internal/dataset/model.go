// Package dataset holds the persisted invoicing dataset and the gateways that load and
// save it as a whole.
package dataset

import "time"

// DefaultStartNumber is the counter baseline of an empty dataset; the first invoice is 101.
const DefaultStartNumber = 100

// Status is the binary payment status of an invoice.
type Status string

const (
	StatusUnpaid Status = "unpaid"
	StatusPaid   Status = "paid"
)

// PaymentMode is how the customer pays.
type PaymentMode string

const (
	PaymentCash  PaymentMode = "cash"
	PaymentUPI   PaymentMode = "upi"
	PaymentBank  PaymentMode = "bank"
	PaymentOther PaymentMode = "other"
)

// Label is the human label shown on invoices and matched by search.
func (m PaymentMode) Label() string {
	switch m {
	case PaymentCash:
		return "Cash"
	case PaymentUPI:
		return "UPI"
	case PaymentBank:
		return "Bank Transfer"
	case PaymentOther:
		return "Other"
	case "":
		return "—"
	default:
		return string(m)
	}
}

// Business is the singleton seller profile.
type Business struct {
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Phone   string  `json:"phone"`
	GSTIN   string  `json:"gstin"`
	Logo    *string `json:"logo"`
}

// Customer is a buyer record; invoices copy its fields rather than linking to it.
type Customer struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	GSTIN   string `json:"gstin"`
	Address string `json:"address"`
}

// Product is a template for quick line-item entry.
type Product struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Unit         string  `json:"unit"`
	DefaultPrice float64 `json:"defaultPrice"`
}

// UpiAccount is a payment destination shown as a QR code on invoices.
type UpiAccount struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	UpiID   string `json:"upiId"`
	QRImage string `json:"qrImage,omitempty"`
}

// PaymentQR is the UPI account as it was when the invoice was saved.
type PaymentQR struct {
	Label   string `json:"label"`
	UpiID   string `json:"upiId"`
	QRImage string `json:"qrImage,omitempty"`
}

// Counter tracks the last committed invoice number.
type Counter struct {
	LastInvoiceNumber int `json:"lastInvoiceNumber"`
}

// Item is one invoice line. Total always equals PricePerUnit * Qty.
type Item struct {
	Name         string  `json:"name"`
	PricePerUnit float64 `json:"pricePerUnit"`
	Unit         string  `json:"unit"`
	Qty          float64 `json:"qty"`
	Total        float64 `json:"total"`
}

// Invoice is a saved invoice, active or in the recycle bin.
type Invoice struct {
	ID            string `json:"id"`
	InvoiceNumber int    `json:"invoiceNumber"`
	Date          string `json:"date"`

	CustomerID    string `json:"customerId"`
	CustomerName  string `json:"customerName"`
	CustomerPhone string `json:"customerPhone"`
	CustomerGSTIN string `json:"customerGstin"`

	Items          []Item  `json:"items"`
	Subtotal       float64 `json:"subtotal"`
	GSTPercent     int     `json:"gstPercent"`
	GSTAmount      float64 `json:"gstAmount"`
	Discount       float64 `json:"discount"`
	GrandTotal     float64 `json:"grandTotal"`
	ReceivedAmount float64 `json:"receivedAmount"`
	ReceivedDate   string  `json:"receivedDate"`
	BalanceDue     float64 `json:"balanceDue"`
	AmountInWords  string  `json:"amountInWords"`

	Status      Status      `json:"status"`
	PaymentDate string      `json:"paymentDate"`
	PaymentMode PaymentMode `json:"paymentMode"`
	PaymentQrID string      `json:"paymentQrId"`
	PaymentQr   *PaymentQR  `json:"paymentQr,omitempty"`
	Notes       string      `json:"notes"`

	CreatedAt time.Time  `json:"createdAt"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// Clone returns a deep copy.
func (inv Invoice) Clone() Invoice {
	out := inv
	if inv.Items != nil {
		out.Items = append([]Item(nil), inv.Items...)
	}
	if inv.PaymentQr != nil {
		qr := *inv.PaymentQr
		out.PaymentQr = &qr
	}
	if inv.DeletedAt != nil {
		ts := *inv.DeletedAt
		out.DeletedAt = &ts
	}
	return out
}

// Dataset is everything the application persists, loaded and saved as one unit.
type Dataset struct {
	Business        Business     `json:"business"`
	Customers       []Customer   `json:"customers"`
	Products        []Product    `json:"products"`
	Invoices        []Invoice    `json:"invoices"`
	DeletedInvoices []Invoice    `json:"deletedInvoices"`
	UpiAccounts     []UpiAccount `json:"upiAccounts"`
	Counter         Counter      `json:"counter"`
}

// Default returns the dataset used when nothing has been stored yet.
func Default() *Dataset {
	return &Dataset{
		Business:        Business{Name: "Your Business"},
		Customers:       []Customer{},
		Products:        []Product{},
		Invoices:        []Invoice{},
		DeletedInvoices: []Invoice{},
		UpiAccounts:     []UpiAccount{},
		Counter:         Counter{LastInvoiceNumber: DefaultStartNumber},
	}
}

// Normalize replaces nil collections with empty ones so they encode as [].
func (d *Dataset) Normalize() *Dataset {
	if d.Customers == nil {
		d.Customers = []Customer{}
	}
	if d.Products == nil {
		d.Products = []Product{}
	}
	if d.Invoices == nil {
		d.Invoices = []Invoice{}
	}
	if d.DeletedInvoices == nil {
		d.DeletedInvoices = []Invoice{}
	}
	if d.UpiAccounts == nil {
		d.UpiAccounts = []UpiAccount{}
	}
	return d
}
