// Package masterdata manages the records invoices draw from: the business profile,
// customers, products and UPI accounts.
package masterdata

import (
	"strings"

	"github.com/gstbill/gstbill/internal/dataset"
)

type (
	Business   = dataset.Business
	Customer   = dataset.Customer
	Product    = dataset.Product
	UpiAccount = dataset.UpiAccount
)

// BusinessPatch updates the seller profile. An empty Logo removes the logo.
type BusinessPatch struct {
	Name    *string `json:"name,omitempty"`
	Address *string `json:"address,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	GSTIN   *string `json:"gstin,omitempty"`
	Logo    *string `json:"logo,omitempty"`
}

func (p BusinessPatch) apply(b *Business) {
	set(&b.Name, p.Name)
	set(&b.Address, p.Address)
	set(&b.Phone, p.Phone)
	set(&b.GSTIN, p.GSTIN)
	if p.Logo != nil {
		if *p.Logo == "" {
			b.Logo = nil
		} else {
			logo := *p.Logo
			b.Logo = &logo
		}
	}
}

// CustomerPatch updates a customer; nil fields are kept.
type CustomerPatch struct {
	Name    *string `json:"name,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	GSTIN   *string `json:"gstin,omitempty"`
	Address *string `json:"address,omitempty"`
}

func (p CustomerPatch) apply(c *Customer) {
	set(&c.Name, p.Name)
	set(&c.Phone, p.Phone)
	set(&c.GSTIN, p.GSTIN)
	set(&c.Address, p.Address)
}

// ProductPatch updates a product; nil fields are kept.
type ProductPatch struct {
	Name         *string  `json:"name,omitempty"`
	Unit         *string  `json:"unit,omitempty"`
	DefaultPrice *float64 `json:"defaultPrice,omitempty"`
}

func (p ProductPatch) apply(pr *Product) {
	set(&pr.Name, p.Name)
	set(&pr.Unit, p.Unit)
	if p.DefaultPrice != nil {
		pr.DefaultPrice = *p.DefaultPrice
	}
}

// UpiAccountPatch updates a UPI account; nil fields are kept. Invoices already saved
// keep their own snapshot of the account.
type UpiAccountPatch struct {
	Label   *string `json:"label,omitempty"`
	UpiID   *string `json:"upiId,omitempty"`
	QRImage *string `json:"qrImage,omitempty"`
}

func (p UpiAccountPatch) apply(a *UpiAccount) {
	set(&a.Label, p.Label)
	set(&a.UpiID, p.UpiID)
	set(&a.QRImage, p.QRImage)
}

func set(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

// validation shapes; the stored records carry no tags.
type (
	businessRules struct {
		Name  string `validate:"required,max=200"`
		GSTIN string `validate:"omitempty,len=15,alphanum"`
	}
	customerRules struct {
		Name  string `validate:"required,max=200"`
		GSTIN string `validate:"omitempty,len=15,alphanum"`
	}
	productRules struct {
		Name         string  `validate:"required,max=200"`
		DefaultPrice float64 `validate:"gte=0"`
	}
	upiRules struct {
		Label string `validate:"required,max=100"`
		UpiID string `validate:"required,contains=@"`
	}
)
