package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/gstbill/gstbill/internal/app"
	"github.com/gstbill/gstbill/internal/dataset"
	"github.com/gstbill/gstbill/internal/invoices"
	"github.com/gstbill/gstbill/internal/masterdata"
)

// Seeds a demo shop into the configured store. An existing dataset with invoices is left alone.
func main() {
	ctx := context.Background()
	if err := app.LoadDotEnv(); err != nil {
		log.Printf("load .env: %v", err)
	}
	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	storage, err := app.OpenStorage(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("open storage: %v", err)
	}
	defer storage.Close()

	services, err := app.NewServices(cfg, logger, storage, nil)
	if err != nil {
		log.Fatalf("build services: %v", err)
	}
	if len(services.Store.List(ctx)) > 0 {
		logger.Info("dataset already has invoices, nothing seeded")
		return
	}

	logger.Info("seeding business profile")
	if _, err := services.MasterData.UpdateBusiness(ctx, masterdata.BusinessPatch{
		Name:    ptr("Lakshmi Textiles"),
		Address: ptr("14 Gandhi Bazaar, Bengaluru 560004"),
		Phone:   ptr("080 2661 0000"),
		GSTIN:   ptr("29ABCDE1234F1Z5"),
	}); err != nil {
		log.Fatalf("seed business: %v", err)
	}

	logger.Info("seeding master data")
	customer, err := services.MasterData.CreateCustomer(ctx, dataset.Customer{
		Name:  "Ravi Traders",
		Phone: "98450 12345",
		GSTIN: "29AAACR5055K1Z1",
	})
	if err != nil {
		log.Fatalf("seed customer: %v", err)
	}
	products := []dataset.Product{
		{Name: "Cotton saree", Unit: "pcs", DefaultPrice: 1500},
		{Name: "Silk dupatta", Unit: "pcs", DefaultPrice: 850},
		{Name: "Shirting fabric", Unit: "m", DefaultPrice: 220},
	}
	for _, p := range products {
		if _, err := services.MasterData.CreateProduct(ctx, p); err != nil {
			log.Fatalf("seed product %s: %v", p.Name, err)
		}
	}
	upi, err := services.MasterData.CreateUpiAccount(ctx, dataset.UpiAccount{Label: "Shop current account", UpiID: "lakshmitextiles@okaxis"})
	if err != nil {
		log.Fatalf("seed upi account: %v", err)
	}

	logger.Info("seeding invoices")
	drafts := []invoices.Draft{
		{
			CustomerID:   customer.ID,
			CustomerName: customer.Name,
			GSTPercent:   5,
			Items: []invoices.Item{
				{Name: "Cotton saree", PricePerUnit: 1500, Qty: 4},
				{Name: "Silk dupatta", PricePerUnit: 850, Qty: 2},
			},
			Status:      dataset.StatusPaid,
			PaymentMode: dataset.PaymentUPI,
			PaymentQrID: upi.ID,
		},
		{
			CustomerName:   "Walk-in customer",
			GSTPercent:     12,
			Items:          []invoices.Item{{Name: "Shirting fabric", PricePerUnit: 220, Qty: 12.5}},
			Discount:       80,
			ReceivedAmount: 1000,
			PaymentMode:    dataset.PaymentCash,
		},
	}
	for _, d := range drafts {
		inv, err := services.Invoices.Create(ctx, d)
		if err != nil {
			log.Fatalf("seed invoice: %v", err)
		}
		logger.Info("invoice created", slog.Int("number", inv.InvoiceNumber), slog.Float64("grandTotal", inv.GrandTotal))
	}
	logger.Info("seed complete")
}

func ptr(s string) *string { return &s }
