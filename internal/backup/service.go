// Package backup exports the whole dataset as a JSON document and imports one back.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gstbill/gstbill/internal/dataset"
	"github.com/gstbill/gstbill/internal/shared"
)

// FilePrefix starts every backup file name.
const FilePrefix = "invoice-backup-"

// Document is an exported dataset.
type Document struct {
	*dataset.Dataset
	ExportedAt time.Time `json:"exportedAt"`
}

// ImportResult lists the collections an import replaced.
type ImportResult struct {
	Replaced []string `json:"replaced"`
}

// Service exports and imports the dataset.
type Service struct {
	repo     *dataset.Repository
	now      func() time.Time
	onImport []func(context.Context)
}

// NewService builds the backup service. onImport hooks run after a successful import.
func NewService(repo *dataset.Repository, onImport ...func(context.Context)) *Service {
	return &Service{repo: repo, now: time.Now, onImport: onImport}
}

// Export returns the current dataset stamped with the export time.
func (s *Service) Export(ctx context.Context) Document {
	return Document{Dataset: s.repo.Snapshot(ctx), ExportedAt: s.now().UTC()}
}

// Import replaces each collection present in raw; absent ones are left alone. The
// recycle bin is never imported.
func (s *Service) Import(ctx context.Context, raw []byte) (ImportResult, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return ImportResult{}, fmt.Errorf("%w: backup is not a JSON object: %v", shared.ErrInvalidInput, err)
	}

	incoming := dataset.Default()
	apply := map[string]func(*dataset.Dataset){}
	decoders := map[string]struct {
		target any
		set    func(*dataset.Dataset)
	}{
		"business":    {&incoming.Business, func(ds *dataset.Dataset) { ds.Business = incoming.Business }},
		"customers":   {&incoming.Customers, func(ds *dataset.Dataset) { ds.Customers = incoming.Customers }},
		"products":    {&incoming.Products, func(ds *dataset.Dataset) { ds.Products = incoming.Products }},
		"invoices":    {&incoming.Invoices, func(ds *dataset.Dataset) { ds.Invoices = incoming.Invoices }},
		"upiAccounts": {&incoming.UpiAccounts, func(ds *dataset.Dataset) { ds.UpiAccounts = incoming.UpiAccounts }},
		"counter":     {&incoming.Counter, func(ds *dataset.Dataset) { ds.Counter = incoming.Counter }},
	}
	for name, d := range decoders {
		payload, ok := fields[name]
		if !ok || string(payload) == "null" {
			continue
		}
		if err := json.Unmarshal(payload, d.target); err != nil {
			return ImportResult{}, fmt.Errorf("%w: %s: %v", shared.ErrInvalidInput, name, err)
		}
		apply[name] = d.set
	}
	if len(apply) == 0 {
		return ImportResult{}, fmt.Errorf("%w: backup holds no known collections", shared.ErrInvalidInput)
	}
	ensureIDs(incoming)

	err := s.repo.WithTx(ctx, func(ds *dataset.Dataset) error {
		for _, set := range apply {
			set(ds)
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, fmt.Errorf("import backup: %w", err)
	}

	result := ImportResult{Replaced: make([]string, 0, len(apply))}
	for name := range apply {
		result.Replaced = append(result.Replaced, name)
	}
	sort.Strings(result.Replaced)
	for _, hook := range s.onImport {
		hook(ctx)
	}
	return result, nil
}

// WriteFile exports into dir as invoice-backup-<timestamp>.json and returns the path.
func (s *Service) WriteFile(ctx context.Context, dir string) (string, error) {
	doc := s.Export(ctx)
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("backup: encode: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("backup: mkdir %s: %w", dir, err)
	}
	path := filepath.Join(dir, FilePrefix+doc.ExportedAt.Format("20060102-150405")+".json")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("backup: write %s: %w", path, err)
	}
	return path, nil
}

func ensureIDs(ds *dataset.Dataset) {
	for i := range ds.Customers {
		ds.Customers[i].ID = shared.EnsureID(ds.Customers[i].ID, "cust")
	}
	for i := range ds.Products {
		ds.Products[i].ID = shared.EnsureID(ds.Products[i].ID, "prod")
	}
	for i := range ds.UpiAccounts {
		ds.UpiAccounts[i].ID = shared.EnsureID(ds.UpiAccounts[i].ID, "upi")
	}
	for i := range ds.Invoices {
		ds.Invoices[i].ID = shared.EnsureID(ds.Invoices[i].ID, "inv")
		ds.Invoices[i].DeletedAt = nil
	}
}
