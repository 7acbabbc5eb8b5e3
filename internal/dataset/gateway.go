package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Gateway loads and saves the whole dataset. Save must be all-or-nothing from the
// caller's point of view. A store that holds nothing yet loads as Default().
type Gateway interface {
	Load(ctx context.Context) (*Dataset, error)
	Save(ctx context.Context, ds *Dataset) error
}

// Updater is implemented by gateways that can load, mutate and save the dataset inside a
// single store transaction. fn may be re-run when the store retries the transaction, and
// the dataset it receives is saved only when fn returns nil.
type Updater interface {
	Update(ctx context.Context, fn func(*Dataset) error) error
}

// Decode parses a stored dataset payload.
func Decode(raw []byte) (*Dataset, error) {
	ds := Default()
	if err := json.Unmarshal(raw, ds); err != nil {
		return nil, fmt.Errorf("dataset: decode: %w", err)
	}
	return ds.Normalize(), nil
}

// Encode renders the dataset as indented JSON.
func Encode(ds *Dataset) ([]byte, error) {
	raw, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("dataset: encode: %w", err)
	}
	return raw, nil
}

// FileGateway stores the dataset as a JSON file.
type FileGateway struct {
	path string
}

// NewFileGateway returns a gateway backed by the file at path.
func NewFileGateway(path string) *FileGateway {
	return &FileGateway{path: path}
}

// Path returns the backing file location.
func (g *FileGateway) Path() string {
	return g.path
}

// Load reads the file; a missing file yields Default().
func (g *FileGateway) Load(ctx context.Context) (*Dataset, error) {
	raw, err := os.ReadFile(g.path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("dataset: read %s: %w", g.path, err)
	}
	return Decode(raw)
}

// Save writes to a temp file in the same directory and renames it over the target.
func (g *FileGateway) Save(ctx context.Context, ds *Dataset) error {
	raw, err := Encode(ds)
	if err != nil {
		return err
	}
	dir := filepath.Dir(g.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("dataset: mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(g.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("dataset: temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("dataset: write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("dataset: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("dataset: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), g.path); err != nil {
		return fmt.Errorf("dataset: rename: %w", err)
	}
	return nil
}
