package product

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Catalog is the read-only product list backing the ticket picker.
type Catalog struct {
	path string
}

// NewCatalog returns a catalog reading path on every call, so edits to the
// JSON file show up without a restart.
func NewCatalog(path string) *Catalog {
	return &Catalog{path: path}
}

// List loads every product. A missing file is an empty catalog.
func (c *Catalog) List() ([]Product, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", c.path, err)
	}
	var products []Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("%w: decode catalog %s: %v", ErrInvalidRecord, c.path, err)
	}
	return products, nil
}

// Select returns the products whose id is in ids, in catalog order.
func (c *Catalog) Select(ids []string) ([]Product, error) {
	all, err := c.List()
	if err != nil {
		return nil, err
	}
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	var out []Product
	for _, p := range all {
		if _, ok := wanted[string(p.ID)]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}
