// Package product holds the ticket input record and the read-only catalog it
// is loaded from.
package product

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidRecord marks a product that cannot be printed.
var ErrInvalidRecord = errors.New("invalid product record")

// Product is one ticket's data. RubiCode is optional and prints empty.
type Product struct {
	ID        ID              `json:"id"`
	QuickCode string          `json:"quick_code"`
	RubiCode  string          `json:"rubi_code,omitempty"`
	Name      string          `json:"name"`
	RRP       decimal.Decimal `json:"rrp"`
	IsCustom  bool            `json:"is_custom,omitempty"`
}

// ID accepts both numeric and string identifiers from the catalog file.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// UnmarshalJSON rejects records without an rrp instead of reading them as 0.
func (p *Product) UnmarshalJSON(data []byte) error {
	type plain Product
	var raw struct {
		plain
		RRP *decimal.Decimal `json:"rrp"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if raw.RRP == nil {
		return fmt.Errorf("%w: rrp is required (quick_code %s)", ErrInvalidRecord, raw.QuickCode)
	}
	*p = Product(raw.plain)
	p.RRP = *raw.RRP
	return nil
}

// Validate checks the fields the ticket needs.
func (p Product) Validate() error {
	if strings.TrimSpace(p.QuickCode) == "" {
		return fmt.Errorf("%w: quick_code is required", ErrInvalidRecord)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required (quick_code %s)", ErrInvalidRecord, p.QuickCode)
	}
	if p.RRP.IsNegative() {
		return fmt.Errorf("%w: rrp must not be negative (quick_code %s)", ErrInvalidRecord, p.QuickCode)
	}
	return nil
}

// FormatRRP renders the price with exactly two decimal places.
func (p Product) FormatRRP() string {
	return p.RRP.StringFixed(2)
}

// ParsePrice parses user-entered prices, tolerating currency symbols,
// thousands separators and surrounding spaces ("£1,234.5" -> 1234.5).
func ParsePrice(raw string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer("£", "", "$", "", ",", "", " ", "").Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("%w: rrp is required", ErrInvalidRecord)
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: rrp %q is not a number", ErrInvalidRecord, raw)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: rrp must not be negative", ErrInvalidRecord)
	}
	return d, nil
}

// Concat returns stored products followed by custom ones.
func Concat(selected, custom []Product) []Product {
	out := make([]Product, 0, len(selected)+len(custom))
	out = append(out, selected...)
	return append(out, custom...)
}
