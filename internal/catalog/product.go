// Package catalog reads products from the remote catalog HTTP API.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// ProductID is the catalog's opaque product identifier.
// The catalog may send it as a JSON number or a JSON string.
type ProductID string

func (id ProductID) String() string { return string(id) }

// UnmarshalJSON accepts both 42 and "42".
func (id *ProductID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("product id is empty")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid product id: %w", err)
		}
		*id = ProductID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid product id: %w", err)
	}
	*id = ProductID(n.String())
	return nil
}

// MarshalJSON writes canonical integer ids back as numbers so stored carts
// keep the catalog's form. Any other id, "007" or "+5" included, is a string.
func (id ProductID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// Product is a read-only catalog product.
type Product struct {
	ID                 ProductID       `json:"id"`
	Title              string          `json:"title"`
	Description        string          `json:"description"`
	Price              decimal.Decimal `json:"price"`
	DiscountPercentage float64         `json:"discountPercentage,omitempty"`
	Rating             float64         `json:"rating"`
	Stock              int             `json:"stock"`
	Brand              string          `json:"brand,omitempty"`
	Category           string          `json:"category"`
	Thumbnail          string          `json:"thumbnail"`
	Images             []string        `json:"images,omitempty"`
}

// Validate rejects values no consumer could display.
func (p *Product) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("product has no id")
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("product %s has negative price %s", p.ID, p.Price)
	}
	if p.Stock < 0 {
		return fmt.Errorf("product %s has negative stock %d", p.ID, p.Stock)
	}
	return nil
}

type productList struct {
	Products []Product `json:"products"`
}
