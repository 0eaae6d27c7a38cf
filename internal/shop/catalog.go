// Package shop prices items in coins, plans purchases under a budget and debits
// the wallet.
package shop

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/xtding233/slimelab/internal/config"
)

var (
	ErrUnknownSKU        = errors.New("unknown sku")
	ErrInvalidQty        = errors.New("quantity must be >= 1")
	ErrInsufficientCoins = errors.New("insufficient coins")
)

// Item is one SKU. A bundle sells BundleSize units for BundlePrice.
type Item struct {
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Kind        string          `json:"kind"`
	Price       decimal.Decimal `json:"price"`
	BundleSize  int             `json:"bundleSize,omitempty"`
	BundlePrice decimal.Decimal `json:"bundlePrice,omitzero"`
}

// CostFor returns the coins needed for qty units, taking as many whole bundles as fit
// and paying single price for the rest.
func (it Item) CostFor(qty int) decimal.Decimal {
	if qty <= 0 {
		return decimal.Zero
	}
	if it.BundleSize > 1 && qty >= it.BundleSize {
		bundles := qty / it.BundleSize
		rem := qty % it.BundleSize
		return it.BundlePrice.Mul(decimal.NewFromInt(int64(bundles))).
			Add(it.Price.Mul(decimal.NewFromInt(int64(rem))))
	}
	return it.Price.Mul(decimal.NewFromInt(int64(qty)))
}

// Catalog is the shop's item list in display order.
type Catalog struct {
	Items []Item `json:"items"`
}

// NewCatalog converts resolved config items.
func NewCatalog(items []config.Item) Catalog {
	var c Catalog
	for _, it := range items {
		c.Items = append(c.Items, Item{
			SKU:         it.SKU,
			Name:        it.Name,
			Kind:        it.Kind,
			Price:       it.Price,
			BundleSize:  it.BundleSize,
			BundlePrice: it.BundlePrice,
		})
	}
	return c
}

func (c Catalog) Find(sku string) (Item, error) {
	for _, it := range c.Items {
		if it.SKU == sku {
			return it, nil
		}
	}
	return Item{}, fmt.Errorf("%w: %q", ErrUnknownSKU, sku)
}
