package shop

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/xtding233/slimelab/internal/config"
)

var ErrNoItem = errors.New("no such item in inventory")

// Wallet is the player's coins and consumable inventory.
type Wallet struct {
	Coins     decimal.Decimal `json:"coins"`
	Inventory map[string]int  `json:"inventory"` // kind -> count
}

func NewWallet(coins decimal.Decimal) *Wallet {
	return &Wallet{Coins: coins, Inventory: map[string]int{}}
}

func (w *Wallet) Credit(amt decimal.Decimal) {
	if amt.IsPositive() {
		w.Coins = w.Coins.Add(amt)
	}
}

// Debit removes amt or fails without touching the balance.
func (w *Wallet) Debit(amt decimal.Decimal) error {
	if w.Coins.LessThan(amt) {
		return fmt.Errorf("%w: need %s, have %s", ErrInsufficientCoins, amt, w.Coins)
	}
	w.Coins = w.Coins.Sub(amt)
	return nil
}

// Consume uses one consumable of kind.
func (w *Wallet) Consume(kind string) error {
	if w.Inventory[kind] <= 0 {
		return fmt.Errorf("%w: %s", ErrNoItem, kind)
	}
	w.Inventory[kind]--
	return nil
}

// Consumable kinds go to the inventory on purchase; the rest are delivered by the caller.
func Consumable(kind string) bool {
	return kind == config.KindMutationBoost || kind == config.KindTraitBoost
}

// Receipt describes a completed purchase.
type Receipt struct {
	SKU     string          `json:"sku"`
	Kind    string          `json:"kind"`
	Qty     int             `json:"qty"`
	Cost    decimal.Decimal `json:"cost"`
	Balance decimal.Decimal `json:"balance"`
}

// Buy debits the bundle-aware price of qty units of sku and stocks consumables.
func (c Catalog) Buy(w *Wallet, sku string, qty int) (Receipt, error) {
	if qty < 1 {
		return Receipt{}, ErrInvalidQty
	}
	it, err := c.Find(sku)
	if err != nil {
		return Receipt{}, err
	}
	cost := it.CostFor(qty)
	if err := w.Debit(cost); err != nil {
		return Receipt{}, err
	}
	if Consumable(it.Kind) {
		if w.Inventory == nil {
			w.Inventory = map[string]int{}
		}
		w.Inventory[it.Kind] += qty
	}
	return Receipt{SKU: sku, Kind: it.Kind, Qty: qty, Cost: cost, Balance: w.Coins}, nil
}
