package shop

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/xtding233/slimelab/internal/config"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testCatalog() Catalog {
	return NewCatalog([]config.Item{
		{SKU: "egg", Name: "Mystery Egg", Kind: config.KindEggRandom, Price: d("50"), BundleSize: 10, BundlePrice: d("450")},
		{SKU: "element_egg", Name: "Element Egg", Kind: config.KindEggElement, Price: d("120"), BundleSize: 5, BundlePrice: d("550")},
		{SKU: "mutagen", Name: "Mutagen", Kind: config.KindMutationBoost, Price: d("80")},
	})
}

func TestCostFor(t *testing.T) {
	egg, err := testCatalog().Find("egg")
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		qty  int
		want string
	}{
		{0, "0"},
		{1, "50"},
		{9, "450"},
		{10, "450"},
		{23, "1050"},
	}
	for _, tt := range tests {
		if got := egg.CostFor(tt.qty); !got.Equal(d(tt.want)) {
			t.Errorf("CostFor(%d) = %s, want %s", tt.qty, got, tt.want)
		}
	}
}

func TestMinCostAtLeast(t *testing.T) {
	el, _ := testCatalog().Find("element_egg")
	tests := []struct {
		units     int
		wantTotal string
		wantUnits int
	}{
		{4, "480", 4},  // singles beat the bundle
		{5, "550", 5},  // bundle exactly
		{9, "1030", 9}, // bundle + 4 singles
		{0, "0", 0},
	}
	for _, tt := range tests {
		p := MinCostAtLeast(el, tt.units)
		if !p.Total.Equal(d(tt.wantTotal)) || p.Units != tt.wantUnits {
			t.Errorf("MinCostAtLeast(%d) = %s for %d units, want %s for %d", tt.units, p.Total, p.Units, tt.wantTotal, tt.wantUnits)
		}
	}
	// overshoot is taken when cheaper
	egg, _ := testCatalog().Find("egg")
	egg.BundlePrice = d("400")
	if p := MinCostAtLeast(egg, 9); !p.Total.Equal(d("400")) || p.Units != 10 {
		t.Fatalf("expected one bundle of 10 for 400, got %+v", p)
	}
}

func TestMaxUnitsUnderBudget(t *testing.T) {
	egg, _ := testCatalog().Find("egg")
	p := MaxUnitsUnderBudget(egg, d("1000"))
	if p.Units != 22 || !p.Total.Equal(d("1000")) {
		t.Fatalf("want 22 units for 1000, got %d for %s", p.Units, p.Total)
	}
	if p := MaxUnitsUnderBudget(egg, d("49.99")); p.Units != 0 || len(p.Purchases) != 0 {
		t.Fatalf("budget below price should buy nothing, got %+v", p)
	}

	big := MaxUnitsUnderBudget(egg, d("5000000"))
	if big.Units != 111111 || big.Total.GreaterThan(d("5000000")) {
		t.Fatalf("large budget plan = %d units for %s", big.Units, big.Total)
	}
}

func TestBuy(t *testing.T) {
	c := testCatalog()
	w := NewWallet(d("500"))

	r, err := c.Buy(w, "mutagen", 2)
	if err != nil {
		t.Fatal(err)
	}
	if !r.Cost.Equal(d("160")) || !w.Coins.Equal(d("340")) || w.Inventory[config.KindMutationBoost] != 2 {
		t.Fatalf("unexpected receipt %+v wallet %+v", r, w)
	}

	if _, err := c.Buy(w, "egg", 10); !errors.Is(err, ErrInsufficientCoins) {
		t.Fatalf("want ErrInsufficientCoins, got %v", err)
	}
	if !w.Coins.Equal(d("340")) {
		t.Fatalf("failed purchase changed the balance: %s", w.Coins)
	}
	if _, err := c.Buy(w, "gold", 1); !errors.Is(err, ErrUnknownSKU) {
		t.Fatalf("want ErrUnknownSKU, got %v", err)
	}
	if _, err := c.Buy(w, "egg", 0); !errors.Is(err, ErrInvalidQty) {
		t.Fatalf("want ErrInvalidQty, got %v", err)
	}

	r, err = c.Buy(w, "egg", 2)
	if err != nil {
		t.Fatal(err)
	}
	if r.Kind != config.KindEggRandom || w.Inventory[config.KindEggRandom] != 0 {
		t.Fatalf("eggs are delivered by the caller, not stocked")
	}
}

func TestWalletConsume(t *testing.T) {
	w := NewWallet(decimal.Zero)
	if err := w.Consume(config.KindTraitBoost); !errors.Is(err, ErrNoItem) {
		t.Fatalf("want ErrNoItem, got %v", err)
	}
	w.Inventory[config.KindTraitBoost] = 1
	if err := w.Consume(config.KindTraitBoost); err != nil {
		t.Fatal(err)
	}
	w.Credit(d("-5"))
	if !w.Coins.IsZero() {
		t.Fatalf("negative credit should be ignored")
	}
}
