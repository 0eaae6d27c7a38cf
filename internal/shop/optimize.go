package shop

import "github.com/shopspring/decimal"

// Plan summarizes a purchase plan for one SKU.
type Plan struct {
	SKU       string          `json:"sku"`
	Purchases []Purchase      `json:"purchases"`
	Units     int             `json:"units"`
	Total     decimal.Decimal `json:"total"`
}

// Purchase is one line item in the plan.
type Purchase struct {
	Variant  string          `json:"variant"` // "single" | "bundle"
	Qty      int             `json:"qty"`
	Units    int             `json:"units"` // units per purchase
	UnitCost decimal.Decimal `json:"unitCost"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type variant struct {
	name  string
	units int
	price int64 // whole coins
}

func variants(it Item) []variant {
	vs := []variant{{"single", 1, it.Price.IntPart()}}
	if it.BundleSize > 1 {
		vs = append(vs, variant{"bundle", it.BundleSize, it.BundlePrice.IntPart()})
	}
	return vs
}

// MinCostAtLeast finds the cheapest way to get at least units of it. A bundle can
// beat singles even when it overshoots.
func MinCostAtLeast(it Item, units int) Plan {
	if units <= 0 {
		return Plan{SKU: it.SKU, Total: decimal.Zero}
	}
	vs := variants(it)
	maxUnits := 0
	for _, v := range vs {
		maxUnits = max(maxUnits, v.units)
	}
	limit := units + maxUnits

	const inf = int64(^uint64(0) >> 1)
	dp := make([]int64, limit+1) // min cost to reach exactly u units
	pick := make([]int, limit+1) // chosen variant index
	prev := make([]int, limit+1) // previous u
	for u := range dp {
		dp[u] = inf
		pick[u] = -1
		prev[u] = -1
	}
	dp[0] = 0
	for u := 0; u <= limit; u++ {
		if dp[u] == inf {
			continue
		}
		for i, v := range vs {
			nu := min(u+v.units, limit)
			if cost := dp[u] + v.price; cost < dp[nu] {
				dp[nu] = cost
				pick[nu] = i
				prev[nu] = u
			}
		}
	}

	// pick best u >= target
	best := units
	for u := units; u <= limit; u++ {
		if dp[u] < dp[best] {
			best = u
		}
	}

	counts := map[int]int{}
	for u := best; u > 0 && pick[u] != -1; u = prev[u] {
		counts[pick[u]]++
	}
	return planFromCounts(it, vs, counts)
}

// MaxUnitsUnderBudget computes the most units of it purchasable with budget.
func MaxUnitsUnderBudget(it Item, budget decimal.Decimal) Plan {
	plan := Plan{SKU: it.SKU, Total: decimal.Zero}
	b := budget.IntPart()
	if b <= 0 {
		return plan
	}
	vs := variants(it)

	// large budgets pre-buy the best-rate variant until the rest fits the table
	pre := map[int]int{}
	if b > maxPlanBudget {
		bi := bestRate(vs)
		n := (b-maxPlanBudget)/vs[bi].price + 1
		pre[bi] = int(n)
		b -= n * vs[bi].price
	}

	// dp[c] = max units with cost exactly c
	dp := make([]int, b+1)
	pick := make([]int, b+1)
	for c := range pick {
		pick[c] = -1
	}
	reach := make([]bool, b+1)
	reach[0] = true
	for c := int64(0); c <= b; c++ {
		if !reach[c] {
			continue
		}
		for i, v := range vs {
			nc := c + v.price
			if nc > b || v.price <= 0 {
				continue
			}
			if val := dp[c] + v.units; !reach[nc] || val > dp[nc] {
				dp[nc] = val
				pick[nc] = i
				reach[nc] = true
			}
		}
	}
	bestC := int64(0)
	for c := int64(0); c <= b; c++ {
		if reach[c] && (dp[c] > dp[bestC] || (dp[c] == dp[bestC] && c < bestC)) {
			bestC = c
		}
	}

	counts := pre
	for c := bestC; c > 0 && pick[c] != -1; c -= vs[pick[c]].price {
		counts[pick[c]]++
	}
	return planFromCounts(it, vs, counts)
}

const maxPlanBudget = 1_000_000

// bestRate is the variant with the lowest price per unit.
func bestRate(vs []variant) int {
	best := 0
	for i, v := range vs {
		if v.price*int64(vs[best].units) < vs[best].price*int64(v.units) {
			best = i
		}
	}
	return best
}

func planFromCounts(it Item, vs []variant, counts map[int]int) Plan {
	plan := Plan{SKU: it.SKU, Total: decimal.Zero}
	for i, v := range vs {
		qty := counts[i]
		if qty == 0 {
			continue
		}
		unit := decimal.NewFromInt(v.price)
		sub := unit.Mul(decimal.NewFromInt(int64(qty)))
		plan.Purchases = append(plan.Purchases, Purchase{
			Variant:  v.name,
			Qty:      qty,
			Units:    v.units,
			UnitCost: unit,
			Subtotal: sub,
		})
		plan.Units += v.units * qty
		plan.Total = plan.Total.Add(sub)
	}
	return plan
}
