package config

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/xtding233/slimelab/internal/genetics"
)

// Item kinds the shop understands.
const (
	KindEggRandom     = "egg_random"
	KindEggElement    = "egg_element"
	KindMutationBoost = "mutation_boost"
	KindTraitBoost    = "trait_boost"
	KindHabitat       = "habitat"
)

var itemKinds = map[string]bool{
	KindEggRandom:     true,
	KindEggElement:    true,
	KindMutationBoost: true,
	KindTraitBoost:    true,
	KindHabitat:       true,
}

// ValidateRaw checks semantic constraints of a RawConfig.
func ValidateRaw(cfg RawConfig) error {
	var errs []string
	errs = append(errs, validateBreeding(cfg.Breeding)...)
	if cfg.Ranch != nil {
		errs = append(errs, validateRanch(*cfg.Ranch)...)
	}
	if cfg.Shop != nil {
		errs = append(errs, validateShop(*cfg.Shop)...)
	}
	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateBreeding(b BreedingConfig) []string {
	var errs []string
	probs := []struct {
		name string
		v    *float64
	}{
		{"inherit_parent1", b.InheritParent1},
		{"inherit_parent2", b.InheritParent2},
		{"mutation_rate", b.MutationRate},
		{"boosted_mutation_rate", b.BoostedMutationRate},
		{"model_inherit", b.ModelInherit},
		{"jackpot_chance", b.JackpotChance},
		{"combo_bias_chance", b.ComboBiasChance},
		{"complexity_chance", b.ComplexityChance},
	}
	for _, p := range probs {
		if p.v != nil && (*p.v < 0 || *p.v > 1) {
			errs = append(errs, fmt.Sprintf("breeding.%s must be in [0,1]", p.name))
		}
	}
	if b.InheritParent1 != nil && b.InheritParent2 != nil && *b.InheritParent1+*b.InheritParent2 > 1 {
		errs = append(errs, "breeding.inherit_parent1 + inherit_parent2 must be <= 1")
	}
	if b.SizeDelta != nil && (*b.SizeDelta < 0 || *b.SizeDelta > genetics.SizeMax-genetics.SizeMin) {
		errs = append(errs, "breeding.size_delta must be in [0,1.5]")
	}
	if b.IntDelta != nil && *b.IntDelta < 0 {
		errs = append(errs, "breeding.int_delta must be >= 0")
	}
	if b.ComplexityThreshold != nil && *b.ComplexityThreshold < 1 {
		errs = append(errs, "breeding.complexity_threshold must be >= 1")
	}
	if b.MultiElementBonus != nil && *b.MultiElementBonus < 0 {
		errs = append(errs, "breeding.multi_element_bonus must be >= 0")
	}
	if b.PreviewAttempts != nil && *b.PreviewAttempts < 1 {
		errs = append(errs, "breeding.preview_attempts must be >= 1")
	}
	switch genetics.BoostPolicy(b.BoostPolicy) {
	case "", genetics.PolicyRecompute, genetics.PolicyKeepStamped:
	default:
		errs = append(errs, "breeding.boost_policy must be one of: recompute, keep_stamped")
	}
	return errs
}

func validateRanch(r RanchConfig) []string {
	var errs []string
	if r.HabitatCapacity != nil && *r.HabitatCapacity < 1 {
		errs = append(errs, "ranch.habitat_capacity must be >= 1")
	}
	if r.AffinityBonus != "" {
		if d, err := decimal.NewFromString(r.AffinityBonus); err != nil || d.IsNegative() {
			errs = append(errs, "ranch.affinity_bonus must be a decimal >= 0")
		}
	}
	if r.StartingCoins != "" {
		if d, err := decimal.NewFromString(r.StartingCoins); err != nil || d.IsNegative() {
			errs = append(errs, "ranch.starting_coins must be a decimal >= 0")
		}
	}
	for i, s := range r.StartingHabitats {
		if _, err := genetics.ParseElement(s); err != nil {
			errs = append(errs, fmt.Sprintf("ranch.starting_habitats[%d]: unknown element %q", i, s))
		}
	}
	for label, v := range r.IncomePerMinute {
		if _, err := genetics.ParseTier(label); err != nil {
			errs = append(errs, fmt.Sprintf("ranch.income_per_minute: unknown tier %q", label))
		}
		if d, err := decimal.NewFromString(v); err != nil || d.IsNegative() {
			errs = append(errs, fmt.Sprintf("ranch.income_per_minute.%s must be a decimal >= 0", label))
		}
	}
	for name, m := range map[string]map[string]int{"ritual_seconds": r.RitualSeconds, "hatch_seconds": r.HatchSeconds} {
		for label, secs := range m {
			if _, err := genetics.ParseTier(label); err != nil {
				errs = append(errs, fmt.Sprintf("ranch.%s: unknown tier %q", name, label))
			}
			if secs < 0 {
				errs = append(errs, fmt.Sprintf("ranch.%s.%s must be >= 0", name, label))
			}
		}
	}
	return errs
}

func validateShop(s ShopConfig) []string {
	var errs []string
	seen := map[string]bool{}
	for i, it := range s.Items {
		at := fmt.Sprintf("shop.items[%d]", i)
		if it.SKU == "" {
			errs = append(errs, at+".sku is required")
		} else if seen[it.SKU] {
			errs = append(errs, fmt.Sprintf("%s.sku %q is duplicated", at, it.SKU))
		}
		seen[it.SKU] = true
		if !itemKinds[it.Kind] {
			errs = append(errs, fmt.Sprintf("%s.kind %q is unknown", at, it.Kind))
		}
		if !wholePositive(it.Price) {
			errs = append(errs, at+".price must be a whole number > 0")
		}
		if it.BundleSize != 0 {
			if it.BundleSize < 2 {
				errs = append(errs, at+".bundle_size must be >= 2")
			}
			if !wholePositive(it.BundlePrice) {
				errs = append(errs, at+".bundle_price must be a whole number > 0 when bundle_size is set")
			}
		}
	}
	return errs
}

func wholePositive(s string) bool {
	d, err := decimal.NewFromString(s)
	return err == nil && d.IsPositive() && d.Equal(d.Truncate(0))
}
