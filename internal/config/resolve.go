package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xtding233/slimelab/internal/genetics"
)

// Resolver turns a profile name into validated settings.
type Resolver interface {
	// Returns merged RawConfig and resolved Settings
	Resolve(profile string) (RawConfig, Settings, error)
}

// Settings is the typed, validated configuration the services run on.
type Settings struct {
	Version string
	Params  genetics.Params
	Ranch   RanchSettings
	Shop    []Item
}

type RanchSettings struct {
	HabitatCapacity  int
	AffinityBonus    decimal.Decimal
	StartingCoins    decimal.Decimal
	StartingHabitats []genetics.Element
	IncomePerMinute  map[genetics.Tier]decimal.Decimal
	RitualDuration   map[genetics.Tier]time.Duration
	HatchDuration    map[genetics.Tier]time.Duration
}

type Item struct {
	SKU         string
	Name        string
	Kind        string
	Price       decimal.Decimal
	BundleSize  int
	BundlePrice decimal.Decimal
}

// Resolve loads, validates and converts the layers for profile.
func (l *Loader) Resolve(profile string) (RawConfig, Settings, error) {
	raw, err := l.LoadMerged(profile)
	if err != nil {
		return RawConfig{}, Settings{}, err
	}
	if err := ValidateRaw(raw); err != nil {
		return raw, Settings{}, err
	}
	s, err := ToSettings(raw)
	return raw, s, err
}

// ToSettings converts a validated RawConfig. Unset breeding values keep the engine
// defaults; every tier must have a ranch entry.
func ToSettings(raw RawConfig) (Settings, error) {
	s := Settings{Version: raw.Version, Params: toParams(raw.Breeding)}
	if err := s.Params.Validate(); err != nil {
		return Settings{}, err
	}
	if raw.Ranch == nil {
		return Settings{}, fmt.Errorf("config: ranch section is required")
	}
	ranch, err := toRanch(*raw.Ranch)
	if err != nil {
		return Settings{}, err
	}
	s.Ranch = ranch
	if raw.Shop != nil {
		for _, it := range raw.Shop.Items {
			item := Item{
				SKU:        it.SKU,
				Name:       it.Name,
				Kind:       it.Kind,
				Price:      decimal.RequireFromString(it.Price),
				BundleSize: it.BundleSize,
			}
			if it.BundleSize > 0 {
				item.BundlePrice = decimal.RequireFromString(it.BundlePrice)
			}
			s.Shop = append(s.Shop, item)
		}
	}
	return s, nil
}

func toParams(b BreedingConfig) genetics.Params {
	p := genetics.DefaultParams()
	set(&p.InheritParent1, b.InheritParent1)
	set(&p.InheritParent2, b.InheritParent2)
	set(&p.MutationRate, b.MutationRate)
	set(&p.BoostedMutationRate, b.BoostedMutationRate)
	set(&p.SizeDelta, b.SizeDelta)
	set(&p.IntDelta, b.IntDelta)
	set(&p.ModelInherit, b.ModelInherit)
	set(&p.JackpotChance, b.JackpotChance)
	set(&p.ComboBiasChance, b.ComboBiasChance)
	set(&p.ComplexityChance, b.ComplexityChance)
	set(&p.ComplexityThreshold, b.ComplexityThreshold)
	set(&p.MultiElementBonus, b.MultiElementBonus)
	set(&p.PreviewAttempts, b.PreviewAttempts)
	if b.BoostPolicy != "" {
		p.BoostPolicy = genetics.BoostPolicy(b.BoostPolicy)
	}
	return p
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func toRanch(r RanchConfig) (RanchSettings, error) {
	out := RanchSettings{
		HabitatCapacity: 2,
		AffinityBonus:   decimal.Zero,
		StartingCoins:   decimal.Zero,
		IncomePerMinute: make(map[genetics.Tier]decimal.Decimal, len(genetics.AllTiers)),
		RitualDuration:  make(map[genetics.Tier]time.Duration, len(genetics.AllTiers)),
		HatchDuration:   make(map[genetics.Tier]time.Duration, len(genetics.AllTiers)),
	}
	set(&out.HabitatCapacity, r.HabitatCapacity)
	if r.AffinityBonus != "" {
		out.AffinityBonus = decimal.RequireFromString(r.AffinityBonus)
	}
	if r.StartingCoins != "" {
		out.StartingCoins = decimal.RequireFromString(r.StartingCoins)
	}
	for _, name := range r.StartingHabitats {
		el, _ := genetics.ParseElement(name)
		out.StartingHabitats = append(out.StartingHabitats, el)
	}
	for _, tier := range genetics.AllTiers {
		label := tier.String()
		income, ok := r.IncomePerMinute[label]
		if !ok {
			return RanchSettings{}, fmt.Errorf("config: ranch.income_per_minute missing tier %s", label)
		}
		out.IncomePerMinute[tier] = decimal.RequireFromString(income)
		ritual, ok := r.RitualSeconds[label]
		if !ok {
			return RanchSettings{}, fmt.Errorf("config: ranch.ritual_seconds missing tier %s", label)
		}
		out.RitualDuration[tier] = time.Duration(ritual) * time.Second
		hatch, ok := r.HatchSeconds[label]
		if !ok {
			return RanchSettings{}, fmt.Errorf("config: ranch.hatch_seconds missing tier %s", label)
		}
		out.HatchDuration[tier] = time.Duration(hatch) * time.Second
	}
	return out, nil
}
