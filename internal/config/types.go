package config

// RawConfig is one YAML layer. Pointer fields are optional so an overlay only
// overrides what it names.
type RawConfig struct {
	Version  string         `yaml:"version"`
	Breeding BreedingConfig `yaml:"breeding"`
	Ranch    *RanchConfig   `yaml:"ranch,omitempty"`
	Shop     *ShopConfig    `yaml:"shop,omitempty"`
	Notes    string         `yaml:"notes,omitempty"`
}

type BreedingConfig struct {
	InheritParent1      *float64 `yaml:"inherit_parent1"`
	InheritParent2      *float64 `yaml:"inherit_parent2"`
	MutationRate        *float64 `yaml:"mutation_rate"`
	BoostedMutationRate *float64 `yaml:"boosted_mutation_rate"`
	SizeDelta           *float64 `yaml:"size_delta"`
	IntDelta            *int     `yaml:"int_delta"`
	ModelInherit        *float64 `yaml:"model_inherit"`
	JackpotChance       *float64 `yaml:"jackpot_chance"`
	ComboBiasChance     *float64 `yaml:"combo_bias_chance"`
	ComplexityChance    *float64 `yaml:"complexity_chance"`
	ComplexityThreshold *int     `yaml:"complexity_threshold"`
	MultiElementBonus   *int     `yaml:"multi_element_bonus"`
	PreviewAttempts     *int     `yaml:"preview_attempts"`
	BoostPolicy         string   `yaml:"boost_policy,omitempty"` // "recompute" | "keep_stamped"
}

// RanchConfig maps are keyed by tier label; an overlay replaces single keys.
type RanchConfig struct {
	HabitatCapacity  *int              `yaml:"habitat_capacity"`
	AffinityBonus    string            `yaml:"affinity_bonus,omitempty"` // decimal, income multiplier add-on
	StartingCoins    string            `yaml:"starting_coins,omitempty"`
	StartingHabitats []string          `yaml:"starting_habitats,omitempty"`
	IncomePerMinute  map[string]string `yaml:"income_per_minute,omitempty"`
	RitualSeconds    map[string]int    `yaml:"ritual_seconds,omitempty"`
	HatchSeconds     map[string]int    `yaml:"hatch_seconds,omitempty"`
}

// ShopConfig items are replaced wholesale when an overlay lists any.
type ShopConfig struct {
	Items []ItemConfig `yaml:"items"`
}

type ItemConfig struct {
	SKU         string `yaml:"sku"`
	Name        string `yaml:"name"`
	Kind        string `yaml:"kind"` // egg_random | egg_element | mutation_boost | trait_boost | habitat
	Price       string `yaml:"price"`
	BundleSize  int    `yaml:"bundle_size,omitempty"`
	BundlePrice string `yaml:"bundle_price,omitempty"`
}
