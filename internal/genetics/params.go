package genetics

import (
	"fmt"
	"strings"
)

// BoostPolicy decides what happens to stamped rarity when a trait boost changes a genome.
type BoostPolicy string

const (
	// PolicyRecompute re-derives elements, score, tier and stars after a boost.
	PolicyRecompute BoostPolicy = "recompute"
	// PolicyKeepStamped leaves the derived attributes as they were at creation.
	PolicyKeepStamped BoostPolicy = "keep_stamped"
)

// Params are the tunable probabilities and bonuses of the engine.
type Params struct {
	InheritParent1      float64 // roll below this copies parent 1
	InheritParent2      float64 // next band copies parent 2
	MutationRate        float64 // band width of the mutate branch
	BoostedMutationRate float64 // mutate band while a mutation boost is active
	SizeDelta           float64 // max size perturbation, either sign
	IntDelta            int     // max integer perturbation, either sign
	ModelInherit        float64 // chance model is copied from a parent
	JackpotChance       float64
	ComboBiasChance     float64 // per matching parent element pair
	ComplexityChance    float64
	ComplexityThreshold int // distinct parent elements needed for the complexity roll
	MultiElementBonus   int // score per element beyond the first
	PreviewAttempts     int // breed attempts per requested preview
	BoostPolicy         BoostPolicy
}

// DefaultParams returns the shipped balance.
func DefaultParams() Params {
	return Params{
		InheritParent1:      0.30,
		InheritParent2:      0.30,
		MutationRate:        0.20,
		BoostedMutationRate: 0.50,
		SizeDelta:           0.3,
		IntDelta:            2,
		ModelInherit:        0.70,
		JackpotChance:       0.05,
		ComboBiasChance:     0.40,
		ComplexityChance:    0.30,
		ComplexityThreshold: 3,
		MultiElementBonus:   8,
		PreviewAttempts:     4,
		BoostPolicy:         PolicyRecompute,
	}
}

// Validate checks that probabilities are in range and the inherit bands fit in [0,1].
func (p Params) Validate() error {
	var errs []string
	probs := []struct {
		name string
		v    float64
	}{
		{"inherit_parent1", p.InheritParent1},
		{"inherit_parent2", p.InheritParent2},
		{"mutation_rate", p.MutationRate},
		{"boosted_mutation_rate", p.BoostedMutationRate},
		{"model_inherit", p.ModelInherit},
		{"jackpot_chance", p.JackpotChance},
		{"combo_bias_chance", p.ComboBiasChance},
		{"complexity_chance", p.ComplexityChance},
	}
	for _, pr := range probs {
		if err := validateProb(pr.v); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", pr.name, err))
		}
	}
	if p.InheritParent1+p.InheritParent2 > 1 {
		errs = append(errs, "inherit_parent1 + inherit_parent2 must not exceed 1")
	}
	if p.SizeDelta < 0 || p.IntDelta < 0 {
		errs = append(errs, "size_delta and int_delta must be >= 0")
	}
	if p.ComplexityThreshold < 1 {
		errs = append(errs, "complexity_threshold must be >= 1")
	}
	if p.MultiElementBonus < 0 {
		errs = append(errs, "multi_element_bonus must be >= 0")
	}
	if p.PreviewAttempts < 1 {
		errs = append(errs, "preview_attempts must be >= 1")
	}
	switch p.BoostPolicy {
	case PolicyRecompute, PolicyKeepStamped:
	default:
		errs = append(errs, fmt.Sprintf("unknown boost policy %q", p.BoostPolicy))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidParams, strings.Join(errs, "; "))
	}
	return nil
}
