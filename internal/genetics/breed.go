package genetics

import "math"

// Breed combines two parents into a new child. The parents are not modified.
// mutationBoost widens the mutate band, which at default params leaves no room for
// the randomize branch.
func (e *Engine) Breed(p1, p2 *Slime, mutationBoost bool) *Slime {
	return e.breed(p1, p2, mutationBoost, e.rng())
}

func (e *Engine) breed(p1, p2 *Slime, mutationBoost bool, rng RandomSource) *Slime {
	p := e.Params
	t := inheritTraits(p1.Traits, p2.Traits, p, mutationBoost, rng)

	if rng.Float64() < p.JackpotChance {
		f := AllFields[intn(rng, len(AllFields))]
		setExtreme(&t, f, rng)
	}

	bonus := applyCombos(&t, ParentElements(p1), ParentElements(p2), p, rng)

	child := e.build(t, bonus, []string{p1.ID, p2.ID}, rng)
	child.IsNew = true
	return child
}

// inheritTraits runs the per-field roll for every gene, then the separate model roll.
func inheritTraits(a, b Traits, p Params, mutationBoost bool, rng RandomSource) Traits {
	rate := p.MutationRate
	if mutationBoost {
		rate = p.BoostedMutationRate
	}
	parent1Band := p.InheritParent1
	parent2Band := parent1Band + p.InheritParent2
	mutateBand := math.Min(parent2Band+rate, 1.0)

	var t Traits
	for _, f := range AllFields {
		if f == FieldModel {
			continue
		}
		r := rng.Float64()
		switch {
		case r < parent1Band:
			t.Set(f, a.Value(f))
		case r < parent2Band:
			t.Set(f, b.Value(f))
		case r < mutateBand:
			base := b
			if coin(rng) {
				base = a
			}
			t.Set(f, mutate(f, base.Value(f), p, rng))
		default:
			t.Set(f, f.random(rng))
		}
	}

	if rng.Float64() < p.ModelInherit {
		if coin(rng) {
			t.Model = a.Model
		} else {
			t.Model = b.Model
		}
	} else {
		t.Set(FieldModel, FieldModel.random(rng))
	}
	return t
}

func mutate(f Field, base float64, p Params, rng RandomSource) float64 {
	if f.Continuous() {
		delta := (rng.Float64()*2 - 1) * p.SizeDelta
		return ClampSize(base + delta)
	}
	return base + float64(intRange(rng, -p.IntDelta, p.IntDelta))
}

// setExtreme forces f to the edge of its range: max for genes, either end for size.
func setExtreme(t *Traits, f Field, rng RandomSource) {
	if f.Continuous() {
		if coin(rng) {
			t.Size = SizeMin
		} else {
			t.Size = SizeMax
		}
		return
	}
	t.Set(f, f.Max())
}

// ParentElements is the breeding-input view of a parent's elements. Legacy records with
// no list fall back to the single primary, then to FallbackElement.
func ParentElements(s *Slime) []Element {
	if len(s.Elements) > 0 {
		return dedupeElements(s.Elements)
	}
	if s.Element != "" {
		return []Element{s.Element}
	}
	return []Element{FallbackElement}
}

// lookupCombo finds the table entry for a pair in either direction.
func lookupCombo(a, b Element) (combo, bool) {
	if c, ok := combos[string(a)+"+"+string(b)]; ok {
		return c, true
	}
	c, ok := combos[string(b)+"+"+string(a)]
	return c, ok
}

// ComboBonus is the score bonus a pair of parent element sets earns.
func ComboBonus(a, b []Element) int {
	bonus := 0
	for _, e1 := range a {
		for _, e2 := range b {
			if c, ok := lookupCombo(e1, e2); ok {
				bonus += c.Bonus
			}
		}
	}
	return bonus
}

// applyCombos sums the combo bonus and biases t toward hybrid elements. Bias overwrites
// genes already rolled by inheritance.
func applyCombos(t *Traits, a, b []Element, p Params, rng RandomSource) int {
	bonus := 0
	for _, e1 := range a {
		for _, e2 := range b {
			c, ok := lookupCombo(e1, e2)
			if !ok {
				continue
			}
			bonus += c.Bonus
			if len(c.Results) == 0 {
				continue
			}
			if rng.Float64() < p.ComboBiasChance {
				biasToward(t, c.Results[intn(rng, len(c.Results))], rng)
			}
		}
	}

	if len(unionElements(a, b)) >= p.ComplexityThreshold && rng.Float64() < p.ComplexityChance {
		t.Set(FieldGlow, float64(t.Glow+1+intn(rng, 2)))
		t.Set(FieldAura, float64(t.Aura+1))
	}
	return bonus
}

func biasToward(t *Traits, target Element, rng RandomSource) {
	if colors := elementColors[target]; len(colors) > 0 {
		t.Color1 = colors[intn(rng, len(colors))]
	}
	if floor := auraFloors[target]; t.Aura < floor {
		t.Aura = floor
	}
}
