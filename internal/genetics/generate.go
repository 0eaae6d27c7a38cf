package genetics

// elementPairs is the inverse of DeriveElement: every (color1, shape) giving each element.
var elementPairs = buildElementPairs()

type colorShape struct{ color, shape int }

func buildElementPairs() map[Element][]colorShape {
	out := make(map[Element][]colorShape, len(AllElements))
	for c := 0; c <= fieldMax[FieldColor1]; c++ {
		for s := 0; s <= fieldMax[FieldShape]; s++ {
			e := DeriveElement(c, s)
			out[e] = append(out[e], colorShape{c, s})
		}
	}
	return out
}

// randomTraits draws every field uniformly, in canonical order.
func randomTraits(rng RandomSource, basicOnly bool) Traits {
	var t Traits
	for _, f := range AllFields {
		if basicOnly {
			if f == FieldSize {
				t.Size = basicSize
				continue
			}
			if hi, ok := basicMax[f]; ok {
				t.Set(f, float64(intRange(rng, 0, hi)))
				continue
			}
		}
		t.Set(f, f.random(rng))
	}
	return t
}

// RandomSlime creates a new slime with no parents. basicOnly keeps rare genes out,
// which is what starter and free creatures use.
func (e *Engine) RandomSlime(basicOnly bool) *Slime {
	rng := e.rng()
	return e.build(randomTraits(rng, basicOnly), 0, nil, rng)
}

// ElementSlime creates a slime whose primary element is exactly el. The rest of the
// genome is random over full ranges. Unknown elements fall back to FallbackElement.
func (e *Engine) ElementSlime(el Element) *Slime {
	rng := e.rng()
	pairs := elementPairs[el]
	if len(pairs) == 0 {
		pairs = elementPairs[FallbackElement]
	}
	t := randomTraits(rng, false)
	pick := pairs[intn(rng, len(pairs))]
	t.Color1, t.Shape = pick.color, pick.shape
	return e.build(t, 0, nil, rng)
}

// StarterSlimes returns the fixed opening roster, derived like any other slime.
func (e *Engine) StarterSlimes() []*Slime {
	rng := e.rng()
	out := make([]*Slime, 0, len(starterTraits))
	for _, t := range starterTraits {
		out = append(out, e.build(t, 0, nil, rng))
	}
	return out
}

// FromTraits stamps a parentless slime for a given genome, clamping it first.
func (e *Engine) FromTraits(t Traits) *Slime {
	return e.build(t, 0, nil, e.rng())
}
