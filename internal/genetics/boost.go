package genetics

// BoostTrait raises one gene by a single step (0.1 for size) and returns the result as a
// new slime. The bool is false when the gene is already at its maximum; the copy is then
// identical to s.
func (e *Engine) BoostTrait(s *Slime, f Field) (*Slime, bool) {
	out := s.Clone()
	before := out.Traits.Value(f)
	step := 1.0
	if f.Continuous() {
		step = SizeStep
	}
	out.Traits.Set(f, before+step)
	if out.Traits.Value(f) == before {
		return out, false
	}
	if e.Params.BoostPolicy != PolicyKeepStamped {
		out.Restamp(e.Params.MultiElementBonus)
	}
	return out, true
}

// Restamp re-derives elements, score, tier and stars from the current genome. The
// stored combo bonus is kept since parents are no longer known.
func (s *Slime) Restamp(multiElementBonus int) {
	s.stamp(DeriveElement(s.Traits.Color1, s.Traits.Shape), s.ComboBonus, multiElementBonus)
}
