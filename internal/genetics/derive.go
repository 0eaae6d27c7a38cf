package genetics

import "math"

// CalculateRarity sums the table weight of every gene. It is the base score only;
// combo and multi-element bonuses are added by Score.
func CalculateRarity(t Traits) int {
	t = t.Clamped()
	score := 0
	for _, f := range AllFields {
		switch f {
		case FieldSize:
			score += SizeRarity(t.Size)
		case FieldModel:
			score += modelWeights[t.Model]
		default:
			score += fieldWeights[f][int(t.Value(f))]
		}
	}
	return score
}

// SizeRarity is 0 at the 1.0 midpoint and climbs linearly to its peak at either extreme.
func SizeRarity(size float64) int {
	size = ClampSize(size)
	var span float64
	if size < 1.0 {
		span = (1.0 - size) / (1.0 - SizeMin)
	} else {
		span = (size - 1.0) / (SizeMax - 1.0)
	}
	return int(math.Round(span * sizeRarityPeak))
}

// RarityTier maps a final score to its tier.
func RarityTier(score int) Tier {
	for _, th := range tierThresholds {
		if score >= th.min {
			return th.tier
		}
	}
	return Common
}

// DeriveElement returns the primary element for a color and shape.
func DeriveElement(color1, shape int) Element {
	color1 = clampInt(color1, 0, fieldMax[FieldColor1])
	shape = clampInt(shape, 0, fieldMax[FieldShape])
	e := colorElements[color1]
	if shape >= exoticShapeMin {
		if shifted, ok := exoticShift[e]; ok {
			return shifted
		}
	}
	return e
}

// DeriveSecondaryElement applies the first matching threshold rule. The bool is false when
// no rule fires.
func DeriveSecondaryElement(spikes, pattern, aura, glow int) (Element, bool) {
	switch {
	case aura >= 3 && glow >= 4:
		return Divine, true
	case aura >= 3 && glow <= 1:
		return Void, true
	case glow >= 4:
		return Light, true
	case spikes >= 7:
		return Metal, true
	case spikes >= 5 && pattern >= 10:
		return Crystal, true
	case pattern >= 12:
		return Arcane, true
	case aura >= 2 && pattern >= 8:
		return Cosmic, true
	case glow == 0 && pattern >= 8:
		return Shadow, true
	}
	return "", false
}

// DeriveElements builds the full element list for a genome, primary first.
func DeriveElements(t Traits) []Element {
	return assembleElements(DeriveElement(t.Color1, t.Shape), t)
}

func assembleElements(primary Element, t Traits) []Element {
	els := []Element{primary}
	if sec, ok := DeriveSecondaryElement(t.Spikes, t.Pattern, t.Aura, t.Glow); ok {
		els = appendUnique(els, sec, maxElements)
	}
	if t.Glow > tertiaryGlowAbove && t.Aura > tertiaryAuraAbove {
		els = appendUnique(els, tertiaryByModel[clampInt(t.Model, 0, fieldMax[FieldModel])], maxElements)
	}
	if t.Rhythm >= resonanceRhythm && t.Glow >= resonanceGlowMin {
		els = appendUnique(els, resonanceElement, maxElements)
	}
	return els
}

// FinalScore adds the combo bonus and then the per-extra-element bonus to the base score.
// The order matters: both bonuses land before the tier lookup.
func FinalScore(base, comboBonus, elementCount, multiElementBonus int) int {
	extra := max(elementCount-1, 0)
	return base + comboBonus + extra*multiElementBonus
}

// stamp fills the derived attributes of s from its traits.
func (s *Slime) stamp(primary Element, comboBonus, multiElementBonus int) {
	s.Element = primary
	s.Elements = assembleElements(primary, s.Traits)
	s.ComboBonus = comboBonus
	s.RarityScore = FinalScore(CalculateRarity(s.Traits), comboBonus, len(s.Elements), multiElementBonus)
	s.Rarity = RarityTier(s.RarityScore)
	s.Stars = Stars(s.Rarity)
}

// Score derives the final score, tier and element list of a genome carrying the given
// combo bonus, the same way a freshly built slime is stamped.
func Score(t Traits, comboBonus, multiElementBonus int) (int, Tier, []Element) {
	t = t.Clamped()
	els := DeriveElements(t)
	score := FinalScore(CalculateRarity(t), comboBonus, len(els), multiElementBonus)
	return score, RarityTier(score), els
}
