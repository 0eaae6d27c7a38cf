package genetics

import "sort"

// Previews samples possible offspring of a pair without a mutation boost. Results are
// distinct by (tier, primary element) and sorted by score, highest first.
//
// The sample draws from rng, never from the engine's own source, so a real Breed call
// that follows sees an untouched sequence. A nil rng uses a fresh DefaultRNG.
func (e *Engine) Previews(p1, p2 *Slime, count int, rng RandomSource) []*Slime {
	if count <= 0 {
		return nil
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	attempts := count * max(e.Params.PreviewAttempts, 1)

	type outcome struct {
		tier    Tier
		element Element
	}
	seen := make(map[outcome]bool, count)
	out := make([]*Slime, 0, count)
	for i := 0; i < attempts && len(out) < count; i++ {
		child := e.breed(p1, p2, false, rng)
		k := outcome{child.Rarity, child.Element}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, child)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RarityScore > out[j].RarityScore
	})
	if len(out) > count {
		out = out[:count]
	}
	return out
}
