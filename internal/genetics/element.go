package genetics

import "fmt"

// Element is a slime's affinity tag.
type Element string

const (
	Fire     Element = "fire"
	Water    Element = "water"
	Plant    Element = "plant"
	Earth    Element = "earth"
	Wind     Element = "wind"
	Ice      Element = "ice"
	Electric Element = "electric"
	Metal    Element = "metal"
	Light    Element = "light"
	Shadow   Element = "shadow"
	Cosmic   Element = "cosmic"
	Void     Element = "void"
	Toxic    Element = "toxic"
	Crystal  Element = "crystal"
	Lava     Element = "lava"
	Nature   Element = "nature"
	Arcane   Element = "arcane"
	Divine   Element = "divine"
)

// AllElements is the closed set of elements. Every table keyed by element must cover it.
var AllElements = []Element{
	Fire, Water, Plant, Earth, Wind, Ice, Electric, Metal, Light,
	Shadow, Cosmic, Void, Toxic, Crystal, Lava, Nature, Arcane, Divine,
}

// FallbackElement is used when legacy data carries no element at all.
const FallbackElement = Nature

// Valid reports whether e belongs to AllElements.
func (e Element) Valid() bool {
	for _, x := range AllElements {
		if x == e {
			return true
		}
	}
	return false
}

// ParseElement accepts the save-file spelling of an element. "air" is an old alias of wind.
func ParseElement(s string) (Element, error) {
	if s == "air" {
		return Wind, nil
	}
	e := Element(s)
	if !e.Valid() {
		return "", fmt.Errorf("unknown element %q", s)
	}
	return e, nil
}

// appendUnique adds e unless it is already present or the set is full.
func appendUnique(set []Element, e Element, limit int) []Element {
	if len(set) >= limit {
		return set
	}
	for _, x := range set {
		if x == e {
			return set
		}
	}
	return append(set, e)
}

func dedupeElements(in []Element) []Element {
	out := make([]Element, 0, len(in))
	for _, e := range in {
		out = appendUnique(out, e, len(in))
	}
	return out
}

func unionElements(a, b []Element) []Element {
	out := make([]Element, 0, len(a)+len(b))
	for _, e := range a {
		out = appendUnique(out, e, len(a)+len(b))
	}
	for _, e := range b {
		out = appendUnique(out, e, len(a)+len(b))
	}
	return out
}
