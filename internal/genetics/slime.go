package genetics

import (
	"time"

	"github.com/google/uuid"
)

// Slime is one creature. Derived fields are stamped when it is built and are not
// recomputed on read.
type Slime struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CreatedAt   int64     `json:"createdAt"` // unix millis
	Traits      Traits    `json:"traits"`
	Element     Element   `json:"element"`
	Elements    []Element `json:"elements"`
	RarityScore int       `json:"rarityScore"`
	ComboBonus  int       `json:"comboBonus,omitempty"`
	Rarity      Tier      `json:"rarity"`
	Stars       int       `json:"stars"`
	ParentIDs   []string  `json:"parentIds,omitempty"`
	IsNew       bool      `json:"isNew,omitempty"`
}

// Clone returns a deep copy.
func (s *Slime) Clone() *Slime {
	out := *s
	out.Elements = append([]Element(nil), s.Elements...)
	if s.ParentIDs != nil {
		out.ParentIDs = append([]string(nil), s.ParentIDs...)
	}
	return &out
}

// HasElement reports whether e is anywhere in the slime's element list.
func (s *Slime) HasElement(e Element) bool {
	for _, x := range s.Elements {
		if x == e {
			return true
		}
	}
	return false
}

// Engine runs generation and breeding against one random source.
// It is not safe for concurrent use unless RNG is.
type Engine struct {
	Params Params
	RNG    RandomSource
	Clock  func() time.Time
	NewID  func() string
}

// NewEngine wires an engine. A nil rng falls back to DefaultRNG.
func NewEngine(p Params, rng RandomSource) *Engine {
	if rng == nil {
		rng = DefaultRNG()
	}
	return &Engine{
		Params: p,
		RNG:    rng,
		Clock:  time.Now,
		NewID:  uuid.NewString,
	}
}

func (e *Engine) rng() RandomSource {
	if e.RNG == nil {
		return DefaultRNG()
	}
	return e.RNG
}

// build stamps a fresh slime from a finished genome.
func (e *Engine) build(t Traits, comboBonus int, parents []string, rng RandomSource) *Slime {
	t = t.Clamped()
	s := &Slime{Traits: t}
	s.stamp(DeriveElement(t.Color1, t.Shape), comboBonus, e.Params.MultiElementBonus)
	s.Name = slimeName(s.Element, rng)
	if e.NewID != nil {
		s.ID = e.NewID()
	}
	if e.Clock != nil {
		s.CreatedAt = e.Clock().UnixMilli()
	}
	if parents != nil {
		s.ParentIDs = parents
	}
	return s
}

func slimeName(primary Element, rng RandomSource) string {
	prefix, ok := namePrefixes[primary]
	if !ok {
		prefix = "Slime"
	}
	return prefix + nameSuffixes[intn(rng, len(nameSuffixes))]
}
