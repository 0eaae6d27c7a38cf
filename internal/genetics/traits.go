// Package genetics holds the slime genome, the rarity and element derivation
// rules, and the generation, breeding, preview and migration operations built on them.
package genetics

import (
	"fmt"
	"math"
)

// Field names one gene of the trait vector.
type Field int

const (
	FieldShape Field = iota
	FieldColor1
	FieldColor2
	FieldEyes
	FieldMouth
	FieldSpikes
	FieldPattern
	FieldGlow
	FieldSize
	FieldAura
	FieldRhythm
	FieldAccessory
	FieldModel
	numFields
)

// AllFields lists every field in canonical order. Random operations draw in this order.
var AllFields = []Field{
	FieldShape, FieldColor1, FieldColor2, FieldEyes, FieldMouth, FieldSpikes, FieldPattern,
	FieldGlow, FieldSize, FieldAura, FieldRhythm, FieldAccessory, FieldModel,
}

var fieldNames = [numFields]string{
	"shape", "color1", "color2", "eyes", "mouth", "spikes", "pattern",
	"glow", "size", "aura", "rhythm", "accessory", "model",
}

// fieldMax is the inclusive upper bound of every integer field. Size is continuous.
var fieldMax = [numFields]int{14, 19, 19, 14, 9, 9, 14, 5, 0, 4, 5, 10, 2}

const (
	SizeMin  = 0.5
	SizeMax  = 2.0
	SizeStep = 0.1
)

func (f Field) String() string {
	if f < 0 || f >= numFields {
		return fmt.Sprintf("field(%d)", int(f))
	}
	return fieldNames[f]
}

// ParseField resolves a field by its save-file name.
func ParseField(s string) (Field, error) {
	for i, n := range fieldNames {
		if n == s {
			return Field(i), nil
		}
	}
	return 0, fmt.Errorf("unknown trait field %q", s)
}

// Continuous reports whether the field holds a one-decimal float instead of an integer.
func (f Field) Continuous() bool { return f == FieldSize }

// Min is the lower bound of the field.
func (f Field) Min() float64 {
	if f.Continuous() {
		return SizeMin
	}
	return 0
}

// Max is the upper bound of the field.
func (f Field) Max() float64 {
	if f.Continuous() {
		return SizeMax
	}
	return float64(fieldMax[f])
}

// Traits is the full genome of a slime.
type Traits struct {
	Shape     int     `json:"shape"`
	Color1    int     `json:"color1"`
	Color2    int     `json:"color2"`
	Eyes      int     `json:"eyes"`
	Mouth     int     `json:"mouth"`
	Spikes    int     `json:"spikes"`
	Pattern   int     `json:"pattern"`
	Glow      int     `json:"glow"`
	Size      float64 `json:"size"`
	Aura      int     `json:"aura"`
	Rhythm    int     `json:"rhythm"`
	Accessory int     `json:"accessory"`
	Model     int     `json:"model"`
}

func (t *Traits) intField(f Field) *int {
	switch f {
	case FieldShape:
		return &t.Shape
	case FieldColor1:
		return &t.Color1
	case FieldColor2:
		return &t.Color2
	case FieldEyes:
		return &t.Eyes
	case FieldMouth:
		return &t.Mouth
	case FieldSpikes:
		return &t.Spikes
	case FieldPattern:
		return &t.Pattern
	case FieldGlow:
		return &t.Glow
	case FieldAura:
		return &t.Aura
	case FieldRhythm:
		return &t.Rhythm
	case FieldAccessory:
		return &t.Accessory
	case FieldModel:
		return &t.Model
	}
	return nil
}

// Value returns the field as a float.
func (t Traits) Value(f Field) float64 {
	if f.Continuous() {
		return t.Size
	}
	if p := t.intField(f); p != nil {
		return float64(*p)
	}
	return 0
}

// Set writes v into the field, rounding and clamping to the field's range.
func (t *Traits) Set(f Field, v float64) {
	if f.Continuous() {
		t.Size = ClampSize(v)
		return
	}
	if p := t.intField(f); p != nil {
		*p = clampInt(int(math.Round(v)), 0, fieldMax[f])
	}
}

// Clamped returns a copy with every field forced into range.
func (t Traits) Clamped() Traits {
	out := t
	for _, f := range AllFields {
		out.Set(f, t.Value(f))
	}
	return out
}

// InRange reports whether every field already lies in its closed range on its grid.
func (t Traits) InRange() bool {
	return t == t.Clamped()
}

// ClampSize rounds to one decimal and clamps to [SizeMin, SizeMax].
func ClampSize(v float64) float64 {
	if math.IsNaN(v) {
		return 1.0
	}
	v = math.Round(v*10) / 10
	if v < SizeMin {
		return SizeMin
	}
	if v > SizeMax {
		return SizeMax
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// random draws a fresh uniform value across the full range of f.
func (f Field) random(rng RandomSource) float64 {
	if f.Continuous() {
		steps := int(math.Round((SizeMax - SizeMin) / SizeStep))
		return SizeMin + float64(intn(rng, steps+1))*SizeStep
	}
	return float64(intn(rng, fieldMax[f]+1))
}
