package genetics

import (
	"encoding/json"
	"fmt"
	"math"
)

// Record is the persisted shape of a slime as any schema version may have written it.
// Every trait and derived field is optional.
type Record struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	CreatedAt   int64        `json:"createdAt"`
	Traits      RecordTraits `json:"traits"`
	Element     string       `json:"element,omitempty"`
	Elements    []string     `json:"elements,omitempty"`
	RarityScore *float64     `json:"rarityScore,omitempty"`
	ComboBonus  int          `json:"comboBonus,omitempty"`
	Rarity      string       `json:"rarity,omitempty"`
	Stars       *int         `json:"stars,omitempty"`
	ParentIDs   []string     `json:"parentIds,omitempty"`
	IsNew       bool         `json:"isNew,omitempty"`
}

// RecordTraits holds possibly missing genes. Old saves wrote some genes as floats.
type RecordTraits struct {
	Shape     *float64 `json:"shape,omitempty"`
	Color1    *float64 `json:"color1,omitempty"`
	Color2    *float64 `json:"color2,omitempty"`
	Eyes      *float64 `json:"eyes,omitempty"`
	Mouth     *float64 `json:"mouth,omitempty"`
	Spikes    *float64 `json:"spikes,omitempty"`
	Pattern   *float64 `json:"pattern,omitempty"`
	Glow      *float64 `json:"glow,omitempty"`
	Size      *float64 `json:"size,omitempty"`
	Aura      *float64 `json:"aura,omitempty"`
	Rhythm    *float64 `json:"rhythm,omitempty"`
	Accessory *float64 `json:"accessory,omitempty"`
	Model     *float64 `json:"model,omitempty"`
}

func (rt *RecordTraits) slot(f Field) **float64 {
	switch f {
	case FieldShape:
		return &rt.Shape
	case FieldColor1:
		return &rt.Color1
	case FieldColor2:
		return &rt.Color2
	case FieldEyes:
		return &rt.Eyes
	case FieldMouth:
		return &rt.Mouth
	case FieldSpikes:
		return &rt.Spikes
	case FieldPattern:
		return &rt.Pattern
	case FieldGlow:
		return &rt.Glow
	case FieldSize:
		return &rt.Size
	case FieldAura:
		return &rt.Aura
	case FieldRhythm:
		return &rt.Rhythm
	case FieldAccessory:
		return &rt.Accessory
	case FieldModel:
		return &rt.Model
	}
	return nil
}

// fill defaults missing genes and clamps everything. color2 falls back to color1 so
// single-color saves keep their look.
func (rt RecordTraits) fill() Traits {
	var t Traits
	t.Size = 1.0
	for _, f := range AllFields {
		if f == FieldColor2 {
			continue
		}
		if v := *rt.slot(f); v != nil && !math.IsNaN(*v) {
			t.Set(f, *v)
		}
	}
	if rt.Color2 != nil && !math.IsNaN(*rt.Color2) {
		t.Set(FieldColor2, *rt.Color2)
	} else {
		t.Color2 = t.Color1
	}
	return t
}

// Record converts a slime to its persisted shape.
func (s *Slime) Record() Record {
	rec := Record{
		ID:         s.ID,
		Name:       s.Name,
		CreatedAt:  s.CreatedAt,
		Element:    string(s.Element),
		ComboBonus: s.ComboBonus,
		Rarity:     s.Rarity.String(),
		IsNew:      s.IsNew,
	}
	for _, f := range AllFields {
		v := s.Traits.Value(f)
		*rec.Traits.slot(f) = &v
	}
	for _, e := range s.Elements {
		rec.Elements = append(rec.Elements, string(e))
	}
	score := float64(s.RarityScore)
	rec.RarityScore = &score
	stars := s.Stars
	rec.Stars = &stars
	if s.ParentIDs != nil {
		rec.ParentIDs = append([]string(nil), s.ParentIDs...)
	}
	return rec
}

// Migrate brings a record of any schema version to the current shape. Migrating a
// current record changes nothing.
func Migrate(rec Record) *Slime {
	t := rec.Traits.fill()
	s := &Slime{
		ID:         rec.ID,
		Name:       rec.Name,
		CreatedAt:  rec.CreatedAt,
		Traits:     t,
		ComboBonus: rec.ComboBonus,
		IsNew:      rec.IsNew,
	}
	if rec.ParentIDs != nil {
		s.ParentIDs = append([]string(nil), rec.ParentIDs...)
	}

	primary, err := ParseElement(rec.Element)
	if err != nil {
		primary = DeriveElement(t.Color1, t.Shape)
	}
	s.Element = primary
	if len(rec.Elements) == 0 {
		s.Elements = assembleElements(primary, t)
	} else {
		s.Elements = migrateElements(primary, rec.Elements)
	}

	if storedScoreUsable(rec.RarityScore) {
		s.RarityScore = int(math.Round(*rec.RarityScore))
	} else {
		s.RarityScore = FinalScore(CalculateRarity(t), rec.ComboBonus, len(s.Elements), DefaultParams().MultiElementBonus)
	}

	tier, err := parseStoredTier(rec.Rarity)
	if err != nil {
		tier = RarityTier(s.RarityScore)
	}
	s.Rarity = tier
	s.Stars = Stars(tier)
	return s
}

// maxStoredScore bounds a believable stored score; anything past it is recomputed.
const maxStoredScore = 10_000

func storedScoreUsable(v *float64) bool {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return false
	}
	return math.Abs(*v) <= maxStoredScore
}

// MigrateJSON decodes and migrates one stored slime.
func MigrateJSON(raw []byte) (*Slime, error) {
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode slime record: %w", err)
	}
	return Migrate(rec), nil
}

// migrateElements keeps known elements in order, puts the primary first and caps the list.
func migrateElements(primary Element, stored []string) []Element {
	out := []Element{primary}
	for _, s := range stored {
		e, err := ParseElement(s)
		if err != nil {
			continue
		}
		out = appendUnique(out, e, maxElements)
	}
	return out
}

func parseStoredTier(label string) (Tier, error) {
	if t, ok := legacyTierNames[label]; ok {
		return t, nil
	}
	return ParseTier(label)
}
