package genetics

import (
	"strings"
	"testing"
)

func TestCalculateRarityDeterministic(t *testing.T) {
	rng := NewSeededRNG(7)
	for i := 0; i < 1000; i++ {
		tr := randomTraits(rng, false)
		a, b := CalculateRarity(tr), CalculateRarity(tr)
		if a != b {
			t.Fatalf("score not stable for %+v: %d vs %d", tr, a, b)
		}
	}
}

func TestCalculateRarityKnownValues(t *testing.T) {
	if got := CalculateRarity(Traits{Size: 1.0}); got != 0 {
		t.Fatalf("all-zero genome should score 0, got %d", got)
	}
	maxed := Traits{
		Shape: 14, Color1: 19, Color2: 19, Eyes: 14, Mouth: 9, Spikes: 9, Pattern: 14,
		Glow: 5, Size: 2.0, Aura: 4, Rhythm: 5, Accessory: 10, Model: 2,
	}
	if got := CalculateRarity(maxed); got != 104 {
		t.Fatalf("maxed genome should score 104, got %d", got)
	}
	// out of range input is clamped, not indexed past the table
	wild := maxed
	wild.Shape, wild.Aura, wild.Size = 99, -3, 7
	if got := CalculateRarity(wild); got != 104-12 {
		t.Fatalf("clamped genome score = %d, want %d", got, 104-12)
	}
}

func TestSizeRarity(t *testing.T) {
	tests := []struct {
		size float64
		want int
	}{
		{1.0, 0},
		{0.5, 8},
		{2.0, 8},
		{1.5, 4},
		{0.7, 5},
		{1.1, 1},
		{0.1, 8},
	}
	for _, tt := range tests {
		if got := SizeRarity(tt.size); got != tt.want {
			t.Errorf("SizeRarity(%v) = %d, want %d", tt.size, got, tt.want)
		}
	}
}

func TestRarityTierMonotonic(t *testing.T) {
	for s := -20; s < 200; s++ {
		if RarityTier(s) > RarityTier(s+1) {
			t.Fatalf("tier drops between %d and %d", s, s+1)
		}
	}
	if RarityTier(0) != Common || RarityTier(95) != Celestial || RarityTier(94) != Mythic {
		t.Fatalf("threshold edges wrong: %v %v %v", RarityTier(0), RarityTier(95), RarityTier(94))
	}
}

func TestStarsCapped(t *testing.T) {
	tiers := []Tier{Tier(-1), Tier(42)}
	tiers = append(tiers, AllTiers...)
	for _, tier := range tiers {
		if s := Stars(tier); s < 0 || s > MaxStars {
			t.Fatalf("stars for %v out of range: %d", tier, s)
		}
	}
	if Stars(Common) != 1 || Stars(Celestial) != 7 {
		t.Fatalf("unexpected star table: common=%d celestial=%d", Stars(Common), Stars(Celestial))
	}
}

func TestDeriveElement(t *testing.T) {
	tests := []struct {
		color, shape int
		want         Element
	}{
		{0, 0, Fire},
		{0, 12, Lava},
		{5, 3, Water},
		{5, 14, Ice},
		{13, 14, Metal}, // metal has no exotic form
		{19, 0, Divine},
		{99, -4, Divine}, // clamped to color 19, shape 0
	}
	for _, tt := range tests {
		if got := DeriveElement(tt.color, tt.shape); got != tt.want {
			t.Errorf("DeriveElement(%d,%d) = %s, want %s", tt.color, tt.shape, got, tt.want)
		}
	}
}

func TestDeriveSecondaryElement(t *testing.T) {
	tests := []struct {
		name                        string
		spikes, pattern, aura, glow int
		want                        Element
		ok                          bool
	}{
		{"bright aura", 0, 0, 3, 4, Divine, true},
		{"dark aura", 0, 0, 4, 1, Void, true},
		{"bright", 0, 0, 0, 5, Light, true},
		{"spiky", 8, 0, 0, 2, Metal, true},
		{"faceted", 5, 10, 0, 2, Crystal, true},
		{"runic", 0, 12, 0, 2, Arcane, true},
		{"starry", 0, 8, 2, 2, Cosmic, true},
		{"shaded", 0, 8, 0, 0, Shadow, true},
		{"plain", 1, 1, 1, 2, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DeriveSecondaryElement(tt.spikes, tt.pattern, tt.aura, tt.glow)
			if got != tt.want || ok != tt.ok {
				t.Fatalf("got (%q,%v), want (%q,%v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestDeriveElementsBounds(t *testing.T) {
	rng := NewSeededRNG(11)
	for i := 0; i < 5000; i++ {
		tr := randomTraits(rng, false)
		checkElements(t, DeriveElements(tr), DeriveElement(tr.Color1, tr.Shape))
	}

	// tertiary and resonance both fire: the list reaches four
	full := Traits{Color1: 0, Shape: 0, Glow: 5, Aura: 4, Rhythm: 5, Model: 1, Size: 1.0}
	got := DeriveElements(full)
	want := []Element{Fire, Divine, Arcane, Electric}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func checkElements(t *testing.T, els []Element, primary Element) {
	t.Helper()
	if len(els) < 1 || len(els) > maxElements {
		t.Fatalf("element count %d out of [1,%d]: %v", len(els), maxElements, els)
	}
	if els[0] != primary {
		t.Fatalf("first element %s is not primary %s", els[0], primary)
	}
	seen := map[Element]bool{}
	for _, e := range els {
		if seen[e] {
			t.Fatalf("duplicate element %s in %v", e, els)
		}
		if !e.Valid() {
			t.Fatalf("invalid element %q", e)
		}
		seen[e] = true
	}
}

func TestFinalScoreOrdering(t *testing.T) {
	if got := FinalScore(40, 6, 3, 8); got != 40+6+16 {
		t.Fatalf("FinalScore = %d, want %d", got, 62)
	}
	// 28 alone is rare; combo and a second element push it over the epic line
	if RarityTier(FinalScore(28, 0, 1, 8)) != Rare || RarityTier(FinalScore(28, 6, 2, 8)) != Epic {
		t.Fatalf("bonuses should be applied before the tier lookup")
	}
}

func TestTablesCoverEnums(t *testing.T) {
	for _, e := range AllElements {
		if _, ok := namePrefixes[e]; !ok {
			t.Errorf("namePrefixes missing %s", e)
		}
		if _, ok := auraFloors[e]; !ok {
			t.Errorf("auraFloors missing %s", e)
		}
		colors, ok := elementColors[e]
		if !ok || len(colors) == 0 {
			t.Errorf("elementColors missing %s", e)
		}
		for _, c := range colors {
			if DeriveElement(c, 0) != e && DeriveElement(c, exoticShapeMin) != e {
				t.Errorf("color %d cannot produce %s", c, e)
			}
		}
		if len(elementPairs[e]) == 0 {
			t.Errorf("no (color1, shape) pair produces %s", e)
		}
	}
	for _, tier := range AllTiers {
		if _, ok := tierNames[tier]; !ok {
			t.Errorf("tierNames missing %v", tier)
		}
		if _, ok := tierStars[tier]; !ok {
			t.Errorf("tierStars missing %v", tier)
		}
	}
	for _, f := range AllFields {
		if f == FieldSize || f == FieldModel {
			continue
		}
		if w := fieldWeights[f]; len(w) != int(f.Max())+1 {
			t.Errorf("fieldWeights[%s] has %d entries, want %d", f, len(w), int(f.Max())+1)
		}
	}
	if len(modelWeights) != int(FieldModel.Max())+1 {
		t.Errorf("modelWeights has %d entries", len(modelWeights))
	}
	for key, c := range combos {
		parts := strings.Split(key, "+")
		if len(parts) != 2 {
			t.Fatalf("bad combo key %q", key)
		}
		for _, p := range parts {
			if !Element(p).Valid() {
				t.Errorf("combo %q names unknown element %q", key, p)
			}
		}
		if _, dup := combos[parts[1]+"+"+parts[0]]; dup && parts[0] != parts[1] {
			t.Errorf("combo %q is listed in both directions", key)
		}
		for _, r := range c.Results {
			if !r.Valid() {
				t.Errorf("combo %q yields unknown element %q", key, r)
			}
		}
	}
	for src, dst := range exoticShift {
		if !src.Valid() || !dst.Valid() {
			t.Errorf("exotic shift %s->%s uses unknown element", src, dst)
		}
	}
}

func TestParseLabels(t *testing.T) {
	if e, err := ParseElement("air"); err != nil || e != Wind {
		t.Fatalf("air should alias wind, got %q %v", e, err)
	}
	if _, err := ParseElement("plasma"); err == nil {
		t.Fatalf("unknown element must error")
	}
	if _, err := ParseTier("godly"); err == nil {
		t.Fatalf("legacy label is not a current tier")
	}
	for _, tier := range AllTiers {
		got, err := ParseTier(tier.String())
		if err != nil || got != tier {
			t.Fatalf("round trip of %v failed: %v %v", tier, got, err)
		}
	}
	for _, f := range AllFields {
		got, err := ParseField(f.String())
		if err != nil || got != f {
			t.Fatalf("round trip of field %v failed", f)
		}
	}
}
