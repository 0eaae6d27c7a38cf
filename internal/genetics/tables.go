package genetics

// Static lookup data. Nothing here holds behaviour; derive.go, generate.go and
// breed.go read these tables.

// fieldWeights scores each value of an integer field. Index is the trait value.
// Size and model are scored separately.
var fieldWeights = map[Field][]int{
	FieldShape:     {0, 0, 0, 1, 1, 2, 2, 3, 3, 4, 5, 6, 8, 10, 12},
	FieldColor1:    {0, 0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 3, 3, 4, 4, 5, 6, 7, 8},
	FieldColor2:    {0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 1, 2, 2, 2, 2, 3, 3, 4, 4, 5},
	FieldEyes:      {0, 0, 0, 0, 1, 1, 2, 2, 3, 3, 4, 5, 6, 7, 8},
	FieldMouth:     {0, 0, 0, 1, 1, 2, 2, 3, 4, 5},
	FieldSpikes:    {0, 0, 0, 1, 2, 2, 3, 4, 5, 6},
	FieldPattern:   {0, 0, 0, 1, 1, 2, 2, 3, 3, 4, 4, 5, 6, 7, 8},
	FieldGlow:      {0, 0, 2, 4, 6, 9},
	FieldAura:      {0, 3, 5, 8, 12},
	FieldRhythm:    {0, 0, 1, 2, 3, 5},
	FieldAccessory: {0, 0, 1, 1, 2, 2, 3, 4, 5, 6, 8},
}

var modelWeights = []int{0, 5, 10}

// sizeRarityPeak is the score of a size at either extreme.
const sizeRarityPeak = 8

// tierThresholds are the minimum scores for each tier above Common, highest first.
var tierThresholds = []struct {
	tier Tier
	min  int
}{
	{Celestial, 95},
	{Mythic, 75},
	{Legendary, 58},
	{Epic, 42},
	{Rare, 28},
	{Uncommon, 15},
}

var tierStars = map[Tier]int{
	Common:    1,
	Uncommon:  2,
	Rare:      3,
	Epic:      4,
	Legendary: 5,
	Mythic:    6,
	Celestial: 7,
}

// colorElements maps color1 to its base element.
var colorElements = [20]Element{
	Fire, Fire, Light, Plant, Plant, Water, Water, Ice, Wind, Electric,
	Arcane, Shadow, Earth, Metal, Toxic, Crystal, Cosmic, Void, Nature, Divine,
}

// exoticShapeMin is the first shape that shifts the base element.
const exoticShapeMin = 12

var exoticShift = map[Element]Element{
	Fire:   Lava,
	Water:  Ice,
	Plant:  Nature,
	Earth:  Crystal,
	Wind:   Electric,
	Light:  Divine,
	Shadow: Void,
	Arcane: Cosmic,
}

// tertiaryByModel picks the rare third element once glow and aura are both maxed out.
var tertiaryByModel = [3]Element{Cosmic, Arcane, Divine}

const (
	tertiaryGlowAbove = 4
	tertiaryAuraAbove = 3
)

// resonanceElement joins when rhythm is maxed on a bright slime.
const (
	resonanceElement = Electric
	resonanceRhythm  = 5
	resonanceGlowMin = 4
)

// maxElements caps the element list.
const maxElements = 4

// combo is the effect of a parent element pairing. Keys are "a+b" in one direction only;
// lookups also try the reverse.
type combo struct {
	Bonus   int
	Results []Element
}

var combos = map[string]combo{
	"fire+earth":     {Bonus: 6, Results: []Element{Lava}},
	"fire+water":     {Bonus: 5, Results: []Element{Wind}},
	"fire+wind":      {Bonus: 5, Results: []Element{Electric, Lava}},
	"water+plant":    {Bonus: 4, Results: []Element{Nature}},
	"water+ice":      {Bonus: 4, Results: []Element{Crystal}},
	"wind+water":     {Bonus: 5, Results: []Element{Electric}},
	"plant+earth":    {Bonus: 4, Results: []Element{Nature}},
	"ice+earth":      {Bonus: 6, Results: []Element{Crystal}},
	"earth+metal":    {Bonus: 5, Results: []Element{Crystal}},
	"electric+metal": {Bonus: 6, Results: []Element{Light}},
	"plant+toxic":    {Bonus: 6, Results: []Element{Shadow, Nature}},
	"light+shadow":   {Bonus: 12, Results: []Element{Cosmic, Void}},
	"light+arcane":   {Bonus: 10, Results: []Element{Divine}},
	"shadow+arcane":  {Bonus: 10, Results: []Element{Void}},
	"crystal+light":  {Bonus: 8, Results: []Element{Divine}},
	"lava+ice":       {Bonus: 9, Results: []Element{Crystal, Earth}},
	"cosmic+void":    {Bonus: 15, Results: []Element{Divine, Arcane}},
	"nature+divine":  {Bonus: 12, Results: []Element{Light}},
	"toxic+water":    {Bonus: 3},
}

// elementColors are the color1 values a combo nudges toward for each element.
// Lava has no color of its own and borrows fire's; it still needs an exotic shape.
var elementColors = map[Element][]int{
	Fire:     {0, 1},
	Water:    {5, 6},
	Plant:    {3, 4},
	Earth:    {12},
	Wind:     {8},
	Ice:      {7},
	Electric: {9},
	Metal:    {13},
	Light:    {2},
	Shadow:   {11},
	Cosmic:   {16},
	Void:     {17},
	Toxic:    {14},
	Crystal:  {15},
	Lava:     {0, 1},
	Nature:   {18},
	Arcane:   {10},
	Divine:   {19},
}

// auraFloors is the minimum aura a combo sets when nudging toward an element.
var auraFloors = map[Element]int{
	Fire:     1,
	Water:    1,
	Plant:    0,
	Earth:    0,
	Wind:     1,
	Ice:      1,
	Electric: 2,
	Metal:    1,
	Light:    2,
	Shadow:   2,
	Cosmic:   3,
	Void:     3,
	Toxic:    1,
	Crystal:  2,
	Lava:     2,
	Nature:   1,
	Arcane:   3,
	Divine:   4,
}

// namePrefixes seed generated display names by primary element.
var namePrefixes = map[Element]string{
	Fire:     "Ember",
	Water:    "Drizzle",
	Plant:    "Sprout",
	Earth:    "Pebble",
	Wind:     "Gust",
	Ice:      "Frost",
	Electric: "Spark",
	Metal:    "Rivet",
	Light:    "Glimmer",
	Shadow:   "Murk",
	Cosmic:   "Nova",
	Void:     "Hollow",
	Toxic:    "Ooze",
	Crystal:  "Prism",
	Lava:     "Magma",
	Nature:   "Moss",
	Arcane:   "Rune",
	Divine:   "Halo",
}

var nameSuffixes = []string{"blob", "goo", "drop", "bean", "puff", "mochi", "jelly", "bop"}

// basicMax bounds starter-safe genomes. Fields not listed use their full range.
var basicMax = map[Field]int{
	FieldShape:     2,
	FieldEyes:      3,
	FieldMouth:     3,
	FieldSpikes:    2,
	FieldPattern:   2,
	FieldGlow:      1,
	FieldAura:      0,
	FieldRhythm:    1,
	FieldAccessory: 1,
	FieldModel:     0,
}

const basicSize = 1.0

// starterTraits is the hand-authored opening roster.
var starterTraits = [3]Traits{
	{Shape: 0, Color1: 0, Color2: 1, Eyes: 0, Mouth: 1, Spikes: 0, Pattern: 0, Glow: 1, Size: 1.0, Aura: 0, Rhythm: 0, Accessory: 0, Model: 0},
	{Shape: 1, Color1: 5, Color2: 6, Eyes: 1, Mouth: 0, Spikes: 1, Pattern: 1, Glow: 0, Size: 1.0, Aura: 0, Rhythm: 1, Accessory: 0, Model: 0},
	{Shape: 8, Color1: 3, Color2: 4, Eyes: 2, Mouth: 2, Spikes: 0, Pattern: 2, Glow: 1, Size: 1.1, Aura: 0, Rhythm: 0, Accessory: 1, Model: 0},
}
