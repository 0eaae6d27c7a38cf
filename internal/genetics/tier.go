package genetics

import "fmt"

// Tier is an ordered rarity class. Higher values are rarer.
type Tier int

const (
	Common Tier = iota
	Uncommon
	Rare
	Epic
	Legendary
	Mythic
	Celestial
)

// AllTiers lists tiers from lowest to highest.
var AllTiers = []Tier{Common, Uncommon, Rare, Epic, Legendary, Mythic, Celestial}

// MaxStars caps the star count whatever the tier.
const MaxStars = 7

var tierNames = map[Tier]string{
	Common:    "common",
	Uncommon:  "uncommon",
	Rare:      "rare",
	Epic:      "epic",
	Legendary: "legendary",
	Mythic:    "mythic",
	Celestial: "celestial",
}

// legacyTierNames maps labels written by older saves to their current tier.
var legacyTierNames = map[string]Tier{
	"ultra_rare": Epic,
	"godly":      Mythic,
}

func (t Tier) String() string {
	if n, ok := tierNames[t]; ok {
		return n
	}
	return fmt.Sprintf("tier(%d)", int(t))
}

// ParseTier accepts current tier labels only.
func ParseTier(s string) (Tier, error) {
	for t, n := range tierNames {
		if n == s {
			return t, nil
		}
	}
	return Common, fmt.Errorf("unknown rarity tier %q", s)
}

func (t Tier) MarshalText() ([]byte, error) {
	if _, ok := tierNames[t]; !ok {
		return nil, fmt.Errorf("cannot marshal %s", t)
	}
	return []byte(t.String()), nil
}

func (t *Tier) UnmarshalText(b []byte) error {
	v, err := ParseTier(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Stars returns the star count shown for a tier.
func Stars(t Tier) int {
	return min(tierStars[t], MaxStars)
}
