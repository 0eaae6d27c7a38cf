// Package ranch houses slimes in habitats, pays passive income, and runs the
// timers of breeding rituals and egg hatching. All timestamps come from the caller.
package ranch

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xtding233/slimelab/internal/config"
	"github.com/xtding233/slimelab/internal/genetics"
)

var (
	ErrHabitatFull     = errors.New("habitat is full")
	ErrElementMismatch = errors.New("slime does not carry the habitat element")
	ErrAlreadyHoused   = errors.New("slime already lives in a habitat")
	ErrNotHoused       = errors.New("slime is not in this habitat")
)

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Habitat holds up to Capacity slimes that share its element.
type Habitat struct {
	ID            string           `json:"id"`
	Element       genetics.Element `json:"element"`
	Position      Position         `json:"position"`
	Capacity      int              `json:"capacity"`
	SlimeIDs      []string         `json:"slimeIds"`
	LastCollected int64            `json:"lastCollected"` // unix millis
}

func (h *Habitat) Has(slimeID string) bool {
	return slices.Contains(h.SlimeIDs, slimeID)
}

// Ranch applies the configured rules. It holds no game state.
type Ranch struct {
	cfg config.RanchSettings
}

func New(cfg config.RanchSettings) *Ranch {
	return &Ranch{cfg: cfg}
}

func (r *Ranch) Settings() config.RanchSettings { return r.cfg }

// NewHabitat builds an empty habitat whose income clock starts at now.
func (r *Ranch) NewHabitat(el genetics.Element, pos Position, now time.Time) *Habitat {
	return &Habitat{
		ID:            uuid.NewString(),
		Element:       el,
		Position:      pos,
		Capacity:      r.cfg.HabitatCapacity,
		SlimeIDs:      []string{},
		LastCollected: now.UnixMilli(),
	}
}

// StartingHabitats lays out the opening habitats in a row.
func (r *Ranch) StartingHabitats(now time.Time) []*Habitat {
	out := make([]*Habitat, 0, len(r.cfg.StartingHabitats))
	for i, el := range r.cfg.StartingHabitats {
		out = append(out, r.NewHabitat(el, Position{X: i}, now))
	}
	return out
}

// Assign moves s into h. all is every habitat the player owns, used to keep a
// slime in at most one of them.
func Assign(all []*Habitat, h *Habitat, s *genetics.Slime) error {
	for _, other := range all {
		if other.Has(s.ID) {
			return fmt.Errorf("%w: %s is in %s", ErrAlreadyHoused, s.ID, other.ID)
		}
	}
	if !s.HasElement(h.Element) {
		return fmt.Errorf("%w: %s needs %s", ErrElementMismatch, s.ID, h.Element)
	}
	if len(h.SlimeIDs) >= h.Capacity {
		return fmt.Errorf("%w: %d/%d", ErrHabitatFull, len(h.SlimeIDs), h.Capacity)
	}
	h.SlimeIDs = append(h.SlimeIDs, s.ID)
	return nil
}

func Unassign(h *Habitat, slimeID string) error {
	i := slices.Index(h.SlimeIDs, slimeID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotHoused, slimeID)
	}
	h.SlimeIDs = slices.Delete(h.SlimeIDs, i, i+1)
	return nil
}

// HabitatOf finds the habitat housing slimeID, or nil.
func HabitatOf(all []*Habitat, slimeID string) *Habitat {
	for _, h := range all {
		if h.Has(slimeID) {
			return h
		}
	}
	return nil
}

// Rate is the per-minute income of s while living in h. Slimes whose primary
// element matches the habitat earn the affinity bonus on top.
func (r *Ranch) Rate(h *Habitat, s *genetics.Slime) decimal.Decimal {
	rate := r.cfg.IncomePerMinute[s.Rarity]
	if s.Element == h.Element {
		rate = rate.Mul(decimal.NewFromInt(1).Add(r.cfg.AffinityBonus))
	}
	return rate
}

// Pending is the income h has accrued since its last collection. Slimes missing
// from lookup earn nothing.
func (r *Ranch) Pending(h *Habitat, lookup map[string]*genetics.Slime, now time.Time) decimal.Decimal {
	elapsed := now.UnixMilli() - h.LastCollected
	if elapsed <= 0 {
		return decimal.Zero
	}
	minutes := decimal.NewFromInt(elapsed).Div(decimal.NewFromInt(time.Minute.Milliseconds()))
	total := decimal.Zero
	for _, id := range h.SlimeIDs {
		s, ok := lookup[id]
		if !ok {
			continue
		}
		total = total.Add(r.Rate(h, s).Mul(minutes))
	}
	return total.RoundFloor(2)
}

// Collect pays out pending income and restarts the habitat's clock at now.
func (r *Ranch) Collect(h *Habitat, lookup map[string]*genetics.Slime, now time.Time) decimal.Decimal {
	amt := r.Pending(h, lookup, now)
	if now.UnixMilli() > h.LastCollected {
		h.LastCollected = now.UnixMilli()
	}
	return amt
}
