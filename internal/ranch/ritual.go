package ranch

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/xtding233/slimelab/internal/genetics"
)

var (
	ErrSameParent       = errors.New("a slime cannot breed with itself")
	ErrNotReady         = errors.New("not ready yet")
	ErrAlreadyCollected = errors.New("already collected")
)

// Ritual is a breeding in progress. The child is fixed when it starts.
type Ritual struct {
	ID        string          `json:"id"`
	Parent1   string          `json:"parent1"`
	Parent2   string          `json:"parent2"`
	Child     *genetics.Slime `json:"child"`
	Boosted   bool            `json:"boosted,omitempty"`
	StartedAt int64           `json:"startedAt"`
	EndsAt    int64           `json:"endsAt"`
	Collected bool            `json:"collected,omitempty"`
}

func (rt *Ritual) Ready(now time.Time) bool {
	return now.UnixMilli() >= rt.EndsAt
}

// Hatching is an egg on its timer.
type Hatching struct {
	ID        string          `json:"id"`
	Egg       *genetics.Slime `json:"egg"`
	Source    string          `json:"source"` // "ritual" | "shop"
	StartedAt int64           `json:"startedAt"`
	EndsAt    int64           `json:"endsAt"`
	Hatched   bool            `json:"hatched,omitempty"`
}

func (h *Hatching) Ready(now time.Time) bool {
	return now.UnixMilli() >= h.EndsAt
}

// StartRitual breeds p1 and p2 now and schedules the reveal by the child's tier.
func (r *Ranch) StartRitual(e *genetics.Engine, p1, p2 *genetics.Slime, boost bool, now time.Time) (*Ritual, error) {
	if p1.ID == p2.ID {
		return nil, fmt.Errorf("%w: %s", ErrSameParent, p1.ID)
	}
	child := e.Breed(p1, p2, boost)
	return &Ritual{
		ID:        uuid.NewString(),
		Parent1:   p1.ID,
		Parent2:   p2.ID,
		Child:     child,
		Boosted:   boost,
		StartedAt: now.UnixMilli(),
		EndsAt:    now.Add(r.cfg.RitualDuration[child.Rarity]).UnixMilli(),
	}, nil
}

// CollectRitual closes a finished ritual and puts its child on the hatching timer.
func (r *Ranch) CollectRitual(rt *Ritual, now time.Time) (*Hatching, error) {
	if rt.Collected {
		return nil, fmt.Errorf("ritual %s: %w", rt.ID, ErrAlreadyCollected)
	}
	if !rt.Ready(now) {
		return nil, fmt.Errorf("ritual %s: %w (%s left)", rt.ID, ErrNotReady, remaining(rt.EndsAt, now))
	}
	rt.Collected = true
	return r.NewHatching(rt.Child, "ritual", now), nil
}

// NewHatching starts an egg's timer by its tier.
func (r *Ranch) NewHatching(egg *genetics.Slime, source string, now time.Time) *Hatching {
	return &Hatching{
		ID:        uuid.NewString(),
		Egg:       egg,
		Source:    source,
		StartedAt: now.UnixMilli(),
		EndsAt:    now.Add(r.cfg.HatchDuration[egg.Rarity]).UnixMilli(),
	}
}

// Hatch releases the slime of a finished egg, flagged as new.
func Hatch(h *Hatching, now time.Time) (*genetics.Slime, error) {
	if h.Hatched {
		return nil, fmt.Errorf("egg %s: %w", h.ID, ErrAlreadyCollected)
	}
	if !h.Ready(now) {
		return nil, fmt.Errorf("egg %s: %w (%s left)", h.ID, ErrNotReady, remaining(h.EndsAt, now))
	}
	h.Hatched = true
	s := h.Egg.Clone()
	s.IsNew = true
	return s, nil
}

func remaining(endsAt int64, now time.Time) time.Duration {
	return (time.Duration(endsAt-now.UnixMilli()) * time.Millisecond).Round(time.Second)
}
