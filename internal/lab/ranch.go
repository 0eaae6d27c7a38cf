package lab

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/xtding233/slimelab/internal/config"
	"github.com/xtding233/slimelab/internal/genetics"
	"github.com/xtding233/slimelab/internal/ranch"
	"github.com/xtding233/slimelab/internal/shop"
	"github.com/xtding233/slimelab/internal/store"
	"github.com/xtding233/slimelab/pkg/logger"
)

// StartRitual breeds now and saves the ritual; the child stays hidden in it
// until collected.
func (s *Service) StartRitual(id1, id2 string, boost bool) (*ranch.Ritual, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rt *ranch.Ritual
	err := s.db.Tx(func(tx store.DB) error {
		p1, p2, err := s.parents(tx, id1, id2)
		if err != nil {
			return err
		}
		if err := useBoost(tx, boost); err != nil {
			return err
		}
		rt, err = s.ranch.StartRitual(s.engine, p1, p2, boost, s.now())
		if err != nil {
			return err
		}
		return tx.SaveRitual(rt)
	})
	return rt, err
}

func (s *Service) Rituals(pendingOnly bool) ([]*ranch.Ritual, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.ListRituals(pendingOnly)
}

// CollectRitual moves a finished ritual's child onto the hatching timer.
func (s *Service) CollectRitual(id string) (*ranch.Hatching, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var h *ranch.Hatching
	err := s.db.Tx(func(tx store.DB) error {
		rt, err := tx.GetRitual(id)
		if err != nil {
			return err
		}
		h, err = s.ranch.CollectRitual(rt, s.now())
		if err != nil {
			return err
		}
		if err := tx.SaveRitual(rt); err != nil {
			return err
		}
		return tx.SaveHatching(h)
	})
	return h, err
}

func (s *Service) Hatchings(pendingOnly bool) ([]*ranch.Hatching, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.ListHatchings(pendingOnly)
}

// Hatch releases a finished egg into the collection.
func (s *Service) Hatch(id string) (*genetics.Slime, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out *genetics.Slime
	err := s.db.Tx(func(tx store.DB) error {
		h, err := tx.GetHatching(id)
		if err != nil {
			return err
		}
		out, err = ranch.Hatch(h, s.now())
		if err != nil {
			return err
		}
		if err := tx.SaveHatching(h); err != nil {
			return err
		}
		return tx.SaveSlime(out)
	})
	if err == nil {
		logger.Log.WithFields(map[string]any{"slime": out.ID, "tier": out.Rarity.String()}).Info("egg hatched")
	}
	return out, err
}

func (s *Service) Habitats() ([]*ranch.Habitat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.ListHabitats()
}

// Assign houses a slime. It must not live in any other habitat.
func (s *Service) Assign(habitatID, slimeID string) (*ranch.Habitat, error) {
	return s.moveSlime(habitatID, slimeID, ranch.Assign)
}

// Unassign removes a slime from its habitat.
func (s *Service) Unassign(habitatID, slimeID string) (*ranch.Habitat, error) {
	return s.moveSlime(habitatID, slimeID, func(_ []*ranch.Habitat, h *ranch.Habitat, sl *genetics.Slime) error {
		return ranch.Unassign(h, sl.ID)
	})
}

// moveSlime settles a habitat's income before its residents change, so the
// old roster is paid at the old rates.
func (s *Service) moveSlime(habitatID, slimeID string, move func([]*ranch.Habitat, *ranch.Habitat, *genetics.Slime) error) (*ranch.Habitat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out *ranch.Habitat
	err := s.db.Tx(func(tx store.DB) error {
		all, err := tx.ListHabitats()
		if err != nil {
			return err
		}
		var h *ranch.Habitat
		for _, x := range all {
			if x.ID == habitatID {
				h = x
			}
		}
		if h == nil {
			return fmt.Errorf("habitat %s: %w", habitatID, store.ErrNotFound)
		}
		sl, err := tx.GetSlime(slimeID)
		if err != nil {
			return err
		}
		lookup, err := slimeIndex(tx)
		if err != nil {
			return err
		}
		if err := s.settle(tx, []*ranch.Habitat{h}, lookup); err != nil {
			return err
		}
		if err := move(all, h, sl); err != nil {
			return err
		}
		out = h
		return tx.SaveHabitat(h)
	})
	return out, err
}

// Income is the result of collecting every habitat.
type Income struct {
	Collected decimal.Decimal `json:"collected"`
	Balance   decimal.Decimal `json:"balance"`
}

// CollectIncome pays out every habitat into the wallet.
func (s *Service) CollectIncome() (Income, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var inc Income
	err := s.db.Tx(func(tx store.DB) error {
		all, err := tx.ListHabitats()
		if err != nil {
			return err
		}
		lookup, err := slimeIndex(tx)
		if err != nil {
			return err
		}
		before, err := tx.LoadWallet()
		if err != nil {
			return err
		}
		if err := s.settle(tx, all, lookup); err != nil {
			return err
		}
		after, err := tx.LoadWallet()
		if err != nil {
			return err
		}
		inc = Income{Collected: after.Coins.Sub(before.Coins), Balance: after.Coins}
		return nil
	})
	return inc, err
}

// settle collects hs into the wallet and saves them.
func (s *Service) settle(tx store.DB, hs []*ranch.Habitat, lookup map[string]*genetics.Slime) error {
	w, err := tx.LoadWallet()
	if err != nil {
		return err
	}
	now := s.now()
	for _, h := range hs {
		w.Credit(s.ranch.Collect(h, lookup, now))
		if err := tx.SaveHabitat(h); err != nil {
			return err
		}
	}
	return tx.SaveWallet(w)
}

func slimeIndex(tx store.DB) (map[string]*genetics.Slime, error) {
	all, err := tx.ListSlimes()
	if err != nil {
		return nil, err
	}
	out := make(map[string]*genetics.Slime, len(all))
	for _, sl := range all {
		out[sl.ID] = sl
	}
	return out, nil
}

// Purchase is what a buy delivered besides the receipt.
type Purchase struct {
	Receipt   shop.Receipt      `json:"receipt"`
	Hatchings []*ranch.Hatching `json:"hatchings,omitempty"`
	Habitats  []*ranch.Habitat  `json:"habitats,omitempty"`
}

// Buy pays for qty units of sku and delivers them. Element eggs and habitats
// need an element.
func (s *Service) Buy(sku string, el genetics.Element, qty int) (Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out Purchase
	err := s.db.Tx(func(tx store.DB) error {
		it, err := s.catalog.Find(sku)
		if err != nil {
			return err
		}
		if (it.Kind == config.KindEggElement || it.Kind == config.KindHabitat) && !el.Valid() {
			return fmt.Errorf("%w: %s needs an element", ErrInvalidInput, sku)
		}
		w, err := tx.LoadWallet()
		if err != nil {
			return err
		}
		out.Receipt, err = s.catalog.Buy(w, sku, qty)
		if err != nil {
			return err
		}
		if err := tx.SaveWallet(w); err != nil {
			return err
		}
		return s.deliver(tx, it, el, qty, &out)
	})
	if err != nil {
		return Purchase{}, err
	}
	logger.Log.WithFields(map[string]any{
		"sku":     sku,
		"qty":     qty,
		"cost":    out.Receipt.Cost.String(),
		"balance": out.Receipt.Balance.String(),
	}).Info("purchase")
	return out, nil
}

func (s *Service) deliver(tx store.DB, it shop.Item, el genetics.Element, qty int, out *Purchase) error {
	now := s.now()
	switch it.Kind {
	case config.KindEggRandom, config.KindEggElement:
		for range qty {
			var egg *genetics.Slime
			if it.Kind == config.KindEggElement {
				egg = s.engine.ElementSlime(el)
			} else {
				egg = s.engine.RandomSlime(false)
			}
			h := s.ranch.NewHatching(egg, "shop", now)
			if err := tx.SaveHatching(h); err != nil {
				return err
			}
			out.Hatchings = append(out.Hatchings, h)
		}
	case config.KindHabitat:
		existing, err := tx.ListHabitats()
		if err != nil {
			return err
		}
		for i := range qty {
			h := s.ranch.NewHabitat(el, ranch.Position{X: len(existing) + i}, now)
			if err := tx.SaveHabitat(h); err != nil {
				return err
			}
			out.Habitats = append(out.Habitats, h)
		}
	}
	return nil
}

// IsConflict reports errors caused by the current game state rather than the request.
func IsConflict(err error) bool {
	for _, target := range []error{
		ErrStartersClaimed, ErrTraitMaxed, ErrSlimeExists,
		ranch.ErrHabitatFull, ranch.ErrElementMismatch, ranch.ErrAlreadyHoused, ranch.ErrNotHoused,
		ranch.ErrNotReady, ranch.ErrAlreadyCollected,
		shop.ErrInsufficientCoins, shop.ErrNoItem,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
