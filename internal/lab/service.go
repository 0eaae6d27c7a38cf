// Package lab is the game service: it loads state from the store, runs the
// genetics engine and ranch rules, and saves the results. HTTP and gRPC both
// call it.
package lab

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xtding233/slimelab/internal/config"
	"github.com/xtding233/slimelab/internal/genetics"
	"github.com/xtding233/slimelab/internal/ranch"
	"github.com/xtding233/slimelab/internal/shop"
	"github.com/xtding233/slimelab/internal/store"
	"github.com/xtding233/slimelab/pkg/logger"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrStartersClaimed = errors.New("starters already claimed")
	ErrTraitMaxed      = errors.New("trait already at maximum")
	ErrSlimeExists     = errors.New("a slime with this id already exists")
)

// MaxPreviews caps one preview request.
const MaxPreviews = 10

// Service serializes all game operations; the engine's source is not safe for
// concurrent use.
type Service struct {
	mu       sync.Mutex
	db       store.DB
	engine   *genetics.Engine
	ranch    *ranch.Ranch
	catalog  shop.Catalog
	settings config.Settings

	// Clock supplies every timestamp. PreviewRNG, when set, replaces the fresh
	// source each preview would otherwise use.
	Clock      func() time.Time
	PreviewRNG genetics.RandomSource
}

// New wires a service. A nil rng uses the crypto default.
func New(db store.DB, settings config.Settings, rng genetics.RandomSource) *Service {
	s := &Service{
		db:     db,
		engine: genetics.NewEngine(settings.Params, rng),
		Clock:  time.Now,
	}
	s.apply(settings)
	return s
}

func (s *Service) now() time.Time { return s.Clock() }

// Apply swaps in reloaded settings. Saved state is untouched.
func (s *Service) Apply(settings config.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply(settings)
	logger.Log.WithField("version", settings.Version).Info("settings applied")
}

func (s *Service) apply(settings config.Settings) {
	s.settings = settings
	s.engine.Params = settings.Params
	s.engine.Clock = func() time.Time { return s.Clock() }
	s.ranch = ranch.New(settings.Ranch)
	s.catalog = shop.NewCatalog(settings.Shop)
}

// Settings returns the active settings.
func (s *Service) Settings() config.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Init creates the wallet and the starting habitats of a fresh save. It is a no-op
// for an existing save.
func (s *Service) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Tx(func(tx store.DB) error {
		if _, err := tx.LoadWallet(); err == nil {
			return nil
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if err := tx.SaveWallet(shop.NewWallet(s.settings.Ranch.StartingCoins)); err != nil {
			return err
		}
		for _, h := range s.ranch.StartingHabitats(s.now()) {
			if err := tx.SaveHabitat(h); err != nil {
				return err
			}
		}
		logger.Log.WithField("coins", s.settings.Ranch.StartingCoins.String()).Info("new save created")
		return nil
	})
}

func (s *Service) Slimes() ([]*genetics.Slime, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.ListSlimes()
}

func (s *Service) Slime(id string) (*genetics.Slime, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.GetSlime(id)
}

// ClaimStarters adds the opening roster to an empty collection.
func (s *Service) ClaimStarters() ([]*genetics.Slime, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*genetics.Slime
	err := s.db.Tx(func(tx store.DB) error {
		n, err := tx.CountSlimes()
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrStartersClaimed
		}
		out = s.engine.StarterSlimes()
		for _, sl := range out {
			if err := tx.SaveSlime(sl); err != nil {
				return err
			}
		}
		return nil
	})
	return out, err
}

func (s *Service) parents(tx store.DB, id1, id2 string) (*genetics.Slime, *genetics.Slime, error) {
	if id1 == "" || id2 == "" {
		return nil, nil, fmt.Errorf("%w: two parent ids are required", ErrInvalidInput)
	}
	if id1 == id2 {
		return nil, nil, fmt.Errorf("%w: %s", ranch.ErrSameParent, id1)
	}
	p1, err := tx.GetSlime(id1)
	if err != nil {
		return nil, nil, err
	}
	p2, err := tx.GetSlime(id2)
	if err != nil {
		return nil, nil, err
	}
	return p1, p2, nil
}

// useBoost spends one mutation boost from the wallet when boost is requested.
func useBoost(tx store.DB, boost bool) error {
	if !boost {
		return nil
	}
	w, err := tx.LoadWallet()
	if err != nil {
		return err
	}
	if err := w.Consume(config.KindMutationBoost); err != nil {
		return err
	}
	return tx.SaveWallet(w)
}

// Breed produces and saves a child right away.
func (s *Service) Breed(id1, id2 string, boost bool) (*genetics.Slime, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var child *genetics.Slime
	err := s.db.Tx(func(tx store.DB) error {
		p1, p2, err := s.parents(tx, id1, id2)
		if err != nil {
			return err
		}
		if err := useBoost(tx, boost); err != nil {
			return err
		}
		child = s.engine.Breed(p1, p2, boost)
		return tx.SaveSlime(child)
	})
	if err == nil {
		logger.Log.WithFields(map[string]any{
			"child":  child.ID,
			"tier":   child.Rarity.String(),
			"score":  child.RarityScore,
			"boost":  boost,
			"parent": []string{id1, id2},
		}).Info("slime bred")
	}
	return child, err
}

// Preview samples outcomes without saving anything or advancing the engine source.
func (s *Service) Preview(id1, id2 string, count int) ([]*genetics.Slime, error) {
	if count < 1 || count > MaxPreviews {
		return nil, fmt.Errorf("%w: count must be in [1,%d]", ErrInvalidInput, MaxPreviews)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p1, p2, err := s.parents(s.db, id1, id2)
	if err != nil {
		return nil, err
	}
	return s.engine.Previews(p1, p2, count, s.PreviewRNG), nil
}

// Import migrates a record from any schema version into the collection. It
// never replaces a slime already saved under the same id.
func (s *Service) Import(raw []byte) (*genetics.Slime, error) {
	sl, err := genetics.MigrateJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if sl.ID == "" {
		sl.ID = uuid.NewString()
	}
	if sl.CreatedAt == 0 {
		sl.CreatedAt = s.now().UnixMilli()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	err = s.db.Tx(func(tx store.DB) error {
		if _, err := tx.GetSlime(sl.ID); err == nil {
			return fmt.Errorf("%w: %s", ErrSlimeExists, sl.ID)
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		return tx.SaveSlime(sl)
	})
	if err != nil {
		return nil, err
	}
	return sl, nil
}

// Boost spends a trait boost to raise one gene. A maxed gene costs nothing, and
// neither does a boost that would strip the element of the slime's habitat.
func (s *Service) Boost(slimeID, fieldName string) (*genetics.Slime, error) {
	f, err := genetics.ParseField(fieldName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out *genetics.Slime
	err = s.db.Tx(func(tx store.DB) error {
		sl, err := tx.GetSlime(slimeID)
		if err != nil {
			return err
		}
		boosted, ok := s.engine.BoostTrait(sl, f)
		if !ok {
			return fmt.Errorf("%w: %s of %s", ErrTraitMaxed, f, slimeID)
		}
		habitats, err := tx.ListHabitats()
		if err != nil {
			return err
		}
		if h := ranch.HabitatOf(habitats, slimeID); h != nil && !boosted.HasElement(h.Element) {
			return fmt.Errorf("%w: boosting %s would drop %s while in habitat %s",
				ranch.ErrElementMismatch, f, h.Element, h.ID)
		}
		w, err := tx.LoadWallet()
		if err != nil {
			return err
		}
		if err := w.Consume(config.KindTraitBoost); err != nil {
			return err
		}
		if err := tx.SaveWallet(w); err != nil {
			return err
		}
		out = boosted
		return tx.SaveSlime(boosted)
	})
	return out, err
}

func (s *Service) Wallet() (*shop.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.LoadWallet()
}

func (s *Service) Catalog() shop.Catalog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog
}
