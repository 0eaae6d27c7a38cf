package store

import (
	"errors"

	"github.com/xtding233/slimelab/internal/genetics"
	"github.com/xtding233/slimelab/internal/ranch"
	"github.com/xtding233/slimelab/internal/shop"
)

var ErrNotFound = errors.New("not found")

// DB is one player's saved game.
type DB interface {
	Close() error
	Migrate() error
	// Tx runs fn against a transaction-scoped DB and commits when fn returns nil.
	Tx(fn func(DB) error) error

	SaveSlime(s *genetics.Slime) error
	// SaveSlimeJSON stores a record as-is; it is migrated when read back.
	SaveSlimeJSON(id string, createdAt int64, raw []byte) error
	GetSlime(id string) (*genetics.Slime, error)
	ListSlimes() ([]*genetics.Slime, error)
	CountSlimes() (int, error)

	SaveHabitat(h *ranch.Habitat) error
	GetHabitat(id string) (*ranch.Habitat, error)
	ListHabitats() ([]*ranch.Habitat, error)

	SaveRitual(r *ranch.Ritual) error
	GetRitual(id string) (*ranch.Ritual, error)
	ListRituals(pendingOnly bool) ([]*ranch.Ritual, error)

	SaveHatching(h *ranch.Hatching) error
	GetHatching(id string) (*ranch.Hatching, error)
	ListHatchings(pendingOnly bool) ([]*ranch.Hatching, error)

	// LoadWallet returns ErrNotFound before the first SaveWallet.
	LoadWallet() (*shop.Wallet, error)
	SaveWallet(w *shop.Wallet) error
}
