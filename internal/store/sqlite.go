package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/xtding233/slimelab/internal/genetics"
	"github.com/xtding233/slimelab/internal/ranch"
	"github.com/xtding233/slimelab/internal/shop"
	"github.com/xtding233/slimelab/pkg/logger"
)

// querier is the part of *sql.DB and *sql.Tx the store uses.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// SQLiteDB implements the DB interface using SQLite
type SQLiteDB struct {
	db *sql.DB
	q  querier
}

// NewSQLiteDB creates a new SQLite database connection
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// every connection to :memory: is a separate database
	if path == ":memory:" || strings.Contains(path, "mode=memory") {
		db.SetMaxOpenConns(1)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return &SQLiteDB{db: db, q: db}, nil
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// Migrate runs database migrations
func (s *SQLiteDB) Migrate() error {
	baseMigrations := []string{
		`CREATE TABLE IF NOT EXISTS slimes (
			id TEXT PRIMARY KEY,
			created_at INTEGER NOT NULL,
			data TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS habitats (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL DEFAULT 0,
			data TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS rituals (
			id TEXT PRIMARY KEY,
			ends_at INTEGER NOT NULL,
			done INTEGER NOT NULL DEFAULT 0,
			data TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS hatchings (
			id TEXT PRIMARY KEY,
			ends_at INTEGER NOT NULL,
			done INTEGER NOT NULL DEFAULT 0,
			data TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS wallet (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			coins TEXT NOT NULL,
			inventory TEXT NOT NULL DEFAULT '{}'
		)`,
		`CREATE INDEX IF NOT EXISTS idx_slimes_created ON slimes(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_rituals_pending ON rituals(done, ends_at)`,
		`CREATE INDEX IF NOT EXISTS idx_hatchings_pending ON hatchings(done, ends_at)`,
	}
	for _, migration := range baseMigrations {
		if _, err := s.q.Exec(migration); err != nil {
			return fmt.Errorf("base migration failed: %w", err)
		}
	}
	return nil
}

func (s *SQLiteDB) Tx(fn func(DB) error) error {
	if _, nested := s.q.(*sql.Tx); nested {
		return fn(s)
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := fn(&SQLiteDB{db: s.db, q: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

// SaveSlime upserts the current persisted shape of s.
func (s *SQLiteDB) SaveSlime(sl *genetics.Slime) error {
	raw, err := json.Marshal(sl.Record())
	if err != nil {
		return fmt.Errorf("encode slime %s: %w", sl.ID, err)
	}
	return s.SaveSlimeJSON(sl.ID, sl.CreatedAt, raw)
}

func (s *SQLiteDB) SaveSlimeJSON(id string, createdAt int64, raw []byte) error {
	_, err := s.q.Exec(`INSERT INTO slimes (id, created_at, data) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET created_at = excluded.created_at, data = excluded.data`,
		id, createdAt, string(raw))
	return err
}

// GetSlime reads and migrates one slime.
func (s *SQLiteDB) GetSlime(id string) (*genetics.Slime, error) {
	var data string
	err := s.q.QueryRow(`SELECT data FROM slimes WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("slime %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return decodeSlime(id, data)
}

// ListSlimes returns every slime oldest first. Rows that no longer decode are
// skipped and logged.
func (s *SQLiteDB) ListSlimes() ([]*genetics.Slime, error) {
	rows, err := s.q.Query(`SELECT id, data FROM slimes ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*genetics.Slime{}
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, err
		}
		sl, err := decodeSlime(id, data)
		if err != nil {
			logger.Log.WithError(err).WithField("slime", id).Warn("skipping unreadable slime")
			continue
		}
		out = append(out, sl)
	}
	return out, rows.Err()
}

func (s *SQLiteDB) CountSlimes() (int, error) {
	var n int
	err := s.q.QueryRow(`SELECT COUNT(*) FROM slimes`).Scan(&n)
	return n, err
}

func decodeSlime(id, data string) (*genetics.Slime, error) {
	sl, err := genetics.MigrateJSON([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("slime %s: %w", id, err)
	}
	if sl.ID == "" {
		sl.ID = id
	}
	return sl, nil
}

func (s *SQLiteDB) SaveHabitat(h *ranch.Habitat) error {
	raw, err := json.Marshal(h)
	if err != nil {
		return err
	}
	_, err = s.q.Exec(`INSERT INTO habitats (id, position, data) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET position = excluded.position, data = excluded.data`,
		h.ID, h.Position.Y*1000+h.Position.X, string(raw))
	return err
}

func (s *SQLiteDB) GetHabitat(id string) (*ranch.Habitat, error) {
	var h ranch.Habitat
	if err := s.getDoc("habitats", id, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func (s *SQLiteDB) ListHabitats() ([]*ranch.Habitat, error) {
	return listDocs[ranch.Habitat](s.q, `SELECT data FROM habitats ORDER BY position, id`)
}

func (s *SQLiteDB) SaveRitual(r *ranch.Ritual) error {
	return s.saveTimed("rituals", r.ID, r.EndsAt, r.Collected, r)
}

func (s *SQLiteDB) GetRitual(id string) (*ranch.Ritual, error) {
	var r ranch.Ritual
	if err := s.getDoc("rituals", id, &r); err != nil {
		return nil, err
	}
	r.Child = migrateEmbedded(r.Child)
	return &r, nil
}

func (s *SQLiteDB) ListRituals(pendingOnly bool) ([]*ranch.Ritual, error) {
	out, err := listDocs[ranch.Ritual](s.q, timedQuery("rituals", pendingOnly))
	for _, r := range out {
		r.Child = migrateEmbedded(r.Child)
	}
	return out, err
}

func (s *SQLiteDB) SaveHatching(h *ranch.Hatching) error {
	return s.saveTimed("hatchings", h.ID, h.EndsAt, h.Hatched, h)
}

func (s *SQLiteDB) GetHatching(id string) (*ranch.Hatching, error) {
	var h ranch.Hatching
	if err := s.getDoc("hatchings", id, &h); err != nil {
		return nil, err
	}
	h.Egg = migrateEmbedded(h.Egg)
	return &h, nil
}

func (s *SQLiteDB) ListHatchings(pendingOnly bool) ([]*ranch.Hatching, error) {
	out, err := listDocs[ranch.Hatching](s.q, timedQuery("hatchings", pendingOnly))
	for _, h := range out {
		h.Egg = migrateEmbedded(h.Egg)
	}
	return out, err
}

// LoadWallet reads the single wallet row.
func (s *SQLiteDB) LoadWallet() (*shop.Wallet, error) {
	var coins, inv string
	err := s.q.QueryRow(`SELECT coins, inventory FROM wallet WHERE id = 1`).Scan(&coins, &inv)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("wallet: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	amt, err := decimal.NewFromString(coins)
	if err != nil {
		return nil, fmt.Errorf("wallet coins %q: %w", coins, err)
	}
	w := shop.NewWallet(amt)
	if err := json.Unmarshal([]byte(inv), &w.Inventory); err != nil {
		return nil, fmt.Errorf("wallet inventory: %w", err)
	}
	if w.Inventory == nil {
		w.Inventory = map[string]int{}
	}
	return w, nil
}

func (s *SQLiteDB) SaveWallet(w *shop.Wallet) error {
	inv, err := json.Marshal(w.Inventory)
	if err != nil {
		return err
	}
	_, err = s.q.Exec(`INSERT INTO wallet (id, coins, inventory) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET coins = excluded.coins, inventory = excluded.inventory`,
		w.Coins.String(), string(inv))
	return err
}

// table names below are constants from this file, never user input

func (s *SQLiteDB) saveTimed(table, id string, endsAt int64, done bool, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	doneInt := 0
	if done {
		doneInt = 1
	}
	_, err = s.q.Exec(`INSERT INTO `+table+` (id, ends_at, done, data) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET ends_at = excluded.ends_at, done = excluded.done, data = excluded.data`,
		id, endsAt, doneInt, string(raw))
	return err
}

func timedQuery(table string, pendingOnly bool) string {
	q := `SELECT data FROM ` + table
	if pendingOnly {
		q += ` WHERE done = 0`
	}
	return q + ` ORDER BY ends_at, id`
}

func (s *SQLiteDB) getDoc(table, id string, v any) error {
	var data string
	err := s.q.QueryRow(`SELECT data FROM `+table+` WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", strings.TrimSuffix(table, "s"), id, ErrNotFound)
	}
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), v)
}

func listDocs[T any](q querier, query string) ([]*T, error) {
	rows, err := q.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*T{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		v := new(T)
		if err := json.Unmarshal([]byte(data), v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// migrateEmbedded repairs a slime stored inside another document.
func migrateEmbedded(s *genetics.Slime) *genetics.Slime {
	if s == nil {
		return nil
	}
	return genetics.Migrate(s.Record())
}
