package lab

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xtding233/slimelab/internal/config"
	"github.com/xtding233/slimelab/internal/genetics"
	"github.com/xtding233/slimelab/internal/ranch"
	"github.com/xtding233/slimelab/internal/shop"
	"github.com/xtding233/slimelab/internal/sim"
	"github.com/xtding233/slimelab/internal/store"
	"github.com/xtding233/slimelab/pkg/logger"
)

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time          { return c.t }
func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestService(t *testing.T, rng genetics.RandomSource) (*Service, *testClock) {
	t.Helper()
	logger.Silence()
	db, err := store.NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	_, settings, err := config.NewLoader("").Resolve("")
	if err != nil {
		t.Fatal(err)
	}
	settings.Ranch.StartingCoins = decimal.NewFromInt(1000)

	clock := &testClock{t: time.UnixMilli(1_700_000_000_000)}
	s := New(db, settings, rng)
	s.Clock = clock.Now
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	return s, clock
}

func claim(t *testing.T, s *Service) []*genetics.Slime {
	t.Helper()
	starters, err := s.ClaimStarters()
	if err != nil {
		t.Fatal(err)
	}
	return starters
}

func coins(t *testing.T, s *Service) decimal.Decimal {
	t.Helper()
	w, err := s.Wallet()
	if err != nil {
		t.Fatal(err)
	}
	return w.Coins
}

func TestInitOnlyOnce(t *testing.T) {
	s, _ := newTestService(t, genetics.NewSeededRNG(1))
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	hs, err := s.Habitats()
	if err != nil {
		t.Fatal(err)
	}
	if len(hs) != 3 {
		t.Fatalf("want 3 starting habitats, got %d", len(hs))
	}
	if !coins(t, s).Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("coins = %s", coins(t, s))
	}
}

func TestClaimStartersOnce(t *testing.T) {
	s, _ := newTestService(t, genetics.NewSeededRNG(1))
	starters := claim(t, s)
	if len(starters) != 3 {
		t.Fatalf("want 3 starters, got %d", len(starters))
	}
	if _, err := s.ClaimStarters(); !errors.Is(err, ErrStartersClaimed) || !IsConflict(err) {
		t.Fatalf("second claim: %v", err)
	}
	all, _ := s.Slimes()
	if len(all) != 3 {
		t.Fatalf("collection has %d slimes", len(all))
	}
}

func TestBreedBoostNeedsItem(t *testing.T) {
	s, _ := newTestService(t, genetics.NewSeededRNG(2))
	st := claim(t, s)

	if _, err := s.Breed(st[0].ID, st[1].ID, true); !errors.Is(err, shop.ErrNoItem) {
		t.Fatalf("boost without mutagen: %v", err)
	}
	if all, _ := s.Slimes(); len(all) != 3 {
		t.Fatalf("failed breed saved a child")
	}
	if _, err := s.Buy("mutagen", "", 1); err != nil {
		t.Fatal(err)
	}
	child, err := s.Breed(st[0].ID, st[1].ID, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(child.ParentIDs) != 2 {
		t.Fatalf("lineage missing: %v", child.ParentIDs)
	}
	got, err := s.Slime(child.ID)
	if err != nil || got.ID != child.ID {
		t.Fatalf("child not saved: %v", err)
	}
	w, _ := s.Wallet()
	if w.Inventory[config.KindMutationBoost] != 0 {
		t.Fatalf("mutagen not consumed: %v", w.Inventory)
	}
	if _, err := s.Breed(st[0].ID, st[0].ID, false); !errors.Is(err, ranch.ErrSameParent) {
		t.Fatalf("self breed: %v", err)
	}
	if _, err := s.Breed(st[0].ID, "nope", false); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("missing parent: %v", err)
	}
}

func TestPreviewLeavesEngineSource(t *testing.T) {
	rng := genetics.NewScriptedRNG(0.3, 0.7, 0.1)
	s, _ := newTestService(t, rng)
	// starters are the only draws the service makes
	st := claim(t, s)
	calls := rng.Calls()

	s.PreviewRNG = genetics.NewSeededRNG(9)
	out, err := s.Preview(st[0].ID, st[1].ID, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) == 0 || len(out) > 5 {
		t.Fatalf("got %d previews", len(out))
	}
	if rng.Calls() != calls {
		t.Fatalf("preview drew from the engine source")
	}
	if all, _ := s.Slimes(); len(all) != 3 {
		t.Fatalf("preview saved slimes")
	}
	if _, err := s.Preview(st[0].ID, st[1].ID, MaxPreviews+1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("oversized preview: %v", err)
	}
}

func TestRitualToHatch(t *testing.T) {
	s, clock := newTestService(t, genetics.NewSeededRNG(3))
	st := claim(t, s)

	rt, err := s.StartRitual(st[0].ID, st[2].ID, false)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.CollectRitual(rt.ID); !errors.Is(err, ranch.ErrNotReady) {
		t.Fatalf("early collect: %v", err)
	}
	pending, _ := s.Rituals(true)
	if len(pending) != 1 {
		t.Fatalf("want 1 pending ritual, got %d", len(pending))
	}

	clock.Advance(41 * time.Minute)
	h, err := s.CollectRitual(rt.ID)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.CollectRitual(rt.ID); !errors.Is(err, ranch.ErrAlreadyCollected) {
		t.Fatalf("double collect: %v", err)
	}
	if _, err := s.Hatch(h.ID); !errors.Is(err, ranch.ErrNotReady) {
		t.Fatalf("early hatch: %v", err)
	}

	clock.Advance(13 * time.Minute)
	born, err := s.Hatch(h.ID)
	if err != nil {
		t.Fatal(err)
	}
	if born.ID != rt.Child.ID || !born.IsNew {
		t.Fatalf("hatched %+v, want ritual child %s", born, rt.Child.ID)
	}
	if all, _ := s.Slimes(); len(all) != 4 {
		t.Fatalf("collection has %d slimes, want 4", len(all))
	}
	if left, _ := s.Hatchings(true); len(left) != 0 {
		t.Fatalf("hatched egg still pending")
	}
}

func habitatFor(t *testing.T, s *Service, el genetics.Element) *ranch.Habitat {
	t.Helper()
	hs, err := s.Habitats()
	if err != nil {
		t.Fatal(err)
	}
	for _, h := range hs {
		if h.Element == el {
			return h
		}
	}
	t.Fatalf("no %s habitat", el)
	return nil
}

func TestHabitatIncome(t *testing.T) {
	s, clock := newTestService(t, genetics.NewSeededRNG(4))
	st := claim(t, s)
	fire := st[0]
	h := habitatFor(t, s, fire.Element)

	if _, err := s.Assign(h.ID, fire.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Assign(h.ID, fire.ID); !errors.Is(err, ranch.ErrAlreadyHoused) {
		t.Fatalf("double assign: %v", err)
	}
	if !st[1].HasElement(h.Element) {
		if _, err := s.Assign(h.ID, st[1].ID); !errors.Is(err, ranch.ErrElementMismatch) {
			t.Fatalf("wrong element: %v", err)
		}
	}

	clock.Advance(10 * time.Minute)
	inc, err := s.CollectIncome()
	if err != nil {
		t.Fatal(err)
	}
	want := ranch.New(s.Settings().Ranch).Rate(h, fire).Mul(decimal.NewFromInt(10))
	if !inc.Collected.Equal(want) {
		t.Fatalf("collected %s, want %s", inc.Collected, want)
	}
	if !inc.Balance.Equal(decimal.NewFromInt(1000).Add(want)) {
		t.Fatalf("balance %s", inc.Balance)
	}

	// unassigning settles first, then nothing accrues
	clock.Advance(5 * time.Minute)
	if _, err := s.Unassign(h.ID, fire.ID); err != nil {
		t.Fatal(err)
	}
	clock.Advance(5 * time.Minute)
	inc, err = s.CollectIncome()
	if err != nil {
		t.Fatal(err)
	}
	if !inc.Collected.IsZero() {
		t.Fatalf("empty habitat paid %s", inc.Collected)
	}
	if _, err := s.Unassign(h.ID, fire.ID); !errors.Is(err, ranch.ErrNotHoused) {
		t.Fatalf("double unassign: %v", err)
	}
}

func TestBuyDelivers(t *testing.T) {
	s, _ := newTestService(t, genetics.NewSeededRNG(5))

	p, err := s.Buy("egg", "", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Hatchings) != 2 || !p.Receipt.Cost.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("egg purchase: %+v", p)
	}

	p, err = s.Buy("element_egg", genetics.Ice, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Hatchings) != 1 || p.Hatchings[0].Egg.Element != genetics.Ice {
		t.Fatalf("element egg: %+v", p.Hatchings)
	}

	before := coins(t, s)
	if _, err := s.Buy("element_egg", "", 1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("element egg without element: %v", err)
	}
	if !coins(t, s).Equal(before) {
		t.Fatalf("failed purchase charged the wallet")
	}

	p, err = s.Buy("habitat", genetics.Void, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Habitats) != 1 || p.Habitats[0].Position.X != 3 || p.Habitats[0].Element != genetics.Void {
		t.Fatalf("habitat: %+v", p.Habitats)
	}

	if _, err := s.Buy("habitat", genetics.Fire, 10); !errors.Is(err, shop.ErrInsufficientCoins) {
		t.Fatalf("overspend: %v", err)
	}
	if _, err := s.Buy("nope", "", 1); !errors.Is(err, shop.ErrUnknownSKU) {
		t.Fatalf("unknown sku: %v", err)
	}
	if eggs, _ := s.Hatchings(true); len(eggs) != 3 {
		t.Fatalf("want 3 eggs, got %d", len(eggs))
	}
}

func TestBoostTrait(t *testing.T) {
	s, _ := newTestService(t, genetics.NewSeededRNG(6))
	st := claim(t, s)

	if _, err := s.Boost(st[0].ID, "shape"); !errors.Is(err, shop.ErrNoItem) {
		t.Fatalf("boost without tonic: %v", err)
	}
	if _, err := s.Buy("gene_tonic", "", 1); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Boost(st[0].ID, "wings"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("unknown field: %v", err)
	}

	maxed, err := s.Import([]byte(`{"traits":{"shape":14,"color1":0}}`))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Boost(maxed.ID, "shape"); !errors.Is(err, ErrTraitMaxed) {
		t.Fatalf("maxed boost: %v", err)
	}
	w, _ := s.Wallet()
	if w.Inventory[config.KindTraitBoost] != 1 {
		t.Fatalf("maxed boost spent the tonic")
	}

	got, err := s.Boost(st[0].ID, "shape")
	if err != nil {
		t.Fatal(err)
	}
	if got.Traits.Shape != st[0].Traits.Shape+1 {
		t.Fatalf("shape %d, want %d", got.Traits.Shape, st[0].Traits.Shape+1)
	}
	saved, _ := s.Slime(st[0].ID)
	if saved.Traits.Shape != got.Traits.Shape {
		t.Fatalf("boost not saved")
	}
}

func TestBoostKeepsHabitatElement(t *testing.T) {
	s, _ := newTestService(t, genetics.NewSeededRNG(10))
	sl, err := s.Import([]byte(`{"traits":{"color1":1}}`))
	if err != nil {
		t.Fatal(err)
	}
	if !sl.HasElement(genetics.Fire) {
		t.Fatalf("fixture should be fire, got %v", sl.Elements)
	}
	if next, _ := s.engine.BoostTrait(sl, genetics.FieldColor1); next.HasElement(genetics.Fire) {
		t.Fatalf("fixture boost should drop fire, got %v", next.Elements)
	}
	h := habitatFor(t, s, genetics.Fire)
	if _, err := s.Assign(h.ID, sl.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Buy("gene_tonic", "", 1); err != nil {
		t.Fatal(err)
	}

	_, err = s.Boost(sl.ID, "color1")
	if !errors.Is(err, ranch.ErrElementMismatch) || !IsConflict(err) {
		t.Fatalf("boost that strips the habitat element: %v", err)
	}
	w, _ := s.Wallet()
	if w.Inventory[config.KindTraitBoost] != 1 {
		t.Fatalf("refused boost spent the tonic")
	}
	saved, _ := s.Slime(sl.ID)
	if saved.Traits.Color1 != 1 || !saved.HasElement(genetics.Fire) {
		t.Fatalf("refused boost changed the slime: %+v", saved)
	}

	// once moved out, the same boost goes through
	if _, err := s.Unassign(h.ID, sl.ID); err != nil {
		t.Fatal(err)
	}
	got, err := s.Boost(sl.ID, "color1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Traits.Color1 != 2 {
		t.Fatalf("color1 = %d, want 2", got.Traits.Color1)
	}
}

func TestImportNeverReplaces(t *testing.T) {
	s, _ := newTestService(t, genetics.NewSeededRNG(11))
	st := claim(t, s)
	raw := []byte(`{"id":"` + st[0].ID + `","traits":{"shape":14,"color1":19}}`)
	if _, err := s.Import(raw); !errors.Is(err, ErrSlimeExists) || !IsConflict(err) {
		t.Fatalf("import over an existing id: %v", err)
	}
	saved, err := s.Slime(st[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if saved.Traits != st[0].Traits || saved.Element != st[0].Element {
		t.Fatalf("existing slime replaced: %+v", saved)
	}
	if all, _ := s.Slimes(); len(all) != 3 {
		t.Fatalf("collection has %d slimes", len(all))
	}
}

func TestImportLegacy(t *testing.T) {
	s, _ := newTestService(t, genetics.NewSeededRNG(7))
	sl, err := s.Import([]byte(`{"traits":{"shape":13,"color1":5},"rarity":"godly"}`))
	if err != nil {
		t.Fatal(err)
	}
	if sl.ID == "" || sl.CreatedAt == 0 {
		t.Fatalf("import should assign id and time: %+v", sl)
	}
	if sl.Rarity != genetics.Mythic || sl.Element != genetics.Ice {
		t.Fatalf("legacy not migrated: %+v", sl)
	}
	if _, err := s.Import([]byte(`{`)); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("garbage import: %v", err)
	}
}

func TestSimulate(t *testing.T) {
	s, _ := newTestService(t, genetics.NewSeededRNG(8))
	st := claim(t, s)
	res, err := s.Simulate(context.Background(), st[0].ID, st[1].ID, sim.Request{Trials: 500, Seed: 1, Workers: 2})
	if err != nil {
		t.Fatal(err)
	}
	if res.Trials != 500 {
		t.Fatalf("trials = %d", res.Trials)
	}
	if _, err := s.Simulate(context.Background(), st[0].ID, st[1].ID, sim.Request{}); !errors.Is(err, sim.ErrInvalidTrials) {
		t.Fatalf("zero trials: %v", err)
	}
}

func TestApplySwapsCatalog(t *testing.T) {
	s, _ := newTestService(t, genetics.NewSeededRNG(9))
	settings := s.Settings()
	settings.Shop = settings.Shop[:1]
	s.Apply(settings)
	if _, err := s.Buy("mutagen", "", 1); !errors.Is(err, shop.ErrUnknownSKU) {
		t.Fatalf("removed item still sold: %v", err)
	}
}
