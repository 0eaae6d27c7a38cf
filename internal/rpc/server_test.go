package rpc

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/xtding233/slimelab/internal/config"
	"github.com/xtding233/slimelab/internal/genetics"
	"github.com/xtding233/slimelab/internal/lab"
	"github.com/xtding233/slimelab/internal/store"
	"github.com/xtding233/slimelab/pkg/logger"
)

func newTestClient(t *testing.T) (*Client, *lab.Service) {
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
	svc := lab.New(db, settings, genetics.NewSeededRNG(1))
	if err := svc.Init(); err != nil {
		t.Fatal(err)
	}

	lis := bufconn.Listen(1 << 20)
	srv := NewServer(svc)
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	cc, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { cc.Close() })
	return NewClient(cc), svc
}

func ctx(t *testing.T) context.Context {
	c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return c
}

func TestBreedOverRPC(t *testing.T) {
	c, svc := newTestClient(t)
	st, err := svc.ClaimStarters()
	if err != nil {
		t.Fatal(err)
	}
	child, err := c.Breed(ctx(t), st[0].ID, st[1].ID, false)
	if err != nil {
		t.Fatal(err)
	}
	saved, err := svc.Slime(child.ID)
	if err != nil {
		t.Fatal(err)
	}
	if saved.Traits != child.Traits || saved.Rarity != child.Rarity || saved.CreatedAt != child.CreatedAt {
		t.Fatalf("rpc child %+v differs from saved %+v", child, saved)
	}

	_, err = c.Breed(ctx(t), st[0].ID, "ghost", false)
	if status.Code(err) != codes.NotFound {
		t.Fatalf("missing parent: %v", err)
	}
	_, err = c.Breed(ctx(t), st[0].ID, st[0].ID, false)
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("self breed: %v", err)
	}
	_, err = c.Breed(ctx(t), st[0].ID, st[1].ID, true)
	if status.Code(err) != codes.FailedPrecondition {
		t.Fatalf("boost without mutagen: %v", err)
	}
}

func TestPreviewOverRPC(t *testing.T) {
	c, svc := newTestClient(t)
	st, err := svc.ClaimStarters()
	if err != nil {
		t.Fatal(err)
	}
	out, err := c.Preview(ctx(t), st[0].ID, st[2].ID, 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) == 0 || len(out) > 4 {
		t.Fatalf("got %d previews", len(out))
	}
}

func TestDeriveOverRPC(t *testing.T) {
	c, _ := newTestClient(t)
	tr := genetics.Traits{Shape: 12, Color1: 0, Glow: 5, Aura: 4, Size: 2.0}
	got, err := c.Derive(ctx(t), tr, 6)
	if err != nil {
		t.Fatal(err)
	}
	score, tier, els := genetics.Score(tr, 6, genetics.DefaultParams().MultiElementBonus)
	if got.Score != score || got.Tier != tier || got.Stars != genetics.Stars(tier) {
		t.Fatalf("derive = %+v, want score %d tier %v", got, score, tier)
	}
	if got.Element != genetics.Lava || len(got.Elements) != len(els) {
		t.Fatalf("elements %v, want %v", got.Elements, els)
	}
}
