// Package sim estimates the offspring distribution of a breeding pair by repeated
// breeding against a seeded source.
package sim

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/xtding233/slimelab/internal/genetics"
)

// MaxTrials bounds one run so an API caller cannot pin a core.
const MaxTrials = 1_000_000

var ErrInvalidTrials = errors.New("trials must be in [1, 1000000]")

// Request describes one simulation run.
type Request struct {
	Trials        int
	MutationBoost bool
	Seed          uint64
	Workers       int // <=1 runs on the calling goroutine
	KeepOutcomes  bool
}

// Outcome is the compact record of one simulated child.
type Outcome struct {
	Trial    int
	Score    int
	Tier     genetics.Tier
	Stars    int
	Element  genetics.Element
	Elements []genetics.Element
	Traits   genetics.Traits
}

// Result aggregates a run.
type Result struct {
	Trials     int                      `json:"trials"`
	ComboBonus int                      `json:"comboBonus"`
	Score      Stats                    `json:"score"`
	Tiers      map[genetics.Tier]int    `json:"tiers"`
	Elements   map[genetics.Element]int `json:"elements"` // primary element counts
	MultiShare float64                  `json:"multiElementShare"`
	Outcomes   []Outcome                `json:"-"`
}

// TierShare is the observed frequency of t.
func (r Result) TierShare(t genetics.Tier) float64 {
	if r.Trials == 0 {
		return 0
	}
	return float64(r.Tiers[t]) / float64(r.Trials)
}

// Run breeds p1 with p2 req.Trials times. Each worker owns an engine seeded from
// req.Seed and its index, so a run is reproducible for a fixed seed and worker count.
func Run(ctx context.Context, params genetics.Params, p1, p2 *genetics.Slime, req Request) (Result, error) {
	if req.Trials <= 0 || req.Trials > MaxTrials {
		return Result{}, fmt.Errorf("%w: got %d", ErrInvalidTrials, req.Trials)
	}
	if err := params.Validate(); err != nil {
		return Result{}, err
	}
	workers := max(req.Workers, 1)
	workers = min(workers, req.Trials)

	outcomes := make([]Outcome, req.Trials)
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		lo := w * req.Trials / workers
		hi := (w + 1) * req.Trials / workers
		e := genetics.NewEngine(params, genetics.NewSeededRNG(req.Seed+uint64(w)))
		e.NewID = func() string { return "" }
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if i%4096 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				c := e.Breed(p1, p2, req.MutationBoost)
				outcomes[i] = Outcome{
					Trial:    i,
					Score:    c.RarityScore,
					Tier:     c.Rarity,
					Stars:    c.Stars,
					Element:  c.Element,
					Elements: c.Elements,
					Traits:   c.Traits,
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	res := summarize(outcomes)
	res.ComboBonus = genetics.ComboBonus(genetics.ParentElements(p1), genetics.ParentElements(p2))
	if req.KeepOutcomes {
		res.Outcomes = outcomes
	}
	return res, nil
}

func summarize(outcomes []Outcome) Result {
	res := Result{
		Trials:   len(outcomes),
		Tiers:    make(map[genetics.Tier]int),
		Elements: make(map[genetics.Element]int),
	}
	scores := make([]int, len(outcomes))
	multi := 0
	for i, o := range outcomes {
		scores[i] = o.Score
		res.Tiers[o.Tier]++
		res.Elements[o.Element]++
		if len(o.Elements) > 1 {
			multi++
		}
	}
	res.Score = calcStats(scores)
	if len(outcomes) > 0 {
		res.MultiShare = float64(multi) / float64(len(outcomes))
	}
	return res
}
