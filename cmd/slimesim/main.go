// Command slimesim estimates the offspring distribution of a breeding pair and
// writes it as CSV.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/xtding233/slimelab/internal/config"
	"github.com/xtding233/slimelab/internal/genetics"
	"github.com/xtding233/slimelab/internal/report"
	"github.com/xtding233/slimelab/internal/sim"
	"github.com/xtding233/slimelab/internal/store"
	"github.com/xtding233/slimelab/pkg/logger"
)

func main() {
	configDir := flag.String("config", "", "config directory (empty = embedded defaults)")
	profile := flag.String("profile", "", "config profile")
	dbPath := flag.String("db", "", "load parents by id from this database")
	parents := flag.String("parents", "fire,water", "two parents: ids with -db, element names otherwise")
	trials := flag.Int("trials", 100_000, "number of simulated breedings")
	boost := flag.Bool("boost", false, "simulate with a mutation boost")
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "random seed")
	workers := flag.Int("workers", runtime.GOMAXPROCS(0), "parallel workers")
	out := flag.String("out", "", "summary CSV path (empty = stdout)")
	trialsOut := flag.String("trials-out", "", "per-trial CSV path")
	previews := flag.Int("previews", 0, "also print this many preview outcomes")
	flag.Parse()

	logger.Init()
	log := logger.Log

	_, settings, err := config.NewLoader(*configDir).Resolve(*profile)
	if err != nil {
		log.WithError(err).Fatal("load config")
	}
	p1, p2, err := loadParents(settings.Params, *dbPath, *parents, *seed)
	if err != nil {
		log.WithError(err).Fatal("parents")
	}

	start := time.Now()
	res, err := sim.Run(context.Background(), settings.Params, p1, p2, sim.Request{
		Trials:        *trials,
		MutationBoost: *boost,
		Seed:          *seed,
		Workers:       *workers,
		KeepOutcomes:  *trialsOut != "",
	})
	if err != nil {
		log.WithError(err).Fatal("simulate")
	}
	log.WithFields(map[string]any{
		"trials":   res.Trials,
		"seed":     *seed,
		"mean":     fmt.Sprintf("%.2f", res.Score.Mean),
		"p99":      res.Score.P99,
		"combo":    res.ComboBonus,
		"multi":    fmt.Sprintf("%.3f", res.MultiShare),
		"duration": time.Since(start).Round(time.Millisecond).String(),
	}).Info("simulation done")

	if err := writeTo(*out, func(w io.Writer) error {
		return report.NewWriter[report.SummaryRow](w).Write(report.SummaryRows(res))
	}); err != nil {
		log.WithError(err).Fatal("write summary")
	}
	if *trialsOut != "" {
		if err := writeTo(*trialsOut, func(w io.Writer) error {
			return report.NewWriter[report.TrialRow](w).Write(report.TrialRows(res.Outcomes))
		}); err != nil {
			log.WithError(err).Fatal("write trials")
		}
	}
	if *previews > 0 {
		e := genetics.NewEngine(settings.Params, genetics.NewSeededRNG(*seed))
		rows := report.PreviewRows(e.Previews(p1, p2, *previews, genetics.NewSeededRNG(*seed+1)))
		if err := report.NewWriter[report.PreviewRow](os.Stdout).Write(rows); err != nil {
			log.WithError(err).Fatal("write previews")
		}
	}
}

// loadParents reads two saved slimes, or builds one slime per element name.
func loadParents(params genetics.Params, dbPath, list string, seed uint64) (*genetics.Slime, *genetics.Slime, error) {
	parts := strings.Split(list, ",")
	if len(parts) != 2 {
		return nil, nil, fmt.Errorf("want two comma-separated parents, got %q", list)
	}
	if dbPath != "" {
		db, err := store.NewSQLiteDB(dbPath)
		if err != nil {
			return nil, nil, err
		}
		defer db.Close()
		p1, err := db.GetSlime(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, nil, fmt.Errorf("parent %s: %w", parts[0], err)
		}
		p2, err := db.GetSlime(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, nil, fmt.Errorf("parent %s: %w", parts[1], err)
		}
		return p1, p2, nil
	}
	e := genetics.NewEngine(params, genetics.NewSeededRNG(seed^0x5eed))
	var out [2]*genetics.Slime
	for i, name := range parts {
		el, err := genetics.ParseElement(strings.TrimSpace(name))
		if err != nil {
			return nil, nil, err
		}
		out[i] = e.ElementSlime(el)
	}
	return out[0], out[1], nil
}

func writeTo(path string, write func(io.Writer) error) error {
	if path == "" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
