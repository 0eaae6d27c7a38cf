// Package report writes simulation and preview rows as CSV.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/xtding233/slimelab/internal/genetics"
	"github.com/xtding233/slimelab/internal/sim"
)

// TrialRow is one simulated child.
type TrialRow struct {
	Trial    int     `csv:"trial"`
	Score    int     `csv:"score"`
	Tier     string  `csv:"tier"`
	Stars    int     `csv:"stars"`
	Element  string  `csv:"element"`
	Elements string  `csv:"elements"`
	Shape    int     `csv:"shape"`
	Color1   int     `csv:"color1"`
	Glow     int     `csv:"glow"`
	Aura     int     `csv:"aura"`
	Size     float64 `csv:"size"`
	Model    int     `csv:"model"`
}

// SummaryRow is one tier of a run's histogram.
type SummaryRow struct {
	Tier  string  `csv:"tier"`
	Count int     `csv:"count"`
	Share float64 `csv:"share"`
}

// PreviewRow is one preview candidate.
type PreviewRow struct {
	Rank     int    `csv:"rank"`
	Name     string `csv:"name"`
	Score    int    `csv:"score"`
	Tier     string `csv:"tier"`
	Element  string `csv:"element"`
	Elements string `csv:"elements"`
}

func joinElements(els []genetics.Element) string {
	parts := make([]string, len(els))
	for i, e := range els {
		parts[i] = string(e)
	}
	return strings.Join(parts, "|")
}

// TrialRows flattens kept outcomes.
func TrialRows(outcomes []sim.Outcome) []TrialRow {
	rows := make([]TrialRow, 0, len(outcomes))
	for _, o := range outcomes {
		rows = append(rows, TrialRow{
			Trial:    o.Trial,
			Score:    o.Score,
			Tier:     o.Tier.String(),
			Stars:    o.Stars,
			Element:  string(o.Element),
			Elements: joinElements(o.Elements),
			Shape:    o.Traits.Shape,
			Color1:   o.Traits.Color1,
			Glow:     o.Traits.Glow,
			Aura:     o.Traits.Aura,
			Size:     o.Traits.Size,
			Model:    o.Traits.Model,
		})
	}
	return rows
}

// SummaryRows lists every tier in order, including empty ones.
func SummaryRows(res sim.Result) []SummaryRow {
	rows := make([]SummaryRow, 0, len(genetics.AllTiers))
	for _, t := range genetics.AllTiers {
		rows = append(rows, SummaryRow{Tier: t.String(), Count: res.Tiers[t], Share: res.TierShare(t)})
	}
	return rows
}

func PreviewRows(previews []*genetics.Slime) []PreviewRow {
	rows := make([]PreviewRow, 0, len(previews))
	for i, s := range previews {
		rows = append(rows, PreviewRow{
			Rank:     i + 1,
			Name:     s.Name,
			Score:    s.RarityScore,
			Tier:     s.Rarity.String(),
			Element:  string(s.Element),
			Elements: joinElements(s.Elements),
		})
	}
	return rows
}

// Writer streams rows of one type, writing the header once.
type Writer[T any] struct {
	w             io.Writer
	headerWritten bool
}

func NewWriter[T any](w io.Writer) *Writer[T] {
	return &Writer[T]{w: w}
}

// Write appends rows. The first call includes the header even when rows is empty.
func (cw *Writer[T]) Write(rows []T) error {
	if !cw.headerWritten {
		if err := gocsv.Marshal(rows, cw.w); err != nil {
			return fmt.Errorf("writing csv: %w", err)
		}
		cw.headerWritten = true
		return nil
	}
	if len(rows) == 0 {
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(rows, cw.w); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}
