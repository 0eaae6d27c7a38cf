package sim

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Stats summarizes integer samples.
type Stats struct {
	Mean   float64 `json:"mean"`
	Var    float64 `json:"var"`
	StdDev float64 `json:"stdDev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	P50    float64 `json:"p50"`
	P90    float64 `json:"p90"`
	P99    float64 `json:"p99"`
}

// calcStats computes population mean/variance and interpolated percentiles.
func calcStats(xs []int) Stats {
	if len(xs) == 0 {
		return Stats{}
	}
	fs := make([]float64, len(xs))
	for i, v := range xs {
		fs[i] = float64(v)
	}
	slices.Sort(fs)

	mean, variance := stat.PopMeanVariance(fs, nil)
	return Stats{
		Mean:   mean,
		Var:    variance,
		StdDev: math.Sqrt(variance),
		Min:    fs[0],
		Max:    fs[len(fs)-1],
		P50:    stat.Quantile(0.50, stat.LinInterp, fs, nil),
		P90:    stat.Quantile(0.90, stat.LinInterp, fs, nil),
		P99:    stat.Quantile(0.99, stat.LinInterp, fs, nil),
	}
}
