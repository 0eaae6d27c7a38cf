package genetics

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// RandomSource feeds every roll in the engine. Each operation takes its draws
// in a fixed order, so a scripted source reproduces a breeding exactly.
type RandomSource interface {
	Float64() float64 // [0, 1)
}

// cryptoRNG is the default source.
type cryptoRNG struct{}

func (cryptoRNG) Float64() float64 {
	var buf [8]byte
	if _, err := cryptoRand.Read(buf[:]); err != nil {
		return rand.Float64()
	}
	// top 53 bits fill the mantissa
	return float64(binary.BigEndian.Uint64(buf[:])>>11) / (1 << 53)
}

// DefaultRNG is the source used when callers pass nil. Safe for concurrent use.
func DefaultRNG() RandomSource { return cryptoRNG{} }

// seededRNG replays a PCG stream for simulations. Not safe for concurrent use.
type seededRNG struct{ r *rand.Rand }

func NewSeededRNG(seed uint64) RandomSource {
	return &seededRNG{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seededRNG) Float64() float64 { return s.r.Float64() }

// ScriptedRNG replays a fixed sequence of draws and starts over once exhausted.
// An empty script always yields 0.
type ScriptedRNG struct {
	Values []float64
	pos    int
	calls  int
}

func NewScriptedRNG(values ...float64) *ScriptedRNG {
	return &ScriptedRNG{Values: values}
}

func (s *ScriptedRNG) Float64() float64 {
	s.calls++
	if len(s.Values) == 0 {
		return 0
	}
	v := s.Values[s.pos%len(s.Values)]
	s.pos++
	if v < 0 {
		v = 0
	}
	if v >= 1 {
		v = 1 - 1e-12
	}
	return v
}

// Calls reports how many draws were taken.
func (s *ScriptedRNG) Calls() int { return s.calls }

// intn draws uniformly from [0, n).
func intn(rng RandomSource, n int) int {
	if n <= 1 {
		return 0
	}
	i := int(rng.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

// intRange draws uniformly from [lo, hi], both inclusive.
func intRange(rng RandomSource, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + intn(rng, hi-lo+1)
}

// coin is true on the lower half of the unit interval, so a zero draw picks the first option.
func coin(rng RandomSource) bool {
	return rng.Float64() < 0.5
}
