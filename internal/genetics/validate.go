package genetics

import (
	"errors"
	"math"
)

var (
	ErrInvalidProb   = errors.New("invalid probability p; must be 0..1")
	ErrInvalidParams = errors.New("invalid breeding params")
)

func validateProb(p float64) error {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return ErrInvalidProb
	}
	if p < 0 || p > 1 {
		return ErrInvalidProb
	}
	return nil
}
