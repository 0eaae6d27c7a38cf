package lab

import (
	"context"

	"github.com/xtding233/slimelab/internal/sim"
)

// Simulate runs a Monte Carlo estimate for two saved parents. The run uses its
// own seeded engines and never touches the service's source.
func (s *Service) Simulate(ctx context.Context, id1, id2 string, req sim.Request) (sim.Result, error) {
	s.mu.Lock()
	p1, p2, err := s.parents(s.db, id1, id2)
	params := s.settings.Params
	s.mu.Unlock()
	if err != nil {
		return sim.Result{}, err
	}
	return sim.Run(ctx, params, p1, p2, req)
}
