package api

import (
	"io"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/xtding233/slimelab/internal/genetics"
	"github.com/xtding233/slimelab/internal/ranch"
	"github.com/xtding233/slimelab/internal/sim"
)

type breedRequest struct {
	Parent1       string `json:"parent1"`
	Parent2       string `json:"parent2"`
	MutationBoost bool   `json:"mutationBoost"`
}

type previewRequest struct {
	Parent1 string `json:"parent1"`
	Parent2 string `json:"parent2"`
	Count   int    `json:"count"`
}

type simulateRequest struct {
	Parent1       string  `json:"parent1"`
	Parent2       string  `json:"parent2"`
	Trials        int     `json:"trials"`
	MutationBoost bool    `json:"mutationBoost"`
	Seed          *uint64 `json:"seed,omitempty"`
	Workers       int     `json:"workers,omitempty"`
}

type simulateResponse struct {
	sim.Result
	Seed   uint64                    `json:"seed"`
	Shares map[genetics.Tier]float64 `json:"tierShares"`
}

type boostRequest struct {
	Field string `json:"field"`
}

type buyRequest struct {
	SKU     string `json:"sku"`
	Element string `json:"element,omitempty"`
	Qty     int    `json:"qty"`
}

type slimeRef struct {
	SlimeID string `json:"slimeId"`
}

// ritualView is a ritual without its child, which stays hidden until collected.
type ritualView struct {
	ID        string `json:"id"`
	Parent1   string `json:"parent1"`
	Parent2   string `json:"parent2"`
	Boosted   bool   `json:"boosted,omitempty"`
	StartedAt int64  `json:"startedAt"`
	EndsAt    int64  `json:"endsAt"`
	Collected bool   `json:"collected,omitempty"`
}

func viewRitual(rt *ranch.Ritual) ritualView {
	return ritualView{
		ID:        rt.ID,
		Parent1:   rt.Parent1,
		Parent2:   rt.Parent2,
		Boosted:   rt.Boosted,
		StartedAt: rt.StartedAt,
		EndsAt:    rt.EndsAt,
		Collected: rt.Collected,
	}
}

const defaultPreviews = 3

func (s *Server) handleListSlimes(w http.ResponseWriter, r *http.Request) {
	all, err := s.svc.Slimes()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, all)
}

func (s *Server) handleGetSlime(w http.ResponseWriter, r *http.Request) {
	sl, err := s.svc.Slime(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sl)
}

func (s *Server) handleStarters(w http.ResponseWriter, r *http.Request) {
	out, err := s.svc.ClaimStarters()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleBreed(w http.ResponseWriter, r *http.Request) {
	var req breedRequest
	if !decode(w, r, &req) {
		return
	}
	child, err := s.svc.Breed(req.Parent1, req.Parent2, req.MutationBoost)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, child)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Count == 0 {
		req.Count = defaultPreviews
	}
	out, err := s.svc.Preview(req.Parent1, req.Parent2, req.Count)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	if !decode(w, r, &req) {
		return
	}
	seed := uint64(time.Now().UnixNano())
	if req.Seed != nil {
		seed = *req.Seed
	}
	workers := req.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	res, err := s.svc.Simulate(r.Context(), req.Parent1, req.Parent2, sim.Request{
		Trials:        req.Trials,
		MutationBoost: req.MutationBoost,
		Seed:          seed,
		Workers:       workers,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	shares := make(map[genetics.Tier]float64, len(genetics.AllTiers))
	for _, t := range genetics.AllTiers {
		shares[t] = res.TierShare(t)
	}
	writeJSON(w, http.StatusOK, simulateResponse{Result: res, Seed: seed, Shares: shares})
}

// handleMigrate accepts a slime record of any schema version.
func (s *Server) handleMigrate(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, ErrTypeValidation, err.Error())
		return
	}
	sl, err := s.svc.Import(raw)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sl)
}

func (s *Server) handleBoost(w http.ResponseWriter, r *http.Request) {
	var req boostRequest
	if !decode(w, r, &req) {
		return
	}
	sl, err := s.svc.Boost(chi.URLParam(r, "id"), req.Field)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sl)
}

func pendingOnly(r *http.Request) bool {
	return r.URL.Query().Get("pending") == "true"
}

func (s *Server) handleListRituals(w http.ResponseWriter, r *http.Request) {
	out, err := s.svc.Rituals(pendingOnly(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	views := make([]ritualView, 0, len(out))
	for _, rt := range out {
		views = append(views, viewRitual(rt))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleStartRitual(w http.ResponseWriter, r *http.Request) {
	var req breedRequest
	if !decode(w, r, &req) {
		return
	}
	rt, err := s.svc.StartRitual(req.Parent1, req.Parent2, req.MutationBoost)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewRitual(rt))
}

func (s *Server) handleCollectRitual(w http.ResponseWriter, r *http.Request) {
	h, err := s.svc.CollectRitual(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) handleListHatchings(w http.ResponseWriter, r *http.Request) {
	out, err := s.svc.Hatchings(pendingOnly(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHatch(w http.ResponseWriter, r *http.Request) {
	sl, err := s.svc.Hatch(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sl)
}

func (s *Server) handleListHabitats(w http.ResponseWriter, r *http.Request) {
	out, err := s.svc.Habitats()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAssign(w http.ResponseWriter, r *http.Request) {
	var req slimeRef
	if !decode(w, r, &req) {
		return
	}
	h, err := s.svc.Assign(chi.URLParam(r, "id"), req.SlimeID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) handleUnassign(w http.ResponseWriter, r *http.Request) {
	var req slimeRef
	if !decode(w, r, &req) {
		return
	}
	h, err := s.svc.Unassign(chi.URLParam(r, "id"), req.SlimeID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) handleCollectIncome(w http.ResponseWriter, r *http.Request) {
	inc, err := s.svc.CollectIncome()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inc)
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Catalog())
}

func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	var req buyRequest
	if !decode(w, r, &req) {
		return
	}
	var el genetics.Element
	if req.Element != "" {
		var err error
		if el, err = genetics.ParseElement(req.Element); err != nil {
			writeError(w, r, http.StatusBadRequest, ErrTypeValidation, err.Error())
			return
		}
	}
	if req.Qty == 0 {
		req.Qty = 1
	}
	p, err := s.svc.Buy(req.SKU, el, req.Qty)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleWallet(w http.ResponseWriter, r *http.Request) {
	wal, err := s.svc.Wallet()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wal)
}
