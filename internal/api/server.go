// Package api exposes the lab service over JSON HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/xtding233/slimelab/internal/lab"
	"github.com/xtding233/slimelab/internal/ranch"
	"github.com/xtding233/slimelab/internal/shop"
	"github.com/xtding233/slimelab/internal/sim"
	"github.com/xtding233/slimelab/internal/store"
	"github.com/xtding233/slimelab/pkg/logger"
)

// Error types carried in error bodies.
const (
	ErrTypeValidation = "validation_error"
	ErrTypeNotFound   = "not_found"
	ErrTypeConflict   = "conflict"
	ErrTypeInternal   = "internal_error"
)

// APIError is the body of every non-2xx response.
type APIError struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

type Server struct {
	svc     *lab.Service
	started time.Time
	// Timeout bounds a request, simulations included.
	Timeout time.Duration
}

func NewServer(svc *lab.Service) *Server {
	return &Server{svc: svc, started: time.Now(), Timeout: 60 * time.Second}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.Timeout))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Get("/slimes", s.handleListSlimes)
		r.Get("/slimes/{id}", s.handleGetSlime)
		r.Post("/slimes/{id}/boost", s.handleBoost)
		r.Post("/starters", s.handleStarters)
		r.Post("/breed", s.handleBreed)
		r.Post("/preview", s.handlePreview)
		r.Post("/simulate", s.handleSimulate)
		r.Post("/migrate", s.handleMigrate)

		r.Get("/rituals", s.handleListRituals)
		r.Post("/rituals", s.handleStartRitual)
		r.Post("/rituals/{id}/collect", s.handleCollectRitual)
		r.Get("/hatchings", s.handleListHatchings)
		r.Post("/hatch/{id}", s.handleHatch)

		r.Get("/habitats", s.handleListHabitats)
		r.Post("/habitats/collect", s.handleCollectIncome)
		r.Post("/habitats/{id}/assign", s.handleAssign)
		r.Post("/habitats/{id}/unassign", s.handleUnassign)

		r.Get("/shop", s.handleCatalog)
		r.Post("/shop/buy", s.handleBuy)
		r.Get("/wallet", s.handleWallet)
	})
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		entry := logger.Log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   ww.Status(),
			"bytes":    ww.BytesWritten(),
			"duration": time.Since(start).String(),
			"request":  middleware.GetReqID(r.Context()),
		})
		if ww.Status() >= http.StatusInternalServerError {
			entry.Warn("request failed")
			return
		}
		entry.Debug("request")
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, errType, message string) {
	writeJSON(w, status, APIError{
		Type:      errType,
		Message:   message,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

// writeServiceError maps service errors to a status.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, r, http.StatusNotFound, ErrTypeNotFound, err.Error())
	case errors.Is(err, shop.ErrUnknownSKU):
		writeError(w, r, http.StatusNotFound, ErrTypeNotFound, err.Error())
	case lab.IsConflict(err):
		writeError(w, r, http.StatusConflict, ErrTypeConflict, err.Error())
	case errors.Is(err, lab.ErrInvalidInput),
		errors.Is(err, ranch.ErrSameParent),
		errors.Is(err, shop.ErrInvalidQty),
		errors.Is(err, sim.ErrInvalidTrials):
		writeError(w, r, http.StatusBadRequest, ErrTypeValidation, err.Error())
	default:
		logger.Log.WithError(err).WithField("path", r.URL.Path).Error("request failed")
		writeError(w, r, http.StatusInternalServerError, ErrTypeInternal, "internal error")
	}
}

// decode reads a JSON body into v and writes a 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, ErrTypeValidation, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.svc.Settings().Version,
		"uptime":  time.Since(s.started).Round(time.Second).String(),
	})
}
