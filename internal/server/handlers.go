package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"scentlab/internal/battle"
	"scentlab/internal/classify"
	"scentlab/internal/core"
	"scentlab/internal/store"
	"scentlab/internal/taxonomy"
)

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// StatusResponse is the /api/status payload.
type StatusResponse struct {
	Version    string `json:"version"`
	Uptime     string `json:"uptime"`
	Fragrances int    `json:"fragrances"`
	Sessions   int    `json:"sessions"`
	Results    int    `json:"results"`
}

var serverStartTime = time.Now()

// handleHealth handles the /health endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)

	if _, err := s.deps.Store.GetStats(r.Context()); err != nil {
		checks["database"] = "error"
		s.respondJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status: "unhealthy",
			Checks: checks,
		})
		return
	}
	checks["database"] = "ok"

	s.respondJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Checks: checks,
	})
}

// handleStatus handles the /api/status endpoint
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats, err := s.deps.Store.GetStats(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to read stats")
		return
	}

	s.respondJSON(w, http.StatusOK, StatusResponse{
		Version:    "v1.2.0",
		Uptime:     time.Since(serverStartTime).String(),
		Fragrances: stats.FragranceCount,
		Sessions:   stats.SessionCount,
		Results:    stats.ResultCount,
	})
}

// handleSearch handles GET /api/search?q=
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	result, err := s.deps.Search.Search(r.Context(), query)
	if err != nil {
		s.log.Error("search failed", "query", query, "error", err)
		s.respondError(w, http.StatusInternalServerError, "search failed")
		return
	}

	s.respondJSON(w, http.StatusOK, result)
}

// handleListFragrances handles GET /api/fragrances
func (s *Server) handleListFragrances(w http.ResponseWriter, r *http.Request) {
	fragrances, err := s.deps.Store.ListFragrances(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to list fragrances")
		return
	}
	if fragrances == nil {
		fragrances = []core.Fragrance{}
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"fragrances": fragrances})
}

// addFragranceRequest is the manual-add payload. Categories and versatility
// are derived, not accepted from the client.
type addFragranceRequest struct {
	Name          string   `json:"name"`
	Brand         string   `json:"brand"`
	Concentration string   `json:"concentration"`
	TopNotes      []string `json:"top_notes"`
	MiddleNotes   []string `json:"middle_notes"`
	BaseNotes     []string `json:"base_notes"`
	Description   string   `json:"description"`
	ImageURL      string   `json:"image_url"`
	PriceCents    *int64   `json:"price_cents"`
	Year          *int     `json:"year"`
}

// handleAddFragrance handles POST /api/fragrances
func (s *Server) handleAddFragrance(w http.ResponseWriter, r *http.Request) {
	var req addFragranceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name == "" || req.Brand == "" {
		s.respondError(w, http.StatusBadRequest, "name and brand are required")
		return
	}

	existing, err := s.deps.Store.FindByNameAndBrand(r.Context(), req.Name, req.Brand)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	if existing != nil {
		s.respondError(w, http.StatusConflict, "fragrance already exists")
		return
	}

	candidate := core.Candidate{
		Name:          req.Name,
		Brand:         req.Brand,
		Concentration: core.ParseConcentration(req.Concentration),
		TopNotes:      req.TopNotes,
		MiddleNotes:   req.MiddleNotes,
		BaseNotes:     req.BaseNotes,
		Description:   req.Description,
	}
	categories := classify.Classify(classify.FromCandidate(candidate))
	versatility := classify.ScoreVersatility(req.TopNotes, req.MiddleNotes, req.BaseNotes, categories)

	f := &core.Fragrance{
		Name:          req.Name,
		Brand:         req.Brand,
		Concentration: candidate.Concentration,
		TopNotes:      req.TopNotes,
		MiddleNotes:   req.MiddleNotes,
		BaseNotes:     req.BaseNotes,
		Versatility:   versatility,
		Categories:    categories,
		Description:   req.Description,
		ImageURL:      req.ImageURL,
		PriceCents:    req.PriceCents,
		Year:          req.Year,
	}
	if err := s.deps.Store.CreateFragrance(r.Context(), f); err != nil {
		// A concurrent add can slip past the existence check above and lose
		// the race at the unique constraint instead.
		if errors.Is(err, store.ErrDuplicateFragrance) {
			s.respondError(w, http.StatusConflict, "fragrance already exists")
			return
		}
		s.respondError(w, http.StatusInternalServerError, "failed to save fragrance")
		return
	}

	s.respondJSON(w, http.StatusCreated, map[string]any{
		"fragrance":            f,
		"suggested_categories": categories,
	})
}

// handleGetFragrance handles GET /api/fragrances/{id}
func (s *Server) handleGetFragrance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	f, err := s.deps.Store.FindFragranceByID(r.Context(), id)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	if f == nil {
		s.respondError(w, http.StatusNotFound, "fragrance not found")
		return
	}
	s.respondJSON(w, http.StatusOK, f)
}

// handleFragrancesByCategory handles GET /api/fragrances/category/{category}
func (s *Server) handleFragrancesByCategory(w http.ResponseWriter, r *http.Request) {
	category := core.CategoryTag(chi.URLParam(r, "category"))
	if !core.ValidCategory(category) {
		s.respondError(w, http.StatusBadRequest, "unknown category")
		return
	}

	fragrances, err := s.deps.Store.FindByCategory(r.Context(), category)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "query failed")
		return
	}
	if fragrances == nil {
		fragrances = []core.Fragrance{}
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"category":   category,
		"fragrances": fragrances,
	})
}

// handleFragrancesByIDs handles POST /api/fragrances/batch
func (s *Server) handleFragrancesByIDs(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	fragrances, err := s.deps.Store.FindFragrancesByIDs(r.Context(), req.IDs)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "query failed")
		return
	}
	if fragrances == nil {
		fragrances = []core.Fragrance{}
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"fragrances": fragrances})
}

// handleListBattles handles GET /api/battles
func (s *Server) handleListBattles(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{"battles": s.deps.Battles.AllConfigs()})
}

// handleGetBattle handles GET /api/battles/{category}
func (s *Server) handleGetBattle(w http.ResponseWriter, r *http.Request) {
	category := core.CategoryTag(chi.URLParam(r, "category"))

	b, err := s.deps.Battles.BattleFor(r.Context(), category)
	if err != nil {
		if errors.Is(err, battle.ErrUnknownCategory) {
			s.respondError(w, http.StatusBadRequest, "unknown category")
			return
		}
		s.respondError(w, http.StatusInternalServerError, "failed to assemble battle")
		return
	}
	if b.Contenders == nil {
		b.Contenders = []core.Fragrance{}
	}
	s.respondJSON(w, http.StatusOK, b)
}

// handleListSessions handles GET /api/sessions
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.deps.Battles.Sessions(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	if sessions == nil {
		sessions = []core.TestSession{}
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

// handleCreateSession handles POST /api/sessions
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string `json:"name"`
		BlindTest bool   `json:"blind_test"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	session, err := s.deps.Battles.StartSession(r.Context(), req.Name, req.BlindTest)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	s.respondJSON(w, http.StatusCreated, session)
}

// handleGetSession handles GET /api/sessions/{id}
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	summary, err := s.deps.Battles.Summary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, battle.ErrSessionNotFound) {
			s.respondError(w, http.StatusNotFound, "session not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	s.respondJSON(w, http.StatusOK, summary)
}

// handleAddResult handles POST /api/sessions/{id}/results
func (s *Server) handleAddResult(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category    string   `json:"category"`
		SelectedIDs []string `json:"selected_fragrances"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := s.deps.Battles.RecordResult(r.Context(),
		chi.URLParam(r, "id"), core.CategoryTag(req.Category), req.SelectedIDs)
	if err != nil {
		switch {
		case errors.Is(err, battle.ErrSessionNotFound):
			s.respondError(w, http.StatusNotFound, "session not found")
		case errors.Is(err, battle.ErrUnknownCategory),
			errors.Is(err, battle.ErrNoSelections),
			errors.Is(err, battle.ErrTooManySelections):
			s.respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, battle.ErrSessionCompleted):
			s.respondError(w, http.StatusConflict, "session already completed")
		default:
			s.respondError(w, http.StatusInternalServerError, "failed to record result")
		}
		return
	}
	s.respondJSON(w, http.StatusCreated, result)
}

// handleCompleteSession handles POST /api/sessions/{id}/complete
func (s *Server) handleCompleteSession(w http.ResponseWriter, r *http.Request) {
	err := s.deps.Battles.FinishSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		switch {
		case errors.Is(err, battle.ErrSessionNotFound):
			s.respondError(w, http.StatusNotFound, "session not found")
		case errors.Is(err, battle.ErrSessionCompleted):
			s.respondError(w, http.StatusConflict, "session already completed")
		default:
			s.respondError(w, http.StatusInternalServerError, "failed to complete session")
		}
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "completed"})
}

// handleInsights handles GET /api/insights
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	report, err := s.deps.Analyzer.Analyze(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to compute insights")
		return
	}
	s.respondJSON(w, http.StatusOK, report)
}

// handleListRecommendations handles GET /api/recommendations?category=
func (s *Server) handleListRecommendations(w http.ResponseWriter, r *http.Request) {
	category := core.CategoryTag(r.URL.Query().Get("category"))
	if category != "" && !core.ValidCategory(category) {
		s.respondError(w, http.StatusBadRequest, "unknown category")
		return
	}

	recs, err := s.deps.Store.ListRecommendations(r.Context(), category)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "query failed")
		return
	}
	if recs == nil {
		recs = []core.Recommendation{}
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"recommendations": recs})
}

// handleGenerateRecommendation handles POST /api/recommendations/{category}
func (s *Server) handleGenerateRecommendation(w http.ResponseWriter, r *http.Request) {
	if s.deps.Recommender == nil {
		s.respondError(w, http.StatusServiceUnavailable, "AI recommendations are not configured")
		return
	}

	category := core.CategoryTag(chi.URLParam(r, "category"))
	info, ok := taxonomy.Categories()[category]
	if !ok {
		s.respondError(w, http.StatusBadRequest, "unknown category")
		return
	}

	contenders, err := s.deps.Store.FindByCategory(r.Context(), category)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "query failed")
		return
	}
	if len(contenders) == 0 {
		s.respondError(w, http.StatusNotFound, "no fragrances tagged for this category")
		return
	}

	profile, err := s.deps.Analyzer.Analyze(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to compute insights")
		return
	}

	rec, err := s.deps.Recommender.RecommendForCategory(r.Context(), info, contenders, profile)
	if err != nil {
		s.log.Error("recommendation failed", "category", string(category), "error", err)
		s.respondError(w, http.StatusBadGateway, "recommendation generation failed")
		return
	}

	if err := s.deps.Store.SaveRecommendation(r.Context(), rec); err != nil {
		s.log.Error("failed to store recommendation", "error", err)
	}

	s.respondJSON(w, http.StatusCreated, rec)
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("Failed to encode JSON response", "error", err)
	}
}

// respondError writes a JSON error response
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
