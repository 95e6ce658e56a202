package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"scentlab/internal/battle"
	"scentlab/internal/config"
	"scentlab/internal/core"
	"scentlab/internal/insights"
	"scentlab/internal/store"
	"scentlab/internal/taxonomy"
)

type stubSearcher struct {
	result core.SearchResult
}

func (s *stubSearcher) Search(_ context.Context, _ string) (core.SearchResult, error) {
	return s.result, nil
}

type stubRecommender struct{}

func (stubRecommender) RecommendForCategory(_ context.Context, info taxonomy.CategoryInfo, _ []core.Fragrance, _ *insights.Insights) (*core.Recommendation, error) {
	return &core.Recommendation{
		Category:   info.Tag,
		Reasoning:  "stub reasoning",
		Confidence: 0.8,
		ModelUsed:  "stub-model",
	}, nil
}

func newTestServer(t *testing.T, rec Recommender) (*Server, *store.Store) {
	t.Helper()
	st, err := store.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	srv := New(Deps{
		Store:       st,
		Search:      &stubSearcher{},
		Battles:     battle.NewService(st),
		Analyzer:    insights.NewAnalyzer(st),
		Recommender: rec,
	}, config.Server{Host: "127.0.0.1", Port: 8080})

	return srv, st
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rr := doJSON(t, srv, http.MethodGet, "/health", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "ok" || resp.Checks["database"] != "ok" {
		t.Errorf("unexpected health payload %+v", resp)
	}
}

func TestStatus(t *testing.T) {
	srv, st := newTestServer(t, nil)
	seedFragrance(t, st, "Sauvage", "Dior", core.CategorySummer)

	rr := doJSON(t, srv, http.MethodGet, "/api/status", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp StatusResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Fragrances != 1 {
		t.Errorf("expected 1 fragrance, got %d", resp.Fragrances)
	}
}

func seedFragrance(t *testing.T, st *store.Store, name, brand string, categories ...core.CategoryTag) *core.Fragrance {
	t.Helper()
	f := &core.Fragrance{
		Name:          name,
		Brand:         brand,
		Concentration: core.ConcentrationEDP,
		TopNotes:      []string{"Bergamot"},
		BaseNotes:     []string{"Cedar"},
		Versatility:   4,
		Categories:    categories,
	}
	if err := st.CreateFragrance(context.Background(), f); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	return f
}

func TestSearchEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	srv.deps.Search = &stubSearcher{result: core.SearchResult{
		Fragrances: []core.Candidate{{Name: "Sauvage", Brand: "Dior"}},
		Source:     core.SourceCounts{External: 1, Total: 1},
	}}

	rr := doJSON(t, srv, http.MethodGet, "/api/search?q=sauvage", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp core.SearchResult
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Fragrances) != 1 || resp.Source.Total != 1 {
		t.Errorf("unexpected search payload %+v", resp)
	}
}

func TestAddFragrance(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	payload := map[string]any{
		"name":          "Bleu de Chanel",
		"brand":         "Chanel",
		"concentration": "eau de parfum",
		"top_notes":     []string{"Grapefruit", "Lemon"},
		"middle_notes":  []string{"Ginger"},
		"base_notes":    []string{"Cedar", "Sandalwood"},
	}

	rr := doJSON(t, srv, http.MethodPost, "/api/fragrances", payload)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var created struct {
		Fragrance           core.Fragrance     `json:"fragrance"`
		SuggestedCategories []core.CategoryTag `json:"suggested_categories"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	f := created.Fragrance
	if f.ID == "" {
		t.Error("expected an assigned ID")
	}
	if f.Concentration != core.ConcentrationEDP {
		t.Errorf("expected EDP, got %q", f.Concentration)
	}
	if len(f.Categories) == 0 || f.Versatility < 1 || f.Versatility > 5 {
		t.Errorf("expected derived classification, got %+v", f)
	}
	if len(created.SuggestedCategories) == 0 {
		t.Error("expected suggested categories in the response")
	}

	// A duplicate identity is rejected.
	rr = doJSON(t, srv, http.MethodPost, "/api/fragrances", payload)
	if rr.Code != http.StatusConflict {
		t.Errorf("expected 409 for duplicate, got %d", rr.Code)
	}
}

func TestAddFragranceValidation(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rr := doJSON(t, srv, http.MethodPost, "/api/fragrances", map[string]any{"name": "No Brand"})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing brand, got %d", rr.Code)
	}
}

func TestGetFragrance(t *testing.T) {
	srv, st := newTestServer(t, nil)
	f := seedFragrance(t, st, "Aventus", "Creed", core.CategorySignature)

	rr := doJSON(t, srv, http.MethodGet, "/api/fragrances/"+f.ID, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/fragrances/missing-id", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}
}

func TestFragrancesByCategory(t *testing.T) {
	srv, st := newTestServer(t, nil)
	seedFragrance(t, st, "Acqua di Gio", "Giorgio Armani", core.CategorySummer)

	rr := doJSON(t, srv, http.MethodGet, "/api/fragrances/category/summer", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/fragrances/category/beach", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown category, got %d", rr.Code)
	}
}

func TestBattleEndpoints(t *testing.T) {
	srv, st := newTestServer(t, nil)
	seedFragrance(t, st, "Herod", "Parfums de Marly", core.CategoryWinter)

	rr := doJSON(t, srv, http.MethodGet, "/api/battles", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var list struct {
		Battles []taxonomy.CategoryInfo `json:"battles"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list.Battles) != len(core.AllCategories) {
		t.Errorf("expected %d battle configs, got %d", len(core.AllCategories), len(list.Battles))
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/battles/winter", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/battles/beach", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown category, got %d", rr.Code)
	}
}

func TestSessionFlow(t *testing.T) {
	srv, st := newTestServer(t, nil)
	f := seedFragrance(t, st, "Layton", "Parfums de Marly", core.CategoryDate)

	// Create.
	rr := doJSON(t, srv, http.MethodPost, "/api/sessions", map[string]any{
		"name":       "Friday night",
		"blind_test": true,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var session core.TestSession
	if err := json.Unmarshal(rr.Body.Bytes(), &session); err != nil {
		t.Fatal(err)
	}

	// Record a result.
	rr = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/sessions/%s/results", session.ID), map[string]any{
		"category":            "date",
		"selected_fragrances": []string{f.ID},
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	// Fetch the summary.
	rr = doJSON(t, srv, http.MethodGet, "/api/sessions/"+session.ID, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var summary battle.SessionSummary
	if err := json.Unmarshal(rr.Body.Bytes(), &summary); err != nil {
		t.Fatal(err)
	}
	if len(summary.Results) != 1 {
		t.Errorf("expected 1 result, got %d", len(summary.Results))
	}

	// Complete, then reject further writes.
	rr = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/sessions/%s/complete", session.ID), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	rr = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/sessions/%s/results", session.ID), map[string]any{
		"category":            "date",
		"selected_fragrances": []string{f.ID},
	})
	if rr.Code != http.StatusConflict {
		t.Errorf("expected 409 on completed session, got %d", rr.Code)
	}

	// Unknown session.
	rr = doJSON(t, srv, http.MethodGet, "/api/sessions/missing", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}
}

func TestInsightsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rr := doJSON(t, srv, http.MethodGet, "/api/insights", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var report insights.Insights
	if err := json.Unmarshal(rr.Body.Bytes(), &report); err != nil {
		t.Fatal(err)
	}
	if report.TotalSelections != 0 {
		t.Errorf("expected empty insights, got %+v", report)
	}
}

func TestRecommendationEndpoints(t *testing.T) {
	srv, st := newTestServer(t, stubRecommender{})
	seedFragrance(t, st, "Oud Wood", "Tom Ford", core.CategorySpecial)

	rr := doJSON(t, srv, http.MethodPost, "/api/recommendations/special", nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	// The generated recommendation is persisted.
	rr = doJSON(t, srv, http.MethodGet, "/api/recommendations?category=special", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var list struct {
		Recommendations []core.Recommendation `json:"recommendations"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list.Recommendations) != 1 || list.Recommendations[0].ModelUsed != "stub-model" {
		t.Errorf("unexpected recommendations %+v", list.Recommendations)
	}

	// No fragrances tagged for the category.
	rr = doJSON(t, srv, http.MethodPost, "/api/recommendations/club", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404 for empty category, got %d", rr.Code)
	}
}

func TestRecommendationsUnconfigured(t *testing.T) {
	srv, st := newTestServer(t, nil)
	seedFragrance(t, st, "Oud Wood", "Tom Ford", core.CategorySpecial)

	rr := doJSON(t, srv, http.MethodPost, "/api/recommendations/special", nil)
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 without a recommender, got %d", rr.Code)
	}
}
