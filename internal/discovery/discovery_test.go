package discovery

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"scentlab/internal/core"
	"scentlab/internal/lookup"
)

// recordingSource counts how often it is queried.
type recordingSource struct {
	name    string
	results []core.Candidate
	err     error
	calls   int
}

func (r *recordingSource) Name() string { return r.name }

func (r *recordingSource) Search(_ context.Context, _ string) ([]core.Candidate, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.results, nil
}

func candidate(name, brand string, p core.Provenance) core.Candidate {
	return core.Candidate{
		Name:       name,
		Brand:      brand,
		TopNotes:   []string{"Bergamot"},
		Provenance: p,
	}
}

func TestSearchShortQuery(t *testing.T) {
	local := &recordingSource{name: "database"}
	external := &recordingSource{name: "static"}
	o := NewOrchestrator(local, []lookup.Source{external}, nil)

	for _, q := range []string{"", "a", " a ", "  "} {
		result, err := o.Search(context.Background(), q)
		if err != nil {
			t.Fatalf("short query %q must not error: %v", q, err)
		}
		if len(result.Fragrances) != 0 {
			t.Errorf("short query %q must return no results", q)
		}
	}
	if local.calls != 0 || external.calls != 0 {
		t.Error("short queries must not touch any source")
	}
}

func TestSearchMergesLocalAndExternal(t *testing.T) {
	local := &recordingSource{
		name:    "database",
		results: []core.Candidate{candidate("Sauvage", "Dior", core.ProvenanceLocal)},
	}
	external := &recordingSource{
		name: "static",
		results: []core.Candidate{
			candidate("SAUVAGE", "dior", core.ProvenanceExternal),
			candidate("Sauvage Elixir", "Dior", core.ProvenanceExternal),
		},
	}
	o := NewOrchestrator(local, []lookup.Source{external}, nil)

	result, err := o.Search(context.Background(), "sauvage")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if external.calls != 1 {
		t.Error("external chain must be attempted even when the database has results")
	}
	if len(result.Fragrances) != 2 {
		t.Fatalf("expected 2 merged results after dedup, got %d", len(result.Fragrances))
	}
	// The same identity appears in both sets; the database copy wins.
	if result.Fragrances[0].Provenance != core.ProvenanceLocal {
		t.Errorf("expected the local copy first, got %+v", result.Fragrances[0])
	}
	if result.Fragrances[1].Name != "Sauvage Elixir" {
		t.Errorf("expected the novel external candidate second, got %+v", result.Fragrances[1])
	}
	// Counts reflect the pre-dedup contribution of each side.
	if result.Source.Database != 1 || result.Source.External != 2 || result.Source.Total != 3 {
		t.Errorf("unexpected counts %+v", result.Source)
	}
}

func TestSearchExternalFallbackOrder(t *testing.T) {
	local := &recordingSource{name: "database"}
	failing := &recordingSource{name: "fragrancefinder", err: errors.New("boom")}
	empty := &recordingSource{name: "keyword"}
	serving := &recordingSource{
		name:    "scrape",
		results: []core.Candidate{candidate("Aventus", "Creed", core.ProvenanceExternal)},
	}
	unreached := &recordingSource{
		name:    "static",
		results: []core.Candidate{candidate("Layton", "Parfums de Marly", core.ProvenanceExternal)},
	}

	o := NewOrchestrator(local, []lookup.Source{failing, empty, serving, unreached}, nil)

	result, err := o.Search(context.Background(), "aventus")
	if err != nil {
		t.Fatalf("a failing source must not fail the search: %v", err)
	}
	if failing.calls != 1 || empty.calls != 1 || serving.calls != 1 {
		t.Error("chain must be walked in order until a source serves results")
	}
	if unreached.calls != 0 {
		t.Error("sources after the first non-empty one must not run")
	}
	if len(result.Fragrances) != 1 || result.Fragrances[0].Name != "Aventus" {
		t.Errorf("unexpected results %+v", result.Fragrances)
	}
}

func TestSearchAllSourcesFail(t *testing.T) {
	local := &recordingSource{name: "database", err: errors.New("db down")}
	external := &recordingSource{name: "static", err: errors.New("also down")}
	o := NewOrchestrator(local, []lookup.Source{external}, nil)

	result, err := o.Search(context.Background(), "anything")
	if err != nil {
		t.Fatalf("total failure must still not error: %v", err)
	}
	if len(result.Fragrances) != 0 || result.Source.Total != 0 {
		t.Errorf("expected an empty result, got %+v", result)
	}
}

func TestSearchDeduplicates(t *testing.T) {
	external := &recordingSource{
		name: "static",
		results: []core.Candidate{
			candidate("Sauvage", "Dior", core.ProvenanceExternal),
			candidate("SAUVAGE", "dior", core.ProvenanceExternal),
			candidate("Sauvage", "Not Dior", core.ProvenanceExternal),
		},
	}
	o := NewOrchestrator(&recordingSource{name: "database"}, []lookup.Source{external}, nil)

	result, err := o.Search(context.Background(), "sauvage")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Fragrances) != 2 {
		t.Fatalf("expected 2 after dedup, got %d", len(result.Fragrances))
	}
	// First occurrence wins.
	if result.Fragrances[0].Name != "Sauvage" || result.Fragrances[0].Brand != "Dior" {
		t.Errorf("unexpected first result %+v", result.Fragrances[0])
	}
	// Counts reflect the pre-dedup contribution.
	if result.Source.External != 3 || result.Source.Total != 3 {
		t.Errorf("counts must be pre-dedup, got %+v", result.Source)
	}
}

func TestSearchCapsResults(t *testing.T) {
	var many []core.Candidate
	for i := 0; i < 15; i++ {
		many = append(many, candidate(fmt.Sprintf("Fragrance %d", i), "House", core.ProvenanceExternal))
	}
	external := &recordingSource{name: "static", results: many}
	o := NewOrchestrator(&recordingSource{name: "database"}, []lookup.Source{external}, nil)

	result, err := o.Search(context.Background(), "fragrance")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Fragrances) != maxResults {
		t.Errorf("expected results capped at %d, got %d", maxResults, len(result.Fragrances))
	}
	if result.Source.External != 15 {
		t.Errorf("counts must be pre-cap, got %+v", result.Source)
	}
}

func TestSearchNilLocalSource(t *testing.T) {
	external := &recordingSource{
		name:    "static",
		results: []core.Candidate{candidate("Herod", "Parfums de Marly", core.ProvenanceExternal)},
	}
	o := NewOrchestrator(nil, []lookup.Source{external}, nil)

	result, err := o.Search(context.Background(), "herod")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Fragrances) != 1 {
		t.Errorf("expected the external result, got %+v", result.Fragrances)
	}
}
