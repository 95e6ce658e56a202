package lookup

import (
	"context"

	"scentlab/internal/core"
)

// MockSource implements Source for testing purposes
type MockSource struct {
	name    string
	results []core.Candidate
	err     error
}

// NewMockSource creates a new mock lookup source with a couple of canned
// candidates.
func NewMockSource() *MockSource {
	return &MockSource{
		name: string(SourceTypeMock),
		results: []core.Candidate{
			{
				Name:          "Mock Fougere",
				Brand:         "Test House",
				Concentration: core.ConcentrationEDT,
				TopNotes:      []string{"Bergamot", "Lavender"},
				MiddleNotes:   []string{"Geranium"},
				BaseNotes:     []string{"Oakmoss", "Coumarin"},
				Provenance:    core.ProvenanceExternal,
				SourceTag:     string(SourceTypeMock),
			},
			{
				Name:          "Mock Oriental",
				Brand:         "Test House",
				Concentration: core.ConcentrationEDP,
				TopNotes:      []string{"Cinnamon"},
				MiddleNotes:   []string{"Rose", "Incense"},
				BaseNotes:     []string{"Vanilla", "Amber"},
				Provenance:    core.ProvenanceExternal,
				SourceTag:     string(SourceTypeMock),
			},
		},
	}
}

// Name returns the name of this source
func (m *MockSource) Name() string { return m.name }

// Search returns the canned candidates, or the configured error.
func (m *MockSource) Search(_ context.Context, _ string) ([]core.Candidate, error) {
	if m.err != nil {
		return nil, m.err
	}
	return append([]core.Candidate(nil), m.results...), nil
}

// SetResults allows customization of mock results for testing
func (m *MockSource) SetResults(results []core.Candidate) { m.results = results }

// SetError makes every Search call fail with err.
func (m *MockSource) SetError(err error) { m.err = err }

// SetName allows customization of the source name for testing
func (m *MockSource) SetName(name string) { m.name = name }
