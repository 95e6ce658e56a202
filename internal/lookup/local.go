package lookup

import (
	"context"
	"fmt"

	"scentlab/internal/core"
)

// Repository is the slice of the persistence layer the local source needs.
type Repository interface {
	SearchByNameOrBrand(ctx context.Context, query string) ([]core.Fragrance, error)
}

// LocalSource serves lookups from fragrances already persisted in the
// database. It is always consulted before any external source.
type LocalSource struct {
	repo Repository
}

// NewLocalSource creates a repository-backed lookup source.
func NewLocalSource(repo Repository) *LocalSource {
	return &LocalSource{repo: repo}
}

// Name returns the source tag for this provider.
func (s *LocalSource) Name() string { return "database" }

// Search queries the repository and converts stored rows into candidates
// tagged with local provenance.
func (s *LocalSource) Search(ctx context.Context, query string) ([]core.Candidate, error) {
	rows, err := s.repo.SearchByNameOrBrand(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search local repository: %w", err)
	}
	results := make([]core.Candidate, 0, len(rows))
	for _, f := range rows {
		results = append(results, f.Candidate())
	}
	return results, nil
}
