package discovery

import (
	"context"

	"scentlab/internal/classify"
	"scentlab/internal/core"
	"scentlab/internal/logger"
)

// FragranceWriter is the slice of the persistence layer the caching writer
// needs: an existence check and an insert.
type FragranceWriter interface {
	FindByNameAndBrand(ctx context.Context, name, brand string) (*core.Fragrance, error)
	CreateFragrance(ctx context.Context, f *core.Fragrance) error
}

// CachingWriter persists externally discovered candidates, enriching each
// with classification and a versatility score on the way in. It never fails
// the caller: a candidate that cannot be cached is logged and skipped.
type CachingWriter struct {
	repo FragranceWriter
}

// NewCachingWriter creates a write-back helper over the given repository.
func NewCachingWriter(repo FragranceWriter) *CachingWriter {
	return &CachingWriter{repo: repo}
}

// CacheCandidates writes the genuinely new candidates among cs to the
// database. Failures are isolated per candidate.
func (w *CachingWriter) CacheCandidates(ctx context.Context, cs []core.Candidate) {
	for _, c := range cs {
		if err := w.cacheOne(ctx, c); err != nil {
			logger.Warn("failed to cache candidate",
				"name", c.Name, "brand", c.Brand, "error", err.Error())
		}
	}
}

func (w *CachingWriter) cacheOne(ctx context.Context, c core.Candidate) error {
	existing, err := w.repo.FindByNameAndBrand(ctx, c.Name, c.Brand)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	categories := classify.Classify(classify.FromCandidate(c))
	versatility := classify.ScoreVersatility(c.TopNotes, c.MiddleNotes, c.BaseNotes, categories)

	f := &core.Fragrance{
		Name:          c.Name,
		Brand:         c.Brand,
		Concentration: c.Concentration,
		TopNotes:      c.TopNotes,
		MiddleNotes:   c.MiddleNotes,
		BaseNotes:     c.BaseNotes,
		Versatility:   versatility,
		Categories:    categories,
		Description:   c.Description,
		ImageURL:      c.ImageURL,
		PriceCents:    c.PriceCents,
		Year:          c.Year,
	}

	if err := w.repo.CreateFragrance(ctx, f); err != nil {
		return err
	}

	logger.Debug("cached discovered fragrance",
		"name", f.Name, "brand", f.Brand, "categories", len(f.Categories))
	return nil
}
