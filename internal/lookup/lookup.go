// Package lookup defines the uniform source interface the search orchestrator
// iterates over, plus the concrete source variants: the local repository, the
// FragranceFinder API (two endpoints), a fragrance-encyclopedia scraper, and
// an embedded static catalogue.
package lookup

import (
	"context"

	"scentlab/internal/core"
)

// Source is the unified interface every lookup variant implements. A source
// returns an empty slice for "no results"; errors are reserved for
// network/parse failures, which the orchestrator treats as empty and falls
// through to the next source.
type Source interface {
	// Search resolves a free-text query into candidate fragrance records.
	Search(ctx context.Context, query string) ([]core.Candidate, error)

	// Name returns the source tag stamped onto candidates it produces.
	Name() string
}

// SourceType identifies a lookup source variant.
type SourceType string

const (
	SourceTypeFragranceFinder SourceType = "fragrancefinder"
	SourceTypeKeyword         SourceType = "keyword"
	SourceTypeScrape          SourceType = "scrape"
	SourceTypeStatic          SourceType = "static"
	SourceTypeMock            SourceType = "mock"
)

// Options carries the injected configuration lookup sources need. API keys
// are passed in here rather than read from globals so tests can substitute
// doubles per source.
type Options struct {
	RapidAPIKey  string
	RapidAPIHost string
	ScrapeURL    string // base search URL of the scraped encyclopedia site
	ScrapeDelay  string // politeness delay before each scrape request, e.g. "1s"
}

// NewSource creates a single lookup source of the given type.
func NewSource(t SourceType, opts Options) (Source, error) {
	switch t {
	case SourceTypeFragranceFinder:
		if opts.RapidAPIKey == "" {
			return nil, ErrMissingAPIKey
		}
		return NewFragranceFinderSource(opts.RapidAPIKey, opts.RapidAPIHost), nil
	case SourceTypeKeyword:
		if opts.RapidAPIKey == "" {
			return nil, ErrMissingAPIKey
		}
		return NewKeywordSource(opts.RapidAPIKey, opts.RapidAPIHost), nil
	case SourceTypeScrape:
		return NewScrapeSource(opts.ScrapeURL, opts.ScrapeDelay), nil
	case SourceTypeStatic:
		return NewStaticSource(), nil
	case SourceTypeMock:
		return NewMockSource(), nil
	default:
		return nil, ErrUnsupportedSource
	}
}

// ExternalChain builds the external fallback chain in priority order:
// FragranceFinder, keyword endpoint, scraper, static catalogue. Sources whose
// configuration is missing (no API key) are skipped; the static catalogue is
// always present so the chain never comes up empty-handed.
func ExternalChain(opts Options) []Source {
	var chain []Source
	for _, t := range []SourceType{SourceTypeFragranceFinder, SourceTypeKeyword} {
		src, err := NewSource(t, opts)
		if err != nil {
			continue
		}
		chain = append(chain, src)
	}
	chain = append(chain, NewScrapeSource(opts.ScrapeURL, opts.ScrapeDelay))
	chain = append(chain, NewStaticSource())
	return chain
}
