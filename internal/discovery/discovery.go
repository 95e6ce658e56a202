// Package discovery runs the layered fragrance search: local repository
// first, then an ordered chain of external sources, with newly discovered
// fragrances classified and written back to the database.
package discovery

import (
	"context"
	"strings"
	"unicode/utf8"

	"scentlab/internal/core"
	"scentlab/internal/logger"
	"scentlab/internal/lookup"
)

// minQueryLength is the minimum number of runes a query must have before any
// source is consulted.
const minQueryLength = 2

// maxResults caps the merged result list.
const maxResults = 10

// Orchestrator coordinates local and external lookups for one search call.
type Orchestrator struct {
	local    lookup.Source
	external []lookup.Source
	writer   *CachingWriter
}

// NewOrchestrator wires the local source, the external fallback chain, and
// the caching writer. writer may be nil to disable write-back.
func NewOrchestrator(local lookup.Source, external []lookup.Source, writer *CachingWriter) *Orchestrator {
	return &Orchestrator{
		local:    local,
		external: external,
		writer:   writer,
	}
}

// Search resolves a free-text query into a merged, deduplicated result set.
// Queries shorter than two runes return an empty result without touching any
// source. Source failures are logged and treated as empty so that one broken
// provider never fails the search.
func (o *Orchestrator) Search(ctx context.Context, query string) (core.SearchResult, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < minQueryLength {
		return core.SearchResult{Fragrances: []core.Candidate{}}, nil
	}

	var merged []core.Candidate
	counts := core.SourceCounts{}

	localResults := o.searchSource(ctx, o.local, query)
	counts.Database = len(localResults)
	merged = append(merged, localResults...)

	externalResults := o.searchExternal(ctx, query)
	counts.External = len(externalResults)
	merged = append(merged, externalResults...)

	if o.writer != nil && len(externalResults) > 0 {
		o.writer.CacheCandidates(ctx, externalResults)
	}

	counts.Total = counts.Database + counts.External

	deduped := dedupe(merged)
	if len(deduped) > maxResults {
		deduped = deduped[:maxResults]
	}

	logger.Info("search completed",
		"query", query,
		"database", counts.Database,
		"external", counts.External,
		"returned", len(deduped))

	return core.SearchResult{Fragrances: deduped, Source: counts}, nil
}

// searchExternal walks the fallback chain in order and returns the first
// non-empty result set.
func (o *Orchestrator) searchExternal(ctx context.Context, query string) []core.Candidate {
	for _, src := range o.external {
		if results := o.searchSource(ctx, src, query); len(results) > 0 {
			return results
		}
	}
	return nil
}

// searchSource queries one source, flattening failures into an empty set.
func (o *Orchestrator) searchSource(ctx context.Context, src lookup.Source, query string) []core.Candidate {
	if src == nil {
		return nil
	}
	results, err := src.Search(ctx, query)
	if err != nil {
		logger.Warn("lookup source failed", "source", src.Name(), "error", err.Error())
		return nil
	}
	return results
}

// dedupe keeps the first occurrence of each (name, brand) identity,
// preserving order. Local results precede external ones in the input, so the
// database copy wins.
func dedupe(candidates []core.Candidate) []core.Candidate {
	seen := make(map[string]struct{}, len(candidates))
	out := make([]core.Candidate, 0, len(candidates))
	for _, c := range candidates {
		key := c.IdentityKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}
