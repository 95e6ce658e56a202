package handlers

import (
	"scentlab/internal/config"
	"scentlab/internal/discovery"
	"scentlab/internal/lookup"
	"scentlab/internal/store"
)

// openStore opens the SQLite store in the configured data directory.
func openStore() (*store.Store, error) {
	return store.NewStore(config.GetDataDirectory())
}

// buildOrchestrator wires the local source, the external fallback chain, and
// the caching writer over one store.
func buildOrchestrator(st *store.Store) *discovery.Orchestrator {
	cfg := config.Get()

	opts := lookup.Options{
		RapidAPIKey:  cfg.Lookup.RapidAPI.APIKey,
		RapidAPIHost: cfg.Lookup.RapidAPI.Host,
		ScrapeURL:    cfg.Lookup.Scrape.SearchURL,
		ScrapeDelay:  cfg.Lookup.Scrape.Delay,
	}

	return discovery.NewOrchestrator(
		lookup.NewLocalSource(st),
		lookup.ExternalChain(opts),
		discovery.NewCachingWriter(st),
	)
}
