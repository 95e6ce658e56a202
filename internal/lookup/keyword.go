package lookup

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"scentlab/internal/core"
	"scentlab/internal/logger"
)

// KeywordSource implements Source against the FragranceFinder keyword search
// endpoint. It is the secondary external source, tried when the primary
// endpoint yields nothing; it shares the payload shapes and normalization of
// the primary but pages with a smaller budget and a shorter timeout.
type KeywordSource struct {
	apiKey  string
	host    string
	baseURL string
	client  *http.Client
	perPage int
}

// NewKeywordSource creates the secondary external API source.
func NewKeywordSource(apiKey, host string) *KeywordSource {
	if host == "" {
		host = DefaultRapidAPIHost
	}
	return &KeywordSource{
		apiKey:  apiKey,
		host:    host,
		baseURL: "https://" + host,
		client:  &http.Client{Timeout: 8 * time.Second},
		perPage: 5,
	}
}

// Name returns the source tag for this provider.
func (s *KeywordSource) Name() string { return string(SourceTypeKeyword) }

// Search queries the /search keyword endpoint.
func (s *KeywordSource) Search(ctx context.Context, query string) ([]core.Candidate, error) {
	endpoint := s.baseURL + "/search"
	params := url.Values{}
	params.Set("keyword", query)
	params.Set("perPage", strconv.Itoa(s.perPage))
	params.Set("page", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-RapidAPI-Key", s.apiKey)
	req.Header.Set("X-RapidAPI-Host", s.host)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrSourceUnavailable, resp.StatusCode)
	}

	items, err := decodeItems(resp)
	if err != nil {
		return nil, err
	}

	candidates := itemsToCandidates(items, s.Name())
	logger.Info("keyword search completed", "query", query, "results", len(candidates))
	return candidates, nil
}
