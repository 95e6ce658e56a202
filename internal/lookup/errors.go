package lookup

import "errors"

var (
	// ErrMissingAPIKey is returned when a source requiring credentials is
	// constructed without them.
	ErrMissingAPIKey = errors.New("API key is required")

	// ErrUnsupportedSource is returned for an unknown source type.
	ErrUnsupportedSource = errors.New("unsupported lookup source")

	// ErrSourceUnavailable wraps network, timeout, and parse failures of one
	// source. The orchestrator recovers by falling through to the next source.
	ErrSourceUnavailable = errors.New("lookup source is currently unavailable")

	// ErrUnrecognizedShape is returned when an external API response matches
	// none of the known payload shapes.
	ErrUnrecognizedShape = errors.New("unrecognized API response shape")

	// ErrInvalidQuery is returned for empty or too-short queries. Callers
	// surface it as an empty result set, not a failure.
	ErrInvalidQuery = errors.New("query must be at least 2 characters")
)
