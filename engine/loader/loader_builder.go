package loader

import (
	"net/http"

	"github.com/Carmen-Shannon/oxy-viewport/common"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithTracker is an option builder that registers every geometry and texture the Loader
// allocates with the given tracker.
//
// Parameters:
//   - t: the resource tracker
//
// Returns:
//   - LoaderBuilderOption: a function that applies the tracker option to a loader
func WithTracker(t *common.ResourceTracker) LoaderBuilderOption {
	return func(l *loader) {
		l.tracker = t
	}
}

// WithHTTPClient is an option builder that sets the client used for remote locators.
//
// Parameters:
//   - c: the HTTP client
//
// Returns:
//   - LoaderBuilderOption: a function that applies the client option to a loader
func WithHTTPClient(c *http.Client) LoaderBuilderOption {
	return func(l *loader) {
		if c != nil {
			l.client = c
		}
	}
}

// WithDecodeWorkers is an option builder that sets how many workers decode textures
// in parallel.
//
// Parameters:
//   - n: the worker count, clamped to at least 1
//
// Returns:
//   - LoaderBuilderOption: a function that applies the worker count option to a loader
func WithDecodeWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		l.workers = max(n, 1)
	}
}
