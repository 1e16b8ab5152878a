package store

import "github.com/devdiary/devdiary/internal/domain"

// NoopCache implements port.ClassificationCache without persisting anything.
// Used when the cache is disabled in configuration: every lookup misses, so
// every commit is classified fresh.
type NoopCache struct{}

// NewNoopCache creates a cache that stores nothing.
func NewNoopCache() *NoopCache { return &NoopCache{} }

// Get always misses.
func (*NoopCache) Get(string) (domain.Classification, bool) {
	return domain.Classification{}, false
}

// Put discards the classification.
func (*NoopCache) Put(string, domain.Classification) error { return nil }

// PurgeBad has nothing to purge.
func (*NoopCache) PurgeBad() int { return 0 }
