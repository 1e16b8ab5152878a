package port

import "github.com/devdiary/devdiary/internal/domain"

// ClassificationCache is the durable commit-hash keyed classification store.
// Implementations must tolerate a missing or corrupted backing file by
// starting from an empty mapping.
type ClassificationCache interface {
	// Get returns the cached classification for a hash, if present.
	Get(hash string) (domain.Classification, bool)

	// Put stores a classification and persists it immediately.
	Put(hash string, c domain.Classification) error

	// PurgeBad removes entries whose bullet carries the unavailable marker
	// left behind by older versions that cached failure fallbacks. It is
	// idempotent and applied automatically before reads.
	PurgeBad() int
}
