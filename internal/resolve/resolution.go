package resolve

import "go.uber.org/zap"

// Resolution maps a reference string to its resolved absolute URL. It is
// partial: references the platform could not resolve are absent, never
// present with an error marker. During the resolution phase the map is
// append-only; hashes are deduplicated before batching, so an overwrite
// points at an upstream collection bug and is logged rather than designed
// around.
type Resolution map[string]string

// Put records a resolved URL. Re-resolving a reference to a different URL
// warns and keeps the latest value.
func (r Resolution) Put(ref, url string, logger *zap.Logger) {
	if existing, ok := r[ref]; ok && existing != url {
		logger.Warn("reference resolved more than once, keeping latest",
			zap.String("ref", ref),
			zap.String("previous", existing),
			zap.String("latest", url))
	}
	r[ref] = url
}
