package search

import (
	"sync"

	"github.com/kilianp07/feasnet/core/simulate"
)

// ScoreCache memoizes oracle outcomes by canonical state key. A hit avoids
// invoking the simulation oracle entirely. Cached outcomes refer to the ids
// of one scenario clone, so a cache is only valid for a single generation.
// The cache is safe for concurrent use; the first writer of a key wins and
// later writers are ignored, which is sound because the oracle is
// deterministic over the mutation state.
type ScoreCache struct {
	mu       sync.RWMutex
	outcomes map[Key]simulate.Outcome
}

// NewScoreCache returns an empty cache.
func NewScoreCache() *ScoreCache {
	return &ScoreCache{outcomes: make(map[Key]simulate.Outcome)}
}

// Lookup returns the cached outcome for the key, if any.
func (c *ScoreCache) Lookup(k Key) (simulate.Outcome, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out, ok := c.outcomes[k]
	return out, ok
}

// Record stores the outcome for the key and returns the canonical value. If
// another writer recorded the key first, the earlier outcome is kept and
// returned.
func (c *ScoreCache) Record(k Key, out simulate.Outcome) simulate.Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, ok := c.outcomes[k]; ok {
		return prev
	}
	c.outcomes[k] = out
	return out
}

// Len returns the number of cached keys.
func (c *ScoreCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.outcomes)
}
