package lexical

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/nextlevelbuilder/skillmatch/internal/hashing"
	"github.com/nextlevelbuilder/skillmatch/internal/skills"
)

// Fingerprint derives an order-sensitive digest of a skill list
// (JSON of the name+description pairs). Any edit or reordering
// produces a new fingerprint and therefore a rebuilt index.
func Fingerprint(list []skills.Summary) string {
	b, err := json.Marshal(list)
	if err != nil {
		// Summary marshals plain strings; this cannot realistically fail.
		return hashing.Hash("")
	}
	return hashing.Hash(string(b))
}

// IndexCache memoizes the most recent index by skill-list fingerprint.
// It is an explicitly owned object (held by the matcher), not ambient
// package state, so tests get isolation for free.
type IndexCache struct {
	mu          sync.Mutex
	fingerprint string
	index       *Index
}

// Get returns an index for the list, reusing the previous index object
// when the fingerprint is unchanged.
func (c *IndexCache) Get(list []skills.Summary) *Index {
	fp := Fingerprint(list)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.index != nil && c.fingerprint == fp {
		return c.index
	}

	c.index = Build(list)
	c.fingerprint = fp
	slog.Debug("lexical index rebuilt", "docs", len(list), "fingerprint", fp[:12])
	return c.index
}
