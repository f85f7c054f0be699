package documents

import (
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

const fillStripes = 256

// fillGuard tracks write generations for cache keys so a read that raced
// with a write does not leave the older document cached. Keys share
// generations by hash stripe; a collision only skips a cache fill.
type fillGuard struct {
	stripes [fillStripes]atomic.Uint64
}

func (g *fillGuard) stripe(key string) *atomic.Uint64 {
	return &g.stripes[xxhash.Sum64String(key)%fillStripes]
}

// generation is read before the database read that feeds a fill.
func (g *fillGuard) generation(key string) uint64 {
	return g.stripe(key).Load()
}

// changed reports whether a write touched key after gen was read.
func (g *fillGuard) changed(key string, gen uint64) bool {
	return g.stripe(key).Load() != gen
}

// bump must run after the write commits and before the cached entry is
// removed.
func (g *fillGuard) bump(key string) {
	g.stripe(key).Add(1)
}

func (g *fillGuard) bumpAll() {
	for i := range g.stripes {
		g.stripes[i].Add(1)
	}
}
