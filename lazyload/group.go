// Package lazyload implements the at-most-one-load primitive behind every
// deferred attribute group in the entity graph (Class's methods group,
// Method's line-table group, and so on). It differs from sync.Once in the
// one way this domain needs: a failed load is never cached, so the next
// reader retries instead of being stuck with a permanent error.
package lazyload

import "sync"

type state int

const (
	unloaded state = iota
	loading
	loaded
	failed
)

// Group coordinates concurrent first-readers of one lazily-loaded
// attribute cluster. The zero value is ready to use.
type Group struct {
	mu    sync.Mutex
	cond  *sync.Cond
	state state
	err   error
}

func (g *Group) init() {
	if g.cond == nil {
		g.cond = sync.NewCond(&g.mu)
	}
}

// Load ensures loader has run successfully at least once, running it
// itself if this call is the first to observe an unloaded or previously
// failed group, or waiting for a concurrent in-flight call otherwise.
// loader is expected to populate the owning entity's fields as a side
// effect; Load only tracks whether that happened, not what it produced.
//
// A failed loader leaves the group unloaded, not failed-forever: the next
// call to Load (from any goroutine) retries it.
func (g *Group) Load(loader func() error) error {
	g.mu.Lock()
	g.init()
	for {
		switch g.state {
		case loaded:
			g.mu.Unlock()
			return nil
		case loading:
			g.cond.Wait()
			continue
		case unloaded, failed:
			g.state = loading
			g.mu.Unlock()

			err := loader()

			g.mu.Lock()
			if err != nil {
				g.state = unloaded
				g.err = err
				g.cond.Broadcast()
				g.mu.Unlock()
				return err
			}
			g.state = loaded
			g.err = nil
			g.cond.Broadcast()
			g.mu.Unlock()
			return nil
		}
	}
}

// Loaded reports whether the group has successfully loaded at least once.
func (g *Group) Loaded() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state == loaded
}
