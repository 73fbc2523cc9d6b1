package search

import "sync"

// startGate holds every worker back until the whole pool exists, so the
// alive count used by the termination test is final from the first check.
type startGate struct {
	once sync.Once
	ch   chan struct{}
}

func newStartGate() *startGate {
	return &startGate{ch: make(chan struct{})}
}

// wait blocks until open has been called.
func (g *startGate) wait() {
	<-g.ch
}

// open releases all current and future waiters. Later calls are no-ops.
func (g *startGate) open() {
	g.once.Do(func() { close(g.ch) })
}
