package search

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStartGateReleasesAllWaiters(t *testing.T) {
	g := newStartGate()

	var passed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.wait()
			passed.Add(1)
		}()
	}

	time.Sleep(20 * time.Millisecond)
	if n := passed.Load(); n != 0 {
		t.Fatalf("%d goroutines passed a closed gate", n)
	}

	g.open()
	wg.Wait()
	if n := passed.Load(); n != 8 {
		t.Errorf("passed = %d, want 8", n)
	}
}

func TestStartGateOpenTwice(t *testing.T) {
	g := newStartGate()
	g.open()
	g.open()

	// Late arrivals pass straight through
	done := make(chan struct{})
	go func() {
		g.wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("wait() blocked on an open gate")
	}
}
