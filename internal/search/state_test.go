package search

import (
	"testing"
	"time"
)

type claim struct {
	path string
	ok   bool
}

func acquireAsync(s *sharedState, h *wakeHandle) <-chan claim {
	ch := make(chan claim, 1)
	go func() {
		path, ok := s.acquire(h)
		ch <- claim{path, ok}
	}()
	return ch
}

func parkedCount(s *sharedState) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waiters.len()
}

func receive(t *testing.T, ch <-chan claim, who string) claim {
	t.Helper()
	select {
	case c := <-ch:
		return c
	case <-time.After(5 * time.Second):
		t.Fatalf("%s was never woken", who)
		return claim{}
	}
}

func TestAcquireClaimsWithoutParking(t *testing.T) {
	s := newSharedState(2)
	s.paths.enqueue("/a")
	s.paths.enqueue("/b")

	path, ok := s.acquire(newWakeHandle(&s.mu))
	if !ok || path != "/a" {
		t.Fatalf("acquire() = %q, %v; want /a, true", path, ok)
	}
	if s.paths.len() != 1 {
		t.Errorf("queue len = %d, want 1", s.paths.len())
	}
}

// A worker arriving while a peer is waking must skip the promised head.
func TestAcquireSkipsReservedSlots(t *testing.T) {
	s := newSharedState(3)
	s.paths.enqueue("/promised")
	s.paths.enqueue("/free")
	s.waiters.waking = 1

	path, ok := s.acquire(newWakeHandle(&s.mu))
	if !ok || path != "/free" {
		t.Fatalf("acquire() = %q, %v; want /free, true", path, ok)
	}

	head, _ := s.paths.dequeueHead()
	if head != "/promised" {
		t.Errorf("head = %q, want /promised", head)
	}
}

func TestFIFOWakeup(t *testing.T) {
	// Three alive: two parked workers plus this goroutine acting as producer
	s := newSharedState(3)
	h1 := newWakeHandle(&s.mu)
	h2 := newWakeHandle(&s.mu)

	w1 := acquireAsync(s, h1)
	waitFor(t, "W1 to park", func() bool { return parkedCount(s) == 1 })
	w2 := acquireAsync(s, h2)
	waitFor(t, "W2 to park", func() bool { return parkedCount(s) == 2 })

	s.publish("/first")
	c1 := receive(t, w1, "W1")
	if !c1.ok || c1.path != "/first" {
		t.Fatalf("W1 got %q, %v; want /first, true", c1.path, c1.ok)
	}

	select {
	case c := <-w2:
		t.Fatalf("W2 woke early with %q", c.path)
	default:
	}
	if n := parkedCount(s); n != 1 {
		t.Fatalf("parked = %d after first publish, want 1", n)
	}

	s.publish("/second")
	c2 := receive(t, w2, "W2")
	if !c2.ok || c2.path != "/second" {
		t.Fatalf("W2 got %q, %v; want /second, true", c2.path, c2.ok)
	}
}

func TestTerminationWakesParkedWorkers(t *testing.T) {
	s := newSharedState(3)

	w1 := acquireAsync(s, newWakeHandle(&s.mu))
	waitFor(t, "W1 to park", func() bool { return parkedCount(s) == 1 })
	w2 := acquireAsync(s, newWakeHandle(&s.mu))
	waitFor(t, "W2 to park", func() bool { return parkedCount(s) == 2 })

	// Queue empty and both peers parked: the third worker ends the run
	if _, ok := s.acquire(newWakeHandle(&s.mu)); ok {
		t.Fatal("acquire() claimed work from an empty traversal")
	}

	for name, ch := range map[string]<-chan claim{"W1": w1, "W2": w2} {
		if c := receive(t, ch, name); c.ok {
			t.Errorf("%s got work %q after termination", name, c.path)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.finished {
		t.Error("state not marked finished")
	}
	if s.waiters.reserved() != 0 {
		t.Errorf("reserved() = %d after shutdown, want 0", s.waiters.reserved())
	}
}

func TestFatalLeaveReleasesParkedSurvivors(t *testing.T) {
	s := newSharedState(2)

	w1 := acquireAsync(s, newWakeHandle(&s.mu))
	waitFor(t, "W1 to park", func() bool { return parkedCount(s) == 1 })

	if last := s.leave(true); last {
		t.Fatal("leave() reported last worker with one still alive")
	}
	if c := receive(t, w1, "W1"); c.ok {
		t.Errorf("W1 got work %q after its only peer failed", c.path)
	}
	if !s.leave(false) {
		t.Error("final leave() should report the last worker")
	}
	if s.failedWorkers() != 1 {
		t.Errorf("failedWorkers() = %d, want 1", s.failedWorkers())
	}
}

func TestFatalLeaveKeepsRunningPeers(t *testing.T) {
	s := newSharedState(3)
	w1 := acquireAsync(s, newWakeHandle(&s.mu))
	waitFor(t, "W1 to park", func() bool { return parkedCount(s) == 1 })

	// One peer is still running (this goroutine), so the run goes on
	s.leave(true)

	s.mu.Lock()
	finished := s.finished
	s.mu.Unlock()
	if finished {
		t.Fatal("run finished while a worker was still searching")
	}

	s.publish("/more")
	if c := receive(t, w1, "W1"); !c.ok || c.path != "/more" {
		t.Errorf("W1 got %q, %v; want /more, true", c.path, c.ok)
	}
}
