package poller

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testInterval = 10 * time.Millisecond

func TestPollerDetectsChange(t *testing.T) {
	p := New(testInterval, nil)

	var calls atomic.Int64
	fetch := func(ctx context.Context) (Snapshot, error) {
		n := calls.Add(1)
		if n >= 3 {
			return Snapshot{Count: 5, Fingerprint: "b"}, nil
		}
		return Snapshot{Count: 4, Fingerprint: "a"}, nil
	}

	changed := make(chan Snapshot, 1)
	h := p.Start(context.Background(), Snapshot{Count: 4, Fingerprint: "a"}, fetch, func(s Snapshot) {
		changed <- s
	})
	defer h.Stop()

	select {
	case snap := <-changed:
		assert.Equal(t, 5, snap.Count)
	case <-time.After(time.Second):
		t.Fatal("poller never reported the change")
	}
	assert.True(t, h.UpdateAvailable())
	assert.Equal(t, Snapshot{Count: 5, Fingerprint: "b"}, h.Latest())
}

func TestPollerUnchangedSnapshotRaisesNothing(t *testing.T) {
	p := New(testInterval, nil)

	fetch := func(ctx context.Context) (Snapshot, error) {
		return Snapshot{Count: 2, Fingerprint: "x"}, nil
	}
	h := p.Start(context.Background(), Snapshot{Count: 2, Fingerprint: "x"}, fetch, nil)
	defer h.Stop()

	time.Sleep(5 * testInterval)
	assert.False(t, h.UpdateAvailable())
}

func TestPollerSingleActiveLoop(t *testing.T) {
	p := New(testInterval, nil)

	var first, second atomic.Int64
	h1 := p.Start(context.Background(), Snapshot{}, func(ctx context.Context) (Snapshot, error) {
		first.Add(1)
		return Snapshot{}, nil
	}, nil)

	// Starting a second loop must stop the first before ticking.
	h2 := p.Start(context.Background(), Snapshot{}, func(ctx context.Context) (Snapshot, error) {
		second.Add(1)
		return Snapshot{}, nil
	}, nil)
	defer h2.Stop()

	select {
	case <-h1.Done():
	case <-time.After(time.Second):
		t.Fatal("first loop was not stopped")
	}

	frozen := first.Load()
	time.Sleep(5 * testInterval)
	assert.Equal(t, frozen, first.Load(), "stopped loop kept fetching")
	assert.Greater(t, second.Load(), int64(0))
}

func TestPollerConcurrentStart(t *testing.T) {
	p := New(testInterval, nil)

	var counts [3]atomic.Int64
	startLoop := func(i int) *Handle {
		return p.Start(context.Background(), Snapshot{}, func(ctx context.Context) (Snapshot, error) {
			counts[i].Add(1)
			return Snapshot{}, nil
		}, nil)
	}

	handles := make([]*Handle, 3)
	handles[0] = startLoop(0)

	// Two racing Starts must leave exactly one reachable loop: whichever
	// handle ends up installed is the one Poller.Stop can still cancel.
	var wg sync.WaitGroup
	for i := 1; i <= 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			handles[i] = startLoop(i)
		}(i)
	}
	wg.Wait()

	p.Stop()

	for i, h := range handles {
		select {
		case <-h.Done():
		case <-time.After(time.Second):
			t.Fatalf("loop %d leaked: still running after Stop", i)
		}
	}

	var frozen [3]int64
	for i := range counts {
		frozen[i] = counts[i].Load()
	}
	time.Sleep(5 * testInterval)
	for i := range counts {
		assert.Equal(t, frozen[i], counts[i].Load(), "loop %d kept fetching after Stop", i)
	}
}

func TestPollerStopIsIdempotent(t *testing.T) {
	p := New(testInterval, nil)
	h := p.Start(context.Background(), Snapshot{}, func(ctx context.Context) (Snapshot, error) {
		return Snapshot{}, nil
	}, nil)

	h.Stop()
	h.Stop()
	p.Stop() // nothing active anymore, must not block

	select {
	case <-h.Done():
	default:
		t.Fatal("done channel not closed after Stop")
	}
}

func TestPollerFetchErrorKeepsPolling(t *testing.T) {
	p := New(testInterval, nil)

	var calls atomic.Int64
	fetch := func(ctx context.Context) (Snapshot, error) {
		if calls.Add(1) == 1 {
			return Snapshot{}, context.DeadlineExceeded
		}
		return Snapshot{Count: 1}, nil
	}

	changed := make(chan struct{}, 1)
	h := p.Start(context.Background(), Snapshot{}, fetch, func(Snapshot) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer h.Stop()

	select {
	case <-changed:
	case <-time.After(time.Second):
		t.Fatal("poller gave up after a fetch error")
	}
}

func TestPollerAcknowledgeResetsBaseline(t *testing.T) {
	p := New(testInterval, nil)

	fetch := func(ctx context.Context) (Snapshot, error) {
		return Snapshot{Count: 9}, nil
	}
	h := p.Start(context.Background(), Snapshot{Count: 1}, fetch, nil)
	defer h.Stop()

	require.Eventually(t, h.UpdateAvailable, time.Second, testInterval)

	h.Acknowledge(Snapshot{Count: 9})
	time.Sleep(5 * testInterval)
	assert.False(t, h.UpdateAvailable(), "acknowledged snapshot must not re-raise the flag")
}

func TestPollerContextCancellation(t *testing.T) {
	p := New(testInterval, nil)
	ctx, cancel := context.WithCancel(context.Background())
	h := p.Start(ctx, Snapshot{}, func(ctx context.Context) (Snapshot, error) {
		return Snapshot{}, nil
	}, nil)

	cancel()
	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("loop did not exit on context cancellation")
	}
}
