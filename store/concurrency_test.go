package store

import (
	"testing"

	"golang.org/x/sync/errgroup"
)

// Test_S5_ConcurrentDisjointPartition implements scenario S5: N goroutines
// each own a disjoint slice of the id space, so no two goroutines ever
// contend on the same key. Every Add must succeed and every id must be
// findable afterward; this exercises concurrent list growth and bucket
// index initialization without any of the logical races S6 is after.
func Test_S5_ConcurrentDisjointPartition(t *testing.T) {
	const workers = 8
	const perWorker = 2000

	c := New(DefaultConfig)
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			base := uint64(w) * perWorker
			for i := uint64(0); i < perWorker; i++ {
				id := base + i
				if !c.Add(id, byteValue(byte(id))) {
					t.Errorf("worker %d: Add(%d) unexpectedly failed", w, id)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("workers returned an error: %v", err)
	}

	if got := c.Len(); got != int64(workers*perWorker) {
		t.Fatalf("Len = %d, want %d", got, workers*perWorker)
	}
	for w := 0; w < workers; w++ {
		base := uint64(w) * perWorker
		for i := uint64(0); i < perWorker; i++ {
			id := base + i
			v, ok := c.Find(id)
			if !ok {
				t.Fatalf("Find(%d) failed", id)
			}
			if got := byteOf(v); got != byte(id) {
				t.Errorf("Find(%d) value = %#x, want %#x", id, got, byte(id))
			}
		}
	}
}

// Test_S5_ConcurrentDisjointDelete deletes the same disjoint partitions back
// out concurrently, verifying the table drains to empty with no lost or
// double-counted deletes.
func Test_S5_ConcurrentDisjointDelete(t *testing.T) {
	const workers = 8
	const perWorker = 2000

	c := New(DefaultConfig)
	for i := uint64(0); i < workers*perWorker; i++ {
		if !c.Add(i, nil) {
			t.Fatalf("setup Add(%d) failed", i)
		}
	}

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			base := uint64(w) * perWorker
			for i := uint64(0); i < perWorker; i++ {
				id := base + i
				if !c.Delete(id) {
					t.Errorf("worker %d: Delete(%d) unexpectedly failed", w, id)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("workers returned an error: %v", err)
	}
	if got := c.Len(); got != 0 {
		t.Errorf("Len after concurrent drain = %d, want 0", got)
	}
}

// Test_S6_ConcurrentCollidingWorkload implements scenario S6: every
// goroutine hammers the SAME small id range with adds, deletes, finds and
// swaps. No operation should ever observe a torn value, and Invariant 1
// (id uniqueness: at most one Add among racers can win per id per
// add/delete cycle) must hold — checked indirectly via the property that
// the container never reports more live entries than distinct ids.
func Test_S6_ConcurrentCollidingWorkload(t *testing.T) {
	const workers = 16
	const ids = 64
	const rounds = 500

	c := New(DefaultConfig)
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			for r := 0; r < rounds; r++ {
				id := uint64((r + w) % ids)
				switch r % 4 {
				case 0:
					c.Add(id, byteValue(byte(id)))
				case 1:
					c.Delete(id)
				case 2:
					if v, ok := c.Find(id); ok {
						if got := byteOf(v); got != byte(id) {
							t.Errorf("Find(%d) returned torn value %#x", id, got)
						}
					}
				case 3:
					c.SwapValue(id, byteValue(byte(id)))
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("workers returned an error: %v", err)
	}

	if got := c.Len(); got > ids {
		t.Errorf("Len = %d, want <= %d", got, ids)
	}
	for id := uint64(0); id < ids; id++ {
		if v, ok := c.Find(id); ok {
			if got := byteOf(v); got != byte(id) {
				t.Errorf("Find(%d) value = %#x, want %#x", id, got, byte(id))
			}
		}
	}
}

// Test_S6_ConcurrentIterationDuringMutation exercises iteration racing with
// concurrent adds/deletes: the traversal must complete without panicking or
// revisiting a node, returning ids in strictly increasing hash order
// (§4.D), even though it may miss entries that moved concurrently.
func Test_S6_ConcurrentIterationDuringMutation(t *testing.T) {
	const ids = 500
	c := New(DefaultConfig)
	for i := uint64(0); i < ids; i++ {
		if !c.Add(i, nil) {
			t.Fatalf("setup Add(%d) failed", i)
		}
	}

	var g errgroup.Group
	g.Go(func() error {
		for i := uint64(0); i < ids; i++ {
			c.Delete(i)
			c.Add(i, nil)
		}
		return nil
	})
	g.Go(func() error {
		for iter := 0; iter < 20; iter++ {
			it := c.Iterate()
			var last uint64
			first := true
			for {
				id, _, ok := it.Next()
				if !ok {
					break
				}
				if !first && idToHash(id) <= idToHash(last) {
					t.Errorf("iteration revisited id %d or went back in hash order after id %d", id, last)
				}
				first = false
				last = id
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		t.Fatalf("workers returned an error: %v", err)
	}
}
