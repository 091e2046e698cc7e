package store

import "testing"

func newTestBucketIndex() (*bucketIndex, *list) {
	l := newList(newPool(0, NewStats()), NewStats())
	return newBucketIndex(l, 0.75, 20, NewStats()), l
}

func Test_BucketIndex_BucketZeroIsListHead(t *testing.T) {
	idx, l := newTestBucketIndex()
	if got := idx.bucketHead(0); got != l.head {
		t.Errorf("bucketHead(0) = %p, want list head %p", got, l.head)
	}
}

func Test_BucketIndex_InitializesAncestorsRecursively(t *testing.T) {
	idx, _ := newTestBucketIndex()
	idx.bits.Store(8) // pretend the table has already grown

	n7 := idx.bucketHead(7)
	if n7 == nil {
		t.Fatal("bucketHead(7) returned nil")
	}
	if n7.hash != bucketToHash(7) {
		t.Errorf("bucketHead(7).hash = %d, want %d", n7.hash, bucketToHash(7))
	}

	// Ancestors (3, 1, 0) must now also be resolvable without reinitializing.
	n3 := idx.bucketHead(3)
	if n3.hash != bucketToHash(3) {
		t.Errorf("bucketHead(3).hash = %d, want %d", n3.hash, bucketToHash(3))
	}
	n1 := idx.bucketHead(1)
	if n1.hash != bucketToHash(1) {
		t.Errorf("bucketHead(1).hash = %d, want %d", n1.hash, bucketToHash(1))
	}
}

func Test_BucketIndex_InitIsIdempotentUnderRepeatedCalls(t *testing.T) {
	idx, _ := newTestBucketIndex()
	idx.bits.Store(4)

	first := idx.bucketHead(5)
	second := idx.bucketHead(5)
	if first != second {
		t.Errorf("bucketHead(5) returned different nodes across calls: %p != %p", first, second)
	}
}

func Test_BucketIndex_GrowthAddsOneIndexBit(t *testing.T) {
	idx, _ := newTestBucketIndex()
	idx.bits.Store(2)
	idx.maybeGrow(100) // logLen/bucketCount = 100/4 = 25, far past threshold
	if got := idx.bits.Load(); got != 3 {
		t.Errorf("bits after maybeGrow = %d, want 3", got)
	}
}

func Test_BucketIndex_NoGrowthBelowThreshold(t *testing.T) {
	idx, _ := newTestBucketIndex()
	idx.bits.Store(10)
	idx.maybeGrow(1) // 1/1024, nowhere near 0.75
	if got := idx.bits.Load(); got != 10 {
		t.Errorf("bits after maybeGrow = %d, want unchanged at 10", got)
	}
}

func Test_BucketIndex_GrowthStopsAtMaxIndexBits(t *testing.T) {
	l := newList(newPool(0, NewStats()), NewStats())
	idx := newBucketIndex(l, 0.75, 4, NewStats())
	idx.bits.Store(4)
	idx.maybeGrow(1000) // far past threshold, but already at the configured ceiling
	if got := idx.bits.Load(); got != 4 {
		t.Errorf("bits after maybeGrow at ceiling = %d, want unchanged at 4", got)
	}
}

func Test_BucketIndexFor_TracksWidth(t *testing.T) {
	idx, _ := newTestBucketIndex()
	idx.bits.Store(3)
	if got := idx.indexFor(0b1101); got != 0b101 {
		t.Errorf("indexFor(0b1101) with width 3 = %b, want %b", got, 0b101)
	}
}
