package store

import (
	"math/bits"
	"sync/atomic"
)

// bucketIndex is the growable array of list sentinels (§4.E). It starts
// with an addressable width of one bit and only bucket 0 (the list's own
// head sentinel) populated, and doubles its addressable range each time the
// load factor reaches the configured threshold, never shrinking.
//
// Grounded on cache/uint64_sync_map.go's bucket-array-of-atomic-pointers
// shape, generalized from a fixed-size hash table to the growable,
// recursively-initialized form described in §4.E.
type bucketIndex struct {
	list *list

	segments [64]segmentSlot // segments[0] holds bucket 0, segments[i>0] holds 1<<(i-1) buckets; lazily allocated
	bits     atomic.Uint32 // currently addressable index bits

	growthThreshold float64 // logLen/bucketCount ratio that triggers growth
	maxIndexBits    uint32  // width ceiling; growth stops once reached
	stats           *Stats
}

type segmentSlot struct {
	ptr atomic.Pointer[[]atomic.Pointer[node]]
}

func newBucketIndex(l *list, growthThreshold float64, maxIndexBits uint32, stats *Stats) *bucketIndex {
	if maxIndexBits == 0 || maxIndexBits > hashBits {
		maxIndexBits = hashBits
	}
	b := &bucketIndex{list: l, growthThreshold: growthThreshold, maxIndexBits: maxIndexBits, stats: stats}
	b.bits.Store(1)
	seg0 := make([]atomic.Pointer[node], 1)
	seg0[0].Store(l.head)
	b.segments[0].ptr.Store(&seg0)
	return b
}

// segmentFor returns (segment slice, offset) for a bucket index, allocating
// the owning segment lazily and idempotently if it does not exist yet.
func (b *bucketIndex) segmentFor(bucketIdx uint64) (*[]atomic.Pointer[node], uint64) {
	segNo := bits.Len64(bucketIdx)
	seg := b.segments[segNo].ptr.Load()
	if seg == nil {
		size := uint64(1)
		if segNo > 0 {
			size = uint64(1) << uint(segNo-1)
		}
		newSeg := make([]atomic.Pointer[node], size)
		if b.segments[segNo].ptr.CompareAndSwap(nil, &newSeg) {
			seg = &newSeg
		} else {
			seg = b.segments[segNo].ptr.Load()
		}
	}
	offset := bucketIdx
	if segNo > 0 {
		offset = bucketIdx - (uint64(1) << uint(segNo-1))
	}
	return seg, offset
}

// bucketHead returns the sentinel node for bucketIdx, recursively
// initializing any ancestor buckets that do not exist yet (§4.E: "parent
// bucket must be defined before a child bucket can be"). Iterative via an
// explicit work stack, not recursion, so an adversarial growth pattern
// cannot blow the goroutine stack.
func (b *bucketIndex) bucketHead(bucketIdx uint64) *node {
	var toInit []uint64
	idx := bucketIdx
	for {
		seg, off := b.segmentFor(idx)
		if n := (*seg)[off].Load(); n != nil {
			break
		}
		toInit = append(toInit, idx)
		if idx == 0 {
			break
		}
		idx = parentBucketIndex(idx)
	}

	for i := len(toInit) - 1; i >= 0; i-- {
		b.initBucket(toInit[i])
	}

	seg, off := b.segmentFor(bucketIdx)
	return (*seg)[off].Load()
}

// initBucket installs the sentinel for bucketIdx, assuming its parent
// bucket is already initialized. Races with other goroutines initializing
// the same bucket are resolved by CAS; the loser retires its spare sentinel
// node instead of leaking it.
func (b *bucketIndex) initBucket(bucketIdx uint64) {
	seg, off := b.segmentFor(bucketIdx)
	if (*seg)[off].Load() != nil {
		return
	}

	parentIdx := parentBucketIndex(bucketIdx)
	var parent *node
	if bucketIdx == 0 {
		parent = b.list.head
	} else {
		parent = b.bucketHead(parentIdx)
	}

	key := bucketToHash(bucketIdx)
	var inserted *node
	if !b.list.insert(parent, 0, key, true, nil, &inserted) {
		// Lost the race: the sentinel already exists somewhere in the list
		// (another goroutine finished first). Find it and publish that.
		found, ok := b.list.find(parent, key)
		if !ok {
			b.stats.bucketInitCollision()
			return
		}
		inserted = found
	}

	if !(*seg)[off].CompareAndSwap(nil, inserted) {
		b.stats.bucketsDefinedUpdateCollision()
	}
}

// maybeGrow widens the addressable index by one bit, doubling the bucket
// count, when the table's load factor (log length / bucket count) reaches
// growthThreshold (§4.E load-based growth). A single CAS on bits ensures only one goroutine performs the
// bump per threshold crossing; losers simply continue with the new value.
func (b *bucketIndex) maybeGrow(logLen int64) {
	width := uint64(b.bits.Load())
	bucketCount := uint64(1) << width
	if float64(logLen)/float64(bucketCount) < b.growthThreshold {
		return
	}
	if width >= uint64(b.maxIndexBits) {
		return
	}
	if !b.bits.CompareAndSwap(uint32(width), uint32(width+1)) {
		b.stats.indexBitsIncrCollision()
	}
}

// indexFor returns the bucket index an id currently hashes to, given the
// present addressable bit-width.
func (b *bucketIndex) indexFor(id uint64) uint64 {
	return bucketIndexFor(id, b.bits.Load())
}
