package store

import (
	"sync/atomic"
	"unsafe"
)

// pool is the retired-node free list (§4.B): a singly-linked FIFO of nodes
// that have left the ordered list and are waiting either to be reused by a
// future insert or (optionally) released back to the allocator.
//
// Grounded on the Michael & Scott lock-free queue algorithm, the same shape
// used by other_examples' thomas-couchbase-indexing mutation_queue_atomic.go
// and spelled out directly in §4.B. The widened (pointer, serial) pair
// needed to defeat ABA is realized here as an immutable *poolRef value
// swapped atomically as a whole, the same technique node.link uses for
// (next, marked) — see §3.
type pool struct {
	head unsafe.Pointer // *poolRef, atomic
	tail unsafe.Pointer // *poolRef, atomic

	length     atomic.Int64
	nextSerial atomic.Uint64

	// softCap gates optional release-to-heap on append; 0 disables it.
	softCap int64

	stats *Stats
}

// poolRef pairs a pool-chain pointer with the serial number assigned when it
// was last written, so a node that cycles through the pool and back cannot
// be mistaken for having never left (ABA).
type poolRef struct {
	n      *node
	serial uint64
}

func newPool(softCap int64, stats *Stats) *pool {
	p := &pool{softCap: softCap, stats: stats}
	dummy := newNode(0, 0, true, nil, stats)
	dummy.state.store(stateRetired)
	serial := p.nextSerial.Add(1)
	dummy.poolSerial.Store(serial)
	atomic.StorePointer(&dummy.poolNext, unsafe.Pointer(&poolRef{nil, serial}))
	ref := &poolRef{dummy, serial}
	atomic.StorePointer(&p.head, unsafe.Pointer(ref))
	atomic.StorePointer(&p.tail, unsafe.Pointer(ref))
	p.length.Store(1)
	return p
}

func (p *pool) loadHead() *poolRef { return (*poolRef)(atomic.LoadPointer(&p.head)) }
func (p *pool) loadTail() *poolRef { return (*poolRef)(atomic.LoadPointer(&p.tail)) }

func (n *node) loadPoolNext() *poolRef {
	return (*poolRef)(atomic.LoadPointer(&n.poolNext))
}

func (n *node) casPoolNext(old, newRef *poolRef) bool {
	return atomic.CompareAndSwapPointer(&n.poolNext, unsafe.Pointer(old), unsafe.Pointer(newRef))
}

// append retires n onto the tail of the pool. Precondition (caller's
// responsibility, per §4.B): n.state is already stateRetired and
// n.poolSerial/poolNext have not yet been assigned for this retirement.
func (p *pool) append(n *node) {
	serial := p.nextSerial.Add(1)
	n.poolSerial.Store(serial)
	atomic.StorePointer(&n.poolNext, unsafe.Pointer(&poolRef{nil, serial}))

	for {
		tail := p.loadTail()
		tailNext := tail.n.loadPoolNext()
		if p.loadTail() != tail {
			continue
		}
		if tailNext.n == nil {
			newTailNext := &poolRef{n, tailNext.serial + 1}
			if tail.n.casPoolNext(tailNext, newTailNext) {
				atomic.CompareAndSwapPointer(&p.tail, unsafe.Pointer(tail), unsafe.Pointer(&poolRef{n, tail.serial + 1}))
				p.length.Add(1)
				p.stats.flAppend()
				p.stats.bumpMaxFreeLen(p.length.Load())
				break
			}
			p.stats.flAppendCollision()
		} else {
			atomic.CompareAndSwapPointer(&p.tail, unsafe.Pointer(tail), unsafe.Pointer(&poolRef{tailNext.n, tail.serial + 1}))
			p.stats.flTailUpdateCollision()
		}
	}

	if p.softCap > 0 && p.length.Load() > p.softCap {
		p.reclaimOne()
	}
}

// acquire draws the head of the pool for reuse, honoring the eligibility
// rule of Invariant 6: a node may leave the pool only once it is at the head
// AND its ref_count has been observed zero there. Returns (nil, false) when
// the pool is logically empty or its head is pinned by an in-flight guard.
func (p *pool) acquire() (*node, bool) {
	for {
		head := p.loadHead()
		tail := p.loadTail()
		headNext := head.n.loadPoolNext()
		if p.loadHead() != head {
			continue
		}
		if head.n == tail.n {
			if headNext.n == nil {
				p.stats.flDeniedEmpty()
				return nil, false
			}
			atomic.CompareAndSwapPointer(&p.tail, unsafe.Pointer(tail), unsafe.Pointer(&poolRef{headNext.n, tail.serial + 1}))
			continue
		}
		if head.n.refCount.Load() > 0 {
			p.stats.flDeniedRefCount()
			return nil, false
		}
		newHead := &poolRef{headNext.n, head.serial + 1}
		if atomic.CompareAndSwapPointer(&p.head, unsafe.Pointer(head), unsafe.Pointer(newHead)) {
			acquired := head.n
			acquired.state.store(stateLive)
			atomic.StorePointer(&acquired.poolNext, unsafe.Pointer(&poolRef{nil, acquired.poolSerial.Load() + 1}))
			p.length.Add(-1)
			p.stats.flDrawn()
			return acquired, true
		}
		p.stats.flHeadUpdateCollision()
	}
}

// reclaimOne tries once to pull the pool head off to the heap entirely,
// under the same acquire-eligibility rule, when the configured soft cap has
// been exceeded. Failing is harmless: the node simply stays pooled and a
// later append tries again.
func (p *pool) reclaimOne() {
	n, ok := p.acquire()
	if !ok {
		p.stats.flFreeSkippedEmptyOrRefCount()
		return
	}
	n.state.store(stateDestroyed)
	p.stats.nodeFreed()
}

// len reports current pool membership, including the permanent dummy node
// (Invariant 5): logical emptiness is len() == 1.
func (p *pool) len() int64 { return p.length.Load() }
