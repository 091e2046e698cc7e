package store

import (
	"sync/atomic"
	"unsafe"
)

// Value is an opaque, pointer-sized token stored against an id. The nil
// Value is a legal payload and is distinguished from "absent" by the bool
// every lookup returns alongside it.
type Value unsafe.Pointer

// nodeState is the validity tag carried by every node: live in the list,
// retired into the pool, or destroyed (released back to the allocator).
// Grounded on lfht_node_t's tag field and on cache/uint64_sync_map.go's
// fnode.deleted flag, generalized to a tri-state.
type nodeState uint32

const (
	stateLive nodeState = iota
	stateRetired
	stateDestroyed
)

// link bundles a successor pointer together with the logical-deletion mark
// for that successor edge so the pair can be swapped with a single
// word-sized compare-and-swap. Go's precise, moving-capable garbage
// collector does not allow stealing the LSB of a *node the way the original
// C implementation does (see §3); pairing the two fields into one immutable
// heap value and swapping the whole value is the idiomatic Go substitute.
type link struct {
	next   *node
	marked bool
}

// node is a member of the ordered list (§4.D) and, once retired, of the
// free-list pool (§4.B). The two roles share one struct because a node's
// storage is reused across both: it is allocated once and lives out its days
// cycling between "linked into the list" and "sitting in the pool".
type node struct {
	state nodeState32 // atomic

	hash     uint64 // list key; LSB 1 = regular node, LSB 0 = sentinel
	id       uint64 // meaningful only when !sentinel
	sentinel bool

	linkPtr unsafe.Pointer // *link, atomic
	value   unsafe.Pointer // Value, atomic

	// Retired-node / pool bookkeeping (§3 "Retired-node extension").
	refCount   atomic.Int64
	poolSerial atomic.Uint64
	poolNext   unsafe.Pointer // *poolRef, atomic
}

// nodeState32 is a tiny named wrapper so node's zero value starts at
// stateLive without needing an explicit initializer in every call site that
// constructs a node by composite literal.
type nodeState32 struct{ v atomic.Uint32 }

func (s *nodeState32) load() nodeState      { return nodeState(s.v.Load()) }
func (s *nodeState32) store(n nodeState)    { s.v.Store(uint32(n)) }
func (s *nodeState32) cas(old, n nodeState) bool {
	return s.v.CompareAndSwap(uint32(old), uint32(n))
}

func newNode(id, hash uint64, sentinel bool, val Value, stats *Stats) *node {
	n := &node{hash: hash, id: id, sentinel: sentinel}
	n.state.store(stateLive)
	atomic.StorePointer(&n.linkPtr, unsafe.Pointer(&link{next: nil, marked: false}))
	atomic.StorePointer(&n.value, unsafe.Pointer(val))
	stats.nodeAllocated()
	return n
}

func (n *node) loadLink() *link {
	return (*link)(atomic.LoadPointer(&n.linkPtr))
}

func (n *node) casLink(old, newl *link) bool {
	return atomic.CompareAndSwapPointer(&n.linkPtr, unsafe.Pointer(old), unsafe.Pointer(newl))
}

func (n *node) storeLink(l *link) {
	atomic.StorePointer(&n.linkPtr, unsafe.Pointer(l))
}

func (n *node) next() *node {
	return n.loadLink().next
}

// markedForDeletion reports whether the edge from n to its successor is logically
// deleted (Invariant 4).
func (n *node) markedForDeletion() bool {
	return n.loadLink().marked
}

func (n *node) loadValue() Value {
	return Value(atomic.LoadPointer(&n.value))
}

func (n *node) storeValue(v Value) {
	atomic.StorePointer(&n.value, unsafe.Pointer(v))
}

func (n *node) swapValue(v Value) Value {
	return Value(atomic.SwapPointer(&n.value, unsafe.Pointer(v)))
}
