package store

import "sync/atomic"

// list is the ordered, lock-free singly-linked list (§4.D) shared by every
// bucket: split-ordering means one list serves the whole table, and growing
// the bucket index only ever adds more sentinels into it, never rewires it.
//
// Grounded in shape on cache/uint64_sync_map.go's CAS'd unsafe.Pointer
// chains (bucket.head / fnode.next) and, for the split-ordered-list
// algorithm itself, on other_examples' markcol-gotomic hash.go (a direct Go
// implementation of the underlying Shalev/Shavit paper).
type list struct {
	head *node
	tail *node

	physLen atomic.Int64
	logLen  atomic.Int64

	pool  *pool
	stats *Stats
}

func newList(p *pool, stats *Stats) *list {
	tail := newNode(0, maxHash, true, nil, stats)
	head := newNode(0, 0, true, nil, stats)
	head.storeLink(&link{next: tail, marked: false})
	l := &list{head: head, tail: tail, pool: p, stats: stats}
	l.physLen.Store(2)
	return l
}

// findModPoint walks the list starting at h0 (a bucket sentinel whose hash
// is < k) and returns (prev, prevLink, curr) such that prev.hash <= k <
// curr.hash, prevLink is the link value currently observed stored in
// prev (the CAS "old" a caller must use to swap it), and prev's link to
// curr is unmarked. Marked nodes encountered along the way are physically
// unlinked and retired, per §4.D.
func (l *list) findModPoint(h0 *node, k uint64) (*node, *link, *node) {
restart:
	prev := h0
	prevLink := prev.loadLink()
	curr := prevLink.next

	for {
		currLink := curr.loadLink()
		for currLink.marked {
			newLink := &link{next: currLink.next, marked: false}
			if !prev.casLink(prevLink, newLink) {
				l.stats.insRestartDueToDelCollision()
				goto restart
			}
			l.physLen.Add(-1)
			l.retireListNode(curr)
			prevLink = newLink
			curr = currLink.next
			currLink = curr.loadLink()
		}
		if curr.hash > k {
			return prev, prevLink, curr
		}
		prev = curr
		prevLink = currLink
		curr = currLink.next
	}
}

// retireListNode transitions a node that has just been physically unlinked
// from LIVE to RETIRED and hands it to the pool (§4.B's append
// precondition).
func (l *list) retireListNode(n *node) {
	n.state.store(stateRetired)
	n.refCount.Store(0)
	n.storeLink(&link{next: nil, marked: true})
	l.pool.append(n)
}

// insert places a new node with the given hash between the mod-point
// bracketing k. Fails (returning false) if a live node already holds hash
// k. On success, *out (if non-nil) receives the inserted node — used by the
// bucket index to learn the sentinel it just created.
//
// The node is drawn from the retired-node pool when possible (§4.B
// Acquire); only an empty pool forces a fresh heap allocation. Fields on a
// reused node are safe to set with plain, non-atomic writes here: the node
// is privately held (exclusively CAS'd out of the pool by this goroutine)
// and unreachable to anyone else until the insert's own CAS publishes it.
func (l *list) insert(h0 *node, id, k uint64, sentinel bool, val Value, out **node) bool {
	n, reused := l.pool.acquire()
	if reused {
		n.id = id
		n.hash = k
		n.sentinel = sentinel
		n.storeValue(val)
		n.storeLink(&link{next: nil, marked: false})
	} else {
		n = newNode(id, k, sentinel, val, l.stats)
	}
	for {
		prev, prevLink, curr := l.findModPoint(h0, k)
		if prev.hash == k {
			l.retireListNode(n)
			return false
		}
		n.storeLink(&link{next: curr, marked: false})
		if prev.casLink(prevLink, &link{next: n, marked: false}) {
			l.physLen.Add(1)
			if !sentinel {
				l.logLen.Add(1)
			}
			l.stats.bumpMaxLens(l.logLen.Load(), l.physLen.Load())
			if out != nil {
				*out = n
			}
			return true
		}
		l.stats.insRestartDueToInsCollision()
	}
}

// deleteHash marks for deletion the live node holding hash k reachable from
// h0. Returns false if no such node exists.
func (l *list) deleteHash(h0 *node, k uint64) bool {
	for {
		prev, _, _ := l.findModPoint(h0, k)
		if prev.hash != k {
			return false
		}
		// findModPoint guarantees a node whose hash equals k, if live, is
		// returned as prev itself (it is the last node seen with hash <= k).
		target := prev
		curLink := target.loadLink()
		if curLink.marked {
			return true // another thread already marked it
		}
		newLink := &link{next: curLink.next, marked: true}
		if target.casLink(curLink, newLink) {
			l.logLen.Add(-1)
			return true
		}
		l.stats.delRestartDueToDelCollision()
		// lost the race: someone else marked or changed curr's successor; retry
	}
}

// find returns the live node holding hash k, if any, without unlinking
// anything (plain traversal, per §4.D "Find / find-internal").
func (l *list) find(h0 *node, k uint64) (*node, bool) {
	curr := h0.next()
	for {
		currLink := curr.loadLink()
		if !currLink.marked && curr.hash == k {
			return curr, true
		}
		if curr.hash > k {
			return nil, false
		}
		curr = currLink.next
	}
}

// findByValue performs an O(N) linear scan from the list head for the first
// live, non-sentinel node whose value compares equal to val.
func (l *list) findByValue(val Value) (uint64, bool) {
	for n := l.head.next(); n != l.tail; n = n.next() {
		if n.sentinel || n.markedForDeletion() {
			continue
		}
		if n.loadValue() == val {
			return n.id, true
		}
	}
	return 0, false
}

// iterateFirst returns the first live, non-sentinel node in list order.
func (l *list) iterateFirst() (*node, bool) {
	for n := l.head.next(); n != l.tail; n = n.next() {
		if !n.sentinel && !n.markedForDeletion() {
			return n, true
		}
	}
	return nil, false
}

// iterateNext returns the least live, non-sentinel node whose hash exceeds
// afterHash. Iteration is snapshot-inconsistent by design (§4.D): concurrent
// inserts/deletes may or may not be observed.
func (l *list) iterateNext(afterHash uint64) (*node, bool) {
	for n := l.head.next(); n != l.tail; n = n.next() {
		if n.hash <= afterHash {
			continue
		}
		if !n.sentinel && !n.markedForDeletion() {
			return n, true
		}
	}
	return nil, false
}
