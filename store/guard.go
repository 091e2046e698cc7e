package store

// guard is a token every public operation holds for its duration (§4.C).
// Acquiring one guarantees: while the operation is in flight, at least one
// pool node has ref_count > 0, which makes that node (and everything the
// operation has already dereferenced) ineligible for reuse until the
// operation departs. It is deliberately coarser than hazard pointers,
// cheaper per op at the cost of precision.
//
// This implements the base "append a fresh guard" form rather than the
// optimized tail-ref-count-increment variant (see DESIGN.md's Open
// Question entry for guard.go).
type guard struct {
	n *node
}

// enter allocates-or-acquires one node, marks it as a retired-looking
// token with ref_count 1, and appends it to the pool tail so concurrent
// pool acquisitions see it and refuse to recycle it.
func enter(p *pool) guard {
	n, ok := p.acquire()
	if !ok {
		n = newNode(0, 0, false, nil, p.stats)
	}
	n.refCount.Store(1)
	n.state.store(stateRetired)
	n.storeLink(&link{next: nil, marked: true})
	p.append(n)
	return guard{n: n}
}

// exit releases the token. The node remains in the pool; it becomes
// eligible for reuse once its ref_count is observed zero at the pool head.
func (g guard) exit() {
	g.n.refCount.Add(-1)
}
