package store

import "sync/atomic"

// Config bundles the structural parameters a Container is built with
// (§4.E/§4.B tunables). Values come from the config package at process
// start; nothing here changes after construction except via Clear, which
// rebuilds a fresh generation from the same Config.
type Config struct {
	// GrowthThreshold is the average chain length (logLen / bucketCount)
	// that triggers widening the addressable bucket index by one bit,
	// doubling the bucket count (§4.E:
	// the original checks this ratio against a fixed value of 8).
	GrowthThreshold float64
	// PoolSoftCap caps the retired-node pool's resident length before
	// acquire-and-release starts trimming it back to the heap. Zero
	// disables trimming.
	PoolSoftCap int64
	// MaxIndexBits bounds how wide the addressable bucket-index width is
	// allowed to grow (§4.E/§3: index_bits < max_index_bits). Growth stops
	// silently once this width is reached; chains simply get longer past
	// that point instead of the index growing without bound.
	MaxIndexBits uint32
}

// DefaultConfig uses an average-chain-length-of-8 growth trigger, the
// same constant LFHT_MAX_LOAD_FACTOR names, and caps the index at 1<<10
// buckets.
var DefaultConfig = Config{GrowthThreshold: 8, PoolSoftCap: 0, MaxIndexBits: 10}

// generation is the full mutable state of a Container: its list, bucket
// index and retired-node pool. Clear (§4.F) swaps in a fresh generation
// rather than mutating the existing one in place, since safely emptying a
// lock-free structure in place, under concurrent access, is exactly the
// problem the rest of this package exists to solve — rebuilding sidesteps
// it at the cost of discarding (not reusing) the old generation's nodes.
type generation struct {
	pool *pool
	list *list
	idx  *bucketIndex
}

// Container is the public, concurrent id -> Value map (§4.F). The zero
// value is not usable; construct with New.
//
// Grounded on cache/uint64_sync_map.go's SyncUInt64Map, generalized from a
// generic-typed wrapper over a fixed bucket array to the split-ordered,
// growable structure described end to end in §4.
type Container struct {
	cfg  Config
	gen  atomic.Pointer[generation]
	stats *Stats
}

// New constructs an empty Container. Equivalent to §4.F's Init operation.
func New(cfg Config) *Container {
	c := &Container{cfg: cfg, stats: NewStats()}
	c.gen.Store(c.newGeneration())
	return c
}

func (c *Container) newGeneration() *generation {
	p := newPool(c.cfg.PoolSoftCap, c.stats)
	l := newList(p, c.stats)
	idx := newBucketIndex(l, c.cfg.GrowthThreshold, c.cfg.MaxIndexBits, c.stats)
	return &generation{pool: p, list: l, idx: idx}
}

// Clear discards all entries, returning the container to its just-New
// state. Stats are left untouched; call ClearStats separately if a clean
// counter baseline is also wanted (§4.F explicitly keeps these independent).
func (c *Container) Clear() {
	c.gen.Store(c.newGeneration())
}

// ClearStats zeroes every counter without touching stored entries.
func (c *Container) ClearStats() {
	c.stats.Reset()
}

// DumpStats returns a point-in-time copy of every counter (§4.F).
func (c *Container) DumpStats() Snapshot {
	return c.stats.Dump()
}

// Len reports the current number of live, non-sentinel entries. It is a
// best-effort snapshot under concurrent mutation, same as every other read
// here.
func (c *Container) Len() int64 {
	return c.gen.Load().list.logLen.Load()
}

// Add inserts id -> val. Returns false without modifying anything if id is
// already present (§4.F Add / Invariant 1: ids are unique).
func (c *Container) Add(id uint64, val Value) bool {
	g := c.gen.Load()
	gd := enter(g.pool)
	defer gd.exit()

	c.stats.insert()
	key := idToHash(id)
	head := g.idx.bucketHead(g.idx.indexFor(id))
	ok := g.list.insert(head, id, key, false, val, nil)
	if !ok {
		c.stats.insertFailure()
		return false
	}
	g.idx.maybeGrow(g.list.logLen.Load())
	return true
}

// Delete removes id, if present. Returns false if id was not found.
func (c *Container) Delete(id uint64) bool {
	g := c.gen.Load()
	gd := enter(g.pool)
	defer gd.exit()

	c.stats.deleteAttempt()
	key := idToHash(id)
	head := g.idx.bucketHead(g.idx.indexFor(id))
	ok := g.list.deleteHash(head, key)
	if ok {
		c.stats.deleteSuccess()
	} else {
		c.stats.deleteFailure()
	}
	return ok
}

// Find looks up id's current value.
func (c *Container) Find(id uint64) (Value, bool) {
	g := c.gen.Load()
	gd := enter(g.pool)
	defer gd.exit()

	c.stats.search()
	key := idToHash(id)
	head := g.idx.bucketHead(g.idx.indexFor(id))
	n, ok := g.list.find(head, key)
	if !ok {
		c.stats.searchFailure()
		return nil, false
	}
	c.stats.searchSuccess()
	return n.loadValue(), true
}

// SwapValue atomically replaces id's stored value and returns the value it
// held beforehand. Returns (nil, false) without effect if id is absent.
func (c *Container) SwapValue(id uint64, val Value) (Value, bool) {
	g := c.gen.Load()
	gd := enter(g.pool)
	defer gd.exit()

	c.stats.valueSwap()
	key := idToHash(id)
	head := g.idx.bucketHead(g.idx.indexFor(id))
	n, ok := g.list.find(head, key)
	if !ok {
		c.stats.valueSwapFailure()
		return nil, false
	}
	c.stats.valueSwapSuccess()
	return n.swapValue(val), true
}

// FindByValue performs a linear scan for the first id currently holding a
// value equal to val (§4.F: explicitly O(N), no secondary index is kept).
func (c *Container) FindByValue(val Value) (uint64, bool) {
	g := c.gen.Load()
	gd := enter(g.pool)
	defer gd.exit()

	c.stats.valueSearch()
	id, ok := g.list.findByValue(val)
	if !ok {
		c.stats.valueSearchFailure()
		return 0, false
	}
	c.stats.valueSearchSuccess()
	return id, true
}

// Iterator walks live entries in list (split-order) order, a sequence
// unrelated to insertion order and not guaranteed stable across concurrent
// mutation (§4.D). Safe for a single goroutine; create one per traversal.
type Iterator struct {
	c       *Container
	g       *generation
	gd      guard
	last    uint64
	started bool
	done    bool
}

// Iterate starts a new traversal. The returned Iterator holds a guard for
// its entire lifetime, so long-lived iterators pin pool reclamation; callers
// should call Close when finished early.
func (c *Container) Iterate() *Iterator {
	g := c.gen.Load()
	c.stats.iterInit()
	return &Iterator{c: c, g: g, gd: enter(g.pool)}
}

// Close releases the iterator's guard. Safe to call multiple times.
func (it *Iterator) Close() {
	if !it.done {
		it.done = true
		it.gd.exit()
	}
}

// Next advances the iterator and returns the next live entry, or ok=false
// once the traversal is exhausted (§4.F iterate-next). The iterator closes
// itself automatically on exhaustion.
func (it *Iterator) Next() (id uint64, val Value, ok bool) {
	if it.done {
		return 0, nil, false
	}
	it.c.stats.iterNext()

	var n *node
	if !it.started {
		it.started = true
		n, ok = it.g.list.iterateFirst()
	} else {
		n, ok = it.g.list.iterateNext(it.last)
	}
	if !ok {
		it.c.stats.iterEnd()
		it.Close()
		return 0, nil, false
	}
	it.last = n.hash
	return n.id, n.loadValue(), true
}
