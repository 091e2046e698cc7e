package store

import "sync/atomic"

// Stats mirrors the counter set carried by the lfht_t struct, widened from
// plain unsigned longs to atomic.Int64 fields so concurrent
// operations can bump them without a lock. Every exported counter here
// corresponds 1:1 to a field of the same meaning; names are translated from
// snake_case to camelCase per Go convention but kept close enough to
// cross-reference.
//
// Grounded on middleware/cache/prometheus.go, which exports cache counters
// the same shape: plain struct of atomics, snapshotted into a Dump for the
// metrics package to read.
type Stats struct {
	maxLogLen  atomic.Int64
	maxPhysLen atomic.Int64
	maxFreeLen atomic.Int64

	nodesAllocated atomic.Int64
	nodesFreed     atomic.Int64

	flAppends             atomic.Int64
	flAppendCollisions    atomic.Int64
	flTailUpdateCollisions atomic.Int64
	flHeadUpdateCollisions atomic.Int64
	flDrawnCount          atomic.Int64
	flDeniedEmptyCount    atomic.Int64
	flDeniedRefCountCount atomic.Int64
	flFreeSkipped         atomic.Int64

	indexBitsIncrCollisions      atomic.Int64
	bucketsDefinedUpdateCols     atomic.Int64
	bucketsDefinedUpdateRetries  atomic.Int64
	bucketInitCollisions         atomic.Int64
	recursiveBucketInits         atomic.Int64

	insertions                atomic.Int64
	insertionFailures         atomic.Int64
	insRestartDueToInsCol     atomic.Int64
	insRestartDueToDelCol     atomic.Int64

	deletionAttempts          atomic.Int64
	deletionSuccesses         atomic.Int64
	deletionFailures          atomic.Int64
	delRestartDueToDelCol     atomic.Int64

	searches                  atomic.Int64
	successfulSearches        atomic.Int64
	failedSearches            atomic.Int64

	valueSwaps                atomic.Int64
	successfulValueSwaps      atomic.Int64
	failedValueSwaps          atomic.Int64

	valueSearches             atomic.Int64
	successfulValueSearches   atomic.Int64
	failedValueSearches       atomic.Int64

	iterInits atomic.Int64
	iterNexts atomic.Int64
	iterEnds  atomic.Int64
}

// NewStats returns a zeroed counter block, ready to be passed into a
// Container's construction.
func NewStats() *Stats { return &Stats{} }

func (s *Stats) bumpMaxLens(logLen, physLen int64) {
	for {
		cur := s.maxLogLen.Load()
		if logLen <= cur || s.maxLogLen.CompareAndSwap(cur, logLen) {
			break
		}
	}
	for {
		cur := s.maxPhysLen.Load()
		if physLen <= cur || s.maxPhysLen.CompareAndSwap(cur, physLen) {
			break
		}
	}
}

func (s *Stats) bumpMaxFreeLen(n int64) {
	for {
		cur := s.maxFreeLen.Load()
		if n <= cur || s.maxFreeLen.CompareAndSwap(cur, n) {
			break
		}
	}
}

func (s *Stats) nodeAllocated()              { s.nodesAllocated.Add(1) }
func (s *Stats) nodeFreed()                  { s.nodesFreed.Add(1) }

func (s *Stats) flAppend()                   { s.flAppends.Add(1) }
func (s *Stats) flAppendCollision()          { s.flAppendCollisions.Add(1) }
func (s *Stats) flTailUpdateCollision()      { s.flTailUpdateCollisions.Add(1) }
func (s *Stats) flHeadUpdateCollision()      { s.flHeadUpdateCollisions.Add(1) }
func (s *Stats) flDrawn()                    { s.flDrawnCount.Add(1) }
func (s *Stats) flDeniedEmpty()              { s.flDeniedEmptyCount.Add(1) }
func (s *Stats) flDeniedRefCount()           { s.flDeniedRefCountCount.Add(1) }
func (s *Stats) flFreeSkippedEmptyOrRefCount() { s.flFreeSkipped.Add(1) }

func (s *Stats) indexBitsIncrCollision()     { s.indexBitsIncrCollisions.Add(1) }
func (s *Stats) bucketsDefinedUpdateCollision() { s.bucketsDefinedUpdateCols.Add(1) }
func (s *Stats) bucketsDefinedUpdateRetry()  { s.bucketsDefinedUpdateRetries.Add(1) }
func (s *Stats) bucketInitCollision()        { s.bucketInitCollisions.Add(1) }
func (s *Stats) recursiveBucketInit()        { s.recursiveBucketInits.Add(1) }

func (s *Stats) insert()                     { s.insertions.Add(1) }
func (s *Stats) insertFailure()              { s.insertionFailures.Add(1) }
func (s *Stats) insRestartDueToInsCollision() { s.insRestartDueToInsCol.Add(1) }
func (s *Stats) insRestartDueToDelCollision() { s.insRestartDueToDelCol.Add(1) }

func (s *Stats) deleteAttempt()              { s.deletionAttempts.Add(1) }
func (s *Stats) deleteSuccess()              { s.deletionSuccesses.Add(1) }
func (s *Stats) deleteFailure()              { s.deletionFailures.Add(1) }
func (s *Stats) delRestartDueToDelCollision() { s.delRestartDueToDelCol.Add(1) }

func (s *Stats) search()                     { s.searches.Add(1) }
func (s *Stats) searchSuccess()              { s.successfulSearches.Add(1) }
func (s *Stats) searchFailure()              { s.failedSearches.Add(1) }

func (s *Stats) valueSwap()                  { s.valueSwaps.Add(1) }
func (s *Stats) valueSwapSuccess()           { s.successfulValueSwaps.Add(1) }
func (s *Stats) valueSwapFailure()           { s.failedValueSwaps.Add(1) }

func (s *Stats) valueSearch()                { s.valueSearches.Add(1) }
func (s *Stats) valueSearchSuccess()         { s.successfulValueSearches.Add(1) }
func (s *Stats) valueSearchFailure()         { s.failedValueSearches.Add(1) }

func (s *Stats) iterInit() { s.iterInits.Add(1) }
func (s *Stats) iterNext() { s.iterNexts.Add(1) }
func (s *Stats) iterEnd()  { s.iterEnds.Add(1) }

// Snapshot is a point-in-time copy of every counter, suitable for dump-stats
// (§7) and for the metrics package's Prometheus collectors.
type Snapshot struct {
	MaxLogLen, MaxPhysLen, MaxFreeLen int64
	NodesAllocated, NodesFreed        int64

	FreeListAppends, FreeListAppendCollisions               int64
	FreeListTailUpdateCollisions, FreeListHeadUpdateCollisions int64
	FreeListDrawn, FreeListDeniedEmpty, FreeListDeniedRefCount int64
	FreeListSkippedFrees                                     int64

	IndexBitsIncrCollisions                                  int64
	BucketsDefinedUpdateCollisions, BucketsDefinedUpdateRetries int64
	BucketInitCollisions, RecursiveBucketInits               int64

	Insertions, InsertionFailures                            int64
	InsRestartsDueToInsCollision, InsRestartsDueToDelCollision int64

	DeletionAttempts, DeletionSuccesses, DeletionFailures    int64
	DelRestartsDueToDelCollision                             int64

	Searches, SuccessfulSearches, FailedSearches             int64
	ValueSwaps, SuccessfulValueSwaps, FailedValueSwaps       int64
	ValueSearches, SuccessfulValueSearches, FailedValueSearches int64

	IterInits, IterNexts, IterEnds int64
}

// Dump takes a consistent-enough snapshot of every counter (each field read
// individually; no cross-field atomicity is implied or required, per §7's
// dump-stats semantics).
func (s *Stats) Dump() Snapshot {
	return Snapshot{
		MaxLogLen:      s.maxLogLen.Load(),
		MaxPhysLen:     s.maxPhysLen.Load(),
		MaxFreeLen:     s.maxFreeLen.Load(),
		NodesAllocated: s.nodesAllocated.Load(),
		NodesFreed:     s.nodesFreed.Load(),

		FreeListAppends:              s.flAppends.Load(),
		FreeListAppendCollisions:     s.flAppendCollisions.Load(),
		FreeListTailUpdateCollisions: s.flTailUpdateCollisions.Load(),
		FreeListHeadUpdateCollisions: s.flHeadUpdateCollisions.Load(),
		FreeListDrawn:                s.flDrawnCount.Load(),
		FreeListDeniedEmpty:          s.flDeniedEmptyCount.Load(),
		FreeListDeniedRefCount:       s.flDeniedRefCountCount.Load(),
		FreeListSkippedFrees:         s.flFreeSkipped.Load(),

		IndexBitsIncrCollisions:        s.indexBitsIncrCollisions.Load(),
		BucketsDefinedUpdateCollisions: s.bucketsDefinedUpdateCols.Load(),
		BucketsDefinedUpdateRetries:    s.bucketsDefinedUpdateRetries.Load(),
		BucketInitCollisions:           s.bucketInitCollisions.Load(),
		RecursiveBucketInits:           s.recursiveBucketInits.Load(),

		Insertions:                   s.insertions.Load(),
		InsertionFailures:            s.insertionFailures.Load(),
		InsRestartsDueToInsCollision: s.insRestartDueToInsCol.Load(),
		InsRestartsDueToDelCollision: s.insRestartDueToDelCol.Load(),

		DeletionAttempts:             s.deletionAttempts.Load(),
		DeletionSuccesses:            s.deletionSuccesses.Load(),
		DeletionFailures:             s.deletionFailures.Load(),
		DelRestartsDueToDelCollision: s.delRestartDueToDelCol.Load(),

		Searches:           s.searches.Load(),
		SuccessfulSearches: s.successfulSearches.Load(),
		FailedSearches:     s.failedSearches.Load(),

		ValueSwaps:           s.valueSwaps.Load(),
		SuccessfulValueSwaps: s.successfulValueSwaps.Load(),
		FailedValueSwaps:     s.failedValueSwaps.Load(),

		ValueSearches:           s.valueSearches.Load(),
		SuccessfulValueSearches: s.successfulValueSearches.Load(),
		FailedValueSearches:     s.failedValueSearches.Load(),

		IterInits: s.iterInits.Load(),
		IterNexts: s.iterNexts.Load(),
		IterEnds:  s.iterEnds.Load(),
	}
}

// Reset zeroes every counter (§7 clear-stats). Maxima reset to zero along
// with everything else, matching the original's clear_lfht_stats behavior.
func (s *Stats) Reset() { *s = Stats{} }
