// Package metrics exports a store.Container's counters as Prometheus
// metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tessera-db/lfht/store"
)

// Collector adapts a store.Container's Snapshot into Prometheus metrics.
// Unlike middleware/cache/prometheus.go's package-level globals registered
// once via init (fine for a singleton DNS cache), this package is meant to
// back any number of independently constructed Containers, so it is built
// as a proper prometheus.Collector that computes its values from a fresh
// Dump on every scrape rather than maintaining its own counters.
type Collector struct {
	c *store.Container

	maxLogLen, maxPhysLen, maxFreeLen   *prometheus.Desc
	nodesAllocated, nodesFreed          *prometheus.Desc
	insertions, insertionFailures       *prometheus.Desc
	deletions, deletionFailures         *prometheus.Desc
	searches, searchHits, searchMisses  *prometheus.Desc
	freeListAppends, freeListDrawn      *prometheus.Desc
	freeListCollisions                  *prometheus.Desc
	logLen                              *prometheus.Desc
}

// NewCollector builds a Collector for c. Register it with a
// prometheus.Registerer to start exporting.
func NewCollector(c *store.Container, namespace string) *Collector {
	ns := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(namespace+"_"+name, help, nil, nil)
	}
	return &Collector{
		c:                  c,
		logLen:             ns("entries", "Current number of live entries."),
		maxLogLen:          ns("max_logical_length", "High-water mark of live entries."),
		maxPhysLen:         ns("max_physical_length", "High-water mark of physical list nodes, live and marked."),
		maxFreeLen:         ns("max_free_list_length", "High-water mark of the retired-node pool length."),
		nodesAllocated:     ns("nodes_allocated_total", "Nodes allocated over the container's lifetime."),
		nodesFreed:         ns("nodes_freed_total", "Nodes released back to the allocator over the container's lifetime."),
		insertions:         ns("insertions_total", "Insert operations attempted."),
		insertionFailures:  ns("insertion_failures_total", "Insert operations that failed because the id already existed."),
		deletions:          ns("deletions_total", "Delete operations attempted."),
		deletionFailures:   ns("deletion_failures_total", "Delete operations that found no matching id."),
		searches:           ns("searches_total", "Find operations attempted."),
		searchHits:         ns("search_hits_total", "Find operations that located the id."),
		searchMisses:       ns("search_misses_total", "Find operations that did not locate the id."),
		freeListAppends:    ns("free_list_appends_total", "Nodes retired into the free list."),
		freeListDrawn:      ns("free_list_drawn_total", "Nodes drawn back out of the free list for reuse."),
		freeListCollisions: ns("free_list_cas_collisions_total", "CAS collisions across all free-list operations."),
	}
}

// Describe implements prometheus.Collector.
func (col *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- col.logLen
	ch <- col.maxLogLen
	ch <- col.maxPhysLen
	ch <- col.maxFreeLen
	ch <- col.nodesAllocated
	ch <- col.nodesFreed
	ch <- col.insertions
	ch <- col.insertionFailures
	ch <- col.deletions
	ch <- col.deletionFailures
	ch <- col.searches
	ch <- col.searchHits
	ch <- col.searchMisses
	ch <- col.freeListAppends
	ch <- col.freeListDrawn
	ch <- col.freeListCollisions
}

// Collect implements prometheus.Collector.
func (col *Collector) Collect(ch chan<- prometheus.Metric) {
	s := col.c.DumpStats()

	ch <- prometheus.MustNewConstMetric(col.logLen, prometheus.GaugeValue, float64(col.c.Len()))
	ch <- prometheus.MustNewConstMetric(col.maxLogLen, prometheus.GaugeValue, float64(s.MaxLogLen))
	ch <- prometheus.MustNewConstMetric(col.maxPhysLen, prometheus.GaugeValue, float64(s.MaxPhysLen))
	ch <- prometheus.MustNewConstMetric(col.maxFreeLen, prometheus.GaugeValue, float64(s.MaxFreeLen))
	ch <- prometheus.MustNewConstMetric(col.nodesAllocated, prometheus.CounterValue, float64(s.NodesAllocated))
	ch <- prometheus.MustNewConstMetric(col.nodesFreed, prometheus.CounterValue, float64(s.NodesFreed))
	ch <- prometheus.MustNewConstMetric(col.insertions, prometheus.CounterValue, float64(s.Insertions))
	ch <- prometheus.MustNewConstMetric(col.insertionFailures, prometheus.CounterValue, float64(s.InsertionFailures))
	ch <- prometheus.MustNewConstMetric(col.deletions, prometheus.CounterValue, float64(s.DeletionAttempts))
	ch <- prometheus.MustNewConstMetric(col.deletionFailures, prometheus.CounterValue, float64(s.DeletionFailures))
	ch <- prometheus.MustNewConstMetric(col.searches, prometheus.CounterValue, float64(s.Searches))
	ch <- prometheus.MustNewConstMetric(col.searchHits, prometheus.CounterValue, float64(s.SuccessfulSearches))
	ch <- prometheus.MustNewConstMetric(col.searchMisses, prometheus.CounterValue, float64(s.FailedSearches))
	ch <- prometheus.MustNewConstMetric(col.freeListAppends, prometheus.CounterValue, float64(s.FreeListAppends))
	ch <- prometheus.MustNewConstMetric(col.freeListDrawn, prometheus.CounterValue, float64(s.FreeListDrawn))

	collisions := s.FreeListAppendCollisions + s.FreeListTailUpdateCollisions +
		s.FreeListHeadUpdateCollisions
	ch <- prometheus.MustNewConstMetric(col.freeListCollisions, prometheus.CounterValue, float64(collisions))
}
