// Package store implements a lock-free, concurrent uint64-keyed container
// over split-ordered lists, after Shalev and Shavit's "Split-Ordered
// Lists: Lock-Free Extensible Hash Tables".
package store
