// Package idkey turns arbitrary string keys into the uint64 ids a
// store.Container indexes on.
package idkey

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// keyBuffer holds a reusable, stack-sized buffer for key normalization so
// the common case of short keys never touches the heap.
type keyBuffer struct {
	buf [256]byte
}

var keyBufferPool = sync.Pool{
	New: func() any {
		return new(keyBuffer)
	},
}

// FromString derives the id for a string key by lowercasing it and hashing
// the result with xxhash. Grounded on cache/key.go's Key/KeyString, which
// use the identical pool-a-buffer-then-xxhash.Sum64 shape for a different
// domain (DNS question normalization rather than arbitrary key lowering).
func FromString(key string) uint64 {
	kb := keyBufferPool.Get().(*keyBuffer)
	defer keyBufferPool.Put(kb)

	buf := kb.buf[:0]
	n := len(key)
	if n > len(kb.buf) {
		buf = make([]byte, 0, n)
	}
	for i := 0; i < n; i++ {
		c := key[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		buf = append(buf, c)
	}
	return xxhash.Sum64(buf)
}

// FromBytes hashes a byte key directly, with no case normalization. Useful
// for binary keys (UUIDs, opaque tokens) where case-folding would be wrong.
func FromBytes(key []byte) uint64 {
	return xxhash.Sum64(key)
}
