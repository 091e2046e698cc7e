package store

import "math/bits"

// hashBits (H) is the number of significant bits of an id that take part
// in hashing (§4.A). Matches LFHT_HASH_BITS.
const hashBits = 57

const idMask uint64 = (uint64(1) << hashBits) - 1

// maxHash is a reserved boundary value strictly greater than any hash a
// real id or bucket sentinel can ever produce (both are bounded by
// 2^(hashBits+1)-1); it exists solely to seed the list's tail sentinel.
const maxHash uint64 = ^uint64(0)

// reverseBits reverses the low `width` bits of v, leaving the result in the
// low `width` bits of the return value.
func reverseBits(v uint64, width uint32) uint64 {
	return bits.Reverse64(v << (64 - width))
}

// idToHash maps an id to its list key: the id's low hashBits bits,
// bit-reversed, shifted up by one, with the vacated LSB set to mark a
// regular (non-sentinel) entry (§4.A, property 9:
// id_to_hash(id) == reverse_bits(id, H) << 1 | 1). Reversing is what makes
// natural list order agree with bucket-index prefix order as the index
// grows (Shalev/Shavit "Split-Ordered Lists").
func idToHash(id uint64) uint64 {
	return reverseBits(id&idMask, hashBits)<<1 | 1
}

// bucketToHash produces the sentinel key for a given bucket index: the
// reverse of the index (over the full hashBits width), shifted up by one,
// with the LSB left clear to mark it as a sentinel.
func bucketToHash(bucketIndex uint64) uint64 {
	return reverseBits(bucketIndex&idMask, hashBits) << 1
}

// bucketIndexFor returns the table slot a raw id currently falls into under
// an addressable width of `width` bits: its low `width` bits, unreversed.
// The reversal in idToHash/bucketToHash only orders the list; slot lookup
// uses the id directly, per the split-ordered-list scheme.
func bucketIndexFor(id uint64, width uint32) uint64 {
	if width == 0 {
		return 0
	}
	return id & ((uint64(1) << width) - 1)
}

// parentBucketIndex returns the bucket whose sentinel must already exist
// before bucketIndex's own sentinel can be inserted: clearing bucketIndex's
// most significant set bit (§4.E "Bucket initialization", recursive form).
func parentBucketIndex(bucketIndex uint64) uint64 {
	if bucketIndex == 0 {
		return 0
	}
	msb := uint64(1) << (63 - bits.LeadingZeros64(bucketIndex))
	return bucketIndex &^ msb
}
