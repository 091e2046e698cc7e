package idkey_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tessera-db/lfht/idkey"
)

func TestFromStringCaseInsensitive(t *testing.T) {
	assert.Equal(t, idkey.FromString("Example.COM"), idkey.FromString("example.com"))
}

func TestFromStringDistinctKeys(t *testing.T) {
	assert.NotEqual(t, idkey.FromString("alpha"), idkey.FromString("beta"))
}

func TestFromStringLongKey(t *testing.T) {
	long := make([]byte, 4096)
	for i := range long {
		long[i] = byte('a' + i%26)
	}
	// Must not panic when the key exceeds the pooled buffer's stack size.
	assert.NotPanics(t, func() {
		idkey.FromString(string(long))
	})
}

func TestFromBytesMatchesFromStringWhenLowercase(t *testing.T) {
	assert.Equal(t, idkey.FromString("already-lower"), idkey.FromBytes([]byte("already-lower")))
}
