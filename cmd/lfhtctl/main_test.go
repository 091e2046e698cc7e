package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveIDNumericPassesThrough(t *testing.T) {
	assert.Equal(t, uint64(42), resolveID("42"))
}

func TestResolveIDNonNumericHashesConsistently(t *testing.T) {
	assert.Equal(t, resolveID("my-key"), resolveID("my-key"))
	assert.NotEqual(t, resolveID("my-key"), resolveID("other-key"))
}
