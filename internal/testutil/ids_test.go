package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedIDs_ReturnsInOrderThenRepeatsLast(t *testing.T) {
	gen := NewFixedIDs("a", "b")

	assert.Equal(t, "a", gen.Generate())
	assert.Equal(t, "b", gen.Generate())
	assert.Equal(t, "b", gen.Generate())
}

func TestFixedIDs_EmptyDefault(t *testing.T) {
	gen := NewFixedIDs()

	assert.Equal(t, "test-id-default", gen.Generate())
	assert.Equal(t, "test-id-default", gen.Generate())
}
