package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnorderedPairKey_OrderIndependent(t *testing.T) {
	assert.Equal(t, UnorderedPairKey("a", "b"), UnorderedPairKey("b", "a"))
	assert.Equal(t, "a#b", UnorderedPairKey("b", "a"))
}

func TestUnorderedPairKey_DistinctPairs(t *testing.T) {
	assert.NotEqual(t, UnorderedPairKey("a", "b"), UnorderedPairKey("a", "c"))
}
