package economy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBulkCost_CeilingAfterEachStep(t *testing.T) {
	// 15 + ceil(15×1.15)=18 + ceil(18×1.15)=21 = 54
	total, next := BulkCost(15, 1.15, 3)
	assert.Equal(t, 54.0, total)
	// After three purchases the next unit costs ceil(21×1.15) = 25.
	assert.Equal(t, 25.0, next)
}

func TestBulkCost_SingleUnit(t *testing.T) {
	total, next := BulkCost(100, 1.15, 1)
	assert.Equal(t, 100.0, total)
	assert.Equal(t, 115.0, next)
}

func TestBulkCost_ZeroQuantity(t *testing.T) {
	total, next := BulkCost(100, 1.15, 0)
	assert.Equal(t, 0.0, total)
	assert.Equal(t, 100.0, next)
}

func TestBulkCost_RatchetsFromStoredCost(t *testing.T) {
	// Two sequential bulk purchases must price identically to one combined
	// purchase: the stored cost carries all the history.
	totalA1, next := BulkCost(15, 1.15, 2)
	totalA2, nextA := BulkCost(next, 1.15, 1)
	totalB, nextB := BulkCost(15, 1.15, 3)
	assert.Equal(t, totalB, totalA1+totalA2)
	assert.Equal(t, nextB, nextA)
}

func TestBulkPrestigeCost_LinearNoGrowth(t *testing.T) {
	assert.Equal(t, 0.0, BulkPrestigeCost(0, 10))
	assert.Equal(t, 5.0, BulkPrestigeCost(1, 5))
	assert.Equal(t, 7.5, BulkPrestigeCost(2.5, 3))
}

func TestMaxAffordable(t *testing.T) {
	// Budget 54 buys exactly the 15+18+21 sequence.
	require.Equal(t, 3, MaxAffordable(15, 1.15, 54))
	require.Equal(t, 2, MaxAffordable(15, 1.15, 53))
	require.Equal(t, 0, MaxAffordable(15, 1.15, 14))
	require.Equal(t, 1, MaxAffordable(15, 1.15, 15))
}
