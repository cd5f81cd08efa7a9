package stats

import (
	"math"
	"testing"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestCompute(t *testing.T) {
	items := []model.InventoryItem{
		{ID: "a", CurrentStock: 100, MinStock: 20, SafeStock: 30, AverageCost: 1550},
		{ID: "b", CurrentStock: 15, MinStock: 20, SafeStock: 30, AverageCost: 200},
		{ID: "c", CurrentStock: 0, MinStock: 5, SafeStock: 0, AverageCost: 999},
	}
	txns := []model.Transaction{
		{QuantityChange: 50},
		{QuantityChange: -85},
		{QuantityChange: -3},
	}

	s := Compute(items, txns)

	assert.Equal(t, 3, s.TotalItems)
	assert.Equal(t, int64(115), s.TotalQuantity)
	assert.Equal(t, "158000", s.TotalValue.String())
	assert.Equal(t, 1, s.InStock)
	assert.Equal(t, 1, s.LowStock)
	assert.Equal(t, 1, s.OutOfStock)
	assert.Equal(t, 2, s.BelowSafeStock)
	assert.Equal(t, int64(50), s.Inbound)
	assert.Equal(t, int64(88), s.Outbound)
	assert.Equal(t, 3, s.TransactionCount)
}

func TestCompute_ValueBeyondInt64(t *testing.T) {
	items := []model.InventoryItem{
		{ID: "a", CurrentStock: math.MaxInt64 / 2, AverageCost: 1000},
		{ID: "b", CurrentStock: math.MaxInt64 / 2, AverageCost: 1000},
	}

	s := Compute(items, nil)

	assert.Equal(t, "9223372036854775806000", s.TotalValue.String())
	assert.True(t, s.TotalValue.IsPositive())
}

func TestCompute_Empty(t *testing.T) {
	assert.Equal(t, model.Statistics{}, Compute(nil, nil))
}

func TestCompute_Idempotent(t *testing.T) {
	items := []model.InventoryItem{{ID: "a", CurrentStock: 7, MinStock: 1, AverageCost: 10}}
	assert.Equal(t, Compute(items, nil), Compute(items, nil))
}
