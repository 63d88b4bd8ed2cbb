package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCartSubtotal(t *testing.T) {
	cart := Cart{Items: []CartItem{
		{ProductID: "p1", UnitPrice: 180, Quantity: 2},
		{ProductID: "p2", UnitPrice: 499, Quantity: 1},
		{ProductID: "p3", UnitPrice: 120, Quantity: 3},
	}}

	// 2×180 + 1×499 + 3×120
	assert.Equal(t, int64(1219), cart.Subtotal())
}

func TestCartSubtotal_Empty(t *testing.T) {
	assert.Equal(t, int64(0), Cart{}.Subtotal())
	assert.True(t, Cart{}.IsEmpty())
}
