package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProtectionPrice(t *testing.T) {
	tests := []struct {
		price float64
		want  float64
	}{
		{price: 199, want: 20},
		{price: 200, want: 20},
		{price: 201, want: 21},
		{price: 99.5, want: 10},
		{price: 0, want: 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ProtectionPrice(tt.price), "price %v", tt.price)
	}
}

func TestProtectionSelectionTotalPrice(t *testing.T) {
	with := NewProtectionSelection(199, true)
	without := NewProtectionSelection(199, false)

	assert.Equal(t, 219.0, with.TotalPrice(199))
	assert.Equal(t, 199.0, without.TotalPrice(199))
	assert.Equal(t, 20.0, without.ProtectionPrice, "the offered price is kept even when declined")
}
