package labels

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombineTable(t *testing.T) {
	tests := []struct {
		in   int32
		want int32
	}{
		{2, 2}, {10, 2}, {23, 2}, {26, 2},
		{3, 3}, {27, 3},
		{18, 18}, {19, 18}, {20, 18},
		{0, 0}, {1, 1}, {35, 35}, {-1, -1},
	}
	for _, tt := range tests {
		assert.Equalf(t, tt.want, Combine(tt.in), "Combine(%d)", tt.in)
	}
}

func TestCombineIsIdempotentWithRestrictedCodomain(t *testing.T) {
	for id := int32(-2); id <= 64; id++ {
		once := Combine(id)
		assert.Equalf(t, once, Combine(once), "Combine not idempotent for %d", id)
		if once != id {
			assert.Containsf(t, []int32{2, 3, 18}, once, "Combine(%d) left the canonical set", id)
		}
	}
}

func TestCombineAllCopies(t *testing.T) {
	src := []int32{10, 19, 27, 5}
	got := CombineAll(src)

	assert.Equal(t, Vector{2, 18, 3, 5}, got)
	assert.Equal(t, []int32{10, 19, 27, 5}, src, "source must not be modified")
	assert.Equal(t, 4, got.Len())
	assert.Empty(t, CombineAll(nil))
}
