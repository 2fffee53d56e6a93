package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"bert", "bert"},
		{"Sub-01", "sub-01"},
		{"sub 01/ses", "sub_01_ses"},
		{"  ", "unknown"},
		{"***", "unknown"},
		{"_x_", "x"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeToken(tt.in), tt.in)
	}
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Left", DisplayName("left"))
	assert.Equal(t, "Mean Consensus", DisplayName("mean_consensus"))
	assert.Equal(t, "Aparc A2009s", DisplayName("aparc-a2009s"))
	assert.Empty(t, DisplayName(" "))
}

func TestTernary(t *testing.T) {
	assert.Equal(t, "yes", Ternary(true, "yes", "no"))
	assert.Equal(t, 2, Ternary(false, 1, 2))
}
