package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPowerOfTwo(t *testing.T) {
	tests := []struct {
		name     string
		input    int
		expected bool
	}{
		{"zero", 0, false},
		{"negative", -1, false},
		{"one", 1, true},
		{"three", 3, false},
		{"sixteen", 16, true},
		{"large non-power", 1023, false},
		{"default shard size", DefaultShardSize, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsPowerOfTwo(tt.input))
		})
	}
}

func TestPaddedHeight(t *testing.T) {
	tests := []struct {
		rows   int
		height int
		log2   int
	}{
		{-4, 1, 0},
		{0, 1, 0},
		{1, 1, 0},
		{2, 2, 1},
		{3, 4, 2},
		{16, 16, 4},
		{17, 32, 5},
		{1000, 1024, 10},
		{1 << 16, 1 << 16, 16},
	}

	for _, tt := range tests {
		height, log2 := PaddedHeight(tt.rows)
		assert.Equal(t, tt.height, height, "PaddedHeight(%d)", tt.rows)
		assert.Equal(t, tt.log2, log2, "PaddedHeight(%d)", tt.rows)
		assert.Equal(t, height, 1<<log2)
	}
}
