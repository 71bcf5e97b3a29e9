package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatingBounds(t *testing.T) {
	tests := []struct {
		name     string
		min, max float64
		lo, hi   float64
		ok       bool
	}{
		{name: "unset", min: -1, max: -1},
		{name: "both set", min: 3.5, max: 4.5, lo: 3.5, hi: 4.5, ok: true},
		{name: "only min", min: 4, max: -1, lo: 4, hi: 5, ok: true},
		{name: "only max", min: -1, max: 4.2, lo: 0, hi: 4.2, ok: true},
		{name: "zero min", min: 0, max: -1, lo: 0, hi: 5, ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi, ok := ratingBounds(tt.min, tt.max)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.lo, lo)
			assert.Equal(t, tt.hi, hi)
		})
	}
}
