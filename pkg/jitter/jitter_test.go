package jitter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExponentialBackoff_GrowsAndCaps(t *testing.T) {
	base := 10 * time.Millisecond
	max := 50 * time.Millisecond

	d0 := ExponentialBackoff(base, max, 0, 0)
	d2 := ExponentialBackoff(base, max, 2, 0)
	d9 := ExponentialBackoff(base, max, 9, 0)

	assert.Equal(t, base, d0)
	assert.Equal(t, 40*time.Millisecond, d2)
	assert.Equal(t, max, d9)
}

func TestDuration_StaysInRange(t *testing.T) {
	d := 100 * time.Millisecond
	for i := 0; i < 50; i++ {
		got := Duration(d, DefaultJitter)
		assert.GreaterOrEqual(t, got, d)
		assert.LessOrEqual(t, got, d+d/2)
	}
}
