package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowRefills(t *testing.T) {
	l := New(2, time.Minute)
	defer l.Close()
	now := time.Unix(1000, 0)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"))

	now = now.Add(30 * time.Second)
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
	assert.Equal(t, 30*time.Second, l.RetryAfter())
}

func TestZeroLimitDisables(t *testing.T) {
	l := New(0, time.Minute)
	defer l.Close()
	for range 100 {
		assert.True(t, l.Allow("x"))
	}
	l.Close()
}
