package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowRefills(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := New().WithClock(func() time.Time { return now })

	assert.True(t, l.Allow("ip", 2, 1))
	assert.True(t, l.Allow("ip", 2, 1))
	assert.False(t, l.Allow("ip", 2, 1))

	now = now.Add(500 * time.Millisecond)
	assert.False(t, l.Allow("ip", 2, 1))

	now = now.Add(500 * time.Millisecond)
	assert.True(t, l.Allow("ip", 2, 1))
}

func TestKeysAreIndependent(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := New().WithClock(func() time.Time { return now })

	assert.True(t, l.Allow("a", 1, 1))
	assert.False(t, l.Allow("a", 1, 1))
	assert.True(t, l.Allow("b", 1, 1))
	assert.Equal(t, 2, l.Len())

	l.Forget("a")
	assert.True(t, l.Allow("a", 1, 1))
}

func TestRefillCappedAtCapacity(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := New().WithClock(func() time.Time { return now })
	assert.True(t, l.Allow("k", 2, 10))
	now = now.Add(time.Hour)
	assert.True(t, l.Allow("k", 2, 10))
	assert.True(t, l.Allow("k", 2, 10))
	assert.False(t, l.Allow("k", 2, 10))
}
