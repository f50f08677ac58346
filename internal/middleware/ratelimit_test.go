package middleware

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiterKeyStableWithinWindow(t *testing.T) {
	base := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	k1 := limiterKey("rl", "203.0.113.7", time.Minute, base)
	k2 := limiterKey("rl", "203.0.113.7", time.Minute, base.Add(30*time.Second))
	assert.Equal(t, k1, k2)

	// The next window produces a fresh counter key.
	k3 := limiterKey("rl", "203.0.113.7", time.Minute, base.Add(time.Minute))
	assert.NotEqual(t, k1, k3)
}

func TestLimiterKeyIsPerIP(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	a := limiterKey("rl", "203.0.113.7", time.Minute, now)
	b := limiterKey("rl", "203.0.113.8", time.Minute, now)
	assert.NotEqual(t, a, b)

	// The key carries prefix, IP and window number only; the limiter
	// runs before authentication, so nothing user-derived belongs in
	// it.
	assert.True(t, strings.HasPrefix(a, "rl:203.0.113.7:"))
	assert.Len(t, strings.Split(a, ":"), 3)
}
