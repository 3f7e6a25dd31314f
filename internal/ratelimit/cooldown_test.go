package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_Cooldown_TryAdd(t *testing.T) {
	const window = 5 * time.Second
	t0 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name              string
		second            time.Time
		expectedAllowed   bool
		expectedRemaining time.Duration
	}{
		{name: "same instant", second: t0, expectedAllowed: false, expectedRemaining: window},
		{name: "one unit before window end", second: t0.Add(window - time.Nanosecond), expectedAllowed: false, expectedRemaining: time.Nanosecond},
		{name: "half window", second: t0.Add(window / 2), expectedAllowed: false, expectedRemaining: window / 2},
		{name: "exactly at window end", second: t0.Add(window), expectedAllowed: true},
		{name: "well after", second: t0.Add(time.Hour), expectedAllowed: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			c := NewCooldown(window)
			first := c.TryAdd("p1", t0)

			// when
			second := c.TryAdd("p1", tc.second)

			// then
			assert.True(t, first.Allowed)
			assert.Equal(t, tc.expectedAllowed, second.Allowed)
			assert.Equal(t, tc.expectedRemaining, second.Remaining)
		})
	}
}

func Test_Cooldown_RejectedAttemptDoesNotExtendWindow(t *testing.T) {
	// given
	t0 := time.Unix(1000, 0)
	c := NewCooldown(5 * time.Second)
	c.TryAdd("p1", t0)

	// when
	rejected := c.TryAdd("p1", t0.Add(4*time.Second))
	accepted := c.TryAdd("p1", t0.Add(5*time.Second))

	// then
	assert.False(t, rejected.Allowed)
	assert.True(t, accepted.Allowed)
}

func Test_Cooldown_PerProduct(t *testing.T) {
	t0 := time.Unix(1000, 0)
	c := NewCooldown(5 * time.Second)

	assert.True(t, c.TryAdd("p1", t0).Allowed)
	assert.True(t, c.TryAdd("p2", t0).Allowed, "other products are independent")
	assert.False(t, c.TryAdd("p1", t0.Add(time.Second)).Allowed)
	assert.Equal(t, 4*time.Second, c.Remaining("p1", t0.Add(time.Second)))
	assert.Zero(t, c.Remaining("p3", t0))
}

func Test_Cooldown_Reset(t *testing.T) {
	t0 := time.Unix(1000, 0)
	c := NewCooldown(5 * time.Second)
	c.TryAdd("p1", t0)

	c.Reset()

	assert.True(t, c.TryAdd("p1", t0.Add(time.Second)).Allowed)
}
