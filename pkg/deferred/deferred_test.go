package deferred

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Group_RunsAfterDelay(t *testing.T) {
	// given
	clock := NewManualClock(time.Unix(0, 0))
	g := NewGroupWith(clock.AfterFunc)
	var ran int

	// when
	g.After(5*time.Second, func() { ran++ })
	clock.Advance(5*time.Second - time.Nanosecond)

	// then
	assert.Zero(t, ran)
	assert.Equal(t, 1, g.Pending())

	clock.Advance(time.Nanosecond)
	assert.Equal(t, 1, ran)
	assert.Zero(t, g.Pending())

	clock.Advance(time.Hour)
	assert.Equal(t, 1, ran, "a task runs once")
}

func Test_Task_Cancel(t *testing.T) {
	// given
	clock := NewManualClock(time.Unix(0, 0))
	g := NewGroupWith(clock.AfterFunc)
	var ran bool
	task := g.After(time.Second, func() { ran = true })

	// when
	canceled := task.Cancel()
	clock.Advance(time.Minute)

	// then
	assert.True(t, canceled)
	assert.False(t, task.Cancel(), "second cancel is a no-op")
	assert.False(t, ran)
	assert.Zero(t, g.Pending())
}

func Test_Task_CancelAfterRun(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	g := NewGroupWith(clock.AfterFunc)
	task := g.After(time.Second, func() {})

	clock.Advance(time.Second)

	assert.False(t, task.Cancel())
}

func Test_Group_Close(t *testing.T) {
	// given
	clock := NewManualClock(time.Unix(0, 0))
	g := NewGroupWith(clock.AfterFunc)
	var ran int
	for range 3 {
		g.After(time.Second, func() { ran++ })
	}

	// when
	g.Close()
	late := g.After(time.Millisecond, func() { ran++ })
	clock.Advance(time.Minute)

	// then
	assert.Zero(t, ran)
	assert.Zero(t, g.Pending())
	assert.False(t, late.Cancel(), "tasks on a closed group start canceled")
}

func Test_ManualClock_DueOrder(t *testing.T) {
	// given
	clock := NewManualClock(time.Unix(0, 0))
	g := NewGroupWith(clock.AfterFunc)
	var order []string

	// when
	g.After(3*time.Second, func() { order = append(order, "c") })
	g.After(time.Second, func() {
		order = append(order, "a")
		// scheduled from inside a callback and still due within this advance
		g.After(time.Second, func() { order = append(order, "b") })
	})
	clock.Advance(10 * time.Second)

	// then
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, time.Unix(10, 0), clock.Now())
}

func Test_Group_RealTime(t *testing.T) {
	// given
	g := NewGroup()
	var ran atomic.Int32

	// when
	g.After(10*time.Millisecond, func() { ran.Add(1) })
	canceled := g.After(10*time.Millisecond, func() { ran.Add(100) })
	require.True(t, canceled.Cancel())

	// then
	require.Eventually(t, func() bool { return ran.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(1), ran.Load())
}
