// Package deferred runs callbacks after a delay and lets an owner cancel
// every callback it scheduled in one call.
package deferred

import (
	"sync"
	"time"
)

// Timer is the handle returned by an AfterFunc.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f to run after d. time.AfterFunc satisfies it once adapted by RealTime.
type AfterFunc func(d time.Duration, f func()) Timer

// RealTime schedules callbacks on the runtime timer.
func RealTime(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type taskState int

const (
	statePending taskState = iota
	stateRunning
	stateCanceled
	stateDone
)

// Task is a single scheduled callback.
type Task struct {
	group *Group
	fn    func()

	mu    sync.Mutex
	state taskState
	timer Timer
}

// Cancel prevents the callback from starting. It returns false if the
// callback already started, finished or was canceled before.
func (t *Task) Cancel() bool {
	t.mu.Lock()
	if t.state != statePending {
		t.mu.Unlock()
		return false
	}
	t.state = stateCanceled
	timer := t.timer
	t.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}
	t.group.forget(t)
	return true
}

func (t *Task) fire() {
	t.mu.Lock()
	if t.state != statePending {
		t.mu.Unlock()
		return
	}
	t.state = stateRunning
	t.mu.Unlock()

	t.group.forget(t)
	t.fn()

	t.mu.Lock()
	t.state = stateDone
	t.mu.Unlock()
}

// Group owns a set of tasks. The zero value is not usable, use NewGroup.
type Group struct {
	afterFunc AfterFunc

	mu     sync.Mutex
	tasks  map[*Task]struct{}
	closed bool
}

// NewGroup returns a group backed by the runtime timer.
func NewGroup() *Group {
	return NewGroupWith(RealTime)
}

// NewGroupWith returns a group that schedules through af.
func NewGroupWith(af AfterFunc) *Group {
	return &Group{
		afterFunc: af,
		tasks:     make(map[*Task]struct{}),
	}
}

// After schedules fn to run once after d. On a closed group the returned
// task is already canceled and fn never runs.
func (g *Group) After(d time.Duration, fn func()) *Task {
	t := &Task{group: g, fn: fn}

	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		t.state = stateCanceled
		return t
	}
	g.tasks[t] = struct{}{}
	g.mu.Unlock()

	// hold the task lock so a zero-delay timer cannot fire before t.timer is set
	t.mu.Lock()
	t.timer = g.afterFunc(d, t.fire)
	t.mu.Unlock()
	return t
}

// Pending reports how many tasks have neither run nor been canceled.
func (g *Group) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.tasks)
}

// Close cancels every pending task and rejects new ones.
func (g *Group) Close() {
	g.mu.Lock()
	g.closed = true
	tasks := make([]*Task, 0, len(g.tasks))
	for t := range g.tasks {
		tasks = append(tasks, t)
	}
	g.mu.Unlock()

	for _, t := range tasks {
		t.Cancel()
	}
}

func (g *Group) forget(t *Task) {
	g.mu.Lock()
	delete(g.tasks, t)
	g.mu.Unlock()
}
