// Package notify keeps the short-lived toast notifications raised by a view.
package notify

import (
	"slices"
	"time"

	"github.com/abgdnv/shopease/pkg/deferred"
	"github.com/google/uuid"
)

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// DefaultDuration is how long a toast stays visible unless configured otherwise.
const DefaultDuration = 5 * time.Second

type Toast struct {
	ID       string   `json:"id"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// Runner executes fn in the owner's serialised context, e.g. under a session lock.
type Runner func(fn func())

// Board holds a view's visible toasts. Each toast is dismissed automatically
// after the board's duration by a task in the owner's group.
// Board is not safe for concurrent use, dismiss callbacks go through run.
type Board struct {
	group    *deferred.Group
	duration time.Duration
	run      Runner
	toasts   []Toast
	tasks    map[string]*deferred.Task
}

// NewBoard creates a board. A nil run invokes callbacks directly.
func NewBoard(group *deferred.Group, duration time.Duration, run Runner) *Board {
	if duration <= 0 {
		duration = DefaultDuration
	}
	if run == nil {
		run = func(fn func()) { fn() }
	}
	return &Board{
		group:    group,
		duration: duration,
		run:      run,
		tasks:    make(map[string]*deferred.Task),
	}
}

// Push shows a toast and schedules its dismissal.
func (b *Board) Push(message string, severity Severity) Toast {
	t := Toast{ID: uuid.NewString(), Message: message, Severity: severity}
	b.toasts = append(b.toasts, t)
	b.tasks[t.ID] = b.group.After(b.duration, func() {
		b.run(func() { b.dismiss(t.ID) })
	})
	return t
}

func (b *Board) Success(message string) Toast { return b.Push(message, SeveritySuccess) }

func (b *Board) Error(message string) Toast { return b.Push(message, SeverityError) }

func (b *Board) Info(message string) Toast { return b.Push(message, SeverityInfo) }

// Dismiss removes the toast early and cancels its timer.
func (b *Board) Dismiss(id string) bool {
	if task, ok := b.tasks[id]; ok {
		task.Cancel()
	}
	return b.dismiss(id)
}

// Active returns the visible toasts, oldest first.
func (b *Board) Active() []Toast {
	return append([]Toast{}, b.toasts...)
}

// Clear drops every toast and cancels their timers.
func (b *Board) Clear() {
	for _, task := range b.tasks {
		task.Cancel()
	}
	clear(b.tasks)
	b.toasts = nil
}

func (b *Board) dismiss(id string) bool {
	delete(b.tasks, id)
	i := slices.IndexFunc(b.toasts, func(t Toast) bool { return t.ID == id })
	if i < 0 {
		return false
	}
	b.toasts = slices.Delete(b.toasts, i, i+1)
	return true
}
