// Package sched runs deferred actions from the simulation's own tick loop.
//
// Tasks live in a min-heap ordered by fire time, ties broken by insertion order.
// A Scheduler is not safe for concurrent use; it is only touched from the
// goroutine that calls RunDue.
package sched

import (
	"container/heap"
	"time"
)

// Action is invoked with the tick time that made the task due.
type Action func(now time.Duration)

// Task is a handle to a scheduled action.
type Task struct {
	at     time.Duration
	every  time.Duration
	seq    uint64
	action Action
	index  int
}

// Pending reports whether the task is still queued.
func (t *Task) Pending() bool { return t != nil && t.index >= 0 }

// FireAt returns the next fire time.
func (t *Task) FireAt() time.Duration { return t.at }

type Scheduler struct {
	queue taskQueue
	seq   uint64
}

func New() *Scheduler {
	return &Scheduler{queue: make(taskQueue, 0, 32)}
}

// At schedules fn to run on the first RunDue whose time is >= at.
func (s *Scheduler) At(at time.Duration, fn Action) *Task {
	return s.push(at, 0, fn)
}

// Every schedules fn at first and then every interval after it.
func (s *Scheduler) Every(first, interval time.Duration, fn Action) *Task {
	if interval <= 0 {
		return s.push(first, 0, fn)
	}
	return s.push(first, interval, fn)
}

// Reschedule cancels t (if pending) and schedules fn at the new time.
// At most one task per handle is ever pending.
func (s *Scheduler) Reschedule(t *Task, at time.Duration, fn Action) *Task {
	s.Cancel(t)
	return s.At(at, fn)
}

// Cancel removes t from the queue. It returns false if t already fired or was
// never queued.
func (s *Scheduler) Cancel(t *Task) bool {
	if !t.Pending() {
		return false
	}
	heap.Remove(&s.queue, t.index)
	return true
}

// RunDue fires every task due at now, in fire-time order, and returns how many ran.
// Periodic tasks are re-queued one interval later; a task that fell behind
// skips missed periods instead of firing in a burst.
func (s *Scheduler) RunDue(now time.Duration) int {
	n := 0
	for len(s.queue) > 0 && s.queue[0].at <= now {
		t := heap.Pop(&s.queue).(*Task)
		if t.every > 0 {
			next := t.at + t.every
			if next <= now {
				next = now + t.every
			}
			t.at = next
			s.seq++
			t.seq = s.seq
			heap.Push(&s.queue, t)
		}
		t.action(now)
		n++
	}
	return n
}

// Len returns the number of pending tasks.
func (s *Scheduler) Len() int { return len(s.queue) }

func (s *Scheduler) push(at, every time.Duration, fn Action) *Task {
	s.seq++
	t := &Task{at: at, every: every, seq: s.seq, action: fn, index: -1}
	heap.Push(&s.queue, t)
	return t
}

type taskQueue []*Task

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	if q[i].at == q[j].at {
		return q[i].seq < q[j].seq
	}
	return q[i].at < q[j].at
}

func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *taskQueue) Push(x any) {
	t := x.(*Task)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *taskQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}
