// Package scheduler provides the central cycle clock and a queue of timed
// events. Components schedule callbacks a number of T-cycles into the
// future; the machine advances the clock after every instruction and fires
// whatever has come due.
package scheduler

import (
	"container/heap"
	"math"
)

// EventType identifies the component that scheduled an event, so that all
// pending events of one kind can be descheduled together.
type EventType uint8

const (
	VBlank EventType = iota
	HBlank
	OAMScan
	LCDTransfer
	TimerOverflow
	SerialTransfer
	DMATransfer
	JoypadInterrupt

	eventTypes
)

// noEvent is returned by CyclesToNext when the queue is empty.
const noEvent = uint64(math.MaxUint64)

type event struct {
	eventType EventType
	fireAt    uint64
	seq       uint64 // insertion order, breaks fireAt ties
	fn        func()
}

// eventQueue orders events by fireAt, then by insertion order.
type eventQueue []*event

func (q eventQueue) Len() int { return len(q) }
func (q eventQueue) Less(i, j int) bool {
	if q[i].fireAt != q[j].fireAt {
		return q[i].fireAt < q[j].fireAt
	}
	return q[i].seq < q[j].seq
}
func (q eventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *eventQueue) Push(x interface{}) { *q = append(*q, x.(*event)) }
func (q *eventQueue) Pop() interface{} {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return e
}

// Scheduler is a monotonic cycle counter paired with a min-heap of pending
// events.
type Scheduler struct {
	cycles uint64
	queue  eventQueue
	seq    uint64
}

// NewScheduler returns an empty scheduler at cycle 0.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Cycle returns the current cycle count.
func (s *Scheduler) Cycle() uint64 {
	return s.cycles
}

// Schedule enqueues fn to fire once the clock has advanced by cycles.
func (s *Scheduler) Schedule(eventType EventType, cycles uint64, fn func()) {
	heap.Push(&s.queue, &event{
		eventType: eventType,
		fireAt:    s.cycles + cycles,
		seq:       s.seq,
		fn:        fn,
	})
	s.seq++
}

// Deschedule removes every pending event of the given type by rebuilding
// the heap without them.
func (s *Scheduler) Deschedule(eventType EventType) {
	filtered := s.queue[:0]
	for _, e := range s.queue {
		if e.eventType != eventType {
			filtered = append(filtered, e)
		}
	}
	s.queue = filtered
	heap.Init(&s.queue)
}

// Advance adds n cycles to the clock. It does not fire events; call
// Process to do that.
func (s *Scheduler) Advance(n uint64) {
	s.cycles += n
}

// Process fires every event whose fire-at cycle has been reached, in
// fire-at order with ties broken by insertion order.
func (s *Scheduler) Process() {
	var lastFired uint64
	for len(s.queue) > 0 && s.queue[0].fireAt <= s.cycles {
		e := heap.Pop(&s.queue).(*event)
		if e.fireAt < lastFired {
			panic("scheduler: heap ordering violated")
		}
		lastFired = e.fireAt
		e.fn()
	}
}

// CyclesToNext returns the number of cycles until the next event fires,
// saturating to 0 for overdue events. When the queue is empty it returns
// the max uint64 sentinel.
func (s *Scheduler) CyclesToNext() uint64 {
	if len(s.queue) == 0 {
		return noEvent
	}
	next := s.queue[0].fireAt
	if next <= s.cycles {
		return 0
	}
	return next - s.cycles
}

// Reset drains the queue and rewinds the clock to 0.
func (s *Scheduler) Reset() {
	s.queue = s.queue[:0]
	s.cycles = 0
	s.seq = 0
}
