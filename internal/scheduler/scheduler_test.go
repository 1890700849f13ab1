package scheduler

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScheduler_FiresInOrder(t *testing.T) {
	s := NewScheduler()

	var order []int
	s.Schedule(TimerOverflow, 30, func() { order = append(order, 3) })
	s.Schedule(VBlank, 10, func() { order = append(order, 1) })
	s.Schedule(HBlank, 20, func() { order = append(order, 2) })

	s.Advance(30)
	s.Process()

	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestScheduler_TiesFireInInsertionOrder(t *testing.T) {
	s := NewScheduler()

	var order []int
	for i := 0; i < 8; i++ {
		i := i
		s.Schedule(DMATransfer, 16, func() { order = append(order, i) })
	}

	s.Advance(16)
	s.Process()

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, order)
}

func TestScheduler_ProcessDoesNotFireEarly(t *testing.T) {
	s := NewScheduler()

	fired := false
	s.Schedule(VBlank, 100, func() { fired = true })

	s.Advance(99)
	s.Process()
	assert.False(t, fired)

	s.Advance(1)
	s.Process()
	assert.True(t, fired)
}

func TestScheduler_Deschedule(t *testing.T) {
	s := NewScheduler()

	var order []int
	s.Schedule(TimerOverflow, 10, func() { order = append(order, 1) })
	s.Schedule(VBlank, 20, func() { order = append(order, 2) })
	s.Schedule(TimerOverflow, 30, func() { order = append(order, 3) })

	s.Deschedule(TimerOverflow)

	s.Advance(40)
	s.Process()

	assert.Equal(t, []int{2}, order)
}

func TestScheduler_CyclesToNext(t *testing.T) {
	s := NewScheduler()

	assert.Equal(t, uint64(math.MaxUint64), s.CyclesToNext())

	s.Schedule(HBlank, 456, func() {})
	assert.Equal(t, uint64(456), s.CyclesToNext())

	s.Advance(400)
	assert.Equal(t, uint64(56), s.CyclesToNext())

	// overdue events saturate to 0
	s.Advance(100)
	assert.Equal(t, uint64(0), s.CyclesToNext())
}

func TestScheduler_AdvanceDoesNotFire(t *testing.T) {
	s := NewScheduler()

	fired := false
	s.Schedule(VBlank, 1, func() { fired = true })
	s.Advance(500)
	assert.False(t, fired)
}

func TestScheduler_Reset(t *testing.T) {
	s := NewScheduler()

	s.Schedule(VBlank, 10, func() { t.Fatal("event survived reset") })
	s.Advance(50)
	s.Reset()

	assert.Equal(t, uint64(0), s.Cycle())
	assert.Equal(t, uint64(math.MaxUint64), s.CyclesToNext())
	s.Process()
}

func TestScheduler_CallbackMayReschedule(t *testing.T) {
	s := NewScheduler()

	count := 0
	var tick func()
	tick = func() {
		count++
		if count < 3 {
			s.Schedule(TimerOverflow, 10, tick)
		}
	}
	s.Schedule(TimerOverflow, 10, tick)

	for i := 0; i < 3; i++ {
		s.Advance(10)
		s.Process()
	}

	assert.Equal(t, 3, count)
}
