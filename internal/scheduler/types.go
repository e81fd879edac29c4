package scheduler

import "time"

// Handle identifies one pending scheduled callback. It is returned by
// Schedule and becomes invalid once the timer fires or is cancelled by a
// later Schedule call that passes it as the previous handle.
type Handle struct {
	id uint64
}

// timerEntry is a pending timer in the scheduler heap.
type timerEntry struct {
	// id is assigned from a monotonically increasing counter, so it
	// doubles as the arrival-order tie-break for equal fire times.
	id     uint64
	fireAt time.Time
	fn     func()
}
