package backoff

// Reconnect delay schedule for the event-stream connection.
// Delays double on each consecutive closure up to a fixed ceiling and reset
// to the base once a connection reaches the streaming state. Carried as
// plain data so the owner decides when to sleep.

import "time"

type Backoff struct {
	Base time.Duration
	Max  time.Duration

	next time.Duration
}

func New(base, max time.Duration) *Backoff {
	if base <= 0 {
		base = time.Second
	}
	if max < base {
		max = base
	}
	return &Backoff{Base: base, Max: max}
}

// Next returns the delay to wait before the upcoming attempt and advances
// the schedule: base, 2*base, 4*base, ..., max, max, ...
func (b *Backoff) Next() time.Duration {
	if b.next <= 0 {
		b.next = b.Base
	}
	d := b.next
	b.next *= 2
	if b.next > b.Max {
		b.next = b.Max
	}
	return d
}

// Reset restores the schedule to the base delay.
func (b *Backoff) Reset() {
	b.next = 0
}
