/*
 * midimonster-go - Lock-guarded cross-thread event queue.
 *
 * Copyright 2026, midimonster-go contributors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package bus implements the cross-thread event-ingestion pipeline: an
// EventQueue that OS driver callback threads push into, and a WakeupPipe
// that lets those pushes nudge a single-threaded drain loop.
package bus

import (
	"errors"
	"sync"

	"github.com/go-midimonster/midimonster/midi"
)

// ErrResourceExhausted is returned by Push when growing the backing buffer
// fails. The queue is reset to empty; the triggering event is dropped.
var ErrResourceExhausted = errors.New("event queue: resource exhausted")

// Entry is one queued event: which instance produced it, the channel it
// addresses, and the normalized value.
type Entry struct {
	Instance string
	Channel  midi.ChannelID
	Value    float64
}

// EventQueue is a lock-guarded, growable buffer of Entry values. Producers
// (driver callback goroutines) call Push; the single drain-loop goroutine
// calls Drain. Capacity is retained across drains for reuse.
type EventQueue struct {
	mu      sync.Mutex
	entries []Entry
	active  int
}

// NewEventQueue returns an EventQueue with an initial capacity hint.
func NewEventQueue(capacityHint int) *EventQueue {
	if capacityHint < 0 {
		capacityHint = 0
	}
	return &EventQueue{entries: make([]Entry, 0, capacityHint)}
}

// Push appends one entry under the queue lock. Ordering under contention
// is the order in which callers acquire the lock.
func (q *EventQueue) Push(e Entry) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.active >= cap(q.entries) {
		grown := make([]Entry, q.active, cap(q.entries)+1)
		copy(grown, q.entries[:q.active])
		q.entries = grown
	}

	if q.active >= cap(q.entries) {
		q.entries = q.entries[:0]
		q.active = 0
		return ErrResourceExhausted
	}

	q.entries = q.entries[:q.active+1]
	q.entries[q.active] = e
	q.active++
	return nil
}

// Deliverer is the subset of the Router contract the drain loop needs:
// resolve a channel and hand it a value. A miss (channel no longer mapped)
// is not an error; the entry is simply skipped.
type Deliverer interface {
	Deliver(instance string, channel midi.ChannelID, value float64)
}

// Drain delivers every currently queued entry to router and resets the
// active count to zero, all under one critical section, then returns how
// many entries were delivered. Capacity is retained for reuse.
func (q *EventQueue) Drain(router Deliverer) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	count := q.active
	for i := 0; i < count; i++ {
		e := q.entries[i]
		router.Deliver(e.Instance, e.Channel, e.Value)
	}
	q.active = 0
	return count
}

// Len reports the number of currently queued, undrained entries. Intended
// for diagnostics (the `show queue` console command), not for control flow.
func (q *EventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.active
}
