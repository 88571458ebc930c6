/*
 * midimonster-go - In-memory channel routing table.
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

// Package router maps (instance, channel) pairs to the subscribers that
// should receive their values. It is the one piece of the daemon this
// module leaves external in the real system: here it is an in-memory
// table good enough to exercise the bus and instance packages end to end.
package router

import (
	"sync"

	"github.com/go-midimonster/midimonster/midi"
)

// Subscriber receives a delivered value for the channel it was registered
// against.
type Subscriber func(channel midi.ChannelID, value float64)

// Handle identifies one (instance, channel) route.
type Handle struct {
	Instance string
	Channel  midi.ChannelID
}

type route struct {
	mu   sync.Mutex
	subs []Subscriber
}

// Table is an in-memory Router keyed by (instance, channel), modeled on
// the connection registry's sync.Map-of-LoadOrStore pattern.
type Table struct {
	routes sync.Map // Handle -> *route
}

// NewTable returns an empty routing table.
func NewTable() *Table {
	return &Table{}
}

// LookupOrCreate resolves a route for (instance, channel). If create is
// true, a missing route is registered empty rather than reported as a
// miss; this lets a MidiInstance reserve a handle for a channel before
// any subscriber has attached to it.
func (t *Table) LookupOrCreate(instance string, channel midi.ChannelID, create bool) (Handle, bool) {
	h := Handle{Instance: instance, Channel: channel}
	if create {
		t.routes.LoadOrStore(h, &route{})
		return h, true
	}
	_, found := t.routes.Load(h)
	return h, found
}

// Subscribe registers sub to receive values delivered on handle.
func (t *Table) Subscribe(handle Handle, sub Subscriber) {
	v, _ := t.routes.LoadOrStore(handle, &route{})
	r := v.(*route)
	r.mu.Lock()
	r.subs = append(r.subs, sub)
	r.mu.Unlock()
}

// Deliver forwards value to every subscriber of (instance, channel). A
// miss (no route registered) is not an error; the entry is dropped,
// matching the event queue drain loop's semantics.
func (t *Table) Deliver(instance string, channel midi.ChannelID, value float64) {
	v, found := t.routes.Load(Handle{Instance: instance, Channel: channel})
	if !found {
		return
	}
	r := v.(*route)
	r.mu.Lock()
	subs := append([]Subscriber(nil), r.subs...)
	r.mu.Unlock()

	for _, sub := range subs {
		sub(channel, value)
	}
}

// Remove deletes a route and its subscribers entirely.
func (t *Table) Remove(handle Handle) {
	t.routes.Delete(handle)
}

// Len reports the number of currently registered routes, for diagnostics.
func (t *Table) Len() int {
	n := 0
	t.routes.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
