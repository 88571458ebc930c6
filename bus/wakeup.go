/*
 * midimonster-go - Self-connected datagram wakeup socket.
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

package bus

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"
)

// WakeupState is one of the three states the wakeup pipe's state machine
// can be in: Quiescent (nothing pending), Signaled (a producer has pushed
// but the main loop has not yet observed it), Draining (the main loop is
// actively draining the queue).
type WakeupState int32

const (
	Quiescent WakeupState = iota
	Signaled
	Draining
)

func (s WakeupState) String() string {
	switch s {
	case Quiescent:
		return "quiescent"
	case Signaled:
		return "signaled"
	case Draining:
		return "draining"
	default:
		return "unknown"
	}
}

// WakeupPipe is a loopback UDP socket pair: one end bound and read by a
// background goroutine that feeds a buffered ready channel, the other
// end connected and written to by producers. It lets producer goroutines
// mark the event queue non-empty without a condition variable, so the
// drain loop can fold the wakeup into an ordinary select alongside
// shutdown and other channels. Writes are always non-blocking and never
// partially succeed because the socket is datagram, not stream.
type WakeupPipe struct {
	bound *net.UDPConn // registered with the drain loop's select, via ready
	conn  *net.UDPConn // owned by producers

	ready   chan struct{}
	closing chan struct{}
	wg      sync.WaitGroup

	state        atomic.Int32
	bytesDrained atomic.Int64
}

// NewWakeupPipe opens the loopback socket pair and starts the background
// reader goroutine. Callers must call Close when done.
func NewWakeupPipe() (*WakeupPipe, error) {
	bound, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	if err != nil {
		return nil, fmt.Errorf("wakeup pipe: bind: %w", err)
	}

	conn, err := net.DialUDP("udp", nil, bound.LocalAddr().(*net.UDPAddr))
	if err != nil {
		bound.Close()
		return nil, fmt.Errorf("wakeup pipe: connect: %w", err)
	}

	w := &WakeupPipe{
		bound:   bound,
		conn:    conn,
		ready:   make(chan struct{}, 1),
		closing: make(chan struct{}),
	}

	w.wg.Add(1)
	go w.readLoop()

	return w, nil
}

// readLoop drains the bound socket and coalesces consecutive wakeups into
// a single pending signal on ready: if the main loop has not yet consumed
// the previous signal, additional bytes just get discarded here without
// queuing a second wakeup.
func (w *WakeupPipe) readLoop() {
	defer w.wg.Done()

	buf := make([]byte, 64)
	for {
		n, _, err := w.bound.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-w.closing:
				return
			default:
				continue
			}
		}
		w.bytesDrained.Add(int64(n))
		select {
		case w.ready <- struct{}{}:
		default:
		}
	}
}

// Notify marks the queue non-empty. Called by producer callbacks after a
// successful EventQueue.Push, except when the driver's "more data queued"
// hint is set, in which case the caller should skip calling Notify to
// coalesce wakeups under load.
func (w *WakeupPipe) Notify() {
	w.state.CompareAndSwap(int32(Quiescent), int32(Signaled))
	// Best-effort: a dropped wakeup byte is safe because the queue itself
	// is authoritative, never the byte count.
	_, _ = w.conn.Write([]byte{1})
}

// Ready returns the channel the drain loop selects on for wakeup
// readiness, alongside its shutdown channel and any other fds it
// multiplexes.
func (w *WakeupPipe) Ready() <-chan struct{} {
	return w.ready
}

// BeginDrain transitions the state machine to Draining. Call this after
// receiving on Ready(), before draining the event queue.
func (w *WakeupPipe) BeginDrain() {
	w.state.Store(int32(Draining))
}

// EndDrain transitions the state machine back to Quiescent. Call this
// after the event queue has been drained.
func (w *WakeupPipe) EndDrain() {
	w.state.Store(int32(Quiescent))
}

// State reports the current wakeup state machine state, for diagnostics.
func (w *WakeupPipe) State() WakeupState {
	return WakeupState(w.state.Load())
}

// BytesDrained reports the cumulative number of wakeup bytes read off the
// bound socket. Diagnostic only: the event queue's own count is
// authoritative, this is never used to decide how much to drain.
func (w *WakeupPipe) BytesDrained() int64 {
	return w.bytesDrained.Load()
}

// Close shuts down the background reader and releases both socket ends.
func (w *WakeupPipe) Close() error {
	close(w.closing)
	w.bound.Close()
	err := w.conn.Close()
	w.wg.Wait()
	return err
}
