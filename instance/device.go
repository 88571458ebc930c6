/*
 * midimonster-go - MIDI device interfaces and loopback fake.
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

package instance

import "github.com/go-midimonster/midimonster/midi"

// InputCallback is invoked by an InputDevice for every short MIDI message
// it receives. backlogged is the OS driver's "more data queued" hint; a
// true value tells the caller to skip the wakeup write and coalesce.
type InputCallback func(msg midi.ShortMessage, backlogged bool)

// InputDevice is the interface an OS MIDI backend implements for reading.
// A real implementation wraps a platform MIDI API; LoopbackDevice below is
// the fake used for tests and the bundled demo backend.
type InputDevice interface {
	// Open resolves name (numeric index or name prefix, first match wins)
	// to a concrete device handle.
	Open(name string) error
	// Start begins delivering messages to cb on a driver-owned goroutine.
	Start(cb InputCallback) error
	// Stop halts delivery; Start may be called again after Stop.
	Stop() error
	// Close releases the device handle.
	Close() error
}

// OutputDevice is the interface an OS MIDI backend implements for
// writing.
type OutputDevice interface {
	Open(name string) error
	// Send transmits one short MIDI message on the main thread.
	Send(buf []byte) error
	// Reset silences the device (all notes off) before Close.
	Reset() error
	Close() error
}

// LoopbackDevice implements both InputDevice and OutputDevice in memory:
// Send delivers to the callback attached by Start on the same
// LoopbackDevice, so one device used as both an instance's input and its
// output loops sent messages back to that input. Two separate
// LoopbackDevices do not forward to each other. It serves both as the
// bundled no-hardware demo backend and as a deterministic fixture for
// tests.
type LoopbackDevice struct {
	name    string
	open    bool
	started bool
	cb      InputCallback
}

// NewLoopbackDevice returns a device with neither end opened yet.
func NewLoopbackDevice() *LoopbackDevice {
	return &LoopbackDevice{}
}

func (d *LoopbackDevice) Open(name string) error {
	d.name = name
	d.open = true
	return nil
}

func (d *LoopbackDevice) Start(cb InputCallback) error {
	if !d.open {
		return errNotOpen
	}
	d.cb = cb
	d.started = true
	return nil
}

func (d *LoopbackDevice) Stop() error {
	d.started = false
	d.cb = nil
	return nil
}

func (d *LoopbackDevice) Reset() error {
	return nil
}

func (d *LoopbackDevice) Close() error {
	d.open = false
	d.started = false
	d.cb = nil
	return nil
}

// Send feeds buf through MidiWire decode and, if the device is started,
// delivers the result to the attached callback as if it had arrived over
// the wire. backlogged is always false: the fake has no driver-side
// backlog concept.
func (d *LoopbackDevice) Send(buf []byte) error {
	msg, ok, err := midi.Decode(buf)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if d.started && d.cb != nil {
		d.cb(msg, false)
	}
	return nil
}

// Inject delivers msg directly to the attached callback, bypassing wire
// encoding, for tests that want to construct a ShortMessage by hand.
func (d *LoopbackDevice) Inject(msg midi.ShortMessage, backlogged bool) {
	if d.started && d.cb != nil {
		d.cb(msg, backlogged)
	}
}
