/*
 * midimonster-go - MIDI instance lifecycle and backend context.
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

// Package instance ties the midi, bus and router packages together: a
// MidiInstance owns one input/output device pair and the per-channel EPN
// reassembly state for it, and a Backend is the explicit, non-global
// context a process constructs once to hold the shared EventQueue,
// WakeupPipe, Router and instance table.
package instance

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-midimonster/midimonster/bus"
	"github.com/go-midimonster/midimonster/midi"
	"github.com/go-midimonster/midimonster/router"
	"github.com/go-midimonster/midimonster/util/hex"
)

// MidiInstance holds the desired device names, opened device handles, and
// per-channel EPN reassembly state for one configured instance.
type MidiInstance struct {
	Name       string
	ReadName   string
	WriteName  string
	EpnTXShort bool

	backend *Backend
	input   InputDevice
	output  OutputDevice
	epn     midi.EpnEngine
}

// NewMidiInstance returns an instance bound to backend but with no device
// opened yet. Start must be called before it can receive or send.
func NewMidiInstance(name string, backend *Backend) *MidiInstance {
	return &MidiInstance{Name: name, backend: backend}
}

// Start opens input and output, then begins delivering input callbacks.
// Any failure unwinds whatever was already opened and returns an error
// wrapping ErrDeviceOpenFailed.
func (m *MidiInstance) Start(input InputDevice, output OutputDevice) error {
	if err := input.Open(m.ReadName); err != nil {
		return fmt.Errorf("%w: instance %q read device %q: %v", ErrDeviceOpenFailed, m.Name, m.ReadName, err)
	}
	if err := output.Open(m.WriteName); err != nil {
		input.Close()
		return fmt.Errorf("%w: instance %q write device %q: %v", ErrDeviceOpenFailed, m.Name, m.WriteName, err)
	}
	if err := input.Start(m.handleInput); err != nil {
		input.Close()
		output.Close()
		return fmt.Errorf("%w: instance %q: starting input: %v", ErrDeviceOpenFailed, m.Name, err)
	}

	m.input = input
	m.output = output
	return nil
}

// Shutdown stops input, closes input, resets and closes output. It does
// not touch the shared queue or pipe; Backend.Shutdown does that once,
// after every instance has unwound.
func (m *MidiInstance) Shutdown() error {
	var first error
	record := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}

	if m.input != nil {
		record(m.input.Stop())
		record(m.input.Close())
		m.input = nil
	}
	if m.output != nil {
		record(m.output.Reset())
		record(m.output.Close())
		m.output = nil
	}
	return first
}

// handleInput is the InputCallback bound to this instance's input device.
// It reassembles RPN/NRPN CC sequences, normalizes every other message
// type to 0.0..1.0, pushes the result onto the shared event queue and
// (unless backlogged) notifies the wakeup pipe.
func (m *MidiInstance) handleInput(msg midi.ShortMessage, backlogged bool) {
	if m.backend.Detect {
		if raw, err := midi.Encode(msg); err == nil {
			slog.Debug("instance: raw input", "instance", m.Name, "bytes", hex.Dump(raw))
		}
	}

	id, value, ok := m.reassemble(msg)
	if !ok {
		return
	}

	if err := m.backend.Queue.Push(bus.Entry{Instance: m.Name, Channel: id, Value: value}); err != nil {
		slog.Warn("instance: dropping event, queue exhausted", "instance", m.Name, "error", err)
		return
	}
	if !backlogged {
		m.backend.Pipe.Notify()
	}
}

func (m *MidiInstance) reassemble(msg midi.ShortMessage) (midi.ChannelID, float64, bool) {
	if msg.Type == midi.CC && midi.IsEpnControl(msg.Control) {
		ev, ok := m.epn.Update(msg.Channel, uint8(msg.Control), uint8(msg.Value))
		if !ok {
			return 0, 0, false
		}
		id, err := midi.Pack(ev.Type, ev.Channel, ev.Control)
		if err != nil {
			return 0, 0, false
		}
		return id, ev.Value, true
	}

	switch msg.Type {
	case midi.PitchBend:
		id, err := midi.Pack(midi.PitchBend, msg.Channel, 0)
		if err != nil {
			return 0, 0, false
		}
		return id, float64(msg.Value) / 16383.0, true
	case midi.Aftertouch:
		id, err := midi.Pack(midi.Aftertouch, msg.Channel, 0)
		if err != nil {
			return 0, 0, false
		}
		return id, float64(msg.Value) / 127.0, true
	case midi.Note, midi.CC, midi.Pressure:
		id, err := midi.Pack(msg.Type, msg.Channel, msg.Control)
		if err != nil {
			return 0, 0, false
		}
		return id, float64(msg.Value) / 127.0, true
	default:
		return 0, 0, false
	}
}

// Set transmits a normalized value for channel on this instance's output
// device, fragmenting RPN/NRPN into the CC sequence EncodeEpn produces.
func (m *MidiInstance) Set(channel midi.ChannelID, value float64) error {
	if m.output == nil {
		return errNotOpen
	}

	ty, ch, control := midi.Unpack(channel)

	if ty == midi.RPN || ty == midi.NRPN {
		msgs, err := midi.EncodeEpn(ty, ch, control, value, m.EpnTXShort)
		if err != nil {
			return err
		}
		for _, msg := range msgs {
			if err := m.send(msg); err != nil {
				return err
			}
		}
		return nil
	}

	msg := midi.ShortMessage{Type: ty, Channel: ch, Control: control}
	switch ty {
	case midi.PitchBend:
		msg.Value = uint16(value * 16383)
	default:
		msg.Value = uint16(value * 127)
	}
	return m.send(msg)
}

func (m *MidiInstance) send(msg midi.ShortMessage) error {
	buf, err := midi.Encode(msg)
	if err != nil {
		return err
	}
	return m.output.Send(buf)
}

// Backend is the explicit, non-global context a process constructs once:
// the shared EventQueue, WakeupPipe, Router and instance table. Unlike
// the teacher's package-level chanUnit/terminals globals (acceptable
// there because S370 only ever emulates one machine per process), this
// module is passed by pointer everywhere it is needed.
type Backend struct {
	Queue  *bus.EventQueue
	Pipe   *bus.WakeupPipe
	Router *router.Table

	Detect bool
	List   bool

	mu        sync.Mutex
	instances map[string]*MidiInstance
}

// NewBackend constructs a Backend with a fresh queue, wakeup pipe and
// routing table.
func NewBackend(queueCapacityHint int) (*Backend, error) {
	pipe, err := bus.NewWakeupPipe()
	if err != nil {
		return nil, fmt.Errorf("instance: backend: %w", err)
	}
	return &Backend{
		Queue:     bus.NewEventQueue(queueCapacityHint),
		Pipe:      pipe,
		Router:    router.NewTable(),
		instances: make(map[string]*MidiInstance),
	}, nil
}

// AddInstance registers inst under its name for the `list` console
// command and for Shutdown to unwind.
func (b *Backend) AddInstance(inst *MidiInstance) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.instances[inst.Name] = inst
}

// Instances returns every registered instance, for diagnostics.
func (b *Backend) Instances() []*MidiInstance {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*MidiInstance, 0, len(b.instances))
	for _, inst := range b.instances {
		out = append(out, inst)
	}
	return out
}

// Run is the single-threaded drain loop: it blocks until either the
// wakeup pipe signals readiness (drain the queue into the router) or
// stop is closed (return).
func (b *Backend) Run(stop <-chan struct{}) {
	for {
		select {
		case <-b.Pipe.Ready():
			b.Pipe.BeginDrain()
			n := b.Queue.Drain(b.Router)
			if b.Detect && n > 0 {
				slog.Debug("instance: drained queue", "count", n)
			}
			b.Pipe.EndDrain()
		case <-stop:
			return
		}
	}
}

// Shutdown stops and closes every registered instance, then closes the
// wakeup pipe. The event queue itself needs no explicit release: it is
// just a slice, reclaimed by the garbage collector once the Backend is.
func (b *Backend) Shutdown() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var first error
	for _, inst := range b.instances {
		if err := inst.Shutdown(); err != nil && first == nil {
			first = err
		}
	}
	if err := b.Pipe.Close(); err != nil && first == nil {
		first = err
	}
	return first
}
