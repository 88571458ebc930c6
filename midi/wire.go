/*
 * midimonster-go - Short MIDI message wire codec.
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

package midi

import (
	"fmt"
	"log/slog"
)

// Status nibbles of a short MIDI message, top nibble of the status byte.
const (
	statusNoteOff   byte = 0x8
	statusNoteOn    byte = 0x9
	statusPressure  byte = 0xA
	statusCC        byte = 0xB
	statusAftertch  byte = 0xD
	statusPitchBend byte = 0xE
)

// ShortMessage is a decoded 1-status + 1-or-2-data-byte MIDI message,
// normalized into the same (type, channel, control, value) shape as a
// ChannelID plus a raw value in wire units.
type ShortMessage struct {
	Type    Type
	Channel uint8
	Control uint16 // 0 for PitchBend/Aftertouch
	Value   uint16 // 0..127, or 0..16383 for PitchBend
}

// Decode parses a short MIDI message out of buf. Returns ok=false (no error)
// for status bytes this module does not route (SysEx, system realtime,
// program change, ...); the caller should log and drop.
func Decode(buf []byte) (msg ShortMessage, ok bool, err error) {
	if len(buf) < 1 {
		return ShortMessage{}, false, fmt.Errorf("%w: empty buffer", ErrMalformed)
	}

	status := buf[0]
	if status&0x80 == 0 {
		return ShortMessage{}, false, fmt.Errorf("%w: byte 0x%02x is not a status byte", ErrMalformed, status)
	}

	nibble := status >> 4
	channel := status & 0x0f

	switch nibble {
	case statusNoteOff:
		if len(buf) < 3 {
			return ShortMessage{}, false, fmt.Errorf("%w: note off needs 3 bytes, got %d", ErrMalformed, len(buf))
		}
		return ShortMessage{Type: Note, Channel: channel, Control: uint16(buf[1]), Value: 0}, true, nil

	case statusNoteOn:
		if len(buf) < 3 {
			return ShortMessage{}, false, fmt.Errorf("%w: note on needs 3 bytes, got %d", ErrMalformed, len(buf))
		}
		return ShortMessage{Type: Note, Channel: channel, Control: uint16(buf[1]), Value: uint16(buf[2])}, true, nil

	case statusPressure:
		if len(buf) < 3 {
			return ShortMessage{}, false, fmt.Errorf("%w: poly pressure needs 3 bytes, got %d", ErrMalformed, len(buf))
		}
		return ShortMessage{Type: Pressure, Channel: channel, Control: uint16(buf[1]), Value: uint16(buf[2])}, true, nil

	case statusCC:
		if len(buf) < 3 {
			return ShortMessage{}, false, fmt.Errorf("%w: control change needs 3 bytes, got %d", ErrMalformed, len(buf))
		}
		return ShortMessage{Type: CC, Channel: channel, Control: uint16(buf[1]), Value: uint16(buf[2])}, true, nil

	case statusAftertch:
		if len(buf) < 2 {
			return ShortMessage{}, false, fmt.Errorf("%w: channel pressure needs 2 bytes, got %d", ErrMalformed, len(buf))
		}
		return ShortMessage{Type: Aftertouch, Channel: channel, Control: 0, Value: uint16(buf[1])}, true, nil

	case statusPitchBend:
		if len(buf) < 3 {
			return ShortMessage{}, false, fmt.Errorf("%w: pitch bend needs 3 bytes, got %d", ErrMalformed, len(buf))
		}
		v := (uint16(buf[2]) << 7) | uint16(buf[1])
		return ShortMessage{Type: PitchBend, Channel: channel, Control: 0, Value: v}, true, nil

	default:
		slog.Debug("midi: dropping unrouted status byte", "status", fmt.Sprintf("0x%02x", status))
		return ShortMessage{}, false, nil
	}
}

// Encode is the inverse of Decode.
func Encode(msg ShortMessage) ([]byte, error) {
	channel := msg.Channel & 0x0f

	switch msg.Type {
	case Note:
		return []byte{0x90 | channel, byte(msg.Control & 0x7f), byte(msg.Value & 0x7f)}, nil
	case Pressure:
		return []byte{0xA0 | channel, byte(msg.Control & 0x7f), byte(msg.Value & 0x7f)}, nil
	case CC:
		return []byte{0xB0 | channel, byte(msg.Control & 0x7f), byte(msg.Value & 0x7f)}, nil
	case Aftertouch:
		return []byte{0xD0 | channel, byte(msg.Value & 0x7f)}, nil
	case PitchBend:
		data1 := byte(msg.Value & 0x7f)
		data2 := byte((msg.Value >> 7) & 0x7f)
		return []byte{0xE0 | channel, data1, data2}, nil
	default:
		return nil, fmt.Errorf("%w: type %s is not a wire-level short message type", ErrMalformed, msg.Type)
	}
}
