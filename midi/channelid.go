/*
 * midimonster-go - Opaque channel identifier codec.
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

import "fmt"

// Type identifies the kind of controllable parameter a ChannelID addresses.
type Type uint8

const (
	Note Type = iota
	CC
	Pressure
	Aftertouch
	PitchBend
	RPN
	NRPN
)

func (t Type) String() string {
	switch t {
	case Note:
		return "note"
	case CC:
		return "cc"
	case Pressure:
		return "pressure"
	case Aftertouch:
		return "aftertouch"
	case PitchBend:
		return "pitch"
	case RPN:
		return "rpn"
	case NRPN:
		return "nrpn"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// ChannelID is the opaque 64-bit handle a Router treats as a hash key.
// Layout (low to high bit): 17 bits control, 4 bits channel, 8 bits type,
// remainder reserved and always zero. The layout is an implementation
// detail; callers must only Pack and Unpack, never rely on bit positions.
type ChannelID uint64

const (
	controlBits = 17
	channelBits = 4
	typeBits    = 8

	controlMask = (1 << controlBits) - 1
	channelMask = (1 << channelBits) - 1
	typeMask    = (1 << typeBits) - 1

	channelShift = controlBits
	typeShift    = controlBits + channelBits
)

// Pack encodes (type, channel, control) into an opaque ChannelID. It returns
// an error if channel or control fall outside the range valid for ty.
func Pack(ty Type, channel uint8, control uint16) (ChannelID, error) {
	if channel > 15 {
		return 0, fmt.Errorf("%w: channel %d out of range 0..15", ErrParse, channel)
	}

	switch ty {
	case Note, CC, Pressure:
		if control > 127 {
			return 0, fmt.Errorf("%w: control %d out of range 0..127 for %s", ErrParse, control, ty)
		}
	case RPN, NRPN:
		if control > 16383 {
			return 0, fmt.Errorf("%w: control %d out of range 0..16383 for %s", ErrParse, control, ty)
		}
	case PitchBend, Aftertouch:
		control = 0
	default:
		return 0, fmt.Errorf("%w: unknown channel type %d", ErrParse, uint8(ty))
	}

	id := uint64(control)&controlMask |
		uint64(channel&channelMask)<<channelShift |
		uint64(uint8(ty)&typeMask)<<typeShift

	return ChannelID(id), nil
}

// Unpack is the inverse of Pack.
func Unpack(id ChannelID) (ty Type, channel uint8, control uint16) {
	control = uint16(uint64(id) & controlMask)
	channel = uint8((uint64(id) >> channelShift) & channelMask)
	ty = Type(uint64(id) >> typeShift & typeMask)
	return ty, channel, control
}

func (id ChannelID) String() string {
	ty, channel, control := Unpack(id)
	switch ty {
	case PitchBend, Aftertouch:
		return fmt.Sprintf("ch%d.%s", channel, ty)
	default:
		return fmt.Sprintf("ch%d.%s%d", channel, ty, control)
	}
}
