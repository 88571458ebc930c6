/*
 * midimonster-go - Extended Parameter Number (RPN/NRPN) reassembler.
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

// CC numbers relevant to RPN/NRPN reassembly.
const (
	ccValueHi   uint8 = 6
	ccValueLo   uint8 = 38
	ccNRPNLo    uint8 = 98
	ccNRPNHi    uint8 = 99
	ccRPNLo     uint8 = 100
	ccRPNHi     uint8 = 101
	nullSentinl uint8 = 127

	maxValue14 = 16383
)

// IsEpnControl reports whether cc is one of the six controller numbers an
// EpnEngine reassembles rather than routing as a plain CC event.
func IsEpnControl(cc uint16) bool {
	switch uint8(cc) {
	case ccValueHi, ccValueLo, ccNRPNLo, ccNRPNHi, ccRPNLo, ccRPNHi:
		return true
	default:
		return false
	}
}

type epnFlags uint8

const (
	flagNRPNMode epnFlags = 1 << iota
	flagParamHiValid
	flagParamLoValid
	flagValueHiValid
)

// EpnState is the per-channel reassembly state for one MIDI channel of one
// instance. The zero value is the correct initial state.
type EpnState struct {
	param   uint16 // 14-bit partial parameter address being assembled
	valueHi uint8  // 7-bit high half of value, awaiting its low half
	flags   epnFlags
}

func (s *EpnState) has(f epnFlags) bool { return s.flags&f != 0 }
func (s *EpnState) set(f epnFlags)      { s.flags |= f }
func (s *EpnState) clear(f epnFlags)    { s.flags &^= f }

// EpnEngine holds the 16 per-channel EpnState entries for one MidiInstance
// and implements both the RX reassembler and the TX fragmenter.
type EpnEngine struct {
	channels [16]EpnState
}

// EpnEvent is a fully reassembled RPN/NRPN logical event.
type EpnEvent struct {
	Type    Type // RPN or NRPN
	Channel uint8
	Control uint16  // 14-bit parameter address
	Value   float64 // normalized 0.0..1.0
}

// Update feeds one incoming (cc, value) pair for the given channel through
// the RX state machine. It returns ok=true and a populated EpnEvent only
// when CC 38 completes an armed value transfer. CC numbers outside the
// {6,38,98,99,100,101} set should never reach this method — the caller
// routes those as plain CC events instead.
func (e *EpnEngine) Update(channel uint8, cc uint8, value uint8) (EpnEvent, bool) {
	if channel > 15 {
		return EpnEvent{}, false
	}
	st := &e.channels[channel]

	switch cc {
	case ccRPNHi, ccRPNLo, ccNRPNHi, ccNRPNLo:
		wantsNRPN := cc == ccNRPNHi || cc == ccNRPNLo
		isNRPN := st.has(flagNRPNMode)
		if isNRPN != wantsNRPN {
			st.clear(flagNRPNMode | flagParamHiValid | flagParamLoValid)
			if wantsNRPN {
				st.set(flagNRPNMode)
			}
		}

		st.clear(flagValueHiValid)

		switch cc {
		case ccRPNHi, ccNRPNHi:
			st.param = (st.param & 0x007f) | (uint16(value) << 7)
			st.set(flagParamHiValid)
			// Null sentinel (127) only disarms on the RPN controls; NRPN
			// has no null-RPN equivalent, so 99=127 is a real address byte.
			if cc == ccRPNHi && value == nullSentinl {
				st.clear(flagParamHiValid)
			}
		case ccRPNLo, ccNRPNLo:
			st.param = (st.param & 0x3f80) | uint16(value)
			st.set(flagParamLoValid)
			if cc == ccRPNLo && value == nullSentinl {
				st.clear(flagParamLoValid)
			}
		}
		return EpnEvent{}, false

	case ccValueHi:
		if !st.has(flagParamHiValid) || !st.has(flagParamLoValid) {
			return EpnEvent{}, false
		}
		st.valueHi = value & 0x7f
		st.set(flagValueHiValid)
		return EpnEvent{}, false

	case ccValueLo:
		if !st.has(flagValueHiValid) {
			return EpnEvent{}, false
		}
		st.clear(flagValueHiValid)

		v14 := (uint16(st.valueHi) << 7) | uint16(value&0x7f)

		ty := RPN
		if st.has(flagNRPNMode) {
			ty = NRPN
		}
		return EpnEvent{
			Type:    ty,
			Channel: channel,
			Control: st.param,
			Value:   float64(v14) / maxValue14,
		}, true

	default:
		return EpnEvent{}, false
	}
}

// EncodeEpn fragments an outgoing RPN/NRPN value into the short CC messages
// that transmit it, in wire order. If short is false, two trailing
// null-RPN CCs are appended to disarm the receiver's reassembler.
func EncodeEpn(ty Type, channel uint8, control uint16, normalized float64, short bool) ([]ShortMessage, error) {
	if ty != RPN && ty != NRPN {
		return nil, fmt.Errorf("%w: EncodeEpn requires RPN or NRPN, got %s", ErrParse, ty)
	}
	if channel > 15 {
		return nil, fmt.Errorf("%w: channel %d out of range 0..15", ErrParse, channel)
	}
	if control > maxValue14 {
		return nil, fmt.Errorf("%w: control %d out of range 0..16383", ErrParse, control)
	}
	if normalized < 0 || normalized > 1 {
		return nil, fmt.Errorf("%w: normalized value %v out of range 0.0..1.0", ErrParse, normalized)
	}

	hiCC, loCC := ccRPNHi, ccRPNLo
	if ty == NRPN {
		hiCC, loCC = ccNRPNHi, ccNRPNLo
	}

	// Truncating conversion: matches the source's implicit float-to-int
	// behavior. 0.5 * 16383 = 8191.5 truncates to 8191 (hi=63, lo=127).
	v14 := uint16(normalized * maxValue14)

	msgs := []ShortMessage{
		{Type: CC, Channel: channel, Control: uint16(hiCC), Value: uint16(control>>7) & 0x7f},
		{Type: CC, Channel: channel, Control: uint16(loCC), Value: control & 0x7f},
		{Type: CC, Channel: channel, Control: uint16(ccValueHi), Value: uint16(v14>>7) & 0x7f},
		{Type: CC, Channel: channel, Control: uint16(ccValueLo), Value: v14 & 0x7f},
	}

	if !short {
		msgs = append(msgs,
			ShortMessage{Type: CC, Channel: channel, Control: uint16(ccRPNHi), Value: uint16(nullSentinl)},
			ShortMessage{Type: CC, Channel: channel, Control: uint16(ccRPNLo), Value: uint16(nullSentinl)},
		)
	}

	return msgs, nil
}
