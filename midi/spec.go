/*
 * midimonster-go - Textual channel specification parser.
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
	"strconv"
	"strings"
	"unicode"
)

// typeTags maps the textual suffix used in a channel spec to its Type.
var typeTags = map[string]Type{
	"cc":         CC,
	"note":       Note,
	"pressure":   Pressure,
	"rpn":        RPN,
	"nrpn":       NRPN,
	"pitch":      PitchBend,
	"aftertouch": Aftertouch,
}

// specLine scans one channel specification string. The scanner style
// mirrors the backend config line parser's position+peek approach rather
// than a regexp, consistent with the rest of this module's text parsing.
type specLine struct {
	line string
	pos  int
}

func (l *specLine) isEOL() bool {
	return l.pos >= len(l.line)
}

func (l *specLine) peek() byte {
	if l.isEOL() {
		return 0
	}
	return l.line[l.pos]
}

// takeWhile consumes and returns a run of bytes for which pred is true.
func (l *specLine) takeWhile(pred func(byte) bool) string {
	start := l.pos
	for !l.isEOL() && pred(l.line[l.pos]) {
		l.pos++
	}
	return l.line[start:l.pos]
}

func isDigit(b byte) bool { return unicode.IsDigit(rune(b)) }
func isAlpha(b byte) bool { return unicode.IsLetter(rune(b)) }

// ParseChannelSpec parses a textual `("ch"|"channel") <0..15> "." <type>
// [<control>]` specification into a ChannelID.
func ParseChannelSpec(spec string) (ChannelID, error) {
	l := &specLine{line: spec}

	prefix := l.takeWhile(isAlpha)
	lower := strings.ToLower(prefix)
	if lower != "ch" && lower != "channel" {
		return 0, fmt.Errorf("%w: channel spec %q must start with ch or channel", ErrParse, spec)
	}

	digits := l.takeWhile(isDigit)
	if digits == "" {
		return 0, fmt.Errorf("%w: channel spec %q missing channel number", ErrParse, spec)
	}
	channelNum, err := strconv.ParseUint(digits, 10, 8)
	if err != nil || channelNum > 15 {
		return 0, fmt.Errorf("%w: channel %s out of range 0..15 in %q", ErrParse, digits, spec)
	}

	if l.peek() != '.' {
		return 0, fmt.Errorf("%w: channel spec %q missing '.' before type", ErrParse, spec)
	}
	l.pos++ // consume '.'

	tag := l.takeWhile(isAlpha)
	ty, ok := typeTags[strings.ToLower(tag)]
	if !ok {
		return 0, fmt.Errorf("%w: unknown channel type %q in %q", ErrParse, tag, spec)
	}

	var control uint64
	switch ty {
	case PitchBend, Aftertouch:
		if !l.isEOL() {
			return 0, fmt.Errorf("%w: type %s takes no control suffix in %q", ErrParse, ty, spec)
		}
	default:
		controlDigits := l.takeWhile(isDigit)
		if controlDigits == "" {
			return 0, fmt.Errorf("%w: type %s requires a control number in %q", ErrParse, ty, spec)
		}
		control, err = strconv.ParseUint(controlDigits, 10, 16)
		if err != nil {
			return 0, fmt.Errorf("%w: invalid control number %q in %q", ErrParse, controlDigits, spec)
		}
		if !l.isEOL() {
			return 0, fmt.Errorf("%w: trailing characters in channel spec %q", ErrParse, spec)
		}
	}

	return Pack(ty, uint8(channelNum), uint16(control))
}
