/*
 * midimonster-go - Backend configuration directives.
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

// Package backendconfig registers the MIDI backend's configuration
// directives (INSTANCE, LIST, DETECT, LOGFILE) with config/configparser
// and wires them directly into a running instance.Backend, the way
// debugconfig wires DEBUG directives into the emulator's global state.
package backendconfig

import (
	"fmt"
	"strings"

	config "github.com/go-midimonster/midimonster/config/configparser"
	"github.com/go-midimonster/midimonster/instance"
)

// Load registers this package's directives and parses path into backend.
// It returns the LOGFILE directive's value, if any, so the caller can
// redirect the shared slog handler before logging resumes in earnest.
func Load(path string, backend *instance.Backend) (logFile string, err error) {
	config.RegisterModel("INSTANCE", config.TypeOptions, instanceHandler(backend))
	config.RegisterOption("LIST", onOffHandler(&backend.List))
	config.RegisterOption("DETECT", onOffHandler(&backend.Detect))
	// LOGFILE takes a throwaway label plus a path="<value>" option,
	// e.g. "LOGFILE main path=\"/var/log/midimonster.log\"": a
	// TypeOptions line always starts with a bare first token (the way
	// INSTANCE's first token is the instance name), and the scanner's
	// unquoted grammar only accepts letters and digits for that first
	// token, so a filesystem path can only ever appear in the quoted
	// '='-option that follows.
	config.RegisterModel("LOGFILE", config.TypeOptions, func(_ uint16, _ string, options []config.Option) error {
		for _, opt := range options {
			if strings.ToLower(opt.Name) == "path" {
				logFile = opt.EqualOpt
				return nil
			}
		}
		return fmt.Errorf("LOGFILE directive requires path=<file>")
	})

	if err := config.LoadConfigFile(path); err != nil {
		return "", err
	}
	return logFile, nil
}

// instanceHandler builds one MidiInstance per `INSTANCE <name> read=...
// write=... epntx=short|long` line, opens a pair of loopback devices for
// it (the bundled no-hardware demo backend), and registers it with
// backend. The option name is "epntx", not "epn-tx": the scanner's
// option-name grammar only accepts letters and digits, matching the rest
// of this parser's bare-token handling.
func instanceHandler(backend *instance.Backend) func(uint16, string, []config.Option) error {
	return func(_ uint16, name string, options []config.Option) error {
		if name == "" {
			return fmt.Errorf("INSTANCE directive requires a name")
		}

		inst := instance.NewMidiInstance(name, backend)
		for _, opt := range options {
			switch strings.ToLower(opt.Name) {
			case "read":
				inst.ReadName = opt.EqualOpt
			case "write":
				inst.WriteName = opt.EqualOpt
			case "epntx":
				switch strings.ToLower(opt.EqualOpt) {
				case "short":
					inst.EpnTXShort = true
				case "long", "":
					inst.EpnTXShort = false
				default:
					return fmt.Errorf("INSTANCE %s: epntx must be short or long, got %q", name, opt.EqualOpt)
				}
			default:
				return fmt.Errorf("INSTANCE %s: unknown option %q", name, opt.Name)
			}
		}

		in := instance.NewLoopbackDevice()
		out := instance.NewLoopbackDevice()
		if err := inst.Start(in, out); err != nil {
			return fmt.Errorf("INSTANCE %s: %w", name, err)
		}
		backend.AddInstance(inst)
		return nil
	}
}

// onOffHandler returns a TypeOption handler that sets *flag from an
// `on`/`off` value, matching the LIST/DETECT directive grammar.
func onOffHandler(flag *bool) func(uint16, string, []config.Option) error {
	return func(_ uint16, value string, _ []config.Option) error {
		switch strings.ToLower(value) {
		case "on":
			*flag = true
		case "off":
			*flag = false
		default:
			return fmt.Errorf("expected on or off, got %q", value)
		}
		return nil
	}
}
