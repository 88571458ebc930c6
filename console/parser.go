/*
 * midimonster-go - Console command parser.
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

// Package console implements the interactive operator console: a small
// prefix-matched command dispatcher in the shape of command/parser's
// cmdList/cmdLine, cut down to the handful of verbs a running MIDI
// backend actually needs (list, detect, show queue, quit) instead of
// the teacher's device attach/set/examine/deposit surface, which has no
// equivalent here.
package console

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/go-midimonster/midimonster/instance"
)

type cmd struct {
	name     string
	min      int
	process  func(*cmdLine, *instance.Backend) (bool, error)
	complete func(*cmdLine) []string
}

type cmdLine struct {
	line string
	pos  int
}

var cmdList = []cmd{
	{name: "list", min: 1, process: listInstances},
	{name: "detect", min: 1, process: detect, complete: onOffComplete},
	{name: "show", min: 1, process: show, complete: showComplete},
	{name: "quit", min: 1, process: quit},
}

// ProcessCommand executes one console line against backend. It reports
// quit=true when the console loop should exit.
func ProcessCommand(commandLine string, backend *instance.Backend) (quit bool, err error) {
	line := cmdLine{line: commandLine}
	word := line.getWord()

	match := matchList(word)
	switch {
	case len(match) == 0:
		return false, errors.New("command not found: " + word)
	case len(match) > 1:
		return false, errors.New("ambiguous command: " + word)
	}

	return match[0].process(&line, backend)
}

// CompleteCmd returns liner completion candidates for the partial line
// typed so far, mirroring complete.go's two-phase shape: complete the
// command word itself, or hand off to that command's own completer.
func CompleteCmd(commandLine string) []string {
	line := cmdLine{line: commandLine}
	word := line.getWord()

	if !line.isEOL() && line.line[line.pos] == ' ' {
		line.skipSpace()
		match := matchList(word)
		if len(match) != 1 || match[0].complete == nil {
			return nil
		}
		return match[0].complete(&line)
	}

	match := matchList(word)
	names := make([]string, len(match))
	for i, m := range match {
		names[i] = m.name
	}
	return names
}

func matchCommand(m cmd, word string) bool {
	if len(word) > len(m.name) {
		return false
	}
	for i := range word {
		if m.name[i] != word[i] {
			return false
		}
	}
	return len(word) >= m.min
}

func matchList(word string) []cmd {
	if word == "" {
		return nil
	}
	var match []cmd
	for _, m := range cmdList {
		if matchCommand(m, word) {
			match = append(match, m)
		}
	}
	return match
}

func (line *cmdLine) skipSpace() {
	for line.pos < len(line.line) && unicode.IsSpace(rune(line.line[line.pos])) {
		line.pos++
	}
}

func (line *cmdLine) isEOL() bool {
	return line.pos >= len(line.line)
}

func (line *cmdLine) getNext() byte {
	line.pos++
	if line.isEOL() {
		return 0
	}
	return line.line[line.pos]
}

// getWord returns the next letter-led token, leaving pos just past it.
func (line *cmdLine) getWord() string {
	line.skipSpace()
	if line.isEOL() {
		return ""
	}

	value := ""
	by := line.line[line.pos]
	if !unicode.IsLetter(rune(by)) {
		return ""
	}
	for {
		value += string([]byte{by})
		by = line.getNext()
		if line.isEOL() || unicode.IsSpace(rune(by)) {
			break
		}
	}
	return value
}

func listInstances(_ *cmdLine, backend *instance.Backend) (bool, error) {
	instances := backend.Instances()
	sort.Slice(instances, func(i, j int) bool { return instances[i].Name < instances[j].Name })
	if len(instances) == 0 {
		fmt.Println("no instances configured")
		return false, nil
	}
	for _, inst := range instances {
		fmt.Printf("%-16s read=%-12s write=%-12s epntx=%s\n",
			inst.Name, inst.ReadName, inst.WriteName, txMode(inst.EpnTXShort))
	}
	return false, nil
}

func txMode(short bool) string {
	if short {
		return "short"
	}
	return "long"
}

func detect(line *cmdLine, backend *instance.Backend) (bool, error) {
	word := strings.ToLower(line.getWord())
	switch word {
	case "on":
		backend.Detect = true
	case "off":
		backend.Detect = false
	default:
		return false, fmt.Errorf("detect requires on or off, got %q", word)
	}
	return false, nil
}

func onOffComplete(_ *cmdLine) []string {
	return []string{"on ", "off "}
}

func show(line *cmdLine, backend *instance.Backend) (bool, error) {
	word := strings.ToLower(line.getWord())
	switch word {
	case "queue":
		fmt.Printf("queue depth=%d pipe=%s drained=%d\n",
			backend.Queue.Len(), backend.Pipe.State(), backend.Pipe.BytesDrained())
	case "":
		return false, errors.New("show requires an argument, e.g. show queue")
	default:
		return false, fmt.Errorf("unknown show target: %q", word)
	}
	return false, nil
}

func showComplete(_ *cmdLine) []string {
	return []string{"queue "}
}

func quit(_ *cmdLine, _ *instance.Backend) (bool, error) {
	return true, nil
}
