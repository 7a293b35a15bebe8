package io

import (
	"bytes"
	"io"

	"github.com/ezrec/chip8/cpu"
)

// Tape provides a scripted keypad and a frame log, for running without a
// terminal. Each poll consumes at most one input byte.
type Tape struct {
	Input   io.Reader // Key bytes, one per poll. May be nil.
	Output  io.Writer // Frames are written here when they change. May be nil.
	KeyHold           // Key byte decoding.

	last  cpu.Display
	drawn bool
}

var _ Keypad = (*Tape)(nil)
var _ Screen = (*Tape)(nil)

// Poll reads the next input byte, if any, then returns the held keys.
func (tc *Tape) Poll() (pressed cpu.Keys, err error) {
	if tc.Input != nil {
		var one [1]byte
		n, _ := tc.Input.Read(one[:])
		if n == 1 {
			err = tc.KeyHold.Feed(one[0])
			if err != nil {
				return
			}
		}
	}

	pressed = tc.KeyHold.Keys()

	return
}

// Render writes the display as text, followed by a blank line, when it
// differs from the last frame written.
func (tc *Tape) Render(disp *cpu.Display) (err error) {
	if tc.Output == nil {
		return
	}

	if tc.drawn && tc.last == *disp {
		return
	}
	tc.last = *disp
	tc.drawn = true

	var buf bytes.Buffer
	buf.WriteString(disp.String())
	buf.WriteByte('\n')

	_, err = tc.Output.Write(buf.Bytes())

	return
}

// Rewind forgets the last frame and releases all keys.
func (tc *Tape) Rewind() {
	tc.drawn = false
	tc.KeyHold.Reset()
}
