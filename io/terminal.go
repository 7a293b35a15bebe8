package io

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"syscall"

	"github.com/pkg/term/termios"

	"github.com/ezrec/chip8/cpu"
)

const (
	ANSI_HOME        = "\033[H"
	ANSI_CLEAR       = "\033[2J"
	ANSI_HIDE_CURSOR = "\033[?25l"
	ANSI_SHOW_CURSOR = "\033[?25h"
)

// Terminal is a raw mode character terminal, used as both keypad and screen.
type Terminal struct {
	Verbose bool // If set, logs key bytes.
	KeyHold      // Key byte decoding.

	input  io.Reader
	output io.Writer

	fd    uintptr
	raw   bool
	saved syscall.Termios
	last  string
}

var _ Keypad = (*Terminal)(nil)
var _ Screen = (*Terminal)(nil)

// OpenTerminal puts the input terminal into non-blocking raw mode.
func OpenTerminal(input, output *os.File) (term *Terminal, err error) {
	term = &Terminal{
		input:  input,
		output: output,
		fd:     input.Fd(),
	}

	err = termios.Tcgetattr(term.fd, &term.saved)
	if err != nil {
		err = errors.Join(ErrNotTerminal, err)
		term = nil
		return
	}

	attr := term.saved
	termios.Cfmakeraw(&attr)
	// Reads return immediately, with or without input.
	attr.Cc[syscall.VMIN] = 0
	attr.Cc[syscall.VTIME] = 0

	err = termios.Tcsetattr(term.fd, termios.TCIFLUSH, &attr)
	if err != nil {
		term = nil
		return
	}
	term.raw = true

	_, err = io.WriteString(term.output, ANSI_CLEAR+ANSI_HIDE_CURSOR)

	return
}

// Close restores the terminal to its original mode.
func (term *Terminal) Close() (err error) {
	if !term.raw {
		return
	}

	_, err = io.WriteString(term.output, ANSI_SHOW_CURSOR+"\r\n")
	err = errors.Join(err, termios.Tcsetattr(term.fd, termios.TCIFLUSH, &term.saved))
	term.raw = false

	return
}

// Poll reads all pending key bytes, then returns the held keys.
func (term *Terminal) Poll() (pressed cpu.Keys, err error) {
	var buf [16]byte
	for {
		n, rerr := term.input.Read(buf[:])
		for _, b := range buf[:n] {
			if term.Verbose {
				log.Printf("terminal: key %#02x", b)
			}
			err = term.KeyHold.Feed(b)
			if err != nil {
				return
			}
		}
		if rerr != nil || n == 0 {
			break
		}
	}

	pressed = term.KeyHold.Keys()

	return
}

// Render draws the display, when changed, at the top of the terminal.
func (term *Terminal) Render(disp *cpu.Display) (err error) {
	frame := HalfBlock(disp)
	if frame == term.last {
		return
	}
	term.last = frame

	_, err = io.WriteString(term.output, ANSI_HOME+frame)

	return
}

// HalfBlock renders the display with two pixel rows per text line.
func HalfBlock(disp *cpu.Display) string {
	var sb strings.Builder

	for y := 0; y < cpu.DISPLAY_HEIGHT; y += 2 {
		for x := range cpu.DISPLAY_WIDTH {
			top, bottom := disp.Pixel(x, y), disp.Pixel(x, y+1)
			switch {
			case top && bottom:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bottom:
				sb.WriteRune('▄')
			default:
				sb.WriteByte(' ')
			}
		}
		sb.WriteString("\r\n")
	}

	return sb.String()
}

// String returns a description of the terminal state.
func (term *Terminal) String() string {
	return fmt.Sprintf("terminal: raw=%v hold=%v", term.raw, term.Hold)
}
