// Package io provides the host devices for the CHIP-8 emulator: program
// images (Rom), keypads and screens (Terminal, Tape), and tone capture
// (Tone).
package io

import (
	"github.com/ezrec/chip8/cpu"
)

// Keypad defines the interface for key input devices.
type Keypad interface {
	// Poll returns the keys currently held down. It never blocks.
	Poll() (pressed cpu.Keys, err error)
}

// Screen defines the interface for display devices.
type Screen interface {
	// Render presents the display buffer.
	Render(disp *cpu.Display) error
}
