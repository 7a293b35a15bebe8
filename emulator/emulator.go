// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"fmt"
	"iter"
	"log"
	"maps"
	"time"

	"github.com/ezrec/chip8/cpu"
	"github.com/ezrec/chip8/internal"
)

const (
	CYCLE_HZ    = 700                        // Default instruction rate.
	TICK_PERIOD = time.Second / cpu.TIMER_HZ // Wall-clock time per timer tick.
)

var _emulator_defines = map[string]string{
	"TIMER_HZ":  fmt.Sprintf("%v", cpu.TIMER_HZ),
	"KEY_COUNT": fmt.Sprintf("%v", cpu.KEY_COUNT),
}

// Emulator state. CPU, timer pacing and the sound channel.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Listing of the running program, if assembled.

	elapsed time.Duration // Wall-clock time not yet converted to ticks.
	sound   chan bool     // Latest sound-active state.
	playing bool          // Last published sound-active state.
	closed  bool          // Sound channel has been closed.
}

// NewEmulator creates a new emulator running the program image.
func NewEmulator(program []byte) (emu *Emulator, err error) {
	cp, err := cpu.NewCpu(program)
	if err != nil {
		return
	}

	emu = &Emulator{
		Cpu:     cp,
		Program: &cpu.Program{},
		sound:   make(chan bool, 1),
	}

	return
}

// Defines returns an iterator over all of the defines, sorted by name.
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.Sorted2(internal.Concat2(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
	))
}

// Close the emulator. The sound channel is closed.
func (emu *Emulator) Close() (err error) {
	if !emu.closed {
		close(emu.sound)
		emu.closed = true
	}

	return
}

// Sound returns the channel carrying the latest sound-active state.
func (emu *Emulator) Sound() <-chan bool {
	return emu.sound
}

// Load replaces the program with an assembled listing and resets the
// emulator.
func (emu *Emulator) Load(prog *cpu.Program) (err error) {
	err = emu.Cpu.Load(prog.Binary())
	if err != nil {
		return
	}

	emu.Program = prog
	emu.Reset()

	return
}

// Reset the emulator state.
func (emu *Emulator) Reset() {
	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Reset()
	emu.elapsed = 0
	emu.publish()
}

// Ticks returns the total instructions executed since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Ticks
}

// Code returns the current instruction code.
func (emu *Emulator) Code() cpu.Code {
	return emu.Cpu.FetchCode()
}

// LineNo returns the source line number for the executing opcode, or 0 if
// the program was not assembled.
func (emu *Emulator) LineNo() int {
	dbg := emu.Program.Debug(emu.Cpu.Pc)
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.LineNo
}

// Cycle performs a single instruction cycle with the pressed keys.
func (emu *Emulator) Cycle(pressed cpu.Keys) (err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	address := emu.Cpu.Pc
	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{Address: address, LineNo: lineno, Err: err}
		}
	}()

	err = emu.Cpu.Cycle(pressed)
	emu.publish()

	return
}

// Elapse accounts for wall-clock time, ticking the timers once per
// TICK_PERIOD, and returns the number of ticks performed.
func (emu *Emulator) Elapse(d time.Duration) (ticks int) {
	if d > 0 {
		emu.elapsed += d
	}

	for emu.elapsed >= TICK_PERIOD {
		emu.Cpu.Tick()
		emu.elapsed -= TICK_PERIOD
		ticks++
	}

	if ticks > 0 {
		emu.publish()
	}

	return
}

// publish sends the sound state when it changes. A stale value still in the
// channel is replaced.
func (emu *Emulator) publish() {
	if emu.closed {
		return
	}

	active := emu.Cpu.SoundActive()
	if active == emu.playing {
		return
	}
	emu.playing = active

	if emu.Verbose {
		log.Printf("emulator: sound %v", active)
	}

	select {
	case <-emu.sound:
	default:
	}
	emu.sound <- active
}
