package emulator

import (
	"errors"
	"maps"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/chip8/cpu"
)

func newTestEmulator(t *testing.T, program ...string) (emu *Emulator) {
	asm := &cpu.Assembler{}
	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	if err != nil {
		t.Fatal(err)
	}

	emu, err = NewEmulator(nil)
	if err != nil {
		t.Fatal(err)
	}

	err = emu.Load(prog)
	if err != nil {
		t.Fatal(err)
	}

	return
}

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu, err := NewEmulator([]byte{0x00, 0xE0})
	assert.NoError(err)
	assert.False(emu.Verbose)
	assert.NotNil(emu.Cpu)
	assert.Equal(cpu.Code(0x00E0), emu.Code())
	assert.Equal(0, emu.LineNo())

	_, err = NewEmulator(make([]byte, cpu.PROGRAM_LIMIT+1))
	assert.ErrorIs(err, cpu.ErrProgramTooLarge)
}

func TestEmulator_Defines(t *testing.T) {
	assert := assert.New(t)

	emu, err := NewEmulator(nil)
	assert.NoError(err)

	defines := maps.Collect(emu.Defines())
	assert.Equal("60", defines["TIMER_HZ"])
	assert.Equal("16", defines["KEY_COUNT"])
	assert.Equal("0x200", defines["PROGRAM_START"])
	assert.Equal("64", defines["DISPLAY_WIDTH"])

	var names []string
	for name := range emu.Defines() {
		names = append(names, name)
	}
	assert.True(slices.IsSorted(names))
	assert.Equal(len(defines), len(names))
}

func TestEmulator_Cycle(t *testing.T) {
	assert := assert.New(t)

	emu := newTestEmulator(t,
		"ld v0, 5",
		"ld v1, 7",
		"add v0, v1",
		"loop: jp loop",
	)

	for range 4 {
		assert.NoError(emu.Cycle(0))
	}
	assert.Equal(uint8(12), emu.Cpu.Register[0])
	assert.Equal(4, emu.Ticks())
	assert.Equal(4, emu.LineNo())

	emu.Reset()
	assert.Equal(0, emu.Ticks())
	assert.Equal(uint16(cpu.PROGRAM_START), emu.Cpu.Pc)
	assert.Equal(uint8(0), emu.Cpu.Register[0])
}

func TestEmulator_CycleError(t *testing.T) {
	assert := assert.New(t)

	emu := newTestEmulator(t,
		"cls",
		"ret",
	)

	assert.NoError(emu.Cycle(0))
	err := emu.Cycle(0)
	assert.ErrorIs(err, cpu.ErrStackEmpty)

	var re *ErrRuntime
	if assert.True(errors.As(err, &re)) {
		assert.Equal(uint16(0x202), re.Address)
		assert.Equal(2, re.LineNo)
	}

	var eo cpu.ErrOpcode
	if assert.True(errors.As(err, &eo)) {
		assert.Equal(cpu.Code(0x00EE), eo.Code)
	}

	emu, err = NewEmulator([]byte{0x81, 0x21})
	assert.NoError(err)
	err = emu.Cycle(0)
	assert.ErrorIs(err, cpu.ErrInvalidOpcode)
	assert.True(strings.HasPrefix(err.Error(), "0x200 "), err.Error())
}

func TestEmulator_WaitKey(t *testing.T) {
	assert := assert.New(t)

	emu := newTestEmulator(t,
		"ld v3, k",
		"cls",
	)

	assert.NoError(emu.Cycle(0))
	assert.NoError(emu.Cycle(cpu.MakeKeys(0xA)))
	assert.Equal(uint16(0x200), emu.Cpu.Pc)

	assert.NoError(emu.Cycle(0))
	assert.Equal(uint16(0x202), emu.Cpu.Pc)
	assert.Equal(uint8(0xA), emu.Cpu.Register[3])
}

func TestEmulator_Elapse(t *testing.T) {
	assert := assert.New(t)

	emu := newTestEmulator(t,
		"ld v0, 10",
		"ld dt, v0",
	)
	assert.NoError(emu.Cycle(0))
	assert.NoError(emu.Cycle(0))
	assert.Equal(uint8(10), emu.Cpu.Timers.Delay)

	assert.Equal(0, emu.Elapse(TICK_PERIOD/2))
	assert.Equal(1, emu.Elapse(TICK_PERIOD/2))
	assert.Equal(uint8(9), emu.Cpu.Timers.Delay)

	assert.Equal(0, emu.Elapse(-time.Second))
	assert.Equal(3, emu.Elapse(3*TICK_PERIOD))
	assert.Equal(uint8(6), emu.Cpu.Timers.Delay)

	assert.Equal(60, emu.Elapse(time.Second))
	assert.Equal(uint8(0), emu.Cpu.Timers.Delay)
}

func TestEmulator_Sound(t *testing.T) {
	assert := assert.New(t)

	emu := newTestEmulator(t,
		"ld v0, 2",
		"ld st, v0",
	)
	sound := emu.Sound()

	assert.NoError(emu.Cycle(0))
	assert.Equal(0, len(sound))

	assert.NoError(emu.Cycle(0))
	assert.Equal(true, <-sound)

	emu.Elapse(TICK_PERIOD)
	assert.Equal(0, len(sound))

	emu.Elapse(TICK_PERIOD)
	assert.Equal(false, <-sound)

	// Only the latest state is kept.
	emu.Cpu.Timers.Sound = 5
	emu.Elapse(TICK_PERIOD)
	emu.Cpu.Timers.Sound = 0
	emu.Elapse(TICK_PERIOD)
	assert.Equal(1, len(sound))
	assert.Equal(false, <-sound)

	assert.NoError(emu.Close())
	assert.NoError(emu.Close())
	_, ok := <-sound
	assert.False(ok)

	// Publishing after close is a no-op.
	emu.Cpu.Timers.Sound = 5
	emu.Elapse(TICK_PERIOD)
}
