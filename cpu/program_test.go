package cpu

import (
	"maps"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgram_Debug(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t,
		"cls",
		"ld v0, 1",
		".byte 1 2 3",
		"ret",
	)

	dbg := prog.Debug(0x200)
	assert.NotNil(dbg.Opcode)
	assert.Equal(1, dbg.LineNo)
	assert.Equal(0, dbg.Offset)

	dbg = prog.Debug(0x203)
	assert.NotNil(dbg.Opcode)
	assert.Equal(2, dbg.LineNo)
	assert.Equal(1, dbg.Offset)

	dbg = prog.Debug(0x206)
	assert.NotNil(dbg.Opcode)
	assert.Equal(3, dbg.LineNo)
	assert.Equal(2, dbg.Offset)
	assert.True(dbg.IsData)

	dbg = prog.Debug(0x207)
	assert.NotNil(dbg.Opcode)
	assert.Equal(4, dbg.LineNo)
}

func TestProgram_Debug_NotFound(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t, "cls")

	dbg := prog.Debug(0x100)
	assert.Nil(dbg.Opcode)
	assert.Equal(0, dbg.Offset)

	dbg = prog.Debug(0x202)
	assert.Nil(dbg.Opcode)
}

func TestProgram_Codes(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t,
		"cls",
		".word 0xFFFF",
		"jp 0x200",
	)

	codes := maps.Collect(prog.Codes())
	assert.Equal(map[uint16]Code{
		0x200: 0x00E0,
		0x204: 0x1200,
	}, codes)

	for addr := range prog.Codes() {
		assert.Equal(uint16(0x200), addr)
		break
	}
}

func TestProgram_Binary_Runs(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t,
		"ld v0, 0x20",
		"ld v1, 0x30",
		"add v0, v1",
		"ld i, 0x300",
		"ld b, v0",
		"ld v2, [i]",
	)

	cpu, err := NewCpu(prog.Binary())
	assert.NoError(err)
	run(t, cpu, 6)

	assert.Equal([]uint8{0, 8, 0}, cpu.Memory.Read(0x300, 3))
	assert.Equal([]uint8{0, 8, 0}, cpu.Register[0:3])
}
