package cpu

const (
	MEMORY_SIZE   = 0x1000                      // Addressable bytes.
	ADDRESS_MASK  = MEMORY_SIZE - 1             // 12 significant address bits.
	PROGRAM_START = 0x200                       // Load address of the program image.
	PROGRAM_LIMIT = MEMORY_SIZE - PROGRAM_START // Largest program image.
	FONT_BASE     = 0x000                       // Address of the glyph for digit 0.
	FONT_SIZE     = 5                           // Bytes per glyph.
)

// font holds the 4x5 glyphs for the hexadecimal digits.
var font = [16][FONT_SIZE]uint8{
	{0xF0, 0x90, 0x90, 0x90, 0xF0}, // 0
	{0x20, 0x60, 0x20, 0x20, 0x70}, // 1
	{0xF0, 0x10, 0xF0, 0x80, 0xF0}, // 2
	{0xF0, 0x10, 0xF0, 0x10, 0xF0}, // 3
	{0x90, 0x90, 0xF0, 0x10, 0x10}, // 4
	{0xF0, 0x80, 0xF0, 0x10, 0xF0}, // 5
	{0xF0, 0x80, 0xF0, 0x90, 0xF0}, // 6
	{0xF0, 0x10, 0x20, 0x40, 0x40}, // 7
	{0xF0, 0x90, 0xF0, 0x90, 0xF0}, // 8
	{0xF0, 0x90, 0xF0, 0x10, 0xF0}, // 9
	{0xF0, 0x90, 0xF0, 0x90, 0x90}, // A
	{0xE0, 0x90, 0xE0, 0x90, 0xE0}, // B
	{0xF0, 0x80, 0x80, 0x80, 0xF0}, // C
	{0xE0, 0x90, 0x90, 0x90, 0xE0}, // D
	{0xF0, 0x80, 0xF0, 0x80, 0xF0}, // E
	{0xF0, 0x80, 0xF0, 0x80, 0x80}, // F
}

// Memory is the flat address space. All accessors wrap addresses to 12 bits.
type Memory [MEMORY_SIZE]uint8

// Reset clears memory, installs the font, and copies the program to
// PROGRAM_START. The program must already be known to fit.
func (mem *Memory) Reset(program []byte) {
	clear(mem[:])

	for digit, glyph := range font {
		copy(mem[FONT_BASE+digit*FONT_SIZE:], glyph[:])
	}

	copy(mem[PROGRAM_START:], program)
}

func (mem *Memory) Load(addr uint16) uint8 {
	return mem[addr&ADDRESS_MASK]
}

func (mem *Memory) Store(addr uint16, value uint8) {
	mem[addr&ADDRESS_MASK] = value
}

// Word fetches the big-endian instruction word at addr.
func (mem *Memory) Word(addr uint16) uint16 {
	return uint16(mem.Load(addr))<<8 | uint16(mem.Load(addr+1))
}

// Read copies count bytes starting at addr.
func (mem *Memory) Read(addr uint16, count int) (data []uint8) {
	data = make([]uint8, count)
	for n := range data {
		data[n] = mem.Load(addr + uint16(n))
	}
	return
}
