package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
	"math/rand"
	"time"
)

const (
	REGISTER_COUNT = 16
	REGISTER_FLAG  = 0xF // VF: carry, borrow, and collision flag.
)

var _cpu_defines = map[string]string{
	"PROGRAM_START":  fmt.Sprintf("%#x", PROGRAM_START),
	"PROGRAM_LIMIT":  fmt.Sprintf("%#x", PROGRAM_LIMIT),
	"FONT_BASE":      fmt.Sprintf("%#x", FONT_BASE),
	"FONT_SIZE":      fmt.Sprintf("%v", FONT_SIZE),
	"DISPLAY_WIDTH":  fmt.Sprintf("%v", DISPLAY_WIDTH),
	"DISPLAY_HEIGHT": fmt.Sprintf("%v", DISPLAY_HEIGHT),
	"STACK_LIMIT":    fmt.Sprintf("%v", STACK_LIMIT),
}

// Cpu is the simulation context for the CHIP-8 interpreter.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Memory   Memory                // Address space.
	Register [REGISTER_COUNT]uint8 // V0-VF.
	I        uint16                // Index register.
	Pc       uint16                // Program counter.
	Stack    Stack                 // Return address stack.
	Display  Display               // Pixel grid.
	Timers   Timers                // Delay and sound timers.
	Input    InputLatch            // Previous key snapshot, used by Cycle.

	Rand *rand.Rand // Source for the RND instruction.

	Ticks int // Instructions retired since reset.

	program []byte
}

// NewCpu creates a CPU with the program image loaded at PROGRAM_START.
func NewCpu(program []byte) (cpu *Cpu, err error) {
	cpu = &Cpu{
		Rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	err = cpu.Load(program)
	if err != nil {
		cpu = nil
		return
	}

	return
}

// Load replaces the program image, then resets the CPU.
func (cpu *Cpu) Load(program []byte) (err error) {
	if len(program) > PROGRAM_LIMIT {
		err = fmt.Errorf("%w: %d > %d", ErrProgramTooLarge, len(program), PROGRAM_LIMIT)
		return
	}

	cpu.program = append([]byte(nil), program...)
	cpu.Reset()

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Reset the CPU to its freshly loaded state.
// - Reloads font and program into memory.
// - Clears registers, stack, display, timers and the input latch.
// - Sets the program counter to PROGRAM_START.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.Memory.Reset(cpu.program)
	clear(cpu.Register[:])
	cpu.I = 0
	cpu.Pc = PROGRAM_START
	cpu.Stack.Reset()
	cpu.Display.Clear()
	cpu.Timers.Reset()
	cpu.Input.Reset()
	cpu.Ticks = 0
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	text += fmt.Sprintf("% 5s: %03X\n", "pc", cpu.Pc)
	text += fmt.Sprintf("% 5s: %03X\n", "i", cpu.I)
	for n, val := range cpu.Register {
		text += fmt.Sprintf("% 5s: %02X\n", fmt.Sprintf("v%X", n), val)
	}
	strval := "---"
	if val, ok := cpu.Stack.Peek(); ok {
		strval = fmt.Sprintf("%03X", val)
	}
	text += fmt.Sprintf("% 5s: %v (%d)\n", "stack", strval, cpu.Stack.Sp)
	text += fmt.Sprintf("% 5s: %02X\n", "dt", cpu.Timers.Delay)
	text += fmt.Sprintf("% 5s: %02X\n", "st", cpu.Timers.Sound)

	return
}

// SoundActive is true while the tone should play.
func (cpu *Cpu) SoundActive() bool {
	return cpu.Timers.SoundActive()
}

// Tick advances the timers by one 60Hz period.
func (cpu *Cpu) Tick() {
	cpu.Timers.Tick()
}

// FetchCode fetches the instruction word at the program counter.
func (cpu *Cpu) FetchCode() (code Code) {
	return Code(cpu.Memory.Word(cpu.Pc))
}

// Step executes a single instruction, given the current pressed keys and
// the key released since the previous step (or KEY_NONE).
func (cpu *Cpu) Step(pressed Keys, released Key) (err error) {
	return cpu.Execute(cpu.FetchCode(), pressed, released)
}

// Cycle derives the released key from the input latch, then steps.
func (cpu *Cpu) Cycle(pressed Keys) (err error) {
	released := cpu.Input.Latch(pressed)
	return cpu.Step(pressed, released)
}

// Execute executes a single decoded instruction as if it had been fetched
// from the program counter.
func (cpu *Cpu) Execute(code Code, pressed Keys, released Key) (err error) {
	defer func() {
		if err != nil {
			err = errors.Join(ErrOpcode{Code: code, Address: cpu.Pc}, err)
		}
	}()
	if cpu.Verbose {
		log.Printf("%03x: %v", cpu.Pc, code)
	}

	next_pc := cpu.Pc + 2

	x := code.X()
	y := code.Y()
	vx := cpu.Register[x]
	vy := cpu.Register[y]

	skip := func(cond bool) {
		if cond {
			next_pc += 2
		}
	}

	switch code.Op() {
	case OP_CLS:
		cpu.Display.Clear()
	case OP_RET:
		var ok bool
		next_pc, ok = cpu.Stack.Pop()
		if !ok {
			err = ErrStackEmpty
			return
		}
	case OP_JP:
		next_pc = code.NNN()
	case OP_CALL:
		if cpu.Stack.Full() {
			err = ErrStackFull
			return
		}
		cpu.Stack.Push(next_pc)
		next_pc = code.NNN()
	case OP_SE_IMM:
		skip(vx == code.KK())
	case OP_SNE_IMM:
		skip(vx != code.KK())
	case OP_SE_REG:
		skip(vx == vy)
	case OP_LD_IMM:
		cpu.Register[x] = code.KK()
	case OP_ADD_IMM:
		cpu.Register[x] = vx + code.KK()
	case OP_LD_REG:
		cpu.Register[x] = vy
	case OP_AND:
		cpu.Register[x] = vx & vy
	case OP_XOR:
		cpu.Register[x] = vx ^ vy
	case OP_ADD_REG:
		sum := uint16(vx) + uint16(vy)
		cpu.setFlag(sum > 0xff)
		cpu.Register[x] = uint8(sum)
	case OP_SUB:
		cpu.setFlag(vx > vy)
		cpu.Register[x] = vx - vy
	case OP_LD_I:
		cpu.I = code.NNN()
	case OP_RND:
		cpu.Register[x] = uint8(cpu.Rand.Intn(256)) & code.KK()
	case OP_DRW:
		sprite := cpu.Memory.Read(cpu.I, int(code.N()))
		cpu.setFlag(cpu.Display.Draw(vx, vy, sprite))
	case OP_SKP:
		skip(pressed.Contains(Key(vx)))
	case OP_SKNP:
		skip(!pressed.Contains(Key(vx)))
	case OP_LD_VX_DT:
		cpu.Register[x] = cpu.Timers.Delay
	case OP_LD_VX_K:
		if !released.Valid() {
			// Don't advance to next instruction.
			next_pc = cpu.Pc
		} else {
			cpu.Register[x] = uint8(released)
		}
	case OP_LD_DT_VX:
		cpu.Timers.Delay = vx
	case OP_LD_ST_VX:
		cpu.Timers.Sound = vx
	case OP_ADD_I:
		cpu.I += uint16(vx)
	case OP_LD_F:
		cpu.I = FONT_BASE + uint16(vx)*FONT_SIZE
	case OP_LD_B:
		cpu.Memory.Store(cpu.I+0, vx/100)
		cpu.Memory.Store(cpu.I+1, (vx/10)%10)
		cpu.Memory.Store(cpu.I+2, vx%10)
	case OP_LD_MEM_VX:
		for n := range uint16(x) + 1 {
			cpu.Memory.Store(cpu.I+n, cpu.Register[n])
		}
	case OP_LD_VX_MEM:
		for n := range uint16(x) + 1 {
			cpu.Register[n] = cpu.Memory.Load(cpu.I + n)
		}
	default:
		err = ErrInvalidOpcode
		return
	}

	cpu.Pc = next_pc & ADDRESS_MASK
	cpu.Ticks++

	return
}

// setFlag writes 1 or 0 to VF.
func (cpu *Cpu) setFlag(cond bool) {
	if cond {
		cpu.Register[REGISTER_FLAG] = 1
	} else {
		cpu.Register[REGISTER_FLAG] = 0
	}
}
