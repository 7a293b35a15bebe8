// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"errors"
	"flag"
	"log"
	"os"
	"time"

	"github.com/ezrec/chip8/cpu"
	"github.com/ezrec/chip8/emulator"
	"github.com/ezrec/chip8/io"
	"github.com/ezrec/chip8/translate"
)

func main() {
	var compile string
	var rom string
	var save string
	var wavfile string
	var tape string
	var hz int
	var hold int
	var cycles int
	var lang string
	var verbose bool

	flag.StringVar(&compile, "c", "", ".asm file to compile")
	flag.StringVar(&rom, "r", "", ".rom image to load")
	flag.StringVar(&save, "s", "", "Save image to .rom file, do not execute")
	flag.StringVar(&wavfile, "w", "", "Capture tone to .wav file")
	flag.StringVar(&tape, "t", "", "Run without a terminal, reading keys from file ('-' for stdin)")
	flag.IntVar(&hz, "hz", emulator.CYCLE_HZ, "Instructions per second")
	flag.IntVar(&hold, "hold", 0, "Polls a key stays pressed (0 for default)")
	flag.IntVar(&cycles, "n", 0, "Stop after this many instructions (0 for no limit)")
	flag.StringVar(&lang, "lang", "", "Message locale, such as en-US (default from environment)")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if len(lang) != 0 {
		translate.SetLocales(lang)
	}

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if (len(compile) == 0) == (len(rom) == 0) {
		log.Fatalf("%v: exactly one of -c or -r is required", os.Args[0])
	}

	if hz <= 0 {
		log.Fatalf("%v: -hz must be positive", os.Args[0])
	}

	emu, err := emulator.NewEmulator(nil)
	if err != nil {
		log.Fatalf("%v: %v", os.Args[0], err)
	}
	emu.Verbose = verbose

	var image []byte

	// Compile a new program.
	if len(compile) != 0 {
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		asm := &cpu.Assembler{Verbose: verbose}
		for key, value := range emu.Defines() {
			if verbose {
				log.Printf(".equ %v %v", key, value)
			}
			asm.Predefine(key, value)
		}
		prog, err := asm.Parse(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}

		err = emu.Load(prog)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		image = prog.Binary()
	}

	// Load a program image.
	if len(rom) != 0 {
		inf, err := os.Open(rom)
		if err != nil {
			log.Fatalf("%v: %v", rom, err)
		}
		defer inf.Close()

		image, err = io.ReadRom(inf)
		if err != nil {
			log.Fatalf("%v: %v", rom, err)
		}

		err = emu.Cpu.Load(image)
		if err != nil {
			log.Fatalf("%v: %v", rom, err)
		}
	}

	if len(save) != 0 {
		ouf, err := os.Create(save)
		if err != nil {
			log.Fatalf("%v: %v", save, err)
		}
		err = io.WriteRom(ouf, image)
		if err == nil {
			err = ouf.Close()
		}
		if err != nil {
			log.Fatalf("%v: %v", save, err)
		}
		return
	}

	var keypad io.Keypad
	var screen io.Screen
	var term *io.Terminal

	if len(tape) != 0 {
		tc := &io.Tape{Output: os.Stdout}
		tc.Hold = hold
		if tape == "-" {
			tc.Input = os.Stdin
		} else {
			inf, err := os.Open(tape)
			if err != nil {
				log.Fatalf("%v: %v", tape, err)
			}
			defer inf.Close()
			tc.Input = inf
		}
		keypad, screen = tc, tc
	} else {
		term, err = io.OpenTerminal(os.Stdin, os.Stdout)
		if err != nil {
			log.Fatalf("%v: %v (use -t for a terminal-less run)", os.Args[0], err)
		}
		term.Verbose = verbose
		term.Hold = hold
		keypad, screen = term, term
	}

	var tone *io.Tone
	done := make(chan struct{})
	if len(wavfile) != 0 {
		tone = &io.Tone{Verbose: verbose}
		go func() {
			tone.Listen(emu.Sound())
			close(done)
		}()
	} else {
		close(done)
	}

	err = run(emu, keypad, screen, hz, cycles)

	if term != nil {
		term.Close()
	}

	emu.Close()
	<-done

	if err != nil {
		log.Fatalf("%v: %v", os.Args[0], err)
	}

	if tone != nil {
		ouf, err := os.Create(wavfile)
		if err != nil {
			log.Fatalf("%v: %v", wavfile, err)
		}
		err = tone.Write(ouf)
		if err == nil {
			err = ouf.Close()
		}
		if err != nil {
			log.Fatalf("%v: %v", wavfile, err)
		}
	}
}

// run paces instructions at hz, and timers and frames at 60Hz, until the
// keypad asks to quit or the cycle limit is reached.
func run(emu *emulator.Emulator, keypad io.Keypad, screen io.Screen, hz int, cycles int) (err error) {
	ticker := time.NewTicker(time.Second / time.Duration(hz))
	defer ticker.Stop()

	last := time.Now()
	for n := 0; cycles == 0 || n < cycles; n++ {
		<-ticker.C

		var pressed cpu.Keys
		pressed, err = keypad.Poll()
		switch {
		case errors.Is(err, io.ErrQuit):
			err = nil
			return
		case errors.Is(err, io.ErrRestart):
			emu.Reset()
			continue
		case err != nil:
			return
		}

		err = emu.Cycle(pressed)
		if err != nil {
			return
		}

		now := time.Now()
		if emu.Elapse(now.Sub(last)) > 0 {
			err = screen.Render(&emu.Cpu.Display)
			if err != nil {
				return
			}
		}
		last = now
	}

	err = screen.Render(&emu.Cpu.Display)

	return
}
