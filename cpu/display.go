package cpu

import (
	"strings"
)

const (
	DISPLAY_WIDTH  = 64
	DISPLAY_HEIGHT = 32
)

// Display is the monochrome pixel grid, row-major.
type Display [DISPLAY_HEIGHT][DISPLAY_WIDTH]bool

// Clear turns every pixel off.
func (disp *Display) Clear() {
	*disp = Display{}
}

// Draw XOR-composites a sprite with its top-left corner at (x, y).
// Each sprite byte is one row of 8 pixels, MSB leftmost. Coordinates wrap
// independently on each axis. Returns true if any lit pixel was turned off.
func (disp *Display) Draw(x, y uint8, sprite []uint8) (collision bool) {
	for row, bits := range sprite {
		py := (int(y) + row) % DISPLAY_HEIGHT
		for col := range 8 {
			if bits&(0x80>>col) == 0 {
				continue
			}
			px := (int(x) + col) % DISPLAY_WIDTH
			if disp[py][px] {
				collision = true
			}
			disp[py][px] = !disp[py][px]
		}
	}

	return
}

// Pixel reports whether the pixel at column x, row y is lit.
func (disp *Display) Pixel(x, y int) bool {
	if x < 0 || x >= DISPLAY_WIDTH || y < 0 || y >= DISPLAY_HEIGHT {
		return false
	}
	return disp[y][x]
}

// Lit counts the pixels that are on.
func (disp *Display) Lit() (count int) {
	for _, row := range disp {
		for _, on := range row {
			if on {
				count++
			}
		}
	}
	return
}

// String renders the display as rows of '#' and '.'.
func (disp *Display) String() string {
	var sb strings.Builder
	sb.Grow((DISPLAY_WIDTH + 1) * DISPLAY_HEIGHT)
	for _, row := range disp {
		for _, on := range row {
			if on {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
