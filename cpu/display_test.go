package cpu

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplay_Draw(t *testing.T) {
	assert := assert.New(t)

	disp := &Display{}
	collision := disp.Draw(10, 4, []uint8{0b1010_0000, 0b0000_0001})
	assert.False(collision)
	assert.Equal(3, disp.Lit())
	assert.True(disp.Pixel(10, 4))
	assert.False(disp.Pixel(11, 4))
	assert.True(disp.Pixel(12, 4))
	assert.True(disp.Pixel(17, 5))
}

func TestDisplay_DrawTwiceRestores(t *testing.T) {
	assert := assert.New(t)

	sprite := []uint8{0xFF, 0x81, 0xA5, 0x81, 0xFF}
	for _, pos := range [][2]uint8{{0, 0}, {60, 30}, {200, 100}, {63, 31}} {
		disp := &Display{}
		disp.Draw(3, 3, []uint8{0xF0, 0xF0})
		before := *disp

		disp.Draw(pos[0], pos[1], sprite)
		collision := disp.Draw(pos[0], pos[1], sprite)

		assert.True(collision, "%v", pos)
		assert.Equal(before, *disp, "%v", pos)
	}
}

func TestDisplay_DrawWrapsPerAxis(t *testing.T) {
	assert := assert.New(t)

	disp := &Display{}
	disp.Draw(63, 31, []uint8{0xC0, 0xC0})

	assert.True(disp.Pixel(63, 31))
	assert.True(disp.Pixel(0, 31))
	assert.True(disp.Pixel(63, 0))
	assert.True(disp.Pixel(0, 0))
	assert.Equal(4, disp.Lit())

	// Coordinates beyond the screen wrap by modulo.
	disp.Clear()
	disp.Draw(64+5, 32+7, []uint8{0x80})
	assert.True(disp.Pixel(5, 7))
	assert.Equal(1, disp.Lit())
}

func TestDisplay_Collision(t *testing.T) {
	assert := assert.New(t)

	disp := &Display{}
	disp.Draw(0, 0, []uint8{0x80})

	// Sprite zero bits never collide.
	assert.False(disp.Draw(0, 0, []uint8{0x7F}))
	assert.True(disp.Draw(0, 0, []uint8{0x80}))
	assert.False(disp.Pixel(0, 0))
}

func TestDisplay_Pixel_OutOfRange(t *testing.T) {
	assert := assert.New(t)

	disp := &Display{}
	assert.False(disp.Pixel(-1, 0))
	assert.False(disp.Pixel(DISPLAY_WIDTH, 0))
	assert.False(disp.Pixel(0, DISPLAY_HEIGHT))
}

func TestDisplay_String(t *testing.T) {
	assert := assert.New(t)

	disp := &Display{}
	disp.Draw(0, 0, []uint8{0xA0})

	lines := strings.Split(disp.String(), "\n")
	assert.Equal(DISPLAY_HEIGHT+1, len(lines))
	assert.Equal("#.#"+strings.Repeat(".", DISPLAY_WIDTH-3), lines[0])
	assert.Equal(strings.Repeat(".", DISPLAY_WIDTH), lines[1])
}
