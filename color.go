package colorconv

import (
	"image/color"
	"strconv"
)

// Color24 is a 24-bit colour given as three integer channel intensities.
// Values are not range checked until passed to a Converter.
type Color24 struct {
	Red   int `json:"red"`
	Green int `json:"green"`
	Blue  int `json:"blue"`
}

// Color565 is a packed 16-bit colour: 5 bits red, 6 bits green, 5 bits blue.
type Color565 uint16

const (
	redBits   = 5
	greenBits = 6
	blueBits  = 5

	blueShift  = 0
	greenShift = blueShift + blueBits
	redShift   = greenShift + greenBits

	redMax   = 1<<redBits - 1
	greenMax = 1<<greenBits - 1
	blueMax  = 1<<blueBits - 1
)

// channelScale is the divisor used to normalise a channel to its fraction.
const channelScale = 256.0

// field scales fraction into a field of the given width. The result saturates
// at the field maximum, so a fraction of 1.0 can't spill into the next field.
func field(fraction float64, bits uint) uint16 {
	top := uint16(1<<bits - 1)
	v := fraction * float64(uint(1)<<bits)
	if v <= 0 {
		return 0
	}
	if v >= float64(top) {
		return top
	}
	return uint16(v) // truncation is floor for v > 0.
}

func pack(fr, fg, fb float64) Color565 {
	return Color565(field(fr, redBits)<<redShift |
		field(fg, greenBits)<<greenShift |
		field(fb, blueBits)<<blueShift)
}

// ToColor565 packs 8-bit channels with the same formula Converter uses.
func ToColor565(r, g, b uint8) Color565 {
	return pack(float64(r)/channelScale, float64(g)/channelScale, float64(b)/channelScale)
}

// Fields returns the unpacked 5, 6 and 5 bit fields.
func (c Color565) Fields() (r, g, b uint8) {
	return uint8(c>>redShift) & redMax, uint8(c>>greenShift) & greenMax, uint8(c>>blueShift) & blueMax
}

// RGBA implements color.Color. Fields are widened by replicating their
// high bits into the low bits, so 0x1f maps to 0xff.
func (c Color565) RGBA() (r, g, b, a uint32) {
	r5, g6, b5 := c.Fields()

	r = uint32(r5)<<3 | uint32(r5)>>2
	g = uint32(g6)<<2 | uint32(g6)>>4
	b = uint32(b5)<<3 | uint32(b5)>>2

	r |= r << 8
	g |= g << 8
	b |= b << 8
	return r, g, b, 0xffff
}

// Dec returns decimal representation of packed value.
func (c Color565) Dec() string {
	return strconv.FormatUint(uint64(c), 10)
}

// Bin returns binary representation with 0b prefix and no padding, e.g. 0b101.
func (c Color565) Bin() string {
	return "0b" + strconv.FormatUint(uint64(c), 2)
}

// Hex returns lower case hexadecimal representation with 0x prefix and
// no padding, e.g. 0xf800.
func (c Color565) Hex() string {
	return "0x" + strconv.FormatUint(uint64(c), 16)
}

// String implements fmt.Stringer.
func (c Color565) String() string {
	return c.Hex()
}

func rgb565Model(c color.Color) color.Color {
	if _, ok := c.(Color565); ok {
		return c
	}
	r, g, b, _ := c.RGBA()
	return ToColor565(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

// Model converts any color.Color to Color565.
var Model = color.ModelFunc(rgb565Model)
