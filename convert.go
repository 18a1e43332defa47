package colorconv

import (
	"fmt"
	"math"
)

const (
	// MaxChannel is the inclusive upper channel bound accepted by default.
	// It admits 256, one past the 8-bit maximum, for compatibility with the
	// legacy firmware tool. The packed fields saturate so 256 packs like 255.
	MaxChannel = 256

	// MaxChannelStrict is the inclusive upper bound of a strict Converter.
	MaxChannelStrict = 255
)

// RangeError is returned when a channel value is outside of the accepted range.
type RangeError struct {
	Channel string
	Value   int
	Max     int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s value out of range: %d (allowed 0..%d)", e.Channel, e.Value, e.Max)
}

// Converter validates and converts 24-bit colours to RGB565.
// Zero value is not usable, use NewConverter.
type Converter struct {
	max int
}

// NewConverter returns Converter. Strict converter rejects 256.
func NewConverter(strict bool) *Converter {
	if strict {
		return &Converter{max: MaxChannelStrict}
	}
	return &Converter{max: MaxChannel}
}

// Max returns inclusive upper channel bound.
func (cv *Converter) Max() int {
	return cv.max
}

var defaultConverter = NewConverter(false)

// Convert converts red, green, blue using the default (non-strict) Converter.
func Convert(red, green, blue int) (*Result, error) {
	return defaultConverter.Convert(red, green, blue)
}

// Convert validates channels in red, green, blue order and returns the
// percentage and packed RGB565 representation. The first offending channel
// is reported as *RangeError.
func (cv *Converter) Convert(red, green, blue int) (*Result, error) {

	c := Color24{Red: red, Green: green, Blue: blue}

	for _, ch := range [3]struct {
		name  string
		value int
	}{{"red", red}, {"green", green}, {"blue", blue}} {
		if ch.value < 0 || ch.value > cv.max {
			return nil, &RangeError{Channel: ch.name, Value: ch.value, Max: cv.max}
		}
	}

	fr := float64(red) / channelScale
	fg := float64(green) / channelScale
	fb := float64(blue) / channelScale

	return &Result{
		Color:   c,
		Percent: [3]int{percent(fr), percent(fg), percent(fb)},
		Packed:  pack(fr, fg, fb),
	}, nil
}

// percent rounds half to even, the way printf's %.0f does. E.g. 32/256 is
// 12.5% and is reported as 12.
func percent(fraction float64) int {
	return int(math.RoundToEven(fraction * 100))
}
