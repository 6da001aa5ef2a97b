// Package palette holds sprite colors and the ordered pool avatars draw
// their peer-visible colors from.
package palette

import (
	"errors"
	"fmt"
)

// Color is an RGBA value. It serializes as a 4-element JSON array.
type Color [4]uint8

// RGB returns an opaque color.
func RGB(r, g, b uint8) Color { return Color{r, g, b, 255} }

// Transparent is the fully transparent color used for empty sprite pixels.
var Transparent = Color{0, 0, 0, 0}

// Scale multiplies the RGB channels by f, clamping to [0,255]. Alpha is kept.
func (c Color) Scale(f float64) Color {
	out := c
	for i := 0; i < 3; i++ {
		v := float64(c[i]) * f
		switch {
		case v < 0:
			v = 0
		case v > 255:
			v = 255
		}
		out[i] = uint8(v)
	}
	return out
}

func (c Color) String() string {
	return fmt.Sprintf("rgba(%d,%d,%d,%d)", c[0], c[1], c[2], c[3])
}

// Palette maps a sprite glyph to the color it is drawn with.
type Palette map[string]Color

// Clone returns an independent copy.
func (p Palette) Clone() Palette {
	if p == nil {
		return nil
	}
	out := make(Palette, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// ForColor builds the palette used by avatar shapes from a single base color.
//
//	'*' base, '&' shade, 'o' outline, '#' highlight, 'x' transparent.
func ForColor(c Color) Palette {
	base := Color{c[0], c[1], c[2], 255}
	return Palette{
		"*": base,
		"&": base.Scale(0.75),
		"o": base.Scale(0.5),
		"#": base.Scale(1.25),
		"x": Transparent,
	}
}

// Shadow is shared by the three shadow prefabs.
func Shadow() Palette {
	return Palette{
		"x": Transparent,
		"~": Color{0, 0, 0, 70},
		"=": Color{0, 0, 0, 45},
	}
}

var ErrPoolExhausted = errors.New("palette: color pool exhausted")

// Pool is an ordered list of distinct colors. Index i is the peer color of
// the avatar with zero-based player index i.
type Pool []Color

// At returns the color at index i, or ErrPoolExhausted when the pool has
// fewer than i+1 colors.
func (p Pool) At(i int) (Color, error) {
	if i < 0 {
		return Color{}, fmt.Errorf("palette: negative index %d", i)
	}
	if i >= len(p) {
		return Color{}, fmt.Errorf("%w: index %d, %d colors available", ErrPoolExhausted, i, len(p))
	}
	return p[i], nil
}

// Reserve removes the first color of p and returns it with the remaining
// pool. p itself is not modified.
func Reserve(p Pool) (Color, Pool, error) {
	if len(p) == 0 {
		return Color{}, nil, fmt.Errorf("%w: nothing to reserve", ErrPoolExhausted)
	}
	rest := make(Pool, len(p)-1)
	copy(rest, p[1:])
	return p[0], rest, nil
}
