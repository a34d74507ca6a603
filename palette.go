// Copyright (c) 2026 skyrake
// SPDX-License-Identifier: MIT

package janes

import (
	"fmt"
	"image/color"
)

const (
	// PaletteBytes is the size of a raw VGA palette block: 256 entries
	// of 3 bytes each.
	PaletteBytes = 256 * 3

	// TransparentIndex is the palette index the engine reserves for
	// transparency. Its entry is the magenta marker 0xFF00FF and is
	// never color-corrected.
	TransparentIndex = 0xFF
)

// Palette is a 256-entry VGA color table. Raw entries hold 6-bit
// channels which are expanded to 8 bits on load (v << 2); entry 0xFF
// is carried verbatim as the transparent marker. A Palette is
// immutable once constructed and safe to share across decodes.
type Palette struct {
	entries [256][3]uint8
}

// NewPalette parses a raw 768-byte palette block. Any other input
// length fails with ErrWrongSize.
func NewPalette(data []byte) (*Palette, error) {
	if len(data) != PaletteBytes {
		return nil, fmt.Errorf("palette block is %d bytes, want %d: %w",
			len(data), PaletteBytes, ErrWrongSize)
	}
	p := &Palette{}
	p.overlay(data)
	return p, nil
}

// GrayscalePalette returns a prescaled identity ramp, useful for
// inspecting palettized data when no real palette is at hand. The
// transparent entry keeps its marker color.
func GrayscalePalette() *Palette {
	p := &Palette{}
	for i := 0; i < 256; i++ {
		p.entries[i] = [3]uint8{uint8(i), uint8(i), uint8(i)}
	}
	p.entries[TransparentIndex] = [3]uint8{0xFF, 0x00, 0xFF}
	return p
}

// emptyPalette is the fallback base when a PIC carries a partial local
// palette and the caller supplied no override: black, with the
// transparent marker in place.
func emptyPalette() *Palette {
	p := &Palette{}
	p.entries[TransparentIndex] = [3]uint8{0xFF, 0x00, 0xFF}
	return p
}

// overlay expands raw 6-bit triples over the low entries of p. The
// block must be a whole number of triples; callers validate length.
// Entry 0xFF passes through unshifted.
func (p *Palette) overlay(data []byte) {
	n := len(data) / 3
	for i := 0; i < n && i < 256; i++ {
		r, g, b := data[i*3], data[i*3+1], data[i*3+2]
		if i == TransparentIndex {
			p.entries[i] = [3]uint8{r, g, b}
			continue
		}
		p.entries[i] = [3]uint8{r << 2, g << 2, b << 2}
	}
}

// clone returns an independent copy.
func (p *Palette) clone() *Palette {
	out := &Palette{}
	out.entries = p.entries
	return out
}

// RGB returns the expanded 8-bit channels of entry index.
func (p *Palette) RGB(index uint8) (r, g, b uint8) {
	e := p.entries[index]
	return e[0], e[1], e[2]
}

// RGBA returns entry index as a color. The transparent entry has
// alpha 0; all others are opaque.
func (p *Palette) RGBA(index uint8) color.RGBA {
	e := p.entries[index]
	a := uint8(0xFF)
	if index == TransparentIndex {
		a = 0
	}
	return color.RGBA{R: e[0], G: e[1], B: e[2], A: a}
}

// ColorPalette converts to a stdlib color.Palette for use with
// image.Paletted.
func (p *Palette) ColorPalette() color.Palette {
	out := make(color.Palette, 256)
	for i := 0; i < 256; i++ {
		out[i] = p.RGBA(uint8(i))
	}
	return out
}

// Bytes serializes back to the raw 6-bit wire format. The transparent
// entry is written verbatim.
func (p *Palette) Bytes() []byte {
	out := make([]byte, 0, PaletteBytes)
	for i, e := range p.entries {
		if i == TransparentIndex {
			out = append(out, e[0], e[1], e[2])
			continue
		}
		out = append(out, e[0]>>2, e[1]>>2, e[2]>>2)
	}
	return out
}
