// Copyright (c) 2026 skyrake
// SPDX-License-Identifier: MIT

package janes

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
)

// PICFormat is the container's pixel-encoding mode.
type PICFormat uint16

const (
	// PICDense stores a complete width*height raster of palette indices.
	PICDense PICFormat = 0

	// PICSparse stores a span list over a shared pixel block; pixels no
	// span covers are transparent.
	PICSparse PICFormat = 1

	// PICJPEG marks an asset whose entire payload is a JPEG stream.
	// The tag is a little-endian read of the JPEG start-of-image
	// marker, so there is no container header to slice off: the whole
	// buffer goes to the JPEG decoder. The detection rule is
	// asset-observed rather than documented.
	PICJPEG PICFormat = 0xD8FF
)

func (f PICFormat) String() string {
	switch f {
	case PICDense:
		return "dense"
	case PICSparse:
		return "sparse"
	case PICJPEG:
		return "jpeg"
	}
	return fmt.Sprintf("PICFormat(0x%04X)", uint16(f))
}

// picFormatFromWord maps the header's format tag to a decode path.
func picFormatFromWord(format uint16) (PICFormat, error) {
	switch PICFormat(format) {
	case PICDense, PICSparse, PICJPEG:
		return PICFormat(format), nil
	}
	return 0, fmt.Errorf("pic format 0x%04X: %w", format, ErrBadMagic)
}

// picHeader is the on-disk container header: a format tag followed by
// image dimensions and four (offset, size) block ranges. Packed, no
// padding, all fields little-endian.
type picHeader struct {
	Format         uint16 `struct:"uint16"`
	Width          uint32 `struct:"uint32"`
	Height         uint32 `struct:"uint32"`
	PixelsOffset   uint32 `struct:"uint32"`
	PixelsSize     uint32 `struct:"uint32"`
	PaletteOffset  uint32 `struct:"uint32"`
	PaletteSize    uint32 `struct:"uint32"`
	SpansOffset    uint32 `struct:"uint32"`
	SpansSize      uint32 `struct:"uint32"`
	RowheadsOffset uint32 `struct:"uint32"`
	RowheadsSize   uint32 `struct:"uint32"`
}

// spanBytes is the packed size of one span record.
const spanBytes = 10

// maxPixelCount caps the decoded raster size. Header dimensions are
// untrusted and a sparse raster is allocated before any pixel data is
// read, so the product must be bounded up front; shipped assets top
// out at 640x480.
const maxPixelCount = 1 << 26

// Span is one contiguous run of opaque pixels within a row of a
// sparse image: columns Start through End inclusive, sourced from the
// pixel block at Index. Spans may arrive in any order and may overlap;
// later records win.
type Span struct {
	Row   uint16 `struct:"uint16"`
	Start uint16 `struct:"uint16"`
	End   uint16 `struct:"uint16"`
	Index uint32 `struct:"uint32"`
}

// DecodedImage is the owned result of one PIC decode. For Dense and
// Sparse assets, Pixels holds width*height palette indices (sparse
// images are reconstructed with uncovered pixels at the transparent
// index). For JPEG assets, Pixels is nil and JPEG holds the decoded
// raster. Immutable after decode.
type DecodedImage struct {
	Format PICFormat
	Width  int
	Height int

	// Pixels is the per-pixel palette index raster, row-major.
	Pixels []byte

	// Spans preserves the sparse span list (minus its terminator
	// record) for consumers that composite runs directly.
	Spans []Span

	// Rowheads is the legacy precomputed row-offset table, retained as
	// inert provenance; direct indexing supersedes it.
	Rowheads []uint32

	// Palette resolves indices to color. Nil when the asset had no
	// embedded palette and the caller supplied no override.
	Palette *Palette

	// JPEG is the decoded raster for PICJPEG assets.
	JPEG image.Image

	// BadSpans counts span records that referenced pixels outside the
	// pixel block or image and were skipped.
	BadSpans int
}

// DecodeOptions adjusts a single PIC decode.
type DecodeOptions struct {
	// Palette is the override (system) palette used when the asset
	// declares no palette block, and the base that partial embedded
	// palettes are overlaid onto.
	Palette *Palette

	// WantWidth and WantHeight, when nonzero, assert the expected
	// dimensions. A decoded image that disagrees fails with
	// ErrDimensionMismatch. This is the only dimension check available
	// for JPEG assets, whose payload carries no container header.
	WantWidth  int
	WantHeight int
}

// DecodePIC decodes a PIC image container. Structural errors abort the
// decode; bad span records are reported and skipped, producing a
// best-effort image.
func DecodePIC(data []byte, opts DecodeOptions) (*DecodedImage, error) {
	c := NewCursor(data)

	// Sniff the format tag before committing to a decode path.
	tag, err := c.PeekU16()
	if err != nil {
		return nil, fmt.Errorf("pic format tag: %w", err)
	}
	format, err := picFormatFromWord(tag)
	if err != nil {
		return nil, err
	}
	if format == PICJPEG {
		return decodeEmbeddedJPEG(data, opts)
	}

	var header picHeader
	if err := c.ReadStruct(&header); err != nil {
		return nil, fmt.Errorf("pic header: %w", err)
	}
	if err := validateBlocks(c, &header); err != nil {
		return nil, err
	}

	pixels, err := c.block(header.PixelsOffset, header.PixelsSize)
	if err != nil {
		return nil, fmt.Errorf("pixel block: %w", err)
	}
	paletteRaw, err := c.block(header.PaletteOffset, header.PaletteSize)
	if err != nil {
		return nil, fmt.Errorf("palette block: %w", err)
	}
	spansRaw, err := c.block(header.SpansOffset, header.SpansSize)
	if err != nil {
		return nil, fmt.Errorf("span block: %w", err)
	}
	rowheadsRaw, err := c.block(header.RowheadsOffset, header.RowheadsSize)
	if err != nil {
		return nil, fmt.Errorf("rowhead block: %w", err)
	}

	palette, err := resolvePalette(paletteRaw, opts.Palette)
	if err != nil {
		return nil, err
	}
	rowheads, err := parseRowheads(rowheadsRaw)
	if err != nil {
		return nil, err
	}

	if n := uint64(header.Width) * uint64(header.Height); n > maxPixelCount {
		return nil, fmt.Errorf("pic dimensions %dx%d: %w",
			header.Width, header.Height, ErrDimensionMismatch)
	}

	img := &DecodedImage{
		Format:   format,
		Width:    int(header.Width),
		Height:   int(header.Height),
		Palette:  palette,
		Rowheads: rowheads,
	}
	if err := checkWantedSize(img, opts); err != nil {
		return nil, err
	}

	switch format {
	case PICDense:
		if uint64(header.Width)*uint64(header.Height) != uint64(header.PixelsSize) {
			return nil, fmt.Errorf("dense pic %dx%d with %d-byte pixel block: %w",
				header.Width, header.Height, header.PixelsSize, ErrDimensionMismatch)
		}
		img.Pixels = make([]byte, header.PixelsSize)
		copy(img.Pixels, pixels)
	case PICSparse:
		if err := decodeSpans(img, spansRaw, pixels); err != nil {
			return nil, err
		}
	}
	return img, nil
}

// validateBlocks checks that the four declared block ranges fit in the
// buffer and do not overlap one another.
func validateBlocks(c *Cursor, h *picHeader) error {
	type blockRange struct {
		name         string
		offset, size uint32
	}
	blocks := []blockRange{
		{"pixels", h.PixelsOffset, h.PixelsSize},
		{"palette", h.PaletteOffset, h.PaletteSize},
		{"spans", h.SpansOffset, h.SpansSize},
		{"rowheads", h.RowheadsOffset, h.RowheadsSize},
	}
	for _, b := range blocks {
		if _, err := c.block(b.offset, b.size); err != nil {
			return fmt.Errorf("%s block: %w", b.name, err)
		}
	}
	for i := 0; i < len(blocks); i++ {
		for j := i + 1; j < len(blocks); j++ {
			a, b := blocks[i], blocks[j]
			if a.size == 0 || b.size == 0 {
				continue
			}
			if a.offset < b.offset+b.size && b.offset < a.offset+a.size {
				return fmt.Errorf("%s and %s blocks overlap: %w", a.name, b.name, ErrOutOfBounds)
			}
		}
	}
	return nil
}

// resolvePalette builds the palette used to color this image: the
// embedded palette block overlaid (from entry 0) onto the caller's
// override palette. Embedded blocks may be partial; many assets carry
// only the low entries and inherit the rest from the system palette.
// Returns nil when no palette exists anywhere; raw index output is
// still valid then.
func resolvePalette(raw []byte, override *Palette) (*Palette, error) {
	if len(raw) == 0 {
		if override == nil {
			return nil, nil
		}
		return override, nil
	}
	if len(raw)%3 != 0 || len(raw) > PaletteBytes {
		return nil, fmt.Errorf("embedded palette of %d bytes: %w", len(raw), ErrWrongSize)
	}
	var base *Palette
	if override != nil {
		base = override.clone()
	} else {
		base = emptyPalette()
	}
	base.overlay(raw)
	return base, nil
}

func parseRowheads(raw []byte) ([]uint32, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("rowhead block of %d bytes: %w", len(raw), ErrOutOfBounds)
	}
	c := NewCursor(raw)
	out := make([]uint32, 0, len(raw)/4)
	for c.Remaining() > 0 {
		v, err := c.ReadU32()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// decodeSpans reconstructs a sparse raster: every pixel starts at the
// transparent index, then each span copies its run out of the pixel
// block. Later spans overwrite earlier ones at overlapping
// coordinates, matching the engine's sprite-style overdraw. The final
// record of the span table is a terminator and is not drawn. Invalid
// spans are reported and skipped.
func decodeSpans(img *DecodedImage, spansRaw, pixels []byte) error {
	if len(spansRaw)%spanBytes != 0 {
		return fmt.Errorf("span block of %d bytes: %w", len(spansRaw), ErrOutOfBounds)
	}
	img.Pixels = make([]byte, img.Width*img.Height)
	for i := range img.Pixels {
		img.Pixels[i] = TransparentIndex
	}

	count := len(spansRaw) / spanBytes
	if count > 0 {
		count-- // trailing terminator record
	}
	c := NewCursor(spansRaw)
	for i := 0; i < count; i++ {
		var span Span
		if err := c.ReadStruct(&span); err != nil {
			return err
		}
		img.Spans = append(img.Spans, span)
		if err := checkSpan(&span, img.Width, img.Height, len(pixels)); err != nil {
			img.BadSpans++
			logger.Warn().
				Int("span", i).
				Uint16("row", span.Row).
				Uint16("start", span.Start).
				Uint16("end", span.End).
				Uint32("index", span.Index).
				Err(err).
				Msg("skipping bad span")
			continue
		}
		run := int(span.End-span.Start) + 1
		dst := int(span.Row)*img.Width + int(span.Start)
		copy(img.Pixels[dst:dst+run], pixels[span.Index:int(span.Index)+run])
	}
	return nil
}

// checkSpan validates one span record against the image and pixel
// block bounds.
func checkSpan(s *Span, width, height, pixelBlock int) error {
	switch {
	case s.Start > s.End:
		return fmt.Errorf("start %d after end %d: %w", s.Start, s.End, ErrBadSpan)
	case int(s.Row) >= height:
		return fmt.Errorf("row %d in %d-row image: %w", s.Row, height, ErrBadSpan)
	case int(s.End) >= width:
		return fmt.Errorf("column %d in %d-column image: %w", s.End, width, ErrBadSpan)
	case int(s.Index)+int(s.End-s.Start)+1 > pixelBlock:
		return fmt.Errorf("run [%d:%d) in %d-byte pixel block: %w",
			s.Index, int(s.Index)+int(s.End-s.Start)+1, pixelBlock, ErrBadSpan)
	}
	return nil
}

// decodeEmbeddedJPEG handles the asset variant whose payload is a
// plain JPEG stream.
func decodeEmbeddedJPEG(data []byte, opts DecodeOptions) (*DecodedImage, error) {
	decoded, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("embedded jpeg: %w", err)
	}
	bounds := decoded.Bounds()
	img := &DecodedImage{
		Format: PICJPEG,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		JPEG:   decoded,
	}
	if err := checkWantedSize(img, opts); err != nil {
		return nil, err
	}
	return img, nil
}

func checkWantedSize(img *DecodedImage, opts DecodeOptions) error {
	if opts.WantWidth != 0 && opts.WantWidth != img.Width {
		return fmt.Errorf("width %d, want %d: %w", img.Width, opts.WantWidth, ErrDimensionMismatch)
	}
	if opts.WantHeight != 0 && opts.WantHeight != img.Height {
		return fmt.Errorf("height %d, want %d: %w", img.Height, opts.WantHeight, ErrDimensionMismatch)
	}
	return nil
}

// RGBA resolves the image to 8-bit RGBA. Indexed assets need a
// palette; without one the call fails with ErrMissingPalette (raw
// index access through Pixels never errors).
func (d *DecodedImage) RGBA() (*image.RGBA, error) {
	if d.Format == PICJPEG {
		out := image.NewRGBA(image.Rect(0, 0, d.Width, d.Height))
		b := d.JPEG.Bounds()
		for y := 0; y < d.Height; y++ {
			for x := 0; x < d.Width; x++ {
				out.Set(x, y, d.JPEG.At(b.Min.X+x, b.Min.Y+y))
			}
		}
		return out, nil
	}
	if d.Palette == nil {
		return nil, fmt.Errorf("resolving %s pic to rgba: %w", d.Format, ErrMissingPalette)
	}
	out := image.NewRGBA(image.Rect(0, 0, d.Width, d.Height))
	for i, idx := range d.Pixels {
		c := d.Palette.RGBA(idx)
		o := i * 4
		out.Pix[o] = c.R
		out.Pix[o+1] = c.G
		out.Pix[o+2] = c.B
		out.Pix[o+3] = c.A
	}
	return out, nil
}

// Image returns a paletted view of an indexed asset, or the decoded
// raster of a JPEG asset.
func (d *DecodedImage) Image() (image.Image, error) {
	if d.Format == PICJPEG {
		return d.JPEG, nil
	}
	if d.Palette == nil {
		return nil, fmt.Errorf("paletted view: %w", ErrMissingPalette)
	}
	out := image.NewPaletted(image.Rect(0, 0, d.Width, d.Height), d.Palette.ColorPalette())
	copy(out.Pix, d.Pixels)
	return out, nil
}
