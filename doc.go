// Copyright (c) 2026 skyrake
// SPDX-License-Identifier: MIT

/*
Package janes decodes the proprietary binary asset formats of the
mid-90s Jane's Combat Simulations flight-sim engine (U.S. Navy
Fighters through Fighters Anthology), so that a modern re-implementation
can load original game data.

Two format families are covered: the "PE-style" relocatable wrapper
shared by shapes, fonts, layout tables, dialogs and menus, and the PIC
image container (palettized textures with optional sparse-span
compression and embedded JPEG).

# Features

  - Bit-exact decoding of the PE-style wrapper: section model, import
    thunks, and relocation fix-up rewritten to position-independent,
    image-relative addressing
  - PIC decoding for dense rasters, sparse span lists (best-effort on
    corrupt spans) and embedded JPEG payloads
  - 256-entry 6-bit VGA palette model with 8-bit expansion and the
    engine's transparent-index convention
  - Per-game-version layout dispatch covering all seven releases of
    the engine

# Basic Usage

Decoding a texture with the game's system palette:

	palette, err := janes.NewPalette(palData)
	if err != nil {
		log.Fatal(err)
	}
	img, err := janes.DecodePIC(picData, janes.DecodeOptions{Palette: palette})
	if err != nil {
		log.Fatal(err)
	}
	rgba, err := img.RGBA()

Decoding a wrapped asset for further interpretation:

	pe, err := janes.ParsePE(shData, janes.FightersAnthology)
	if err != nil {
		log.Fatal(err)
	}
	// pe.Image is relocation-free; pointers are offsets into it.

Or let the dispatch table pick the decoder:

	asset, err := janes.Decode(raw, "PIC", janes.ATFGold, janes.DecodeOptions{})

# Concurrency

All decoding is synchronous and side-effect-free: each call reads one
immutable input buffer and returns an owned result. Decodes of
independent assets may run in parallel; a Palette may be shared
read-only across them.

# Limitations

This package is the decoding core only:

  - No LIB archive decompression or file lookup (supply raw bytes)
  - No interpretation of shape/menu code beyond relocation (the
    embedded instruction stream is the caller's concern)
  - No image export encoders
  - No support for formats still unresearched (video, compiled AI,
    sound)
*/
package janes
