// Copyright (c) 2026 skyrake
// SPDX-License-Identifier: MIT

package janes

import "errors"

// Error taxonomy for the decoding core. Structural errors abort the
// decode of an asset immediately; content-level anomalies (bad spans)
// are reported through the package logger and decoding continues.
// All errors are recoverable by the caller; nothing here panics.
var (
	// ErrOutOfBounds is returned when a read would run past the end of
	// the input buffer, or when a declared block or relocation target
	// lies outside the asset.
	ErrOutOfBounds = errors.New("janes: read out of bounds")

	// ErrBadMagic is returned when the format marker of an asset does
	// not match any known variant for the declared game version.
	ErrBadMagic = errors.New("janes: bad magic")

	// ErrUnsupportedVariant is returned when header fields do not match
	// any known game-version layout.
	ErrUnsupportedVariant = errors.New("janes: unsupported layout variant")

	// ErrDimensionMismatch is returned when an image's decoded
	// dimensions disagree with the declared ones.
	ErrDimensionMismatch = errors.New("janes: dimension mismatch")

	// ErrMissingPalette is returned when resolved RGB output is
	// requested but neither an embedded nor an override palette exists.
	ErrMissingPalette = errors.New("janes: missing palette")

	// ErrBadSpan marks a span record that references pixels outside the
	// pixel block or outside the image bounds.
	ErrBadSpan = errors.New("janes: bad span")

	// ErrWrongSize is returned when a palette block is not exactly
	// 256 entries of 3 bytes.
	ErrWrongSize = errors.New("janes: wrong size")
)
