// Copyright (c) 2026 skyrake
// SPDX-License-Identifier: MIT

package janes

import "fmt"

// Asset is the decoded form of one raw asset, with exactly one of the
// payload fields set according to Kind.
type Asset struct {
	Kind    AssetKind
	PE      *PEImage
	Image   *DecodedImage
	Palette *Palette
}

// Decode is the front door: given a raw byte buffer (already extracted
// from an archive), its file extension and the game version it shipped
// with, select the layout variant and run the matching decoder. The
// result owns no part of data.
func Decode(data []byte, ext string, version GameVersion, opts DecodeOptions) (*Asset, error) {
	kind, err := KindForExtension(ext)
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindPEWrapped:
		layout, err := layoutFor(ext, version)
		if err != nil {
			return nil, err
		}
		pe, err := parsePE(data, layout)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", ext, err)
		}
		pe.Version = version
		return &Asset{Kind: kind, PE: pe}, nil
	case KindPIC:
		img, err := DecodePIC(data, opts)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", ext, err)
		}
		return &Asset{Kind: kind, Image: img}, nil
	case KindPalette:
		pal, err := NewPalette(data)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", ext, err)
		}
		return &Asset{Kind: kind, Palette: pal}, nil
	}
	return nil, fmt.Errorf("asset kind %d: %w", int(kind), ErrUnsupportedVariant)
}
