// Copyright (c) 2026 skyrake
// SPDX-License-Identifier: MIT

package janes

import (
	"errors"
	"testing"
)

func TestKindForExtension(t *testing.T) {
	tests := []struct {
		ext  string
		kind AssetKind
		err  error
	}{
		{"SH", KindPEWrapped, nil},
		{"sh", KindPEWrapped, nil},
		{".SH", KindPEWrapped, nil},
		{"FNT", KindPEWrapped, nil},
		{"LAY", KindPEWrapped, nil},
		{"DLG", KindPEWrapped, nil},
		{"MNU", KindPEWrapped, nil},
		{"pic", KindPIC, nil},
		{".pal", KindPalette, nil},
		{"BIN", 0, ErrUnsupportedVariant},
		{"VDO", 0, ErrUnsupportedVariant},
		{"", 0, ErrUnsupportedVariant},
	}
	for _, test := range tests {
		t.Run(test.ext, func(t *testing.T) {
			kind, err := KindForExtension(test.ext)
			if test.err != nil {
				if !errors.Is(err, test.err) {
					t.Fatalf("got %v, want %v", err, test.err)
				}
				return
			}
			if err != nil {
				t.Fatalf("KindForExtension: %v", err)
			}
			if kind != test.kind {
				t.Errorf("kind = %d, want %d", kind, test.kind)
			}
		})
	}
}

func TestLayoutFor(t *testing.T) {
	classic := []GameVersion{USNF, MarineFighters, ATF, ATFNato}
	rerelease := []GameVersion{USNF97, ATFGold, FightersAnthology}
	for _, v := range classic {
		layout, err := layoutFor("SH", v)
		if err != nil {
			t.Fatalf("layoutFor(SH, %v): %v", v, err)
		}
		if layout != peLayoutClassic {
			t.Errorf("%v resolved to the rerelease layout", v)
		}
	}
	for _, v := range rerelease {
		layout, err := layoutFor("SH", v)
		if err != nil {
			t.Fatalf("layoutFor(SH, %v): %v", v, err)
		}
		if layout != peLayoutRerelease {
			t.Errorf("%v resolved to the classic layout", v)
		}
	}

	if _, err := layoutFor("PIC", USNF); !errors.Is(err, ErrUnsupportedVariant) {
		t.Errorf("layoutFor on an unwrapped extension: got %v, want ErrUnsupportedVariant", err)
	}
	if _, err := layoutFor("SH", GameVersion(99)); !errors.Is(err, ErrUnsupportedVariant) {
		t.Errorf("layoutFor on an unknown version: got %v, want ErrUnsupportedVariant", err)
	}
}

func TestGameVersionMetadata(t *testing.T) {
	if s := FightersAnthology.String(); s != "Fighters Anthology" {
		t.Errorf("String = %q", s)
	}
	if y := USNF.Info().ReleaseYear; y != 1994 {
		t.Errorf("USNF release year = %d, want 1994", y)
	}
	if s := GameVersion(99).String(); s != "GameVersion(99)" {
		t.Errorf("unknown version String = %q", s)
	}
}

func TestDecodeDispatch(t *testing.T) {
	t.Run("palette", func(t *testing.T) {
		asset, err := Decode(rawPalette(), "PAL", FightersAnthology, DecodeOptions{})
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if asset.Kind != KindPalette || asset.Palette == nil {
			t.Fatalf("asset = %+v, want a palette", asset)
		}
		r, _, _ := asset.Palette.RGB(1)
		if r != 1<<2 {
			t.Errorf("entry 1 red = %d, want %d", r, 1<<2)
		}
	})

	t.Run("pic", func(t *testing.T) {
		b := picBuilder{format: 0, width: 2, height: 2, pixels: []byte{0, 1, 2, 3}}
		asset, err := Decode(b.build(), ".pic", ATFGold, DecodeOptions{})
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if asset.Kind != KindPIC || asset.Image == nil {
			t.Fatalf("asset = %+v, want an image", asset)
		}
		if asset.Image.Width != 2 || asset.Image.Height != 2 {
			t.Errorf("image size = %dx%d, want 2x2", asset.Image.Width, asset.Image.Height)
		}
	})

	t.Run("wrapped", func(t *testing.T) {
		pb := peBuilder{
			baseOfCode: 4096,
			sections:   []peFixtureSection{{name: "CODE", vaddr: 4096, data: []byte{0xC3}}},
		}
		asset, err := Decode(pb.build(), "SH", USNF, DecodeOptions{})
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if asset.Kind != KindPEWrapped || asset.PE == nil {
			t.Fatalf("asset = %+v, want a wrapped image", asset)
		}
		if asset.PE.Version != USNF {
			t.Errorf("version = %v, want USNF", asset.PE.Version)
		}
	})

	t.Run("unknown extension", func(t *testing.T) {
		if _, err := Decode(nil, "VDO", USNF, DecodeOptions{}); !errors.Is(err, ErrUnsupportedVariant) {
			t.Errorf("got %v, want ErrUnsupportedVariant", err)
		}
	})

	t.Run("bad payload", func(t *testing.T) {
		if _, err := Decode(make([]byte, 100), "PAL", USNF, DecodeOptions{}); !errors.Is(err, ErrWrongSize) {
			t.Errorf("got %v, want ErrWrongSize", err)
		}
	})
}
