// Copyright (c) 2026 skyrake
// SPDX-License-Identifier: MIT

package janes

import (
	"fmt"
	"strings"
)

// GameVersion identifies which release of the engine produced an
// asset. The same engine shipped with several releases between 1994
// and 1998 whose binary layouts drifted subtly; the dispatch tables
// below select the layout variant for each one.
type GameVersion int

const (
	USNF              GameVersion = iota // U.S. Navy Fighters (1994)
	MarineFighters                       // USNF Expansion Disk: Marine Fighters (1995)
	ATF                                  // Jane's ATF: Advanced Tactical Fighters (1996)
	ATFNato                              // Jane's ATF: Nato Fighters (1996)
	USNF97                               // Jane's US Navy Fighters '97 (1996)
	ATFGold                              // Jane's ATF: Gold Edition (1997)
	FightersAnthology                    // Jane's Fighters Anthology (1998)
)

// String returns the short marketing name of the release.
func (v GameVersion) String() string {
	if info, ok := gameInfo[v]; ok {
		return info.Name
	}
	return fmt.Sprintf("GameVersion(%d)", int(v))
}

// GameInfo carries release metadata for a supported game version.
type GameInfo struct {
	Name        string
	LongName    string
	Developer   string
	Publisher   string
	ReleaseYear int
}

// Info returns the release metadata table entry for v.
func (v GameVersion) Info() GameInfo {
	return gameInfo[v]
}

var gameInfo = map[GameVersion]GameInfo{
	USNF: {
		Name:        "USNF",
		LongName:    "U.S. Navy Fighters",
		Developer:   "Electronic Arts Inc.",
		Publisher:   "Electronic Arts Inc.",
		ReleaseYear: 1994,
	},
	MarineFighters: {
		Name:        "Marine Fighters",
		LongName:    "U.S. Navy Fighters Expansion Disk: Marine Fighters",
		Developer:   "Electronic Arts Inc.",
		Publisher:   "Electronic Arts Inc.",
		ReleaseYear: 1995,
	},
	ATF: {
		Name:        "ATF",
		LongName:    "Jane's ATF: Advanced Tactical Fighters",
		Developer:   "Jane's Combat Simulations",
		Publisher:   "Electronic Arts Inc.",
		ReleaseYear: 1996,
	},
	ATFNato: {
		Name:        "ATF Nato",
		LongName:    "Jane's ATF: Nato Fighters",
		Developer:   "Jane's Combat Simulations",
		Publisher:   "Electronic Arts Inc.",
		ReleaseYear: 1996,
	},
	USNF97: {
		Name:        "USNF '97",
		LongName:    "Jane's US Navy Fighters '97",
		Developer:   "Jane's Combat Simulations",
		Publisher:   "Electronic Arts Inc.",
		ReleaseYear: 1996,
	},
	ATFGold: {
		Name:        "ATF Gold",
		LongName:    "Jane's ATF: Gold Edition",
		Developer:   "Jane's Combat Simulations",
		Publisher:   "Electronic Arts Inc.",
		ReleaseYear: 1997,
	},
	FightersAnthology: {
		Name:        "Fighters Anthology",
		LongName:    "Jane's Fighters Anthology",
		Developer:   "Jane's Combat Simulations",
		Publisher:   "Electronic Arts Inc.",
		ReleaseYear: 1998,
	},
}

// AssetKind classifies an asset by the decoder that handles it.
type AssetKind int

const (
	// KindPEWrapped assets use the shared relocatable-container format
	// (shapes, fonts, layout tables, dialogs, menus).
	KindPEWrapped AssetKind = iota

	// KindPIC assets are image containers.
	KindPIC

	// KindPalette assets are raw 768-byte VGA palettes.
	KindPalette
)

// assetKinds maps an uppercase file extension to its decoder. Video,
// compiled AI and sound formats are unresearched and deliberately
// absent.
var assetKinds = map[string]AssetKind{
	"SH":  KindPEWrapped,
	"FNT": KindPEWrapped,
	"LAY": KindPEWrapped,
	"DLG": KindPEWrapped,
	"MNU": KindPEWrapped,
	"PIC": KindPIC,
	"PAL": KindPalette,
}

// KindForExtension returns the decoder for a file extension (with or
// without a leading dot, any case), or ErrUnsupportedVariant for
// formats the core does not decode.
func KindForExtension(ext string) (AssetKind, error) {
	key := strings.ToUpper(strings.TrimPrefix(ext, "."))
	kind, ok := assetKinds[key]
	if !ok {
		return 0, fmt.Errorf("extension %q: %w", ext, ErrUnsupportedVariant)
	}
	return kind, nil
}

// peLayout is one tagged layout variant of the wrapper format. Each
// field is the closed set of values that variant tolerates; anything
// else is ErrUnsupportedVariant (or ErrBadMagic for the signature).
type peLayout struct {
	signatures   []string // accepted container signatures at the header pointer
	imageBases   []uint32
	headerSizes  []uint32
	codeBases    []uint32
	codeSections []string // accepted code section names
}

func (l *peLayout) allowsSignature(sig string) bool { return contains(l.signatures, sig) }
func (l *peLayout) allowsImageBase(v uint32) bool { return containsU32(l.imageBases, v) }
func (l *peLayout) allowsHeaderSize(v uint32) bool { return containsU32(l.headerSizes, v) }
func (l *peLayout) allowsCodeBase(v uint32) bool { return containsU32(l.codeBases, v) }
func (l *peLayout) allowsCodeSection(name string) bool { return contains(l.codeSections, name) }

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func containsU32(list []uint32, v uint32) bool {
	for _, u := range list {
		if u == v {
			return true
		}
	}
	return false
}

// The DOS-era releases emit one fixed shape; the '97-'98 re-releases
// relaxed the image base, header padding and section naming.
var (
	peLayoutClassic = &peLayout{
		signatures:   []string{"PL"},
		imageBases:   []uint32{0},
		headerSizes:  []uint32{1024},
		codeBases:    []uint32{4096},
		codeSections: []string{"CODE"},
	}
	peLayoutRerelease = &peLayout{
		signatures:   []string{"PL"},
		imageBases:   []uint32{0, 0x10000},
		headerSizes:  []uint32{512, 1024},
		codeBases:    []uint32{0, 4096},
		codeSections: []string{"CODE", ".text"},
	}
)

// peLayouts selects the wrapper variant per game version.
var peLayouts = map[GameVersion]*peLayout{
	USNF:              peLayoutClassic,
	MarineFighters:    peLayoutClassic,
	ATF:               peLayoutClassic,
	ATFNato:           peLayoutClassic,
	USNF97:            peLayoutRerelease,
	ATFGold:           peLayoutRerelease,
	FightersAnthology: peLayoutRerelease,
}

// layoutFor returns the wrapper layout variant for a PE-wrapped
// extension under the given game version.
func layoutFor(ext string, version GameVersion) (*peLayout, error) {
	kind, err := KindForExtension(ext)
	if err != nil {
		return nil, err
	}
	if kind != KindPEWrapped {
		return nil, fmt.Errorf("extension %q is not a wrapped asset: %w", ext, ErrUnsupportedVariant)
	}
	layout, ok := peLayouts[version]
	if !ok {
		return nil, fmt.Errorf("game version %d: %w", int(version), ErrUnsupportedVariant)
	}
	return layout, nil
}
