// Copyright (c) 2026 skyrake
// SPDX-License-Identifier: MIT

package janes

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func align512(n int) uint32 {
	return uint32((n + 511) &^ 511)
}

type peFixtureSection struct {
	name  string
	vaddr uint32
	vsize uint32 // only consulted for zero-fill sections
	data  []byte // nil marks a zero-fill section
}

// peBuilder assembles a synthetic wrapper: 64-byte DOS stub, "PL"
// signature at 64, COFF + optional + windows headers, 16 data
// directories, section table, then file-aligned raw section data
// starting at sizeOfHeaders.
type peBuilder struct {
	imageBase     uint32
	sizeOfHeaders uint32
	entryPoint    uint32
	baseOfCode    uint32
	sections      []peFixtureSection
	sourceRef     string
}

func (b *peBuilder) build() []byte {
	headers := b.sizeOfHeaders
	if headers == 0 {
		headers = 1024
	}

	type placed struct {
		peFixtureSection
		rawPtr, rawSize uint32
	}
	var (
		sections             []placed
		cur                  = headers
		sizeOfCode           uint32
		sizeOfInit           uint32
		idataVAddr, idataLen uint32
		relocVAddr, relocLen uint32
	)
	for _, s := range b.sections {
		p := placed{peFixtureSection: s}
		if s.data != nil {
			p.vsize = uint32(len(s.data))
			p.rawPtr = cur
			p.rawSize = align512(len(s.data))
			cur += p.rawSize
		}
		switch s.name {
		case "CODE", ".text":
			sizeOfCode += p.rawSize
		case ".idata":
			idataVAddr, idataLen = p.vaddr, p.vsize
			sizeOfInit += p.rawSize
		case ".reloc":
			relocVAddr, relocLen = p.vaddr, p.vsize
			sizeOfInit += p.rawSize
		default:
			sizeOfInit += p.rawSize
		}
		sections = append(sections, p)
	}

	buf := make([]byte, cur)
	pu16 := func(off int, v uint16) { binary.LittleEndian.PutUint16(buf[off:], v) }
	pu32 := func(off int, v uint32) { binary.LittleEndian.PutUint32(buf[off:], v) }

	// DOS stub.
	buf[0], buf[1] = 'M', 'Z'
	pu32(dosHeaderPointerOffset, 64)
	copy(buf[64:], "PL\x00\x00")

	// COFF header at 68.
	pu16(68, peMachineI386)
	pu16(70, uint16(len(sections)))
	pu16(84, peOptionalHeaderSize)
	pu16(86, peCOFFCharacteristics)

	// Optional header at 88.
	pu16(88, peOptionalMagic)
	pu32(92, sizeOfCode)
	pu32(96, sizeOfInit)
	pu32(104, b.entryPoint)
	pu32(108, b.baseOfCode)

	// Windows header at 116.
	pu32(116, b.imageBase)
	pu32(120, peSectionAlignment)
	pu32(124, peFileAlignment)
	var extent uint32
	for _, p := range sections {
		if p.name == ".reloc" {
			continue
		}
		if end := p.vaddr + p.vsize; end > extent {
			extent = end
		}
	}
	pu32(144, extent)  // SizeOfImage
	pu32(148, headers) // SizeOfHeaders
	pu16(156, peSubsystem)
	pu32(168, 0x100000) // heap reserve
	pu32(172, 4096)     // heap commit
	pu32(180, peDataDirectoryCount)

	// Data directories at 184: imports and base relocations.
	if idataVAddr != 0 {
		pu32(184+1*8, idataVAddr)
		pu32(184+1*8+4, idataLen)
	}
	if relocVAddr != 0 {
		pu32(184+5*8, relocVAddr)
		pu32(184+5*8+4, relocLen)
	}

	// Section table at 312, raw data at sizeOfHeaders.
	for i, p := range sections {
		off := 312 + 40*i
		copy(buf[off:off+8], p.name)
		pu32(off+8, p.vsize)
		pu32(off+12, p.vaddr)
		pu32(off+16, p.rawSize)
		pu32(off+20, p.rawPtr)
		pu32(off+36, sectionFlagTable[p.name])
		if p.data != nil {
			copy(buf[p.rawPtr:], p.data)
		}
	}

	if b.sourceRef != "" {
		buf = append(buf, b.sourceRef...)
		buf = append(buf, 0)
	}
	return buf
}

// relocData encodes one base-relocation block covering the given
// virtual addresses (all within one page), plus the zero sentinel.
func relocData(vaddrs []uint32) []byte {
	page := vaddrs[0] &^ 0xFFF
	size := uint32(8 + 2*len(vaddrs))
	out := make([]byte, 0, size+8)
	var rec [4]byte
	binary.LittleEndian.PutUint32(rec[:], page)
	out = append(out, rec[:]...)
	binary.LittleEndian.PutUint32(rec[:], size)
	out = append(out, rec[:]...)
	for _, v := range vaddrs {
		var e [2]byte
		binary.LittleEndian.PutUint16(e[:], 0x3000|uint16(v&0xFFF))
		out = append(out, e[:]...)
	}
	out = append(out, make([]byte, 8)...) // sentinel
	return out
}

// idataContent lays out a single main.dll import directory with
// parallel lookup and thunk tables for the given hook names.
func idataContent(vaddr uint32, imports []string) (content []byte, thunkTable uint32) {
	n := len(imports)
	lutOff := uint32(40) // two 20-byte directory entries
	thunkOff := lutOff + uint32(4*(n+1))
	dllOff := thunkOff + uint32(4*(n+1))
	nameOff := dllOff + uint32(len("main.dll")+1)

	nameRVAs := make([]uint32, n)
	var names []byte
	for i, imp := range imports {
		nameRVAs[i] = vaddr + nameOff + uint32(len(names))
		names = append(names, 0, 0) // hint
		names = append(names, imp...)
		names = append(names, 0)
	}

	content = make([]byte, int(nameOff)+len(names))
	pu32 := func(off uint32, v uint32) { binary.LittleEndian.PutUint32(content[off:], v) }
	// Directory entry: lookup table, dll name, thunk table.
	pu32(0, vaddr+lutOff)
	pu32(12, vaddr+dllOff)
	pu32(16, vaddr+thunkOff)
	for i, rva := range nameRVAs {
		pu32(lutOff+uint32(4*i), rva)
		pu32(thunkOff+uint32(4*i), rva)
	}
	copy(content[dllOff:], "main.dll\x00")
	copy(content[nameOff:], names)
	return content, vaddr + thunkOff
}

func TestParsePEClassic(t *testing.T) {
	code := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	b := peBuilder{
		entryPoint: 4096,
		baseOfCode: 4096,
		sections: []peFixtureSection{
			{name: "CODE", vaddr: 4096, data: code},
		},
	}
	pe, err := ParsePE(b.build(), USNF)
	if err != nil {
		t.Fatalf("ParsePE: %v", err)
	}
	if pe.Version != USNF {
		t.Errorf("version = %v, want USNF", pe.Version)
	}
	if pe.EntryPoint != 4096 {
		t.Errorf("entry point = 0x%X, want 0x1000", pe.EntryPoint)
	}
	if len(pe.Image) != 4096+len(code) {
		t.Fatalf("image is %d bytes, want %d", len(pe.Image), 4096+len(code))
	}
	if !bytes.Equal(pe.Image[:4096], make([]byte, 4096)) {
		t.Errorf("header gap not zero-filled")
	}
	if !bytes.Equal(pe.Image[4096:], code) {
		t.Errorf("code not placed at its virtual offset")
	}
	sec := pe.Section("CODE")
	if sec == nil {
		t.Fatal("CODE section missing")
	}
	if !sec.IsCode() {
		t.Errorf("CODE section not flagged executable")
	}
	if len(pe.Relocs) != 0 {
		t.Errorf("relocs = %d, want none", len(pe.Relocs))
	}
}

func TestParsePERelocation(t *testing.T) {
	const imageBase = 0x10000
	// A pointer field at virtual address 4104 holding the absolute
	// address of the code section start.
	code := make([]byte, 16)
	binary.LittleEndian.PutUint32(code[8:], imageBase+4096)
	binary.LittleEndian.PutUint32(code[12:], 0xDEADBEEF) // not relocated

	b := peBuilder{
		imageBase:  imageBase,
		baseOfCode: 4096,
		sections: []peFixtureSection{
			{name: "CODE", vaddr: 4096, data: code},
			{name: ".reloc", vaddr: 8192, data: relocData([]uint32{4096 + 8})},
		},
	}
	pe, err := ParsePE(b.build(), FightersAnthology)
	if err != nil {
		t.Fatalf("ParsePE: %v", err)
	}
	if len(pe.Relocs) != 1 || pe.Relocs[0].VAddr != 4104 {
		t.Fatalf("relocs = %+v, want one at 0x1008", pe.Relocs)
	}
	// The field now addresses the synthesized image directly: the
	// code section starts at offset 4096 of a zero-based image.
	if got := binary.LittleEndian.Uint32(pe.Image[4104:]); got != 4096 {
		t.Errorf("relocated field = 0x%X, want 0x1000", got)
	}
	if got := binary.LittleEndian.Uint32(pe.Image[4108:]); got != 0xDEADBEEF {
		t.Errorf("unlisted field rewritten to 0x%X", got)
	}
	// The discardable .reloc section is not mapped.
	if len(pe.Image) != 4096+len(code) {
		t.Errorf("image is %d bytes, want %d (.reloc unmapped)", len(pe.Image), 4096+len(code))
	}
}

func TestParsePERelocationIdempotentInput(t *testing.T) {
	code := make([]byte, 8)
	binary.LittleEndian.PutUint32(code, 0x10000+4096)
	b := peBuilder{
		imageBase:  0x10000,
		baseOfCode: 4096,
		sections: []peFixtureSection{
			{name: "CODE", vaddr: 4096, data: code},
			{name: ".reloc", vaddr: 8192, data: relocData([]uint32{4096})},
		},
	}
	data := b.build()
	first, err := ParsePE(data, ATFGold)
	if err != nil {
		t.Fatalf("first parse: %v", err)
	}
	// Relocation is applied to the synthesized copy, never the input.
	second, err := ParsePE(data, ATFGold)
	if err != nil {
		t.Fatalf("second parse: %v", err)
	}
	if !bytes.Equal(first.Image, second.Image) {
		t.Errorf("repeated parses of one buffer disagree")
	}
}

func TestParsePEImports(t *testing.T) {
	const idataVAddr = 8192
	content, thunkTable := idataContent(idataVAddr, []string{"_CurrentTicks", "_ShowMenu"})
	b := peBuilder{
		baseOfCode: 4096,
		sections: []peFixtureSection{
			{name: "CODE", vaddr: 4096, data: []byte{0x90, 0x90}},
			{name: ".idata", vaddr: idataVAddr, data: content},
		},
	}
	pe, err := ParsePE(b.build(), USNF)
	if err != nil {
		t.Fatalf("ParsePE: %v", err)
	}
	if len(pe.Thunks) != 2 {
		t.Fatalf("thunks = %d, want 2", len(pe.Thunks))
	}
	want := []Thunk{
		{Name: "_CurrentTicks", Ordinal: 0, VAddr: thunkTable},
		{Name: "_ShowMenu", Ordinal: 1, VAddr: thunkTable + 4},
	}
	for i, w := range want {
		if pe.Thunks[i] != w {
			t.Errorf("thunk %d = %+v, want %+v", i, pe.Thunks[i], w)
		}
	}
}

func TestParsePEBss(t *testing.T) {
	b := peBuilder{
		baseOfCode: 4096,
		sections: []peFixtureSection{
			{name: "CODE", vaddr: 4096, data: []byte{0xC3}},
			{name: ".bss", vaddr: 8192, vsize: 256},
		},
	}
	pe, err := ParsePE(b.build(), USNF)
	if err != nil {
		t.Fatalf("ParsePE: %v", err)
	}
	if len(pe.Image) != 8192+256 {
		t.Fatalf("image is %d bytes, want %d", len(pe.Image), 8192+256)
	}
	if !bytes.Equal(pe.Image[8192:], make([]byte, 256)) {
		t.Errorf(".bss region not zero-filled")
	}
	sec := pe.Section(".bss")
	if sec == nil {
		t.Fatal(".bss section missing")
	}
	if !sec.IsUninitialized() {
		t.Errorf(".bss not flagged uninitialized")
	}
}

func TestParsePESourceRef(t *testing.T) {
	b := peBuilder{
		baseOfCode: 4096,
		sections: []peFixtureSection{
			{name: "CODE", vaddr: 4096, data: []byte{0xC3}},
		},
		sourceRef: "v2:FA:F18.SH",
	}
	pe, err := ParsePE(b.build(), USNF)
	if err != nil {
		t.Fatalf("ParsePE: %v", err)
	}
	if pe.SourceRef != "v2:FA:F18.SH" {
		t.Errorf("source ref = %q, want %q", pe.SourceRef, "v2:FA:F18.SH")
	}
}

func TestParsePEBadMagic(t *testing.T) {
	b := peBuilder{
		baseOfCode: 4096,
		sections:   []peFixtureSection{{name: "CODE", vaddr: 4096, data: []byte{0xC3}}},
	}

	t.Run("no dos stub", func(t *testing.T) {
		data := b.build()
		data[0] = 'X'
		if _, err := ParsePE(data, USNF); !errors.Is(err, ErrBadMagic) {
			t.Errorf("got %v, want ErrBadMagic", err)
		}
	})

	t.Run("real pe signature", func(t *testing.T) {
		data := b.build()
		copy(data[64:], "PE\x00\x00")
		if _, err := ParsePE(data, USNF); !errors.Is(err, ErrBadMagic) {
			t.Errorf("got %v, want ErrBadMagic", err)
		}
	})
}

func TestParsePEUnsupportedVariant(t *testing.T) {
	base := func() peBuilder {
		return peBuilder{
			baseOfCode: 4096,
			sections:   []peFixtureSection{{name: "CODE", vaddr: 4096, data: []byte{0xC3}}},
		}
	}

	t.Run("wrong machine", func(t *testing.T) {
		b := base()
		data := b.build()
		binary.LittleEndian.PutUint16(data[68:], 0x8664)
		if _, err := ParsePE(data, USNF); !errors.Is(err, ErrUnsupportedVariant) {
			t.Errorf("got %v, want ErrUnsupportedVariant", err)
		}
	})

	t.Run("wrong subsystem", func(t *testing.T) {
		b := base()
		data := b.build()
		binary.LittleEndian.PutUint16(data[156:], 2)
		if _, err := ParsePE(data, USNF); !errors.Is(err, ErrUnsupportedVariant) {
			t.Errorf("got %v, want ErrUnsupportedVariant", err)
		}
	})

	t.Run("rerelease base under classic layout", func(t *testing.T) {
		b := base()
		b.imageBase = 0x10000
		data := b.build()
		if _, err := ParsePE(data, USNF); !errors.Is(err, ErrUnsupportedVariant) {
			t.Errorf("classic layout: got %v, want ErrUnsupportedVariant", err)
		}
		if _, err := ParsePE(data, FightersAnthology); err != nil {
			t.Errorf("rerelease layout: %v", err)
		}
	})

	t.Run("unknown section name", func(t *testing.T) {
		b := base()
		data := b.build()
		copy(data[312:320], "WEIRD\x00\x00\x00")
		if _, err := ParsePE(data, USNF); !errors.Is(err, ErrUnsupportedVariant) {
			t.Errorf("got %v, want ErrUnsupportedVariant", err)
		}
	})
}

func TestParsePEOutOfBounds(t *testing.T) {
	b := peBuilder{
		baseOfCode: 4096,
		sections:   []peFixtureSection{{name: "CODE", vaddr: 4096, data: []byte{0xC3}}},
	}

	t.Run("truncated section", func(t *testing.T) {
		data := b.build()
		// Push the raw pointer past the end of the buffer.
		binary.LittleEndian.PutUint32(data[312+20:], uint32(len(data)))
		if _, err := ParsePE(data, USNF); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("got %v, want ErrOutOfBounds", err)
		}
	})

	t.Run("section extent wraps", func(t *testing.T) {
		data := b.build()
		// A virtual address near the top of the 32-bit space wraps the
		// naive vaddr+vsize sum.
		binary.LittleEndian.PutUint32(data[312+12:], 0xFFFFFFF0)
		if _, err := ParsePE(data, USNF); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("got %v, want ErrOutOfBounds", err)
		}
	})

	t.Run("oversized extent", func(t *testing.T) {
		data := b.build()
		binary.LittleEndian.PutUint32(data[312+12:], 0x40000000)
		if _, err := ParsePE(data, USNF); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("got %v, want ErrOutOfBounds", err)
		}
	})

	t.Run("entry point outside image", func(t *testing.T) {
		c := b
		c.entryPoint = 0x100000
		if _, err := ParsePE(c.build(), USNF); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("got %v, want ErrOutOfBounds", err)
		}
	})
}

func TestParsePEUnknownVersion(t *testing.T) {
	b := peBuilder{
		baseOfCode: 4096,
		sections:   []peFixtureSection{{name: "CODE", vaddr: 4096, data: []byte{0xC3}}},
	}
	if _, err := ParsePE(b.build(), GameVersion(99)); !errors.Is(err, ErrUnsupportedVariant) {
		t.Errorf("got %v, want ErrUnsupportedVariant", err)
	}
}
