// Copyright (c) 2026 skyrake
// SPDX-License-Identifier: MIT

package janes

import (
	"fmt"
	"strings"
)

// The wrapper format is structurally a PE executable as emitted by the
// engine's asset compiler: DOS stub, a "PL" signature where a real PE
// has "PE", COFF + optional + windows headers with most fields pinned
// to fixed values, and a short section table. All multi-byte fields
// are little-endian.

// dosHeaderPointerOffset is where the DOS stub stores the u32 offset
// of the container signature.
const dosHeaderPointerOffset = 0x3C

// maxImageExtent caps the synthesized image size. Section headers are
// untrusted and drive the allocation directly; shipped assets stay
// well under a megabyte.
const maxImageExtent = 1 << 26

// Pinned COFF/optional header values shared by every variant.
const (
	peMachineI386         = 0x14C
	peCOFFCharacteristics = 0xA18E
	peOptionalHeaderSize  = 224
	peOptionalMagic       = 0x10B
	peSectionAlignment    = 4096
	peFileAlignment       = 512
	peSubsystem           = 66
	peDataDirectoryCount  = 16
)

// Section characteristics flags (the subset the asset compiler emits).
const (
	sectionContainsCode          = 0x00000020
	sectionContainsInitialized   = 0x00000040
	sectionContainsUninitialized = 0x00000080
	sectionMemDiscardable        = 0x02000000
	sectionMemExecute            = 0x20000000
	sectionMemRead               = 0x40000000
	sectionMemWrite              = 0x80000000
)

// Expected characteristics per section name.
var sectionFlagTable = map[string]uint32{
	"CODE":   sectionContainsCode | sectionMemExecute | sectionMemRead | sectionMemWrite,
	".text":  sectionContainsCode | sectionMemExecute | sectionMemRead | sectionMemWrite,
	".idata": sectionContainsInitialized | sectionMemRead | sectionMemWrite,
	".reloc": sectionContainsInitialized | sectionMemDiscardable | sectionMemRead,
	"$$DOSX": sectionContainsInitialized | sectionMemDiscardable | sectionMemRead,
	".bss":   sectionContainsUninitialized | sectionMemRead | sectionMemWrite,
}

// Wire layouts, decoded with the packed-struct reader.

type coffHeader struct {
	Machine              uint16 `struct:"uint16"`
	NumberOfSections     uint16 `struct:"uint16"`
	TimeDateStamp        uint32 `struct:"uint32"`
	PointerToSymbolTable uint32 `struct:"uint32"`
	NumberOfSymbols      uint32 `struct:"uint32"`
	SizeOfOptionalHeader uint16 `struct:"uint16"`
	Characteristics      uint16 `struct:"uint16"`
}

type optionalHeader struct {
	Magic                   uint16 `struct:"uint16"`
	MajorLinkerVersion      uint8  `struct:"uint8"`
	MinorLinkerVersion      uint8  `struct:"uint8"`
	SizeOfCode              uint32 `struct:"uint32"`
	SizeOfInitializedData   uint32 `struct:"uint32"`
	SizeOfUninitializedData uint32 `struct:"uint32"`
	AddressOfEntryPoint     uint32 `struct:"uint32"`
	BaseOfCode              uint32 `struct:"uint32"`
	BaseOfData              uint32 `struct:"uint32"`
}

type windowsHeader struct {
	ImageBase             uint32 `struct:"uint32"`
	SectionAlignment      uint32 `struct:"uint32"`
	FileAlignment         uint32 `struct:"uint32"`
	MajorOSVersion        uint16 `struct:"uint16"`
	MinorOSVersion        uint16 `struct:"uint16"`
	MajorImageVersion     uint16 `struct:"uint16"`
	MinorImageVersion     uint16 `struct:"uint16"`
	MajorSubsystemVersion uint16 `struct:"uint16"`
	MinorSubsystemVersion uint16 `struct:"uint16"`
	Win32VersionValue     uint32 `struct:"uint32"`
	SizeOfImage           uint32 `struct:"uint32"`
	SizeOfHeaders         uint32 `struct:"uint32"`
	Checksum              uint32 `struct:"uint32"`
	Subsystem             uint16 `struct:"uint16"`
	DLLCharacteristics    uint16 `struct:"uint16"`
	SizeOfStackReserve    uint32 `struct:"uint32"`
	SizeOfStackCommit     uint32 `struct:"uint32"`
	SizeOfHeapReserve     uint32 `struct:"uint32"`
	SizeOfHeapCommit      uint32 `struct:"uint32"`
	LoaderFlags           uint32 `struct:"uint32"`
	NumberOfRVAsAndSizes  uint32 `struct:"uint32"`
}

type dataDirectory struct {
	VirtualAddress uint32 `struct:"uint32"`
	Size           uint32 `struct:"uint32"`
}

type sectionHeader struct {
	Name                 [8]byte `struct:"[8]uint8"`
	VirtualSize          uint32  `struct:"uint32"`
	VirtualAddress       uint32  `struct:"uint32"`
	SizeOfRawData        uint32  `struct:"uint32"`
	PointerToRawData     uint32  `struct:"uint32"`
	PointerToRelocations uint32  `struct:"uint32"`
	PointerToLineNumbers uint32  `struct:"uint32"`
	NumberOfRelocations  uint16  `struct:"uint16"`
	NumberOfLineNumbers  uint16  `struct:"uint16"`
	Characteristics      uint32  `struct:"uint32"`
}

func (s *sectionHeader) name() string {
	raw := s.Name[:]
	if i := strings.IndexByte(string(raw), 0); i >= 0 {
		raw = raw[:i]
	}
	return string(raw)
}

type importDirectoryEntry struct {
	ImportLUTRVA   uint32 `struct:"uint32"`
	Timestamp      uint32 `struct:"uint32"`
	ForwarderChain uint32 `struct:"uint32"`
	NameRVA        uint32 `struct:"uint32"`
	ThunkTable     uint32 `struct:"uint32"`
}

func (e *importDirectoryEntry) isZero() bool {
	return e.ImportLUTRVA == 0 && e.Timestamp == 0 && e.ForwarderChain == 0 &&
		e.NameRVA == 0 && e.ThunkTable == 0
}

type baseRelocation struct {
	PageRVA   uint32 `struct:"uint32"`
	BlockSize uint32 `struct:"uint32"`
}

// PESection describes one section of a parsed wrapper.
type PESection struct {
	Name            string
	VirtualAddress  uint32
	VirtualSize     uint32
	RawOffset       uint32
	RawSize         uint32
	Characteristics uint32
}

// IsCode reports whether the section holds executable shape/menu code.
func (s *PESection) IsCode() bool {
	return s.Characteristics&sectionContainsCode != 0
}

// IsUninitialized reports whether the section is declared zero-fill
// (no raw bytes in the file).
func (s *PESection) IsUninitialized() bool {
	return s.Characteristics&sectionContainsUninitialized != 0
}

func (s *PESection) containsVAddr(v uint32) bool {
	return v >= s.VirtualAddress && uint64(v) < uint64(s.VirtualAddress)+uint64(s.VirtualSize)
}

// Thunk is an import entry: a named hook the embedded interpreter
// calls back into the engine through.
type Thunk struct {
	Name    string
	Ordinal uint32
	VAddr   uint32
}

// Relocation records one pointer-sized field that was rebased during
// parsing. VAddr is both the virtual address of the field and, because
// the synthesized image starts at address 0, its byte offset in Image.
type Relocation struct {
	VAddr uint32
}

// PEImage is the fully parsed, relocation-resolved wrapper. Image is
// the synthesized in-memory view: all loadable sections placed at
// their virtual offsets with address 0 at the start of the slice, and
// every relocated pointer field rewritten to that addressing. Callers
// (shape interpreter, font loader) interpret Image further.
type PEImage struct {
	Version    GameVersion
	ImageBase  uint32
	EntryPoint uint32
	Sections   []PESection
	Thunks     []Thunk
	Relocs     []Relocation
	Image      []byte

	// SourceRef is the asset-compiler source path some wrappers carry
	// after the last section, kept for provenance when present.
	SourceRef string
}

// Section returns the named section, or nil.
func (pe *PEImage) Section(name string) *PESection {
	for i := range pe.Sections {
		if pe.Sections[i].Name == name {
			return &pe.Sections[i]
		}
	}
	return nil
}

// ParsePE decodes a PE-wrapped asset (SH, FNT, LAY, DLG, MNU) for the
// given game version. The returned image is independent of data.
func ParsePE(data []byte, version GameVersion) (*PEImage, error) {
	layout, ok := peLayouts[version]
	if !ok {
		return nil, fmt.Errorf("game version %d: %w", int(version), ErrUnsupportedVariant)
	}
	pe, err := parsePE(data, layout)
	if err != nil {
		return nil, err
	}
	pe.Version = version
	return pe, nil
}

func parsePE(data []byte, layout *peLayout) (*PEImage, error) {
	c := NewCursor(data)

	if len(data) < dosHeaderPointerOffset+4 {
		return nil, fmt.Errorf("short DOS header: %w", ErrOutOfBounds)
	}
	if data[0] != 'M' || data[1] != 'Z' {
		return nil, fmt.Errorf("no DOS program header: %w", ErrBadMagic)
	}
	if err := c.Seek(dosHeaderPointerOffset); err != nil {
		return nil, err
	}
	peOffset, err := c.ReadU32()
	if err != nil {
		return nil, err
	}
	if err := c.Seek(int(peOffset)); err != nil {
		return nil, fmt.Errorf("container signature: %w", err)
	}
	sig, err := c.ReadBytes(4)
	if err != nil {
		return nil, fmt.Errorf("container signature: %w", err)
	}
	if !layout.allowsSignature(string(sig[:2])) || sig[2] != 0 || sig[3] != 0 {
		return nil, fmt.Errorf("container signature %q: %w", sig[:2], ErrBadMagic)
	}

	var coff coffHeader
	if err := c.ReadStruct(&coff); err != nil {
		return nil, fmt.Errorf("coff header: %w", err)
	}
	switch {
	case coff.Machine != peMachineI386:
		return nil, fmt.Errorf("machine 0x%X: %w", coff.Machine, ErrUnsupportedVariant)
	case coff.Characteristics != peCOFFCharacteristics:
		return nil, fmt.Errorf("coff characteristics 0x%X: %w", coff.Characteristics, ErrUnsupportedVariant)
	case coff.PointerToSymbolTable != 0 || coff.NumberOfSymbols != 0:
		return nil, fmt.Errorf("symbol table present: %w", ErrUnsupportedVariant)
	case coff.SizeOfOptionalHeader != peOptionalHeaderSize:
		return nil, fmt.Errorf("optional header size %d: %w", coff.SizeOfOptionalHeader, ErrUnsupportedVariant)
	}

	var opt optionalHeader
	if err := c.ReadStruct(&opt); err != nil {
		return nil, fmt.Errorf("optional header: %w", err)
	}
	switch {
	case opt.Magic != peOptionalMagic:
		return nil, fmt.Errorf("optional magic 0x%X: %w", opt.Magic, ErrUnsupportedVariant)
	case opt.SizeOfUninitializedData != 0:
		return nil, fmt.Errorf("declared uninitialized data: %w", ErrUnsupportedVariant)
	case !layout.allowsCodeBase(opt.BaseOfCode):
		return nil, fmt.Errorf("code base 0x%X: %w", opt.BaseOfCode, ErrUnsupportedVariant)
	}

	var win windowsHeader
	if err := c.ReadStruct(&win); err != nil {
		return nil, fmt.Errorf("windows header: %w", err)
	}
	switch {
	case !layout.allowsImageBase(win.ImageBase):
		return nil, fmt.Errorf("image base 0x%X: %w", win.ImageBase, ErrUnsupportedVariant)
	case win.SectionAlignment != peSectionAlignment:
		return nil, fmt.Errorf("section alignment %d: %w", win.SectionAlignment, ErrUnsupportedVariant)
	case win.FileAlignment != peFileAlignment:
		return nil, fmt.Errorf("file alignment %d: %w", win.FileAlignment, ErrUnsupportedVariant)
	case win.MajorImageVersion != 0 || win.MinorImageVersion != 0 || win.Win32VersionValue != 0:
		return nil, fmt.Errorf("image version set: %w", ErrUnsupportedVariant)
	case !layout.allowsHeaderSize(win.SizeOfHeaders):
		return nil, fmt.Errorf("header size %d: %w", win.SizeOfHeaders, ErrUnsupportedVariant)
	case win.Checksum != 0:
		return nil, fmt.Errorf("checksum set: %w", ErrUnsupportedVariant)
	case win.Subsystem != peSubsystem:
		return nil, fmt.Errorf("subsystem %d: %w", win.Subsystem, ErrUnsupportedVariant)
	case win.DLLCharacteristics != 0 || win.LoaderFlags != 0:
		return nil, fmt.Errorf("dll characteristics set: %w", ErrUnsupportedVariant)
	case win.SizeOfStackReserve != 0 || win.SizeOfStackCommit != 0:
		return nil, fmt.Errorf("stack declared: %w", ErrUnsupportedVariant)
	}

	// Data directories cross-reference the import and relocation
	// sections by virtual address.
	dirs := make([]dataDirectory, peDataDirectoryCount)
	for i := range dirs {
		if err := c.ReadStruct(&dirs[i]); err != nil {
			return nil, fmt.Errorf("data directory %d: %w", i, err)
		}
	}

	sectionTableOffset := int(peOffset) + 4 + 20 + int(coff.SizeOfOptionalHeader)
	if err := c.Seek(sectionTableOffset); err != nil {
		return nil, fmt.Errorf("section table: %w", err)
	}

	type rawSection struct {
		PESection
		data []byte // nil for zero-fill sections
	}
	var (
		sections  []rawSection
		maxRawEnd uint32
		hasCode   bool
	)
	for i := 0; i < int(coff.NumberOfSections); i++ {
		var sh sectionHeader
		if err := c.ReadStruct(&sh); err != nil {
			return nil, fmt.Errorf("section header %d: %w", i, err)
		}
		if sh.NumberOfRelocations != 0 || sh.PointerToRelocations != 0 {
			return nil, fmt.Errorf("section %d carries coff relocations: %w", i, ErrUnsupportedVariant)
		}
		if sh.NumberOfLineNumbers != 0 || sh.PointerToLineNumbers != 0 {
			return nil, fmt.Errorf("section %d carries line numbers: %w", i, ErrUnsupportedVariant)
		}

		name := sh.name()
		want, known := sectionFlagTable[name]
		if !known {
			return nil, fmt.Errorf("section name %q: %w", name, ErrUnsupportedVariant)
		}
		if sh.Characteristics != want {
			return nil, fmt.Errorf("section %q flags 0x%08X: %w", name, sh.Characteristics, ErrUnsupportedVariant)
		}
		if name == ".idata" && dirs[1].VirtualAddress != 0 && dirs[1].VirtualAddress != sh.VirtualAddress {
			return nil, fmt.Errorf(".idata directory mismatch: %w", ErrUnsupportedVariant)
		}
		if name == ".reloc" && dirs[5].VirtualAddress != 0 && dirs[5].VirtualAddress != sh.VirtualAddress {
			return nil, fmt.Errorf(".reloc directory mismatch: %w", ErrUnsupportedVariant)
		}

		sec := rawSection{
			PESection: PESection{
				Name:            name,
				VirtualAddress:  sh.VirtualAddress,
				VirtualSize:     sh.VirtualSize,
				RawOffset:       sh.PointerToRawData,
				RawSize:         sh.SizeOfRawData,
				Characteristics: sh.Characteristics,
			},
		}
		if !sec.IsUninitialized() {
			// The asset compiler file-aligns raw sections, so raw size
			// may exceed virtual size; read the virtual extent.
			end := uint64(sh.PointerToRawData) + uint64(sh.VirtualSize)
			if end > uint64(len(data)) {
				return nil, fmt.Errorf("section %q raw bytes [%d:%d) in %d-byte buffer: %w",
					name, sh.PointerToRawData, end, len(data), ErrOutOfBounds)
			}
			sec.data = data[sh.PointerToRawData:end]
			if rawEnd := sh.PointerToRawData + sh.SizeOfRawData; rawEnd > maxRawEnd {
				maxRawEnd = rawEnd
			}
		}

		if name == "$$DOSX" {
			// Fixed DOS-extender stub; sanity-check the tag and drop it.
			if len(sec.data) < 2 || sec.data[0] != 'D' || sec.data[1] != 'X' {
				return nil, fmt.Errorf("malformed DOSX stub: %w", ErrUnsupportedVariant)
			}
			continue
		}

		sections = append(sections, sec)
		if layout.allowsCodeSection(name) && sec.IsCode() {
			hasCode = true
		}
	}

	pe := &PEImage{
		ImageBase:  win.ImageBase,
		EntryPoint: opt.AddressOfEntryPoint,
	}

	// Synthesize the in-memory image: loadable sections at their
	// virtual offsets, gaps and uninitialized sections zero-filled.
	// Section ends are summed in uint64; the headers are untrusted and
	// a 32-bit sum can wrap.
	var extent uint64
	for i := range sections {
		sec := &sections[i]
		if sec.Name == ".reloc" {
			continue // discardable, not mapped
		}
		if end := uint64(sec.VirtualAddress) + uint64(sec.VirtualSize); end > extent {
			extent = end
		}
	}
	if extent > maxImageExtent {
		return nil, fmt.Errorf("image extent of %d bytes: %w", extent, ErrOutOfBounds)
	}
	pe.Image = make([]byte, extent)
	for i := range sections {
		sec := &sections[i]
		pe.Sections = append(pe.Sections, sec.PESection)
		if sec.Name == ".reloc" || sec.data == nil {
			continue
		}
		copy(pe.Image[sec.VirtualAddress:], sec.data)
	}

	if pe.EntryPoint != 0 && uint64(pe.EntryPoint) >= extent {
		return nil, fmt.Errorf("entry point 0x%X outside image: %w", pe.EntryPoint, ErrOutOfBounds)
	}

	// Imports, when present.
	for i := range sections {
		if sections[i].Name == ".idata" {
			thunks, err := parseThunks(&sections[i].PESection, sections[i].data)
			if err != nil {
				return nil, fmt.Errorf("parse imports: %w", err)
			}
			pe.Thunks = thunks
		}
	}

	// Relocations, when present.
	var relocSection *rawSection
	for i := range sections {
		if sections[i].Name == ".reloc" {
			relocSection = &sections[i]
		}
	}
	if relocSection != nil {
		relocs, err := parseRelocations(relocSection.data, pe.Sections)
		if err != nil {
			return nil, fmt.Errorf("parse relocations: %w", err)
		}
		pe.Relocs = relocs
	}
	if err := pe.applyRelocations(hasCode); err != nil {
		return nil, err
	}

	pe.SourceRef = readSourceRef(data, maxRawEnd)
	return pe, nil
}

// parseThunks decodes the .idata import directory: a single main.dll
// entry with parallel lookup and thunk tables.
func parseThunks(section *PESection, idata []byte) ([]Thunk, error) {
	c := NewCursor(idata)
	var dir, term importDirectoryEntry
	if err := c.ReadStruct(&dir); err != nil {
		return nil, err
	}
	if err := c.ReadStruct(&term); err != nil {
		return nil, err
	}
	if !term.isZero() {
		return nil, fmt.Errorf("more than one import directory entry: %w", ErrUnsupportedVariant)
	}
	if dir.Timestamp != 0 || dir.ForwarderChain != 0 {
		return nil, fmt.Errorf("import forwarding declared: %w", ErrUnsupportedVariant)
	}
	if !section.containsVAddr(dir.NameRVA) {
		return nil, fmt.Errorf("dll name rva 0x%X outside .idata: %w", dir.NameRVA, ErrOutOfBounds)
	}
	if err := c.Seek(int(dir.NameRVA - section.VirtualAddress)); err != nil {
		return nil, err
	}
	dllName, err := c.ReadCString()
	if err != nil {
		return nil, err
	}
	if dllName != "main.dll" {
		return nil, fmt.Errorf("import directory names %q: %w", dllName, ErrUnsupportedVariant)
	}

	if !section.containsVAddr(dir.ImportLUTRVA) || !section.containsVAddr(dir.ThunkTable) {
		return nil, fmt.Errorf("import tables outside .idata: %w", ErrOutOfBounds)
	}
	lut := NewCursor(idata)
	if err := lut.Seek(int(dir.ImportLUTRVA - section.VirtualAddress)); err != nil {
		return nil, err
	}
	thunkCursor := NewCursor(idata)
	if err := thunkCursor.Seek(int(dir.ThunkTable - section.VirtualAddress)); err != nil {
		return nil, err
	}

	var thunks []Thunk
	for ordinal := uint32(0); ; ordinal++ {
		lutEntry, err := lut.ReadU32()
		if err != nil {
			return nil, err
		}
		if lutEntry == 0 {
			break
		}
		thunkEntry, err := thunkCursor.ReadU32()
		if err != nil {
			return nil, err
		}
		if lutEntry != thunkEntry {
			return nil, fmt.Errorf("import name and thunk tables diverge at %d: %w", ordinal, ErrUnsupportedVariant)
		}
		if lutEntry>>31 != 0 {
			return nil, fmt.Errorf("ordinal-only import at %d: %w", ordinal, ErrUnsupportedVariant)
		}
		nameRVA := lutEntry & 0x7FFF_FFFF
		if !section.containsVAddr(nameRVA) {
			return nil, fmt.Errorf("import name rva 0x%X outside .idata: %w", nameRVA, ErrOutOfBounds)
		}
		nameCursor := NewCursor(idata)
		if err := nameCursor.Seek(int(nameRVA - section.VirtualAddress)); err != nil {
			return nil, err
		}
		hint, err := nameCursor.ReadU16()
		if err != nil {
			return nil, err
		}
		if hint != 0 {
			return nil, fmt.Errorf("import hint set at %d: %w", ordinal, ErrUnsupportedVariant)
		}
		name, err := nameCursor.ReadCString()
		if err != nil {
			return nil, err
		}
		thunks = append(thunks, Thunk{
			Name:    name,
			Ordinal: ordinal,
			VAddr:   dir.ThunkTable + ordinal*4,
		})
	}
	return thunks, nil
}

// parseRelocations walks the base-relocation blocks of the .reloc
// section. Each block is a page RVA plus u16 entries whose low 12 bits
// offset into the page; a zero block size is the terminating sentinel.
// Every resulting virtual address must land inside a declared section.
func parseRelocations(reloc []byte, sections []PESection) ([]Relocation, error) {
	c := NewCursor(reloc)
	var out []Relocation
	for c.Remaining() >= 8 {
		var block baseRelocation
		if err := c.ReadStruct(&block); err != nil {
			return nil, err
		}
		if block.BlockSize == 0 {
			break
		}
		if block.BlockSize < 8 || block.BlockSize%2 != 0 {
			return nil, fmt.Errorf("relocation block size %d: %w", block.BlockSize, ErrUnsupportedVariant)
		}
		count := (int(block.BlockSize) - 8) / 2
		for i := 0; i < count; i++ {
			entry, err := c.ReadU16()
			if err != nil {
				return nil, err
			}
			kind := entry >> 12
			if kind == 0 {
				continue // alignment padding
			}
			if kind != 3 {
				return nil, fmt.Errorf("relocation type %d: %w", kind, ErrUnsupportedVariant)
			}
			vaddr := block.PageRVA + uint32(entry&0x0FFF)
			if !vaddrInSections(vaddr, sections) {
				return nil, fmt.Errorf("relocation 0x%X outside all sections: %w", vaddr, ErrOutOfBounds)
			}
			out = append(out, Relocation{VAddr: vaddr})
		}
	}
	return out, nil
}

func vaddrInSections(v uint32, sections []PESection) bool {
	for i := range sections {
		if sections[i].Name == ".reloc" {
			continue
		}
		if sections[i].containsVAddr(v) {
			return true
		}
	}
	return false
}

// applyRelocations rewrites every relocated 32-bit field from the
// original load-address-dependent value to an address relative to the
// start of the synthesized image (address 0). The original values are
// image_base plus a virtual address, so the rebase is a single
// subtraction; the result is position-independent.
func (pe *PEImage) applyRelocations(hasCode bool) error {
	if len(pe.Relocs) > 0 && !hasCode {
		return fmt.Errorf("relocations without a code section: %w", ErrUnsupportedVariant)
	}
	for _, r := range pe.Relocs {
		off := int(r.VAddr)
		if off+4 > len(pe.Image) {
			return fmt.Errorf("relocation field at 0x%X outside image: %w", r.VAddr, ErrOutOfBounds)
		}
		v := uint32(pe.Image[off]) | uint32(pe.Image[off+1])<<8 |
			uint32(pe.Image[off+2])<<16 | uint32(pe.Image[off+3])<<24
		v -= pe.ImageBase
		pe.Image[off] = byte(v)
		pe.Image[off+1] = byte(v >> 8)
		pe.Image[off+2] = byte(v >> 16)
		pe.Image[off+3] = byte(v >> 24)
	}
	return nil
}

// readSourceRef scans the file tail past the last raw section for the
// NUL-terminated source path the asset compiler sometimes appends.
func readSourceRef(data []byte, from uint32) string {
	if from == 0 || int(from) >= len(data) {
		return ""
	}
	tail := data[from:]
	for i, b := range tail {
		if b == 0 {
			if i == 0 {
				return ""
			}
			return string(tail[:i])
		}
		if b < 0x20 || b > 0x7E {
			return ""
		}
	}
	return ""
}
