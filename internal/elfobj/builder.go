// Completion: 100% - Builder complete
package elfobj

import (
	"debug/elf"
	"encoding/binary"
	"strings"
)

// builder.go - incremental construction of an ELF64 relocatable object
//
// Sections, symbols and relocations are added in any order the ELF rules allow
// (locals before globals, symbols before relocations). Nothing is placed in the
// file until Finalize, which computes every size first and then assigns all
// offsets in a single forward sweep. WriteTo then emits the regions in the
// fixed order header, code/data, relocations, symtab, strtab, shstrtab and
// section headers.

// Layout records where Finalize placed each region in the file
type Layout struct {
	CodeOffset     uint64
	CodeSize       uint64
	RelocOffset    uint64
	RelocSize      uint64
	SymtabIndex    uint16 // 0 when there are no symbols
	StrtabIndex    uint16
	ShstrtabIndex  uint16
	SectionHeaders uint64 // e_shoff
	SectionCount   uint16 // e_shnum
	End            uint64 // total file size
}

// Builder assembles one ELF64 ET_REL object. It is not safe for concurrent use.
type Builder struct {
	ident   [elf.EI_NIDENT]byte
	machine elf.Machine
	flags   uint32
	order   binary.ByteOrder

	code     *Region
	shstrtab *StringTable
	strtab   *StringTable
	sections *SectionTable
	symbols  *SymbolTable
	relocs   RelocationSet

	phase  Phase
	layout Layout
}

// New returns an empty builder for the given machine and OS/ABI. The object is
// little-endian unless SetByteOrder is called before Finalize.
func New(machine elf.Machine, osabi elf.OSABI) *Builder {
	b := &Builder{
		machine:  machine,
		order:    binary.LittleEndian,
		code:     NewRegion("code"),
		shstrtab: NewStringTable(shstrtabName),
		strtab:   NewStringTable(strtabName),
		phase:    PhaseOpen,
	}
	copy(b.ident[:], elf.ELFMAG)
	b.ident[elf.EI_CLASS] = byte(elf.ELFCLASS64)
	b.ident[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	b.ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)
	b.ident[elf.EI_OSABI] = byte(osabi)
	b.ident[elf.EI_ABIVERSION] = 0

	b.sections = newSectionTable(b.shstrtab)
	b.symbols = newSymbolTable(b.strtab)
	return b
}

// Phase returns the current lifecycle phase
func (b *Builder) Phase() Phase {
	return b.phase
}

func (b *Builder) mustBeOpen(op string) error {
	if b.phase != PhaseOpen {
		return invariantError(op, "builder is %s", b.phase)
	}
	return nil
}

func checkName(op, name string) error {
	if strings.IndexByte(name, 0) >= 0 {
		return invariantError(op, "name %q contains a NUL byte", name)
	}
	return nil
}

// SetByteOrder selects the data encoding of the object
func (b *Builder) SetByteOrder(order binary.ByteOrder) error {
	if err := b.mustBeOpen("SetByteOrder"); err != nil {
		return err
	}
	switch order {
	case binary.LittleEndian:
		b.ident[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	case binary.BigEndian:
		b.ident[elf.EI_DATA] = byte(elf.ELFDATA2MSB)
	default:
		return invariantError("SetByteOrder", "unsupported byte order %v", order)
	}
	b.order = order
	return nil
}

// ByteOrder returns the data encoding of the object
func (b *Builder) ByteOrder() binary.ByteOrder {
	return b.order
}

// SetFlags sets the processor-specific e_flags field
func (b *Builder) SetFlags(flags uint32) error {
	if err := b.mustBeOpen("SetFlags"); err != nil {
		return err
	}
	b.flags = flags
	return nil
}

// reservedSections is how many sections Finalize will add on top of the current ones
func (b *Builder) reservedSections() int {
	n := 1 // .shstrtab
	if b.symbols.Len() > 0 {
		n += 2 // .symtab and .strtab
	}
	return n
}

// AddSection appends a section header and returns its index
func (b *Builder) AddSection(name string, typ elf.SectionType, flags elf.SectionFlag) (uint16, error) {
	const op = "AddSection"
	if err := b.mustBeOpen(op); err != nil {
		return 0, err
	}
	if err := checkName(op, name); err != nil {
		return 0, err
	}
	switch typ {
	case elf.SHT_NULL, elf.SHT_SYMTAB, elf.SHT_STRTAB, elf.SHT_RELA:
		return 0, invariantError(op, "section type %v is managed by the builder", typ)
	}
	if b.sections.Len()+1+b.reservedSections() > maxSections {
		return 0, invariantError(op, "too many sections")
	}

	index := b.sections.Add(name, typ, flags)
	tracef("AddSection: [%d] %s %v flags=%v\n", index, name, typ, flags)
	return index, nil
}

// SetSectionData appends data to the code/data region and assigns it to the
// section. Each section takes data at most once.
func (b *Builder) SetSectionData(index uint16, data []byte) error {
	const op = "SetSectionData"
	if err := b.mustBeOpen(op); err != nil {
		return err
	}
	if index == 0 || !b.sections.valid(index) {
		return invariantError(op, "no section with index %d", index)
	}
	s := b.sections.At(index)
	switch s.Type {
	case elf.SHT_RELA, elf.SHT_SYMTAB, elf.SHT_STRTAB, elf.SHT_NOBITS:
		return invariantError(op, "section %q of type %v cannot hold data", s.Name, s.Type)
	}
	if s.hasData {
		return invariantError(op, "data of section %q already set", s.Name)
	}

	b.sections.setData(index, b.code, data)
	tracef("SetSectionData: [%d] %s %d bytes at region offset %d\n", index, s.Name, s.Size, s.Offset)
	return nil
}

// AddTextSection adds an executable .text section holding code
func (b *Builder) AddTextSection(code []byte) (uint16, error) {
	return b.addSectionWithData(".text", elf.SHF_ALLOC|elf.SHF_EXECINSTR, code)
}

// AddDataSection adds a writable .data section holding data
func (b *Builder) AddDataSection(data []byte) (uint16, error) {
	return b.addSectionWithData(".data", elf.SHF_ALLOC|elf.SHF_WRITE, data)
}

func (b *Builder) addSectionWithData(name string, flags elf.SectionFlag, data []byte) (uint16, error) {
	index, err := b.AddSection(name, elf.SHT_PROGBITS, flags)
	if err != nil {
		return 0, err
	}
	if err := b.SetSectionData(index, data); err != nil {
		return 0, err
	}
	return index, nil
}

// AddSymbolEntry appends a complete symbol record and returns its index
func (b *Builder) AddSymbolEntry(sym Symbol) (uint32, error) {
	const op = "AddSymbol"
	if err := b.mustBeOpen(op); err != nil {
		return 0, err
	}
	if err := checkName(op, sym.Name); err != nil {
		return 0, err
	}
	if !isSpecialSection(sym.Section) && !b.sections.valid(sym.Section) {
		return 0, invariantError(op, "symbol %q refers to missing section %d", sym.Name, sym.Section)
	}
	if b.symbols.Len() == 0 && b.sections.Len()+3 > maxSections {
		return 0, invariantError(op, "no room left for .symtab and .strtab")
	}

	index, err := b.symbols.Add(sym)
	if err != nil {
		return 0, err
	}
	tracef("AddSymbol: [%d] %s %v %v shndx=%d\n", index, sym.Name, sym.Bind, sym.Type, sym.Section)
	return index, nil
}

// AddSymbol appends a symbol with value and size 0
func (b *Builder) AddSymbol(section uint16, name string, bind elf.SymBind, typ elf.SymType) (uint32, error) {
	return b.AddSymbolEntry(Symbol{
		Name:    name,
		Bind:    bind,
		Type:    typ,
		Section: section,
	})
}

// AddGlobal appends a global symbol. After the first global symbol no more
// locals can be added.
func (b *Builder) AddGlobal(section uint16, name string) (uint32, error) {
	return b.AddSymbol(section, name, elf.STB_GLOBAL, elf.STT_NOTYPE)
}

// AddFileSymbol appends the STT_FILE symbol naming the source file. By
// convention it is the first local symbol.
func (b *Builder) AddFileSymbol(name string) (uint32, error) {
	return b.AddSymbol(uint16(elf.SHN_ABS), name, elf.STB_LOCAL, elf.STT_FILE)
}

// AddSectionSymbol appends the nameless STT_SECTION symbol for a section, which
// relocations use to refer to the section's contents
func (b *Builder) AddSectionSymbol(section uint16) (uint32, error) {
	if section == 0 || !b.sections.valid(section) {
		return 0, invariantError("AddSectionSymbol", "no section with index %d", section)
	}
	return b.AddSymbol(section, "", elf.STB_LOCAL, elf.STT_SECTION)
}

// OpenRelocationSection adds a .rela<target> section. Relocations added after
// this call belong to it.
func (b *Builder) OpenRelocationSection(target uint16) (uint16, error) {
	const op = "OpenRelocationSection"
	if err := b.mustBeOpen(op); err != nil {
		return 0, err
	}
	if b.symbols.Len() == 0 {
		return 0, invariantError(op, "relocation section opened before any symbol was added")
	}
	if target == 0 || !b.sections.valid(target) {
		return 0, invariantError(op, "no target section with index %d", target)
	}
	t := b.sections.At(target)
	if t.Type == elf.SHT_RELA {
		return 0, invariantError(op, "target %q is itself a relocation section", t.Name)
	}
	if b.sections.Len()+1+b.reservedSections() > maxSections {
		return 0, invariantError(op, "too many sections")
	}

	index := b.sections.Add(relaPrefix+t.Name, elf.SHT_RELA, elf.SHF_INFO_LINK)
	s := b.sections.At(index)
	s.Entsize = RelaSize
	s.Info = uint32(target)
	b.relocs.open(index, target)
	tracef("OpenRelocationSection: [%d] %s -> [%d]\n", index, s.Name, target)
	return index, nil
}

// AddRelocation appends r to the most recently opened relocation section
func (b *Builder) AddRelocation(r Relocation) error {
	const op = "AddRelocation"
	if err := b.mustBeOpen(op); err != nil {
		return err
	}
	if b.relocs.current == nil {
		return invariantError(op, "no relocation section is open")
	}
	if int(r.Symbol) >= b.symbols.Len() {
		return invariantError(op, "relocation refers to missing symbol %d", r.Symbol)
	}
	b.relocs.add(r)
	tracef("AddRelocation: offset=0x%x sym=%d type=%d addend=%d\n", r.Offset, r.Symbol, r.Type, r.Addend)
	return nil
}

// Sections returns the section table. Callers must not modify it.
func (b *Builder) Sections() *SectionTable {
	return b.sections
}

// Symbols returns the symbol table. Callers must not modify it.
func (b *Builder) Symbols() *SymbolTable {
	return b.symbols
}

// Relocations returns the pending relocations
func (b *Builder) Relocations() *RelocationSet {
	return &b.relocs
}

// Layout returns the result of Finalize, and false before it has run
func (b *Builder) Layout() (Layout, bool) {
	return b.layout, b.phase != PhaseOpen
}

// Header returns the ELF header as it will be written. The section header
// fields are zero until Finalize.
func (b *Builder) Header() elf.Header64 {
	h := elf.Header64{
		Ident:     b.ident,
		Type:      uint16(elf.ET_REL),
		Machine:   uint16(b.machine),
		Version:   uint32(elf.EV_CURRENT),
		Flags:     b.flags,
		Ehsize:    HeaderSize,
		Shentsize: SectionHeaderSize,
	}
	if b.phase != PhaseOpen {
		h.Shoff = b.layout.SectionHeaders
		h.Shnum = b.layout.SectionCount
		h.Shstrndx = b.layout.ShstrtabIndex
	}
	return h
}
