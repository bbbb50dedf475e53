// Completion: 100% - Layout complete
package elfobj

import (
	"debug/elf"
	"fmt"
	"os"
)

// Finalize computes the file layout. It runs in two passes: the first adds the
// builder-managed sections and fixes every size and cross-reference, the second
// assigns file offsets in region order. No size depends on an offset, so one
// sweep is enough. Finalize may only run once; afterwards the builder is frozen.
func (b *Builder) Finalize() error {
	const op = "Finalize"
	if err := b.mustBeOpen(op); err != nil {
		return err
	}
	if b.sections.Len()+b.reservedSections() > maxSections {
		return invariantError(op, "too many sections")
	}

	var l Layout

	// Pass 1: sizes and links.
	hasSymbols := b.symbols.Len() > 0
	if hasSymbols {
		l.SymtabIndex = uint16(b.sections.Len())
		l.StrtabIndex = l.SymtabIndex + 1
	}

	for _, rs := range b.relocs.sections {
		s := b.sections.At(rs.index)
		s.Size = uint64(len(rs.entries)) * RelaSize
		s.Link = uint32(l.SymtabIndex)
		s.Info = uint32(rs.target)
		l.RelocSize += s.Size
	}

	if hasSymbols {
		symtab := b.sections.At(b.sections.Add(symtabName, elf.SHT_SYMTAB, 0))
		symtab.Entsize = SymbolSize
		symtab.Size = uint64(b.symbols.Len()) * SymbolSize
		symtab.Link = uint32(l.StrtabIndex)
		symtab.Info = uint32(b.symbols.FirstGlobal())

		// An object whose symbols are all nameless still needs the leading NUL.
		b.strtab.Intern("")
		strtab := b.sections.At(b.sections.Add(strtabName, elf.SHT_STRTAB, 0))
		strtab.Size = b.strtab.Len()
	}

	// The name of .shstrtab goes into .shstrtab itself, so intern it before
	// taking the size.
	l.ShstrtabIndex = b.sections.Add(shstrtabName, elf.SHT_STRTAB, 0)
	shstrtab := b.sections.At(l.ShstrtabIndex)
	shstrtab.Size = b.shstrtab.Len()
	l.SectionCount = uint16(b.sections.Len())

	// Pass 2: offsets, one region after the other.
	offset := uint64(HeaderSize)

	l.CodeOffset = offset
	l.CodeSize = b.code.Len()
	for i := 1; i < b.sections.Len(); i++ {
		s := b.sections.At(uint16(i))
		switch s.Type {
		case elf.SHT_RELA, elf.SHT_SYMTAB, elf.SHT_STRTAB:
			continue
		}
		if s.hasData {
			s.Offset += l.CodeOffset
		} else {
			s.Offset = l.CodeOffset
		}
	}
	offset += l.CodeSize

	l.RelocOffset = offset
	for _, rs := range b.relocs.sections {
		s := b.sections.At(rs.index)
		s.Offset = offset
		offset += s.Size
	}

	if hasSymbols {
		for _, index := range []uint16{l.SymtabIndex, l.StrtabIndex} {
			s := b.sections.At(index)
			s.Offset = offset
			offset += s.Size
		}
	}

	shstrtab.Offset = offset
	offset += shstrtab.Size

	l.SectionHeaders = offset
	l.End = offset + uint64(l.SectionCount)*SectionHeaderSize

	b.code.Commit()
	b.strtab.commit()
	b.shstrtab.commit()
	b.layout = l
	b.phase = PhaseFinalized

	if VerboseMode {
		b.dumpLayout(os.Stderr)
	}
	return nil
}

func (b *Builder) dumpLayout(f *os.File) {
	fmt.Fprintf(f, "=== ELF Layout (%d sections, %d bytes) ===\n", b.layout.SectionCount, b.layout.End)
	for i := 0; i < b.sections.Len(); i++ {
		s := b.sections.At(uint16(i))
		fmt.Fprintf(f, "  [%2d] %-16s %-14v offset=0x%x size=%d link=%d info=%d\n",
			i, s.Name, s.Type, s.Offset, s.Size, s.Link, s.Info)
	}
	fmt.Fprintf(f, "  section headers at 0x%x\n", b.layout.SectionHeaders)
}

// Validate checks the finalized layout: every section lies between the ELF header
// and the section header table, and every link and info field points at a
// section of the right type.
func (b *Builder) Validate() error {
	const op = "Validate"
	if b.phase == PhaseOpen {
		return invariantError(op, "layout not calculated")
	}

	for i := 1; i < b.sections.Len(); i++ {
		s := b.sections.At(uint16(i))
		if s.Offset < HeaderSize || s.Offset+s.Size > b.layout.SectionHeaders {
			return invariantError(op, "section %q [0x%x, +%d) outside the data area", s.Name, s.Offset, s.Size)
		}
		switch s.Type {
		case elf.SHT_SYMTAB:
			if t := b.sections.At(uint16(s.Link)); t.Type != elf.SHT_STRTAB {
				return invariantError(op, "%s links to %v, want SHT_STRTAB", s.Name, t.Type)
			}
		case elf.SHT_RELA:
			if !b.sections.valid(uint16(s.Link)) || b.sections.At(uint16(s.Link)).Type != elf.SHT_SYMTAB {
				return invariantError(op, "%s does not link to the symbol table", s.Name)
			}
			if s.Info == 0 || !b.sections.valid(uint16(s.Info)) {
				return invariantError(op, "%s targets missing section %d", s.Name, s.Info)
			}
		}
	}

	for i := 1; i < b.symbols.Len(); i++ {
		sym := b.symbols.At(uint32(i))
		if !isSpecialSection(sym.Section) && !b.sections.valid(sym.Section) {
			return invariantError(op, "symbol %q refers to missing section %d", sym.Name, sym.Section)
		}
	}
	return nil
}
