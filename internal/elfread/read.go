// Completion: 100% - Reader complete
package elfread

import (
	"bytes"
	"debug/elf"
	"encoding/binary"

	"github.com/pkg/errors"
)

// Sizes of the on-disk ELF64 records
const (
	headerSize        = 64
	sectionHeaderSize = 64
	symbolSize        = 24
	relaSize          = 24
)

// File is a read-only view of an ELF64 image. Every accessor checks the offsets
// it follows against the image, so a corrupt file yields errors, never panics.
type File struct {
	data     []byte
	order    binary.ByteOrder
	header   elf.Header64
	sections []elf.Section64
	release  func() error
}

// Parse decodes the ELF header and section header table of data. data is
// referenced, not copied, and must not change while the File is in use.
func Parse(data []byte) (*File, error) {
	if len(data) < len(elf.ELFMAG) || string(data[:len(elf.ELFMAG)]) != elf.ELFMAG {
		return nil, ErrNotELF
	}
	if len(data) < elf.EI_NIDENT {
		return nil, errors.Wrap(ErrMalformed, "truncated e_ident")
	}
	if class := elf.Class(data[elf.EI_CLASS]); class != elf.ELFCLASS64 {
		return nil, errors.Wrapf(ErrUnsupportedClass, "%v", class)
	}

	f := &File{data: data}
	switch elf.Data(data[elf.EI_DATA]) {
	case elf.ELFDATA2LSB:
		f.order = binary.LittleEndian
	case elf.ELFDATA2MSB:
		f.order = binary.BigEndian
	default:
		return nil, errors.Wrapf(ErrMalformed, "unknown data encoding %d", data[elf.EI_DATA])
	}

	if len(data) < headerSize {
		return nil, errors.Wrapf(ErrMalformed, "truncated header: %d bytes", len(data))
	}
	if err := binary.Read(bytes.NewReader(data[:headerSize]), f.order, &f.header); err != nil {
		return nil, errors.Wrap(ErrMalformed, err.Error())
	}

	if f.header.Shnum == 0 {
		return f, nil
	}
	if f.header.Shentsize != sectionHeaderSize {
		return nil, errors.Wrapf(ErrMalformed, "section header size %d", f.header.Shentsize)
	}
	sections, err := decodeTable[elf.Section64](f, f.header.Shoff, uint64(f.header.Shnum)*sectionHeaderSize)
	if err != nil {
		return nil, errors.Wrap(err, "section header table")
	}
	f.sections = sections
	return f, nil
}

// Close releases the memory backing a File returned by Open. It is a no-op for
// a File returned by Parse.
func (f *File) Close() error {
	if f.release == nil {
		return nil
	}
	release := f.release
	f.release = nil
	f.data = nil
	f.sections = nil
	return release()
}

// Len returns the size of the image in bytes
func (f *File) Len() int {
	return len(f.data)
}

// ByteOrder returns the data encoding of the file
func (f *File) ByteOrder() binary.ByteOrder {
	return f.order
}

// Header returns the ELF header
func (f *File) Header() elf.Header64 {
	return f.header
}

// NumSections returns the number of section headers
func (f *File) NumSections() int {
	return len(f.sections)
}

// Section returns the section header at index i
func (f *File) Section(i int) (elf.Section64, error) {
	if i < 0 || i >= len(f.sections) {
		return elf.Section64{}, errors.Wrapf(ErrOutOfBounds, "section index %d of %d", i, len(f.sections))
	}
	return f.sections[i], nil
}

// SectionName returns the name of section i from the section name string table
func (f *File) SectionName(i int) (string, error) {
	sh, err := f.Section(i)
	if err != nil {
		return "", err
	}
	return f.stringAt(int(f.header.Shstrndx), sh.Name)
}

// SectionData returns the contents of section i. SHT_NOBITS sections have none.
func (f *File) SectionData(i int) ([]byte, error) {
	sh, err := f.Section(i)
	if err != nil {
		return nil, err
	}
	if elf.SectionType(sh.Type) == elf.SHT_NOBITS {
		return nil, nil
	}
	return f.slice(sh.Off, sh.Size)
}

// SymbolTable returns the index of the first SHT_SYMTAB section
func (f *File) SymbolTable() (int, bool) {
	for i, sh := range f.sections {
		if elf.SectionType(sh.Type) == elf.SHT_SYMTAB {
			return i, true
		}
	}
	return 0, false
}

// Symbols decodes every entry of the symbol table section symtab, including the
// null symbol at index 0
func (f *File) Symbols(symtab int) ([]elf.Sym64, error) {
	sh, err := f.Section(symtab)
	if err != nil {
		return nil, err
	}
	if t := elf.SectionType(sh.Type); t != elf.SHT_SYMTAB && t != elf.SHT_DYNSYM {
		return nil, errors.Wrapf(ErrMalformed, "section %d is %v, not a symbol table", symtab, t)
	}
	if sh.Size%symbolSize != 0 {
		return nil, errors.Wrapf(ErrMalformed, "symbol table size %d is not a multiple of %d", sh.Size, symbolSize)
	}
	return decodeTable[elf.Sym64](f, sh.Off, sh.Size)
}

// SymbolName returns the name of sym, which belongs to the symbol table section
// symtab. Section symbols have no name of their own and are named after the
// section they refer to.
func (f *File) SymbolName(symtab int, sym elf.Sym64) (string, error) {
	if elf.ST_TYPE(sym.Info) == elf.STT_SECTION {
		return f.SectionName(int(sym.Shndx))
	}
	sh, err := f.Section(symtab)
	if err != nil {
		return "", err
	}
	return f.stringAt(int(sh.Link), sym.Name)
}

// RelocationSections returns the indices of all SHT_RELA sections in file order
func (f *File) RelocationSections() []int {
	var indices []int
	for i, sh := range f.sections {
		if elf.SectionType(sh.Type) == elf.SHT_RELA {
			indices = append(indices, i)
		}
	}
	return indices
}

// Relocations decodes the entries of the SHT_RELA section i
func (f *File) Relocations(i int) ([]elf.Rela64, error) {
	sh, err := f.Section(i)
	if err != nil {
		return nil, err
	}
	if t := elf.SectionType(sh.Type); t != elf.SHT_RELA {
		return nil, errors.Wrapf(ErrMalformed, "section %d is %v, not SHT_RELA", i, t)
	}
	if sh.Size%relaSize != 0 {
		return nil, errors.Wrapf(ErrMalformed, "relocation section size %d is not a multiple of %d", sh.Size, relaSize)
	}
	return decodeTable[elf.Rela64](f, sh.Off, sh.Size)
}

// slice returns data[off:off+size] after checking it lies inside the image
func (f *File) slice(off, size uint64) ([]byte, error) {
	n := uint64(len(f.data))
	if off > n || size > n-off {
		return nil, errors.Wrapf(ErrOutOfBounds, "range [%d, +%d) of a %d byte file", off, size, n)
	}
	return f.data[off : off+size], nil
}

// stringAt returns the NUL-terminated string at offset off of string table section
func (f *File) stringAt(section int, off uint32) (string, error) {
	sh, err := f.Section(section)
	if err != nil {
		return "", errors.Wrap(err, "string table")
	}
	if elf.SectionType(sh.Type) != elf.SHT_STRTAB {
		return "", errors.Wrapf(ErrMalformed, "section %d is not a string table", section)
	}
	table, err := f.slice(sh.Off, sh.Size)
	if err != nil {
		return "", err
	}
	if uint64(off) >= uint64(len(table)) {
		return "", errors.Wrapf(ErrOutOfBounds, "name offset %d in a %d byte string table", off, len(table))
	}
	end := bytes.IndexByte(table[off:], 0)
	if end < 0 {
		return "", errors.Wrapf(ErrMalformed, "unterminated name at offset %d", off)
	}
	return string(table[off : int(off)+end]), nil
}

// decodeTable decodes size bytes at off as consecutive fixed-size records
func decodeTable[T any](f *File, off, size uint64) ([]T, error) {
	raw, err := f.slice(off, size)
	if err != nil {
		return nil, err
	}
	var zero T
	count := len(raw) / binary.Size(zero)
	records := make([]T, count)
	if err := binary.Read(bytes.NewReader(raw), f.order, records); err != nil {
		return nil, errors.Wrap(ErrMalformed, err.Error())
	}
	return records, nil
}
