package elfobj

import "debug/elf"

// Section is a section descriptor under construction. Offset and Size are only
// final after Finalize; until then Offset of a data section is relative to the
// start of the code/data region.
type Section struct {
	Name      string
	NameIndex uint32
	Type      elf.SectionType
	Flags     elf.SectionFlag
	Link      uint32
	Info      uint32
	Addralign uint64
	Entsize   uint64
	Offset    uint64
	Size      uint64

	hasData bool
}

// header returns the on-disk form of the descriptor
func (s *Section) header() elf.Section64 {
	return elf.Section64{
		Name:      s.NameIndex,
		Type:      uint32(s.Type),
		Flags:     uint64(s.Flags),
		Off:       s.Offset,
		Size:      s.Size,
		Link:      s.Link,
		Info:      s.Info,
		Addralign: s.Addralign,
		Entsize:   s.Entsize,
	}
}

// SectionTable is the ordered list of section descriptors. Entry 0 is the
// reserved null section.
type SectionTable struct {
	names   *StringTable
	entries []Section
}

func newSectionTable(names *StringTable) *SectionTable {
	return &SectionTable{
		names:   names,
		entries: []Section{{Type: elf.SHT_NULL}},
	}
}

// Add appends a descriptor and returns its index
func (t *SectionTable) Add(name string, typ elf.SectionType, flags elf.SectionFlag) uint16 {
	s := Section{
		Name:      name,
		NameIndex: t.names.Intern(name),
		Type:      typ,
		Flags:     flags,
		Addralign: 1,
	}
	switch typ {
	case elf.SHT_SYMTAB, elf.SHT_RELA:
		s.Addralign = 8
	}
	t.entries = append(t.entries, s)
	return uint16(len(t.entries) - 1)
}

// setData appends data to the shared code/data region and records where it went
func (t *SectionTable) setData(index uint16, code *Region, data []byte) {
	s := &t.entries[index]
	s.Offset = code.Append(data)
	s.Size = uint64(len(data))
	s.hasData = true
}

// Len returns the number of sections including the null section
func (t *SectionTable) Len() int {
	return len(t.entries)
}

// At returns the descriptor at index i
func (t *SectionTable) At(i uint16) *Section {
	return &t.entries[i]
}

func (t *SectionTable) valid(i uint16) bool {
	return int(i) < len(t.entries)
}
