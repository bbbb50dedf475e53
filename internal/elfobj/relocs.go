package elfobj

import "debug/elf"

// Relocation is a pending RELA entry. Offset is relative to the start of the
// target section; Symbol is an index into the builder's symbol table.
type Relocation struct {
	Offset uint64
	Symbol uint32
	Type   uint32
	Addend int64
}

// Info packs the symbol index and relocation type into r_info
func (r Relocation) Info() uint64 {
	return uint64(r.Symbol)<<32 | uint64(r.Type)
}

func (r Relocation) entry() elf.Rela64 {
	return elf.Rela64{
		Off:    r.Offset,
		Info:   r.Info(),
		Addend: r.Addend,
	}
}

// relocSection ties a RELA section header to the entries that will fill it
type relocSection struct {
	index   uint16 // of the RELA section in the section table
	target  uint16
	entries []Relocation
}

// RelocationSet holds the pending entries of every relocation section in
// creation order. Entries are always appended to the most recently opened one.
type RelocationSet struct {
	sections []*relocSection
	current  *relocSection
}

func (rs *RelocationSet) open(index, target uint16) {
	rs.current = &relocSection{index: index, target: target}
	rs.sections = append(rs.sections, rs.current)
}

func (rs *RelocationSet) add(r Relocation) bool {
	if rs.current == nil {
		return false
	}
	rs.current.entries = append(rs.current.entries, r)
	return true
}

// Len returns the number of relocation sections
func (rs *RelocationSet) Len() int {
	return len(rs.sections)
}

// Count returns the total number of pending entries over all sections
func (rs *RelocationSet) Count() int {
	n := 0
	for _, s := range rs.sections {
		n += len(s.entries)
	}
	return n
}

// Entries returns the entries recorded for the relocation section with the
// given section index
func (rs *RelocationSet) Entries(index uint16) []Relocation {
	for _, s := range rs.sections {
		if s.index == index {
			return s.entries
		}
	}
	return nil
}
