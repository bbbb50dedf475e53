package elfobj

import "debug/elf"

// Symbol is a symbol record. Section is the index of the section the symbol is
// defined in, or one of SHN_UNDEF, SHN_ABS and SHN_COMMON.
type Symbol struct {
	Name       string
	NameIndex  uint32
	Bind       elf.SymBind
	Type       elf.SymType
	Visibility elf.SymVis
	Section    uint16
	Value      uint64
	Size       uint64
}

func (s *Symbol) entry() elf.Sym64 {
	return elf.Sym64{
		Name:  s.NameIndex,
		Info:  elf.ST_INFO(s.Bind, s.Type),
		Other: uint8(s.Visibility) & 0x3,
		Shndx: s.Section,
		Value: s.Value,
		Size:  s.Size,
	}
}

// SymbolTable keeps locals strictly before non-locals. The null symbol is inserted
// on first use, so an empty table has no entries at all.
type SymbolTable struct {
	names       *StringTable
	entries     []Symbol
	firstGlobal int
	hasGlobal   bool
}

func newSymbolTable(names *StringTable) *SymbolTable {
	return &SymbolTable{names: names}
}

// Add appends sym and returns its index. A local symbol after any global or weak
// symbol is rejected and leaves the table untouched.
func (t *SymbolTable) Add(sym Symbol) (uint32, error) {
	if sym.Bind == elf.STB_LOCAL && t.hasGlobal {
		return 0, orderError("AddSymbol", "local symbol %q added after first global symbol (index %d)", sym.Name, t.firstGlobal)
	}

	if len(t.entries) == 0 {
		t.entries = append(t.entries, Symbol{NameIndex: t.names.Intern("")})
	}

	sym.NameIndex = t.names.Intern(sym.Name)
	index := len(t.entries)
	t.entries = append(t.entries, sym)

	if sym.Bind != elf.STB_LOCAL && !t.hasGlobal {
		t.firstGlobal = index
		t.hasGlobal = true
	}
	return uint32(index), nil
}

// Len returns the number of symbols including the null symbol
func (t *SymbolTable) Len() int {
	return len(t.entries)
}

// At returns the symbol at index i
func (t *SymbolTable) At(i uint32) *Symbol {
	return &t.entries[i]
}

// FirstGlobal returns the index of the first non-local symbol, or Len() when all
// symbols are local. This is the value of the symbol table's sh_info.
func (t *SymbolTable) FirstGlobal() int {
	if t.hasGlobal {
		return t.firstGlobal
	}
	return len(t.entries)
}

// HasGlobal reports whether a global or weak symbol has been added
func (t *SymbolTable) HasGlobal() bool {
	return t.hasGlobal
}
