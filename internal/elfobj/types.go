// Completion: 100% - Types complete
package elfobj

import (
	"debug/elf"
	"fmt"
	"os"
)

// VerboseMode enables tracing of builder operations to stderr
var VerboseMode bool

// ELF64 structure sizes
const (
	HeaderSize        = 64 // elf.Header64
	SectionHeaderSize = 64 // elf.Section64
	SymbolSize        = 24 // elf.Sym64
	RelaSize          = 24 // elf.Rela64
)

// Names of the sections the builder adds by itself
const (
	relaPrefix   = ".rela"
	symtabName   = ".symtab"
	strtabName   = ".strtab"
	shstrtabName = ".shstrtab"
)

// maxSections is the section count at which extended section numbering would be
// needed, which this builder does not produce.
const maxSections = int(elf.SHN_LORESERVE)

// Phase is the lifecycle state of a Builder
type Phase int

const (
	PhaseOpen Phase = iota
	PhaseFinalized
	PhaseWritten
)

func (p Phase) String() string {
	switch p {
	case PhaseOpen:
		return "open"
	case PhaseFinalized:
		return "finalized"
	case PhaseWritten:
		return "written"
	default:
		return "unknown"
	}
}

// isSpecialSection reports whether shndx is a reserved index a symbol may refer to
// without a matching section header.
func isSpecialSection(shndx uint16) bool {
	switch elf.SectionIndex(shndx) {
	case elf.SHN_UNDEF, elf.SHN_ABS, elf.SHN_COMMON:
		return true
	}
	return false
}

func tracef(format string, args ...any) {
	if VerboseMode {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
