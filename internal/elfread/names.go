package elfread

import (
	"debug/elf"
	"fmt"
	"strings"
)

// Display names for the inspector. Values without a name print numerically.

func ClassName(c elf.Class) string {
	switch c {
	case elf.ELFCLASSNONE:
		return "Elf"
	case elf.ELFCLASS32:
		return "Elf32"
	case elf.ELFCLASS64:
		return "Elf64"
	default:
		return fmt.Sprintf("<unknown: %d>", uint8(c))
	}
}

func DataName(d elf.Data) string {
	switch d {
	case elf.ELFDATANONE:
		return "(unknown)"
	case elf.ELFDATA2LSB:
		return "2's complement, little endian"
	case elf.ELFDATA2MSB:
		return "2's complement, big endian"
	default:
		return fmt.Sprintf("<unknown: %d>", uint8(d))
	}
}

func OSABIName(abi elf.OSABI) string {
	switch abi {
	case elf.ELFOSABI_NONE:
		return "UNIX - System V"
	case elf.ELFOSABI_HPUX:
		return "UNIX - HP-UX"
	case elf.ELFOSABI_NETBSD:
		return "UNIX - NetBSD"
	case elf.ELFOSABI_LINUX:
		return "UNIX - GNU"
	case elf.ELFOSABI_SOLARIS:
		return "UNIX - Solaris"
	case elf.ELFOSABI_AIX:
		return "UNIX - AIX"
	case elf.ELFOSABI_IRIX:
		return "UNIX - IRIX"
	case elf.ELFOSABI_FREEBSD:
		return "UNIX - FreeBSD"
	case elf.ELFOSABI_OPENBSD:
		return "UNIX - OpenBSD"
	case elf.ELFOSABI_ARM:
		return "ARM"
	case elf.ELFOSABI_STANDALONE:
		return "Standalone App"
	default:
		return fmt.Sprintf("<unknown: %d>", uint8(abi))
	}
}

func TypeName(t elf.Type) string {
	switch t {
	case elf.ET_NONE:
		return "NONE"
	case elf.ET_REL:
		return "REL (Relocatable file)"
	case elf.ET_EXEC:
		return "EXEC (Executable file)"
	case elf.ET_DYN:
		return "DYN (Shared object file)"
	case elf.ET_CORE:
		return "CORE (Core file)"
	default:
		return fmt.Sprintf("<unknown: 0x%x>", uint16(t))
	}
}

// MachineName strips the EM_ prefix from the machine name
func MachineName(m elf.Machine) string {
	return strings.TrimPrefix(m.String(), "EM_")
}

func SectionTypeName(t elf.SectionType) string {
	switch t {
	case elf.SHT_NULL:
		return "NULL"
	case elf.SHT_PROGBITS:
		return "PROGBITS"
	case elf.SHT_SYMTAB:
		return "SYMTAB"
	case elf.SHT_STRTAB:
		return "STRTAB"
	case elf.SHT_RELA:
		return "RELA"
	case elf.SHT_HASH:
		return "HASH"
	case elf.SHT_DYNAMIC:
		return "DYNAMIC"
	case elf.SHT_NOTE:
		return "NOTE"
	case elf.SHT_NOBITS:
		return "NOBITS"
	case elf.SHT_REL:
		return "REL"
	case elf.SHT_SHLIB:
		return "SHLIB"
	case elf.SHT_DYNSYM:
		return "DYNSYM"
	case elf.SHT_INIT_ARRAY:
		return "INIT_ARRAY"
	case elf.SHT_FINI_ARRAY:
		return "FINI_ARRAY"
	case elf.SHT_PREINIT_ARRAY:
		return "PREINIT_ARRAY"
	case elf.SHT_GROUP:
		return "GROUP"
	case elf.SHT_SYMTAB_SHNDX:
		return "SYMTAB_SHNDX"
	case elf.SectionType(19): // SHT_RELR; elf.SHT_RELR needs Go 1.22+
		return "RELR"
	default:
		return fmt.Sprintf("0x%x", uint32(t))
	}
}

// SectionFlagsName renders the common flags the way readelf does, e.g. "WAX"
func SectionFlagsName(flags elf.SectionFlag) string {
	var sb strings.Builder
	for _, f := range []struct {
		flag elf.SectionFlag
		c    byte
	}{
		{elf.SHF_WRITE, 'W'},
		{elf.SHF_ALLOC, 'A'},
		{elf.SHF_EXECINSTR, 'X'},
		{elf.SHF_MERGE, 'M'},
		{elf.SHF_STRINGS, 'S'},
		{elf.SHF_INFO_LINK, 'I'},
		{elf.SHF_LINK_ORDER, 'L'},
		{elf.SHF_GROUP, 'G'},
		{elf.SHF_TLS, 'T'},
	} {
		if flags&f.flag != 0 {
			sb.WriteByte(f.c)
		}
	}
	return sb.String()
}

func BindName(b elf.SymBind) string {
	switch b {
	case elf.STB_LOCAL:
		return "LOCAL"
	case elf.STB_GLOBAL:
		return "GLOBAL"
	case elf.STB_WEAK:
		return "WEAK"
	default:
		return fmt.Sprintf("%d", uint8(b))
	}
}

func SymTypeName(t elf.SymType) string {
	switch t {
	case elf.STT_NOTYPE:
		return "NOTYPE"
	case elf.STT_OBJECT:
		return "OBJECT"
	case elf.STT_FUNC:
		return "FUNC"
	case elf.STT_SECTION:
		return "SECTION"
	case elf.STT_FILE:
		return "FILE"
	case elf.STT_COMMON:
		return "COMMON"
	case elf.STT_TLS:
		return "TLS"
	default:
		return fmt.Sprintf("%d", uint8(t))
	}
}

func VisibilityName(v elf.SymVis) string {
	switch v {
	case elf.STV_DEFAULT:
		return "DEFAULT"
	case elf.STV_INTERNAL:
		return "INTERNAL"
	case elf.STV_HIDDEN:
		return "HIDDEN"
	case elf.STV_PROTECTED:
		return "PROTECTED"
	default:
		return fmt.Sprintf("%d", uint8(v))
	}
}

// SectionIndexName renders st_shndx, naming the reserved indices
func SectionIndexName(shndx uint16) string {
	switch elf.SectionIndex(shndx) {
	case elf.SHN_UNDEF:
		return "UND"
	case elf.SHN_ABS:
		return "ABS"
	case elf.SHN_COMMON:
		return "COM"
	case elf.SHN_XINDEX:
		return "XINDEX"
	default:
		return fmt.Sprintf("%d", shndx)
	}
}

// RelocTypeName names a relocation type for the machines debug/elf knows
func RelocTypeName(m elf.Machine, t uint32) string {
	switch m {
	case elf.EM_X86_64:
		return elf.R_X86_64(t).String()
	case elf.EM_AARCH64:
		return elf.R_AARCH64(t).String()
	case elf.EM_RISCV:
		return elf.R_RISCV(t).String()
	case elf.EM_PPC64:
		return elf.R_PPC64(t).String()
	case elf.EM_S390:
		return elf.R_390(t).String()
	case elf.EM_SPARCV9:
		return elf.R_SPARC(t).String()
	case elf.EM_LOONGARCH:
		return elf.R_LARCH(t).String()
	case elf.EM_MIPS:
		return elf.R_MIPS(t).String()
	default:
		return fmt.Sprintf("%d", t)
	}
}
