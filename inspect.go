// Completion: 100% - Inspector complete
package main

import (
	"debug/elf"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/xyproto/jingle/internal/elfread"
)

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	return table
}

func printHeader(w io.Writer, f *elfread.File) {
	h := f.Header()
	var magic strings.Builder
	for _, b := range h.Ident {
		fmt.Fprintf(&magic, "%02x ", b)
	}

	fmt.Fprintf(w, "ELF Header:\n")
	fmt.Fprintf(w, "  Magic:   %s\n", strings.TrimSpace(magic.String()))
	fmt.Fprintf(w, "  Class:                             %s\n", elfread.ClassName(elf.Class(h.Ident[elf.EI_CLASS])))
	fmt.Fprintf(w, "  Data:                              %s\n", elfread.DataName(elf.Data(h.Ident[elf.EI_DATA])))
	fmt.Fprintf(w, "  Version:                           %d\n", h.Ident[elf.EI_VERSION])
	fmt.Fprintf(w, "  OS/ABI:                            %s\n", elfread.OSABIName(elf.OSABI(h.Ident[elf.EI_OSABI])))
	fmt.Fprintf(w, "  ABI Version:                       %d\n", h.Ident[elf.EI_ABIVERSION])
	fmt.Fprintf(w, "  Type:                              %s\n", elfread.TypeName(elf.Type(h.Type)))
	fmt.Fprintf(w, "  Machine:                           %s\n", elfread.MachineName(elf.Machine(h.Machine)))
	fmt.Fprintf(w, "  Entry point address:               0x%x\n", h.Entry)
	fmt.Fprintf(w, "  Start of program headers:          %d (bytes into file)\n", h.Phoff)
	fmt.Fprintf(w, "  Start of section headers:          %d (bytes into file)\n", h.Shoff)
	fmt.Fprintf(w, "  Flags:                             0x%x\n", h.Flags)
	fmt.Fprintf(w, "  Size of this header:               %d (bytes)\n", h.Ehsize)
	fmt.Fprintf(w, "  Size of program headers:           %d (bytes)\n", h.Phentsize)
	fmt.Fprintf(w, "  Number of program headers:         %d\n", h.Phnum)
	fmt.Fprintf(w, "  Size of section headers:           %d (bytes)\n", h.Shentsize)
	fmt.Fprintf(w, "  Number of section headers:         %d\n", h.Shnum)
	fmt.Fprintf(w, "  Section header string table index: %d\n", h.Shstrndx)
}

func printSections(w io.Writer, f *elfread.File) error {
	fmt.Fprintf(w, "\nSection header table contains %d entries:\n", f.NumSections())
	table := newTable(w, "Nr", "Name", "Type", "Flags", "Offset", "Size", "EntSize", "Link", "Info", "Align")
	for i := 0; i < f.NumSections(); i++ {
		sh, err := f.Section(i)
		if err != nil {
			return err
		}
		name, err := f.SectionName(i)
		if err != nil {
			return err
		}
		table.Append([]string{
			fmt.Sprintf("[%2d]", i),
			name,
			elfread.SectionTypeName(elf.SectionType(sh.Type)),
			elfread.SectionFlagsName(elf.SectionFlag(sh.Flags)),
			fmt.Sprintf("0x%06x", sh.Off),
			fmt.Sprintf("0x%06x", sh.Size),
			fmt.Sprintf("%d", sh.Entsize),
			fmt.Sprintf("%d", sh.Link),
			fmt.Sprintf("%d", sh.Info),
			fmt.Sprintf("%d", sh.Addralign),
		})
	}
	table.Render()
	return nil
}

func printSymbols(w io.Writer, f *elfread.File) error {
	symtab, ok := f.SymbolTable()
	if !ok {
		fmt.Fprintf(w, "\nThere are no symbol tables in this file.\n")
		return nil
	}
	syms, err := f.Symbols(symtab)
	if err != nil {
		return err
	}
	tableName, err := f.SectionName(symtab)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "\nSymbol table '%s' contains %d entries:\n", tableName, len(syms))
	table := newTable(w, "Num", "Value", "Size", "Type", "Bind", "Vis", "Ndx", "Name")
	for i, sym := range syms {
		name, err := f.SymbolName(symtab, sym)
		if err != nil {
			return err
		}
		table.Append([]string{
			fmt.Sprintf("[%2d]", i),
			fmt.Sprintf("%016x", sym.Value),
			fmt.Sprintf("%d", sym.Size),
			elfread.SymTypeName(elf.ST_TYPE(sym.Info)),
			elfread.BindName(elf.ST_BIND(sym.Info)),
			elfread.VisibilityName(elf.ST_VISIBILITY(sym.Other)),
			elfread.SectionIndexName(sym.Shndx),
			name,
		})
	}
	table.Render()
	return nil
}

func printRelocations(w io.Writer, f *elfread.File) error {
	indices := f.RelocationSections()
	if len(indices) == 0 {
		fmt.Fprintf(w, "\nThere are no relocations in this file.\n")
		return nil
	}

	machine := elf.Machine(f.Header().Machine)
	for _, i := range indices {
		sh, err := f.Section(i)
		if err != nil {
			return err
		}
		name, err := f.SectionName(i)
		if err != nil {
			return err
		}
		entries, err := f.Relocations(i)
		if err != nil {
			return err
		}

		var syms []elf.Sym64
		if len(entries) > 0 {
			if syms, err = f.Symbols(int(sh.Link)); err != nil {
				return err
			}
		}

		fmt.Fprintf(w, "\nRelocation section '%s' contains %d entries:\n", name, len(entries))
		table := newTable(w, "Num", "Offset", "Info", "Type", "Symbol", "Addend")
		for n, r := range entries {
			symIndex := elf.R_SYM64(r.Info)
			if int(symIndex) >= len(syms) {
				return fmt.Errorf("relocation %d of %s refers to missing symbol %d", n, name, symIndex)
			}
			symName, err := f.SymbolName(int(sh.Link), syms[symIndex])
			if err != nil {
				return err
			}
			table.Append([]string{
				fmt.Sprintf("[%2d]", n),
				fmt.Sprintf("%012x", r.Off),
				fmt.Sprintf("%012x", r.Info),
				elfread.RelocTypeName(machine, elf.R_TYPE64(r.Info)),
				symName,
				fmt.Sprintf("%+d", r.Addend),
			})
		}
		table.Render()
	}
	return nil
}

// printContents hex dumps a section, 16 bytes per line with an ASCII column
func printContents(w io.Writer, f *elfread.File, index int) error {
	name, err := f.SectionName(index)
	if err != nil {
		return err
	}
	data, err := f.SectionData(index)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "\nContents of section '%s' (%d bytes):\n", name, len(data))
	for off := 0; off < len(data); off += 16 {
		line := data[off:min(off+16, len(data))]
		fmt.Fprintf(w, "  %06x ", off)
		for i := 0; i < 16; i++ {
			if i < len(line) {
				fmt.Fprintf(w, " %02x", line[i])
			} else {
				fmt.Fprint(w, "   ")
			}
		}
		fmt.Fprint(w, "  ")
		for _, c := range line {
			if c < 0x20 || c > 0x7e {
				c = '.'
			}
			fmt.Fprintf(w, "%c", c)
		}
		fmt.Fprintln(w)
	}
	return nil
}
