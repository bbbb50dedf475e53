package elfread

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/xyproto/jingle/internal/elfobj"
)

var code = []byte{0xb8, 0x3c, 0, 0, 0, 0x31, 0xff, 0x0f, 0x05}

func buildObject(t *testing.T, order binary.ByteOrder) []byte {
	t.Helper()
	b := elfobj.New(elf.EM_X86_64, elf.ELFOSABI_LINUX)
	if err := b.SetByteOrder(order); err != nil {
		t.Fatalf("SetByteOrder failed: %v", err)
	}
	text, err := b.AddTextSection(code)
	if err != nil {
		t.Fatalf("AddTextSection failed: %v", err)
	}
	data, err := b.AddDataSection([]byte("Hello, World\n"))
	if err != nil {
		t.Fatalf("AddDataSection failed: %v", err)
	}
	b.AddFileSymbol("hello.s")
	msg, _ := b.AddSectionSymbol(data)
	b.AddSymbol(text, "_start", elf.STB_GLOBAL, elf.STT_FUNC)
	b.OpenRelocationSection(text)
	if err := b.AddRelocation(elfobj.Relocation{Offset: 1, Symbol: msg, Type: uint32(elf.R_X86_64_32S), Addend: 5}); err != nil {
		t.Fatalf("AddRelocation failed: %v", err)
	}
	if err := b.Finalize(); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	var buf bytes.Buffer
	if _, err := b.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	return buf.Bytes()
}

func TestParseRoundTrip(t *testing.T) {
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		t.Run(order.String(), func(t *testing.T) {
			f, err := Parse(buildObject(t, order))
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if f.ByteOrder() != order {
				t.Errorf("Expected %v, got %v", order, f.ByteOrder())
			}

			h := f.Header()
			if elf.Type(h.Type) != elf.ET_REL || elf.Machine(h.Machine) != elf.EM_X86_64 {
				t.Errorf("Unexpected type/machine %d/%d", h.Type, h.Machine)
			}
			if elf.OSABI(h.Ident[elf.EI_OSABI]) != elf.ELFOSABI_LINUX {
				t.Errorf("Unexpected OS/ABI %d", h.Ident[elf.EI_OSABI])
			}

			names := []string{"", ".text", ".data", ".rela.text", ".symtab", ".strtab", ".shstrtab"}
			if f.NumSections() != len(names) {
				t.Fatalf("Expected %d sections, got %d", len(names), f.NumSections())
			}
			for i, want := range names {
				got, err := f.SectionName(i)
				if err != nil || got != want {
					t.Errorf("SectionName(%d) = %q, %v; want %q", i, got, err, want)
				}
			}

			text, err := f.SectionData(1)
			if err != nil || !bytes.Equal(text, code) {
				t.Errorf("SectionData(1) = %x, %v", text, err)
			}

			symtab, ok := f.SymbolTable()
			if !ok || symtab != 4 {
				t.Fatalf("Expected symbol table at 4, got %d (%v)", symtab, ok)
			}
			syms, err := f.Symbols(symtab)
			if err != nil {
				t.Fatalf("Symbols failed: %v", err)
			}
			wantSyms := []string{"", "hello.s", ".data", "_start"}
			if len(syms) != len(wantSyms) {
				t.Fatalf("Expected %d symbols, got %d", len(wantSyms), len(syms))
			}
			for i, want := range wantSyms {
				got, err := f.SymbolName(symtab, syms[i])
				if err != nil || got != want {
					t.Errorf("SymbolName(%d) = %q, %v; want %q", i, got, err, want)
				}
			}
			sh, _ := f.Section(symtab)
			if sh.Info != 3 {
				t.Errorf("Expected symtab info 3, got %d", sh.Info)
			}

			relas := f.RelocationSections()
			if len(relas) != 1 || relas[0] != 3 {
				t.Fatalf("Expected one relocation section at 3, got %v", relas)
			}
			entries, err := f.Relocations(relas[0])
			if err != nil || len(entries) != 1 {
				t.Fatalf("Relocations = %v, %v", entries, err)
			}
			r := entries[0]
			if r.Off != 1 || elf.R_SYM64(r.Info) != 2 || elf.R_X86_64(elf.R_TYPE64(r.Info)) != elf.R_X86_64_32S || r.Addend != 5 {
				t.Errorf("Unexpected relocation %+v", r)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	valid := buildObject(t, binary.LittleEndian)

	class32 := append([]byte(nil), valid...)
	class32[elf.EI_CLASS] = byte(elf.ELFCLASS32)

	badData := append([]byte(nil), valid...)
	badData[elf.EI_DATA] = 7

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrNotELF},
		{"text", []byte("#!/bin/sh\necho hi\n"), ErrNotELF},
		{"magic only", []byte("\x7fELF"), ErrMalformed},
		{"32-bit", class32, ErrUnsupportedClass},
		{"bad encoding", badData, ErrMalformed},
		{"truncated header", valid[:40], ErrMalformed},
		{"truncated sections", valid[:len(valid)-10], ErrOutOfBounds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Expected %v, got %v", tt.want, err)
			}
			if !errors.Is(err, ErrFormat) {
				t.Errorf("Expected %v to match ErrFormat", err)
			}
		})
	}
}

func TestBoundsChecks(t *testing.T) {
	data := buildObject(t, binary.LittleEndian)
	f, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if _, err := f.Section(f.NumSections()); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Expected ErrOutOfBounds, got %v", err)
	}
	if _, err := f.Section(-1); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Expected ErrOutOfBounds, got %v", err)
	}
	if _, err := f.Relocations(1); !errors.Is(err, ErrMalformed) {
		t.Errorf("Expected ErrMalformed reading .text as relocations, got %v", err)
	}
	if _, err := f.Symbols(1); !errors.Is(err, ErrMalformed) {
		t.Errorf("Expected ErrMalformed reading .text as symbols, got %v", err)
	}

	// Point .text past the end of the file.
	corrupt := append([]byte(nil), data...)
	h := f.Header()
	textHeader := h.Shoff + sectionHeaderSize
	binary.LittleEndian.PutUint64(corrupt[textHeader+24:], uint64(len(data)))
	f, err = Parse(corrupt)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if _, err := f.SectionData(1); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Expected ErrOutOfBounds, got %v", err)
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hello.o")
	data := buildObject(t, binary.LittleEndian)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}

	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if f.Len() != len(data) {
		t.Errorf("Expected %d bytes, got %d", len(data), f.Len())
	}
	if name, err := f.SectionName(1); err != nil || name != ".text" {
		t.Errorf("SectionName(1) = %q, %v", name, err)
	}
	if err := f.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Errorf("Second Close failed: %v", err)
	}

	empty := filepath.Join(dir, "empty")
	os.WriteFile(empty, nil, 0o644)
	if _, err := Open(empty); !errors.Is(err, ErrNotELF) {
		t.Errorf("Expected ErrNotELF for an empty file, got %v", err)
	}
	if _, err := Open(filepath.Join(dir, "missing")); err == nil || errors.Is(err, ErrFormat) {
		t.Errorf("Expected an I/O error for a missing file, got %v", err)
	}
}

func TestNames(t *testing.T) {
	if got := SectionTypeName(elf.SHT_PROGBITS); got != "PROGBITS" {
		t.Errorf("Expected PROGBITS, got %s", got)
	}
	if got := SectionTypeName(elf.SectionType(0x60000000)); got != "0x60000000" {
		t.Errorf("Unknown section type printed as %s", got)
	}
	if got := SectionFlagsName(elf.SHF_ALLOC | elf.SHF_EXECINSTR); got != "AX" {
		t.Errorf("Expected AX, got %s", got)
	}
	if got := SectionIndexName(uint16(elf.SHN_ABS)); got != "ABS" {
		t.Errorf("Expected ABS, got %s", got)
	}
	if got := RelocTypeName(elf.EM_X86_64, uint32(elf.R_X86_64_32S)); got != "R_X86_64_32S" {
		t.Errorf("Expected R_X86_64_32S, got %s", got)
	}
	if got := RelocTypeName(elf.EM_NONE, 7); got != "7" {
		t.Errorf("Expected 7, got %s", got)
	}
	if got := MachineName(elf.EM_X86_64); got != "X86_64" {
		t.Errorf("Expected X86_64, got %s", got)
	}
}
