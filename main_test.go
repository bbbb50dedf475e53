package main

import (
	"bytes"
	"debug/elf"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/xyproto/jingle/internal/engine"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	color.NoColor = true
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunNoInput(t *testing.T) {
	code, _, stderr := runCLI(t, "-syms")
	if code != 1 {
		t.Errorf("Expected exit code 1, got %d", code)
	}
	if !strings.Contains(stderr, "[ERROR] No input files provided") {
		t.Errorf("Missing diagnostic, stderr: %s", stderr)
	}
}

func TestRunVersion(t *testing.T) {
	code, stdout, _ := runCLI(t, "-version")
	if code != 0 || strings.TrimSpace(stdout) != versionString {
		t.Errorf("Expected %q and exit code 0, got %q and %d", versionString, stdout, code)
	}
}

func TestRunBadInput(t *testing.T) {
	dir := t.TempDir()

	script := filepath.Join(dir, "script.sh")
	os.WriteFile(script, []byte("#!/bin/sh\necho hi\n"), 0o644)

	sample := filepath.Join(dir, "sample.o")
	if _, err := writeSample(sample, engine.Platform{Arch: engine.ArchX86_64}); err != nil {
		t.Fatalf("writeSample failed: %v", err)
	}
	data, err := os.ReadFile(sample)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", sample, err)
	}
	data[elf.EI_CLASS] = byte(elf.ELFCLASS32)
	class32 := filepath.Join(dir, "class32.o")
	os.WriteFile(class32, data, 0o644)

	tests := []struct {
		name string
		path string
		want string
	}{
		{"missing", filepath.Join(dir, "missing.o"), "Could not open file"},
		{"not elf", script, "is not a valid ELF file"},
		{"32-bit", class32, "32-bit files are not supported"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(t, "-header", tt.path)
			if code != 1 {
				t.Errorf("Expected exit code 1, got %d", code)
			}
			if !strings.Contains(stderr, tt.want) {
				t.Errorf("Expected %q in stderr, got: %s", tt.want, stderr)
			}
		})
	}
}

func TestRunWriteAndInspect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output.o")
	code, stdout, stderr := runCLI(t, "-write", path, "-arch", "amd64", "-os", "linux",
		"-header", "-sections", "-syms", "-reloc", "-contents=2")
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d, stderr: %s", code, stderr)
	}

	for _, want := range []string{
		"Wrote 750 bytes",
		"Read 750 bytes",
		"REL (Relocatable file)",
		"UNIX - GNU",
		"X86_64",
		"Section header table contains 7 entries",
		".rela.text",
		".shstrtab",
		"Symbol table '.symtab' contains 4 entries",
		"output.o",
		"msg",
		"_start",
		"Relocation section '.rela.text' contains 1 entries",
		"R_X86_64_32S",
		"Contents of section '.data' (13 bytes)",
		"Hello, World.",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("Expected %q in output:\n%s", want, stdout)
		}
	}
}

func TestRunWriteTarget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arm.o")
	code, stdout, stderr := runCLI(t, "-write", path, "-target", "arm64-freebsd", "-header", "-reloc")
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d, stderr: %s", code, stderr)
	}
	for _, want := range []string{"AARCH64", "UNIX - FreeBSD", "R_AARCH64_ADR_PREL_PG_HI21", "R_AARCH64_ADD_ABS_LO12_NC"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("Expected %q in output:\n%s", want, stdout)
		}
	}
}

func TestRunWriteErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"-write", filepath.Join(dir, "a.o"), "-arch", "amd46"}, "did you mean amd64?"},
		{[]string{"-write", filepath.Join(dir, "b.o"), "-arch", "riscv64"}, "no sample program for riscv64"},
		{[]string{"-write", filepath.Join(dir, "c.o"), "-target", "amd64"}, "Invalid -target format"},
		{[]string{"-write", filepath.Join(dir, "missing", "d.o")}, "Could not write"},
	}
	for _, tt := range tests {
		code, _, stderr := runCLI(t, tt.args...)
		if code != 1 {
			t.Errorf("%v: expected exit code 1, got %d", tt.args, code)
		}
		if !strings.Contains(stderr, tt.want) {
			t.Errorf("%v: expected %q in stderr, got: %s", tt.args, tt.want, stderr)
		}
	}
}

func TestRunContentsOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output.o")
	code, _, stderr := runCLI(t, "-write", path, "-contents=99")
	if code != 1 {
		t.Errorf("Expected exit code 1, got %d", code)
	}
	if !strings.Contains(stderr, "section index 99") {
		t.Errorf("Unexpected stderr: %s", stderr)
	}
}

// TestSampleObject checks the sample with the standard library ELF reader
func TestSampleObject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hello.o")
	n, err := writeSample(path, engine.Platform{Arch: engine.ArchX86_64, OS: engine.OSSysV})
	if err != nil {
		t.Fatalf("writeSample failed: %v", err)
	}

	f, err := elf.Open(path)
	if err != nil {
		t.Fatalf("debug/elf could not open the sample: %v", err)
	}
	defer f.Close()

	info, _ := os.Stat(path)
	if uint64(info.Size()) != n {
		t.Errorf("Reported %d bytes, file has %d", n, info.Size())
	}
	if f.OSABI != elf.ELFOSABI_NONE || f.Machine != elf.EM_X86_64 {
		t.Errorf("Unexpected OS/ABI %v or machine %v", f.OSABI, f.Machine)
	}

	syms, err := f.Symbols()
	if err != nil {
		t.Fatalf("Symbols failed: %v", err)
	}
	want := []string{"hello.o", "msg", "_start"}
	if len(syms) != len(want) {
		t.Fatalf("Expected %d symbols, got %d", len(want), len(syms))
	}
	for i, name := range want {
		if syms[i].Name != name {
			t.Errorf("Symbol %d: expected %s, got %s", i+1, name, syms[i].Name)
		}
	}
	if elf.ST_TYPE(syms[0].Info) != elf.STT_FILE || syms[0].Section != elf.SHN_ABS {
		t.Errorf("Expected an ABS file symbol first, got %+v", syms[0])
	}

	rela := f.Section(".rela.text")
	if rela == nil {
		t.Fatal("Missing .rela.text")
	}
	if rela.Link != 4 || rela.Info != 1 || rela.Size != 24 {
		t.Errorf("Unexpected .rela.text header: link=%d info=%d size=%d", rela.Link, rela.Info, rela.Size)
	}
	raw, err := rela.Data()
	if err != nil {
		t.Fatalf("Failed to read .rela.text: %v", err)
	}
	off := f.ByteOrder.Uint64(raw[0:])
	info64 := f.ByteOrder.Uint64(raw[8:])
	if off != 13 || elf.R_SYM64(info64) != 2 || elf.R_X86_64(elf.R_TYPE64(info64)) != elf.R_X86_64_32S {
		t.Errorf("Unexpected relocation: offset=%d info=0x%x", off, info64)
	}
}
