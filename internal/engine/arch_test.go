package engine

import (
	"debug/elf"
	"encoding/binary"
	"strings"
	"testing"
)

func TestParseArch(t *testing.T) {
	tests := []struct {
		in      string
		arch    Arch
		machine elf.Machine
	}{
		{"amd64", ArchX86_64, elf.EM_X86_64},
		{"X86_64", ArchX86_64, elf.EM_X86_64},
		{"arm64", ArchARM64, elf.EM_AARCH64},
		{"rv64", ArchRiscv64, elf.EM_RISCV},
		{"ppc64", ArchPPC64, elf.EM_PPC64},
		{"s390x", ArchS390X, elf.EM_S390},
	}
	for _, tt := range tests {
		a, err := ParseArch(tt.in)
		if err != nil {
			t.Errorf("ParseArch(%q) failed: %v", tt.in, err)
			continue
		}
		if a != tt.arch || a.Machine() != tt.machine {
			t.Errorf("ParseArch(%q) = %v (%v), want %v (%v)", tt.in, a, a.Machine(), tt.arch, tt.machine)
		}
	}

	if ArchS390X.ByteOrder() != binary.BigEndian || ArchX86_64.ByteOrder() != binary.LittleEndian {
		t.Error("Unexpected byte order")
	}
}

func TestParseOS(t *testing.T) {
	tests := []struct {
		in    string
		osabi elf.OSABI
	}{
		{"", elf.ELFOSABI_NONE},
		{"sysv", elf.ELFOSABI_NONE},
		{"linux", elf.ELFOSABI_LINUX},
		{"FreeBSD", elf.ELFOSABI_FREEBSD},
		{"netbsd", elf.ELFOSABI_NETBSD},
		{"openbsd", elf.ELFOSABI_OPENBSD},
		{"solaris", elf.ELFOSABI_SOLARIS},
	}
	for _, tt := range tests {
		o, err := ParseOS(tt.in)
		if err != nil {
			t.Errorf("ParseOS(%q) failed: %v", tt.in, err)
			continue
		}
		if o.OSABI() != tt.osabi {
			t.Errorf("ParseOS(%q).OSABI() = %v, want %v", tt.in, o.OSABI(), tt.osabi)
		}
	}
}

func TestParseSuggestions(t *testing.T) {
	_, err := ParseArch("amd46")
	if err == nil || !strings.Contains(err.Error(), "did you mean amd64?") {
		t.Errorf("Expected a suggestion, got %v", err)
	}
	_, err = ParseOS("linx")
	if err == nil || !strings.Contains(err.Error(), "did you mean linux?") {
		t.Errorf("Expected a suggestion, got %v", err)
	}
	_, err = ParseOS("windows")
	if err == nil || strings.Contains(err.Error(), "did you mean") {
		t.Errorf("Expected an error without suggestion, got %v", err)
	}
}

func TestParsePlatform(t *testing.T) {
	p, err := ParsePlatform("arm64", "linux")
	if err != nil {
		t.Fatalf("ParsePlatform failed: %v", err)
	}
	if p.String() != "aarch64-linux" {
		t.Errorf("Expected aarch64-linux, got %s", p)
	}
	if _, err := ParsePlatform("arm64", "plan9"); err == nil {
		t.Error("Expected an error for an unknown OS")
	}
}

func TestLevenshteinDistance(t *testing.T) {
	if d := levenshteinDistance("kitten", "sitting"); d != 3 {
		t.Errorf("Expected 3, got %d", d)
	}
	if d := levenshteinDistance("", "abc"); d != 3 {
		t.Errorf("Expected 3, got %d", d)
	}
}
