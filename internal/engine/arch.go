// Completion: 100% - Target module complete
package engine

import (
	"debug/elf"
	"encoding/binary"
	"fmt"
	"strings"
)

// Architecture type
type Arch int

const (
	ArchUnknown Arch = iota
	ArchX86_64
	ArchARM64
	ArchRiscv64
	ArchPPC64
	ArchS390X
)

var archNames = []string{"x86_64", "amd64", "x86-64", "aarch64", "arm64", "riscv64", "riscv", "rv64", "ppc64", "s390x"}

func (a Arch) String() string {
	switch a {
	case ArchX86_64:
		return "x86_64"
	case ArchARM64:
		return "aarch64"
	case ArchRiscv64:
		return "riscv64"
	case ArchPPC64:
		return "ppc64"
	case ArchS390X:
		return "s390x"
	case ArchUnknown:
		return "unknown"
	default:
		return "unknown"
	}
}

// Machine returns the e_machine value for the architecture
func (a Arch) Machine() elf.Machine {
	switch a {
	case ArchX86_64:
		return elf.EM_X86_64
	case ArchARM64:
		return elf.EM_AARCH64
	case ArchRiscv64:
		return elf.EM_RISCV
	case ArchPPC64:
		return elf.EM_PPC64
	case ArchS390X:
		return elf.EM_S390
	default:
		return elf.EM_NONE
	}
}

// ByteOrder returns the data encoding objects for the architecture use
func (a Arch) ByteOrder() binary.ByteOrder {
	switch a {
	case ArchPPC64, ArchS390X:
		return binary.BigEndian
	default:
		return binary.LittleEndian
	}
}

// ParseArch parses an architecture string (like GOARCH values)
func ParseArch(s string) (Arch, error) {
	switch strings.ToLower(s) {
	case "x86_64", "amd64", "x86-64":
		return ArchX86_64, nil
	case "aarch64", "arm64":
		return ArchARM64, nil
	case "riscv64", "riscv", "rv64":
		return ArchRiscv64, nil
	case "ppc64":
		return ArchPPC64, nil
	case "s390x":
		return ArchS390X, nil
	default:
		return 0, fmt.Errorf("unsupported architecture: %s%s (supported: amd64, arm64, riscv64, ppc64, s390x)",
			s, didYouMean(s, archNames))
	}
}

// OS selects the EI_OSABI byte of the object
type OS int

const (
	OSSysV OS = iota
	OSLinux
	OSFreeBSD
	OSNetBSD
	OSOpenBSD
	OSSolaris
)

var osNames = []string{"sysv", "none", "linux", "gnu", "freebsd", "netbsd", "openbsd", "solaris"}

func (o OS) String() string {
	switch o {
	case OSSysV:
		return "sysv"
	case OSLinux:
		return "linux"
	case OSFreeBSD:
		return "freebsd"
	case OSNetBSD:
		return "netbsd"
	case OSOpenBSD:
		return "openbsd"
	case OSSolaris:
		return "solaris"
	default:
		return "unknown"
	}
}

// OSABI returns the EI_OSABI value for the OS
func (o OS) OSABI() elf.OSABI {
	switch o {
	case OSLinux:
		return elf.ELFOSABI_LINUX
	case OSFreeBSD:
		return elf.ELFOSABI_FREEBSD
	case OSNetBSD:
		return elf.ELFOSABI_NETBSD
	case OSOpenBSD:
		return elf.ELFOSABI_OPENBSD
	case OSSolaris:
		return elf.ELFOSABI_SOLARIS
	default:
		return elf.ELFOSABI_NONE
	}
}

// ParseOS parses an OS string (like GOOS values)
func ParseOS(s string) (OS, error) {
	switch strings.ToLower(s) {
	case "sysv", "none", "":
		return OSSysV, nil
	case "linux", "gnu":
		return OSLinux, nil
	case "freebsd":
		return OSFreeBSD, nil
	case "netbsd":
		return OSNetBSD, nil
	case "openbsd":
		return OSOpenBSD, nil
	case "solaris":
		return OSSolaris, nil
	default:
		return 0, fmt.Errorf("unsupported OS: %s%s (supported: sysv, linux, freebsd, netbsd, openbsd, solaris)",
			s, didYouMean(s, osNames))
	}
}

// Platform represents a target platform (architecture + OS)
type Platform struct {
	Arch Arch
	OS   OS
}

// ParsePlatform parses an architecture and an OS name
func ParsePlatform(arch, os string) (Platform, error) {
	a, err := ParseArch(arch)
	if err != nil {
		return Platform{}, err
	}
	o, err := ParseOS(os)
	if err != nil {
		return Platform{}, err
	}
	return Platform{Arch: a, OS: o}, nil
}

// String returns a human-readable platform string
func (p Platform) String() string {
	return fmt.Sprintf("%s-%s", p.Arch, p.OS)
}

// FullString returns a detailed platform string
func (p Platform) FullString() string {
	return fmt.Sprintf("%s on %s", p.Arch, p.OS)
}
