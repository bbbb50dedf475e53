// Completion: 100% - Sample object complete
package main

import (
	"debug/elf"
	"encoding/binary"
	"fmt"
	"path/filepath"

	"github.com/xyproto/jingle/internal/elfobj"
	"github.com/xyproto/jingle/internal/engine"
)

// The sample program writes "Hello, World\n" to stdout and exits. The address
// of the message is left to the linker through a relocation against msg.

const helloWorld = "Hello, World\n"

var sampleX86_64 = []byte{
	0xb8, 0x01, 0, 0, 0, // mov $0x1,%eax
	0xbf, 0x01, 0, 0, 0, // mov $0x1,%edi
	0x48, 0xc7, 0xc6, 0, 0, 0, 0, // mov $msg,%rsi
	0xba, 0x0d, 0, 0, 0, // mov $0xd,%edx
	0x0f, 0x05, // syscall
	0xb8, 0x3c, 0, 0, 0, // mov $0x3c,%eax
	0x48, 0x31, 0xff, // xor %rdi,%rdi
	0x0f, 0x05, // syscall
}

var sampleARM64 = []uint32{
	0xd2800808, // mov x8, #64
	0xd2800020, // mov x0, #1
	0x90000001, // adrp x1, msg
	0x91000021, // add x1, x1, :lo12:msg
	0xd28001a2, // mov x2, #13
	0xd4000001, // svc #0
	0xd2800ba8, // mov x8, #93
	0xd2800000, // mov x0, #0
	0xd4000001, // svc #0
}

type sampleReloc struct {
	offset uint64
	typ    uint32
}

// sampleProgram returns the machine code and the relocations against msg
func sampleProgram(arch engine.Arch) ([]byte, []sampleReloc, error) {
	switch arch {
	case engine.ArchX86_64:
		return sampleX86_64, []sampleReloc{
			{13, uint32(elf.R_X86_64_32S)},
		}, nil
	case engine.ArchARM64:
		code := make([]byte, 0, 4*len(sampleARM64))
		for _, insn := range sampleARM64 {
			code = binary.LittleEndian.AppendUint32(code, insn)
		}
		return code, []sampleReloc{
			{8, uint32(elf.R_AARCH64_ADR_PREL_PG_HI21)},
			{12, uint32(elf.R_AARCH64_ADD_ABS_LO12_NC)},
		}, nil
	default:
		return nil, nil, fmt.Errorf("no sample program for %s (supported: x86_64, aarch64)", arch)
	}
}

// buildSample assembles the sample object for the platform. The file symbol is
// named after the output file.
func buildSample(path string, p engine.Platform) (*elfobj.Builder, error) {
	code, relocs, err := sampleProgram(p.Arch)
	if err != nil {
		return nil, err
	}

	b := elfobj.New(p.Arch.Machine(), p.OS.OSABI())
	if err := b.SetByteOrder(p.Arch.ByteOrder()); err != nil {
		return nil, err
	}

	// A local STT_FILE symbol comes first when there are any locals
	if _, err := b.AddFileSymbol(filepath.Base(path)); err != nil {
		return nil, err
	}
	text, err := b.AddTextSection(code)
	if err != nil {
		return nil, err
	}
	data, err := b.AddDataSection([]byte(helloWorld))
	if err != nil {
		return nil, err
	}
	msg, err := b.AddSymbolEntry(elfobj.Symbol{
		Name:    "msg",
		Bind:    elf.STB_LOCAL,
		Type:    elf.STT_NOTYPE,
		Section: data,
	})
	if err != nil {
		return nil, err
	}
	if _, err := b.AddSymbol(text, "_start", elf.STB_GLOBAL, elf.STT_FUNC); err != nil {
		return nil, err
	}

	if _, err := b.OpenRelocationSection(text); err != nil {
		return nil, err
	}
	for _, r := range relocs {
		if err := b.AddRelocation(elfobj.Relocation{Offset: r.offset, Symbol: msg, Type: r.typ}); err != nil {
			return nil, err
		}
	}

	if err := b.Finalize(); err != nil {
		return nil, err
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// writeSample builds the sample object and writes it to path
func writeSample(path string, p engine.Platform) (uint64, error) {
	b, err := buildSample(path, p)
	if err != nil {
		return 0, err
	}
	if err := b.WriteFile(path); err != nil {
		return 0, err
	}
	l, _ := b.Layout()
	return l.End, nil
}
