package elfobj

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"
)

// countingWriter tallies every byte handed to the underlying writer, so the
// serializer can check its output against the layout independently.
type countingWriter struct {
	w     io.Writer
	order binary.ByteOrder
	n     uint64
	err   error
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	if cw.err != nil {
		return 0, cw.err
	}
	n, err := cw.w.Write(p)
	cw.n += uint64(n)
	cw.err = err
	return n, err
}

// record writes a fixed-size ELF structure in the object's byte order
func (cw *countingWriter) record(v any) {
	if cw.err != nil {
		return
	}
	if err := binary.Write(cw, cw.order, v); err != nil && cw.err == nil {
		cw.err = err
	}
}

func (cw *countingWriter) bytes(p []byte) {
	if cw.err != nil || len(p) == 0 {
		return
	}
	cw.Write(p)
}

// WriteTo writes the finalized object to w. It can only be called once, after
// Finalize.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	const op = "WriteTo"
	if b.phase != PhaseFinalized {
		return 0, invariantError(op, "builder is %s, want %s", b.phase, PhaseFinalized)
	}

	cw := &countingWriter{w: w, order: b.order}

	header := b.Header()
	cw.record(&header)
	cw.bytes(b.code.Bytes())

	for _, rs := range b.relocs.sections {
		for _, r := range rs.entries {
			rela := r.entry()
			cw.record(&rela)
		}
	}

	if b.layout.SymtabIndex != 0 {
		for i := 0; i < b.symbols.Len(); i++ {
			sym := b.symbols.At(uint32(i)).entry()
			cw.record(&sym)
		}
		cw.bytes(b.strtab.Bytes())
	}
	cw.bytes(b.shstrtab.Bytes())

	if cw.err != nil {
		return int64(cw.n), ioError(op, cw.err, "writing object after %d bytes", cw.n)
	}
	if cw.n != b.layout.SectionHeaders {
		layoutDefect("wrote %d bytes before the section headers, layout expects %d", cw.n, b.layout.SectionHeaders)
	}

	for i := 0; i < b.sections.Len(); i++ {
		sh := b.sections.At(uint16(i)).header()
		cw.record(&sh)
	}

	if cw.err != nil {
		return int64(cw.n), ioError(op, cw.err, "writing section headers after %d bytes", cw.n)
	}
	if cw.n != b.layout.End {
		layoutDefect("wrote %d bytes in total, layout expects %d", cw.n, b.layout.End)
	}

	b.phase = PhaseWritten
	tracef("WriteTo: wrote %d bytes\n", cw.n)
	return int64(cw.n), nil
}

// WriteFile writes the finalized object to path. The file is opened right
// before writing and closed on every return path.
func (b *Builder) WriteFile(path string) (err error) {
	const op = "WriteFile"
	if b.phase != PhaseFinalized {
		return invariantError(op, "builder is %s, want %s", b.phase, PhaseFinalized)
	}

	f, err := os.Create(path)
	if err != nil {
		return ioError(op, err, "creating %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = ioError(op, cerr, "closing %s", path)
		}
	}()

	bw := bufio.NewWriter(f)
	if _, err := b.WriteTo(bw); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return ioError(op, err, "flushing %s", path)
	}
	return nil
}
