// Completion: 100% - Module complete
package elfobj

import (
	"bytes"
	"fmt"
	"os"
)

// Region is an owned, append-only byte buffer. Every append returns the offset at
// which the appended bytes start. Once committed, the region is frozen and any
// further append panics, since that can only be a bug in the builder.
type Region struct {
	buf       bytes.Buffer
	committed bool   // True once Commit() is called
	name      string // For debugging
}

// NewRegion creates an empty region with a name for debugging
func NewRegion(name string) *Region {
	return &Region{name: name}
}

func (r *Region) mustNotBeCommitted() {
	if r.committed {
		panic(fmt.Sprintf("Region(%s): cannot append to committed region", r.name))
	}
}

// Append appends p and returns the offset of its first byte
func (r *Region) Append(p []byte) uint64 {
	r.mustNotBeCommitted()
	offset := uint64(r.buf.Len())
	r.buf.Write(p)
	return offset
}

// AppendString appends s and returns the offset of its first byte
func (r *Region) AppendString(s string) uint64 {
	r.mustNotBeCommitted()
	offset := uint64(r.buf.Len())
	r.buf.WriteString(s)
	return offset
}

// AppendByte appends a single byte and returns its offset
func (r *Region) AppendByte(b byte) uint64 {
	r.mustNotBeCommitted()
	offset := uint64(r.buf.Len())
	r.buf.WriteByte(b)
	return offset
}

// Len returns the number of bytes appended so far
func (r *Region) Len() uint64 {
	return uint64(r.buf.Len())
}

// Bytes returns the region contents. The slice must not be modified.
func (r *Region) Bytes() []byte {
	return r.buf.Bytes()
}

// Commit freezes the region
func (r *Region) Commit() {
	if VerboseMode && !r.committed {
		fmt.Fprintf(os.Stderr, "Region(%s): committed with %d bytes\n", r.name, r.buf.Len())
	}
	r.committed = true
}

// IsCommitted returns true if the region has been committed
func (r *Region) IsCommitted() bool {
	return r.committed
}
