package elfobj

import "bytes"

// StringTable interns NUL-terminated names into a Region. Offset 0 always holds the
// empty string, so a name index of 0 means "no name". Names are not deduplicated:
// interning the same text twice yields two different offsets.
type StringTable struct {
	region *Region
}

// NewStringTable creates an empty string table
func NewStringTable(name string) *StringTable {
	return &StringTable{region: NewRegion(name)}
}

// Intern appends s followed by a NUL and returns the offset of s.
// s must not contain a NUL byte; the builder checks this before calling Intern.
func (st *StringTable) Intern(s string) uint32 {
	if st.region.Len() == 0 {
		st.region.AppendByte(0)
	}
	if s == "" {
		return 0
	}
	offset := st.region.AppendString(s)
	st.region.AppendByte(0)
	return uint32(offset)
}

// Lookup returns the NUL-terminated string starting at offset
func (st *StringTable) Lookup(offset uint32) (string, bool) {
	data := st.region.Bytes()
	if uint64(offset) >= uint64(len(data)) {
		return "", false
	}
	end := bytes.IndexByte(data[offset:], 0)
	if end < 0 {
		return "", false
	}
	return string(data[offset : offset+uint32(end)]), true
}

// Len returns the size of the table in bytes
func (st *StringTable) Len() uint64 {
	return st.region.Len()
}

// Bytes returns the raw table contents
func (st *StringTable) Bytes() []byte {
	return st.region.Bytes()
}

func (st *StringTable) commit() {
	st.region.Commit()
}
