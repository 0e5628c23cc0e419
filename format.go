package opb

import "encoding/binary"

// Format selects the on-wire container: compressed (the default,
// opcode-synthesizing format C1-C8) or raw (the fixed-size uncompressed
// alternative, C9).
type Format int

const (
	FormatCompressed Format = iota
	FormatRaw
)

func (f Format) String() string {
	if f == FormatRaw {
		return "raw"
	}
	return "compressed"
}

// magic is the 7-byte file signature: "OPBin1\0". Byte 5 is the version
// character; byte 6 is a reserved terminator that must be zero.
var magic = [7]byte{'O', 'P', 'B', 'i', 'n', '1', 0}

const (
	compressedHeaderOffset = 8
	compressedHeaderSize   = 12 // three 32-bit fields
	instrumentEntrySize    = 9
)

// putHeaderWord encodes one of the three backpatched header fields.
//
// The original C library calls this FlipEndian32 and applies it
// unconditionally, which byte-swaps on little-endian hosts but is the
// identity on big-endian hosts - so the header ends up big-endian on LE
// hosts but native-endian on BE hosts. This codec instead always writes
// big-endian, an intentional divergence for cross-host interoperability
// (see DESIGN.md open question 4).
func putHeaderWord(buf []byte, v uint32) {
	binary.BigEndian.PutUint32(buf, v)
}

func getHeaderWord(buf []byte) uint32 {
	return binary.BigEndian.Uint32(buf)
}
