package opb

// Varint is the library's 1-4 byte, 7-bit, little-endian base-128
// variable-length encoding of unsigned integers up to 2^28-1. The top bit
// of each byte is a continuation flag; the fourth byte, if present, never
// carries one (it would overflow the 28-bit range this format supports).

// varintSize returns the number of bytes appendVarint/writeVarint would
// need to encode v.
func varintSize(v uint32) int {
	switch {
	case v < 1<<7:
		return 1
	case v < 1<<14:
		return 2
	case v < 1<<21:
		return 3
	default:
		return 4
	}
}

// appendVarint appends the varint encoding of v to buf and returns the
// extended slice.
func appendVarint(buf []byte, v uint32) []byte {
	for {
		b := byte(v & 0x7F)
		v >>= 7
		if v == 0 {
			return append(buf, b)
		}
		buf = append(buf, b|0x80)
	}
}

// writeVarint writes the varint encoding of v to w.
func writeVarint(w Writer, v uint32) error {
	var buf [4]byte
	n := 0
	for {
		b := byte(v & 0x7F)
		v >>= 7
		if v == 0 {
			buf[n] = b
			n++
			break
		}
		buf[n] = b | 0x80
		n++
	}
	return writeAll(w, buf[:n])
}

// readVarint reads a varint from r, reading at most 4 bytes.
func readVarint(r Reader) (uint32, error) {
	var result uint32
	for i := 0; i < 4; i++ {
		var b [1]byte
		n, err := r.Read(b[:])
		if err != nil || n != 1 {
			return 0, newErr(ReadError, "short read decoding varint")
		}
		result |= uint32(b[0]&0x7F) << (7 * uint(i))
		if b[0]&0x80 == 0 || i == 3 {
			return result, nil
		}
	}
	return result, nil
}
