package opb

import "io"

// Buffer is an in-memory Writer+Reader+Seeker, for callers encoding or
// decoding without a file: Encode needs seek support to backpatch the
// compressed header, which *bytes.Buffer alone does not provide.
type Buffer struct {
	data []byte
	pos  int64
}

func (b *Buffer) Write(p []byte) (int, error) {
	if int64(len(b.data)) < b.pos {
		b.data = append(b.data, make([]byte, b.pos-int64(len(b.data)))...)
	}
	end := b.pos + int64(len(p))
	if int64(len(b.data)) < end {
		b.data = append(b.data, make([]byte, end-int64(len(b.data)))...)
	}
	copy(b.data[b.pos:end], p)
	b.pos = end
	return len(p), nil
}

func (b *Buffer) Read(p []byte) (int, error) {
	if b.pos >= int64(len(b.data)) {
		return 0, io.EOF
	}
	n := copy(p, b.data[b.pos:])
	b.pos += int64(n)
	return n, nil
}

func (b *Buffer) Seek(offset int64, whence int) (int64, error) {
	var newPos int64
	switch whence {
	case io.SeekStart:
		newPos = offset
	case io.SeekCurrent:
		newPos = b.pos + offset
	case io.SeekEnd:
		newPos = int64(len(b.data)) + offset
	}
	if newPos < 0 {
		return 0, newErr(SeekError, "negative position")
	}
	b.pos = newPos
	return newPos, nil
}

// Bytes returns the buffer's full contents, regardless of the current
// seek position.
func (b *Buffer) Bytes() []byte { return b.data }
