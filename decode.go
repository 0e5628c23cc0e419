package opb

import (
	"bufio"
	"io"
)

// HeaderInfo reports a decode session's file-level metadata, readable
// immediately after Open without pulling any commands (SPEC_FULL.md §12).
type HeaderInfo struct {
	Format          Format
	SizeBytes       int64
	InstrumentCount int
	ChunkCount      int
}

// DecodeOptions configures a decode session.
type DecodeOptions struct {
	Logger Logger

	// InstrumentCapacityHint sizes the initial instrument table
	// allocation. For the compressed format the table then grows to the
	// instrument count read from the header; the raw format has no table.
	InstrumentCapacityHint int
}

// Decoder is a pull-style OPB stream reader: it exposes ReadBuffer to
// expand the file's chunks and opcodes back into primitive commands
// without materializing the whole file in memory.
type Decoder struct {
	br          *bufio.Reader
	seeker      Seeker
	logger      Logger
	header      HeaderInfo
	instruments *InstrumentTable

	sessionTimeMs int

	// compressed-format chunk cursor
	chunksRead  int
	chunkIndex  int
	chunkLo     int
	chunkTotal  int

	expansion    []Command
	expansionPos int

	atEOF bool
}

// Open reads an OPB stream's header (and, for the compressed format, its
// instrument table) and returns a Decoder ready to pull commands. seeker
// may be nil; it is only required for Reset.
func Open(r Reader, seeker Seeker, opts DecodeOptions) (*Decoder, error) {
	logger := resolveLogger(opts.Logger)
	br := bufio.NewReaderSize(r, 4096)

	var hdr [7]byte
	if err := readFull(br, hdr[:]); err != nil {
		return nil, err
	}
	if hdr[0] != 'O' || hdr[1] != 'P' || hdr[2] != 'B' || hdr[3] != 'i' || hdr[4] != 'n' {
		return nil, newErr(NotAnOpb, "bad magic")
	}
	if hdr[5] != '1' {
		return nil, newErr(VersionUnsupported, "version byte 0x%02X", hdr[5])
	}
	if hdr[6] != 0 {
		return nil, newErr(NotAnOpb, "reserved byte nonzero")
	}

	formatByte, err := read1(br)
	if err != nil {
		return nil, err
	}
	if formatByte != byte(FormatCompressed) && formatByte != byte(FormatRaw) {
		return nil, newErr(NotAnOpb, "unknown format byte %d", formatByte)
	}

	d := &Decoder{
		br:          br,
		seeker:      seeker,
		logger:      logger,
		instruments: NewInstrumentTable(opts.InstrumentCapacityHint),
	}
	d.header.Format = Format(formatByte)

	if d.header.Format == FormatRaw {
		return d, nil
	}

	var words [compressedHeaderSize]byte
	if err := readFull(br, words[:]); err != nil {
		return nil, err
	}
	d.header.SizeBytes = int64(getHeaderWord(words[0:4]))
	d.header.InstrumentCount = int(getHeaderWord(words[4:8]))
	d.header.ChunkCount = int(getHeaderWord(words[8:12]))

	for i := 0; i < d.header.InstrumentCount; i++ {
		var b [instrumentEntrySize]byte
		if err := readFull(br, b[:]); err != nil {
			return nil, err
		}
		d.instruments.Append(instrumentFromWire(b))
	}

	return d, nil
}

// HeaderInfo returns the session's file-level metadata.
func (d *Decoder) HeaderInfo() HeaderInfo { return d.header }

// ReadBuffer reads up to len(out) commands into out, returning how many
// were read. It returns io.EOF once the command stream is exhausted.
func (d *Decoder) ReadBuffer(out []Command) (int, error) {
	if d.header.Format == FormatRaw {
		return d.readRaw(out)
	}
	return d.readCompressed(out)
}

func (d *Decoder) readRaw(out []Command) (int, error) {
	n := 0
	for n < len(out) {
		if len(d.expansion) > d.expansionPos {
			out[n] = d.expansion[d.expansionPos]
			d.expansionPos++
			n++
			continue
		}
		if _, err := d.br.Peek(1); err != nil {
			d.atEOF = true
			break
		}
		cmd, err := readRawEntry(d.br, &d.sessionTimeMs)
		if err != nil {
			return n, err
		}
		out[n] = cmd
		n++
	}
	if n == 0 && d.atEOF {
		return 0, io.EOF
	}
	return n, nil
}

func (d *Decoder) readCompressed(out []Command) (int, error) {
	n := 0
	for n < len(out) {
		if len(d.expansion) > d.expansionPos {
			copied := copy(out[n:], d.expansion[d.expansionPos:])
			n += copied
			d.expansionPos += copied
			if d.expansionPos >= len(d.expansion) {
				d.expansion = nil
				d.expansionPos = 0
			}
			continue
		}

		if d.chunkIndex >= d.chunkTotal {
			if d.chunksRead >= d.header.ChunkCount {
				d.atEOF = true
				break
			}
			if err := d.readChunkHeader(); err != nil {
				return n, err
			}
			continue
		}

		bankMask := uint16(0)
		if d.chunkIndex >= d.chunkLo {
			bankMask = opBankMask
		}
		baseAddr, err := read1(d.br)
		if err != nil {
			return n, err
		}
		expanded, err := expandCommand(baseAddr, bankMask, d.br, d.instruments, float64(d.sessionTimeMs)/1000, d.logger)
		if err != nil {
			return n, err
		}
		d.chunkIndex++
		d.expansion = expanded
		d.expansionPos = 0
	}
	if n == 0 && d.atEOF {
		return 0, io.EOF
	}
	return n, nil
}

func (d *Decoder) readChunkHeader() error {
	elapsed, err := readVarint(d.br)
	if err != nil {
		return err
	}
	lo, err := readVarint(d.br)
	if err != nil {
		return err
	}
	hi, err := readVarint(d.br)
	if err != nil {
		return err
	}
	d.sessionTimeMs += int(elapsed)
	d.chunkLo = int(lo)
	d.chunkTotal = int(lo + hi)
	d.chunkIndex = 0
	d.chunksRead++
	return nil
}

// Reset rewinds the decoder back to the start of the command stream
// (after the header and instrument table), requiring the Seeker passed
// to Open.
func (d *Decoder) Reset() error {
	if d.seeker == nil {
		return newErr(SeekError, "decoder has no seeker")
	}
	offset := int64(compressedHeaderOffset + compressedHeaderSize + d.header.InstrumentCount*instrumentEntrySize)
	if d.header.Format == FormatRaw {
		offset = 8
	}
	if _, err := d.seeker.Seek(offset, io.SeekStart); err != nil {
		return newErr(SeekError, "%v", err)
	}
	d.br.Reset(readerFromSeeker(d.seeker, d.br))
	d.sessionTimeMs = 0
	d.chunksRead = 0
	d.chunkIndex = 0
	d.chunkLo = 0
	d.chunkTotal = 0
	d.expansion = nil
	d.expansionPos = 0
	d.atEOF = false
	return nil
}

// readerFromSeeker adapts a Seeker back to a Reader for bufio.Reset; in
// practice the Seeker passed to Open is always also a Reader (e.g.
// *os.File or *bytes.Reader).
func readerFromSeeker(s Seeker, fallback io.Reader) io.Reader {
	if r, ok := s.(io.Reader); ok {
		return r
	}
	return fallback
}
