package opb

import "sort"

// WriteSeeker bundles Writer and Seeker for callers that need header
// backpatching (the compressed format only).
type WriteSeeker interface {
	Writer
	Seeker
}

// EncodeOptions configures an encode operation. The zero value encodes
// in the compressed format with the package default logger.
type EncodeOptions struct {
	Format Format
	Logger Logger

	// InstrumentCapacityHint sizes the initial instrument table
	// allocation; see SPEC_FULL.md §12.
	InstrumentCapacityHint int
}

// Encode converts a primitive command stream to the OPB binary format
// and writes it to dst. The compressed format requires dst to support
// seeking (for header backpatching); the raw format only writes forward.
func Encode(dst WriteSeeker, cmds []Command, opts EncodeOptions) error {
	logger := resolveLogger(opts.Logger)
	filtered := filterIllegalInput(cmds, logger)

	if opts.Format == FormatRaw {
		return encodeRaw(filtered, dst)
	}
	return encodeCompressed(filtered, dst, logger, opts.InstrumentCapacityHint)
}

// filterIllegalInput drops any command whose address falls in the
// synthetic opcode range 0xD0-0xDF, since such a command would collide
// with the compressed format's opcode encoding.
func filterIllegalInput(cmds []Command, logger Logger) []Command {
	out := make([]Command, 0, len(cmds))
	for _, c := range cmds {
		if isSynthRegister(c.Addr) {
			logger.Warnf("opb: encode: dropping illegal input command addr=0x%03X (reserved opcode range)", c.Addr)
			continue
		}
		out = append(out, c)
	}
	return out
}

func toInternal(cmds []Command) []internalCommand {
	out := make([]internalCommand, len(cmds))
	for i, c := range cmds {
		out[i] = internalCommand{
			orderIndex: i,
			time:       c.Time,
			addr:       c.Addr,
			data:       c.Data,
		}
	}
	return out
}

func encodeCompressed(cmds []Command, dst WriteSeeker, logger Logger, instrCapHint int) error {
	internal := toInternal(cmds)
	buckets := splitTracks(internal)

	instruments := NewInstrumentTable(instrCapHint)
	pool := &dataPool{}

	var merged []internalCommand
	for ch := 0; ch < numChannels; ch++ {
		out, err := processChannel(ch, buckets[ch], instruments, pool, logger)
		if err != nil {
			return err
		}
		merged = append(merged, out...)
	}
	// The "other" bucket's commands bypass range synthesis entirely:
	// they carry no channel, so none of C5's slot classification applies.
	merged = append(merged, buckets[otherBucket]...)

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].orderIndex < merged[j].orderIndex
	})

	if err := writeAll(dst, magic[:]); err != nil {
		return err
	}
	if err := writeAll(dst, []byte{byte(FormatCompressed)}); err != nil {
		return err
	}

	headerPos, err := asTeller(dst).Tell()
	if err != nil {
		return newErr(TellError, "%v", err)
	}
	var placeholder [compressedHeaderSize]byte
	if err := writeAll(dst, placeholder[:]); err != nil {
		return err
	}

	for _, inst := range instruments.All() {
		b := wireBytes(inst)
		if err := writeAll(dst, b[:]); err != nil {
			return err
		}
	}

	chunkCount, err := writeChunks(dst, merged, pool)
	if err != nil {
		return err
	}

	endPos, err := asTeller(dst).Tell()
	if err != nil {
		return newErr(TellError, "%v", err)
	}

	var header [compressedHeaderSize]byte
	putHeaderWord(header[0:4], uint32(endPos))
	putHeaderWord(header[4:8], uint32(instruments.Len()))
	putHeaderWord(header[8:12], uint32(chunkCount))

	if _, err := dst.Seek(headerPos, 0); err != nil {
		return newErr(SeekError, "%v", err)
	}
	if err := writeAll(dst, header[:]); err != nil {
		return err
	}
	if _, err := dst.Seek(endPos, 0); err != nil {
		return newErr(SeekError, "%v", err)
	}
	return nil
}

// writeChunks groups the merged, sorted command stream into timed
// chunks (C6) and writes them, returning the number of chunks written.
func writeChunks(dst Writer, merged []internalCommand, pool *dataPool) (int, error) {
	prevChunkMs := 0
	chunkCount := 0

	i := 0
	for i < len(merged) {
		j := i + 1
		for j < len(merged) && merged[j].time == merged[i].time {
			j++
		}
		group := merged[i:j]

		timeMs := int(group[0].time*1000 + 0.5)
		elapsed := timeMs - prevChunkMs
		prevChunkMs = timeMs

		var lo, hi []internalCommand
		for _, c := range group {
			if c.addr&opBankMask == 0 {
				lo = append(lo, c)
			} else {
				hi = append(hi, c)
			}
		}

		var hdr []byte
		hdr = appendVarint(hdr, uint32(elapsed))
		hdr = appendVarint(hdr, uint32(len(lo)))
		hdr = appendVarint(hdr, uint32(len(hi)))
		if err := writeAll(dst, hdr); err != nil {
			return 0, err
		}

		for _, c := range append(lo, hi...) {
			if err := writeWireCommand(dst, c, pool); err != nil {
				return 0, err
			}
		}

		chunkCount++
		i = j
	}
	return chunkCount, nil
}

func writeWireCommand(dst Writer, c internalCommand, pool *dataPool) error {
	baseAddr := byte(c.addr & 0xFF)
	if err := writeAll(dst, []byte{baseAddr}); err != nil {
		return err
	}
	if c.dataIndex != 0 {
		return writeAll(dst, pool.get(c.dataIndex))
	}
	return writeAll(dst, []byte{c.data})
}
