package opb

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func roundTrip(t *testing.T, format Format, cmds []Command) []Command {
	t.Helper()
	var buf Buffer
	assert.NoError(t, Encode(&buf, cmds, EncodeOptions{Format: format}))

	buf.pos = 0
	dec, err := Open(&buf, &buf, DecodeOptions{})
	assert.NoError(t, err)

	var got []Command
	out := make([]Command, 8)
	for {
		n, err := dec.ReadBuffer(out)
		got = append(got, out[:n]...)
		if err != nil {
			assert.ErrorIs(t, err, io.EOF)
			break
		}
	}
	return got
}

func TestRoundTripRawFormat(t *testing.T) {
	cmds := []Command{
		{Time: 0, Addr: 0x020, Data: 0x01},
		{Time: 0.010, Addr: 0x040, Data: 0x02},
		{Time: 0.020, Addr: 0x0B0, Data: 0x21},
	}
	got := roundTrip(t, FormatRaw, cmds)
	assert.ElementsMatch(t, cmds, got)
}

// This exercises the set-instrument opcode synthesis path (instrument
// table gains exactly one entry, nine slot writes collapse into one
// opcode) end to end through Encode -> Open -> ReadBuffer.
func TestRoundTripSetInstrumentSynthesis(t *testing.T) {
	cmds := []Command{
		{Time: 0, Addr: 0x0C0, Data: 0x05},
		{Time: 0, Addr: 0x020, Data: 0x01},
		{Time: 0, Addr: 0x060, Data: 0x02},
		{Time: 0, Addr: 0x080, Data: 0x03},
		{Time: 0, Addr: 0x0E0, Data: 0x00},
		{Time: 0, Addr: 0x023, Data: 0x11},
		{Time: 0, Addr: 0x063, Data: 0x12},
		{Time: 0, Addr: 0x083, Data: 0x13},
		{Time: 0, Addr: 0x0E3, Data: 0x01},
	}

	var buf Buffer
	assert.NoError(t, Encode(&buf, cmds, EncodeOptions{Format: FormatCompressed}))

	buf.pos = 0
	dec, err := Open(&buf, &buf, DecodeOptions{})
	assert.NoError(t, err)
	assert.Equal(t, 1, dec.HeaderInfo().InstrumentCount)
	assert.Equal(t, 1, dec.HeaderInfo().ChunkCount)

	var got []Command
	out := make([]Command, 16)
	for {
		n, err := dec.ReadBuffer(out)
		got = append(got, out[:n]...)
		if err != nil {
			break
		}
	}
	assert.ElementsMatch(t, cmds, got)
}

// A play-instrument opcode (set slots plus a simultaneous frequency/note
// pair) exercises the two-byte argument tail and the note expansion path.
func TestRoundTripPlayInstrumentSynthesis(t *testing.T) {
	cmds := []Command{
		{Time: 0, Addr: 0x0C0, Data: 0x05},
		{Time: 0, Addr: 0x020, Data: 0x01},
		{Time: 0, Addr: 0x060, Data: 0x02},
		{Time: 0, Addr: 0x080, Data: 0x03},
		{Time: 0, Addr: 0x0E0, Data: 0x00},
		{Time: 0, Addr: 0x023, Data: 0x11},
		{Time: 0, Addr: 0x063, Data: 0x12},
		{Time: 0, Addr: 0x083, Data: 0x13},
		{Time: 0, Addr: 0x0E3, Data: 0x01},
		{Time: 0, Addr: 0x0A0, Data: 0x44},
		{Time: 0, Addr: 0x0B0, Data: 0x21},
	}
	got := roundTrip(t, FormatCompressed, cmds)
	assert.ElementsMatch(t, cmds, got)
}

func TestEncodeFiltersIllegalOpcodeRangeAddresses(t *testing.T) {
	cmds := []Command{
		{Time: 0, Addr: 0x020, Data: 0x01},
		{Time: 0, Addr: 0x0D3, Data: 0xFF}, // reserved opcode range, must be dropped
	}
	got := roundTrip(t, FormatCompressed, cmds)
	assert.ElementsMatch(t, []Command{{Time: 0, Addr: 0x020, Data: 0x01}}, got)
}

func TestOpenRejectsBadMagic(t *testing.T) {
	var buf Buffer
	buf.Write([]byte("NOTOPBxx"))
	buf.pos = 0
	_, err := Open(&buf, &buf, DecodeOptions{})
	assert.Error(t, err)
	var opbErr *Error
	assert.ErrorAs(t, err, &opbErr)
	assert.Equal(t, NotAnOpb, opbErr.Code)
}

func TestOpenRejectsUnsupportedVersion(t *testing.T) {
	var buf Buffer
	buf.Write([]byte("OPBin2\x00"))
	buf.pos = 0
	_, err := Open(&buf, &buf, DecodeOptions{})
	assert.Error(t, err)
	var opbErr *Error
	assert.ErrorAs(t, err, &opbErr)
	assert.Equal(t, VersionUnsupported, opbErr.Code)
}

func TestDecoderReset(t *testing.T) {
	cmds := []Command{
		{Time: 0, Addr: 0x020, Data: 0x01},
		{Time: 0.010, Addr: 0x040, Data: 0x02},
	}
	var buf Buffer
	assert.NoError(t, Encode(&buf, cmds, EncodeOptions{Format: FormatCompressed}))

	buf.pos = 0
	dec, err := Open(&buf, &buf, DecodeOptions{})
	assert.NoError(t, err)

	out := make([]Command, 8)
	n, err := dec.ReadBuffer(out)
	assert.NoError(t, err)
	assert.NotZero(t, n)

	assert.NoError(t, dec.Reset())

	var got []Command
	for {
		n, err := dec.ReadBuffer(out)
		got = append(got, out[:n]...)
		if err != nil {
			break
		}
	}
	assert.ElementsMatch(t, cmds, got)
}
