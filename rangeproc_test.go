package opb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func cmd(order int, addr uint16, data uint8) internalCommand {
	return internalCommand{orderIndex: order, time: 0, addr: addr, data: data}
}

func TestProcessRangeSynthesizesSetInstrumentWhenCheaper(t *testing.T) {
	instruments := NewInstrumentTable(0)
	pool := &dataPool{}
	logger := resolveLogger(nil)

	// All nine instrument slots present, no levels, no freq/note: opcode
	// cost (1 index byte + opcode, channel-mask and slot-mask bytes = 4)
	// beats the naive cost (2 bytes per primitive write x 9 = 18).
	cmds := []internalCommand{
		cmd(0, 0x0C0, 0x05), // feedconn, channel 0
		cmd(1, 0x020, 0x01), // mod.char
		cmd(2, 0x060, 0x02), // mod.ad
		cmd(3, 0x080, 0x03), // mod.sr
		cmd(4, 0x0E0, 0x00), // mod.wave
		cmd(5, 0x023, 0x11), // car.char
		cmd(6, 0x063, 0x12), // car.ad
		cmd(7, 0x083, 0x13), // car.sr
		cmd(8, 0x0E3, 0x01), // car.wave
	}

	out, err := processRange(0, cmds, instruments, pool, logger)
	assert.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Equal(t, uint16(setInstrReg), out[0].addr)
	assert.Equal(t, 1, out[0].dataIndex)
	assert.Equal(t, 1, instruments.Len(), "synthesis must commit exactly one instrument entry")

	args := pool.get(out[0].dataIndex)
	assert.Equal(t, byte(0), args[0], "index 0 varint")
	assert.Equal(t, byte(0), args[1]&0x1F, "channel mask low bits")
	assert.Equal(t, byte(0xFF), args[2], "all nine instrument slots set in the slot mask")
}

func TestProcessRangeDeclinesSynthesisWhenNotCheaper(t *testing.T) {
	instruments := NewInstrumentTable(0)
	pool := &dataPool{}
	logger := resolveLogger(nil)

	// A single instrument slot: opcode cost (4) exceeds the naive cost of
	// re-emitting the one primitive write (2), so synthesis must decline.
	cmds := []internalCommand{cmd(0, 0x020, 0x01)}

	out, err := processRange(0, cmds, instruments, pool, logger)
	assert.NoError(t, err)
	assert.Equal(t, 0, instruments.Len(), "declined synthesis must not commit an instrument")
	assert.Len(t, out, 1)
	assert.Equal(t, uint16(0x020), out[0].addr)
	assert.Equal(t, uint8(0x01), out[0].data)
}

func TestProcessRangeSynthesizesNoteOnWithVolume(t *testing.T) {
	instruments := NewInstrumentTable(0)
	pool := &dataPool{}
	logger := resolveLogger(nil)

	cmds := []internalCommand{
		cmd(0, 0x0A0, 0x44), // freq lo, channel 0
		cmd(1, 0x0B0, 0x21), // note, channel 0 (key-on + block + note bits)
		cmd(2, 0x040, 0x2A), // mod level
	}

	out, err := processRange(0, cmds, instruments, pool, logger)
	assert.NoError(t, err)
	assert.Equal(t, 0, instruments.Len())
	assert.Len(t, out, 1)
	assert.Equal(t, uint16(noteOnBase), out[0].addr)

	args := pool.get(out[0].dataIndex)
	assert.Equal(t, byte(0x44), args[0])
	assert.Equal(t, byte(0x21|0x40), args[1], "mod-level-present bit must be set in note flags")
	assert.Equal(t, byte(0x2A), args[2])
}

func TestProcessRangeDuplicateSlotIsLoggedError(t *testing.T) {
	instruments := NewInstrumentTable(0)
	pool := &dataPool{}
	logger := resolveLogger(nil)

	cmds := []internalCommand{
		cmd(0, 0x020, 0x01),
		cmd(1, 0x020, 0x02), // duplicate mod.char write within the same range
	}

	_, err := processRange(0, cmds, instruments, pool, logger)
	assert.Error(t, err)
	var opbErr *Error
	assert.ErrorAs(t, err, &opbErr)
	assert.Equal(t, Logged, opbErr.Code)
}

func TestProcessChannelSplitsOnTimeBoundary(t *testing.T) {
	instruments := NewInstrumentTable(0)
	pool := &dataPool{}
	logger := resolveLogger(nil)

	bucket := []internalCommand{
		{orderIndex: 0, time: 0, addr: 0x020, data: 0x01},
		{orderIndex: 1, time: 1, addr: 0x040, data: 0x02},
	}

	out, err := processChannel(0, bucket, instruments, pool, logger)
	assert.NoError(t, err)
	assert.Len(t, out, 2)
	assert.Equal(t, 0.0, out[0].time)
	assert.Equal(t, 1.0, out[1].time)
}
