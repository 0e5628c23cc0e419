package opb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstrumentResolveNewEntry(t *testing.T) {
	table := NewInstrumentTable(0)
	in := blankInstrument()
	in.Modulator.Characteristic = 0x01

	idx, merged := table.Resolve(in)
	assert.Equal(t, 0, idx)
	assert.Equal(t, int16(0x01), merged.Modulator.Characteristic)
	assert.Equal(t, 0, table.Len(), "Resolve must not commit")
}

func TestInstrumentMergeCompatible(t *testing.T) {
	table := NewInstrumentTable(0)

	first := blankInstrument()
	first.Modulator.Characteristic = 0x01
	idx, merged := table.Resolve(first)
	table.Commit(idx, merged)

	second := blankInstrument()
	second.Modulator.AttackDecay = 0x22
	idx2, merged2 := table.Resolve(second)
	assert.Equal(t, 0, idx2, "unspecified slots in the incoming partial must match anything")
	table.Commit(idx2, merged2)

	assert.Equal(t, 1, table.Len())
	got := table.At(0)
	assert.Equal(t, int16(0x01), got.Modulator.Characteristic)
	assert.Equal(t, int16(0x22), got.Modulator.AttackDecay)
}

func TestInstrumentConflictingSlotCreatesNewEntry(t *testing.T) {
	table := NewInstrumentTable(0)

	first := blankInstrument()
	first.Modulator.Characteristic = 0x01
	idx, merged := table.Resolve(first)
	table.Commit(idx, merged)

	second := blankInstrument()
	second.Modulator.Characteristic = 0x02
	idx2, _ := table.Resolve(second)
	assert.Equal(t, 1, idx2, "a contradicting specified slot must not merge into the existing entry")
}

func TestInstrumentWireRoundTrip(t *testing.T) {
	inst := Instrument{
		FeedConn:  0x05,
		Modulator: Operator{0x01, 0x02, 0x03, 0x04},
		Carrier:   Operator{0x11, 0x12, 0x13, 0x14},
	}
	wire := wireBytes(inst)
	back := instrumentFromWire(wire)
	assert.Equal(t, inst.FeedConn, back.FeedConn)
	assert.Equal(t, inst.Modulator, back.Modulator)
	assert.Equal(t, inst.Carrier, back.Carrier)
}

func TestInstrumentUnspecifiedEncodesAsZero(t *testing.T) {
	inst := blankInstrument()
	inst.FeedConn = 7
	wire := wireBytes(inst)
	assert.Equal(t, byte(7), wire[0])
	for _, b := range wire[1:] {
		assert.Equal(t, byte(0), b)
	}
}
