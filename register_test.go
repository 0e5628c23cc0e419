package opb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyOperatorRegisters(t *testing.T) {
	got := classify(0x020)
	assert.Equal(t, 0, got.channel)
	assert.Equal(t, RoleModulator, got.role)
	assert.Equal(t, CatCharacter, got.category)

	got = classify(0x023)
	assert.Equal(t, 0, got.channel)
	assert.Equal(t, RoleCarrier, got.role)
	assert.Equal(t, CatCharacter, got.category)

	// Bank 2 (bit 0x100 set) shifts the channel index by 9.
	got = classify(0x120)
	assert.Equal(t, 9, got.channel)
	assert.Equal(t, RoleModulator, got.role)
}

func TestClassifyPerChannelRegisters(t *testing.T) {
	got := classify(0x0A0)
	assert.Equal(t, 0, got.channel)
	assert.Equal(t, CatFrequencyLo, got.category)

	got = classify(0x0B2)
	assert.Equal(t, 2, got.channel)
	assert.Equal(t, CatNote, got.category)

	got = classify(0x0C8)
	assert.Equal(t, 8, got.channel)
	assert.Equal(t, CatFeedConn, got.category)
}

func TestClassifyOpcodeRegisters(t *testing.T) {
	got := classify(0x0D0)
	assert.Equal(t, CatOpSetInstrument, got.category)

	got = classify(0x0D1)
	assert.Equal(t, CatOpPlayInstrument, got.category)

	got = classify(0x0D9)
	assert.Equal(t, CatOpNoteOn, got.category)
	assert.Equal(t, 2, got.channel)
}

func TestClassifyUnusedGapsAreOther(t *testing.T) {
	// 0x06/0x07 fall inside the characteristic block's register range but
	// aren't a valid operator slot offset.
	got := classify(0x026)
	assert.Equal(t, CatOther, got.category)
	assert.Equal(t, -1, got.channel)
}

func TestIsSynthRegister(t *testing.T) {
	assert.True(t, isSynthRegister(0x0D0))
	assert.True(t, isSynthRegister(0x1DF))
	assert.False(t, isSynthRegister(0x0CF))
	assert.False(t, isSynthRegister(0x0E0))
}

func TestIsNoteEvent(t *testing.T) {
	assert.True(t, isNoteEvent(0x0B0, 0))
	assert.True(t, isNoteEvent(0x1B3, 12))
	assert.False(t, isNoteEvent(0x0B1, 0))
}
