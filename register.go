package opb

// OpRole identifies which operator within a channel a register targets.
type OpRole int

const (
	RoleNone OpRole = iota
	RoleModulator
	RoleCarrier
)

// Category is the functional grouping of a register's low byte, used to
// decide which slot of a range (§4.5) a command fills.
type Category int

const (
	CatNone Category = iota
	CatCharacter
	CatLevels
	CatAttackDecay
	CatSustainRelease
	CatFrequencyLo
	CatNote
	CatFeedConn
	CatWaveSelect
	CatOther // tremolo/vibrato/percussion/global registers: passed through verbatim
	CatOpSetInstrument
	CatOpPlayInstrument
	CatOpNoteOn
)

const (
	opBankMask  = 0x100
	noteBase    = 0xB0
	setInstrReg = 0xD0
	playInstr   = 0xD1
	noteOnBase  = 0xD7
)

// operatorOffsets maps the 36 two-operator slots (18 channels x 2
// operators) to their register offset within a bank. OPL3 leaves two gaps
// per group of six consecutive channels.
var operatorOffsets = [18][2]int{
	{0x00, 0x03}, {0x01, 0x04}, {0x02, 0x05},
	{0x08, 0x0B}, {0x09, 0x0C}, {0x0A, 0x0D},
	{0x10, 0x13}, {0x11, 0x14}, {0x12, 0x15},
	{0x00, 0x03}, {0x01, 0x04}, {0x02, 0x05},
	{0x08, 0x0B}, {0x09, 0x0C}, {0x0A, 0x0D},
	{0x10, 0x13}, {0x11, 0x14}, {0x12, 0x15},
}

// channelToOffset maps channel 0..17 to its frequency/note/feedconn
// register offset within its bank.
var channelToOffset = [18]int{
	0, 1, 2, 3, 4, 5, 6, 7, 8,
	0, 1, 2, 3, 4, 5, 6, 7, 8,
}

// ModOffset returns the modulator operator register offset for channel c.
func ModOffset(channel int) int { return operatorOffsets[channel][0] }

// CarOffset returns the carrier operator register offset for channel c.
func CarOffset(channel int) int { return operatorOffsets[channel][1] }

// ChannelOffset returns the per-channel register offset (used for
// frequency/note/feedconn registers) for channel c.
func ChannelOffset(channel int) int { return channelToOffset[channel] }

// classified is the result of classifying one 9-bit register address.
type classified struct {
	channel  int // -1 if none
	role     OpRole
	category Category
}

// registerOffsetToChannel maps a 6-bit offset within a sextet-organized
// group (characteristic/level/AD/SR/waveselect registers) to a channel
// index within one bank, or -1.
func registerOffsetToChannel(offset int) int {
	for ch := 0; ch < 9; ch++ {
		mo, co := operatorOffsets[ch][0], operatorOffsets[ch][1]
		if offset == mo || offset == co {
			return ch
		}
	}
	return -1
}

func registerOffsetToRole(offset int) OpRole {
	for ch := 0; ch < 9; ch++ {
		mo, co := operatorOffsets[ch][0], operatorOffsets[ch][1]
		switch offset {
		case mo:
			return RoleModulator
		case co:
			return RoleCarrier
		}
	}
	return RoleNone
}

func channelFromPerChannelOffset(offset int) int {
	for ch := 0; ch < 9; ch++ {
		if channelToOffset[ch] == offset {
			return ch
		}
	}
	return -1
}

// classify maps a 9-bit register address to its channel, operator role,
// and functional category.
func classify(addr uint16) classified {
	bank := 0
	if addr&opBankMask != 0 {
		bank = 9
	}
	low := int(addr &^ opBankMask)

	switch {
	case low >= 0x20 && low <= 0x35:
		ch := registerOffsetToChannel(low - 0x20)
		if ch < 0 {
			return classified{-1, RoleNone, CatOther}
		}
		return classified{ch + bank, registerOffsetToRole(low - 0x20), CatCharacter}
	case low >= 0x40 && low <= 0x55:
		ch := registerOffsetToChannel(low - 0x40)
		if ch < 0 {
			return classified{-1, RoleNone, CatOther}
		}
		return classified{ch + bank, registerOffsetToRole(low - 0x40), CatLevels}
	case low >= 0x60 && low <= 0x75:
		ch := registerOffsetToChannel(low - 0x60)
		if ch < 0 {
			return classified{-1, RoleNone, CatOther}
		}
		return classified{ch + bank, registerOffsetToRole(low - 0x60), CatAttackDecay}
	case low >= 0x80 && low <= 0x95:
		ch := registerOffsetToChannel(low - 0x80)
		if ch < 0 {
			return classified{-1, RoleNone, CatOther}
		}
		return classified{ch + bank, registerOffsetToRole(low - 0x80), CatSustainRelease}
	case low >= 0xA0 && low <= 0xA8:
		ch := channelFromPerChannelOffset(low - 0xA0)
		if ch < 0 {
			return classified{-1, RoleNone, CatOther}
		}
		return classified{ch + bank, RoleNone, CatFrequencyLo}
	case low >= 0xB0 && low <= 0xB8:
		ch := channelFromPerChannelOffset(low - 0xB0)
		if ch < 0 {
			return classified{-1, RoleNone, CatOther}
		}
		return classified{ch + bank, RoleNone, CatNote}
	case low >= 0xC0 && low <= 0xC8:
		ch := channelFromPerChannelOffset(low - 0xC0)
		if ch < 0 {
			return classified{-1, RoleNone, CatOther}
		}
		return classified{ch + bank, RoleNone, CatFeedConn}
	case low >= 0xE0 && low <= 0xF5:
		ch := registerOffsetToChannel(low - 0xE0)
		if ch < 0 {
			return classified{-1, RoleNone, CatOther}
		}
		return classified{ch + bank, registerOffsetToRole(low - 0xE0), CatWaveSelect}
	case low == setInstrReg || low == playInstr:
		cat := CatOpSetInstrument
		if low == playInstr {
			cat = CatOpPlayInstrument
		}
		return classified{-1, RoleNone, cat}
	case low >= noteOnBase && low <= 0xDF:
		return classified{(low - noteOnBase) + bank, RoleNone, CatOpNoteOn}
	default:
		return classified{-1, RoleNone, CatOther}
	}
}

// isNoteEvent reports whether addr is the note register of channel.
func isNoteEvent(addr uint16, channel int) bool {
	bank := 0
	if channel >= 9 {
		bank = opBankMask
	}
	want := uint16(noteBase+channelToOffset[channel%9]) | uint16(bank)
	return addr == want
}

// isSynthRegister reports whether addr falls in the synthetic opcode
// range 0xD0-0xDF (bank bit ignored), which primitive input commands may
// never legally target.
func isSynthRegister(addr uint16) bool {
	low := addr &^ opBankMask
	return low >= 0xD0 && low <= 0xDF
}
