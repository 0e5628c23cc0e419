package opb

// expandCommand is the command expander (C8), the inverse of the range
// processor: it reads one wire command (primitive or synthetic opcode)
// from r and returns the primitive Commands it represents.
func expandCommand(baseAddr byte, bankMask uint16, r Reader, instruments *InstrumentTable, sessionTime float64, logger Logger) ([]Command, error) {
	switch {
	case baseAddr < setInstrReg || baseAddr > 0xDF:
		data, err := read1(r)
		if err != nil {
			return nil, err
		}
		return []Command{{Time: sessionTime, Addr: uint16(baseAddr) | bankMask, Data: data}}, nil

	case baseAddr == setInstrReg || baseAddr == playInstr:
		return expandSetPlay(baseAddr, bankMask, r, instruments, sessionTime, logger)

	default: // 0xD7..0xDF: note-on with inline volume
		return expandNoteOn(baseAddr, bankMask, r, sessionTime, logger)
	}
}

func expandSetPlay(baseAddr byte, bankMask uint16, r Reader, instruments *InstrumentTable, sessionTime float64, logger Logger) ([]Command, error) {
	index, err := readVarint(r)
	if err != nil {
		return nil, err
	}
	if int(index) >= instruments.Len() {
		logger.Errorf("opb: decode: instrument index %d out of range (table has %d)", index, instruments.Len())
		return nil, newErr(Logged, "instrument index %d out of range", index)
	}
	inst := instruments.At(int(index))

	channelByte, err := read1(r)
	if err != nil {
		return nil, err
	}
	channel := int(channelByte & 0x1F)
	if channel >= numChannels {
		logger.Errorf("opb: decode: channel %d out of range", channel)
		return nil, newErr(Logged, "channel %d out of range", channel)
	}
	modLvl := channelByte&0x20 != 0
	carLvl := channelByte&0x40 != 0
	feedConn := channelByte&0x80 != 0

	slotMask, err := read1(r)
	if err != nil {
		return nil, err
	}

	var freq, note byte
	isPlay := baseAddr == playInstr
	if isPlay {
		if freq, err = read1(r); err != nil {
			return nil, err
		}
		if note, err = read1(r); err != nil {
			return nil, err
		}
	}

	var modLevel, carLevel byte
	if modLvl {
		if modLevel, err = read1(r); err != nil {
			return nil, err
		}
	}
	if carLvl {
		if carLevel, err = read1(r); err != nil {
			return nil, err
		}
	}

	mo, co := ModOffset(channel), CarOffset(channel)
	localCh := channel % 9
	var out []Command
	emit := func(addr int, data byte) {
		out = append(out, Command{Time: sessionTime, Addr: uint16(addr) | bankMask, Data: data})
	}

	if feedConn {
		emit(0xC0+localCh, byte(inst.FeedConn))
	}
	if slotMask&(1<<0) != 0 {
		emit(0x20+mo, byte(inst.Modulator.Characteristic))
	}
	if modLvl {
		emit(0x40+mo, modLevel)
	}
	if slotMask&(1<<1) != 0 {
		emit(0x60+mo, byte(inst.Modulator.AttackDecay))
	}
	if slotMask&(1<<2) != 0 {
		emit(0x80+mo, byte(inst.Modulator.SustainRelease))
	}
	if slotMask&(1<<3) != 0 {
		emit(0xE0+mo, byte(inst.Modulator.WaveSelect))
	}
	if slotMask&(1<<4) != 0 {
		emit(0x20+co, byte(inst.Carrier.Characteristic))
	}
	if carLvl {
		emit(0x40+co, carLevel)
	}
	if slotMask&(1<<5) != 0 {
		emit(0x60+co, byte(inst.Carrier.AttackDecay))
	}
	if slotMask&(1<<6) != 0 {
		emit(0x80+co, byte(inst.Carrier.SustainRelease))
	}
	if slotMask&(1<<7) != 0 {
		emit(0xE0+co, byte(inst.Carrier.WaveSelect))
	}
	if isPlay {
		emit(0xA0+localCh, freq)
		emit(0xB0+localCh, note)
	}

	return out, nil
}

func expandNoteOn(baseAddr byte, bankMask uint16, r Reader, sessionTime float64, logger Logger) ([]Command, error) {
	channel := int(baseAddr-noteOnBase) + 0
	if bankMask != 0 {
		channel += 9
	}
	if channel >= numChannels {
		logger.Errorf("opb: decode: note-on channel %d out of range", channel)
		return nil, newErr(Logged, "note-on channel %d out of range", channel)
	}

	freq, err := read1(r)
	if err != nil {
		return nil, err
	}
	noteFlags, err := read1(r)
	if err != nil {
		return nil, err
	}

	localCh := channel % 9
	mo, co := ModOffset(channel), CarOffset(channel)

	out := []Command{
		{Time: sessionTime, Addr: uint16(0xA0+localCh) | bankMask, Data: freq},
		{Time: sessionTime, Addr: uint16(0xB0+localCh) | bankMask, Data: noteFlags & 0x3F},
	}

	if noteFlags&0x40 != 0 {
		modLevel, err := read1(r)
		if err != nil {
			return nil, err
		}
		out = append(out, Command{Time: sessionTime, Addr: uint16(0x40+mo) | bankMask, Data: modLevel})
	}
	if noteFlags&0x80 != 0 {
		carLevel, err := read1(r)
		if err != nil {
			return nil, err
		}
		out = append(out, Command{Time: sessionTime, Addr: uint16(0x40+co) | bankMask, Data: carLevel})
	}

	return out, nil
}

func read1(r Reader) (byte, error) {
	var b [1]byte
	if err := readFull(r, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}
