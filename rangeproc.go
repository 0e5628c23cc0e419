package opb

// slotValue holds one classified register's original command alongside
// whether it was ever seen in the current range, so a consumed slot can
// still be re-emitted verbatim if synthesis declines to use it.
type slotValue struct {
	present    bool
	data       uint8
	orderIndex int
}

// rangeSlots tracks the thirteen classified slots of one range plus the
// "other" writes that pass through unclassified.
type rangeSlots struct {
	modChar, modLevel, modAD, modSR, modWave slotValue
	carChar, carLevel, carAD, carSR, carWave slotValue
	freqLo, note, feedConn                   slotValue
	other                                    []internalCommand
}

// processChannel runs the range processor (C5) over one channel's bucket
// and returns the channel's contribution to the merged output stream.
func processChannel(channel int, bucket []internalCommand, instruments *InstrumentTable, pool *dataPool, logger Logger) ([]internalCommand, error) {
	var out []internalCommand

	i := 0
	for i < len(bucket) {
		start := i
		firstTime := bucket[i].time
		noteSeen := isNoteEvent(bucket[i].addr, channel)
		prevOrder := bucket[i].orderIndex
		j := i + 1
		for !noteSeen && j < len(bucket) {
			cmd := bucket[j]
			if cmd.time != firstTime {
				break
			}
			if cmd.orderIndex > prevOrder+1 {
				break
			}
			prevOrder = cmd.orderIndex
			if isNoteEvent(cmd.addr, channel) {
				noteSeen = true
			}
			j++
		}

		rangeCmds := bucket[start:j]
		emitted, err := processRange(channel, rangeCmds, instruments, pool, logger)
		if err != nil {
			return nil, err
		}
		out = append(out, emitted...)
		i = j
	}

	return out, nil
}

// processRange classifies one range's commands, decides whether to
// synthesize a set/play-instrument or note-on opcode, and returns the
// commands (opcodes and/or residual primitives) that replace it.
func processRange(channel int, cmds []internalCommand, instruments *InstrumentTable, pool *dataPool, logger Logger) ([]internalCommand, error) {
	firstTime := cmds[0].time
	var slots rangeSlots

	set := func(slot *slotValue, cmd internalCommand, name string) error {
		if slot.present {
			logger.Warnf("opb: encode: duplicate %s write in channel %d range at %d ms", name, channel, int(firstTime*1000))
			return newErr(Logged, "duplicate %s write in channel %d range at %d ms", name, channel, int(firstTime*1000))
		}
		slot.present = true
		slot.data = cmd.data
		slot.orderIndex = cmd.orderIndex
		return nil
	}

	for _, cmd := range cmds {
		if cmd.time != firstTime {
			logger.Errorf("opb: encode: channel %d: range with divergent timestamps", channel)
			return nil, newErr(Logged, "channel %d: range with divergent timestamps", channel)
		}
		cls := classify(cmd.addr)
		var err error
		switch cls.category {
		case CatCharacter:
			if cls.role == RoleModulator {
				err = set(&slots.modChar, cmd, "mod.char")
			} else {
				err = set(&slots.carChar, cmd, "car.char")
			}
		case CatLevels:
			if cls.role == RoleModulator {
				err = set(&slots.modLevel, cmd, "mod.level")
			} else {
				err = set(&slots.carLevel, cmd, "car.level")
			}
		case CatAttackDecay:
			if cls.role == RoleModulator {
				err = set(&slots.modAD, cmd, "mod.ad")
			} else {
				err = set(&slots.carAD, cmd, "car.ad")
			}
		case CatSustainRelease:
			if cls.role == RoleModulator {
				err = set(&slots.modSR, cmd, "mod.sr")
			} else {
				err = set(&slots.carSR, cmd, "car.sr")
			}
		case CatWaveSelect:
			if cls.role == RoleModulator {
				err = set(&slots.modWave, cmd, "mod.wave")
			} else {
				err = set(&slots.carWave, cmd, "car.wave")
			}
		case CatFrequencyLo:
			err = set(&slots.freqLo, cmd, "freq_lo")
		case CatNote:
			err = set(&slots.note, cmd, "note")
		case CatFeedConn:
			err = set(&slots.feedConn, cmd, "feedconn")
		default:
			slots.other = append(slots.other, cmd)
		}
		if err != nil {
			return nil, err
		}
	}

	var out []internalCommand
	out = append(out, slots.other...)

	bank := 0
	if channel >= 9 {
		bank = opBankMask
	}
	localCh := channel % 9

	instrSlotCount := 0
	for _, p := range []bool{
		slots.feedConn.present, slots.modChar.present, slots.modAD.present, slots.modSR.present,
		slots.modWave.present, slots.carChar.present, slots.carAD.present, slots.carSR.present,
		slots.carWave.present,
	} {
		if p {
			instrSlotCount++
		}
	}

	levelCount := 0
	if slots.modLevel.present {
		levelCount++
	}
	if slots.carLevel.present {
		levelCount++
	}
	freqNotePresent := slots.freqLo.present && slots.note.present

	synthesized := false
	if instrSlotCount > 0 {
		inst := blankInstrument()
		setIf := func(present bool, data uint8) int16 {
			if present {
				return int16(data)
			}
			return unspecified
		}
		inst.FeedConn = setIf(slots.feedConn.present, slots.feedConn.data)
		inst.Modulator.Characteristic = setIf(slots.modChar.present, slots.modChar.data)
		inst.Modulator.AttackDecay = setIf(slots.modAD.present, slots.modAD.data)
		inst.Modulator.SustainRelease = setIf(slots.modSR.present, slots.modSR.data)
		inst.Modulator.WaveSelect = setIf(slots.modWave.present, slots.modWave.data)
		inst.Carrier.Characteristic = setIf(slots.carChar.present, slots.carChar.data)
		inst.Carrier.AttackDecay = setIf(slots.carAD.present, slots.carAD.data)
		inst.Carrier.SustainRelease = setIf(slots.carSR.present, slots.carSR.data)
		inst.Carrier.WaveSelect = setIf(slots.carWave.present, slots.carWave.data)

		index, merged := instruments.Resolve(inst)

		playPairCount := 0
		if freqNotePresent {
			playPairCount = 1
		}
		opcodeCost := varintSize(uint32(index)) + 3 + levelCount + 2*playPairCount
		naiveCost := 2 * (instrSlotCount + levelCount + playPairCount)

		if opcodeCost < naiveCost {
			synthesized = true
			instruments.Commit(index, merged)

			var argBytes []byte
			argBytes = appendVarint(argBytes, uint32(index))

			byte1 := byte(localCh & 0x1F)
			if slots.modLevel.present {
				byte1 |= 0x20
			}
			if slots.carLevel.present {
				byte1 |= 0x40
			}
			if slots.feedConn.present {
				byte1 |= 0x80
			}
			argBytes = append(argBytes, byte1)

			var slotMask byte
			if slots.modChar.present {
				slotMask |= 1 << 0
			}
			if slots.modAD.present {
				slotMask |= 1 << 1
			}
			if slots.modSR.present {
				slotMask |= 1 << 2
			}
			if slots.modWave.present {
				slotMask |= 1 << 3
			}
			if slots.carChar.present {
				slotMask |= 1 << 4
			}
			if slots.carAD.present {
				slotMask |= 1 << 5
			}
			if slots.carSR.present {
				slotMask |= 1 << 6
			}
			if slots.carWave.present {
				slotMask |= 1 << 7
			}
			argBytes = append(argBytes, slotMask)

			reg := uint16(setInstrReg)
			if freqNotePresent {
				reg = playInstr
				argBytes = append(argBytes, slots.freqLo.data, slots.note.data)
			}
			if slots.modLevel.present {
				argBytes = append(argBytes, slots.modLevel.data)
			}
			if slots.carLevel.present {
				argBytes = append(argBytes, slots.carLevel.data)
			}

			dataIdx := pool.add(argBytes)
			out = append(out, internalCommand{
				orderIndex: cmds[0].orderIndex,
				dataIndex:  dataIdx,
				time:       firstTime,
				addr:       reg | uint16(bank),
			})

			slots.feedConn.present = false
			slots.modChar.present = false
			slots.modAD.present = false
			slots.modSR.present = false
			slots.modWave.present = false
			slots.carChar.present = false
			slots.carAD.present = false
			slots.carSR.present = false
			slots.carWave.present = false
			if freqNotePresent {
				slots.freqLo.present = false
				slots.note.present = false
			}
			slots.modLevel.present = false
			slots.carLevel.present = false
		}
	}

	if !synthesized && slots.freqLo.present && slots.note.present {
		noteFlags := slots.note.data & 0x3F
		if slots.modLevel.present {
			noteFlags |= 0x40
		}
		if slots.carLevel.present {
			noteFlags |= 0x80
		}

		argBytes := []byte{slots.freqLo.data, noteFlags}
		if slots.modLevel.present {
			argBytes = append(argBytes, slots.modLevel.data)
		}
		if slots.carLevel.present {
			argBytes = append(argBytes, slots.carLevel.data)
		}

		dataIdx := pool.add(argBytes)
		out = append(out, internalCommand{
			orderIndex: slots.note.orderIndex,
			dataIndex:  dataIdx,
			time:       firstTime,
			addr:       uint16(noteOnBase+localCh) | uint16(bank),
		})

		slots.freqLo.present = false
		slots.note.present = false
		slots.modLevel.present = false
		slots.carLevel.present = false
	}

	appendResidual(&out, channel, bank, localCh, firstTime, &slots)

	return out, nil
}

// appendResidual emits any slot not consumed by synthesis as its
// original primitive command, in the fixed order mandated by §4.5.
func appendResidual(out *[]internalCommand, channel, bank, localCh int, t float64, s *rangeSlots) {
	mo, co := ModOffset(channel), CarOffset(channel)

	prim := func(slot slotValue, addr uint16) {
		if !slot.present {
			return
		}
		*out = append(*out, internalCommand{
			orderIndex: slot.orderIndex,
			time:       t,
			addr:       addr | uint16(bank),
			data:       slot.data,
		})
	}

	prim(s.modChar, uint16(0x20+mo))
	prim(s.modLevel, uint16(0x40+mo))
	prim(s.modAD, uint16(0x60+mo))
	prim(s.modSR, uint16(0x80+mo))
	prim(s.modWave, uint16(0xE0+mo))
	prim(s.carChar, uint16(0x20+co))
	prim(s.carLevel, uint16(0x40+co))
	prim(s.carAD, uint16(0x60+co))
	prim(s.carSR, uint16(0x80+co))
	prim(s.carWave, uint16(0xE0+co))
	prim(s.feedConn, uint16(0xC0+localCh))
	prim(s.freqLo, uint16(0xA0+localCh))
	prim(s.note, uint16(0xB0+localCh))
}
