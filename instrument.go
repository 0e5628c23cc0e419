package opb

// unspecified marks a slot of an Operator/Instrument that was never
// contributed by any write.
const unspecified int16 = -1

// Operator holds the four register-derived fields of one OPL3 operator.
// -1 in any field means "unspecified".
type Operator struct {
	Characteristic  int16
	AttackDecay     int16
	SustainRelease  int16
	WaveSelect      int16
}

// Instrument is a partial or complete voice timbre definition: the nine
// slots that define an instrument, excluding note/frequency/level.
type Instrument struct {
	FeedConn  int16
	Modulator Operator
	Carrier   Operator
	Index     int
}

func blankInstrument() Instrument {
	return Instrument{
		FeedConn:  unspecified,
		Modulator: Operator{unspecified, unspecified, unspecified, unspecified},
		Carrier:   Operator{unspecified, unspecified, unspecified, unspecified},
	}
}

// InstrumentTable interns merge-compatible partial instrument
// descriptions into unique entries with stable indices (C3).
type InstrumentTable struct {
	entries []Instrument
}

// NewInstrumentTable returns an empty table, optionally reserving
// capacity up front per the capacity hint supplemented in SPEC_FULL §12.
func NewInstrumentTable(capacityHint int) *InstrumentTable {
	return &InstrumentTable{entries: make([]Instrument, 0, capacityHint)}
}

// Len returns the number of interned instruments.
func (t *InstrumentTable) Len() int { return len(t.entries) }

// At returns the interned instrument at index i.
func (t *InstrumentTable) At(i int) Instrument { return t.entries[i] }

// All returns the interned instruments in insertion order.
func (t *InstrumentTable) All() []Instrument { return t.entries }

// Append adds a fully-formed instrument directly, used when loading a
// table from a file's instrument section on decode. Returns the new
// entry's index.
func (t *InstrumentTable) Append(inst Instrument) int {
	inst.Index = len(t.entries)
	t.entries = append(t.entries, inst)
	return inst.Index
}

// canCombine reports whether an existing entry e can absorb an incoming
// partial instrument in. Every specified (non -1) slot of in must either
// be unspecified in e or equal to e's value.
//
// The carrier wave-select slot is checked like every other slot: the
// original C encoder's equivalent check has a parenthesization bug that
// ORs "carrier wave-select unspecified" across the whole conjunction
// rather than just that slot, which would make any instrument whose
// carrier wave-select is unspecified match anything. That is not
// reproduced here (see DESIGN.md open question 1).
func canCombine(e, in Instrument) bool {
	slotOK := func(existing, incoming int16) bool {
		return incoming == unspecified || existing == unspecified || existing == incoming
	}
	return slotOK(e.FeedConn, in.FeedConn) &&
		slotOK(e.Modulator.Characteristic, in.Modulator.Characteristic) &&
		slotOK(e.Modulator.AttackDecay, in.Modulator.AttackDecay) &&
		slotOK(e.Modulator.SustainRelease, in.Modulator.SustainRelease) &&
		slotOK(e.Modulator.WaveSelect, in.Modulator.WaveSelect) &&
		slotOK(e.Carrier.Characteristic, in.Carrier.Characteristic) &&
		slotOK(e.Carrier.AttackDecay, in.Carrier.AttackDecay) &&
		slotOK(e.Carrier.SustainRelease, in.Carrier.SustainRelease) &&
		slotOK(e.Carrier.WaveSelect, in.Carrier.WaveSelect)
}

func mergeSlot(existing *int16, incoming int16) {
	if incoming != unspecified && *existing == unspecified {
		*existing = incoming
	}
}

func merge(e *Instrument, in Instrument) {
	mergeSlot(&e.FeedConn, in.FeedConn)
	mergeSlot(&e.Modulator.Characteristic, in.Modulator.Characteristic)
	mergeSlot(&e.Modulator.AttackDecay, in.Modulator.AttackDecay)
	mergeSlot(&e.Modulator.SustainRelease, in.Modulator.SustainRelease)
	mergeSlot(&e.Modulator.WaveSelect, in.Modulator.WaveSelect)
	mergeSlot(&e.Carrier.Characteristic, in.Carrier.Characteristic)
	mergeSlot(&e.Carrier.AttackDecay, in.Carrier.AttackDecay)
	mergeSlot(&e.Carrier.SustainRelease, in.Carrier.SustainRelease)
	mergeSlot(&e.Carrier.WaveSelect, in.Carrier.WaveSelect)
}

// Resolve looks up the table entry a partial instrument description would
// intern into, without committing anything: it returns the prospective
// index and the merged entry that would result. The range processor
// calls this to price a set/play opcode before deciding whether to emit
// it — an instrument must only occupy a table slot once some opcode
// actually references it, so lookup and commit are split in two.
func (t *InstrumentTable) Resolve(in Instrument) (index int, merged Instrument) {
	for i := range t.entries {
		if canCombine(t.entries[i], in) {
			merged = t.entries[i]
			merge(&merged, in)
			return i, merged
		}
	}
	return len(t.entries), in
}

// Commit stores the result of a prior Resolve call: if index names an
// existing entry it is overwritten with merged, otherwise merged is
// appended as a new entry.
func (t *InstrumentTable) Commit(index int, merged Instrument) int {
	merged.Index = index
	if index < len(t.entries) {
		t.entries[index] = merged
		return index
	}
	t.entries = append(t.entries, merged)
	return index
}

// wireBytes encodes one instrument entry as the 9-byte wire layout:
// feedconn, mod.char, mod.ad, mod.sr, mod.wave, car.char, car.ad, car.sr,
// car.wave. Unspecified slots encode as 0.
func wireBytes(inst Instrument) [9]byte {
	b := func(v int16) byte {
		if v == unspecified {
			return 0
		}
		return byte(v)
	}
	return [9]byte{
		b(inst.FeedConn),
		b(inst.Modulator.Characteristic), b(inst.Modulator.AttackDecay),
		b(inst.Modulator.SustainRelease), b(inst.Modulator.WaveSelect),
		b(inst.Carrier.Characteristic), b(inst.Carrier.AttackDecay),
		b(inst.Carrier.SustainRelease), b(inst.Carrier.WaveSelect),
	}
}

func instrumentFromWire(b [9]byte) Instrument {
	return Instrument{
		FeedConn:  int16(b[0]),
		Modulator: Operator{int16(b[1]), int16(b[2]), int16(b[3]), int16(b[4])},
		Carrier:   Operator{int16(b[5]), int16(b[6]), int16(b[7]), int16(b[8])},
	}
}
