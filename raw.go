package opb

import "encoding/binary"

// encodeRaw writes the fixed-size uncompressed alternative format: magic,
// format byte 1, then five bytes per command with no header backpatch.
func encodeRaw(cmds []Command, dst Writer) error {
	if err := writeAll(dst, magic[:]); err != nil {
		return err
	}
	if err := writeAll(dst, []byte{byte(FormatRaw)}); err != nil {
		return err
	}

	prevMs := 0
	for _, c := range cmds {
		ms := int(c.Time*1000 + 0.5)
		elapsed := ms - prevMs
		prevMs = ms

		var entry [5]byte
		binary.BigEndian.PutUint16(entry[0:2], uint16(elapsed))
		binary.BigEndian.PutUint16(entry[2:4], c.Addr)
		entry[4] = c.Data
		if err := writeAll(dst, entry[:]); err != nil {
			return err
		}
	}
	return nil
}

// readRawEntry reads one 5-byte raw-format entry and advances session
// time by elapsed/1000 seconds.
func readRawEntry(r Reader, sessionTimeMs *int) (Command, error) {
	var entry [5]byte
	if err := readFull(r, entry[:]); err != nil {
		return Command{}, err
	}
	elapsed := binary.BigEndian.Uint16(entry[0:2])
	addr := binary.BigEndian.Uint16(entry[2:4])
	data := entry[4]

	*sessionTimeMs += int(elapsed)
	return Command{
		Time: float64(*sessionTimeMs) / 1000,
		Addr: addr,
		Data: data,
	}, nil
}
