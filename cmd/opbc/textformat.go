package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	opb "opb"
)

// writeTextCommands writes cmds as one "time addr data" line each, time in
// seconds with microsecond precision, addr/data in hex.
func writeTextCommands(w io.Writer, cmds []opb.Command) error {
	buf := bufio.NewWriter(w)
	for _, c := range cmds {
		if _, err := fmt.Fprintf(buf, "%.6f 0x%03x 0x%02x\n", c.Time, c.Addr, c.Data); err != nil {
			return err
		}
	}
	return buf.Flush()
}

// readTextCommands parses the line format written by writeTextCommands.
// Blank lines and lines starting with '#' are ignored.
func readTextCommands(r io.Reader) ([]opb.Command, error) {
	var cmds []opb.Command
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, fmt.Errorf("line %d: expected 3 fields, got %d", lineNo, len(fields))
		}
		t, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad time: %w", lineNo, err)
		}
		addr, err := strconv.ParseUint(strings.TrimPrefix(fields[1], "0x"), 16, 16)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad addr: %w", lineNo, err)
		}
		data, err := strconv.ParseUint(strings.TrimPrefix(fields[2], "0x"), 16, 8)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad data: %w", lineNo, err)
		}
		cmds = append(cmds, opb.Command{Time: t, Addr: uint16(addr), Data: uint8(data)})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return cmds, nil
}
