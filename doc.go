// Package opb implements the OPB binary format: a compact encoding of a
// timestamped stream of register writes targeting an OPL3 FM-synthesis
// chip. Encode converts a primitive command stream to the wire format;
// Open/ReadBuffer pull it back out one buffer at a time.
package opb
