package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	opb "opb"
)

func main() {
	root := &cobra.Command{
		Use:   "opbc",
		Short: "Encode and inspect OPB register-write streams",
	}

	var raw bool
	var instrumentHint int

	encodeCmd := &cobra.Command{
		Use:   "encode <in.txt> <out.opb>",
		Short: "Encode a line-oriented command stream into an OPB file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer in.Close()

			cmds, err := readTextCommands(in)
			if err != nil {
				return fmt.Errorf("parsing %s: %w", args[0], err)
			}

			out, err := os.Create(args[1])
			if err != nil {
				return err
			}
			defer out.Close()

			format := opb.FormatCompressed
			if raw {
				format = opb.FormatRaw
			}
			return opb.Encode(out, cmds, opb.EncodeOptions{
				Format:                 format,
				InstrumentCapacityHint: instrumentHint,
			})
		},
	}
	encodeCmd.Flags().IntVar(&instrumentHint, "instrument-hint", 0, "pre-size the instrument table to this many entries")

	decodeCmd := &cobra.Command{
		Use:   "decode <in.opb> <out.txt>",
		Short: "Decode an OPB file into the line-oriented command stream format",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmds, _, err := decodeFile(args[0])
			if err != nil {
				return err
			}

			out, err := os.Create(args[1])
			if err != nil {
				return err
			}
			defer out.Close()

			return writeTextCommands(out, cmds)
		},
	}

	dumpCmd := &cobra.Command{
		Use:   "dump <in.opb>",
		Short: "Print an OPB file's header fields and decoded command count",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmds, info, err := decodeFile(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("format:            %s\n", info.Format)
			fmt.Printf("size bytes:        %d\n", info.SizeBytes)
			fmt.Printf("instrument count:  %d\n", info.InstrumentCount)
			fmt.Printf("chunk count:       %d\n", info.ChunkCount)
			fmt.Printf("commands:          %d\n", len(cmds))
			return nil
		},
	}

	rawCmd := &cobra.Command{
		Use:   "raw <in.txt> <out.opb>",
		Short: "Encode a line-oriented command stream using the uncompressed C9 format",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw = true
			return encodeCmd.RunE(cmd, args)
		},
	}

	encodeCmd.Flags().BoolVar(&raw, "raw", false, "use the uncompressed C9 format instead of the compressed format")

	root.AddCommand(encodeCmd, decodeCmd, dumpCmd, rawCmd)

	if err := root.Execute(); err != nil {
		fmt.Printf("FATAL: %v\n", err)
		os.Exit(1)
	}
}

// decodeFile opens path as an OPB file and pulls every command from it.
func decodeFile(path string) ([]opb.Command, opb.HeaderInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, opb.HeaderInfo{}, err
	}
	defer f.Close()

	dec, err := opb.Open(f, f, opb.DecodeOptions{})
	if err != nil {
		return nil, opb.HeaderInfo{}, err
	}

	info := dec.HeaderInfo()
	var cmds []opb.Command
	buf := make([]opb.Command, 256)
	for {
		n, err := dec.ReadBuffer(buf)
		cmds = append(cmds, buf[:n]...)
		if err != nil {
			if err != io.EOF {
				return nil, opb.HeaderInfo{}, err
			}
			break
		}
	}
	return cmds, info, nil
}
