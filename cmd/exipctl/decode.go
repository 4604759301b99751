package main

import (
	"bufio"
	"encoding/xml"
	"os"

	"github.com/exip-go/exip/sax"
	"github.com/spf13/cobra"
)

func newDecodeCommand() *cobra.Command {
	var (
		fragment       bool
		byteAligned    bool
		preCompression bool
		strict         bool
		out            string
	)

	cmd := &cobra.Command{
		Use:   "decode <exi-file>",
		Short: "Decode an EXI byte stream back into XML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer in.Close()

			var outW *os.File
			if out == "" {
				outW = os.Stdout
			} else {
				outW, err = os.Create(out)
				if err != nil {
					return err
				}
				defer outW.Close()
			}

			factory := buildFactory(fragment, byteAligned, preCompression, strict)

			decoder, err := sax.NewSAXDecoder(factory)
			if err != nil {
				return err
			}

			xmlWriter := xml.NewEncoder(outW)
			defer xmlWriter.Flush()

			_, err = decoder.Parse(bufio.NewReader(in), xmlWriter)
			return err
		},
	}

	cmd.Flags().BoolVar(&fragment, "fragment", false, "the stream is an XML fragment, not a full document")
	cmd.Flags().BoolVar(&byteAligned, "byte-aligned", false, "expect byte-aligned coding instead of bit-packed")
	cmd.Flags().BoolVar(&preCompression, "pre-compression", false, "expect pre-compression coding mode")
	cmd.Flags().BoolVar(&strict, "strict", false, "expect strict fidelity options (no comments, PIs, or DTDs)")
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default: stdout)")

	return cmd
}
