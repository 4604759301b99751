package main

import (
	"bufio"
	"os"

	"github.com/exip-go/exip/core"
	"github.com/exip-go/exip/sax"
	"github.com/spf13/cobra"
)

func newEncodeCommand() *cobra.Command {
	var (
		fragment       bool
		byteAligned    bool
		preCompression bool
		strict         bool
		out            string
	)

	cmd := &cobra.Command{
		Use:   "encode <xml-file>",
		Short: "Encode an XML document into an EXI byte stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer in.Close()

			outFile := out
			if outFile == "" {
				outFile = args[0] + ".exi"
			}
			outW, err := os.Create(outFile)
			if err != nil {
				return err
			}
			defer outW.Close()

			factory := buildFactory(fragment, byteAligned, preCompression, strict)

			encoder, err := sax.NewSAXEncoder(factory)
			if err != nil {
				return err
			}

			writer := bufio.NewWriter(outW)
			if err := encoder.SetWriter(writer); err != nil {
				return err
			}

			if err := encoder.Encode(bufio.NewReader(in), nil); err != nil {
				return err
			}

			return writer.Flush()
		},
	}

	cmd.Flags().BoolVar(&fragment, "fragment", false, "the input is an XML fragment, not a full document")
	cmd.Flags().BoolVar(&byteAligned, "byte-aligned", false, "use byte-aligned coding instead of bit-packed")
	cmd.Flags().BoolVar(&preCompression, "pre-compression", false, "use pre-compression coding mode")
	cmd.Flags().BoolVar(&strict, "strict", false, "use strict fidelity options (no comments, PIs, or DTDs)")
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default: <input>.exi)")

	return cmd
}

func buildFactory(fragment, byteAligned, preCompression, strict bool) core.EXIFactory {
	factory := core.NewDefaultEXIFactory()
	factory.SetFragment(fragment)

	switch {
	case preCompression:
		factory.SetCodingMode(core.CodingModePreCompression)
	case byteAligned:
		factory.SetCodingMode(core.CodingModeBytePacked)
	default:
		factory.SetCodingMode(core.CodingModeBitPacked)
	}

	if strict {
		factory.SetFidelityOptions(core.NewStrictFidelityOptions())
	}

	return factory
}
