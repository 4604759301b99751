// Command exipctl is the informational command-line surface spec.md §6
// names for exercising the codec: it streams an XML document through the
// encoder to produce an EXI byte stream, or an EXI stream back through the
// decoder to recover XML. Schema-informed coding needs a tree-table forest
// from an external XSD parser, which is out of scope (see
// schemagen/treetable.go); exipctl always runs schema-less.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "exipctl",
		Short: "Encode XML to EXI and decode EXI back to XML",
	}

	root.AddCommand(newEncodeCommand())
	root.AddCommand(newDecodeCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
