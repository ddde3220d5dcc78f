// Command pngdecode is the CLI collaborator spec.md §6 names: it accepts a
// single path argument, decodes the PNG at that path into a BGRA buffer,
// and reports success or a format/I/O error via its exit code. Presenting
// the decoded pixels on screen and the window event loop are out of scope
// (spec.md §1) — this driver only proves the decode pipeline end to end.
package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/adpollak/pngcore/internal/pngdecode"
)

func main() {
	root := &cobra.Command{
		Use:   "pngdecode <path>",
		Short: "Decode a PNG file into a BGRA pixel buffer",
		Args:  cobra.ExactArgs(1),
		RunE:  run,
	}
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	path := args[0]
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	img, err := pngdecode.Decode(f)
	if err != nil {
		return err
	}
	fmt.Printf("decoded %s: %dx%d, pitch %d, %d bytes\n", path, img.Width, img.Height, img.Pitch, len(img.Pix))
	return nil
}
