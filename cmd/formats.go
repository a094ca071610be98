package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/ChainSafe/go-nasm/nasm"
	"github.com/urfave/cli/v2"
)

func CreateFormatsCommand(action cli.ActionFunc) *cli.Command {
	return &cli.Command{
		Name:        "formats",
		Usage:       "Lists the known output formats",
		Description: "Lists the known output formats with the extension used for derived output paths",
		Action:      action,
	}
}

var FormatsCommand = CreateFormatsCommand(ListFormats)

func ListFormats(ctx *cli.Context) error {
	w := tabwriter.NewWriter(ctx.App.Writer, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "FORMAT\tEXTENSION\tDESCRIPTION")
	for _, f := range nasm.Formats() {
		ext, _ := f.Extension()
		if ext == "" {
			ext = "(none)"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", f.Flag(), ext, f.Description())
	}
	return w.Flush()
}
