package cmd

import (
	"fmt"

	"github.com/ChainSafe/go-nasm/nasm"
	"github.com/urfave/cli/v2"
)

func CreateWhichCommand(action cli.ActionFunc) *cli.Command {
	return &cli.Command{
		Name:        "which",
		Usage:       "Prints the assembler that compile would run",
		Description: "Probes the nasm candidates in PATH order and prints the first working one with its version",
		Action:      action,
		Flags: []cli.Flag{
			AssemblerFlag,
		},
	}
}

var WhichCommand = CreateWhichCommand(WhichAssembler)

func WhichAssembler(ctx *cli.Context) error {
	inst := nasm.New("")
	inst.SetAssembler(ctx.Path(AssemblerFlag.Name))

	path, err := inst.Resolve(ctx.Context)
	if err != nil {
		return err
	}
	version, err := nasm.Version(ctx.Context, path)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(ctx.App.Writer, "%s\t%s\n", path, version)
	return err
}
