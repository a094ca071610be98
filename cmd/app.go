// Package cmd defines all the commands for the cli
package cmd

import (
	"os"

	"github.com/ChainSafe/go-nasm/internal/logger"
	"github.com/urfave/cli/v2"
)

var (
	VerboseFlag = &cli.BoolFlag{
		Name:     "verbose",
		Usage:    "log discovery probes and the exact assembler command line",
		Required: false,
		Value:    false,
	}
	NoColorFlag = &cli.BoolFlag{
		Name:     "no-color",
		Usage:    "disable colored log output",
		Required: false,
		Value:    false,
	}
)

// NewApp builds the command line application.
func NewApp() *cli.App {
	app := cli.NewApp()
	app.Name = "go-nasm"
	app.Usage = "Drive the nasm assembler"
	app.Description = "Assemble sources with nasm and inspect flat binaries with ndisasm"
	app.Flags = []cli.Flag{
		VerboseFlag,
		NoColorFlag,
	}
	app.Before = func(ctx *cli.Context) error {
		logger.Init(os.Stderr, ctx.Bool(VerboseFlag.Name), ctx.Bool(NoColorFlag.Name))
		return nil
	}
	app.Commands = []*cli.Command{
		CompileCommand,
		BuildCommand,
		FormatsCommand,
		WhichCommand,
		DisasmCommand,
	}
	return app
}
