package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ChainSafe/go-nasm/nasm"
	"github.com/urfave/cli/v2"
)

var (
	AssemblerFlag = &cli.PathFlag{
		Name:     "assembler",
		Usage:    "Path to the nasm executable. Default: first working nasm in PATH",
		EnvVars:  []string{"NASM"},
		Required: false,
	}
	FormatFlag = &cli.StringFlag{
		Name:        "format",
		Aliases:     []string{"f"},
		Usage:       "Output format. See the formats command; unknown names are passed to nasm as is",
		Required:    false,
		DefaultText: "bin",
	}
	OutputFlag = &cli.PathFlag{
		Name:     "output",
		Aliases:  []string{"o"},
		Usage:    "Output file. Default: derived from the input file and format",
		Required: false,
	}
	DryRunFlag = &cli.BoolFlag{
		Name:     "dry-run",
		Usage:    "print the assembler command line instead of running it",
		Required: false,
		Value:    false,
	}
)

func CreateCompileCommand(action cli.ActionFunc) *cli.Command {
	return &cli.Command{
		Name:        "compile",
		Usage:       "Assembles a single source file",
		ArgsUsage:   "<file> [-- nasm arguments...]",
		Description: "Assembles a single source file. Arguments after the file are passed to nasm unchanged",
		Action:      action,
		Flags: []cli.Flag{
			AssemblerFlag,
			FormatFlag,
			OutputFlag,
			DryRunFlag,
		},
	}
}

var CompileCommand = CreateCompileCommand(CompileFile)

func CompileFile(ctx *cli.Context) error {
	args := ctx.Args().Slice()
	if len(args) == 0 {
		return errors.New("missing input file")
	}
	extra := args[1:]
	if len(extra) > 0 && extra[0] == "--" {
		extra = extra[1:]
	}

	inst := nasm.New(args[0])
	inst.SetAssembler(ctx.Path(AssemblerFlag.Name))
	inst.SetFormat(nasm.ParseFormat(ctx.String(FormatFlag.Name)))
	inst.SetOutput(ctx.Path(OutputFlag.Name))
	inst.Args(extra...)
	inst.Stdout = ctx.App.Writer
	inst.Stderr = ctx.App.ErrWriter

	if ctx.Bool(DryRunFlag.Name) {
		return printCommandLine(ctx, inst)
	}

	output, err := inst.CompileContext(ctx.Context)
	if err != nil {
		return exitError(err)
	}
	_, err = fmt.Fprintln(ctx.App.Writer, output)
	return err
}

func printCommandLine(ctx *cli.Context, inst *nasm.Instance) error {
	args, _, err := inst.Arguments()
	if err != nil {
		return err
	}
	assembler := inst.Assembler()
	if assembler == "" {
		assembler = nasm.DefaultAssembler
	}
	_, err = fmt.Fprintln(ctx.App.Writer, strings.Join(append([]string{assembler}, args...), " "))
	return err
}

// exitError keeps the assembler's exit code as the exit code of the cli.
func exitError(err error) error {
	if errors.Is(err, nasm.ErrAssemblerNotFound) {
		return err
	}
	var exitErr *nasm.ExitError
	if errors.As(err, &exitErr) && exitErr.Known {
		return cli.Exit(err.Error(), exitErr.Code)
	}
	return err
}
