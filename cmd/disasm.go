package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/ChainSafe/go-nasm/disassembler"
	"github.com/ChainSafe/go-nasm/disassembler/manager"
	"github.com/urfave/cli/v2"
)

var (
	DisassemblerFlag = &cli.PathFlag{
		Name:     "disassembler",
		Usage:    "Path to the ndisasm executable. Default: first working ndisasm in PATH",
		EnvVars:  []string{"NDISASM"},
		Required: false,
	}
	SourceTypeFlag = &cli.StringFlag{
		Name:     "source-type",
		Usage:    "Disassemble a 'binary' as is or assemble an 'assembly' source to a flat binary first",
		Required: false,
		Value:    "binary",
	}
	BitsFlag = &cli.IntFlag{
		Name:     "bits",
		Aliases:  []string{"b"},
		Usage:    "Processor mode: 16, 32 or 64",
		Required: false,
		Value:    16,
	}
	OriginFlag = &cli.StringFlag{
		Name:     "origin",
		Usage:    "Load address of the first byte, e.g. 0x7c00",
		Required: false,
	}
	SkipFlag = &cli.IntFlag{
		Name:     "skip",
		Usage:    "Number of header bytes to skip",
		Required: false,
	}
	DisassemblyOutputFlag = &cli.PathFlag{
		Name:     "disassembly-output-path",
		Usage:    "File path to store the disassembly. Default: stdout",
		Required: false,
	}
)

func CreateDisasmCommand(action cli.ActionFunc) *cli.Command {
	return &cli.Command{
		Name:        "disasm",
		Usage:       "Disassembles a flat binary with ndisasm",
		ArgsUsage:   "<file>",
		Description: "Disassembles a flat binary with ndisasm, or assembles a source file first",
		Action:      action,
		Flags: []cli.Flag{
			DisassemblerFlag,
			AssemblerFlag,
			SourceTypeFlag,
			BitsFlag,
			OriginFlag,
			SkipFlag,
			DisassemblyOutputFlag,
		},
	}
}

var DisasmCommand = CreateDisasmCommand(Disassemble)

func Disassemble(ctx *cli.Context) error {
	target := ctx.Args().First()
	if target == "" {
		return errors.New("missing input file")
	}

	var mode disassembler.Source
	switch sourceType := ctx.String(SourceTypeFlag.Name); sourceType {
	case "binary":
		mode = disassembler.SourceBinary
	case "assembly":
		mode = disassembler.SourceFile
	default:
		return fmt.Errorf("invalid source type: %s", sourceType)
	}

	var origin uint64
	if s := ctx.String(OriginFlag.Name); s != "" {
		var err error
		if origin, err = strconv.ParseUint(s, 0, 64); err != nil {
			return fmt.Errorf("invalid origin %q: %w", s, err)
		}
	}

	dis, err := manager.NewDisassembler(disassembler.TypeNdisasm, disassembler.Options{
		Disassembler: ctx.Path(DisassemblerFlag.Name),
		Assembler:    ctx.Path(AssemblerFlag.Name),
		Bits:         ctx.Int(BitsFlag.Name),
		Origin:       origin,
		Skip:         ctx.Int(SkipFlag.Name),
	})
	if err != nil {
		return err
	}

	out, err := dis.Disassemble(ctx.Context, mode, target, ctx.Path(DisassemblyOutputFlag.Name))
	if err != nil {
		return fmt.Errorf("error disassembling the file: %w", err)
	}
	if ctx.Path(DisassemblyOutputFlag.Name) != "" {
		out += "\n"
	}
	_, err = fmt.Fprint(ctx.App.Writer, out)
	return err
}
