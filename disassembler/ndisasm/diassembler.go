package ndisasm

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/ChainSafe/go-nasm/disassembler"
	"github.com/ChainSafe/go-nasm/nasm"
	"github.com/charmbracelet/log"
)

// Name is the executable searched for when no disassembler path is set.
const Name = "ndisasm"

type Ndisasm struct {
	opts disassembler.Options
}

func New(opts disassembler.Options) (*Ndisasm, error) {
	switch opts.Bits {
	case 0, 16, 32, 64:
	default:
		return nil, fmt.Errorf("unsupported bit mode %d", opts.Bits)
	}
	if opts.Skip < 0 {
		return nil, fmt.Errorf("negative header skip %d", opts.Skip)
	}
	return &Ndisasm{opts: opts}, nil
}

func (n *Ndisasm) Disassemble(ctx context.Context, mode disassembler.Source, target string, outputPath string) (string, error) {
	var disassembly string
	var err error

	switch mode {
	case disassembler.SourceBinary:
		disassembly, err = n.generateBinaryDisassembly(ctx, target)
		if err != nil {
			return "", err
		}
	case disassembler.SourceFile:
		disassembly, err = n.generateSourceDisassembly(ctx, target)
		if err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("unknown source mode %d", mode)
	}

	if outputPath != "" {
		absOutputPath, err := filepath.Abs(outputPath)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path of output file: %w", err)
		}
		err = os.WriteFile(absOutputPath, []byte(disassembly), 0600)
		if err != nil {
			return "", fmt.Errorf("failed to write to output file: %w", err)
		}
		return fmt.Sprintf("disassembly written to %s", outputPath), nil
	}
	return disassembly, nil
}

// Args returns the ndisasm arguments used for target.
func (n *Ndisasm) Args(target string) []string {
	var args []string
	if n.opts.Bits != 0 {
		args = append(args, "-b", strconv.Itoa(n.opts.Bits))
	}
	if n.opts.Origin != 0 {
		args = append(args, "-o", fmt.Sprintf("0x%x", n.opts.Origin))
	}
	if n.opts.Skip != 0 {
		args = append(args, "-e", strconv.Itoa(n.opts.Skip))
	}
	return append(args, target)
}

func (n *Ndisasm) generateSourceDisassembly(ctx context.Context, target string) (string, error) {
	// Assemble to a flat binary first
	tempDir, err := os.MkdirTemp("", "ndisasm_")
	if err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer func() {
		_ = os.RemoveAll(tempDir)
	}()

	var output bytes.Buffer
	inst := nasm.New(target)
	inst.SetFormat(nasm.FormatBinary)
	inst.SetOutput(filepath.Join(tempDir, "temp_binary"))
	if n.opts.Assembler != "" {
		inst.SetAssembler(n.opts.Assembler)
	}
	inst.Stdout = &output
	inst.Stderr = &output

	binary, err := inst.CompileContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to assemble source: %w\nOutput:\n%s", err, output.String())
	}
	return n.generateBinaryDisassembly(ctx, binary)
}

func (n *Ndisasm) generateBinaryDisassembly(ctx context.Context, target string) (string, error) {
	path := n.opts.Disassembler
	if path == "" {
		var err error
		if path, err = nasm.Discover(ctx, Name); err != nil {
			return "", err
		}
	}

	var stdout, stderr bytes.Buffer
	//nolint:gosec
	cmd := exec.CommandContext(ctx, path, n.Args(target)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debug("running disassembler", "path", path, "args", cmd.Args[1:])
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to generate binary disassembly: %w\nOutput:\n%s", err, stderr.String())
	}
	return stdout.String(), nil
}
