// Package nasm runs the nasm assembler as a subprocess.
//
// An Instance collects the options for one assembly: the input file, the
// output format and path, an optional assembler location and any extra
// command line arguments. Compile resolves the assembler, runs it and
// returns the path of the produced file.
package nasm

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// Instance describes a single assembler invocation. It is not safe for
// concurrent use; independent instances may run in parallel.
type Instance struct {
	assembler string
	file      string
	format    OutputFormat
	output    string
	args      []string

	// Stdout and Stderr receive the assembler's output streams. Nil means
	// the streams of the current process.
	Stdout io.Writer
	Stderr io.Writer
}

// New creates an instance that assembles file.
func New(file string) *Instance {
	return &Instance{file: file}
}

// SetAssembler overrides assembler discovery with an explicit executable.
func (i *Instance) SetAssembler(path string) {
	i.assembler = path
}

// SetFile replaces the input file.
func (i *Instance) SetFile(file string) {
	i.file = file
}

// SetFormat sets the output format.
func (i *Instance) SetFormat(format OutputFormat) {
	i.format = format
}

// SetOutput overrides the derived output path.
func (i *Instance) SetOutput(path string) {
	i.output = path
}

// Arg appends one extra argument, passed to the assembler after the input file.
func (i *Instance) Arg(arg string) *Instance {
	i.args = append(i.args, arg)
	return i
}

// Args appends several extra arguments in order.
func (i *Instance) Args(args ...string) *Instance {
	i.args = append(i.args, args...)
	return i
}

func (i *Instance) Assembler() string    { return i.assembler }
func (i *Instance) File() string         { return i.file }
func (i *Instance) Format() OutputFormat { return i.format }
func (i *Instance) Output() string       { return i.output }

// ExtraArgs returns a copy of the extra arguments.
func (i *Instance) ExtraArgs() []string {
	return append([]string(nil), i.args...)
}

// OutputPath returns the explicit output path, or the one derived from the
// input file and format.
func (i *Instance) OutputPath() (string, error) {
	if i.output != "" {
		return i.output, nil
	}
	return DeriveOutputPath(i.format, i.file)
}

// Arguments returns the command line passed to the assembler and the output
// path it writes to. Nothing is executed.
func (i *Instance) Arguments() ([]string, string, error) {
	if i.file == "" {
		return nil, "", ErrNoInputFile
	}
	output, err := i.OutputPath()
	if err != nil {
		return nil, "", err
	}
	args := make([]string, 0, 5+len(i.args))
	args = append(args, "-f", i.format.Flag(), "-o", output, i.file)
	args = append(args, i.args...)
	return args, output, nil
}

// Resolve returns the assembler that Compile would run.
func (i *Instance) Resolve(ctx context.Context) (string, error) {
	if i.assembler != "" {
		return i.assembler, nil
	}
	return Discover(ctx, DefaultAssembler)
}

// Compile runs the assembler and returns the output path.
func (i *Instance) Compile() (string, error) {
	return i.CompileContext(context.Background())
}

// CompileContext is like Compile but kills the assembler, or an in-flight
// discovery probe, when ctx is done. No other timeout is applied.
//
// The parent directory of the output path is created before the assembler
// runs. The existence of the output file is not checked.
func (i *Instance) CompileContext(ctx context.Context) (string, error) {
	assembler, err := i.Resolve(ctx)
	if err != nil {
		return "", err
	}

	args, output, err := i.Arguments()
	if err != nil {
		return "", err
	}

	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", &OutputDirError{Dir: dir, Err: err}
		}
	}

	//nolint:gosec
	cmd := exec.CommandContext(ctx, assembler, args...)
	cmd.Stdout = i.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = i.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	log.Debug("running assembler", "cmd", assembler+" "+strings.Join(args, " "))
	if err := run(ctx, assembler, cmd); err != nil {
		return "", err
	}
	return output, nil
}
