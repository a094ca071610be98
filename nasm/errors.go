package nasm

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAssemblerNotFound is matched by errors returned when no usable
	// assembler executable could be located.
	ErrAssemblerNotFound = errors.New("nasm: assembler not found")
	// ErrOutputPathRequired is matched by errors returned when the output
	// path cannot be derived from the input file and format.
	ErrOutputPathRequired = errors.New("nasm: output path required")
	// ErrNoInputFile is returned when Compile is called without an input file.
	ErrNoInputFile = errors.New("nasm: no input file")
)

// AssemblerNotFoundError reports the first probe failure seen during discovery.
type AssemblerNotFoundError struct {
	Candidate string // first candidate tried
	Err       error  // why that candidate was rejected
}

// Error reports the probe failure; its message already names the candidate.
func (e *AssemblerNotFoundError) Error() string {
	return "nasm: assembler not found: " + strings.TrimPrefix(e.Err.Error(), "nasm: ")
}

// Unwrap exposes ErrAssemblerNotFound and the OS level cause of the probe
// failure. A probe's *SpawnError or *ExitError stays in Err so that discovery
// failures never match those kinds.
func (e *AssemblerNotFoundError) Unwrap() []error {
	var spawnErr *SpawnError
	if errors.As(e.Err, &spawnErr) {
		return []error{ErrAssemblerNotFound, spawnErr.Err}
	}
	var exitErr *ExitError
	if errors.As(e.Err, &exitErr) {
		return []error{ErrAssemblerNotFound}
	}
	return []error{ErrAssemblerNotFound, e.Err}
}

// OutputPathRequiredError is returned when no default output path exists for
// Format, e.g. custom formats.
type OutputPathRequiredError struct {
	Format OutputFormat
}

func (e *OutputPathRequiredError) Error() string {
	return fmt.Sprintf("nasm: output path required for format %q", e.Format.Flag())
}

func (e *OutputPathRequiredError) Unwrap() error {
	return ErrOutputPathRequired
}

// SpawnError is returned when the assembler process could not be started.
type SpawnError struct {
	Path string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("nasm: failed to start %s: %v", e.Path, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// ExitError is returned when the assembler ran but did not exit cleanly.
// Known is false when no exit code is available, e.g. the process was
// terminated by a signal.
type ExitError struct {
	Path  string
	Code  int
	Known bool
}

func (e *ExitError) Error() string {
	if !e.Known {
		return fmt.Sprintf("nasm: %s exited with unknown status", e.Path)
	}
	return fmt.Sprintf("nasm: %s exited with code %d", e.Path, e.Code)
}

// OutputDirError is returned when the parent directory of the output path
// could not be created.
type OutputDirError struct {
	Dir string
	Err error
}

func (e *OutputDirError) Error() string {
	return fmt.Sprintf("nasm: failed to create output directory %s: %v", e.Dir, e.Err)
}

func (e *OutputDirError) Unwrap() error {
	return e.Err
}
