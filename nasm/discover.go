package nasm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// DefaultAssembler is the executable name searched for when no explicit
// assembler path is configured.
const DefaultAssembler = "nasm"

// Candidates returns the paths probed when looking for name: the bare name,
// resolved by the OS, followed by name joined with every PATH entry in order.
func Candidates(name string) []string {
	dirs := filepath.SplitList(os.Getenv("PATH"))
	candidates := make([]string, 0, len(dirs)+1)
	candidates = append(candidates, name)
	for _, dir := range dirs {
		candidates = append(candidates, filepath.Join(dir, name))
	}
	return candidates
}

// Discover probes every candidate for name with -v and returns the first one
// that starts and exits successfully. If none does, the error for the first
// candidate is returned as an *AssemblerNotFoundError.
func Discover(ctx context.Context, name string) (string, error) {
	var firstErr *AssemblerNotFoundError
	for _, candidate := range Candidates(name) {
		if _, err := Version(ctx, candidate); err != nil {
			log.Debug("rejected assembler candidate", "path", candidate, "error", err)
			if firstErr == nil {
				firstErr = &AssemblerNotFoundError{Candidate: candidate, Err: err}
			}
			if ctx.Err() != nil {
				break
			}
			continue
		}
		return candidate, nil
	}
	return "", firstErr
}

// Version runs path with -v and returns the first line it prints.
func Version(ctx context.Context, path string) (string, error) {
	var stdout, stderr bytes.Buffer
	//nolint:gosec
	cmd := exec.CommandContext(ctx, path, "-v")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := run(ctx, path, cmd); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%w\nOutput:\n%s", err, msg)
		}
		return "", err
	}
	line, _, _ := strings.Cut(strings.TrimSpace(stdout.String()), "\n")
	return line, nil
}

// run starts cmd and waits for it, mapping failures to *SpawnError and
// *ExitError.
func run(ctx context.Context, path string, cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return &SpawnError{Path: path, Err: err}
	}
	err := cmd.Wait()
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("nasm: %s interrupted: %w", path, ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		return &ExitError{Path: path, Code: code, Known: code >= 0}
	}
	return fmt.Errorf("nasm: failed waiting for %s: %w", path, err)
}
