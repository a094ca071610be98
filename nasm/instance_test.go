package nasm

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArguments(t *testing.T) {
	inst := New("boot.s")
	inst.SetFormat(FormatElf64)
	inst.Arg("-Wall").Arg("-Iinclude/").Args("-D", "DEBUG=1")

	args, output, err := inst.Arguments()
	require.NoError(t, err)
	assert.Equal(t, "boot.o", output)
	assert.Equal(t, []string{"-f", "elf64", "-o", "boot.o", "boot.s", "-Wall", "-Iinclude/", "-D", "DEBUG=1"}, args)
}

func TestArgumentsDefaultFormat(t *testing.T) {
	args, output, err := New("x.s").Arguments()
	require.NoError(t, err)
	assert.Equal(t, "x", output)
	assert.Equal(t, []string{"-f", "bin", "-o", "x", "x.s"}, args)
}

func TestArgumentsExplicitOutputWins(t *testing.T) {
	for _, format := range append(Formats(), CustomFormat("elf-ng")) {
		inst := New("x.s")
		inst.SetFormat(format)
		inst.SetOutput("out/image.raw")

		_, output, err := inst.Arguments()
		require.NoError(t, err, format)
		assert.Equal(t, "out/image.raw", output, format)
	}
}

func TestArgumentsCustomFormat(t *testing.T) {
	inst := New("x.s")
	inst.SetFormat(CustomFormat("Elf-NG"))

	_, _, err := inst.Arguments()
	assert.ErrorIs(t, err, ErrOutputPathRequired)

	inst.SetOutput("x.elfng")
	args, _, err := inst.Arguments()
	require.NoError(t, err)
	assert.Equal(t, []string{"-f", "Elf-NG", "-o", "x.elfng", "x.s"}, args)
}

func TestArgumentsNoInputFile(t *testing.T) {
	_, _, err := New("").Arguments()
	assert.ErrorIs(t, err, ErrNoInputFile)
}

func TestExtraArgsIsACopy(t *testing.T) {
	inst := New("x.s").Arg("-g")
	extra := inst.ExtraArgs()
	extra[0] = "-O0"
	assert.Equal(t, []string{"-g"}, inst.ExtraArgs())
}

func TestCompilePassesArguments(t *testing.T) {
	_, logFile := installFakeAssembler(t)
	src := filepath.Join(t.TempDir(), "kernel.asm")

	inst := New(src)
	inst.SetFormat(FormatElf32)
	inst.Arg("-g").Arg("-F").Arg("dwarf")

	output, err := inst.Compile()
	require.NoError(t, err)

	want := filepath.Join(filepath.Dir(src), "kernel.o")
	assert.Equal(t, want, output)
	assert.Equal(t, []string{"-f", "elf32", "-o", want, src, "-g", "-F", "dwarf"}, readArgv(t, logFile))
}

func TestCompileCustomFormatVerbatim(t *testing.T) {
	_, logFile := installFakeAssembler(t)
	out := filepath.Join(t.TempDir(), "x.bin")

	inst := New("x.s")
	inst.SetFormat(CustomFormat("Some Format"))
	inst.SetOutput(out)

	_, err := inst.Compile()
	require.NoError(t, err)
	argv := readArgv(t, logFile)
	require.GreaterOrEqual(t, len(argv), 2)
	assert.Equal(t, []string{"-f", "Some Format"}, argv[:2])
}

func TestCompileCustomFormatWithoutOutput(t *testing.T) {
	_, logFile := installFakeAssembler(t)

	inst := New("x.s")
	inst.SetFormat(CustomFormat("elf-ng"))

	_, err := inst.Compile()
	assert.ErrorIs(t, err, ErrOutputPathRequired)
	assert.NoFileExists(t, logFile, "assembler must not run")
}

func TestCompileCreatesOutputDirectory(t *testing.T) {
	installFakeAssembler(t)
	out := filepath.Join(t.TempDir(), "build", "nested", "out.bin")

	inst := New("x.s")
	inst.SetOutput(out)

	got, err := inst.Compile()
	require.NoError(t, err)
	assert.Equal(t, out, got)
	assert.DirExists(t, filepath.Dir(out))
}

func TestCompileOutputDirectoryError(t *testing.T) {
	installFakeAssembler(t)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	inst := New("x.s")
	inst.SetOutput(filepath.Join(blocker, "out.bin"))

	_, err := inst.Compile()
	var dirErr *OutputDirError
	require.True(t, errors.As(err, &dirErr), "got %v", err)
	assert.Equal(t, blocker, dirErr.Dir)
}

func TestCompileNonZeroExit(t *testing.T) {
	installFakeAssembler(t)
	t.Setenv("FAKE_NASM_EXIT", "3")

	inst := New(filepath.Join(t.TempDir(), "x.s"))
	_, err := inst.Compile()

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr), "got %v", err)
	assert.True(t, exitErr.Known)
	assert.Equal(t, 3, exitErr.Code)
	assert.Contains(t, err.Error(), "exited with code 3")
}

func TestCompileKilledBySignal(t *testing.T) {
	installFakeAssembler(t)
	t.Setenv("FAKE_NASM_SIGNAL", "1")

	inst := New(filepath.Join(t.TempDir(), "x.s"))
	_, err := inst.Compile()

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr), "got %v", err)
	assert.False(t, exitErr.Known)
	assert.Contains(t, err.Error(), "unknown status")
}

func TestCompileSpawnFailure(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	// not executable
	path := filepath.Join(dir, "nasm")
	require.NoError(t, os.WriteFile(path, []byte(fakeAssembler), 0o600))

	inst := New(filepath.Join(dir, "x.s"))
	inst.SetAssembler(path)

	_, err := inst.Compile()
	var spawnErr *SpawnError
	require.True(t, errors.As(err, &spawnErr), "got %v", err)
	assert.Equal(t, path, spawnErr.Path)
	assert.ErrorIs(t, err, os.ErrPermission)
}

func TestCompileExplicitAssemblerSkipsDiscovery(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	// the -v probe of this script fails, so it would be rejected by discovery
	script := writeExecutable(t, dir, "my-nasm", fakeAssembler)
	logFile := filepath.Join(dir, "argv.log")
	t.Setenv("FAKE_NASM_LOG", logFile)
	t.Setenv("FAKE_NASM_PROBE_EXIT", "1")
	t.Setenv("PATH", "")

	inst := New(filepath.Join(dir, "x.s"))
	inst.SetAssembler(script)

	output, err := inst.Compile()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "x"), output)
	assert.FileExists(t, logFile)
}

func TestCompileIsReusable(t *testing.T) {
	_, logFile := installFakeAssembler(t)
	src := filepath.Join(t.TempDir(), "x.s")

	inst := New(src)
	first, err := inst.Compile()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(src), "x"), first)

	inst.SetFormat(FormatWin64)
	second, err := inst.Compile()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(src), "x.obj"), second)
	assert.Equal(t, "win64", readArgv(t, logFile)[1])

	other := filepath.Join(filepath.Dir(src), "y.asm")
	inst.SetFile(other)
	third, err := inst.Compile()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(src), "y.obj"), third)
}

func TestCompileStreams(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	script := writeExecutable(t, dir, "nasm", "#!/bin/sh\necho assembled\necho 'x.s:1: warning: label alone' >&2\n")

	var stdout, stderr bytes.Buffer
	inst := New(filepath.Join(dir, "x.s"))
	inst.SetAssembler(script)
	inst.Stdout = &stdout
	inst.Stderr = &stderr

	_, err := inst.Compile()
	require.NoError(t, err)
	assert.Equal(t, "assembled\n", stdout.String())
	assert.Contains(t, stderr.String(), "warning")
}

func TestCompileContextCancel(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	script := writeExecutable(t, dir, "nasm", "#!/bin/sh\nexec sleep 30\n")
	t.Setenv("PATH", "/bin:/usr/bin")

	inst := New(filepath.Join(dir, "x.s"))
	inst.SetAssembler(script)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := inst.CompileContext(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 10*time.Second)
}
