package nasm

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeAssembler answers -v like nasm and records every other invocation,
// one argument per line, into $FAKE_NASM_LOG. It touches the -o target and
// exits with $FAKE_NASM_EXIT, or kills itself when $FAKE_NASM_SIGNAL is set.
const fakeAssembler = `#!/bin/sh
if [ "$1" = "-v" ]; then
	echo "NASM version 2.16.01 compiled on Jan  1 2024"
	exit ${FAKE_NASM_PROBE_EXIT:-0}
fi
: > "$FAKE_NASM_LOG"
out=""
prev=""
for a in "$@"; do
	printf '%s\n' "$a" >> "$FAKE_NASM_LOG"
	if [ "$prev" = "-o" ]; then out="$a"; fi
	prev="$a"
done
if [ -n "$FAKE_NASM_SIGNAL" ]; then kill -9 $$; fi
if [ -n "$out" ]; then : > "$out"; fi
exit ${FAKE_NASM_EXIT:-0}
`

// brokenAssembler fails the -v probe with the given exit code.
func brokenAssembler(code string) string {
	return "#!/bin/sh\necho broken >&2\nexit " + code + "\n"
}

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake assembler needs a POSIX shell")
	}
}

// writeExecutable writes a script named name into dir.
func writeExecutable(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o755))
	return path
}

// installFakeAssembler puts a fake nasm on an otherwise empty PATH and returns
// the file its invocations are logged to.
func installFakeAssembler(t *testing.T) (dir, logFile string) {
	t.Helper()
	requireShell(t)
	dir = t.TempDir()
	writeExecutable(t, dir, DefaultAssembler, fakeAssembler)
	logFile = filepath.Join(t.TempDir(), "argv.log")
	t.Setenv("PATH", dir)
	t.Setenv("FAKE_NASM_LOG", logFile)
	return dir, logFile
}

func readArgv(t *testing.T, logFile string) []string {
	t.Helper()
	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}
