package audit

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/docgen/internal/model"
)

// fakeChecker writes a shell script that records its arguments to args.txt
// and then runs body.
func fakeChecker(t *testing.T, body string) (cmd, argsFile string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported")
	}
	dir := t.TempDir()
	argsFile = filepath.Join(dir, "args.txt")
	script := "#!/bin/sh\nprintf '%s\\n' \"$@\" > " + argsFile + "\n" + body + "\n"
	cmd = filepath.Join(dir, "fake-pydocstyle")
	require.NoError(t, os.WriteFile(cmd, []byte(script), 0o755))
	return cmd, argsFile
}

func recordedArgs(t *testing.T, argsFile string) []string {
	t.Helper()
	data, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func TestCheckReportsFindings(t *testing.T) {
	t.Parallel()

	cmd, argsFile := fakeChecker(t, `last=""
for a in "$@"; do last="$a"; done
echo "$last:1 at module level:"
echo "        D100: Missing docstring in public module"
printf '%s:3 in public function `+"`foo`"+`:\n' "$last"
echo "        D103: Missing docstring in public function"
exit 1`)

	a := New(WithCommand(cmd), WithConvention(model.NumPy), WithArgs("--add-ignore=D107"))
	violations, err := a.Check(context.Background(), "import os\n\ndef foo():\n    pass\n")
	require.NoError(t, err)
	require.Len(t, violations, 2)

	args := recordedArgs(t, argsFile)
	require.Len(t, args, 3)
	assert.Equal(t, "--convention=numpy", args[0])
	assert.Equal(t, "--add-ignore=D107", args[1])
	tmpPath := args[2]
	assert.True(t, strings.HasSuffix(tmpPath, ".py"))
	assert.Contains(t, filepath.Base(tmpPath), "docgen-")

	assert.Equal(t, Violation{
		File:       tmpPath,
		Line:       1,
		Definition: "at module level",
		Code:       "D100",
		Message:    "Missing docstring in public module",
	}, violations[0])
	assert.Equal(t, 3, violations[1].Line)
	assert.Equal(t, "in public function `foo`", violations[1].Definition)
	assert.Equal(t, "D103", violations[1].Code)

	_, err = os.Stat(tmpPath)
	assert.True(t, os.IsNotExist(err), "temp file should be removed")
}

func TestCheckClean(t *testing.T) {
	t.Parallel()

	cmd, argsFile := fakeChecker(t, "exit 0")

	violations, err := New(WithCommand(cmd)).Check(context.Background(), `"""Doc."""`+"\n")
	require.NoError(t, err)
	assert.Empty(t, violations)

	args := recordedArgs(t, argsFile)
	assert.Equal(t, "--convention=google", args[0])
	_, err = os.Stat(args[len(args)-1])
	assert.True(t, os.IsNotExist(err))
}

func TestCheckToolFailure(t *testing.T) {
	t.Parallel()

	cmd, argsFile := fakeChecker(t, "echo 'boom' >&2\nexit 2")

	_, err := New(WithCommand(cmd)).Check(context.Background(), "x = 1\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "running")

	args := recordedArgs(t, argsFile)
	_, statErr := os.Stat(args[len(args)-1])
	assert.True(t, os.IsNotExist(statErr), "temp file should be removed on failure")
}

func TestCheckToolMissing(t *testing.T) {
	t.Parallel()

	a := New(WithCommand(filepath.Join(t.TempDir(), "no-such-checker")))
	_, err := a.Check(context.Background(), "x = 1\n")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrToolMissing))
}

func TestNewDefaults(t *testing.T) {
	t.Parallel()

	a := New(WithCommand(""))
	assert.Equal(t, DefaultCommand, a.Command)
	assert.Equal(t, model.Google, a.Convention)
	assert.Equal(t, DefaultTimeout, a.Timeout)
}

func TestConventionFlag(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "google", ConventionFlag(model.Google))
	assert.Equal(t, "numpy", ConventionFlag(model.NumPy))
	assert.Equal(t, "pep257", ConventionFlag(model.ReST))
}

func TestParseOutput(t *testing.T) {
	t.Parallel()

	out := strings.Join([]string{
		"/tmp/a.py:4 in public class `Repo`:",
		"        D101: Missing docstring in public class",
		"some unrelated warning",
		"        D999: orphan code line",
		"/tmp/a.py:9 in public method `get`:\r",
		"        D102: Missing docstring in public method\r",
		"/tmp/a.py:12 in private function `_x`:",
		"",
	}, "\n")

	got := ParseOutput(out)
	require.Len(t, got, 2)
	assert.Equal(t, Violation{File: "/tmp/a.py", Line: 4, Definition: "in public class `Repo`",
		Code: "D101", Message: "Missing docstring in public class"}, got[0])
	assert.Equal(t, "D102", got[1].Code)
	assert.Equal(t, "Missing docstring in public method", got[1].Message)
	assert.Empty(t, ParseOutput(""))
}
