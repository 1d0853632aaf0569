package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raymyers/tacky-cc/pkg/compiler"
)

func writeSource(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(args ...string) (string, string, error) {
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(normalizeFlags(args))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, version)
}

func TestFlagsExist(t *testing.T) {
	cmd := newRootCmd(&bytes.Buffer{}, &bytes.Buffer{})
	for _, name := range []string{"lex", "parse", "validate", "tacky", "codegen", "emit", "debug", "verbose"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "--%s", name)
	}
	assert.NotNil(t, cmd.Flags().ShorthandLookup("S"))
}

func TestNormalizeFlags(t *testing.T) {
	got := normalizeFlags([]string{"-tacky", "-debug", "-S", "--lex", "-x", "file.c"})
	assert.Equal(t, []string{"--tacky", "--debug", "-S", "--lex", "-x", "file.c"}, got)
}

func TestNoArgsPrintsHelp(t *testing.T) {
	out, _, err := execute()
	require.NoError(t, err)
	assert.Contains(t, out, "tacky-cc [file]")
}

func TestTackyDebugPrintsAndWrites(t *testing.T) {
	path := writeSource(t, "prog.c", "int main(void) { int x = 2; return x + 1; }")
	out, _, err := execute("-tacky", "-debug", path)
	require.NoError(t, err)
	assert.Contains(t, out, "global function main() {")
	assert.Contains(t, out, "tmp.1 = x.0 + 1")

	written, err := os.ReadFile(filepath.Join(filepath.Dir(path), "prog.tacky"))
	require.NoError(t, err)
	assert.Equal(t, out, string(written))
}

func TestStopWithoutDebugWritesNothing(t *testing.T) {
	path := writeSource(t, "quiet.c", "int main(void) { return 0; }")
	out, _, err := execute("--validate", path)
	require.NoError(t, err)
	assert.Empty(t, out)
	_, statErr := os.Stat(filepath.Join(filepath.Dir(path), "quiet.validate"))
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(filepath.Join(filepath.Dir(path), "quiet.s"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestEmitWritesAssemblyFile(t *testing.T) {
	for _, args := range [][]string{{"-S"}, {}} {
		path := writeSource(t, "emit.c", "long g = 5;\nint main(void) { return g; }")
		out, _, err := execute(append(args, path)...)
		require.NoError(t, err)
		assert.Empty(t, out)

		written, err := os.ReadFile(filepath.Join(filepath.Dir(path), "emit.s"))
		require.NoError(t, err)
		assert.Contains(t, string(written), "global function main\n")
		assert.Contains(t, string(written), "global [8] static g =\n    5L\n")
	}
}

func TestConflictingStops(t *testing.T) {
	path := writeSource(t, "two.c", "int main(void) { return 0; }")
	_, errOut, err := execute("--parse", "--tacky", path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStageConflict))
	assert.Contains(t, errOut, "tacky-cc: at most one")
}

func TestDiagnosticsGoToErrOut(t *testing.T) {
	path := writeSource(t, "bad.c", "int main(void) {\n    return y;\n}\n")
	out, errOut, err := execute("--tacky", path)
	require.Error(t, err)
	assert.Empty(t, out)
	assert.Equal(t, "tacky-cc: "+path+":2:12: name error: undeclared identifier y\n", errOut)
}

func TestMissingFile(t *testing.T) {
	_, errOut, err := execute(filepath.Join(t.TempDir(), "missing.c"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Contains(t, errOut, "tacky-cc: read ")
}

func TestVerboseLogsStages(t *testing.T) {
	path := writeSource(t, "v.c", "int main(void) { return 0; }")
	_, errOut, err := execute("--verbose", "--codegen", path)
	require.NoError(t, err)
	assert.Contains(t, errOut, "tacky-cc: compiling "+path)
	for _, s := range []string{"lex", "parse", "validate", "tacky", "codegen"} {
		assert.Contains(t, errOut, "tacky-cc: "+s+" done\n")
	}
	assert.NotContains(t, errOut, "emit done")
}

func TestArtifactFilename(t *testing.T) {
	tests := []struct {
		input string
		stage compiler.Stage
		want  string
	}{
		{"test.c", compiler.Emit, "test.s"},
		{"path/to/file.c", compiler.Tacky, "path/to/file.tacky"},
		{"noext", compiler.Parse, "noext.parse"},
		{"a.b.c", compiler.Lex, "a.b.lex"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, artifactFilename(tc.input, tc.stage))
	}
}

func TestWriteArtifactLeavesLockBehind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.tacky")
	require.NoError(t, writeArtifact(path, "one\n"))
	require.NoError(t, writeArtifact(path, "two\n"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two\n", string(data))
	_, err = os.Stat(filepath.Join(dir, lockName))
	assert.NoError(t, err)
}

func TestWriteArtifactReportsPath(t *testing.T) {
	dir := t.TempDir()
	err := writeArtifact(filepath.Join(dir, "missing", "out.s"), "x")
	require.Error(t, err)
}
