package bootstrap

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mvdan.cc/sh/v3/interp"
)

func placeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0770))
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0770))
}

// Scenario: shell at the first candidate, protoc installed. The build sees
// PROTOC and the prepended PATH.
func TestRunWithShellAndProtoc(t *testing.T) {
	root := t.TempDir()
	shellDir := filepath.Join(root, "git", "bin")
	placeFile(t, filepath.Join(shellDir, "sh"))
	protoc := filepath.Join(root, "protoc", "bin", "protoc")
	placeFile(t, protoc)

	cfg := Config{
		ShellBinary: "sh",
		ShellDirs:   []string{shellDir, filepath.Join(root, "other")},
		Protoc:      protoc,
		BuildCmd:    `test "$PROTOC" = ` + protoc,
	}

	plan, err := Resolve(cfg, OsFS())
	require.NoError(t, err)
	assert.Equal(t, shellDir, plan.ShellDir)
	assert.True(t, plan.ProtocFound)
	assert.Equal(t, protoc, plan.Env.Overrides()["PROTOC"])

	assert.NoError(t, Run(testCtx(), root, cfg, OsFS(), false))
}

// Scenario: shell only at the second candidate, protoc missing. The build
// still runs, with PROTOC unset.
func TestRunWithShellAtSecondCandidateAndNoProtoc(t *testing.T) {
	root := t.TempDir()
	second := filepath.Join(root, "git", "bin")
	placeFile(t, filepath.Join(second, "sh"))

	cfg := Config{
		ShellBinary: "sh",
		ShellDirs:   []string{filepath.Join(root, "missing"), second},
		Protoc:      filepath.Join(root, "nope", "protoc"),
		BuildCmd:    `test -z "$PROTOC"`,
	}

	plan, err := Resolve(cfg, OsFS())
	require.NoError(t, err)
	assert.Equal(t, second, plan.ShellDir)
	assert.False(t, plan.ProtocFound)
	assert.NotContains(t, plan.Env.Overrides(), "PROTOC")
	assert.True(t, strings.HasPrefix(plan.Env.Overrides()["PATH"], second))

	assert.NoError(t, Run(testCtx(), root, cfg, OsFS(), false))
}

// Scenario: no shell anywhere. The process fails before the build command
// ever runs.
func TestRunWithoutShellNeverBuilds(t *testing.T) {
	root := t.TempDir()

	cfg := Config{
		ShellBinary: "sh",
		ShellDirs:   []string{filepath.Join(root, "a"), filepath.Join(root, "b")},
		BuildCmd:    "echo built > built.txt",
	}

	err := Run(testCtx(), root, cfg, OsFS(), false)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrShellNotFound))

	_, statErr := os.Stat(filepath.Join(root, "built.txt"))
	assert.True(t, eris.Is(statErr, os.ErrNotExist))
}

func TestRunPropagatesBuildExitStatus(t *testing.T) {
	root := t.TempDir()
	shellDir := filepath.Join(root, "git", "bin")
	placeFile(t, filepath.Join(shellDir, "sh"))

	cfg := Config{
		ShellBinary: "sh",
		ShellDirs:   []string{shellDir},
		BuildCmd:    "exit 7",
	}

	err := Run(testCtx(), root, cfg, OsFS(), false)
	status, ok := interp.IsExitStatus(err)
	require.True(t, ok)
	assert.Equal(t, uint8(7), status)
}

func TestRunExecutesPrebuildLinesFirst(t *testing.T) {
	root := t.TempDir()
	shellDir := filepath.Join(root, "git", "bin")
	placeFile(t, filepath.Join(shellDir, "sh"))

	cfg := Config{
		ShellBinary: "sh",
		ShellDirs:   []string{shellDir},
		Prebuild:    []string{"echo one > prebuild.txt"},
		BuildCmd:    "test -f prebuild.txt",
	}

	assert.NoError(t, Run(testCtx(), root, cfg, OsFS(), false))
}
