package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noob-code80/solana-geyser-test/build-tools/pkg/bootstrap"
)

// runTool runs the CLI inside dir the way main.go does and returns the
// process exit code Execute decided on.
func runTool(t *testing.T, dir string, args ...string) int {
	t.Helper()
	t.Setenv(bootstrap.ShellDirsVar, "")

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	rootCmd.SetArgs(args)
	return Execute()
}

func writeProject(t *testing.T, manifest string) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "build.yml"), []byte(manifest), 0660))
	return dir
}

func placeShell(t *testing.T) string {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "git", "bin")
	require.NoError(t, os.MkdirAll(dir, 0770))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sh"), []byte("#!/bin/sh\n"), 0770))
	return dir
}

func TestExecuteFailsWithOneWhenNoShellExists(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nowhere")
	dir := writeProject(t, "shellBinary: sh\n"+
		"shellDirs: ['"+missing+"']\n"+
		"protoc: '"+filepath.Join(missing, "protoc")+"'\n"+
		"buildCmd: echo built > marker.txt\n")

	assert.Equal(t, 1, runTool(t, dir, "build"))

	// the build command must never run without a shell
	_, err := os.Stat(filepath.Join(dir, "marker.txt"))
	assert.Error(t, err)
}

func TestExecutePropagatesBuildExitStatus(t *testing.T) {
	shellDir := placeShell(t)
	dir := writeProject(t, "shellBinary: sh\n"+
		"shellDirs: ['"+shellDir+"']\n"+
		"protoc: '"+filepath.Join(shellDir, "protoc")+"'\n"+
		"buildCmd: exit 7\n")

	assert.Equal(t, 7, runTool(t, dir, "build"))
}

func TestExecuteSurfacesPrebuildExitStatus(t *testing.T) {
	shellDir := placeShell(t)
	dir := writeProject(t, "shellBinary: sh\n"+
		"shellDirs: ['"+shellDir+"']\n"+
		"protoc: '"+filepath.Join(shellDir, "protoc")+"'\n"+
		"prebuild:\n"+
		"  - exit 5\n"+
		"buildCmd: exit 0\n")

	// the wrapped prebuild error still carries its exit status
	assert.Equal(t, 5, runTool(t, dir, "build"))
}

func TestExecuteReturnsZeroOnSuccess(t *testing.T) {
	shellDir := placeShell(t)
	dir := writeProject(t, "shellBinary: sh\n"+
		"shellDirs: ['"+shellDir+"']\n"+
		"protoc: '"+filepath.Join(shellDir, "protoc")+"'\n"+
		"buildCmd: exit 0\n")

	assert.Equal(t, 0, runTool(t, dir, "build"))
}
