package bootstrap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, root, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigName), []byte(content), 0660))
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "cargo build --release", cfg.BuildCmd)
	assert.NotEmpty(t, cfg.ShellBinary)
	assert.NotEmpty(t, cfg.ShellDirs)
	assert.NotEmpty(t, cfg.Protoc)
}

func TestLoadConfigParsesManifest(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `
shellBinary: bash
shellDirs:
  - /opt/one
  - /opt/two
protoc: /opt/protoc/bin/protoc
buildCmd: cargo build
prebuild:
  - mkdir -p target
vars:
  V: "25.3"
deps:
  protoc:
    if: linux
    url: https://example.com/protoc-{V}.zip
    dest: .tools/protoc
    sha256: abc
    strip: 1
`)

	cfg, err := LoadConfig(root)
	require.NoError(t, err)

	assert.Equal(t, "bash", cfg.ShellBinary)
	assert.Equal(t, []string{"/opt/one", "/opt/two"}, cfg.ShellDirs)
	assert.Equal(t, "/opt/protoc/bin/protoc", cfg.Protoc)
	assert.Equal(t, "cargo build", cfg.BuildCmd)
	assert.Equal(t, []string{"mkdir -p target"}, cfg.Prebuild)
	require.Contains(t, cfg.Deps, "protoc")
	assert.Equal(t, "linux", cfg.Deps["protoc"].Condition)
	assert.Equal(t, 1, cfg.Deps["protoc"].Strip)
}

func TestLoadConfigKeepsDefaultsForOmittedKeys(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "buildCmd: cargo build\n")

	cfg, err := LoadConfig(root)
	require.NoError(t, err)

	assert.Equal(t, "cargo build", cfg.BuildCmd)
	assert.Equal(t, DefaultConfig().ShellDirs, cfg.ShellDirs)
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "shellBnary: oops\n")

	_, err := LoadConfig(root)
	assert.Error(t, err)
}

func TestLoadConfigShellDirsEnvOverride(t *testing.T) {
	t.Setenv(ShellDirsVar, "/x"+string(os.PathListSeparator)+"/y")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, []string{"/x", "/y"}, cfg.ShellDirs)
}
