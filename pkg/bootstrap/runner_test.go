package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mvdan.cc/sh/v3/interp"
)

func testCtx() context.Context {
	logger := zerolog.Nop()
	return WithLogger(context.Background(), &logger)
}

func TestRunnerPropagatesExitStatus(t *testing.T) {
	runner := &Runner{Dir: t.TempDir(), Env: NewEnvSet()}

	err := runner.Run(testCtx(), "exit 7")
	require.Error(t, err)

	status, ok := interp.IsExitStatus(err)
	require.True(t, ok)
	assert.Equal(t, uint8(7), status)
}

func TestRunnerExposesEnvOverrides(t *testing.T) {
	env := NewEnvSet()
	env.Set("PROTOC", "/somewhere/protoc")

	runner := &Runner{Dir: t.TempDir(), Env: env}
	assert.NoError(t, runner.Run(testCtx(), `test "$PROTOC" = /somewhere/protoc`))
}

func TestRunnerStreamsOutput(t *testing.T) {
	out := strings.Builder{}
	runner := &Runner{Dir: t.TempDir(), Env: NewEnvSet(), Stdout: &out}

	require.NoError(t, runner.Run(testCtx(), "echo hello"))
	assert.Equal(t, "hello\n", out.String())
}

func TestRunnerDryRunExecutesNothing(t *testing.T) {
	dir := t.TempDir()
	runner := &Runner{Dir: dir, Env: NewEnvSet(), DryRun: true}

	require.NoError(t, runner.Run(testCtx(), "echo oops > marker.txt"))

	_, err := os.Stat(filepath.Join(dir, "marker.txt"))
	assert.True(t, eris.Is(err, os.ErrNotExist))
}

func TestRunnerRejectsUnparsableLines(t *testing.T) {
	runner := &Runner{Dir: t.TempDir(), Env: NewEnvSet()}
	assert.Error(t, runner.Run(testCtx(), `echo "unterminated`))
}
