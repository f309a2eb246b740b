package bootstrap

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// execRewrite reroutes mv/rm/mkdir to our portable implementations so
// prebuild lines behave consistently on Windows and Unix.
func execRewrite(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(ctx context.Context, args []string) error {
		if len(args) > 0 {
			switch args[0] {
			case "mv", "rm", "mkdir":
				args = append([]string{"tool"}, args...)
			}
		}

		return next(ctx, args)
	}
}

var defaultOpenHandler = interp.DefaultOpenHandler()

func openHandler(ctx context.Context, path string, flag int, perm os.FileMode) (io.ReadWriteCloser, error) {
	if path == "/dev/null" {
		path = os.DevNull
	}

	return defaultOpenHandler(ctx, path, flag, perm)
}

// Runner executes command lines through the portable shell runtime with a
// prepared environment. Output streams straight through to the configured
// writers; nothing is captured or transformed.
type Runner struct {
	Dir    string
	Env    *EnvSet
	DryRun bool

	// Stdout and Stderr default to the process streams.
	Stdout io.Writer
	Stderr io.Writer
}

// Run parses and executes a single command line. When the command exits
// non-zero the error is interp.ExitStatus, which callers propagate
// unwrapped so the status can become the process exit code.
func (r *Runner) Run(ctx context.Context, line string) error {
	parser := syntax.NewParser()
	prog, err := parser.Parse(strings.NewReader(line), ConfigName)
	if err != nil {
		return eris.Wrapf(err, "failed to parse command %s", line)
	}

	stdout := r.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := r.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	runner, err := interp.New(
		interp.Dir(r.Dir),
		interp.Env(r.Env.ShellEnv()),
		interp.ExecHandlers(execRewrite),
		interp.OpenHandler(openHandler),
		interp.StdIO(nil, stdout, stderr),
		interp.Params("-e"),
	)
	if err != nil {
		return eris.Wrap(err, "Failed to initialize runner")
	}

	printer := syntax.NewPrinter(syntax.Minify(true))
	strBuffer := strings.Builder{}

	for _, stmt := range prog.Stmts {
		strBuffer.Reset()
		printer.Print(&strBuffer, stmt)
		log(ctx).Info().
			Bool("command", true).
			Msg(strBuffer.String())

		if r.DryRun {
			continue
		}

		err = runner.Run(ctx, stmt)
		if err != nil {
			return err
		}

		if runner.Exited() {
			return nil
		}
	}

	return nil
}
