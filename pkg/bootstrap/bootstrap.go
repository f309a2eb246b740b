package bootstrap

import (
	"context"

	"github.com/rotisserie/eris"
)

// Plan is the outcome of dependency resolution: where the shell lives,
// whether protoc was found and the environment the build will receive.
type Plan struct {
	ShellDir    string
	ProtocPath  string
	ProtocFound bool
	Env         *EnvSet
}

// Resolve runs the locator and the environment configurator without
// executing anything. A missing shell fails with ErrShellNotFound; a
// missing protoc is recorded in the plan and never fails.
func Resolve(cfg Config, fsys FS) (*Plan, error) {
	shellDir, err := LocateShell(fsys, cfg.ShellDirs, cfg.ShellBinary)
	if err != nil {
		return nil, err
	}

	env := NewEnvSet()
	env.PrependPath(shellDir)

	found, err := LocateProtoc(fsys, cfg.Protoc)
	if err != nil {
		return nil, err
	}

	if found {
		env.Set("PROTOC", cfg.Protoc)
	}

	return &Plan{
		ShellDir:    shellDir,
		ProtocPath:  cfg.Protoc,
		ProtocFound: found,
		Env:         env,
	}, nil
}

// Run resolves the build environment and hands off to the build command.
// Errors from the delegated command pass through unwrapped; when the build
// exits non-zero the returned error is interp.ExitStatus and the caller
// decides the process exit code.
func Run(ctx context.Context, projectRoot string, cfg Config, fsys FS, dryRun bool) error {
	plan, err := Resolve(cfg, fsys)
	if err != nil {
		return err
	}

	log(ctx).Info().
		Str("path", plan.ShellDir).
		Msg("POSIX shell found")

	if plan.ProtocFound {
		log(ctx).Info().
			Str("path", plan.ProtocPath).
			Msg("protoc found, PROTOC is set")
	} else {
		log(ctx).Warn().
			Str("path", plan.ProtocPath).
			Msg("protoc not found, PROTOC stays unset and the build uses the vendored copy")
	}

	runner := &Runner{
		Dir:    projectRoot,
		Env:    plan.Env,
		DryRun: dryRun,
	}

	for _, line := range cfg.Prebuild {
		err = runner.Run(ctx, line)
		if err != nil {
			return eris.Wrapf(err, "prebuild command failed: %s", line)
		}
	}

	return runner.Run(ctx, cfg.BuildCmd)
}
