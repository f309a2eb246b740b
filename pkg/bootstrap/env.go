package bootstrap

import (
	"os"
	"runtime"
	"sort"
	"strings"

	"mvdan.cc/sh/v3/expand"
)

const pathVar = "PATH"

// EnvSet collects the environment changes a build needs. Nothing is ever
// written back to the process environment; the set is merged over
// os.Environ only when the build command is launched, which keeps the
// configurator's output inspectable on its own.
type EnvSet struct {
	overrides   map[string]string
	pathPrepend []string
}

func NewEnvSet() *EnvSet {
	return &EnvSet{overrides: map[string]string{}}
}

// Set records an override for a single variable.
func (e *EnvSet) Set(name, value string) {
	e.overrides[name] = value
}

// PrependPath puts dir in front of the executable search path so its
// binaries win over same-named binaries that are already installed.
func (e *EnvSet) PrependPath(dir string) {
	e.pathPrepend = append(e.pathPrepend, dir)
}

// Overrides returns the effective overrides, including the rebuilt PATH if
// any directories were prepended.
func (e *EnvSet) Overrides() map[string]string {
	result := make(map[string]string, len(e.overrides)+1)
	for name, value := range e.overrides {
		result[name] = value
	}

	if len(e.pathPrepend) > 0 {
		parts := append([]string{}, e.pathPrepend...)
		if current := os.Getenv(pathVar); current != "" {
			parts = append(parts, current)
		}

		result[pathVar] = strings.Join(parts, string(os.PathListSeparator))
	}

	return result
}

// Environ merges the overrides over the inherited process environment.
// Overridden names are dropped from the inherited set first to avoid
// duplicate entries; Windows treats variable names case-insensitively, so
// the comparison folds case there.
func (e *EnvSet) Environ() []string {
	return environWith(os.Environ(), e.Overrides(), runtime.GOOS == "windows")
}

// environWith merges overrides over the given base environment. With
// foldCase both the base and the override names are compared
// case-insensitively, matching how Windows resolves variable names.
func environWith(base []string, overrides map[string]string, foldCase bool) []string {
	lookup := make(map[string]struct{}, len(overrides))
	for name := range overrides {
		if foldCase {
			name = strings.ToUpper(name)
		}

		lookup[name] = struct{}{}
	}

	merged := make([]string, 0, len(base)+len(overrides))
	for _, item := range base {
		name := strings.SplitN(item, "=", 2)[0]
		if foldCase {
			name = strings.ToUpper(name)
		}

		if _, present := lookup[name]; !present {
			merged = append(merged, item)
		}
	}

	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		merged = append(merged, name+"="+overrides[name])
	}

	return merged
}

// ShellEnv exposes the merged environment to the shell runtime.
func (e *EnvSet) ShellEnv() expand.Environ {
	return expand.ListEnviron(e.Environ()...)
}
