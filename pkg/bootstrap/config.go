package bootstrap

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/noob-code80/solana-geyser-test/build-tools/pkg/fetch"
)

// ConfigName is the manifest the tool looks for at the project root.
const ConfigName = "build.yml"

// ShellDirsVar overrides the configured shell search list. Its value uses
// the OS path-list separator and keeps the first-match-wins order.
const ShellDirsVar = "BOOTSTRAP_SHELL_DIRS"

type Config struct {
	// ShellBinary is the file every candidate directory is probed for.
	ShellBinary string `yaml:"shellBinary"`
	// ShellDirs is the ordered candidate list for the POSIX shell.
	ShellDirs []string `yaml:"shellDirs"`
	// Protoc is the one fixed path checked for the protobuf compiler.
	Protoc string `yaml:"protoc"`
	// BuildCmd is the delegated build invocation.
	BuildCmd string `yaml:"buildCmd"`
	// Prebuild lines run through the portable shell runtime before the
	// build command, with the same environment.
	Prebuild []string `yaml:"prebuild"`

	Vars map[string]string        `yaml:"vars"`
	Deps map[string]fetch.DepSpec `yaml:"deps"`
}

// DefaultConfig covers a stock setup of the platform the tool runs on.
// On Windows that means the Git for Windows install locations and the
// conventional protoc drop directory.
func DefaultConfig() Config {
	cfg := Config{BuildCmd: "cargo build --release"}

	if runtime.GOOS == "windows" {
		cfg.ShellBinary = "sh.exe"
		cfg.ShellDirs = []string{
			`C:\Program Files\Git\bin`,
			`C:\Program Files (x86)\Git\bin`,
		}
		cfg.Protoc = `C:\protoc\bin\protoc.exe`
	} else {
		cfg.ShellBinary = "sh"
		cfg.ShellDirs = []string{"/usr/bin", "/bin"}
		cfg.Protoc = "/usr/local/bin/protoc"
	}

	return cfg
}

// LoadConfig reads build.yml from the project root and applies the
// environment overrides. A missing file is fine; the defaults are enough
// to build on a machine with a standard Git install.
func LoadConfig(projectRoot string) (Config, error) {
	cfg := DefaultConfig()

	cfgPath := filepath.Join(projectRoot, ConfigName)
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		if eris.Is(err, os.ErrNotExist) {
			return applyEnvOverrides(cfg), nil
		}

		return cfg, eris.Wrapf(err, "Could not open file %s.", cfgPath)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	err = decoder.Decode(&cfg)
	if err != nil && !eris.Is(err, io.EOF) {
		return cfg, eris.Wrapf(err, "Failed to parse %s.", cfgPath)
	}

	return applyEnvOverrides(cfg), nil
}

func applyEnvOverrides(cfg Config) Config {
	if dirs := os.Getenv(ShellDirsVar); dirs != "" {
		cfg.ShellDirs = filepath.SplitList(dirs)
	}

	return cfg
}
