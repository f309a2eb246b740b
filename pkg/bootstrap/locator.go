package bootstrap

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// FS is the slice of the filesystem the locator needs. Tests substitute a
// fake so resolution can be exercised without touching the real disk.
type FS interface {
	Exists(path string) (bool, error)
}

type osFS struct{}

func (osFS) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}

	if eris.Is(err, os.ErrNotExist) {
		return false, nil
	}

	return false, eris.Wrapf(err, "Failed to check %s", path)
}

// OsFS returns an FS backed by the real filesystem.
func OsFS() FS {
	return osFS{}
}

// ErrShellNotFound indicates that none of the candidate directories
// contain the required POSIX shell.
var ErrShellNotFound = eris.New("no POSIX shell found")

const gitDownloadURL = "https://git-scm.com/download/win"

// LocateShell checks each candidate directory in order and returns the
// first one that contains the shell binary. The candidate order is the
// order of preference; the search stops at the first hit.
func LocateShell(fsys FS, candidates []string, binary string) (string, error) {
	for _, dir := range candidates {
		found, err := fsys.Exists(filepath.Join(dir, binary))
		if err != nil {
			return "", err
		}

		if found {
			return dir, nil
		}
	}

	return "", eris.Wrapf(ErrShellNotFound, "checked %d location(s) for %s; install Git for Windows from %s or point BOOTSTRAP_SHELL_DIRS at a directory that contains it", len(candidates), binary, gitDownloadURL)
}

// LocateProtoc probes the single configured path for the protobuf
// compiler. Unlike the shell there is no candidate list: cargo falls back
// to the vendored protoc when PROTOC is unset, so only an explicitly
// configured install location is worth honoring.
func LocateProtoc(fsys FS, path string) (bool, error) {
	if path == "" {
		return false, nil
	}

	return fsys.Exists(path)
}
