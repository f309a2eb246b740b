package fetch

import (
	"archive/tar"
	"archive/zip"
	"compress/bzip2"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/ulikunitz/xz"
)

type extractor func(src *os.File, destPath string, spec DepSpec) error

func extractorForURL(url string) (extractor, error) {
	switch {
	case strings.HasSuffix(url, ".zip"):
		return extractZip, nil
	case strings.HasSuffix(url, ".tar.gz"):
		return func(src *os.File, destPath string, spec DepSpec) error {
			reader, err := gzip.NewReader(src)
			if err != nil {
				return err
			}
			defer reader.Close()

			return extractTar(reader, destPath, spec)
		}, nil
	case strings.HasSuffix(url, ".tar.bz2"):
		return func(src *os.File, destPath string, spec DepSpec) error {
			return extractTar(bzip2.NewReader(src), destPath, spec)
		}, nil
	case strings.HasSuffix(url, ".tar.xz"):
		return func(src *os.File, destPath string, spec DepSpec) error {
			reader, err := xz.NewReader(src)
			if err != nil {
				return err
			}

			return extractTar(reader, destPath, spec)
		}, nil
	}

	return nil, eris.Errorf("Archive format of %s is not supported", url)
}

// entryDest maps an archive entry name to its destination, dropping the
// first strip path elements. The second return value is false for entries
// that vanish entirely (stripped away or escaping the destination).
func entryDest(destPath, name string, strip int) (string, bool) {
	name = filepath.Clean(filepath.FromSlash(name))
	parts := strings.Split(name, string(filepath.Separator))
	if strip >= len(parts) {
		return "", false
	}

	rel := filepath.Join(parts[strip:]...)
	if rel == "" || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}

	return filepath.Join(destPath, rel), true
}

func createEntry(dest string) (*os.File, error) {
	err := os.MkdirAll(filepath.Dir(dest), 0770)
	if err != nil {
		return nil, eris.Wrapf(err, "Failed to create directory %s", filepath.Dir(dest))
	}

	handle, err := os.Create(dest)
	if err != nil {
		return nil, eris.Wrapf(err, "Failed to create file %s", dest)
	}

	return handle, nil
}

func extractZip(src *os.File, destPath string, spec DepSpec) error {
	stat, err := src.Stat()
	if err != nil {
		return err
	}

	archive, err := zip.NewReader(src, stat.Size())
	if err != nil {
		return err
	}

	for _, item := range archive.File {
		if strings.HasSuffix(item.Name, "/") {
			continue
		}

		dest, ok := entryDest(destPath, item.Name, spec.Strip)
		if !ok {
			continue
		}

		itemHandle, err := item.Open()
		if err != nil {
			return eris.Wrapf(err, "Failed to open archive entry %s", item.Name)
		}

		destHandle, err := createEntry(dest)
		if err != nil {
			itemHandle.Close()
			return err
		}

		_, err = io.Copy(destHandle, itemHandle)
		itemHandle.Close()
		destHandle.Close()
		if err != nil {
			return eris.Wrapf(err, "Failed to write extracted file %s", dest)
		}
	}

	return nil
}

func extractTar(r io.Reader, destPath string, spec DepSpec) error {
	archive := tar.NewReader(r)
	for {
		item, err := archive.Next()
		if err != nil {
			if err == io.EOF {
				break
			}

			return eris.Wrap(err, "Failed to read archive entry")
		}

		fi := item.FileInfo()
		if fi.IsDir() {
			continue
		}

		dest, ok := entryDest(destPath, item.Name, spec.Strip)
		if !ok {
			continue
		}

		if item.Typeflag == tar.TypeSymlink {
			err = os.MkdirAll(filepath.Dir(dest), 0770)
			if err != nil {
				return eris.Wrapf(err, "Failed to create directory %s", filepath.Dir(dest))
			}

			err = os.Symlink(item.Linkname, dest)
			if err != nil {
				return eris.Wrapf(err, "Failed to create symlink %s pointing to %s", dest, item.Linkname)
			}
			continue
		}

		destHandle, err := createEntry(dest)
		if err != nil {
			return err
		}

		_, err = io.Copy(destHandle, archive)
		destHandle.Close()
		if err != nil {
			return eris.Wrapf(err, "Failed to write extracted file %s", dest)
		}

		// tar entries carry their permissions, zip entries don't
		err = os.Chmod(dest, fi.Mode())
		if err != nil {
			return eris.Wrapf(err, "Failed to restore permissions of %s", dest)
		}
	}

	return nil
}
