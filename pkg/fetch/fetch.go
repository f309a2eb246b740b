// Package fetch downloads and unpacks the external dependencies listed in
// build.yml, most importantly a pinned protoc release for machines that
// don't have one installed.
package fetch

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/schollz/progressbar/v3"

	"github.com/noob-code80/solana-geyser-test/build-tools/pkg"
)

// DepSpec describes one downloadable dependency.
type DepSpec struct {
	Condition  string   `yaml:"if,omitempty"`
	Rejections string   `yaml:"ifNot,omitempty"`
	URL        string   `yaml:"url"`
	Dest       string   `yaml:"dest"`
	Sha256     string   `yaml:"sha256"`
	Strip      int      `yaml:"strip"`
	MarkExec   []string `yaml:"markExec,omitempty"`
}

var varPattern = regexp.MustCompile(`\{([A-Z0-9_]+)\}`)

// ExpandVars replaces {NAME} placeholders in the spec's URL and reports
// whether its if/ifNot conditions hold for the given variable set. Unknown
// placeholders expand to the empty string.
func ExpandVars(spec *DepSpec, vars map[string]string) bool {
	spec.URL = varPattern.ReplaceAllStringFunc(spec.URL, func(name string) string {
		return vars[name[1:len(name)-1]]
	})

	for _, cond := range strings.Split(spec.Condition, ",") {
		cond = strings.TrimSpace(cond)
		if cond != "" && vars[cond] == "" {
			return false
		}
	}

	for _, cond := range strings.Split(spec.Rejections, ",") {
		cond = strings.TrimSpace(cond)
		if cond != "" && vars[cond] != "" {
			return false
		}
	}

	return true
}

// PlatformVars returns the builtin variables every manifest can rely on:
// the current OS and architecture (set to "true") plus "ci" on CI runners,
// merged with the manifest's own vars section.
func PlatformVars(extra map[string]string) map[string]string {
	vars := map[string]string{
		runtime.GOOS:   "true",
		runtime.GOARCH: "true",
	}

	if os.Getenv("CI") == "true" {
		vars["ci"] = "true"
	}

	for name, value := range extra {
		vars[name] = value
	}

	return vars
}

const (
	stampFile    = ".tools/deps.stamps"
	manifestName = "build.yml"
)

// FetchAll downloads every dependency whose conditions match, verifies the
// checksum and unpacks the archive below the project root. Entries whose
// URL and checksum are unchanged since the last run are skipped as long as
// their destination still exists. With update, a mismatched or missing
// checksum doesn't fail the run; the downloaded digest is written back to
// the manifest instead. Pass nil to use the default HTTP client.
func FetchAll(projectRoot string, deps map[string]DepSpec, vars map[string]string, client *http.Client, update bool) error {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Minute}
	}

	stamps := readStamps(projectRoot)
	changes := map[string]string{}

	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		spec := deps[name]
		if !ExpandVars(&spec, vars) {
			continue
		}

		if spec.Sha256 == "" && !update {
			return eris.Errorf("Dependency %s doesn't have a checksum", name)
		}

		destPath := filepath.Join(projectRoot, spec.Dest)
		destInfo, err := os.Stat(destPath)
		destExists := err == nil

		if stamps[name] == spec.URL+"#"+spec.Sha256 && destExists {
			continue
		}

		pkg.PrintSubtask(name + ":  " + spec.URL)
		digest, err := fetchOne(client, projectRoot, destPath, destInfo, destExists, spec, update)
		if err != nil {
			return eris.Wrapf(err, "Failed to fetch %s", name)
		}

		if digest != spec.Sha256 {
			changes[name] = digest
			spec.Sha256 = digest
		}

		stamps[name] = spec.URL + "#" + spec.Sha256
	}

	if len(changes) > 0 {
		err := updateManifest(projectRoot, deps, changes)
		if err != nil {
			return err
		}
	}

	return writeStamps(projectRoot, stamps)
}

func fetchOne(client *http.Client, projectRoot, destPath string, destInfo os.FileInfo, destExists bool, spec DepSpec, update bool) (string, error) {
	arHandle, err := os.CreateTemp(projectRoot, "deps-dl-*.tmp")
	if err != nil {
		return "", eris.Wrap(err, "Failed to create download file")
	}
	defer func() {
		arHandle.Close()
		os.Remove(arHandle.Name())
	}()

	digest, err := download(client, spec.URL, arHandle)
	if err != nil {
		return "", err
	}

	if digest != spec.Sha256 {
		if !update {
			return "", eris.Errorf("Checksum check failed for %s: expected %s but got %s", spec.URL, spec.Sha256, digest)
		}

		pkg.PrintSubtask("Updating checksum for " + spec.URL)
	}

	if destExists {
		pkg.PrintSubtask("Remove " + destPath)
		if destInfo.IsDir() {
			err = os.RemoveAll(destPath)
		} else {
			err = os.Remove(destPath)
		}
		if err != nil {
			return "", err
		}
	}

	extract, err := extractorForURL(spec.URL)
	if err != nil {
		return "", err
	}

	_, err = arHandle.Seek(0, io.SeekStart)
	if err != nil {
		return "", eris.Wrap(err, "Failed to rewind download file")
	}

	err = extract(arHandle, destPath, spec)
	if err != nil {
		return "", err
	}

	return digest, markExecutables(destPath, spec)
}

// updateManifest writes refreshed checksums back into the deps section of
// build.yml. The file is edited textually so comments and the rest of the
// formatting survive the rewrite.
func updateManifest(projectRoot string, deps map[string]DepSpec, changes map[string]string) error {
	manifestPath := filepath.Join(projectRoot, manifestName)
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return eris.Wrapf(err, "Failed to read %s", manifestPath)
	}

	pkg.PrintTask("Updating " + manifestName)
	text := string(data)
	for name, digest := range changes {
		pos := strings.Index(text, name+":")
		if pos == -1 {
			return eris.Errorf("Failed to find the section for %s", name)
		}

		if deps[name].Sha256 == "" {
			// no checksum line yet, insert one right below the entry name
			lineEnd := strings.Index(text[pos:], "\n")
			if lineEnd == -1 {
				return eris.Errorf("Failed to find the end of the section for %s", name)
			}

			start := pos + lineEnd + 1
			text = text[:start] + "    sha256: " + digest + "\n" + text[start:]
			continue
		}

		old := "sha256: " + deps[name].Sha256
		subPos := strings.Index(text[pos:], old)
		if subPos == -1 {
			return eris.Errorf("Failed to find the checksum of %s", name)
		}

		start := pos + subPos + len("sha256: ")
		text = text[:start] + digest + text[start+len(deps[name].Sha256):]
	}

	err = os.WriteFile(manifestPath, []byte(text), 0660)
	if err != nil {
		return eris.Wrapf(err, "Failed to write %s", manifestPath)
	}

	return nil
}

func download(client *http.Client, url string, dest *os.File) (string, error) {
	resp, err := client.Get(url)
	if err != nil {
		return "", eris.Wrapf(err, "Failed to start download for %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", eris.Errorf("Unexpected status %s for %s", resp.Status, url)
	}

	hash := sha256.New()
	bar := progressBar(resp.ContentLength, "     download")
	_, err = io.Copy(io.MultiWriter(dest, hash, bar), resp.Body)
	bar.Finish()
	if err != nil {
		return "", eris.Wrapf(err, "Failed during download of %s", url)
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}

func progressBar(length int64, desc string) *progressbar.ProgressBar {
	// progress bars only produce noise in CI logs
	if os.Getenv("CI") == "true" {
		return progressbar.NewOptions64(length, progressbar.OptionSetVisibility(false))
	}

	return progressbar.DefaultBytes(length, desc)
}

// markExecutables restores the executable bit on the listed files. .zip
// archives don't carry permissions, so binaries from them need this.
func markExecutables(destPath string, spec DepSpec) error {
	if runtime.GOOS == "windows" {
		return nil
	}

	for _, binPath := range spec.MarkExec {
		binPath = filepath.Join(destPath, binPath)
		fi, err := os.Stat(binPath)
		if err != nil {
			return eris.Wrapf(err, "Failed to read permissions for %s", binPath)
		}

		err = os.Chmod(binPath, fi.Mode()|0700)
		if err != nil {
			return eris.Wrapf(err, "Failed to mark %s as executable", binPath)
		}
	}

	return nil
}

func readStamps(projectRoot string) map[string]string {
	stamps := map[string]string{}
	data, err := os.ReadFile(filepath.Join(projectRoot, filepath.FromSlash(stampFile)))
	if err == nil {
		// a corrupt stamp file only costs a re-download
		_ = json.Unmarshal(data, &stamps)
	}

	return stamps
}

func writeStamps(projectRoot string, stamps map[string]string) error {
	stampPath := filepath.Join(projectRoot, filepath.FromSlash(stampFile))
	err := os.MkdirAll(filepath.Dir(stampPath), 0770)
	if err != nil {
		return eris.Wrapf(err, "Failed to create %s", filepath.Dir(stampPath))
	}

	data, err := json.Marshal(stamps)
	if err != nil {
		return eris.Wrap(err, "Failed to encode stamps")
	}

	err = os.WriteFile(stampPath, data, 0660)
	if err != nil {
		return eris.Wrapf(err, "Failed to write %s", stampPath)
	}

	return nil
}
