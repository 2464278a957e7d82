package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	goversion "github.com/hashicorp/go-version"

	"github.com/terra-data/price.report/internal/security"
)

// Asset is one installed artifact discovered in an asset directory.
// Installed assets are files or directories named "<name>-<version>"
// (for example "housing-clean-2.1.0" or "model-final-1.0.3.json").
type Asset struct {
	Name    string
	Version string
	Path    string
}

// Problem describes one manifest entry that could not be satisfied by
// the installed assets.
type Problem struct {
	Entry  Entry
	Reason string
}

func (p Problem) String() string {
	return fmt.Sprintf("%s: %s", p.Entry, p.Reason)
}

// ScanDir lists the installed assets under dir. Filenames that do not
// contain a parseable "-<version>" suffix are ignored.
func ScanDir(dir string) ([]Asset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read asset dir: %v", err)
	}

	var assets []Asset
	for _, de := range entries {
		name := de.Name()
		// strip a single file extension so "model-final-1.0.3.json"
		// parses the same as a bare directory
		if !de.IsDir() {
			name = strings.TrimSuffix(name, filepath.Ext(name))
		}
		idx := strings.LastIndex(name, "-")
		if idx <= 0 || idx == len(name)-1 {
			continue
		}
		ver := name[idx+1:]
		if _, err := goversion.NewVersion(ver); err != nil {
			continue
		}
		assets = append(assets, Asset{
			Name:    name[:idx],
			Version: ver,
			Path:    filepath.Join(dir, de.Name()),
		})
	}
	return assets, nil
}

// Verify checks each manifest entry against the installed assets in
// dir. Pinned entries require an exact version match; unpinned entries
// are satisfied by any installed version. The returned slice is empty
// when the manifest is fully satisfied.
func Verify(m *Manifest, dir string) ([]Problem, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	assets, err := ScanDir(dir)
	if err != nil {
		return nil, err
	}

	byName := make(map[string][]Asset)
	for _, a := range assets {
		byName[a.Name] = append(byName[a.Name], a)
	}

	var problems []Problem
	for _, name := range m.Names() {
		entry, _ := m.Lookup(name)
		installed := byName[name]
		if len(installed) == 0 {
			problems = append(problems, Problem{Entry: entry, Reason: "not installed"})
			continue
		}
		if !entry.Pinned() {
			continue
		}
		want, err := goversion.NewVersion(entry.Version)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid pin %q: %v", entry.Line, entry.Version, err)
		}
		found := false
		var have []string
		for _, a := range installed {
			got, err := goversion.NewVersion(a.Version)
			if err != nil {
				continue
			}
			have = append(have, a.Version)
			if got.Equal(want) {
				found = true
				break
			}
		}
		if !found {
			problems = append(problems, Problem{
				Entry:  entry,
				Reason: fmt.Sprintf("installed versions %v do not match pin", have),
			})
		}
	}
	return problems, nil
}

// Resolve returns the filesystem path of the installed asset matching
// the manifest entry for name. It is how the server locates its data
// files: the manifest names the asset, the directory provides it.
// Entry names may contain dots, so the resolved path is checked
// against dir before it is returned.
func Resolve(m *Manifest, dir, name string) (string, error) {
	entry, ok := m.Lookup(name)
	if !ok {
		return "", fmt.Errorf("asset %q not declared in manifest", name)
	}
	assets, err := ScanDir(dir)
	if err != nil {
		return "", err
	}

	var best *Asset
	var bestVer *goversion.Version
	for i := range assets {
		a := assets[i]
		if a.Name != name {
			continue
		}
		got, err := goversion.NewVersion(a.Version)
		if err != nil {
			continue
		}
		if entry.Pinned() {
			want, err := goversion.NewVersion(entry.Version)
			if err != nil {
				return "", fmt.Errorf("invalid pin %q: %v", entry.Version, err)
			}
			if got.Equal(want) {
				if err := security.ValidatePathWithinDirectory(a.Path, dir); err != nil {
					return "", err
				}
				return a.Path, nil
			}
			continue
		}
		if bestVer == nil || got.GreaterThan(bestVer) {
			best = &assets[i]
			bestVer = got
		}
	}
	if entry.Pinned() {
		return "", fmt.Errorf("asset %s not installed", entry)
	}
	if best == nil {
		return "", fmt.Errorf("asset %q not installed", name)
	}
	if err := security.ValidatePathWithinDirectory(best.Path, dir); err != nil {
		return "", err
	}
	return best.Path, nil
}
