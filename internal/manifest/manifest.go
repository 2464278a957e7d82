// Package manifest parses the plain-text asset manifest that declares
// which datasets and model artifacts a deployment needs.
//
// The format is the classic requirements style: one entry per line,
// comments beginning with '#', and optional exact-version pins using
// '=='. Unpinned entries accept any installed version.
package manifest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	goversion "github.com/hashicorp/go-version"
)

// Entry is a single manifest line: an asset name with an optional
// exact-version pin. Line records the 1-based source line for error
// reporting.
type Entry struct {
	Name    string
	Version string // empty when unpinned
	Line    int
}

// Pinned reports whether the entry carries an exact-version pin.
func (e Entry) Pinned() bool { return e.Version != "" }

// String renders the entry back in manifest syntax.
func (e Entry) String() string {
	if e.Version == "" {
		return e.Name
	}
	return e.Name + "==" + e.Version
}

// Manifest is a parsed asset manifest.
type Manifest struct {
	Path    string
	Entries []Entry
}

// isValidName reports whether s is acceptable as an asset name. The
// set is conservative: letters, digits, dot, underscore and hyphen,
// which covers every entry a standard resolver accepts.
func isValidName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '.' || r == '_' || r == '-':
		default:
			return false
		}
	}
	return true
}

// Parse reads manifest entries from r. Blank lines and comments are
// skipped; trailing comments after an entry are stripped. Lines with a
// missing name or an empty pin ("name==") are syntax errors; semantic
// checks on names and versions happen in Validate.
func Parse(r io.Reader) (*Manifest, error) {
	m := &Manifest{}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		// strip trailing comment
		if idx := strings.Index(line, "#"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
			if line == "" {
				continue
			}
		}

		entry := Entry{Line: lineNo}
		if idx := strings.Index(line, "=="); idx >= 0 {
			entry.Name = strings.TrimSpace(line[:idx])
			entry.Version = strings.TrimSpace(line[idx+2:])
			if entry.Version == "" {
				return nil, fmt.Errorf("line %d: pin with no version", lineNo)
			}
		} else {
			entry.Name = line
		}
		if entry.Name == "" {
			return nil, fmt.Errorf("line %d: entry with no name", lineNo)
		}
		m.Entries = append(m.Entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read manifest: %v", err)
	}
	return m, nil
}

// ParseFile reads and parses the manifest at path.
func ParseFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %v", err)
	}
	defer f.Close()

	m, err := Parse(f)
	if err != nil {
		return nil, err
	}
	m.Path = path
	return m, nil
}

// Validate checks that every entry names a valid asset and that every
// pin parses as a version. Duplicate names are allowed (the last entry
// wins on Lookup) but a pin with no version ("name==") is an error.
func (m *Manifest) Validate() error {
	for _, e := range m.Entries {
		if !isValidName(e.Name) {
			return fmt.Errorf("line %d: invalid asset name %q", e.Line, e.Name)
		}
		if e.Version == "" {
			continue
		}
		if _, err := goversion.NewVersion(e.Version); err != nil {
			return fmt.Errorf("line %d: invalid version pin %q for %s: %v", e.Line, e.Version, e.Name, err)
		}
	}
	return nil
}

// Lookup returns the last entry with the given name, matching the
// behavior of a resolver that lets later lines override earlier ones.
func (m *Manifest) Lookup(name string) (Entry, bool) {
	for i := len(m.Entries) - 1; i >= 0; i-- {
		if m.Entries[i].Name == name {
			return m.Entries[i], true
		}
	}
	return Entry{}, false
}

// Names returns the entry names in file order, deduplicated.
func (m *Manifest) Names() []string {
	seen := make(map[string]bool, len(m.Entries))
	var names []string
	for _, e := range m.Entries {
		if seen[e.Name] {
			continue
		}
		seen[e.Name] = true
		names = append(names, e.Name)
	}
	return names
}
