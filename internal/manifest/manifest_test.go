package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleManifest = `# data assets for the price report service
housing-clean==2.1.0
counties-geo==1.4.2   # county polygons with per-county medians
model-final==1.0.3

housing-raw
`

func TestParse(t *testing.T) {
	m, err := Parse(strings.NewReader(sampleManifest))
	require.NoError(t, err)
	require.Len(t, m.Entries, 4)

	assert.Equal(t, Entry{Name: "housing-clean", Version: "2.1.0", Line: 2}, m.Entries[0])
	assert.Equal(t, Entry{Name: "counties-geo", Version: "1.4.2", Line: 3}, m.Entries[1])
	assert.Equal(t, Entry{Name: "model-final", Version: "1.0.3", Line: 4}, m.Entries[2])
	assert.Equal(t, Entry{Name: "housing-raw", Line: 6}, m.Entries[3])
}

func TestParseCRLFAndWhitespace(t *testing.T) {
	m, err := Parse(strings.NewReader("  housing-clean == 2.1.0 \r\n\r\n# done\r\n"))
	require.NoError(t, err)
	require.Len(t, m.Entries, 1)
	assert.Equal(t, "housing-clean", m.Entries[0].Name)
	assert.Equal(t, "2.1.0", m.Entries[0].Version)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid pinned", "housing-clean==2.1.0", false},
		{"valid unpinned", "housing-clean", false},
		{"empty pin", "housing-clean==", true},
		{"missing name", "==1.0.0", true},
		{"bad name", "housing clean==1.0", true},
		{"bad version", "housing-clean==not.a.version.x", true},
		{"comments only", "# nothing here\n\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Parse(strings.NewReader(tt.input))
			if err == nil {
				err = m.Validate()
			}
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEntryStringRoundTrip(t *testing.T) {
	m, err := Parse(strings.NewReader(sampleManifest))
	require.NoError(t, err)
	for _, e := range m.Entries {
		m2, err := Parse(strings.NewReader(e.String()))
		require.NoError(t, err)
		require.Len(t, m2.Entries, 1)
		assert.Equal(t, e.Name, m2.Entries[0].Name)
		assert.Equal(t, e.Version, m2.Entries[0].Version)
	}
}

func TestLookupLastWins(t *testing.T) {
	m, err := Parse(strings.NewReader("model-final==1.0.0\nmodel-final==1.0.3\n"))
	require.NoError(t, err)

	e, ok := m.Lookup("model-final")
	require.True(t, ok)
	assert.Equal(t, "1.0.3", e.Version)

	assert.Equal(t, []string{"model-final"}, m.Names())

	_, ok = m.Lookup("missing")
	assert.False(t, ok)
}

func writeAsset(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
}

func TestVerify(t *testing.T) {
	dir := t.TempDir()
	writeAsset(t, dir, "housing-clean-2.1.0.csv")
	writeAsset(t, dir, "model-final-1.0.0.json")
	writeAsset(t, dir, "README") // no version suffix, ignored

	m, err := Parse(strings.NewReader("housing-clean==2.1.0\nmodel-final==1.0.3\ncounties-geo\n"))
	require.NoError(t, err)

	problems, err := Verify(m, dir)
	require.NoError(t, err)
	require.Len(t, problems, 2)
	assert.Equal(t, "model-final", problems[0].Entry.Name)
	assert.Contains(t, problems[0].Reason, "do not match pin")
	assert.Equal(t, "counties-geo", problems[1].Entry.Name)
	assert.Equal(t, "not installed", problems[1].Reason)
}

func TestVerifySatisfied(t *testing.T) {
	dir := t.TempDir()
	writeAsset(t, dir, "housing-clean-2.1.0.csv")
	writeAsset(t, dir, "counties-geo-1.4.2.json")

	m, err := Parse(strings.NewReader("housing-clean==2.1.0\ncounties-geo\n"))
	require.NoError(t, err)

	problems, err := Verify(m, dir)
	require.NoError(t, err)
	assert.Empty(t, problems)
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	writeAsset(t, dir, "housing-clean-2.0.0.csv")
	writeAsset(t, dir, "housing-clean-2.1.0.csv")
	writeAsset(t, dir, "model-final-1.0.3.json")

	m, err := Parse(strings.NewReader("housing-clean\nmodel-final==1.0.3\n"))
	require.NoError(t, err)

	// unpinned resolves to the newest installed version
	path, err := Resolve(m, dir, "housing-clean")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "housing-clean-2.1.0.csv"), path)

	// pinned resolves to the exact version
	path, err = Resolve(m, dir, "model-final")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "model-final-1.0.3.json"), path)

	_, err = Resolve(m, dir, "undeclared")
	assert.Error(t, err)
}
