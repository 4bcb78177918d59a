package kit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsEmpty(t *testing.T) {
	kits, err := Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	require.NoError(t, err)
	require.Empty(t, kits)
}

func TestLoadToleratesCommentsAndTrailingCommas(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kits.json")
	doc := `[
		// a comment
		{
			"name": "GCC 9.4.0",
			"compilers": { "C": "/usr/bin/gcc" },
		},
	]`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	kits, err := Load(path)
	require.NoError(t, err)
	require.Len(t, kits, 1)
	require.Equal(t, "GCC 9.4.0", kits[0].Name)
}

func TestLoadSchemaInvalidDocumentYieldsEmptyList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kits.json")
	doc := `[
		{ "compilers": { "C": "/usr/bin/gcc" } },
		{ "name": "Clang 14", "compilers": { "C": "/usr/bin/clang" } }
	]`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	kits, err := Load(path)
	require.NoError(t, err)
	require.Empty(t, kits)
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kits.json")
	kits := []*Kit{
		{Name: "GCC 9.4.0", Compilers: map[string]string{"C": "/usr/bin/gcc", "CXX": "/usr/bin/g++"}},
		{Name: "VS", VisualStudio: "instance-1", VisualStudioArchitecture: ArchAmd64},
	}
	require.NoError(t, Save(path, kits))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	require.Equal(t, "GCC 9.4.0", loaded[0].Name)
	require.Equal(t, "/usr/bin/g++", loaded[0].Compilers["CXX"])
	require.Equal(t, ArchAmd64, loaded[1].VisualStudioArchitecture)
}

func TestSaveRejectsInvalidKit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kits.json")
	err := Save(path, []*Kit{{Name: "broken"}})
	require.Error(t, err)
}
