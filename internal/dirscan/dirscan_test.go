package dirscan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cmake-tools/kitscan/internal/kit"
)

func TestScanMissingDirectoryReturnsEmpty(t *testing.T) {
	kits := Scan(context.Background(), "/does/not/exist/at/all", func(ctx context.Context, path string) (*kit.Kit, error) {
		t.Fatal("probe should not be called for a missing directory")
		return nil, nil
	})
	require.Empty(t, kits)
}

func TestScanNotADirectoryReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	kits := Scan(context.Background(), file, func(ctx context.Context, path string) (*kit.Kit, error) {
		t.Fatal("probe should not be called when dir is a regular file")
		return nil, nil
	})
	require.Empty(t, kits)
}

func TestScanAppliesProbeAndDropsNulls(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gcc"), []byte("x"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("x"), 0o644))

	kits := Scan(context.Background(), dir, func(ctx context.Context, path string) (*kit.Kit, error) {
		if filepath.Base(path) == "gcc" {
			return &kit.Kit{Name: "GCC", Compilers: map[string]string{"C": path}}, nil
		}
		return nil, nil
	})
	require.Len(t, kits, 1)
	require.Equal(t, "GCC", kits[0].Name)
}

func TestScanToleratesProbeErrors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken"), []byte("x"), 0o755))

	kits := Scan(context.Background(), dir, func(ctx context.Context, path string) (*kit.Kit, error) {
		return nil, os.ErrInvalid
	})
	require.Empty(t, kits)
}
