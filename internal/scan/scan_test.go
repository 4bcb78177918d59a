package scan

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScanDirectoriesDeduplicatesPreservingInsertionOrder(t *testing.T) {
	t.Setenv("PATH", "/usr/bin:/usr/local/bin:/usr/bin")
	dirs := scanDirectories(Options{})
	require.Equal(t, []string{"/usr/bin", "/usr/local/bin"}, dirs)
}

func TestScanConcatenatesEmptyResultWithoutPanicking(t *testing.T) {
	t.Setenv("PATH", "")
	kits, err := Scan(context.Background(), Options{})
	require.NoError(t, err)
	require.Empty(t, kits)
}
