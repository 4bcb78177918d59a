// Package dirscan enumerates candidate binaries in a directory and applies
// a prober to each in parallel, tolerating permission and non-existence
// errors (spec §4.C).
package dirscan

import (
	"context"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/cmake-tools/kitscan/internal/kit"
	"github.com/cmake-tools/kitscan/pkg/log"
	"github.com/cmake-tools/kitscan/util/fileutil"
)

// maxConcurrentProbes bounds how many candidate binaries in a single
// directory are probed at once, so a directory with thousands of entries
// can't spin up thousands of concurrent child processes (spec §5).
const maxConcurrentProbes = 16

// Prober probes a single candidate path, returning (nil, nil) when the
// candidate is not a recognized toolchain.
type Prober func(ctx context.Context, path string) (*kit.Kit, error)

// Scan lists the entries of dir and applies probe to each in parallel. A
// missing directory, a path that is not a directory, or an EACCES/EPERM
// listing failure all yield an empty, non-error result — discovery must
// never abort because one scan root is inaccessible.
func Scan(ctx context.Context, dir string, probe Prober) []*kit.Kit {
	if !fileutil.IsDir(dir) {
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsPermission(err) {
			return nil
		}
		log.Warnf("failed to list %s: %v", dir, err)
		return nil
	}

	results := make([]*kit.Kit, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentProbes)
	for i, entry := range entries {
		i, entry := i, entry
		g.Go(func() error {
			if entry.IsDir() {
				return nil
			}
			path := filepath.Join(dir, entry.Name())
			k, err := probe(gctx, path)
			if err != nil {
				log.Warnf("probing %s failed: %v", path, err)
				return nil
			}
			results[i] = k
			return nil
		})
	}
	// errgroup's Go never returns a non-nil error here (failures are
	// logged and absorbed), so Wait cannot fail.
	_ = g.Wait()

	kits := make([]*kit.Kit, 0, len(results))
	for _, k := range results {
		if k != nil {
			kits = append(kits, k)
		}
	}
	return kits
}
