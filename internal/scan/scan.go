// Package scan composes the path resolver, compiler prober, directory
// scanner, and vendor kit builders into the single top-level discovery
// entry point (spec §4.F).
package scan

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"

	"github.com/cmake-tools/kitscan/internal/compilerprobe"
	"github.com/cmake-tools/kitscan/internal/dirscan"
	"github.com/cmake-tools/kitscan/internal/kit"
	"github.com/cmake-tools/kitscan/internal/vsenv"
	"github.com/cmake-tools/kitscan/internal/vskit"
)

// Options configures a Scan call.
type Options struct {
	// TmpDir is used by the vendor environment extractor for its
	// throwaway activation scripts.
	TmpDir string
	// MinGWSearchDirs are additional roots whose "bin" subdirectory is
	// scanned alongside PATH on Windows (spec §4.F step 1).
	MinGWSearchDirs []string
	// Installations is the vendor-installation enumeration the Windows
	// branches of the aggregator drive; empty on non-Windows hosts.
	Installations []vsenv.Installation
	// InstallationInfo maps an installation's InstanceID to its display
	// metadata, used for vendor kit naming.
	InstallationInfo map[string]vskit.DisplayInfo
	// BundledNinjaDir, if set, is threaded into every vendor activation
	// (the Path Resolver's side-channel from resolving cmake, spec §9).
	BundledNinjaDir string
	// ClangCLSearchDirs overrides the computed clang-cl search set;
	// primarily for tests. When nil, it's derived from the environment.
	ClangCLSearchDirs []string
}

// scanDirectories builds the deduplicated, insertion-ordered list of
// directories the compiler prober is applied to: every PATH entry, plus
// each MinGWSearchDirs[i]+"/bin" on Windows (spec §4.F step 1).
func scanDirectories(opts Options) []string {
	var dirs []string
	seen := map[string]bool{}
	add := func(d string) {
		if d == "" || seen[d] {
			return
		}
		seen[d] = true
		dirs = append(dirs, d)
	}

	for _, d := range strings.Split(os.Getenv("PATH"), string(os.PathListSeparator)) {
		add(d)
	}

	if runtime.GOOS == "windows" {
		for _, root := range opts.MinGWSearchDirs {
			add(filepath.Join(root, "bin"))
		}
	}

	return dirs
}

// maxConcurrentScanRoots bounds how many top-level scan roots (PATH
// directories, vendor installations, the clang-cl search) run at once.
const maxConcurrentScanRoots = 16

// Scan performs the full discovery sweep and returns the concatenation of
// compiler kits, then vendor kits, then clang-cl kits (spec §4.F/§5).
func Scan(ctx context.Context, opts Options) ([]*kit.Kit, error) {
	dirs := scanDirectories(opts)

	compilerKits := make([][]*kit.Kit, len(dirs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentScanRoots)
	for i, dir := range dirs {
		i, dir := i, dir
		g.Go(func() error {
			compilerKits[i] = dirscan.Scan(gctx, dir, compilerprobe.Probe)
			return nil
		})
	}

	var vendorKits []*kit.Kit
	var clangCLKits []*kit.Kit
	if runtime.GOOS == "windows" {
		g.Go(func() error {
			vendorKits = buildVendorKits(gctx, opts)
			return nil
		})
		g.Go(func() error {
			clangCLKits = vskit.BuildClangCLKits(gctx, clangCLSearchDirs(opts, dirs), opts.Installations)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var result []*kit.Kit
	for _, ks := range compilerKits {
		result = append(result, ks...)
	}
	result = append(result, vendorKits...)
	result = append(result, clangCLKits...)
	return result, nil
}

func buildVendorKits(ctx context.Context, opts Options) []*kit.Kit {
	var kits []*kit.Kit
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentScanRoots)
	for _, inst := range opts.Installations {
		inst := inst
		g.Go(func() error {
			info := opts.InstallationInfo[inst.InstanceID]
			built := vskit.BuildKits(gctx, opts.TmpDir, inst, info, opts.BundledNinjaDir)
			mu.Lock()
			kits = append(kits, built...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return kits
}

func clangCLSearchDirs(opts Options, pathDirs []string) []string {
	if opts.ClangCLSearchDirs != nil {
		return opts.ClangCLSearchDirs
	}
	llvmRoot := os.Getenv("LLVM_ROOT")
	programFiles := os.Getenv("ProgramFiles")
	programFilesX86 := os.Getenv("ProgramFiles(x86)")
	return vskit.ClangCLSearchDirs(llvmRoot, programFiles, programFilesX86, slices.Clone(pathDirs), opts.Installations)
}
