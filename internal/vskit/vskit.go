// Package vskit builds Kit records from vendor (Visual Studio) installations
// by crossing each installation with a fixed architecture list and invoking
// the vendor environment extractor, plus a separate clang-cl builder (spec
// §4.E).
package vskit

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/mattn/go-zglob"

	"github.com/cmake-tools/kitscan/internal/compilerprobe"
	"github.com/cmake-tools/kitscan/internal/kit"
	"github.com/cmake-tools/kitscan/internal/vsenv"
	"github.com/cmake-tools/kitscan/pkg/log"
)

// Architectures is the fixed architecture list crossed with every vendor
// installation (spec §4.E).
var Architectures = []kit.Architecture{
	kit.ArchX86, kit.ArchAmd64, kit.ArchX86Amd64, kit.ArchX86Arm, kit.ArchAmd64Arm, kit.ArchAmd64X86,
}

// generatorNameByMajorVersion is the "vendor major version -> generator
// name" table of spec §6, keyed by major version only; legacy
// VSnnnCOMNTOOLS alias keys are not part of this table.
var generatorNameByMajorVersion = map[int]string{
	10: "Visual Studio 10 2010",
	11: "Visual Studio 11 2012",
	12: "Visual Studio 12 2013",
	14: "Visual Studio 14 2015",
	15: "Visual Studio 15 2017",
	16: "Visual Studio 16 2019",
}

// DisplayInfo carries the vendor-installation metadata the naming rule in
// spec §4.E needs beyond what vsenv.Installation itself carries.
type DisplayInfo struct {
	DisplayName string
	ChannelID   string
}

func displayName(installation vsenv.Installation, info DisplayInfo) string {
	switch {
	case info.DisplayName != "" && info.ChannelID != "":
		if idx := strings.LastIndex(info.ChannelID, "."); idx != -1 {
			return info.DisplayName + " " + info.ChannelID[idx+1:]
		}
		return info.DisplayName
	case info.DisplayName != "":
		return info.DisplayName
	default:
		return installation.InstanceID
	}
}

// BuildKits crosses installation with every architecture in Architectures,
// invoking the vendor environment extractor for each and shaping a
// successful activation into a Kit.
func BuildKits(ctx context.Context, tmpDir string, installation vsenv.Installation, info DisplayInfo, bundledNinjaDir string) []*kit.Kit {
	var kits []*kit.Kit
	name := displayName(installation, info)

	for _, arch := range Architectures {
		env, err := vsenv.Activate(ctx, tmpDir, installation, string(arch), bundledNinjaDir)
		if err != nil {
			log.Warnf("activating %s (%s) failed: %v", name, arch, err)
			continue
		}
		if env == nil {
			continue
		}

		k := &kit.Kit{
			Name:                     name + " - " + string(arch),
			VisualStudio:             installation.InstanceID,
			VisualStudioArchitecture: arch,
		}

		major := installation.MajorVersion()
		if generatorName, ok := generatorNameByMajorVersion[major]; ok {
			generator := &kit.PreferredGenerator{Name: generatorName}
			if platform, ok := kit.GeneratorPlatform(arch); ok {
				generator.Platform = platform
			}
			k.PreferredGenerator = generator
		}

		kits = append(kits, k)
	}
	return kits
}

// clangCLBasenamePrefix is how a clang-cl binary is recognized among the
// search directories of spec §4.E.
const clangCLBasenamePrefix = "clang-cl"

// ClangCLSearchDirs computes the fixed clang-cl search set of spec §4.E:
// LLVM_ROOT's bin dir, the two Program Files LLVM trees, every PATH entry,
// and every installation's bundled VC\Tools\Llvm\bin.
func ClangCLSearchDirs(llvmRoot, programFiles, programFilesX86 string, pathDirs []string, installations []vsenv.Installation) []string {
	var dirs []string
	if llvmRoot != "" {
		dirs = append(dirs, filepath.Join(llvmRoot, "bin"))
	}
	if programFiles != "" {
		dirs = append(dirs, filepath.Join(programFiles, "LLVM", "bin"))
	}
	if programFilesX86 != "" {
		dirs = append(dirs, filepath.Join(programFilesX86, "LLVM", "bin"))
	}
	dirs = append(dirs, pathDirs...)
	for _, inst := range installations {
		dirs = append(dirs, filepath.Join(inst.InstallationPath, "VC", "Tools", "Llvm", "bin"))
	}
	return dirs
}

// BuildClangCLKits scans searchDirs for clang-cl binaries and, for each one
// found, emits one kit per vendor installation pairing the binary with that
// installation's instance ID (spec §4.E "clang-cl variant").
func BuildClangCLKits(ctx context.Context, searchDirs []string, installations []vsenv.Installation) []*kit.Kit {
	var kits []*kit.Kit
	seen := map[string]bool{}

	for _, dir := range searchDirs {
		matches, err := zglob.Glob(filepath.Join(dir, clangCLBasenamePrefix+"*"))
		if err != nil {
			continue
		}
		for _, bin := range matches {
			if seen[bin] {
				continue
			}
			seen[bin] = true

			arch, ok := probeClangCLArch(ctx, bin)
			if !ok {
				continue
			}

			for _, inst := range installations {
				kits = append(kits, &kit.Kit{
					Name:                     "Clang-cl " + filepath.Base(bin) + " - " + inst.InstanceID,
					Compilers:                map[string]string{"C": bin, "CXX": bin},
					VisualStudio:             inst.InstanceID,
					VisualStudioArchitecture: arch,
				})
			}
		}
	}
	return kits
}

// probeClangCLArch runs the clang version probe and derives an architecture
// from the target triple, preserving the spec's acknowledged i686-pc-only
// heuristic (spec §9 open question: other 32-bit triples misclassify as
// amd64; this is intentional, not a bug to fix).
func probeClangCLArch(ctx context.Context, bin string) (kit.Architecture, bool) {
	target, ok := compilerprobe.ProbeClangTarget(ctx, bin)
	if !ok {
		return "", false
	}
	if strings.Contains(target, "i686-pc") {
		return kit.ArchX86, true
	}
	return kit.ArchAmd64, true
}
