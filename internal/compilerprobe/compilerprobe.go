// Package compilerprobe classifies a candidate file path as a GCC or Clang
// compiler driver, executes it under a version probe, and parses its
// free-form output into a structured identity (spec §4.B).
package compilerprobe

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/Masterminds/semver"

	"github.com/cmake-tools/kitscan/internal/kit"
	"github.com/cmake-tools/kitscan/pkg/log"
	"github.com/cmake-tools/kitscan/util/envutil"
	"github.com/cmake-tools/kitscan/util/executil"
	"github.com/cmake-tools/kitscan/util/fileutil"
	"github.com/cmake-tools/kitscan/util/regexutil"
)

// defaultProbeTimeout bounds how long a single "-v" invocation may run;
// a hung compiler driver must not stall the rest of the scan (spec §5).
const defaultProbeTimeout = 10 * time.Second

// Family identifies which compiler toolchain a binary belongs to.
type Family string

const (
	GCC   Family = "GCC"
	Clang Family = "CLANG"
)

// Identity is the parsed result of probing a candidate binary.
type Identity struct {
	Family       Family
	Version      string
	FullVersion  string
	Target       string
	ThreadModel  string
	InstalledDir string
}

var (
	gccBasenameRegex   = regexp.MustCompile(`^(?:(?P<triple>(?:[\w.]+-)+))?gcc(?:-\d+(?:\.\d+)*)?(?:\.exe)?$`)
	clangBasenameRegex = regexp.MustCompile(`^clang(?:-\d+(?:\.\d+)*)?(?:\.exe)?$`)

	gccVersionRegex   = regexp.MustCompile(`(?m)^gcc version (?P<version>\S+) `)
	clangVersionRegex = regexp.MustCompile(`(?m)^(?:Apple LLVM|Apple clang|clang) version (?P<version>\S+?)[\s-]`)
	targetRegex       = regexp.MustCompile(`(?m)Target:\s+(?P<target>.*)`)
	threadModelRegex  = regexp.MustCompile(`(?m)Thread model:\s+(?P<threadmodel>.*)`)
	installedDirRegex = regexp.MustCompile(`(?m)InstalledDir:\s+(?P<installeddir>.*)`)

	mingwMakeHeaderRegex = regexp.MustCompile(`(?i)^Make`)
)

// classify reports which family, if any, bin's basename belongs to.
func classify(bin string) (Family, bool) {
	base := filepath.Base(bin)
	if gccBasenameRegex.MatchString(base) {
		return GCC, true
	}
	if clangBasenameRegex.MatchString(base) {
		return Clang, true
	}
	return "", false
}

// gccTriple extracts the target-triple prefix from a GCC basename (spec
// §4.B step 1, e.g. "x86_64-linux-gnu-gcc-9" -> "x86_64-linux-gnu"), or ""
// for an unprefixed basename like "gcc" or "gcc-9". Unlike Clang, GCC's own
// "-v" output always prints a Target: line (even for an unprefixed native
// compiler), so that line can't be used to tell a cross-compiler apart from
// a native one; the basename prefix is the only reliable signal.
func gccTriple(bin string) string {
	groups, ok := regexutil.FindNamedGroupsMatch(gccBasenameRegex, filepath.Base(bin))
	if !ok {
		return ""
	}
	return strings.TrimSuffix(groups["triple"], "-")
}

// Probe executes bin under a version probe and, if it is a recognized
// compiler driver with parseable output, returns a Kit describing it. It
// returns (nil, nil) for every absorbed condition in spec §4.B/§7 — unknown
// basename, non-zero exit, unparseable output, or a Clang driver targeting
// MSVC — never an error for those cases. A non-nil error indicates an
// unexpected I/O condition the caller should log and continue past.
func Probe(ctx context.Context, bin string) (*kit.Kit, error) {
	family, ok := classify(bin)
	if !ok {
		return nil, nil
	}

	out, err := runVersionProbe(ctx, bin)
	if err != nil {
		// executil wraps the start error, so match through the wrapping.
		if errors.Is(err, fs.ErrNotExist) {
			log.Debugf("%v: %s", kit.ErrNotFound, bin)
			return nil, nil
		}
		if errors.Is(err, fs.ErrPermission) {
			return nil, nil
		}
		return nil, err
	}
	if out == "" {
		return nil, nil
	}

	identity, ok := parseOutput(family, out)
	if !ok {
		log.Debugf("%v: %s: unparseable -v output", kit.ErrProbeFailed, bin)
		return nil, nil
	}

	if strings.Contains(identity.Target, "msvc") {
		return nil, nil
	}

	compilers := map[string]string{"C": bin}
	if sibling := siblingCXX(bin, family); sibling != "" {
		compilers["CXX"] = sibling
	}

	var triple string
	if family == GCC {
		triple = gccTriple(bin)
	}

	k := &kit.Kit{
		Name:      name(family, identity, triple),
		Compilers: compilers,
	}

	if runtime.GOOS == "windows" && family == GCC && strings.Contains(strings.ToLower(bin), "mingw") {
		augmentMinGW(ctx, bin, k)
	}

	return k, nil
}

// ProbeClangTarget runs bin under the same version probe as Probe and
// returns the parsed Target field of a recognized Clang driver, regardless
// of whether bin's basename matches the plain-Clang classification regex.
// It is used by the clang-cl variant (spec §4.E), whose binaries carry a
// distinct "clang-cl" basename prefix.
func ProbeClangTarget(ctx context.Context, bin string) (string, bool) {
	out, err := runVersionProbe(ctx, bin)
	if err != nil || out == "" {
		return "", false
	}
	identity, ok := parseOutput(Clang, out)
	if !ok {
		return "", false
	}
	return identity.Target, true
}

func runVersionProbe(ctx context.Context, bin string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, defaultProbeTimeout)
	defer cancel()

	var buf bytes.Buffer
	cmd := executil.CommandContext(ctx, bin, "-v")
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	err := cmd.Run()
	if err != nil {
		if cmd.ProcessState != nil {
			// The process started and exited non-zero: an unrecognized
			// candidate, not an unexpected I/O failure (spec §4.B step 3).
			return "", nil
		}
		return "", err
	}
	return buf.String(), nil
}

func parseOutput(family Family, out string) (Identity, bool) {
	var identity Identity
	identity.Family = family
	identity.FullVersion = strings.TrimSpace(out)

	var version string
	switch family {
	case GCC:
		groups, ok := regexutil.FindNamedGroupsMatch(gccVersionRegex, out)
		if !ok {
			return Identity{}, false
		}
		version = groups["version"]
	case Clang:
		groups, ok := regexutil.FindNamedGroupsMatch(clangVersionRegex, out)
		if !ok {
			return Identity{}, false
		}
		version = groups["version"]
	}
	if version == "" {
		return Identity{}, false
	}
	// Normalize through semver so an oddly-formatted -v string (e.g. a
	// missing patch component) still yields the canonical dotted form used
	// in the kit name; fall back to the raw regex capture if it doesn't
	// parse as a version at all.
	if sv, err := semver.NewVersion(version); err == nil {
		version = sv.String()
	}
	identity.Version = version

	// Target/Thread model/InstalledDir are Clang-specific lines (spec §4.B
	// step 4); gcc -v always prints its own Target: line describing the
	// compiler's own build triple, not a cross-compilation target, so it
	// must never be read here. GCC's triple, when relevant, comes from the
	// basename instead (see gccTriple).
	if family == Clang {
		if groups, ok := regexutil.FindNamedGroupsMatch(targetRegex, out); ok {
			identity.Target = groups["target"]
		}
		if groups, ok := regexutil.FindNamedGroupsMatch(threadModelRegex, out); ok {
			identity.ThreadModel = groups["threadmodel"]
		}
		if groups, ok := regexutil.FindNamedGroupsMatch(installedDirRegex, out); ok {
			identity.InstalledDir = groups["installeddir"]
		}
	}

	return identity, true
}

func siblingCXX(bin string, family Family) string {
	dir := filepath.Dir(bin)
	base := filepath.Base(bin)

	var siblingBase string
	switch family {
	case GCC:
		siblingBase = strings.Replace(base, "gcc", "g++", 1)
	case Clang:
		siblingBase = strings.Replace(base, "clang", "clang++", 1)
	}
	if siblingBase == base {
		return ""
	}

	sibling := filepath.Join(dir, siblingBase)
	if exists, _ := fileutil.Exists(sibling); exists && !fileutil.IsDir(sibling) {
		return sibling
	}
	return ""
}

// name renders the kit's display name (spec §4.B step 4). triple is only
// meaningful for GCC and comes from the basename prefix (gccTriple), never
// from the probed identity: "-v" output can't distinguish a cross-compiler
// from a native one.
func name(family Family, identity Identity, triple string) string {
	switch family {
	case GCC:
		if triple != "" {
			return "GCC for " + triple + " " + identity.Version
		}
		return "GCC " + identity.Version
	case Clang:
		return "Clang " + identity.Version
	}
	return ""
}

// augmentMinGW implements the MinGW-specific enrichment of spec §4.B: when a
// GCC driver's path contains "mingw" on Windows, look for a sibling
// mingw32-make.exe and, if it identifies itself correctly, mark the kit as
// preferring the MinGW Makefiles generator.
func augmentMinGW(ctx context.Context, bin string, k *kit.Kit) {
	dir := filepath.Dir(bin)
	makePath := filepath.Join(dir, "mingw32-make.exe")
	if exists, _ := fileutil.Exists(makePath); !exists {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, defaultProbeTimeout)
	defer cancel()

	env, err := envutil.Setenv(os.Environ(), "PATH", dir)
	if err != nil {
		return
	}

	var buf bytes.Buffer
	cmd := executil.CommandContext(ctx, makePath, "-v")
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	cmd.Env = env
	if err := cmd.Run(); err != nil {
		return
	}

	lines := strings.SplitN(buf.String(), "\n", 3)
	if len(lines) < 2 {
		return
	}
	if !mingwMakeHeaderRegex.MatchString(lines[0]) {
		return
	}
	if !strings.Contains(lines[1], "mingw32") {
		return
	}

	k.PreferredGenerator = &kit.PreferredGenerator{Name: "MinGW Makefiles"}
	if k.EnvironmentVariables == nil {
		k.EnvironmentVariables = map[string]string{}
	}
	k.EnvironmentVariables["CMT_MINGW_PATH"] = dir
	log.Debugf("detected MinGW toolchain at %s", dir)
}
