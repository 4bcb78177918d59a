// Package pathresolver resolves well-known filesystem locations and probes
// PATH/vendor trees for the cmake and ninja binaries the rest of the kit
// engine depends on (spec §4.A).
package pathresolver

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"

	"github.com/cmake-tools/kitscan/pkg/log"
	"github.com/cmake-tools/kitscan/util/fileutil"
)

// dataDirName is the fixed literal joined onto the user data directories.
const dataDirName = "CMakeTools"

// UserHome returns the current user's home directory. On Windows it joins
// HOMEDRIVE and HOMEPATH (defaulting to C: and \Users\Public); elsewhere it
// honors HOME, falling back to PROFILE.
func UserHome() string {
	if runtime.GOOS == "windows" {
		drive := os.Getenv("HOMEDRIVE")
		if drive == "" {
			drive = "C:"
		}
		path := os.Getenv("HOMEPATH")
		if path == "" {
			path = `\Users\Public`
		}
		return drive + path
	}
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	return os.Getenv("PROFILE")
}

// UserLocalDir returns the host's "local" (non-roaming) user data root:
// %LOCALAPPDATA% on Windows, $XDG_DATA_HOME (falling back to ~/.local/share)
// elsewhere.
func UserLocalDir() string {
	if runtime.GOOS == "windows" {
		if v := os.Getenv("LOCALAPPDATA"); v != "" {
			return v
		}
		log.Warnf("%v: LOCALAPPDATA", ErrEnvVarMissing)
		return ""
	}
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	return filepath.Join(UserHome(), ".local", "share")
}

// UserRoamingDir returns the host's "roaming" user config root:
// %APPDATA% on Windows, $XDG_CONFIG_HOME (falling back to ~/.config)
// elsewhere.
func UserRoamingDir() string {
	if runtime.GOOS == "windows" {
		if v := os.Getenv("APPDATA"); v != "" {
			return v
		}
		log.Warnf("%v: APPDATA", ErrEnvVarMissing)
		return ""
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	return filepath.Join(UserHome(), ".config")
}

// DataDir is UserLocalDir with the fixed "CMakeTools" segment appended.
func DataDir() string {
	return filepath.Join(UserLocalDir(), dataDirName)
}

// RoamingDataDir is UserRoamingDir with the fixed "CMakeTools" segment
// appended.
func RoamingDataDir() string {
	return filepath.Join(UserRoamingDir(), dataDirName)
}

// TmpDir returns the host temp directory: %TEMP% on Windows, /tmp elsewhere.
// On Windows it first forces os.TempDir()'s resolution to a long path, since
// a short "8.3" TEMP path can confuse vendor activation tools that try to
// relativize paths under it.
func TmpDir() string {
	if runtime.GOOS == "windows" {
		fileutil.ForceLongPathTempDir()
		if v := os.Getenv("TEMP"); v != "" {
			return v
		}
		log.Warnf("%v: TEMP", ErrEnvVarMissing)
		return ""
	}
	return "/tmp"
}

// pathExts returns the ordered list of extensions Which tries on Windows,
// including the empty extension so an already-extensioned name still
// matches.
func pathExts() []string {
	exts := []string{""}
	raw := os.Getenv("PATHEXT")
	if raw == "" {
		raw = ".COM;.EXE;.BAT;.CMD"
	}
	for _, e := range strings.Split(raw, ";") {
		if e != "" {
			exts = append(exts, e)
		}
	}
	return exts
}

// Which searches PATH for the first entry whose basename equals name,
// expanding PATHEXT on Windows. It returns "" if name is not found, mirroring
// POSIX which / Windows where semantics without raising on a miss.
func Which(name string) string {
	pathVar := os.Getenv("PATH")
	sep := string(os.PathListSeparator)
	for _, dir := range strings.Split(pathVar, sep) {
		if dir == "" {
			continue
		}
		if runtime.GOOS == "windows" {
			for _, ext := range pathExts() {
				candidate := filepath.Join(dir, name+ext)
				if exists, _ := fileutil.Exists(candidate); exists && !fileutil.IsDir(candidate) {
					return candidate
				}
			}
			continue
		}
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() && isExecutable(info) {
			return candidate
		}
	}
	return ""
}

func isExecutable(info os.FileInfo) bool {
	return info.Mode()&0111 != 0
}

// CMakeResolution is the result of ResolveCMake: the chosen cmake path and,
// when the pick came from a bundled vendor IDE tree, the sibling Ninja
// directory. Threading this through the return value (rather than a
// process-global "last Ninja dir" slot) keeps concurrent resolutions from
// interfering with each other.
type CMakeResolution struct {
	CMakePath    string
	BundledNinja string
}

// VendorInstallation is the subset of the external installation enumerator's
// record this package needs.
type VendorInstallation struct {
	InstallationPath string
}

// ResolveCMake takes rawPath as given; it performs no placeholder expansion
// itself, so the caller passes a path it has already expanded. If rawPath is
// empty, "auto" or "cmake", it searches PATH and then,
// on Windows, a fixed list of Program Files locations and every given
// vendor installation's bundled CMake path (spec §4.A).
func ResolveCMake(rawPath string, installations []VendorInstallation) *CMakeResolution {
	if rawPath != "" && rawPath != "auto" && rawPath != "cmake" {
		return &CMakeResolution{CMakePath: rawPath}
	}

	if p := Which("cmake"); p != "" {
		return &CMakeResolution{CMakePath: p}
	}

	if runtime.GOOS != "windows" {
		return nil
	}

	candidates := []string{}
	if pf := os.Getenv("ProgramFiles"); pf != "" {
		candidates = append(candidates, filepath.Join(pf, "CMake", "bin", "cmake.exe"))
	}
	if pf86 := os.Getenv("ProgramFiles(x86)"); pf86 != "" {
		candidates = append(candidates, filepath.Join(pf86, "CMake", "bin", "cmake.exe"))
	}
	for _, c := range candidates {
		if exists, _ := fileutil.Exists(c); exists && !fileutil.IsDir(c) {
			return &CMakeResolution{CMakePath: c}
		}
	}

	for _, inst := range installations {
		bundled := filepath.Join(inst.InstallationPath, "Common7", "IDE", "CommonExtensions", "Microsoft", "CMake", "CMake", "bin", "cmake.exe")
		if exists, _ := fileutil.Exists(bundled); !exists || fileutil.IsDir(bundled) {
			continue
		}
		res := &CMakeResolution{CMakePath: bundled}
		ninja := filepath.Join(inst.InstallationPath, "Common7", "IDE", "CommonExtensions", "Microsoft", "CMake", "Ninja", "ninja.exe")
		if exists, _ := fileutil.Exists(ninja); exists && !fileutil.IsDir(ninja) {
			res.BundledNinja = filepath.Dir(ninja)
		}
		return res
	}

	return nil
}

// ResolveCTest returns the ctest binary expected to sit alongside cmakePath:
// its sibling "ctest" (with exe suffix inherited from cmakePath's own
// extension) if it exists and is executable, else the bare name "ctest" for
// the caller to resolve via PATH at invocation time.
func ResolveCTest(cmakePath string) string {
	if cmakePath == "" {
		return "ctest"
	}
	dir := filepath.Dir(cmakePath)
	ext := filepath.Ext(cmakePath)
	sibling := filepath.Join(dir, "ctest"+ext)
	info, err := os.Stat(sibling)
	if err != nil {
		return "ctest"
	}
	if info.IsDir() {
		return "ctest"
	}
	if runtime.GOOS != "windows" && !isExecutable(info) {
		return "ctest"
	}
	return sibling
}

// UserKitsFile is the primary per-user kits document path.
func UserKitsFile() string {
	return filepath.Join(DataDir(), "cmake-tools-kits.json")
}

// LegacyUserKitsFile is the pre-rename location still consulted for
// backward compatibility: roaming on Windows, the same data dir elsewhere.
func LegacyUserKitsFile() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(RoamingDataDir(), "cmake-tools.json")
	}
	return filepath.Join(DataDir(), "cmake-tools.json")
}

// WorkspaceKitsFile is the per-workspace kits document path, relative to
// the workspace root passed in by the caller.
func WorkspaceKitsFile(workspaceRoot string) string {
	return filepath.Join(workspaceRoot, ".vscode", "cmake-kits.json")
}

// ErrEnvVarMissing is the sentinel the Windows directory helpers log (it is
// never returned) when a required environment variable is unset or empty;
// they warn and return "" rather than abort (spec §4.A: "missing environment
// variables on Windows are reported as warnings, never raised as failures").
var ErrEnvVarMissing = errors.New("environment variable is not set")
