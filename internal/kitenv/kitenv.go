// Package kitenv composes the effective environment for a Kit: host
// environment, kit-declared overrides, and (for vendor kits) the captured
// SDK activation environment, with deterministic precedence (spec §4.H).
package kitenv

import (
	"os"
	"runtime"
	"strings"

	"github.com/cmake-tools/kitscan/internal/kit"
	"github.com/cmake-tools/kitscan/util/envutil"
)

// ExpandFunc expands placeholders in a string given a set of variables, the
// external collaborator of spec §6 (`expand(template, vars) -> string`).
type ExpandFunc func(template string) string

// VendorEnvLookup retrieves the cached/extracted vendor SDK environment for
// a kit that sets VisualStudio + VisualStudioArchitecture. Returning a nil
// map means no vendor environment is available (activation wasn't run or
// failed) and step 3 of spec §4.H is skipped.
type VendorEnvLookup func(instanceID string, arch kit.Architecture) *envutil.VariableMap

// EffectiveEnv computes the effective environment for k per spec §4.H:
// host env, then kit.EnvironmentVariables (optionally expanded), then the
// vendor SDK map uppercased on Windows, then the CMT_MINGW_PATH PATH patch.
func EffectiveEnv(k *kit.Kit, expand ExpandFunc, vendorEnv VendorEnvLookup) *envutil.VariableMap {
	env := envutil.VariableMapFromEnv(os.Environ())

	for key, value := range k.EnvironmentVariables {
		if expand != nil {
			value = expand(value)
		}
		env.Set(key, value)
	}

	if k.VisualStudio != "" && k.VisualStudioArchitecture != "" && vendorEnv != nil {
		if vsMap := vendorEnv(k.VisualStudio, k.VisualStudioArchitecture); vsMap != nil {
			merged := vsMap
			if runtime.GOOS == "windows" {
				merged = vsMap.UppercaseKeys()
				env = env.UppercaseKeys()
			}
			env.Merge(merged)
		}
	}

	patchMinGWPath(env)

	return env
}

// patchMinGWPath implements spec §4.H step 4: if CMT_MINGW_PATH ended up in
// the merged map, append it to whichever of PATH/Path is present, preferring
// PATH if both exist.
func patchMinGWPath(env *envutil.VariableMap) {
	mingwPath, ok := env.Get("CMT_MINGW_PATH")
	if !ok || mingwPath == "" {
		return
	}

	for _, key := range []string{"PATH", "Path"} {
		if value, ok := env.Get(key); ok {
			env.Set(key, envutil.AppendToPathList(value, mingwPath))
			return
		}
	}
}

// FindCl locates the cl.exe binary on env's PATH using PATHEXT-style
// extension expansion (spec §4.H `find_cl`), returning "" on a miss.
func FindCl(env *envutil.VariableMap) string {
	pathVar, ok := env.Get("PATH")
	if !ok {
		pathVar, ok = env.Get("Path")
		if !ok {
			return ""
		}
	}

	exts := []string{""}
	if pathExt, ok := env.Get("PATHEXT"); ok && pathExt != "" {
		exts = append(exts, strings.Split(pathExt, ";")...)
	} else {
		exts = append(exts, ".COM", ".EXE", ".BAT", ".CMD")
	}

	for _, dir := range strings.Split(pathVar, string(os.PathListSeparator)) {
		if dir == "" {
			continue
		}
		for _, ext := range exts {
			candidate := dir + string(os.PathSeparator) + "cl" + ext
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate
			}
		}
	}
	return ""
}
