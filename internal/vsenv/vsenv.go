// Package vsenv synthesizes a throwaway batch script that activates a
// vendor (Visual Studio) developer environment, executes it, and parses the
// resulting environment back into a VariableMap (spec §4.D).
package vsenv

import (
	"bytes"
	"context"
	cryptorand "crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/semver"
	"github.com/alessio/shellescape"
	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"

	"github.com/cmake-tools/kitscan/internal/kit"
	"github.com/cmake-tools/kitscan/pkg/log"
	"github.com/cmake-tools/kitscan/util/envutil"
	"github.com/cmake-tools/kitscan/util/executil"
	"github.com/cmake-tools/kitscan/util/fileutil"
)

// activationTimeout bounds a single vcvarsall.bat invocation.
const activationTimeout = 30 * time.Second

// Whitelist is the set of environment variables captured from the vendor
// activation transcript (spec §6), compared case-insensitively on Windows.
var Whitelist = []string{
	"CL", "_CL_", "INCLUDE", "LIBPATH", "LINK", "_LINK_", "LIB", "PATH", "TMP",
	"FRAMEWORKDIR", "FRAMEWORKDIR64", "FRAMEWORKVERSION", "FRAMEWORKVERSION64",
	"UCRTCONTEXTROOT", "UCRTVERSION", "UNIVERSALCRTSDKDIR", "VCINSTALLDIR",
	"VCTARGETSPATH", "WINDOWSLIBPATH", "WINDOWSSDKDIR", "WINDOWSSDKLIBVERSION",
	"WINDOWSSDKVERSION", "VISUALSTUDIOVERSION",
}

// Installation is the subset of the external vendor-installation enumerator
// record that activation needs.
type Installation struct {
	InstallationPath    string
	InstallationVersion string // dotted, e.g. "16.11.2"
	InstanceID          string
}

// MajorVersion parses InstallationVersion (dotted, e.g. "16.11.2") as a
// semver and returns its major component, or 0 if it doesn't parse (an
// installation record the enumerator itself produced is expected to always
// parse; 0 falls back to the pre-2017 vcvarsall.bat layout, which is also
// the conservative choice).
func (i Installation) MajorVersion() int {
	v, err := semver.NewVersion(i.InstallationVersion)
	if err != nil {
		return 0
	}
	return int(v.Major())
}

var activationLineRegex = regexp.MustCompile(`^(\w+)\s*:= ?(.*)$`)

// Activate runs the activation entry point for installation under arch and
// returns the resulting whitelisted environment. A nil result with a nil
// error is the "activation failed" outcome of spec §4.D/§7 (ActivationFailed):
// no output, or a missing/empty INCLUDE. tmpDir is the Path Resolver's
// temporary directory; bundledNinjaDir, if non-empty, is appended to PATH
// when not already present.
func Activate(ctx context.Context, tmpDir string, installation Installation, arch string, bundledNinjaDir string) (*envutil.VariableMap, error) {
	entryPoint := activationEntryPoint(installation)

	suffix := randomSuffix()
	scriptPath := filepath.Join(tmpDir, "cmake-tools-vsenv-"+suffix+".bat")
	envPath := filepath.Join(tmpDir, "cmake-tools-vsenv-"+suffix+".env")
	defer fileutil.Cleanup(scriptPath)
	defer fileutil.Cleanup(envPath)

	script := buildScript(installation, entryPoint, arch, envPath)
	if err := os.WriteFile(scriptPath, []byte(script), 0o700); err != nil {
		return nil, errors.Wrapf(err, "failed to write activation script %s", scriptPath)
	}
	// os.WriteFile's mode bits are ignored for execute permission by
	// Windows ACLs; grant it explicitly so cmd.exe can run the script.
	if err := grantExecute(scriptPath); err != nil {
		return nil, errors.Wrapf(err, "failed to grant execute access to activation script %s", scriptPath)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, activationTimeout)
	defer cancel()

	cmd := executil.CommandContext(ctx, "cmd.exe", "/c", scriptPath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	log.Debugf("Command: %s", envutil.QuotedCommandWithEnv(cmd.Args, nil))
	if err := cmd.Run(); err != nil {
		log.Warnf("%v: activation script for %s (%s) failed: %v: %s", kit.ErrActivationFailed, installation.InstanceID, arch, err, stderr.String())
		return nil, nil
	}

	raw, err := os.ReadFile(envPath)
	if err != nil || len(raw) == 0 {
		log.Warnf("%v: activation of %s (%s) produced no environment", kit.ErrActivationFailed, installation.InstanceID, arch)
		return nil, nil
	}

	decoded, err := decodeOEM(raw)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode activation output")
	}

	vars := parseEnvFile(decoded, scriptPath)
	include, ok := vars.Get("INCLUDE")
	if !ok || include == "" {
		log.Warnf("%v: activation of %s (%s) produced no usable INCLUDE", kit.ErrActivationFailed, installation.InstanceID, arch)
		return nil, nil
	}

	postProcess(vars, installation, bundledNinjaDir)
	return vars, nil
}

func activationEntryPoint(installation Installation) string {
	if installation.MajorVersion() < 15 {
		return filepath.Join(installation.InstallationPath, "VC", "vcvarsall.bat")
	}
	return filepath.Join(installation.InstallationPath, "VC", "Auxiliary", "Build", "vcvarsall.bat")
}

func buildScript(installation Installation, entryPoint, arch, envPath string) string {
	var b strings.Builder
	b.WriteString("@echo off\r\n")
	b.WriteString("cd /d \"%~dp0\"\r\n")
	b.WriteString(fmt.Sprintf("set VS%d0COMNTOOLS=%s\r\n", installation.MajorVersion(), filepath.Join(installation.InstallationPath, "Common7", "Tools")))
	b.WriteString(fmt.Sprintf("call %s %s\r\n", shellescape.Quote(entryPoint), arch))
	b.WriteString("if errorlevel 1 exit /b 1\r\n")
	b.WriteString("cd /d %~d0\\\r\n")
	for _, name := range Whitelist {
		b.WriteString(fmt.Sprintf(">>%s echo %s := %%%s%%\r\n", shellescape.Quote(envPath), name, name))
	}
	return b.String()
}

func decodeOEM(raw []byte) ([]byte, error) {
	decoder := charmap.CodePage437.NewDecoder()
	out, err := decoder.Bytes(raw)
	if err != nil {
		return raw, nil
	}
	return out, nil
}

func parseEnvFile(decoded []byte, scriptPath string) *envutil.VariableMap {
	vars := envutil.NewVariableMap()
	vars.CaseInsensitive = true
	for _, line := range strings.Split(string(decoded), "\n") {
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}
		m := activationLineRegex.FindStringSubmatch(line)
		if m == nil {
			log.Warnf("%s: ignoring malformed activation line: %q", scriptPath, line)
			continue
		}
		vars.Set(m[1], m[2])
	}
	return vars
}

func postProcess(vars *envutil.VariableMap, installation Installation, bundledNinjaDir string) {
	if vsVersion, ok := vars.Get("VISUALSTUDIOVERSION"); ok && vsVersion != "" {
		commonDir := filepath.Join(installation.InstallationPath, "Common7", "Tools")
		key := "VS" + strings.ReplaceAll(vsVersion, ".", "") + "COMNTOOLS"
		vars.Set(key, commonDir)
	}

	vars.Set("CC", "cl.exe")
	vars.Set("CXX", "cl.exe")

	// The captured PATH is always a Windows ";"-separated list, whatever the
	// host's own separator is.
	if bundledNinjaDir != "" {
		path, _ := vars.Get("PATH")
		for _, entry := range strings.Split(path, ";") {
			if entry == bundledNinjaDir {
				return
			}
		}
		if path != "" {
			path += ";"
		}
		vars.Set("PATH", path+bundledNinjaDir)
	}
}

func randomSuffix() string {
	b := make([]byte, 8)
	if _, err := cryptorand.Read(b); err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	const hex = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hex[c>>4]
		out[i*2+1] = hex[c&0xf]
	}
	return string(out)
}
