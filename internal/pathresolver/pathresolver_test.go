package pathresolver

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUserHomeWindowsDefaults(t *testing.T) {
	if runtime.GOOS != "windows" {
		t.Skip("HOMEDRIVE/HOMEPATH semantics only apply on windows")
	}
	t.Setenv("HOMEDRIVE", "")
	t.Setenv("HOMEPATH", "")
	require.Equal(t, `C:\Users\Public`, UserHome())
}

func TestDataDirAppendsFixedSegment(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/opt/xdg-data")
	if runtime.GOOS == "windows" {
		t.Setenv("LOCALAPPDATA", `C:\Users\me\AppData\Local`)
		require.Equal(t, filepath.Join(`C:\Users\me\AppData\Local`, "CMakeTools"), DataDir())
		return
	}
	require.Equal(t, filepath.Join("/opt/xdg-data", "CMakeTools"), DataDir())
}

func TestWhichMissingReturnsEmpty(t *testing.T) {
	t.Setenv("PATH", "/does/not/exist")
	require.Equal(t, "", Which("definitely-not-a-real-binary"))
}

func TestResolveCMakeExplicitPathPassesThrough(t *testing.T) {
	res := ResolveCMake("/usr/local/bin/cmake", nil)
	require.NotNil(t, res)
	require.Equal(t, "/usr/local/bin/cmake", res.CMakePath)
	require.Equal(t, "", res.BundledNinja)
}

func TestResolveCMakeAutoWithNoInstallationsMissesOnNonWindows(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("covers the non-windows auto-miss branch")
	}
	t.Setenv("PATH", "/does/not/exist")
	require.Nil(t, ResolveCMake("auto", nil))
}

func TestResolveCTestFallsBackToBareName(t *testing.T) {
	require.Equal(t, "ctest", ResolveCTest(""))
	require.Equal(t, "ctest", ResolveCTest("/path/that/does/not/exist/cmake"))
}

func TestUserKitsFileNameIsFixed(t *testing.T) {
	require.Equal(t, "cmake-tools-kits.json", filepath.Base(UserKitsFile()))
}

func TestWorkspaceKitsFile(t *testing.T) {
	require.Equal(t, filepath.Join("/ws", ".vscode", "cmake-kits.json"), WorkspaceKitsFile("/ws"))
}
