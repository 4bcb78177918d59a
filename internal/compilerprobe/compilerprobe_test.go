package compilerprobe

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cases := map[string]Family{
		"gcc":                "GCC",
		"gcc-9":               "GCC",
		"x86_64-linux-gnu-gcc-11": "GCC",
		"gcc.exe":             "GCC",
		"clang":               "CLANG",
		"clang-14":            "CLANG",
		"clang.exe":           "CLANG",
	}
	for bin, want := range cases {
		family, ok := classify(bin)
		require.True(t, ok, bin)
		require.Equal(t, want, family, bin)
	}

	_, ok := classify("cc")
	require.False(t, ok)
	_, ok = classify("notgcc")
	require.False(t, ok)
}

func TestParseOutputGCC(t *testing.T) {
	out := "Using built-in specs.\n" +
		"gcc version 9.4.0 (Ubuntu 9.4.0-1ubuntu1~20.04.1) \n"
	identity, ok := parseOutput(GCC, out)
	require.True(t, ok)
	require.Equal(t, "9.4.0", identity.Version)
}

// TestParseOutputGCCIgnoresOwnTargetLine guards against scenario 1
// (/usr/bin/gcc-9): real gcc -v output always includes a Target: line
// describing the compiler's own build triple, not a cross-compilation
// target, so parseOutput must never surface it for GCC.
func TestParseOutputGCCIgnoresOwnTargetLine(t *testing.T) {
	out := "Using built-in specs.\n" +
		"Target: x86_64-linux-gnu\n" +
		"Thread model: posix\n" +
		"InstalledDir: /usr/bin\n" +
		"gcc version 9.4.0 (Ubuntu 9.4.0-1ubuntu1~20.04.1) \n"
	identity, ok := parseOutput(GCC, out)
	require.True(t, ok)
	require.Equal(t, "9.4.0", identity.Version)
	require.Empty(t, identity.Target)
	require.Empty(t, identity.ThreadModel)
	require.Empty(t, identity.InstalledDir)
}

func TestGCCTriple(t *testing.T) {
	require.Equal(t, "", gccTriple("gcc"))
	require.Equal(t, "", gccTriple("gcc-9"))
	require.Equal(t, "", gccTriple("/usr/bin/gcc-9"))
	require.Equal(t, "x86_64-linux-gnu", gccTriple("x86_64-linux-gnu-gcc-11"))
	require.Equal(t, "arm-none-eabi", gccTriple("arm-none-eabi-gcc.exe"))
}

func TestParseOutputClang(t *testing.T) {
	out := "clang version 14.0.0-1ubuntu1\n" +
		"Target: x86_64-pc-linux-gnu\n" +
		"Thread model: posix\n" +
		"InstalledDir: /usr/bin\n"
	identity, ok := parseOutput(Clang, out)
	require.True(t, ok)
	require.Equal(t, "14.0.0", identity.Version)
	require.Equal(t, "x86_64-pc-linux-gnu", identity.Target)
	require.Equal(t, "posix", identity.ThreadModel)
	require.Equal(t, "/usr/bin", identity.InstalledDir)
}

// parseOutput itself accepts an MSVC-targeting Clang and surfaces its
// Target; Probe rejects the driver based on that value.
func TestParseOutputClangTargetingMSVCSurfacesTarget(t *testing.T) {
	out := "clang version 14.0.0\nTarget: x86_64-pc-windows-msvc\n"
	identity, ok := parseOutput(Clang, out)
	require.True(t, ok)
	require.Contains(t, identity.Target, "msvc")
}

func TestParseOutputUnrecognized(t *testing.T) {
	_, ok := parseOutput(GCC, "not a compiler at all")
	require.False(t, ok)
}

func TestName(t *testing.T) {
	require.Equal(t, "Clang 14.0.0", name(Clang, Identity{Version: "14.0.0"}, ""))
	require.Equal(t, "GCC 9.4.0", name(GCC, Identity{Version: "9.4.0"}, ""))
	// A real gcc -v Target: line must not leak into the name even if present.
	require.Equal(t, "GCC 9.4.0", name(GCC, Identity{Version: "9.4.0", Target: "x86_64-linux-gnu"}, ""))
	require.Equal(t, "GCC for x86_64-linux-gnu 9.4.0", name(GCC, Identity{Version: "9.4.0"}, "x86_64-linux-gnu"))
}
