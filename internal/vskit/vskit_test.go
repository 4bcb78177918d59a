package vskit

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cmake-tools/kitscan/internal/kit"
	"github.com/cmake-tools/kitscan/internal/vsenv"
)

func TestDisplayNamePrefersDisplayNamePlusChannelSuffix(t *testing.T) {
	inst := vsenv.Installation{InstanceID: "abc123"}
	name := displayName(inst, DisplayInfo{DisplayName: "Visual Studio Community 2019", ChannelID: "VisualStudio.16.Release"})
	require.Equal(t, "Visual Studio Community 2019 Release", name)
}

func TestDisplayNameFallsBackToDisplayNameThenInstanceID(t *testing.T) {
	inst := vsenv.Installation{InstanceID: "abc123"}
	require.Equal(t, "VS", displayName(inst, DisplayInfo{DisplayName: "VS"}))
	require.Equal(t, "abc123", displayName(inst, DisplayInfo{}))
}

func TestMajorVersionParsesDottedVersion(t *testing.T) {
	require.Equal(t, 16, vsenv.Installation{InstallationVersion: "16.11.2"}.MajorVersion())
	require.Equal(t, 14, vsenv.Installation{InstallationVersion: "14.0"}.MajorVersion())
}

func TestGeneratorNameTableMatchesSpec(t *testing.T) {
	require.Equal(t, "Visual Studio 16 2019", generatorNameByMajorVersion[16])
	require.Equal(t, "Visual Studio 15 2017", generatorNameByMajorVersion[15])
	_, ok := generatorNameByMajorVersion[17]
	require.False(t, ok)
}

func TestClangCLSearchDirsOrderAndShape(t *testing.T) {
	installations := []vsenv.Installation{{InstallationPath: `C:\VS16`}}
	dirs := ClangCLSearchDirs(`C:\LLVM`, `C:\Program Files`, `C:\Program Files (x86)`, []string{`C:\a`, `C:\b`}, installations)
	require.Equal(t, []string{
		filepath.Join(`C:\LLVM`, "bin"),
		filepath.Join(`C:\Program Files`, "LLVM", "bin"),
		filepath.Join(`C:\Program Files (x86)`, "LLVM", "bin"),
		`C:\a`,
		`C:\b`,
		filepath.Join(`C:\VS16`, "VC", "Tools", "Llvm", "bin"),
	}, dirs)
}

func TestArchitecturesMatchSpecList(t *testing.T) {
	require.Equal(t, []kit.Architecture{
		kit.ArchX86, kit.ArchAmd64, kit.ArchX86Amd64, kit.ArchX86Arm, kit.ArchAmd64Arm, kit.ArchAmd64X86,
	}, Architectures)
}
