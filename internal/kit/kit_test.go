package kit

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateRequiresName(t *testing.T) {
	k := &Kit{Compilers: map[string]string{"C": "/usr/bin/gcc"}}
	require.Error(t, k.Validate())
}

func TestValidateRequiresAtLeastOneToolchainSource(t *testing.T) {
	k := &Kit{Name: "empty"}
	require.Error(t, k.Validate())
}

func TestValidateAcceptsCompilersOnly(t *testing.T) {
	k := &Kit{Name: "GCC", Compilers: map[string]string{"C": "/usr/bin/gcc"}}
	require.NoError(t, k.Validate())
}

func TestValidateRequiresArchitectureWithVisualStudio(t *testing.T) {
	k := &Kit{Name: "VS", VisualStudio: "instance-1"}
	require.Error(t, k.Validate())

	k.VisualStudioArchitecture = "not-a-real-arch"
	require.Error(t, k.Validate())

	k.VisualStudioArchitecture = ArchAmd64
	require.NoError(t, k.Validate())
}

func TestValidateRejectsArchitectureWithoutVisualStudio(t *testing.T) {
	k := &Kit{Name: "weird", ToolchainFile: "/toolchain.cmake", VisualStudioArchitecture: ArchAmd64}
	require.Error(t, k.Validate())
}

func TestChangeNeedsCleanNilOldNeverRequiresCleanup(t *testing.T) {
	newKit := &Kit{Name: "a", Compilers: map[string]string{"C": "/usr/bin/gcc"}}
	require.False(t, ChangeNeedsClean(newKit, nil))
}

func TestChangeNeedsCleanIgnoresNonMaterialFields(t *testing.T) {
	old := &Kit{Name: "a", Compilers: map[string]string{"C": "/usr/bin/gcc"}}
	newKit := &Kit{
		Name:          "a",
		Compilers:     map[string]string{"C": "/usr/bin/gcc"},
		CMakeSettings: map[string]string{"CMAKE_BUILD_TYPE": "Debug"},
	}
	require.False(t, ChangeNeedsClean(newKit, old))
}

func TestChangeNeedsCleanDetectsCompilerChange(t *testing.T) {
	old := &Kit{Name: "a", Compilers: map[string]string{"C": "/usr/bin/gcc"}}
	newKit := &Kit{Name: "a", Compilers: map[string]string{"C": "/usr/bin/gcc-10"}}
	require.True(t, ChangeNeedsClean(newKit, old))
}

func TestChangeNeedsCleanDetectsPreferredGeneratorChange(t *testing.T) {
	old := &Kit{Name: "a", Compilers: map[string]string{"C": "/usr/bin/gcc"}, PreferredGenerator: &PreferredGenerator{Name: "Ninja"}}
	newKit := &Kit{Name: "a", Compilers: map[string]string{"C": "/usr/bin/gcc"}, PreferredGenerator: &PreferredGenerator{Name: "Unix Makefiles"}}
	require.True(t, ChangeNeedsClean(newKit, old))
}

func TestChangeNeedsCleanIsFalseForIdenticalKit(t *testing.T) {
	k := &Kit{Name: "a", Compilers: map[string]string{"C": "/usr/bin/gcc"}, VisualStudio: "", ToolchainFile: ""}
	require.False(t, ChangeNeedsClean(k, k))
}
