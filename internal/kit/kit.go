// Package kit defines the Kit record (spec §3), its invariants, and the
// document-level persistence and diff operations built on top of it
// (spec §4.G).
package kit

import (
	"sort"

	"github.com/pkg/errors"
)

// Architecture is one of the enumerated vendor SDK architecture tokens
// (spec §6).
type Architecture string

const (
	ArchX86       Architecture = "x86"
	ArchAmd64     Architecture = "amd64"
	ArchX86Amd64  Architecture = "x86_amd64"
	ArchX86Arm    Architecture = "x86_arm"
	ArchAmd64Arm  Architecture = "amd64_arm"
	ArchAmd64X86  Architecture = "amd64_x86"
	ArchArm       Architecture = "arm"
)

var validArchitectures = map[Architecture]bool{
	ArchX86:      true,
	ArchAmd64:    true,
	ArchX86Amd64: true,
	ArchX86Arm:   true,
	ArchAmd64Arm: true,
	ArchAmd64X86: true,
	ArchArm:      true,
}

// IsValidArchitecture reports whether a is one of the enumerated tokens.
func IsValidArchitecture(a Architecture) bool {
	return validArchitectures[a]
}

// GeneratorPlatform maps an architecture to the preferredGenerator.platform
// value, per the "Architecture -> generator platform" table in spec §6.
// The second return value is false when the architecture has no platform
// mapping (the generator is left to infer it).
func GeneratorPlatform(a Architecture) (string, bool) {
	switch a {
	case ArchAmd64:
		return "x64", true
	case ArchArm:
		return "ARM", true
	case ArchAmd64Arm:
		return "ARM", true
	default:
		return "", false
	}
}

// PreferredGenerator advises the external build-generator driver which
// generator to default to.
type PreferredGenerator struct {
	Name     string `json:"name"`
	Toolset  string `json:"toolset,omitempty"`
	Platform string `json:"platform,omitempty"`
}

// Kit is the central record described in spec §3.
type Kit struct {
	Name                     string              `json:"name"`
	Compilers                map[string]string   `json:"compilers,omitempty"`
	PreferredGenerator       *PreferredGenerator `json:"preferredGenerator,omitempty"`
	CMakeSettings            map[string]string   `json:"cmakeSettings,omitempty"`
	EnvironmentVariables     map[string]string   `json:"environmentVariables,omitempty"`
	VisualStudio             string              `json:"visualStudio,omitempty"`
	VisualStudioArchitecture Architecture        `json:"visualStudioArchitecture,omitempty"`
	ToolchainFile            string              `json:"toolchainFile,omitempty"`
	Keep                     bool                `json:"keep,omitempty"`
}

// Validate checks the structural invariants of spec §3 that are not (or not
// conveniently) expressible in the JSON schema: the "at least one of
// compilers/visualStudio/toolchainFile" rule and the
// visualStudio<->visualStudioArchitecture dependency.
func (k *Kit) Validate() error {
	if k.Name == "" {
		return errors.New("kit name must not be empty")
	}

	hasCompilers := len(k.Compilers) > 0
	hasVisualStudio := k.VisualStudio != ""
	hasToolchainFile := k.ToolchainFile != ""

	if !hasCompilers && !hasVisualStudio && !hasToolchainFile {
		return errors.Errorf("kit %q must set at least one of compilers, visualStudio, or toolchainFile", k.Name)
	}

	if hasVisualStudio {
		if k.VisualStudioArchitecture == "" {
			return errors.Errorf("kit %q sets visualStudio but not visualStudioArchitecture", k.Name)
		}
		if !IsValidArchitecture(k.VisualStudioArchitecture) {
			return errors.Errorf("kit %q has unknown visualStudioArchitecture %q", k.Name, k.VisualStudioArchitecture)
		}
	} else if k.VisualStudioArchitecture != "" {
		return errors.Errorf("kit %q sets visualStudioArchitecture without visualStudio", k.Name)
	}

	return nil
}

// materialTuple is the subset of a kit's attributes whose change
// invalidates previously configured build state (spec §4.G, §8 scenario 5).
type materialTuple struct {
	Compilers                map[string]string
	VisualStudio             string
	VisualStudioArchitecture Architecture
	ToolchainFile            string
	PreferredGeneratorName   string
}

func (k *Kit) materialTuple() materialTuple {
	var generatorName string
	if k.PreferredGenerator != nil {
		generatorName = k.PreferredGenerator.Name
	}
	return materialTuple{
		Compilers:                k.Compilers,
		VisualStudio:             k.VisualStudio,
		VisualStudioArchitecture: k.VisualStudioArchitecture,
		ToolchainFile:            k.ToolchainFile,
		PreferredGeneratorName:   generatorName,
	}
}

func mapsEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}

// ChangeNeedsClean reports whether switching the active kit from old to
// newKit should invalidate previously configured build state (spec §4.G).
// A nil old kit (first selection) never requires cleanup.
func ChangeNeedsClean(newKit, old *Kit) bool {
	if old == nil {
		return false
	}
	a, b := newKit.materialTuple(), old.materialTuple()
	return !mapsEqual(a.Compilers, b.Compilers) ||
		a.VisualStudio != b.VisualStudio ||
		a.VisualStudioArchitecture != b.VisualStudioArchitecture ||
		a.ToolchainFile != b.ToolchainFile ||
		a.PreferredGeneratorName != b.PreferredGeneratorName
}

// SortByName sorts kits in place by name, giving deterministic output for
// diagnostics/tests that don't care about aggregator order.
func SortByName(kits []*Kit) {
	sort.Slice(kits, func(i, j int) bool { return kits[i].Name < kits[j].Name })
}
