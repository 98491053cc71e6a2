package version

import "fmt"

// Injected at build time via -ldflags "-X irscout/pkg/version.Version=..."
var (
	Version       = "dev"
	GitCommit     = "unknown"
	BuildDate     = "unknown"
	ComponentName = "irscout"
)

// Info represents version information for the binary
type Info struct {
	Version       string `json:"version" yaml:"version"`
	GitCommit     string `json:"git_commit" yaml:"git_commit"`
	BuildDate     string `json:"build_date" yaml:"build_date"`
	ComponentName string `json:"component_name,omitempty" yaml:"component_name,omitempty"`
}

// GetInfo returns version information as a struct
func GetInfo() Info {
	return Info{
		Version:       Version,
		GitCommit:     GitCommit,
		BuildDate:     BuildDate,
		ComponentName: ComponentName,
	}
}

// GetShortCommit returns the short git commit hash (first 7 characters)
func GetShortCommit() string {
	if len(GitCommit) >= 7 {
		return GitCommit[:7]
	}
	return GitCommit
}

// String renders a one-line version banner.
func String() string {
	return fmt.Sprintf("%s %s (%s, built %s)", ComponentName, Version, GetShortCommit(), BuildDate)
}
