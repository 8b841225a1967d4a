package types

import "fmt"

// Platform identifies which edition of the game tree is being managed.
type Platform string

const (
	PlatformWiiU   Platform = "wiiu"
	PlatformSwitch Platform = "switch"
)

// ParsePlatform converts a settings string into a Platform.
func ParsePlatform(s string) (Platform, error) {
	switch s {
	case "wiiu":
		return PlatformWiiU, nil
	case "switch":
		return PlatformSwitch, nil
	default:
		return "", fmt.Errorf("unknown platform %q", s)
	}
}

// Prefixes returns the content and downloadable-content directory
// prefixes for the platform, relative to a deployment root.
func (p Platform) Prefixes() (content, aoc string) {
	switch p {
	case PlatformSwitch:
		return "01007EF00011E000/romfs", "01007EF00011F001/romfs"
	default:
		return "content", "aoc/0010"
	}
}

// DeployMethod selects the physical strategy used to apply a pending log.
type DeployMethod string

const (
	DeployCopy     DeployMethod = "copy"
	DeployHardLink DeployMethod = "hardlink"
	DeploySymlink  DeployMethod = "symlink"
)

// ParseDeployMethod converts a settings string into a DeployMethod.
func ParseDeployMethod(s string) (DeployMethod, error) {
	switch s {
	case "copy":
		return DeployCopy, nil
	case "hardlink", "hard_link":
		return DeployHardLink, nil
	case "symlink":
		return DeploySymlink, nil
	default:
		return "", fmt.Errorf("unknown deploy method %q", s)
	}
}
