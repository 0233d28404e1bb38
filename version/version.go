package version

import "fmt"

// Set at build time with
//   -ldflags "-X github.com/thetatoken/lumina/version.GitHash=... -X github.com/thetatoken/lumina/version.Timestamp=..."
var (
	Version   = "1.0.0"
	GitHash   = "unknown"
	Timestamp = "unknown"
)

// String returns the version line printed by the version command.
func String() string {
	return fmt.Sprintf("Version %v %s\nBuilt at %s", Version, GitHash, Timestamp)
}
