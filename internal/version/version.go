package version

// Build information set by ldflags
var (
	Version = "dev"     // -X github.com/GingerAvalanche/ukmm/internal/version.Version={{.Version}}
	Commit  = "unknown" // -X github.com/GingerAvalanche/ukmm/internal/version.Commit={{.Commit}}
	Date    = "unknown" // -X github.com/GingerAvalanche/ukmm/internal/version.Date={{.Date}}
)
