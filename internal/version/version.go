package version

// Version is the build version, set with
// -ldflags "-X github.com/ndewijer/Dividend-Tracker-Backend/internal/version.Version=v1.2.3".
var Version = "dev"
