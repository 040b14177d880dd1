package buildinfo

// Build metadata, overridden at link time:
//
//	go build -ldflags "-X github.com/Chrisc1124/statpad/internal/buildinfo.Version=v1.2.3"
var (
	Version   = "dev"
	Revision  = "unknown"
	BuildDate = "unknown"
)
