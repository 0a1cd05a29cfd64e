package version

import "runtime"

const serviceName = "slack-app-rating"

// Overridden at build time via -ldflags "-X .../internal/version.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	BuiltAt = "unknown"
)

// Info is the payload served on the version endpoint.
type Info struct {
	Service   string `json:"service"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuiltAt   string `json:"built_at"`
	GoVersion string `json:"go_version"`
}

func Get() Info {
	return Info{
		Service:   serviceName,
		Version:   Version,
		Commit:    Commit,
		BuiltAt:   BuiltAt,
		GoVersion: runtime.Version(),
	}
}
