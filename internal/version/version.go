// Package version carries build metadata injected with -ldflags, e.g.
// -X github.com/doeshing/aura-go/internal/version.Version=v0.3.0
package version

var (
	Version   = "dev"
	Commit    = ""
	BuildDate = ""
)
