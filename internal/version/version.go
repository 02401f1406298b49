// Package version holds build metadata, overridable at link time.
package version

import "runtime"

var (
	AppName        = "loopbox"
	AppDescription = "Discord bot that loops local audio into voice and stage channels."
	Version        = "dev"
	BuildDate      = ""
	GoVersion      = runtime.Version()
)
