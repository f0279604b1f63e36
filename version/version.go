// Package version holds the build version of taskdeck binaries.
package version

// Version is overridden at build time with
// -ldflags "-X taskdeck/version.Version=v1.2.3".
var Version = "dev"
