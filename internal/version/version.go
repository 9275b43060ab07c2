// Package version carries the build version, overridden at link time with
// -ldflags "-X github.com/hevytools/notion-sync/internal/version.Version=...".
package version

var Version = "dev"
