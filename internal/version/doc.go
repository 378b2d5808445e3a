// Package version exposes build metadata for s3setup-packager.
//
// Variables Version, Commit, and BuildTime are injected at build time via
// Go ldflags. When they are empty the VCS information recorded by the Go
// toolchain is used instead.
package version
