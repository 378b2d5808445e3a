// Package common holds helpers shared by several services.
//
// It computes file checksums (one at a time or concurrently), guards an
// output directory with a build marker file, and detects the current system
// actor (hostname/username) recorded in release manifests.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
