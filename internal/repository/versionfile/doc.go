// Package versionfile reads the release version string.
//
// The FileRepository opens the VERSION file inside a base directory, reads it
// whole and trims surrounding whitespace. It exposes a Repository interface
// that the builder depends on.
package versionfile
