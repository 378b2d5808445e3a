// Package builder resolves the release version and builds the package descriptor.
//
// Build is the single entry point used by every packaging command: it
// resolves the base directory, reads VERSION through the versionfile
// repository and returns the descriptor record. Render prints a descriptor
// as YAML, JSON or a table.
package builder
