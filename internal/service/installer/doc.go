// Package installer installs a source distribution into a prefix.
//
// It verifies the archive against its release manifest, then applies every
// file atomically with checksum validation: scripts go to <prefix>/bin and
// everything else to <prefix>/lib/<name>/<version>. Files that already match
// their recorded checksum are left untouched.
package installer
