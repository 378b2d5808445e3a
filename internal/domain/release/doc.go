// Package release contains the release manifest written next to every
// source distribution: who built it and when, the descriptor it was built
// from, and checksums for the archive and each file inside it.
package release
