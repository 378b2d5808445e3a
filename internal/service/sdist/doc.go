// Package sdist builds source distributions from a package descriptor.
//
// It collects the VERSION file, package sources, scripts and package data,
// checksums them, writes a gzip-compressed tarball rooted at
// "<name>-<version>/" and records everything in a release manifest stored
// next to the archive. A build marker keeps two builds from writing into
// the same output directory at once.
package sdist
