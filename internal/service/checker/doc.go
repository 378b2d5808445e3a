// Package checker reports problems in a package descriptor without failing
// the build.
//
// Descriptor construction accepts any version string and never looks at
// the declared scripts. The check command surfaces what would go wrong later:
// empty or non-semantic versions and declared paths missing on disk.
package checker
