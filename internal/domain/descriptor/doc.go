// Package descriptor contains the package descriptor record: the metadata a
// packaging tool needs to build and distribute the s3setup component.
//
// Everything except the version is a constant. New builds a record around a
// version string and never inspects its format.
package descriptor
