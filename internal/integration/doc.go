// Package integration exercises the packaging workflow end to end:
// building a source distribution, installing it and publishing it.
package integration
