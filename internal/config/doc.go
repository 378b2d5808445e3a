// Package config defines the packager settings and provides helpers to
// load, validate and save them in YAML format.
//
// Every field has a default, so the settings file is optional. Command line
// flags override whatever the file provides.
package config
