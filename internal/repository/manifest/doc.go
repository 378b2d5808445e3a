// Package manifest persists release manifests as YAML files on disk.
package manifest
