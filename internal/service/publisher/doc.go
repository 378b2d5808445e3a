// Package publisher uploads source distributions to S3-compatible object storage.
//
// Objects are stored under <prefix>/<name>/<version>/. A release that is
// already present is never overwritten unless forced.
package publisher
