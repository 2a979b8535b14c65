// Package config defines the YAML settings of both binaries and helpers to
// load, validate and save them.
//
// Bootstrap describes the build/run sequence of innometrics-bootstrap; its file
// is optional and the defaults reproduce the original container definition.
// Server holds the API server settings, read from the installation root.
package config
