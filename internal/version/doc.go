// Package version exposes build metadata shared by innometrics-bootstrap and
// innometrics-server. Version, Commit and BuildTime are injected with ldflags.
package version
