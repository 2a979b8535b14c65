// Package probe checks a running innometrics-server through the standard gRPC
// health protocol. It backs `innometrics-bootstrap probe`, usable as a
// container health check.
package probe
