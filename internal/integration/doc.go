// Package integration holds end-to-end tests that run the bootstrap and the
// API server against real processes, files and sockets.
package integration
