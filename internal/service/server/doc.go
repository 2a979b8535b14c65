// Package server runs innometrics-server: it loads settings from the
// installation root, opens storage, writes the API document and serves the
// HTTP API next to a gRPC health service until the context is canceled.
package server
