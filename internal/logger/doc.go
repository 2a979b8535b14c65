// Package logger wraps zap for both innometrics binaries.
//
// A global sugared logger writes to stdout in console format. Services carry a
// named logger in their context (WithName, WithKV) and log through the
// package-level helpers (InfoKV, ErrorKV, ...). The API server can additionally
// tee every entry into a log file below the installation root (AttachFile).
package logger
