// Package bootstrap implements the bootstrap sequence of innometrics-backend.
//
// Build runs the BUILDING phase: it establishes the working directory,
// materializes the source tree into it, installs the pinned packaging
// toolchain and then the dependency manifest, and finally writes the build
// record. Any failure rolls the installation back so no record exists.
//
// Run runs the RUNNING phase: it derives the installation-root and
// module-search-path variables from the record, starts the entry point in the
// working directory and reports the entry point's exit status.
package bootstrap
