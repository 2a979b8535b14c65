// Package bootstrap contains the domain model of the bootstrap sequence.
//
// Layout captures the installation root and how the module search path is
// derived from it; Record is the persisted outcome of a completed BUILDING
// phase. Both are pure values: no I/O happens here.
package bootstrap
