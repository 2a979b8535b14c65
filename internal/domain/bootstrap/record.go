package bootstrap

import "time"

// Record is written once the BUILDING phase has fully succeeded. Its presence
// is what makes an installation startable.
type Record struct {
	// Layout fixes both environment variables for every later start.
	Layout Layout
	// Interpreter runs the entry point; empty means direct execution.
	Interpreter string
	// EntryPoint is relative to Layout.Root.
	EntryPoint string
	// Toolchain is the pinned packaging tool, e.g. "pip==19.3.1".
	Toolchain string
	// Manifest is the installed dependency manifest, relative to Layout.Root.
	Manifest string
	// ManifestChecksum is the base64 SHA-512 of the manifest.
	ManifestChecksum string
	// Requirements lists the installed requirement lines.
	Requirements []string
	// Files is the number of files and symlinks materialized.
	Files int
	// BuiltAt is when the build completed.
	BuiltAt time.Time
}
