// Package manifest reads dependency manifests consumed by the bootstrap build.
//
// Two formats are understood: pip requirement files and pyproject.toml
// ([project] dependencies). Every requirement must carry a package name; the
// version constraint is kept verbatim and left to the installer.
package manifest
