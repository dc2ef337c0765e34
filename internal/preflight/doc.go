// Package preflight runs readiness checks before a download starts: the
// output directory must be writable, its filesystem must have room for the
// source audio and the split tracks, and the external binaries must resolve.
//
// The CLI "ytcs deps" command reuses CheckSystemDeps to render its table.
package preflight
