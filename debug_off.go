//go:build !bootlog_debug

package bootlog

// debugBuild is set by the bootlog_debug build tag. In a debug build Debug
// entries are never suppressed by verbosity.
const debugBuild = false
