//go:build bootlog_debug

package bootlog

const debugBuild = true
