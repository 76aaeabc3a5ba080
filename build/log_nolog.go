//go:build nolog
// +build nolog

package build

// LoggingType is a log type that doesn't write any logs.
const LoggingType = LogTypeNone
