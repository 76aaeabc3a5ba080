//go:build !stdlog && !nolog
// +build !stdlog,!nolog

package build

// LoggingType is a log type that writes to the console and the log rotator,
// as configured at runtime.
const LoggingType = LogTypeDefault
