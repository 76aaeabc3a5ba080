package build

import (
	"io"
	"sync"

	"github.com/btcsuite/btclog/v2"
)

// LogWriter fans every log line out to the console and the rotating log file.
// Writes are serialized so that lines of concurrently logging subsystems never
// interleave.
type LogWriter struct {
	mu sync.Mutex

	console io.Writer
	file    io.Writer
}

// NewLogWriter creates a log writer for the given outputs. Either may be nil
// to leave that output out.
func NewLogWriter(console io.Writer, file io.Writer) *LogWriter {
	return &LogWriter{
		console: console,
		file:    file,
	}
}

// Write writes b to all configured outputs. The first error is returned, but
// every output is written to regardless.
func (w *LogWriter) Write(b []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var firstErr error
	for _, out := range []io.Writer{w.console, w.file} {
		if out == nil {
			continue
		}

		if _, err := out.Write(b); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if firstErr != nil {
		return 0, firstErr
	}

	return len(b), nil
}

// NewDefaultLogHandlers returns a constructor of the root handler every
// subsystem logger is derived from. Console and file output share a single
// line format, which the console config decides unless the console logger is
// disabled.
func NewDefaultLogHandlers(cfg *LogConfig, console io.Writer,
	rotator *RotatingLogWriter) func() btclog.Handler {

	var (
		consoleOut io.Writer
		fileOut    io.Writer
		opts       []btclog.HandlerOption
	)
	if !cfg.Console.Disable && console != nil {
		consoleOut = console
		opts = cfg.Console.HandlerOptions()
	}
	if !cfg.File.Disable && rotator != nil {
		fileOut = rotator
		if consoleOut == nil {
			opts = cfg.File.HandlerOptions()
		}
	}

	writer := NewLogWriter(consoleOut, fileOut)

	return func() btclog.Handler {
		return btclog.NewDefaultHandler(writer, opts...)
	}
}
