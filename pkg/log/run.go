package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Run opens the named logger, runs fn with it and closes the logger before returning
// the process exit code, 0 when fn succeeds and 1 otherwise.
func Run(name string, opts Options, fn func(*slog.Logger) error) int {
	return RunWithWriter(os.Stdout, name, opts, fn)
}

func RunWithWriter(out io.Writer, name string, opts Options, fn func(*slog.Logger) error) int {
	logger, closer, err := NewWithWriter(out, name, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "log: %v\n", err)
		return 1
	}
	defer closer.Close()

	if err := fn(logger); err != nil {
		logger.Error(name+" failed", slog.String("error", err.Error()))
		return 1
	}
	return 0
}
