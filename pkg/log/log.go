// Package log builds the slog logger shared by the binaries.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures New. Dir enables a rotating JSON log file under Dir in addition to stdout.
type Options struct {
	Level      string
	Dir        string
	MaxSizeMB  int
	MaxAgeDays int
}

// ParseLevel maps debug|info|warn|error to a slog level; anything else is an error.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%s: invalid log level", level)
	}
}

// New returns a JSON logger writing to stdout and, when opts.Dir is set, to
// a lumberjack file. The returned closer releases the file.
func New(name string, opts Options) (*slog.Logger, io.Closer, error) {
	return NewWithWriter(os.Stdout, name, opts)
}

func NewWithWriter(out io.Writer, name string, opts Options) (*slog.Logger, io.Closer, error) {
	lvl, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	var closer io.Closer = nopCloser{}
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, nil, err
		}
		w := &lumberjack.Logger{
			Filename: filepath.Join(opts.Dir, name+".slog"),
			MaxSize:  opts.MaxSizeMB, // MB
			MaxAge:   opts.MaxAgeDays,
			Compress: true,
		}
		out = io.MultiWriter(out, w)
		closer = w
	}

	l := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: lvl}))
	l.Debug("System information",
		slog.String("GOARCH", runtime.GOARCH),
		slog.String("GOOS", runtime.GOOS),
		slog.Int("NumCPUs", runtime.NumCPU()))
	return l, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
