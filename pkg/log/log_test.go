package log_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"lintang/dronepatrol/pkg/log"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, c := range cases {
		got, err := log.ParseLevel(c.in)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, c.in)
	}

	_, err := log.ParseLevel("verbose")
	assert.Error(t, err)
}

func TestNewWithWriter(t *testing.T) {
	t.Run("filters below level", func(t *testing.T) {
		var buf bytes.Buffer
		l, closer, err := log.NewWithWriter(&buf, "patrol", log.Options{Level: "warn"})
		require.NoError(t, err)
		defer closer.Close()

		l.Info("hidden")
		l.Warn("route stalled", slog.Int("visited", 3))

		var rec map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
		assert.Equal(t, "route stalled", rec["msg"])
		assert.Equal(t, float64(3), rec["visited"])
	})

	t.Run("writes rotating file", func(t *testing.T) {
		dir := t.TempDir()
		var buf bytes.Buffer
		l, closer, err := log.NewWithWriter(&buf, "patrol", log.Options{Level: "info", Dir: dir, MaxSizeMB: 1})
		require.NoError(t, err)

		l.Info("replanned")
		require.NoError(t, closer.Close())

		bb, err := os.ReadFile(filepath.Join(dir, "patrol.slog"))
		require.NoError(t, err)
		assert.Contains(t, string(bb), "replanned")
		assert.Contains(t, buf.String(), "replanned")
	})

	t.Run("bad level", func(t *testing.T) {
		_, _, err := log.NewWithWriter(&bytes.Buffer{}, "patrol", log.Options{Level: "loud"})
		assert.Error(t, err)
	})
}

func TestRunWithWriter(t *testing.T) {
	t.Run("failure returns exit code and logs the cause", func(t *testing.T) {
		dir := t.TempDir()
		var buf bytes.Buffer
		code := log.RunWithWriter(&buf, "server", log.Options{Level: "info", Dir: dir}, func(l *slog.Logger) error {
			l.Info("listening")
			return errors.New("address already in use")
		})
		assert.Equal(t, 1, code)

		bb, err := os.ReadFile(filepath.Join(dir, "server.slog"))
		require.NoError(t, err)
		assert.Contains(t, string(bb), "listening")
		assert.Contains(t, string(bb), "server failed")
		assert.Contains(t, string(bb), "address already in use")
	})

	t.Run("success", func(t *testing.T) {
		var buf bytes.Buffer
		called := false
		code := log.RunWithWriter(&buf, "preprocessing", log.Options{Level: "info"}, func(l *slog.Logger) error {
			called = true
			return nil
		})
		assert.Equal(t, 0, code)
		assert.True(t, called)
		assert.NotContains(t, buf.String(), "failed")
	})

	t.Run("bad level never runs fn", func(t *testing.T) {
		code := log.RunWithWriter(&bytes.Buffer{}, "server", log.Options{Level: "loud"}, func(l *slog.Logger) error {
			t.Fatal("fn must not run")
			return nil
		})
		assert.Equal(t, 1, code)
	})
}
