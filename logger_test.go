package bootlog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/bootlog/fsutil"
)

// fixedNow is the clock used by tests that check rotated file names
var fixedNow = time.Unix(1700000000, 0)

// createTestLogger creates an uninitialized logger with a fixed clock and a temp directory
func createTestLogger(t *testing.T) (*Logger, string) {
	t.Helper()
	tmpDir := t.TempDir()
	logger := NewLogger()
	logger.now = func() time.Time { return fixedNow }

	cfg := DefaultConfig()
	cfg.Directory = tmpDir
	cfg.Name = "app.txt"
	cfg.RetryDelayMs = 10
	require.NoError(t, logger.ApplyConfig(cfg))

	t.Cleanup(func() { _ = logger.Shutdown() })
	return logger, tmpDir
}

// readLines returns the non-empty lines of a file
func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.FieldsFunc(string(data), func(r rune) bool { return r == '\n' })
}

// messages strips everything up to " >> " from each line
func messages(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		_, msg, _ := strings.Cut(line, " >> ")
		out[i] = msg
	}
	return out
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger()

	assert.NotNil(t, logger)
	assert.NotNil(t, logger.formatter)
	assert.False(t, logger.IsInitialized())
	assert.NoError(t, logger.InitError())
	assert.Empty(t, logger.LogFilePath())
	assert.Equal(t, DefaultConfig(), logger.GetConfig())
}

func TestBufferedEntriesFlushInOrder(t *testing.T) {
	logger, tmpDir := createTestLogger(t)

	for i := 0; i < 5; i++ {
		logger.Info("before", i)
	}
	assert.Len(t, logger.Pending(), 5)
	assert.False(t, logger.IsInitialized())

	logger.Initialize(tmpDir, "app.txt")
	require.True(t, logger.IsInitialized())
	assert.Empty(t, logger.Pending())

	logger.Info("after", 0)
	logger.Warn("after", 1)

	lines := readLines(t, filepath.Join(tmpDir, "app.txt"))
	assert.Equal(t, []string{
		"before 0", "before 1", "before 2", "before 3", "before 4",
		"after 0", "after 1",
	}, messages(lines))

	stats := logger.Stats()
	assert.Equal(t, uint64(5), stats.Buffered)
	assert.Equal(t, uint64(7), stats.Written)
	assert.Equal(t, 0, stats.Pending)
}

func TestLineFormat(t *testing.T) {
	logger, tmpDir := createTestLogger(t)
	logger.Initialize(tmpDir, "app.txt")
	require.True(t, logger.IsInitialized())

	logger.Write(LevelWarn, Origin{Unit: "server", Member: "Start"}, "disk", "low")
	logger.Error("boom")

	lines := readLines(t, filepath.Join(tmpDir, "app.txt"))
	require.Len(t, lines, 2)
	assert.Regexp(t, `^\d{2}:\d{2}:\d{2}\|Warning\|server\.Start >> disk low$`, lines[0])
	assert.Regexp(t, `^\d{2}:\d{2}:\d{2}\|Error\|logger_test\.TestLineFormat >> boom$`, lines[1])
}

func TestErrorValue(t *testing.T) {
	logger, tmpDir := createTestLogger(t)
	logger.Initialize(tmpDir, "app.txt")

	err := fmt.Errorf("load settings: %w", errors.New("file not found"))
	logger.ErrorValue(err)
	logger.ErrorValue(nil)

	lines := readLines(t, filepath.Join(tmpDir, "app.txt"))
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "|Error|")
	assert.True(t, strings.HasSuffix(lines[0], ">> load settings: file not found"))
}

func TestInitializeTwice(t *testing.T) {
	logger, tmpDir := createTestLogger(t)
	logPath := filepath.Join(tmpDir, "app.txt")
	require.NoError(t, os.WriteFile(logPath, []byte("previous run\n"), 0644))

	logger.Initialize(tmpDir, "app.txt")
	logger.Info("first")
	logger.Initialize(tmpDir, "app.txt")
	logger.Info("second")

	stats := logger.Stats()
	assert.Equal(t, uint64(1), stats.Rotations)
	assert.Equal(t, uint64(1), stats.InitAttempts)

	entries, err := os.ReadDir(tmpDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	assert.Equal(t, []string{"first", "second"}, messages(readLines(t, logPath)))
}

func TestRotation(t *testing.T) {
	t.Run("leftover file gets unix timestamp suffix", func(t *testing.T) {
		logger, tmpDir := createTestLogger(t)
		logPath := filepath.Join(tmpDir, "app.txt")
		require.NoError(t, os.WriteFile(logPath, []byte("old\n"), 0644))

		logger.Initialize(tmpDir, "app.txt")
		require.True(t, logger.IsInitialized())

		rotated, err := os.ReadFile(filepath.Join(tmpDir, "app_1700000000.txt"))
		require.NoError(t, err)
		assert.Equal(t, "old\n", string(rotated))

		info, err := os.Stat(logPath)
		require.NoError(t, err)
		assert.Equal(t, int64(0), info.Size())
		assert.Equal(t, logPath, logger.LogFilePath())
	})

	t.Run("same second rotation does not clobber", func(t *testing.T) {
		logger, tmpDir := createTestLogger(t)
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "app_1700000000.txt"), []byte("earlier\n"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "app.txt"), []byte("old\n"), 0644))

		logger.Initialize(tmpDir, "app.txt")
		require.True(t, logger.IsInitialized())

		earlier, err := os.ReadFile(filepath.Join(tmpDir, "app_1700000000.txt"))
		require.NoError(t, err)
		assert.Equal(t, "earlier\n", string(earlier))

		rotated, err := os.ReadFile(filepath.Join(tmpDir, "app_1700000000_1.txt"))
		require.NoError(t, err)
		assert.Equal(t, "old\n", string(rotated))
	})

	t.Run("existing directory without file creates it", func(t *testing.T) {
		logger, tmpDir := createTestLogger(t)

		logger.Initialize(tmpDir, "app.txt")
		require.True(t, logger.IsInitialized())
		assert.Equal(t, uint64(0), logger.Stats().Rotations)

		_, err := os.Stat(filepath.Join(tmpDir, "app.txt"))
		assert.NoError(t, err)
	})

	t.Run("fresh install creates directory", func(t *testing.T) {
		logger, tmpDir := createTestLogger(t)
		dir := filepath.Join(tmpDir, "new", "logs")

		logger.Info("queued")
		logger.Initialize(dir, "app")
		require.True(t, logger.IsInitialized())

		lines := readLines(t, filepath.Join(dir, "app.txt"))
		assert.Equal(t, []string{"queued"}, messages(lines))
		assert.Equal(t, uint64(0), logger.Stats().Rotations)
	})
}

func TestNormalizeLogName(t *testing.T) {
	tests := []struct {
		in   string
		want string
		err  bool
	}{
		{in: "app", want: "app.txt"},
		{in: "app.log", want: "app.log"},
		{in: " service ", want: "service.txt"},
		{in: "a/b", want: "ab.txt"},
		{in: "///", err: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := normalizeLogName(tt.in)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLockedLogFileKeepsBuffering(t *testing.T) {
	logger, tmpDir := createTestLogger(t)
	logPath := filepath.Join(tmpDir, "app.txt")

	holder, err := fsutil.OpenExclusive(logPath, true)
	require.NoError(t, err)
	defer holder.Close()

	logger.Info("one")
	assert.NotPanics(t, func() { logger.Initialize(tmpDir, "app.txt") })

	assert.False(t, logger.IsInitialized())
	assert.ErrorIs(t, logger.InitError(), ErrLogFileLocked)

	logger.Info("two")
	assert.Len(t, logger.Pending(), 2)
	assert.Equal(t, uint64(0), logger.Stats().Rotations)

	// The held file is neither rotated nor truncated
	_, err = holder.WriteString("owner\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"owner"}, readLines(t, logPath))

	entries, err := os.ReadDir(tmpDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestInitializeRetriesAfterFailure(t *testing.T) {
	logger, tmpDir := createTestLogger(t)
	logPath := filepath.Join(tmpDir, "app.txt")

	holder, err := fsutil.OpenExclusive(logPath, true)
	require.NoError(t, err)

	logger.Info("early")
	logger.Initialize(tmpDir, "app.txt")
	require.False(t, logger.IsInitialized())

	require.NoError(t, holder.Close())

	logger.Initialize(tmpDir, "app.txt")
	require.True(t, logger.IsInitialized())
	assert.NoError(t, logger.InitError())
	assert.Equal(t, uint64(2), logger.Stats().InitAttempts)
	assert.Equal(t, []string{"early"}, messages(readLines(t, logPath)))
}

func TestInitializeWait(t *testing.T) {
	t.Run("waits for running instance to release", func(t *testing.T) {
		logger, tmpDir := createTestLogger(t)
		logPath := filepath.Join(tmpDir, "app.txt")

		holder, err := fsutil.OpenExclusive(logPath, true)
		require.NoError(t, err)

		done := make(chan struct{})
		go func() {
			defer close(done)
			time.Sleep(50 * time.Millisecond)
			_ = holder.Close()
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		require.NoError(t, logger.InitializeWait(ctx))
		<-done
		assert.True(t, logger.IsInitialized())
	})

	t.Run("gives up when context ends", func(t *testing.T) {
		logger, tmpDir := createTestLogger(t)

		holder, err := fsutil.OpenExclusive(filepath.Join(tmpDir, "app.txt"), true)
		require.NoError(t, err)
		defer holder.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		err = logger.InitializeWait(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.False(t, logger.IsInitialized())
	})

	t.Run("no wait when file is free", func(t *testing.T) {
		logger, _ := createTestLogger(t)
		require.NoError(t, logger.InitializeWait(context.Background()))
		assert.True(t, logger.IsInitialized())
	})
}

func TestConcurrentWritesAcrossInitialize(t *testing.T) {
	logger, tmpDir := createTestLogger(t)

	const workers = 8
	const perWorker = 200

	var wg sync.WaitGroup
	start := make(chan struct{})
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			<-start
			for i := 0; i < perWorker; i++ {
				logger.Info(fmt.Sprintf("w%d-%d", id, i))
			}
		}(w)
	}

	close(start)
	logger.Initialize(tmpDir, "app.txt")
	wg.Wait()

	require.True(t, logger.IsInitialized())
	lines := messages(readLines(t, filepath.Join(tmpDir, "app.txt")))
	require.Len(t, lines, workers*perWorker)

	// Each worker's entries appear exactly once and in its own order
	next := make(map[string]int)
	for _, msg := range lines {
		id, seq, ok := strings.Cut(msg, "-")
		require.True(t, ok)
		assert.Equal(t, fmt.Sprint(next[id]), seq, "out of order entry %s", msg)
		next[id]++
	}
	assert.Len(t, next, workers)
}

func TestDebugSuppression(t *testing.T) {
	if debugBuild {
		t.Skip("debug build never suppresses Debug entries")
	}

	logger, tmpDir := createTestLogger(t)
	require.NoError(t, logger.ApplyOverride("verbosity=0"))
	logger.Initialize(tmpDir, "app.txt")

	logger.Debug("hidden")
	logger.Info("shown")

	require.NoError(t, logger.ApplyOverride("verbosity=2"))
	logger.Debug("visible")

	assert.Equal(t, []string{"shown", "visible"}, messages(readLines(t, filepath.Join(tmpDir, "app.txt"))))
	assert.Equal(t, uint64(1), logger.Stats().Filtered)
}

func TestShutdown(t *testing.T) {
	t.Run("drops later entries and releases the file", func(t *testing.T) {
		logger, tmpDir := createTestLogger(t)
		logPath := filepath.Join(tmpDir, "app.txt")
		logger.Initialize(tmpDir, "app.txt")
		logger.Info("kept")

		require.NoError(t, logger.Flush())
		require.NoError(t, logger.Shutdown())
		require.NoError(t, logger.Shutdown())

		logger.Info("dropped")
		assert.Equal(t, []string{"kept"}, messages(readLines(t, logPath)))
		assert.Equal(t, uint64(1), logger.Stats().Dropped)
		assert.NoError(t, fsutil.ProbeExclusive(logPath))
	})

	t.Run("pending entries are counted as dropped", func(t *testing.T) {
		logger, _ := createTestLogger(t)
		logger.Info("one")
		logger.Warn("two")

		require.NoError(t, logger.Shutdown())
		logger.Info("three")

		stats := logger.Stats()
		assert.Equal(t, 0, stats.Pending)
		assert.Equal(t, uint64(2), stats.Buffered)
		assert.Equal(t, uint64(3), stats.Dropped)
		assert.Empty(t, logger.Pending())
	})

	t.Run("initialize after shutdown is refused", func(t *testing.T) {
		logger, tmpDir := createTestLogger(t)
		require.NoError(t, logger.Shutdown())

		logger.Initialize(tmpDir, "app.txt")
		assert.False(t, logger.IsInitialized())
		assert.ErrorIs(t, logger.InitError(), ErrShutdown)
	})

	t.Run("flush before initialize is a no-op", func(t *testing.T) {
		logger, _ := createTestLogger(t)
		assert.NoError(t, logger.Flush())
	})
}
