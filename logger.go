package bootlog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/bootlog/formatter"
	"github.com/lixenwraith/bootlog/fsutil"
)

// Logger is the core struct that encapsulates all logger functionality.
// Entries written before Initialize succeeds are buffered in memory and
// flushed, in order, to the log file once it is open.
type Logger struct {
	currentConfig atomic.Value // stores *Config
	state         State
	initMu        sync.Mutex // serializes Initialize and Shutdown
	formatter     *formatter.Formatter
	now           func() time.Time
}

// NewLogger creates a new Logger instance with default settings, in buffering mode
func NewLogger() *Logger {
	l := &Logger{
		formatter: formatter.New(),
		now:       time.Now,
	}
	l.currentConfig.Store(DefaultConfig())
	return l
}

// ApplyConfig validates and stores a configuration. It does not open the log
// file; call Initialize or InitializeWait for that.
func (l *Logger) ApplyConfig(cfg *Config) error {
	if cfg == nil {
		return fmtErrorf("configuration cannot be nil")
	}

	if err := cfg.Validate(); err != nil {
		return fmtErrorf("invalid configuration: %w", err)
	}

	l.currentConfig.Store(cfg.Clone())
	return nil
}

// GetConfig returns a copy of current configuration
func (l *Logger) GetConfig() *Config {
	return l.getConfig().Clone()
}

// getConfig returns the current configuration (thread-safe)
func (l *Logger) getConfig() *Config {
	return l.currentConfig.Load().(*Config)
}

// Initialize opens logDir/logName, rotating a leftover file from a prior
// run, and flushes every buffered entry into it. It runs at most once
// successfully; later calls are no-ops. Failures are never returned: the
// logger stays in buffering mode and the cause is available from InitError.
func (l *Logger) Initialize(logDir, logName string) {
	l.initMu.Lock()
	defer l.initMu.Unlock()

	if l.state.isInitialized() {
		return
	}
	if l.state.isShutdown() {
		l.state.setInitErr(ErrShutdown)
		return
	}

	l.state.InitAttempts.Add(1)
	if err := l.initialize(logDir, logName); err != nil {
		l.state.setInitErr(err)
		l.internalLog("initialization failed, entries stay buffered: %v\n", err)
	}
}

// InitializeWait initializes from the current configuration. If the log file
// is held by another instance it waits, probing every RetryDelayMs, until the
// file is released or ctx is done, then initializes.
func (l *Logger) InitializeWait(ctx context.Context) error {
	cfg := l.getConfig()

	l.Initialize(cfg.Directory, cfg.Name)
	if l.IsInitialized() {
		return nil
	}

	initErr := l.InitError()
	if !errors.Is(initErr, ErrLogFileLocked) {
		return initErr
	}

	_, logFile, err := resolveLogFilePath(cfg.Directory, cfg.Name)
	if err != nil {
		return err
	}
	if err := fsutil.WaitUntilExclusivelyOpenableMs(ctx, logFile, cfg.RetryDelayMs); err != nil {
		return fmtErrorf("log file '%s' not released: %w", logFile, err)
	}

	l.Initialize(cfg.Directory, cfg.Name)
	if !l.IsInitialized() {
		if err := l.InitError(); err != nil {
			return err
		}
		return ErrNotInitialized
	}
	return nil
}

// IsInitialized reports whether entries go straight to the log file
func (l *Logger) IsInitialized() bool {
	return l.state.isInitialized()
}

// InitError returns the cause of the most recent failed Initialize, or nil
func (l *Logger) InitError() error {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()
	return l.state.initErr
}

// LogFilePath returns the path of the open log file, or "" before initialization
func (l *Logger) LogFilePath() string {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()
	return l.state.path
}

// Pending returns a copy of the entries waiting for initialization
func (l *Logger) Pending() []string {
	return l.state.snapshotPending()
}

// Stats returns a snapshot of the logger's counters
func (l *Logger) Stats() Stats {
	l.state.mu.Lock()
	initialized := l.state.initialized
	shutdown := l.state.shutdown
	pending := len(l.state.pending)
	l.state.mu.Unlock()

	return Stats{
		Initialized:  initialized,
		Shutdown:     shutdown,
		Pending:      pending,
		InitAttempts: l.state.InitAttempts.Load(),
		Rotations:    l.state.Rotations.Load(),
		Buffered:     l.state.Buffered.Load(),
		Written:      l.state.Written.Load(),
		Filtered:     l.state.Filtered.Load(),
		Dropped:      l.state.Dropped.Load(),
		WriteErrors:  l.state.WriteErrors.Load(),
	}
}

// Flush syncs the log file to stable storage
func (l *Logger) Flush() error {
	return l.state.sync()
}

// Shutdown syncs and closes the log file and releases its exclusive hold.
// Entries written afterwards, and any still buffered, are discarded.
// Safe to call more than once.
func (l *Logger) Shutdown() error {
	l.initMu.Lock()
	defer l.initMu.Unlock()

	return l.state.close()
}

// Debug logs a message at debug level
func (l *Logger) Debug(args ...any) {
	l.log(LevelDebug, callerOrigin(1), args...)
}

// Info logs a message at info level
func (l *Logger) Info(args ...any) {
	l.log(LevelInfo, callerOrigin(1), args...)
}

// Warn logs a message at warning level
func (l *Logger) Warn(args ...any) {
	l.log(LevelWarn, callerOrigin(1), args...)
}

// Error logs a message at error level. Error values among args are rendered
// with their full text.
func (l *Logger) Error(args ...any) {
	l.log(LevelError, callerOrigin(1), args...)
}

// ErrorValue logs the full descriptive text of err at error level
func (l *Logger) ErrorValue(err error) {
	if err == nil {
		return
	}
	l.log(LevelError, callerOrigin(1), err)
}

// Write logs a message at the given level with an explicit origin
func (l *Logger) Write(level int64, origin Origin, args ...any) {
	l.log(level, origin, args...)
}
