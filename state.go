package bootlog

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/lixenwraith/bootlog/fsutil"
)

// errAlreadyInitialized is returned by drainAndInitialize on a second call
var errAlreadyInitialized = errors.New("bootlog: already initialized")

// State encapsulates the runtime state of the logger.
//
// mu guards the initialized flag, the pending buffer and the file as one unit:
// a writer either appends to pending or writes to the file, and the switch
// from one to the other happens only after pending is fully drained.
type State struct {
	mu          sync.Mutex
	initialized bool     // false -> true once, never reset
	shutdown    bool     // set by Shutdown, later entries are dropped
	pending     []string // FIFO of formatted lines awaiting a file
	file        *fsutil.LockedFile
	path        string
	initErr     error // cause of the most recent failed Initialize

	InitAttempts atomic.Uint64
	Rotations    atomic.Uint64
	Buffered     atomic.Uint64
	Written      atomic.Uint64
	Filtered     atomic.Uint64
	Dropped      atomic.Uint64
	WriteErrors  atomic.Uint64
}

// emit routes one formatted line to the open file or to the pending buffer
func (s *State) emit(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.shutdown:
		s.Dropped.Add(1)
	case s.initialized:
		s.writeLocked(line)
	default:
		s.pending = append(s.pending, line)
		s.Buffered.Add(1)
	}
}

// writeLocked appends line to the file, mu must be held
func (s *State) writeLocked(line string) {
	if _, err := s.file.WriteString(line + "\n"); err != nil {
		s.WriteErrors.Add(1)
		return
	}
	s.Written.Add(1)
}

// drainAndInitialize writes every pending line in order to f, clears the
// buffer and flips the initialized flag. A second call returns
// errAlreadyInitialized and leaves the state untouched.
func (s *State) drainAndInitialize(f *fsutil.LockedFile, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return errAlreadyInitialized
	}
	if s.shutdown {
		return ErrShutdown
	}

	s.file = f
	s.path = path
	for _, line := range s.pending {
		s.writeLocked(line)
	}
	s.pending = nil
	s.initialized = true
	s.initErr = nil
	return nil
}

func (s *State) isInitialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

func (s *State) isShutdown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdown
}

func (s *State) setInitErr(err error) {
	s.mu.Lock()
	s.initErr = err
	s.mu.Unlock()
}

// snapshotPending returns a copy of the pending buffer
func (s *State) snapshotPending() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.pending))
	copy(out, s.pending)
	return out
}

// sync flushes the file to stable storage, a no-op before initialization
func (s *State) sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	if err := s.file.Sync(); err != nil {
		return fmtErrorf("failed to sync log file '%s': %w", s.path, err)
	}
	return nil
}

// close marks the state shut down and releases the file. Entries still
// pending are discarded and counted as dropped.
func (s *State) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.shutdown {
		return nil
	}
	s.shutdown = true
	s.Dropped.Add(uint64(len(s.pending)))
	s.pending = nil

	if s.file == nil {
		return nil
	}

	var finalErr error
	if err := s.file.Sync(); err != nil {
		finalErr = combineErrors(finalErr, fmtErrorf("failed to sync log file '%s' during shutdown: %w", s.path, err))
	}
	if err := s.file.Close(); err != nil {
		finalErr = combineErrors(finalErr, fmtErrorf("failed to close log file '%s' during shutdown: %w", s.path, err))
	}
	s.file = nil
	return finalErr
}
