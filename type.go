package bootlog

// Origin identifies the call site of an entry.
type Origin struct {
	Unit   string // Source unit, the file base name without extension
	Member string // Function or method name
}

// Stats is a point-in-time snapshot of the logger's counters
type Stats struct {
	Initialized  bool
	Shutdown     bool
	Pending      int    // Entries currently waiting for initialization
	InitAttempts uint64 // Initialize calls that ran the procedure
	Rotations    uint64 // Leftover log files renamed out of the way
	Buffered     uint64 // Entries ever queued before initialization
	Written      uint64 // Lines written to the log file, drained ones included
	Filtered     uint64 // Debug entries suppressed by verbosity
	Dropped      uint64 // Entries discarded by Shutdown, still pending or written later
	WriteErrors  uint64 // Failed file writes
}
