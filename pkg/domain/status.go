package domain

import "time"

// Status is a read-only snapshot of the watcher state, reported by /status and the HTTP API
type Status struct {
	Sources   []Source
	Interval  time.Duration
	CacheSize int
	CacheCap  int
	Cycles    int64
	Sent      int64
	Failed    int64
	LastCycle time.Time // zero before the first cycle completes
}
