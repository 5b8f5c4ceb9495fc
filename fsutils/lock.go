package fsutils

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// staleLockHorizon is how long a lock file may sit unreleased before a new
// acquirer treats its owner as dead and evicts it.
const staleLockHorizon = 5 * time.Minute

// lockPollInterval is the backoff between failed acquire attempts.
const lockPollInterval = 10 * time.Millisecond

// lockRecord is the JSON content written into a lock file: enough to tell a
// later acquirer who holds the lock and since when.
type lockRecord struct {
	Pid       int       `json:"pid"`
	AcquiredAt time.Time `json:"acquired_at"`
}

// LockTimeoutError is returned by Lock.Acquire when the bounded wait expires
// without the lock becoming available.
type LockTimeoutError struct {
	Path   string
	Waited time.Duration
}

func (e *LockTimeoutError) Error() string {
	return fmt.Sprintf("timed out waiting %s for lock %s", e.Waited, e.Path)
}

// Lock is a cross-process advisory file lock: the presence of Path, created
// atomically via O_CREATE|O_EXCL, is the lock. Its contents record which
// process holds it and when, so a stale holder (one that crashed without
// releasing) can be detected and evicted by horizon instead of held forever.
type Lock struct {
	Path string

	held   bool
	record lockRecord
}

// NewLock returns a Lock guarding the given path. The path is never created
// until Acquire succeeds.
func NewLock(path string) *Lock {
	return &Lock{Path: path}
}

// Acquire blocks until the lock is obtained or timeout elapses, polling
// every lockPollInterval. A lock file older than staleLockHorizon is
// considered abandoned and evicted before the next attempt.
func (l *Lock) Acquire(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	start := time.Now()
	for {
		if l.tryCreate() {
			return nil
		}

		l.evictIfStale()

		if time.Now().After(deadline) {
			return &LockTimeoutError{Path: l.Path, Waited: time.Since(start)}
		}
		time.Sleep(lockPollInterval)
	}
}

// tryCreate attempts the atomic O_CREATE|O_EXCL create. It returns true and
// records ownership on success.
func (l *Lock) tryCreate() bool {
	f, err := os.OpenFile(l.Path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return false
	}
	defer f.Close()

	rec := lockRecord{Pid: os.Getpid(), AcquiredAt: time.Now().UTC()}
	enc := json.NewEncoder(f)
	if err := enc.Encode(rec); err != nil {
		return false
	}
	l.held = true
	l.record = rec
	return true
}

// evictIfStale removes the lock file if its recorded age exceeds
// staleLockHorizon, under the assumption its owning process died without
// releasing it. A corrupt or unreadable lock file is treated as stale too.
func (l *Lock) evictIfStale() {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return
	}

	var rec lockRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		os.Remove(l.Path)
		return
	}

	if time.Since(rec.AcquiredAt) > staleLockHorizon {
		os.Remove(l.Path)
	}
}

// Release removes the lock file, but only if this Lock instance still holds
// it — a lock that was already evicted as stale and re-acquired by another
// process must not be deleted out from under its new owner.
func (l *Lock) Release() error {
	if !l.held {
		return nil
	}

	data, err := os.ReadFile(l.Path)
	if err != nil {
		l.held = false
		return nil
	}

	var rec lockRecord
	if err := json.Unmarshal(data, &rec); err == nil {
		if rec.Pid != l.record.Pid || !rec.AcquiredAt.Equal(l.record.AcquiredAt) {
			l.held = false
			return nil
		}
	}

	l.held = false
	return os.Remove(l.Path)
}
