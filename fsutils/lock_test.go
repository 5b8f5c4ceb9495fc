package fsutils

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"oss.nandlabs.io/taskqueue/testing/assert"
)

func TestLock_AcquireRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".lock")
	l := NewLock(path)

	if err := l.Acquire(time.Second); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("lock file missing after Acquire: %v", err)
	}

	if err := l.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("lock file still present after Release")
	}
}

func TestLock_AcquireBlocksUntilReleased(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".lock")
	first := NewLock(path)
	if err := first.Acquire(time.Second); err != nil {
		t.Fatalf("first Acquire() error = %v", err)
	}

	second := NewLock(path)
	done := make(chan error, 1)
	go func() {
		done <- second.Acquire(5 * time.Second)
	}()

	select {
	case <-done:
		t.Fatal("second Acquire() returned before first lock was released")
	case <-time.After(100 * time.Millisecond):
	}

	if err := first.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("second Acquire() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("second Acquire() never returned after release")
	}
}

func TestLock_AcquireTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".lock")
	first := NewLock(path)
	if err := first.Acquire(time.Second); err != nil {
		t.Fatalf("first Acquire() error = %v", err)
	}
	defer first.Release()

	second := NewLock(path)
	err := second.Acquire(50 * time.Millisecond)
	if err == nil {
		t.Fatal("expected timeout error, got nil")
	}
	var timeoutErr *LockTimeoutError
	if e, ok := err.(*LockTimeoutError); ok {
		timeoutErr = e
	}
	if timeoutErr == nil {
		t.Fatalf("expected *LockTimeoutError, got %T: %v", err, err)
	}
	assert.Equal(t, path, timeoutErr.Path)
}

func TestLock_EvictsStaleLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".lock")

	stale := lockRecord{Pid: 999999, AcquiredAt: time.Now().UTC().Add(-staleLockHorizon - time.Minute)}
	data, err := json.Marshal(stale)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	l := NewLock(path)
	if err := l.Acquire(time.Second); err != nil {
		t.Fatalf("Acquire() error = %v, want stale lock evicted and reacquired", err)
	}
}

func TestLock_EvictsCorruptLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".lock")
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	l := NewLock(path)
	if err := l.Acquire(time.Second); err != nil {
		t.Fatalf("Acquire() error = %v, want corrupt lock evicted and reacquired", err)
	}
}

func TestLock_ReleaseWithoutAcquireIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".lock")
	l := NewLock(path)
	if err := l.Release(); err != nil {
		t.Fatalf("Release() on unheld lock error = %v, want nil", err)
	}
}

// Release must not remove a lock file that was evicted as stale and
// re-acquired by a different Lock instance in the meantime.
func TestLock_ReleaseDoesNotClobberNewOwner(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".lock")
	original := NewLock(path)
	if err := original.Acquire(time.Second); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	// Simulate the on-disk record having been evicted and reacquired by
	// another process: rewrite the file with a different pid/timestamp.
	newOwner := lockRecord{Pid: os.Getpid() + 1, AcquiredAt: time.Now().UTC()}
	data, err := json.Marshal(newOwner)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if err := original.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("lock file removed by non-owner Release(): %v", err)
	}
}
