package jobs

import (
	"testing"
	"time"

	"oss.nandlabs.io/taskqueue/testing/assert"
)

func TestJob_IsLockStale(t *testing.T) {
	now := time.Now().UTC()

	fresh := now.Add(-time.Minute)
	j := &Job{LockedAt: &fresh}
	assert.False(t, j.IsLockStale(now))

	stale := now.Add(-StaleLockHorizon - time.Minute)
	j2 := &Job{LockedAt: &stale}
	assert.True(t, j2.IsLockStale(now))

	j3 := &Job{}
	assert.False(t, j3.IsLockStale(now))
}

func TestJob_ClearLock(t *testing.T) {
	by := "worker_1"
	at := time.Now().UTC()
	j := &Job{LockedBy: &by, LockedAt: &at}
	j.clearLock()
	if j.LockedBy != nil {
		t.Fatalf("LockedBy = %v, want nil", *j.LockedBy)
	}
	if j.LockedAt != nil {
		t.Fatalf("LockedAt = %v, want nil", *j.LockedAt)
	}
}
