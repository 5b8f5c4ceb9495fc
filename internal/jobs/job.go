// Package jobs defines the Job data model: its fields, state machine, and
// the typed errors Store operations return.
package jobs

import "time"

// State is a job's position in its state machine.
type State string

const (
	Pending    State = "pending"
	Processing State = "processing"
	Failed     State = "failed"
	Completed  State = "completed"
	Dead       State = "dead"
	Cancelled  State = "cancelled"
)

// Default values applied by Store.Enqueue when the caller omits them.
const (
	DefaultPriority   = 5
	DefaultMaxRetries = 3
	DefaultTimeoutMs  = 300_000
)

// StaleLockHorizon is how long a processing job's lock may sit unrefreshed
// before a worker presumes its holder crashed and reclaims it.
const StaleLockHorizon = 5 * time.Minute

// Job is the sole first-class entity in the queue: a shell command plus the
// metadata needed to dispatch, retry, and account for it.
type Job struct {
	ID          string     `json:"id" constraints:"notnull=true"`
	Command     string     `json:"command" constraints:"notnull=true"`
	State       State      `json:"state"`
	Priority    int        `json:"priority" constraints:"min=0,max=6"`
	Attempts    int        `json:"attempts" constraints:"min=-1"`
	MaxRetries  int        `json:"max_retries" constraints:"min=0"`
	TimeoutMs   int        `json:"timeout_ms" constraints:"min=0"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	NextRetryAt *time.Time `json:"next_retry_at,omitempty"`
	Error       *string    `json:"error,omitempty"`
	LockedBy    *string    `json:"locked_by,omitempty"`
	LockedAt    *time.Time `json:"locked_at,omitempty"`
}

// IsLockStale reports whether the job's processing lock is older than
// StaleLockHorizon as of now, meaning its holder is presumed crashed.
func (j *Job) IsLockStale(now time.Time) bool {
	return j.LockedAt != nil && now.Sub(*j.LockedAt) > StaleLockHorizon
}

// clearLock clears the fields that mark a job as claimed by a worker.
func (j *Job) clearLock() {
	j.LockedBy = nil
	j.LockedAt = nil
}
