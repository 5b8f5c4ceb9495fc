package store

import (
	"math"
	"time"

	"oss.nandlabs.io/taskqueue/internal/jobs"
)

// applyFailure mutates j in place to reflect one failed execution attempt:
// attempts is incremented; if that meets or exceeds MaxRetries the job goes
// to the dead letter queue, otherwise it's rescheduled with an exponential
// backoff delay of backoffBase^attempts seconds.
func applyFailure(j *jobs.Job, errMsg string, backoffBase float64, now time.Time) {
	j.Attempts++
	j.Error = &errMsg
	j.clearLock()
	j.UpdatedAt = now

	if j.Attempts >= j.MaxRetries {
		j.State = jobs.Dead
		j.NextRetryAt = nil
		return
	}

	j.State = jobs.Failed
	delay := time.Duration(math.Pow(backoffBase, float64(j.Attempts)) * float64(time.Second))
	nextRetry := now.Add(delay)
	j.NextRetryAt = &nextRetry
}
