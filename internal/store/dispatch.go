package store

import (
	"sort"
	"time"

	"oss.nandlabs.io/taskqueue/internal/jobs"
)

// selectNext applies the claim-selection rule: build the eligible set
// (pending, failed-and-due, or stale-locked jobs), exclude terminal states,
// sort by priority then oldest-created-first, and return the first match.
// It returns nil if nothing is eligible. It never mutates its input; the
// caller (ClaimNext) applies the state transition to whatever it returns.
func selectNext(all []*jobs.Job, now time.Time) *jobs.Job {
	eligible := make([]*jobs.Job, 0, len(all))
	for _, j := range all {
		if isEligible(j, now) {
			eligible = append(eligible, j)
		}
	}
	if len(eligible) == 0 {
		return nil
	}

	sort.SliceStable(eligible, func(i, k int) bool {
		if eligible[i].Priority != eligible[k].Priority {
			return eligible[i].Priority < eligible[k].Priority
		}
		return eligible[i].CreatedAt.Before(eligible[k].CreatedAt)
	})
	return eligible[0]
}

// isEligible reports whether j may be claimed right now.
func isEligible(j *jobs.Job, now time.Time) bool {
	switch j.State {
	case jobs.Cancelled, jobs.Completed, jobs.Dead:
		return false
	case jobs.Pending:
		return true
	case jobs.Failed:
		return j.NextRetryAt != nil && !j.NextRetryAt.After(now)
	case jobs.Processing:
		return j.IsLockStale(now)
	default:
		return false
	}
}
